package runstate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/flowdot/pkg/workflow"
)

func TestStaticAndMap(t *testing.T) {
	ctx := context.Background()
	snap := workflow.States{"first": workflow.StatusSuccess}

	got, err := Static(snap).Latest(ctx, "anything")
	if err != nil || got["first"] != workflow.StatusSuccess {
		t.Errorf("Static.Latest = %v, %v", got, err)
	}

	m := Map{"etl": snap}
	if got, _ := m.Latest(ctx, "etl"); got["first"] != workflow.StatusSuccess {
		t.Errorf("Map.Latest(etl) = %v", got)
	}
	if got, _ := m.Latest(ctx, "other"); got != nil {
		t.Errorf("Map.Latest(other) = %v, want nil", got)
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "states.yaml")
	if err := os.WriteFile(path, []byte("first: scheduled\nsecond: success\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	src := File{Path: path}

	got, err := src.Latest(context.Background(), "etl")
	if err != nil {
		t.Fatalf("File.Latest error: %v", err)
	}
	if got["first"] != workflow.StatusScheduled || got["second"] != workflow.StatusSuccess {
		t.Errorf("File.Latest = %v", got)
	}

	// Edits are picked up on the next call.
	if err := os.WriteFile(path, []byte("first: failed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, _ = src.Latest(context.Background(), "etl")
	if got["first"] != workflow.StatusFailed {
		t.Errorf("File.Latest after edit = %v", got)
	}
}

func TestFileCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (File{Path: "unused.json"}).Latest(ctx, "etl"); err != context.Canceled {
		t.Errorf("File.Latest error = %v, want context.Canceled", err)
	}
}

func TestStatesFromInstances(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	docs := []TaskInstance{
		{TaskID: "first", Status: "up_for_retry", UpdatedAt: t0},
		{TaskID: "first", Status: "success", UpdatedAt: t0.Add(time.Minute)},
		{TaskID: "section_1.task_1", Status: "RUNNING", UpdatedAt: t0},
		{TaskID: "second", Status: "failed", UpdatedAt: t0.Add(time.Hour)},
		{TaskID: "second", Status: "queued", UpdatedAt: t0},
	}
	got := statesFromInstances(docs)
	want := workflow.States{
		"first":            workflow.StatusSuccess,
		"section_1.task_1": workflow.StatusRunning,
		"second":           workflow.StatusFailed,
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d: %v", len(got), len(want), got)
	}
	for id, st := range want {
		if got[id] != st {
			t.Errorf("states[%s] = %q, want %q", id, got[id], st)
		}
	}
}

func TestNewMongoRequiresURI(t *testing.T) {
	if _, err := NewMongo(context.Background(), MongoConfig{}); err == nil {
		t.Error("NewMongo without URI should fail")
	}
}

package io

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/flowdot/pkg/workflow"
)

func TestReadDependencies(t *testing.T) {
	tests := []struct {
		format Format
		input  string
	}{
		{FormatJSON, `{"dag_one": [
			{"source": "dag_one", "target": "dag_two", "label": "task_1", "kind": "sensor", "id": "task_1"},
			{"source": "dag_two", "target": "dag_three", "kind": "sensor", "id": "task_2"}
		]}`},
		{FormatYAML, `dag_one:
  - {source: dag_one, target: dag_two, label: task_1, kind: sensor, id: task_1}
  - {source: dag_two, target: dag_three, kind: sensor, id: task_2}
`},
		{FormatTOML, `[[dag_one]]
source = "dag_one"
target = "dag_two"
label = "task_1"
kind = "sensor"
id = "task_1"

[[dag_one]]
source = "dag_two"
target = "dag_three"
kind = "sensor"
id = "task_2"
`},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			deps, err := ReadDependencies(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("ReadDependencies() error: %v", err)
			}
			list := deps["dag_one"]
			if len(list) != 2 {
				t.Fatalf("len(dag_one) = %d, want 2", len(list))
			}
			want := workflow.Dependency{Source: "dag_one", Target: "dag_two", Label: "task_1", Kind: "sensor", ID: "task_1"}
			if list[0] != want {
				t.Errorf("dag_one[0] = %+v, want %+v", list[0], want)
			}
			if list[1].NodeLabel() != "task_2" {
				t.Errorf("dag_one[1].NodeLabel() = %q, want task_2", list[1].NodeLabel())
			}
		})
	}
}

func TestImportDependencies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deps.json")
	if err := os.WriteFile(path, []byte(`{"a": [{"source": "a", "target": "b", "id": "x"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	deps, err := ImportDependencies(path)
	if err != nil {
		t.Fatalf("ImportDependencies() error: %v", err)
	}
	if len(deps["a"]) != 1 || deps["a"][0].Target != "b" {
		t.Errorf("ImportDependencies() = %+v", deps)
	}
}

func TestReadStates(t *testing.T) {
	input := `{"first": "scheduled", "second": "SUCCEEDED", "third": "running", "fourth": "exploded"}`
	states, err := ReadStates(strings.NewReader(input), FormatJSON)
	if err != nil {
		t.Fatalf("ReadStates() error: %v", err)
	}
	want := workflow.States{
		"first":  workflow.StatusScheduled,
		"second": workflow.StatusSuccess,
		"third":  workflow.StatusRunning,
		"fourth": workflow.RunStatus("exploded"),
	}
	for id, st := range want {
		if states[id] != st {
			t.Errorf("states[%s] = %q, want %q", id, states[id], st)
		}
	}
}

func TestStatesRoundTrip(t *testing.T) {
	states := workflow.States{"section_1.task_1": workflow.StatusFailed, "end": workflow.StatusDeferred}
	path := filepath.Join(t.TempDir(), "states.toml")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteStates(f, states, FormatTOML); err != nil {
		t.Fatalf("WriteStates() error: %v", err)
	}
	f.Close()

	got, err := ImportStates(path)
	if err != nil {
		t.Fatalf("ImportStates() error: %v", err)
	}
	if len(got) != 2 || got["section_1.task_1"] != workflow.StatusFailed || got["end"] != workflow.StatusDeferred {
		t.Errorf("ImportStates() = %v", got)
	}
}

package workflow

import (
	"slices"
	"testing"
)

func sampleWorkflow() *Workflow {
	inner := NewGroup("inner", TaskNode(Task{ID: "b"}))
	outer := NewGroup("outer", TaskNode(Task{ID: "a"}), GroupNode(inner))
	return &Workflow{
		ID:    "sample",
		Nodes: []Node{TaskNode(Task{ID: "start"}), GroupNode(outer)},
	}
}

func TestWalkQualifiesIDs(t *testing.T) {
	var got []string
	sampleWorkflow().Walk(0, func(id string, _ Node, _ int) bool {
		got = append(got, id)
		return true
	})
	want := []string{"start", "outer", "outer.a", "outer.inner", "outer.inner.b"}
	if !slices.Equal(got, want) {
		t.Errorf("Walk() ids = %v, want %v", got, want)
	}
}

func TestWalkStopsAtMaxDepth(t *testing.T) {
	g := NewGroup("loop")
	g.Children = []Node{GroupNode(g)}
	wf := &Workflow{ID: "bad", Nodes: []Node{GroupNode(g)}}

	visits := 0
	wf.Walk(5, func(string, Node, int) bool {
		visits++
		return true
	})
	if visits != 6 {
		t.Errorf("Walk() visits = %d, want 6", visits)
	}
}

func TestTaskCount(t *testing.T) {
	if got := sampleWorkflow().TaskCount(); got != 3 {
		t.Errorf("TaskCount() = %d, want 3", got)
	}
}

func TestDisplayLabel(t *testing.T) {
	if got := (Task{ID: "first"}).DisplayLabel(); got != "first" {
		t.Errorf("DisplayLabel() = %q, want first", got)
	}
	if got := (Task{ID: "first", Label: "First Task"}).DisplayLabel(); got != "First Task" {
		t.Errorf("DisplayLabel() = %q, want First Task", got)
	}
	if got := NewGroup("g").DisplayLabel(); got != "g" {
		t.Errorf("Group.DisplayLabel() = %q, want g", got)
	}
}

func TestQualifyAndLocalID(t *testing.T) {
	if got := Qualify("", "a"); got != "a" {
		t.Errorf("Qualify(\"\", a) = %q", got)
	}
	if got := Qualify("outer.inner", "b"); got != "outer.inner.b" {
		t.Errorf("Qualify() = %q", got)
	}
	if got := LocalID("outer.inner.b"); got != "b" {
		t.Errorf("LocalID() = %q", got)
	}
	if got := LocalID("b"); got != "b" {
		t.Errorf("LocalID() = %q", got)
	}
}

func TestParseRunStatus(t *testing.T) {
	tests := []struct {
		in     string
		want   RunStatus
		wantOK bool
	}{
		{"success", StatusSuccess, true},
		{"Succeeded", StatusSuccess, true},
		{" RUNNING ", StatusRunning, true},
		{"up_for_retry", StatusUpForRetry, true},
		{"exploded", RunStatus("exploded"), false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseRunStatus(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseRunStatus(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestKnown(t *testing.T) {
	for _, s := range Statuses {
		if !s.Known() {
			t.Errorf("%q.Known() = false", s)
		}
	}
	if StatusNone.Known() {
		t.Error("StatusNone.Known() = true")
	}
}

func TestDependencyNodeLabel(t *testing.T) {
	d := Dependency{ID: "wait_for_a"}
	if d.NodeLabel() != "wait_for_a" {
		t.Errorf("NodeLabel() = %q", d.NodeLabel())
	}
	d.Label = "Wait"
	if d.NodeLabel() != "Wait" {
		t.Errorf("NodeLabel() = %q", d.NodeLabel())
	}
}

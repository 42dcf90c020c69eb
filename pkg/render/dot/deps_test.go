package dot

import (
	"errors"
	"strings"
	"testing"

	"github.com/matzehuels/flowdot/pkg/workflow"
)

func sensorChain() workflow.DependencyMap {
	return workflow.DependencyMap{
		"dag_one": {
			{Source: "dag_one", Target: "dag_two", Label: "task_1", Kind: "sensor", ID: "task_1"},
			{Source: "dag_two", Target: "dag_three", Label: "task_2", Kind: "sensor", ID: "task_2"},
		},
	}
}

func TestRenderDependencies(t *testing.T) {
	src, err := RenderDependencies(sensorChain(), DependencyOptions{})
	if err != nil {
		t.Fatalf("RenderDependencies() error: %v", err)
	}

	for _, want := range []string{
		"dag_one -> task_1",
		"task_1 -> dag_two",
		"dag_two -> task_2",
		"task_2 -> dag_three",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("output missing %q:\n%s", want, src)
		}
	}

	if !strings.HasPrefix(src, "digraph {\n\tgraph [label=\"Workflow Dependencies\" labelloc=t rankdir=LR]\n") {
		t.Errorf("unexpected header:\n%s", src)
	}
	if !strings.Contains(src, "\ttask_1 [color=\"#000000\" fillcolor=\"#e6f1f2\" label=task_1 shape=ellipse style=filled]\n") {
		t.Errorf("sensor node not styled as a sensor:\n%s", src)
	}
}

func TestBuildDependencies_SharedInstance(t *testing.T) {
	deps := workflow.DependencyMap{
		"a": {{Source: "a", Target: "c", Kind: "trigger", ID: "t"}},
		"b": {{Source: "b", Target: "c", Kind: "trigger", ID: "t"}},
	}
	g, err := BuildDependencies(deps, DependencyOptions{})
	if err != nil {
		t.Fatalf("BuildDependencies() error: %v", err)
	}

	// a, b, c and the shared coupling node.
	if g.NodeCount() != 4 {
		t.Errorf("NodeCount() = %d, want 4", g.NodeCount())
	}
	// a->t, b->t, and t->c once.
	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount() = %d, want 3", g.EdgeCount())
	}
	n, ok := g.Node("t")
	if !ok || n.Kind != NodeKindCoupling || !n.IsSynthetic() {
		t.Fatalf("Node(t) = %+v, want coupling node", n)
	}
	if n.Attrs["label"] != "t" || n.Attrs["shape"] != "cds" {
		t.Errorf("coupling attrs = %v", n.Attrs)
	}
}

func TestBuildDependencies_UnknownKind(t *testing.T) {
	deps := workflow.DependencyMap{
		"a": {{Source: "a", Target: "b", Kind: "Webhook", ID: "hook"}},
	}
	g, err := BuildDependencies(deps, DependencyOptions{Label: "Links"})
	if err != nil {
		t.Fatalf("BuildDependencies() error: %v", err)
	}
	if g.Attrs["label"] != "Links" {
		t.Errorf("graph label = %q, want Links", g.Attrs["label"])
	}
	n, _ := g.Node("hook")
	if n.Attrs["shape"] != "diamond" {
		t.Errorf("unknown kind shape = %q, want diamond", n.Attrs["shape"])
	}
}

func TestBuildDependencies_Empty(t *testing.T) {
	src, err := RenderDependencies(nil, DependencyOptions{})
	if err != nil {
		t.Fatalf("RenderDependencies(nil) error: %v", err)
	}
	want := "digraph {\n\tgraph [label=\"Workflow Dependencies\" labelloc=t rankdir=LR]\n}\n"
	if src != want {
		t.Errorf("RenderDependencies(nil) = %q, want %q", src, want)
	}
}

func TestBuildDependencies_InvalidRecord(t *testing.T) {
	tests := []struct {
		name string
		deps workflow.DependencyMap
	}{
		{"empty owner", workflow.DependencyMap{"": nil}},
		{"missing source", workflow.DependencyMap{"a": {{Target: "b", ID: "x"}}}},
		{"missing target", workflow.DependencyMap{"a": {{Source: "a", ID: "x"}}}},
		{"missing id", workflow.DependencyMap{"a": {{Source: "a", Target: "b"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := BuildDependencies(tt.deps, DependencyOptions{})
			if !errors.Is(err, ErrInvalidID) {
				t.Errorf("error = %v, want ErrInvalidID", err)
			}
			if g != nil {
				t.Error("expected no graph on error")
			}
		})
	}
}

func TestBuildDependencies_Deterministic(t *testing.T) {
	deps := workflow.DependencyMap{
		"z": {{Source: "z", Target: "y", Kind: "sensor", ID: "s1"}},
		"m": {{Source: "m", Target: "z", Kind: "asset", ID: "ds"}},
		"a": {{Source: "a", Target: "m", Kind: "trigger", ID: "t1"}},
	}
	first, err := RenderDependencies(deps, DependencyOptions{})
	if err != nil {
		t.Fatalf("RenderDependencies() error: %v", err)
	}
	for range 20 {
		got, _ := RenderDependencies(deps, DependencyOptions{})
		if got != first {
			t.Fatalf("output changed between calls:\n%s\nvs\n%s", first, got)
		}
	}
}

func TestBuildDependencies_InstanceCollidesWithWorkflow(t *testing.T) {
	tests := []struct {
		name string
		deps workflow.DependencyMap
	}{
		{"instance named after target", workflow.DependencyMap{
			"a": {{Source: "a", Target: "b", Kind: "sensor", ID: "b"}},
		}},
		{"workflow named after earlier instance", workflow.DependencyMap{
			"a": {{Source: "a", Target: "b", Kind: "trigger", ID: "t"}},
			"b": {{Source: "t", Target: "c", Kind: "trigger", ID: "u"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := BuildDependencies(tt.deps, DependencyOptions{})
			if !errors.Is(err, ErrDuplicateID) {
				t.Errorf("error = %v, want ErrDuplicateID", err)
			}
			if g != nil {
				t.Error("expected no graph on error")
			}
		})
	}
}

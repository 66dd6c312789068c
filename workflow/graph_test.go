package workflow

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func noopNode(ctx context.Context, s State) (State, error) {
	return State{}, nil
}

func TestAddNode_Duplicate(t *testing.T) {
	schema, _ := NewSchema(ScalarField("x"))
	b := NewGraph("dup", schema)

	if err := b.AddNode("n", noopNode); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	err := b.AddNode("n", noopNode)
	var derr *DuplicateNodeError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DuplicateNodeError, got %v", err)
	}
	if derr.Node != "n" {
		t.Errorf("Node = %q, want %q", derr.Node, "n")
	}
}

func TestAddNode_ReservedNames(t *testing.T) {
	schema, _ := NewSchema(ScalarField("x"))
	b := NewGraph("reserved", schema)

	for _, name := range []string{Start, End, ""} {
		if err := b.AddNode(name, noopNode); err == nil {
			t.Errorf("AddNode(%q) should fail", name)
		}
	}
}

func TestCompile_CollectsAllViolations(t *testing.T) {
	schema, _ := NewSchema(ScalarField("x"))
	b := NewGraph("broken", schema)

	mustAddNode(t, b, "island", noopNode) // unreachable, no outgoing edge
	mustAddNode(t, b, "a", noopNode)
	b.AddEdge(Start, "a")
	b.AddEdge("a", "ghost") // dangling target
	b.AddEdge(End, "a")     // terminal with outgoing edge

	_, err := b.Compile()
	var gerr *GraphDefinitionError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GraphDefinitionError, got %v", err)
	}
	wantFragments := []string{
		`"island" has no outgoing edge`,
		`"island" is not reachable`,
		`target "ghost"`,
		"terminal marker cannot have outgoing edges",
	}
	for _, frag := range wantFragments {
		found := false
		for _, v := range gerr.Violations {
			if strings.Contains(v, frag) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("violations missing %q; got %v", frag, gerr.Violations)
		}
	}
}

func TestCompile_MissingEntryEdge(t *testing.T) {
	schema, _ := NewSchema(ScalarField("x"))
	b := NewGraph("no-entry", schema)
	mustAddNode(t, b, "a", noopNode)
	b.AddEdge("a", End)

	_, err := b.Compile()
	var gerr *GraphDefinitionError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GraphDefinitionError, got %v", err)
	}
}

func TestCompile_DuplicateOutgoingEdge(t *testing.T) {
	schema, _ := NewSchema(ScalarField("x"))
	b := NewGraph("double-out", schema)
	mustAddNode(t, b, "a", noopNode)
	b.AddEdge(Start, "a")
	b.AddEdge("a", End)
	b.AddConditionalEdge("a", func(s State) string { return "l" }, map[string]string{"l": End})

	_, err := b.Compile()
	var gerr *GraphDefinitionError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GraphDefinitionError, got %v", err)
	}
	found := false
	for _, v := range gerr.Violations {
		if strings.Contains(v, "already has an outgoing edge") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing duplicate-edge violation; got %v", gerr.Violations)
	}
}

func TestCompile_Idempotent(t *testing.T) {
	schema, _ := NewSchema(ScalarField("count"))
	b := NewGraph("twice", schema)
	mustAddNode(t, b, "inc", func(ctx context.Context, s State) (State, error) {
		return State{"count": s.GetInt("count") + 1}, nil
	})
	b.AddEdge(Start, "inc").AddEdge("inc", End)

	g1, err := b.Compile()
	if err != nil {
		t.Fatalf("first compile: %v", err)
	}
	g2, err := b.Compile()
	if err != nil {
		t.Fatalf("second compile: %v", err)
	}

	r1, err := g1.Invoke(context.Background(), State{"count": 1})
	if err != nil {
		t.Fatalf("g1 invoke: %v", err)
	}
	r2, err := g2.Invoke(context.Background(), State{"count": 1})
	if err != nil {
		t.Fatalf("g2 invoke: %v", err)
	}
	if !reflect.DeepEqual(r1, r2) {
		t.Errorf("compilations behave differently: %v vs %v", r1, r2)
	}
	if !reflect.DeepEqual(g1.Definition(), g2.Definition()) {
		t.Errorf("definitions differ")
	}
}

func TestDefinition_Export(t *testing.T) {
	schema, _ := NewSchema(ScalarField("label"))
	b := NewGraph("export", schema)
	mustAddNode(t, b, "classify", noopNode)
	mustAddNode(t, b, "left", noopNode)
	mustAddNode(t, b, "right", noopNode)
	b.AddEdge(Start, "classify")
	b.AddConditionalEdge("classify", func(s State) string { return s.GetString("label") },
		map[string]string{"l": "left", "r": "right"})
	b.AddEdge("left", End).AddEdge("right", End)

	g, err := b.Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	def := g.Definition()
	if def.Entry != "classify" {
		t.Errorf("entry = %q, want classify", def.Entry)
	}
	if len(def.Nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(def.Nodes))
	}
	if def.Nodes[0].Branches["l"] != "left" || def.Nodes[0].Branches["r"] != "right" {
		t.Errorf("classify branches = %v", def.Nodes[0].Branches)
	}

	yml, err := def.ToYAML()
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(yml, "entry: classify") {
		t.Errorf("yaml missing entry: %s", yml)
	}
	js, err := def.ToJSON()
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(js, `"entry": "classify"`) {
		t.Errorf("json missing entry: %s", js)
	}
}

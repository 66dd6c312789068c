package workflow

import (
	"reflect"
	"testing"
)

func TestNewSchema_DuplicateField(t *testing.T) {
	_, err := NewSchema(ScalarField("x"), AppendField("x"))
	if err == nil {
		t.Fatal("expected error for duplicate field")
	}
}

func TestNewSchema_MissingReducer(t *testing.T) {
	_, err := NewSchema(Field{Name: "x", Kind: FieldScalar})
	if err == nil {
		t.Fatal("expected error for field without reducer")
	}
}

func TestSchema_MergePartialUpdate(t *testing.T) {
	s, err := NewSchema(ScalarField("a"), ScalarField("b"), AppendField("seq"))
	if err != nil {
		t.Fatalf("schema: %v", err)
	}

	current := State{"a": 1, "b": "keep", "seq": []any{"x"}}
	next, err := s.Merge(current, State{"a": 2, "seq": "y"})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	if next.GetInt("a") != 2 {
		t.Errorf("a = %v, want 2", next["a"])
	}
	if next.GetString("b") != "keep" {
		t.Errorf("b = %v, want keep (untouched by partial update)", next["b"])
	}
	if got := next.GetSlice("seq"); !reflect.DeepEqual(got, []any{"x", "y"}) {
		t.Errorf("seq = %v, want [x y]", got)
	}
	// The input state must not be mutated by the merge.
	if current.GetInt("a") != 1 || len(current.GetSlice("seq")) != 1 {
		t.Errorf("merge mutated its input: %v", current)
	}
}

func TestSchema_MergeUnknownField(t *testing.T) {
	s, _ := NewSchema(ScalarField("a"))
	_, err := s.Merge(State{}, State{"nope": 1})
	if err == nil {
		t.Fatal("expected error for undeclared field")
	}
}

func TestSchema_MergeAbsentField(t *testing.T) {
	s, _ := NewSchema(ScalarField("a"), AppendField("seq"))

	next, err := s.Merge(State{}, State{"seq": "first"})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if got := next.GetSlice("seq"); !reflect.DeepEqual(got, []any{"first"}) {
		t.Errorf("seq = %v, want [first]", got)
	}
	if _, present := next["a"]; present {
		t.Errorf("a should remain absent until first update")
	}
}

func TestSchema_FieldsOrder(t *testing.T) {
	s, _ := NewSchema(ScalarField("z"), ScalarField("a"), AppendField("m"))
	fields := s.Fields()
	got := []string{fields[0].Name, fields[1].Name, fields[2].Name}
	if !reflect.DeepEqual(got, []string{"z", "a", "m"}) {
		t.Errorf("declaration order not preserved: %v", got)
	}
}

package workflow

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

func TestOverwriteReducer(t *testing.T) {
	if got := OverwriteReducer(1, 2); got != 2 {
		t.Errorf("got %v, want 2", got)
	}
	if got := OverwriteReducer(nil, "x"); got != "x" {
		t.Errorf("absent current: got %v, want x", got)
	}
}

func TestAppendReducer(t *testing.T) {
	tests := []struct {
		name    string
		current any
		update  any
		want    []any
	}{
		{"absent current", nil, "a", []any{"a"}},
		{"single element", []any{"a"}, "b", []any{"a", "b"}},
		{"slice update flattens", []any{"a"}, []any{"b", "c"}, []any{"a", "b", "c"}},
		{"typed slice update", []any{1}, []int{2, 3}, []any{1, 2, 3}},
		{"typed current", []string{"a"}, "b", []any{"a", "b"}},
		{"nil update keeps sequence", []any{"a"}, nil, []any{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AppendReducer(tt.current, tt.update)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AppendReducer(%v, %v) = %v, want %v", tt.current, tt.update, got, tt.want)
			}
		})
	}
}

func TestAppendReducer_NoAliasing(t *testing.T) {
	current := []any{"a", "b"}
	out := AppendReducer(current, "c").([]any)
	out[0] = "mutated"
	if current[0] != "a" {
		t.Errorf("reducer result aliases its input")
	}
}

// Append fields must equal the concatenation, in order, of every update,
// regardless of how updates are chunked into slices.
func TestAppendReducer_ConcatProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chunks := rapid.SliceOfN(rapid.SliceOf(rapid.Int()), 0, 12).Draw(t, "chunks")

		var acc any
		var want []any
		for _, chunk := range chunks {
			acc = AppendReducer(acc, chunk)
			for _, v := range chunk {
				want = append(want, v)
			}
		}
		if want == nil {
			want = []any{}
		}
		got := toSlice(acc)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})
}

// Overwrite fields must equal the most recent update; earlier values are
// fully discarded.
func TestOverwriteReducer_LastWriteProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		updates := rapid.SliceOfN(rapid.Int(), 1, 20).Draw(t, "updates")

		var acc any
		for _, v := range updates {
			acc = OverwriteReducer(acc, v)
		}
		if acc != updates[len(updates)-1] {
			t.Fatalf("got %v, want %v", acc, updates[len(updates)-1])
		}
	})
}

package workflow

import "reflect"

// Reducer defines how a node's partial update for a field combines with the
// value already accumulated for that field. A nil current value means the
// field is absent; reducers must treat it as the field's zero value.
type Reducer func(current, update any) any

// OverwriteReducer replaces the accumulated value with the update.
// This is the default strategy for scalar fields.
func OverwriteReducer(_, update any) any {
	return update
}

// AppendReducer appends the update to the accumulated ordered sequence.
// When the update is itself a slice, every element is appended in order;
// otherwise the update is appended as a single element. An absent current
// value is treated as an empty sequence.
func AppendReducer(current, update any) any {
	out := toSlice(current)
	if update == nil {
		return out
	}
	rv := reflect.ValueOf(update)
	if rv.Kind() == reflect.Slice {
		for i := 0; i < rv.Len(); i++ {
			out = append(out, rv.Index(i).Interface())
		}
		return out
	}
	return append(out, update)
}

// toSlice normalizes the accumulated value to []any without aliasing the
// input: merges must never mutate a previous accumulated state.
func toSlice(v any) []any {
	if v == nil {
		return []any{}
	}
	if s, ok := v.([]any); ok {
		out := make([]any, len(s))
		copy(out, s)
		return out
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		out := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out = append(out, rv.Index(i).Interface())
		}
		return out
	}
	return []any{v}
}

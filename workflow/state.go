package workflow

// State maps field names to values. A state conforming to a schema contains
// only declared fields; a node's returned state may be a strict subset.
// The executor owns the canonical accumulated state during a run — nodes
// receive a shallow copy and return a new partial update, never mutating
// the accumulated state in place.
type State map[string]any

// Clone returns a shallow copy. Field values themselves are shared; append
// reducers copy the sequences they extend, so merged states never alias
// each other's list fields.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// GetString returns the field as a string, or "" when absent or mistyped.
func (s State) GetString(key string) string {
	v, _ := s[key].(string)
	return v
}

// GetInt returns the field as an int, or 0 when absent or mistyped.
func (s State) GetInt(key string) int {
	switch v := s[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// GetBool returns the field as a bool, or false when absent or mistyped.
func (s State) GetBool(key string) bool {
	v, _ := s[key].(bool)
	return v
}

// GetSlice returns the field as an ordered sequence, or nil when absent.
// Append-reduced fields are always stored as []any.
func (s State) GetSlice(key string) []any {
	v, _ := s[key].([]any)
	return v
}

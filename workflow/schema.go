package workflow

import "fmt"

// FieldKind is the semantic type of a state field.
type FieldKind string

const (
	// FieldScalar holds a single value replaced on every update.
	FieldScalar FieldKind = "scalar"
	// FieldList holds an ordered sequence that accumulates updates.
	FieldList FieldKind = "list"
)

// Field describes one state field: its name, semantic kind, and the reducer
// applied when merging partial updates. Immutable after declaration.
type Field struct {
	Name    string
	Kind    FieldKind
	Reducer Reducer
}

// ScalarField declares an overwrite-merged scalar field.
func ScalarField(name string) Field {
	return Field{Name: name, Kind: FieldScalar, Reducer: OverwriteReducer}
}

// AppendField declares an accumulating sequence field.
func AppendField(name string) Field {
	return Field{Name: name, Kind: FieldList, Reducer: AppendReducer}
}

// Schema is the declared set of fields a graph's state may contain.
// The reducer for each field is fixed at declaration time; the schema is
// immutable and shared by every run of a compiled graph.
type Schema struct {
	fields map[string]Field
	order  []string
}

// NewSchema builds a schema from field declarations. Duplicate field names
// or fields without a reducer are rejected.
func NewSchema(fields ...Field) (*Schema, error) {
	s := &Schema{fields: make(map[string]Field, len(fields))}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("schema: field with empty name")
		}
		if _, dup := s.fields[f.Name]; dup {
			return nil, fmt.Errorf("schema: duplicate field %q", f.Name)
		}
		if f.Reducer == nil {
			return nil, fmt.Errorf("schema: field %q has no reducer", f.Name)
		}
		s.fields[f.Name] = f
		s.order = append(s.order, f.Name)
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on invalid declarations.
// Intended for package-level schema construction.
func MustSchema(fields ...Field) *Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Field returns the declaration for name.
func (s *Schema) Field(name string) (Field, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// Fields returns all declarations in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.fields[name])
	}
	return out
}

// Merge combines a partial update into the accumulated state and returns a
// new state; neither argument is mutated. Every update key must be declared
// in the schema. Absent fields are handed to the reducer as nil, which
// reducers treat as the field's zero value.
func (s *Schema) Merge(current, update State) (State, error) {
	next := current.Clone()
	for _, name := range s.order {
		upd, ok := update[name]
		if !ok {
			continue
		}
		f := s.fields[name]
		next[name] = f.Reducer(current[name], upd)
	}
	for name := range update {
		if _, ok := s.fields[name]; !ok {
			return nil, fmt.Errorf("field %q not declared in schema", name)
		}
	}
	return next, nil
}

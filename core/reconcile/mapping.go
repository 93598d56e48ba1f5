package reconcile

// Field maps one remote value onto one local column.
//
// Value returns ok=false when the record does not carry the value (for example the
// absent side of a partial pair); the column is then left untouched.
type Field[R any] struct {
	Column string
	Value  func(rec R) (value any, ok bool)
}

// Mapping is the declarative column table of an entity kind.
type Mapping[R any] []Field[R]

// Updates builds the column -> value map for rec.
func (m Mapping[R]) Updates(rec R) map[string]any {
	updates := make(map[string]any, len(m))
	for _, f := range m {
		if v, ok := f.Value(rec); ok {
			updates[f.Column] = v
		}
	}
	return updates
}

// Columns lists the mapped columns in declaration order.
func (m Mapping[R]) Columns() []string {
	cols := make([]string, 0, len(m))
	for _, f := range m {
		cols = append(cols, f.Column)
	}
	return cols
}

// Always maps a value that every record carries.
func Always[R any, V any](column string, get func(R) V) Field[R] {
	return Field[R]{
		Column: column,
		Value: func(rec R) (any, bool) {
			return get(rec), true
		},
	}
}

// Optional maps a value carried only by some records.
func Optional[R any, S any, V any](column string, side func(R) *S, get func(*S) V) Field[R] {
	return Field[R]{
		Column: column,
		Value: func(rec R) (any, bool) {
			s := side(rec)
			if s == nil {
				return nil, false
			}
			return get(s), true
		},
	}
}

// NonNil maps a pointer value, skipping the column when the remote left it null.
func NonNil[R any, V any](column string, get func(R) *V) Field[R] {
	return Field[R]{
		Column: column,
		Value: func(rec R) (any, bool) {
			v := get(rec)
			if v == nil {
				return nil, false
			}
			return *v, true
		},
	}
}

package ir

// Row is one persisted row of an entity table.
//
// Sequence is nil when the row is excluded from ordering. Fields holds the
// user columns; absent fields are stored as NULL.
type Row struct {
	Entity   string   `json:"entity"`
	ID       int64    `json:"id"`
	Sequence *float64 `json:"sequence"`
	Fields   IRObject `json:"fields"`
}

// EntityName returns the registered entity name of the row.
func (r *Row) EntityName() string { return r.Entity }

// RowID returns the store-assigned id (0 before insert).
func (r *Row) RowID() int64 { return r.ID }

// SequenceKey returns the ordering key and whether it is set.
func (r *Row) SequenceKey() (float64, bool) {
	if r.Sequence == nil {
		return 0, false
	}
	return *r.Sequence, true
}

// SetSequence overwrites the ordering key.
func (r *Row) SetSequence(key float64) {
	r.Sequence = &key
}

// Value returns a field value, NULL when absent.
func (r *Row) Value(field string) IRValue {
	if v, ok := r.Fields[field]; ok && v != nil {
		return v
	}
	return IRNull{}
}

// ScopeValues returns the row's normalized values on the given scope fields.
func (r *Row) ScopeValues(scope []string) IRObject {
	out := make(IRObject, len(scope))
	for _, name := range scope {
		out[name] = Normalize(r.Value(name))
	}
	return out
}

// Key is a convenience for building an ordering key pointer.
func Key(v float64) *float64 {
	return &v
}

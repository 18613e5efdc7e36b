package listengine

// Placement controls where ReconcileAfterCreate inserts a new record.
type Placement int

const (
	// Prepend puts the new record first (newest-first views).
	Prepend Placement = iota
	// Append puts the new record last, matching server insertion order.
	Append
)

// ReconcileAfterCreate returns records with rec inserted. If a record with the
// same id is already present it is replaced in place, so a create echoed by a
// concurrent refetch never produces a duplicate.
func ReconcileAfterCreate(records []Record, rec Record, at Placement) []Record {
	if id, ok := rec.ID(); ok && indexOf(records, id) >= 0 {
		return ReconcileAfterUpdate(records, id, rec)
	}
	out := make([]Record, 0, len(records)+1)
	if at == Prepend {
		out = append(out, rec)
		return append(out, records...)
	}
	out = append(out, records...)
	return append(out, rec)
}

// ReconcileAfterUpdate returns records with the element whose id matches
// replaced by rec. When no element matches the collection is returned
// unchanged.
func ReconcileAfterUpdate(records []Record, id int64, rec Record) []Record {
	i := indexOf(records, id)
	if i < 0 {
		return records
	}
	out := make([]Record, len(records))
	copy(out, records)
	out[i] = rec
	return out
}

// ReconcileAfterDelete returns records without the element whose id matches.
// When no element matches the collection is returned unchanged.
func ReconcileAfterDelete(records []Record, id int64) []Record {
	i := indexOf(records, id)
	if i < 0 {
		return records
	}
	out := make([]Record, 0, len(records)-1)
	out = append(out, records[:i]...)
	return append(out, records[i+1:]...)
}

// Normalize converts a decoded payload into a record collection. Anything that
// is not a list of objects (nil, a scalar, a single object) yields an empty,
// non-nil collection; non-object elements are dropped.
func Normalize(v any) []Record {
	switch t := v.(type) {
	case []Record:
		if t == nil {
			return []Record{}
		}
		return t
	case []map[string]any:
		out := make([]Record, 0, len(t))
		for _, m := range t {
			if m != nil {
				out = append(out, Record(m))
			}
		}
		return out
	case []any:
		out := make([]Record, 0, len(t))
		for _, el := range t {
			switch m := el.(type) {
			case map[string]any:
				out = append(out, Record(m))
			case Record:
				out = append(out, m)
			}
		}
		return out
	}
	return []Record{}
}

func indexOf(records []Record, id int64) int {
	for i, r := range records {
		if rid, ok := r.ID(); ok && rid == id {
			return i
		}
	}
	return -1
}

// Package listengine implements the list-management engine shared by the
// asset, user, and ticket views: free-text search, per-field filtering,
// pagination, facet computation, and reconciliation of a local record
// collection after server-confirmed mutations.
//
// Every operation is a pure function of its inputs. Nothing here performs I/O,
// returns an error, or mutates a collection it was handed.
package listengine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// IDField is the distinguished field carrying the server-assigned identifier.
const IDField = "id"

// dateLayout is how time values are rendered for matching and facets.
const dateLayout = "2006-01-02"

// Record is one entity instance (asset, user, or ticket) as a field/value
// mapping. Values are scalars: string, bool, a number, time.Time, or nil.
// Nested maps are allowed for embedded relations (e.g. a ticket's user).
type Record map[string]any

// ID returns the record identifier and whether one was present and numeric.
func (r Record) ID() (int64, bool) {
	return toInt64(r[IDField])
}

// Field returns the string form of the named field, or "" when the field is
// absent or nil. Dotted names ("user.username") descend into nested maps.
func (r Record) Field(name string) string {
	v, ok := r.lookup(name)
	if !ok {
		return ""
	}
	return formatValue(v)
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (r Record) lookup(name string) (any, bool) {
	if v, ok := r[name]; ok {
		return v, v != nil
	}
	head, rest, found := strings.Cut(name, ".")
	if !found {
		return nil, false
	}
	switch nested := r[head].(type) {
	case Record:
		return nested.lookup(rest)
	case map[string]any:
		return Record(nested).lookup(rest)
	}
	return nil, false
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format(dateLayout)
	case *time.Time:
		if t == nil || t.IsZero() {
			return ""
		}
		return t.Format(dateLayout)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int64:
		return t, true
	case int32:
		return int64(t), true
	case float64:
		return int64(t), t == float64(int64(t))
	case json.Number:
		n, err := t.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		return n, err == nil
	}
	return 0, false
}

package listengine

import (
	"sort"
	"strings"
)

// Page is a contiguous slice of a visible set.
type Page struct {
	Items      []Record `json:"items"`
	Number     int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
	Total      int      `json:"total"`
}

// Engine binds the list operations to one resource schema.
type Engine struct {
	schema Schema
}

// New returns an engine for schema.
func New(schema Schema) *Engine {
	return &Engine{schema: schema}
}

// Schema returns the schema the engine was built with.
func (e *Engine) Schema() Schema {
	return e.schema
}

// VisibleSet is ComputeVisibleSet bound to the engine schema.
func (e *Engine) VisibleSet(records []Record, searchTerm string, filters FilterState) []Record {
	return ComputeVisibleSet(e.schema, records, searchTerm, filters)
}

// Query filters records and returns the requested page of the result.
func (e *Engine) Query(records []Record, searchTerm string, filters FilterState, pageNumber int) Page {
	return ComputePage(e.VisibleSet(records, searchTerm, filters), pageNumber, e.schema.EffectivePageSize())
}

// ComputeVisibleSet returns, in source order, the records that match both the
// search term and every filter constraint.
func ComputeVisibleSet(schema Schema, records []Record, searchTerm string, filters FilterState) []Record {
	term := strings.ToLower(searchTerm)
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if matchesSearch(schema, r, term) && matchesFilters(schema, r, filters) {
			out = append(out, r)
		}
	}
	return out
}

// matchesSearch expects term already lower-cased.
func matchesSearch(schema Schema, r Record, term string) bool {
	if term == "" {
		return true
	}
	for _, f := range schema.Searchable {
		if strings.Contains(strings.ToLower(r.Field(f)), term) {
			return true
		}
	}
	return false
}

func matchesFilters(schema Schema, r Record, filters FilterState) bool {
	for field, want := range filters {
		if schema.IsEnum(field) {
			if want == "" || want == AllValues {
				continue
			}
			if r.Field(field) != want {
				return false
			}
			continue
		}
		if want == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(r.Field(field)), strings.ToLower(want)) {
			return false
		}
	}
	return true
}

// ComputePage slices the visible set into a page. Out-of-range page numbers
// are clamped into [1, TotalPages]; pageSize <= 0 means DefaultPageSize.
func ComputePage(visible []Record, pageNumber, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(visible)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	pageNumber = max(1, min(pageNumber, totalPages))

	start := min((pageNumber-1)*pageSize, total)
	end := min(start+pageSize, total)
	items := make([]Record, end-start)
	copy(items, visible[start:end])

	return Page{
		Items:      items,
		Number:     pageNumber,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Total:      total,
	}
}

// ComputeFacet returns the distinct non-empty values of field across records,
// sorted ascending. Used to populate filter dropdowns.
func ComputeFacet(records []Record, field string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range records {
		v := r.Field(field)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

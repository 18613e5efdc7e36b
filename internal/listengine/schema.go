package listengine

import (
	"fmt"
	"slices"
	"sort"
)

// DefaultPageSize is the number of rows shown per page when a schema does not
// set its own.
const DefaultPageSize = 5

// AllValues is the enum constraint sentinel meaning "no constraint".
const AllValues = "all"

// Schema describes how one resource is searched and filtered.
type Schema struct {
	// Name is the resource name ("assets", "users", "tickets").
	Name string
	// Searchable fields take part in free-text search.
	Searchable []string
	// Filterable fields accept case-insensitive substring constraints.
	Filterable []string
	// Enums maps exact-match fields to their allowed values. AllValues is
	// implied and must not be listed.
	Enums map[string][]string
	// PageSize is the page length; zero means DefaultPageSize.
	PageSize int
}

// Fixed per-resource schemas.
var (
	AssetSchema = Schema{
		Name:       "assets",
		Searchable: []string{"hostname", "model", "location", "serial"},
		Filterable: []string{"hostname", "serial", "model", "location", "purchased_at"},
		Enums: map[string][]string{
			"status": {"active", "inactive"},
		},
	}

	UserSchema = Schema{
		Name:       "users",
		Searchable: []string{"username", "email", "fullname"},
		Filterable: []string{"username", "email", "fullname"},
		Enums: map[string][]string{
			"is_active": {"true", "false"},
			"role":      {"user", "admin"},
		},
	}

	TicketSchema = Schema{
		Name:       "tickets",
		Searchable: []string{"title", "description", "user.username", "username"},
		Enums: map[string][]string{
			"status":   {"open", "in_progress", "closed"},
			"priority": {"low", "medium", "high"},
		},
	}
)

// SchemaFor returns the schema registered under the resource name.
func SchemaFor(resource string) (Schema, bool) {
	switch resource {
	case AssetSchema.Name:
		return AssetSchema, true
	case UserSchema.Name:
		return UserSchema, true
	case TicketSchema.Name:
		return TicketSchema, true
	}
	return Schema{}, false
}

// EffectivePageSize returns PageSize or DefaultPageSize when unset.
func (s Schema) EffectivePageSize() int {
	if s.PageSize > 0 {
		return s.PageSize
	}
	return DefaultPageSize
}

// IsEnum reports whether field is an exact-match field.
func (s Schema) IsEnum(field string) bool {
	_, ok := s.Enums[field]
	return ok
}

// HasFilter reports whether field is part of the filter state.
func (s Schema) HasFilter(field string) bool {
	return s.IsEnum(field) || slices.Contains(s.Filterable, field)
}

// FilterKeys lists every filter key: substring fields in schema order,
// then enum fields sorted by name.
func (s Schema) FilterKeys() []string {
	keys := make([]string, 0, len(s.Filterable)+len(s.Enums))
	keys = append(keys, s.Filterable...)
	enums := make([]string, 0, len(s.Enums))
	for k := range s.Enums {
		if !slices.Contains(s.Filterable, k) {
			enums = append(enums, k)
		}
	}
	sort.Strings(enums)
	return append(keys, enums...)
}

// CheckFilter returns an error when value is not acceptable for field.
func (s Schema) CheckFilter(field, value string) error {
	if !s.HasFilter(field) {
		return fmt.Errorf("listengine: %s: unknown filter %q", s.Name, field)
	}
	if !s.IsEnum(field) || value == "" || value == AllValues {
		return nil
	}
	if !slices.Contains(s.Enums[field], value) {
		return fmt.Errorf("listengine: %s: %s must be one of %v", s.Name, field, s.Enums[field])
	}
	return nil
}

// FilterState holds the current constraint for every filter key of a schema.
// An empty substring constraint or AllValues on an enum field matches all.
type FilterState map[string]string

// NewFilterState returns the default state: one entry per schema key, each
// unconstrained.
func (s Schema) NewFilterState() FilterState {
	fs := make(FilterState, len(s.Filterable)+len(s.Enums))
	for _, k := range s.Filterable {
		fs[k] = ""
	}
	for k := range s.Enums {
		fs[k] = AllValues
	}
	return fs
}

// SetFilter returns a copy of fs with field set to value. Unknown fields are
// ignored so the state never gains keys outside the schema. An empty value on
// an enum field is stored as AllValues.
func (s Schema) SetFilter(fs FilterState, field, value string) FilterState {
	out := s.NewFilterState()
	for k, v := range fs {
		if _, ok := out[k]; ok {
			out[k] = v
		}
	}
	if _, ok := out[field]; !ok {
		return out
	}
	if s.IsEnum(field) && value == "" {
		value = AllValues
	}
	out[field] = value
	return out
}

// Active reports whether any entry of fs constrains the result.
func (fs FilterState) Active() bool {
	for _, v := range fs {
		if v != "" && v != AllValues {
			return true
		}
	}
	return false
}

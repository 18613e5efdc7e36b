package listengine

// FacetCache memoizes facets for one record collection. Facets are recomputed
// only after Invalidate, i.e. when the collection itself changes, never when
// the search term or filters change. Not safe for concurrent use.
type FacetCache struct {
	version  uint64
	computed map[string]facetEntry
}

type facetEntry struct {
	version uint64
	values  []string
}

// Invalidate marks every cached facet stale.
func (c *FacetCache) Invalidate() {
	c.version++
}

// Facet returns ComputeFacet(records, field), reusing the previous result
// when the collection has not been invalidated since.
func (c *FacetCache) Facet(records []Record, field string) []string {
	if c.computed == nil {
		c.computed = make(map[string]facetEntry)
	}
	if e, ok := c.computed[field]; ok && e.version == c.version {
		return e.values
	}
	values := ComputeFacet(records, field)
	c.computed[field] = facetEntry{version: c.version, values: values}
	return values
}

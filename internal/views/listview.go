// Package views holds the per-resource list state driven by a UI: the loaded
// collection, the user's search and filters, the current page, and the
// notice left by the last mutation.
package views

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/starford/itam/internal/apperr"
	"github.com/starford/itam/internal/listengine"
	"github.com/starford/itam/internal/session"
)

// ErrStale is returned by Load when a newer load or a local reconciliation
// superseded it. The response was discarded.
var ErrStale = errors.New("views: stale response discarded")

// Gateway is the remote side of a view. *apiclient.Client implements it.
type Gateway interface {
	List(ctx context.Context, sess session.Session, resource string) ([]listengine.Record, error)
	Create(ctx context.Context, sess session.Session, resource string, fields map[string]any) (listengine.Record, error)
	Update(ctx context.Context, sess session.Session, resource string, id int64, fields map[string]any) (listengine.Record, error)
	Delete(ctx context.Context, sess session.Session, resource string, id int64) error
}

// Policy selects how a view reconciles its collection after a mutation.
type Policy int

const (
	// PolicyRefetch reloads the whole collection from the server.
	PolicyRefetch Policy = iota
	// PolicyPrepend applies the server's copy locally, new records first.
	PolicyPrepend
)

// Config describes one resource view.
type Config struct {
	Schema listengine.Schema
	// Noun is the singular resource name used in notices ("asset").
	Noun   string
	Policy Policy
	// Required lists fields that must be non-blank before a create or
	// update is sent; RequiredText is the notice shown otherwise.
	Required     []string
	RequiredText string
}

// ListView is the state of one resource list. Methods are safe to call from
// several goroutines, but a view is normally driven by one control loop.
type ListView struct {
	cfg    Config
	engine *listengine.Engine
	gw     Gateway
	now    func() time.Time

	mu      sync.Mutex
	gen     uint64
	loading bool
	records []listengine.Record
	search  string
	filters listengine.FilterState
	page    int
	facets  listengine.FacetCache
	notice  Notice
}

// NewListView creates an empty view over gw.
func NewListView(cfg Config, gw Gateway) *ListView {
	return &ListView{
		cfg:     cfg,
		engine:  listengine.New(cfg.Schema),
		gw:      gw,
		now:     time.Now,
		records: []listengine.Record{},
		filters: cfg.Schema.NewFilterState(),
		page:    1,
	}
}

// Load fetches the collection. A failed fetch leaves an empty collection.
// Search, filters and page are reset either way.
func (v *ListView) Load(ctx context.Context, sess session.Session) error {
	v.mu.Lock()
	v.gen++
	gen := v.gen
	v.loading = true
	v.mu.Unlock()

	recs, err := v.gw.List(ctx, sess, v.cfg.Schema.Name)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		return ErrStale
	}
	v.loading = false
	if err != nil {
		recs = nil
	}
	v.replace(recs)
	v.search = ""
	v.filters = v.cfg.Schema.NewFilterState()
	v.page = 1
	return err
}

// replace swaps the collection. Callers hold mu.
func (v *ListView) replace(recs []listengine.Record) {
	if recs == nil {
		recs = []listengine.Record{}
	}
	v.records = recs
	v.facets.Invalidate()
}

// Loading reports whether a Load is in flight.
func (v *ListView) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// Records returns the loaded collection in server order.
func (v *ListView) Records() []listengine.Record {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]listengine.Record(nil), v.records...)
}

// SetSearch changes the search term and returns to the first page.
func (v *ListView) SetSearch(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.search = term
	v.page = 1
	v.notice = Notice{}
}

// SetFilter constrains field to value and returns to the first page. Unknown
// fields are ignored.
func (v *ListView) SetFilter(field, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filters = v.cfg.Schema.SetFilter(v.filters, field, value)
	v.page = 1
	v.notice = Notice{}
}

// ClearFilters drops every filter constraint and returns to the first page.
func (v *ListView) ClearFilters() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filters = v.cfg.Schema.NewFilterState()
	v.page = 1
	v.notice = Notice{}
}

// GoToPage selects a page; out of range numbers are clamped by Page.
func (v *ListView) GoToPage(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.page = n
	v.notice = Notice{}
}

// Filters returns a copy of the current filter state.
func (v *ListView) Filters() listengine.FilterState {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(listengine.FilterState, len(v.filters))
	for k, val := range v.filters {
		out[k] = val
	}
	return out
}

// Page returns the visible page for the current search, filters and page
// number.
func (v *ListView) Page() listengine.Page {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.engine.Query(v.records, v.search, v.filters, v.page)
}

// Facet returns the distinct values of field over the whole collection.
func (v *ListView) Facet(field string) []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.facets.Facet(v.records, field)
}

// Notice returns the current notice, or the zero Notice once it expired.
func (v *ListView) Notice() Notice {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.notice.expired(v.now()) {
		v.notice = Notice{}
	}
	return v.notice
}

// Create submits a new record and reconciles the collection on success.
func (v *ListView) Create(ctx context.Context, sess session.Session, fields map[string]any) (listengine.Record, error) {
	if err := v.precheck(sess, fields); err != nil {
		return nil, err
	}
	rec, err := v.gw.Create(ctx, sess, v.cfg.Schema.Name, fields)
	if err != nil {
		return nil, v.fail(err)
	}
	v.reconcile(ctx, sess, func(recs []listengine.Record) []listengine.Record {
		return listengine.ReconcileAfterCreate(recs, rec, listengine.Prepend)
	})
	v.succeed("created")
	return rec, nil
}

// Update submits changed fields of record id.
func (v *ListView) Update(ctx context.Context, sess session.Session, id int64, fields map[string]any) (listengine.Record, error) {
	if err := v.precheck(sess, fields); err != nil {
		return nil, err
	}
	rec, err := v.gw.Update(ctx, sess, v.cfg.Schema.Name, id, fields)
	if err != nil {
		return nil, v.fail(err)
	}
	v.reconcile(ctx, sess, func(recs []listengine.Record) []listengine.Record {
		return listengine.ReconcileAfterUpdate(recs, id, rec)
	})
	v.succeed("updated")
	return rec, nil
}

// Delete removes record id.
func (v *ListView) Delete(ctx context.Context, sess session.Session, id int64) error {
	v.clearNotice()
	if !sess.Authenticated() {
		return v.fail(apperr.ErrUnauthenticated)
	}
	if err := v.gw.Delete(ctx, sess, v.cfg.Schema.Name, id); err != nil {
		return v.fail(err)
	}
	v.reconcile(ctx, sess, func(recs []listengine.Record) []listengine.Record {
		return listengine.ReconcileAfterDelete(recs, id)
	})
	v.succeed("deleted")
	return nil
}

func (v *ListView) precheck(sess session.Session, fields map[string]any) error {
	v.clearNotice()
	if !sess.Authenticated() {
		return v.fail(apperr.ErrUnauthenticated)
	}
	for _, f := range v.cfg.Required {
		s, _ := fields[f].(string)
		if strings.TrimSpace(s) == "" {
			err := apperr.WithDetail(apperr.ErrValidation, v.cfg.RequiredText)
			v.setNotice(NoticeError, v.cfg.RequiredText)
			return err
		}
	}
	return nil
}

// reconcile applies a confirmed mutation. Refetching views reload; the others
// patch the collection in place and invalidate any Load still in flight.
func (v *ListView) reconcile(ctx context.Context, sess session.Session, patch func([]listengine.Record) []listengine.Record) {
	if v.cfg.Policy == PolicyRefetch {
		_ = v.Load(ctx, sess)
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gen++
	v.loading = false
	v.replace(patch(v.records))
}

func (v *ListView) fail(err error) error {
	v.setNotice(NoticeError, apperr.Message(err, v.cfg.Noun))
	return err
}

func (v *ListView) succeed(action string) {
	v.setNotice(NoticeSuccess, capitalize(v.cfg.Noun)+" "+action+" successfully!")
}

func (v *ListView) setNotice(kind NoticeKind, text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notice = Notice{Kind: kind, Text: text, at: v.now()}
}

func (v *ListView) clearNotice() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notice = Notice{}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/itam/internal/apperr"
	"github.com/starford/itam/internal/itamservice"
	"github.com/starford/itam/internal/listengine"
)

// Handler holds API route handlers.
type Handler struct {
	svc      *itamservice.Service
	pageSize int
}

// NewHandler creates a new Handler. pageSize is the default page size of
// paged list responses.
func NewHandler(svc *itamservice.Service, pageSize int) *Handler {
	if pageSize <= 0 {
		pageSize = listengine.DefaultPageSize
	}
	return &Handler{svc: svc, pageSize: pageSize}
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, apperr.WithDetail(apperr.ErrValidation, "id must be an integer")
	}
	return id, nil
}

// Login handles POST /token.
//
//	@Summary		Exchange credentials for a bearer token
//	@Tags			auth
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			username	formData	string	true	"Username"
//	@Param			password	formData	string	true	"Password"
//	@Success		200			{object}	TokenResponse
//	@Failure		401			{object}	errResponse
//	@Router			/token [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("invalid form body"))
		return
	}
	username, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	if username == "" || password == "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("username and password are required"))
		return
	}
	token, err := h.svc.Login(r.Context(), username, password)
	if err != nil {
		writeError(w, r, "User", err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Logout handles POST /logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		if err := h.svc.Logout(r.Context(), token); err != nil {
			writeError(w, r, "Session", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out"})
}

// Me handles GET /me.
//
//	@Summary		Current user
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	User
//	@Failure		401	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Me(r.Context())
	if err != nil {
		writeError(w, r, "User", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Stats handles GET /stats.
//
//	@Summary		Dashboard counters
//	@Tags			stats
//	@Produce		json
//	@Success		200	{object}	Stats
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, r, "Stats", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// List returns the handler for GET /{resource}. The query may carry q, one
// parameter per filter field, page, and page_size. Without page the whole
// visible set is returned as an array.
//
//	@Summary		List records with search, filters and optional paging
//	@Tags			lists
//	@Produce		json
//	@Param			q			query		string	false	"Search term"
//	@Param			page		query		int		false	"Page number (1-based)"
//	@Param			page_size	query		int		false	"Page size"
//	@Success		200			{object}	ListResponse
//	@Failure		401			{object}	errResponse
//	@Failure		422			{object}	errResponse
//	@Router			/{resource} [get]
func (h *Handler) List(resource string) http.HandlerFunc {
	schema, _ := listengine.SchemaFor(resource)
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filters := schema.NewFilterState()
		for _, key := range schema.FilterKeys() {
			if !q.Has(key) {
				continue
			}
			v := q.Get(key)
			if err := schema.CheckFilter(key, v); err != nil {
				writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
				return
			}
			filters = schema.SetFilter(filters, key, v)
		}

		records, err := h.svc.Records(r.Context(), resource)
		if err != nil {
			writeError(w, r, schema.Name, err)
			return
		}
		visible := listengine.ComputeVisibleSet(schema, records, q.Get("q"), filters)

		if !q.Has("page") {
			writeJSON(w, http.StatusOK, visible)
			return
		}
		page, _ := strconv.Atoi(q.Get("page"))
		size, _ := strconv.Atoi(q.Get("page_size"))
		if size <= 0 {
			size = h.pageSize
		}
		writeJSON(w, http.StatusOK, newListResponse(listengine.ComputePage(visible, page, size)))
	}
}

// Facet returns the handler for GET /{resource}/facets/{field}.
//
//	@Summary		Distinct values of a field
//	@Tags			lists
//	@Produce		json
//	@Param			field	path		string	true	"Field name"
//	@Success		200		{object}	FacetResponse
//	@Router			/{resource}/facets/{field} [get]
func (h *Handler) Facet(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		field := chi.URLParam(r, "field")
		records, err := h.svc.Records(r.Context(), resource)
		if err != nil {
			writeError(w, r, resource, err)
			return
		}
		writeJSON(w, http.StatusOK, FacetResponse{
			Field:  field,
			Values: listengine.ComputeFacet(records, field),
		})
	}
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/itam/internal/itamservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether bearer tokens are resolved; when disabled every
// request runs as itamservice.SystemIdentity.
// pageSize is the default size of paged list responses.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *itamservice.Service, authEnabled bool, pageSize int, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, pageSize)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, svc, itamservice.SystemIdentity))

	// Session.
	r.Post("/token", h.Login)
	r.Post("/logout", h.Logout)
	r.Get("/me", h.Me)

	// Assets.
	r.Get("/assets", h.List("assets"))
	r.Post("/assets", h.CreateAsset)
	r.Get("/assets/facets/{field}", h.Facet("assets"))
	r.Get("/assets/{id}", h.GetAsset)
	r.Put("/assets/{id}", h.UpdateAsset)
	r.Delete("/assets/{id}", h.DeleteAsset)

	// Users.
	r.Get("/users", h.List("users"))
	r.Post("/users", h.CreateUser)
	r.Get("/users/facets/{field}", h.Facet("users"))
	r.Put("/users/{id}", h.UpdateUser)
	r.Delete("/users/{id}", h.DeleteUser)

	// Tickets.
	r.Get("/tickets", h.List("tickets"))
	r.Post("/tickets", h.CreateTicket)
	r.Get("/tickets/facets/{field}", h.Facet("tickets"))
	r.Get("/tickets/{id}", h.GetTicket)
	r.Put("/tickets/{id}", h.UpdateTicket)
	r.Delete("/tickets/{id}", h.DeleteTicket)

	// Dashboard.
	r.Get("/stats", h.Stats)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

package api

import (
	"net/http"

	"github.com/starford/itam/internal/models"
)

// GetAsset handles GET /assets/{id}.
//
//	@Summary		Get an asset
//	@Tags			assets
//	@Produce		json
//	@Param			id	path		int	true	"Asset ID"
//	@Success		200	{object}	Asset
//	@Failure		404	{object}	errResponse
//	@Router			/assets/{id} [get]
func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, "Asset", err)
		return
	}
	a, err := h.svc.GetAsset(r.Context(), id)
	if err != nil {
		writeError(w, r, "Asset", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// CreateAsset handles POST /assets.
//
//	@Summary		Create an asset
//	@Tags			assets
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AssetInput	true	"Asset to create"
//	@Success		201		{object}	Asset
//	@Failure		401		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Failure		500		{object}	errResponse	"Duplicate entry"
//	@Security		BearerAuth
//	@Router			/assets [post]
func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var in models.AssetInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, "Asset", err)
		return
	}
	a, err := h.svc.CreateAsset(r.Context(), in)
	if err != nil {
		writeError(w, r, "Asset", err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// UpdateAsset handles PUT /assets/{id}.
//
//	@Summary		Replace an asset
//	@Tags			assets
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int			true	"Asset ID"
//	@Param			body	body		AssetInput	true	"Asset fields"
//	@Success		200		{object}	Asset
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/assets/{id} [put]
func (h *Handler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, "Asset", err)
		return
	}
	var in models.AssetInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, "Asset", err)
		return
	}
	a, err := h.svc.UpdateAsset(r.Context(), id, in)
	if err != nil {
		writeError(w, r, "Asset", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// DeleteAsset handles DELETE /assets/{id}.
//
//	@Summary		Delete an asset
//	@Tags			assets
//	@Param			id	path		int	true	"Asset ID"
//	@Success		200	{object}	messageResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/assets/{id} [delete]
func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, "Asset", err)
		return
	}
	if err := h.svc.DeleteAsset(r.Context(), id); err != nil {
		writeError(w, r, "Asset", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Asset deleted successfully"})
}

// CreateUser handles POST /users. Registration does not require a token.
//
//	@Summary		Register a user
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			body	body		UserCreate	true	"User to create"
//	@Success		201		{object}	User
//	@Failure		422		{object}	errResponse
//	@Failure		500		{object}	errResponse	"Duplicate entry"
//	@Router			/users [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in models.UserCreate
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, "User", err)
		return
	}
	u, err := h.svc.CreateUser(r.Context(), in)
	if err != nil {
		writeError(w, r, "User", err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// UpdateUser handles PUT /users/{id}.
//
//	@Summary		Update a user
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int			true	"User ID"
//	@Param			body	body		UserUpdate	true	"Fields to change"
//	@Success		200		{object}	User
//	@Failure		403		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/users/{id} [put]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, "User", err)
		return
	}
	var in models.UserUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, "User", err)
		return
	}
	u, err := h.svc.UpdateUser(r.Context(), id, in)
	if err != nil {
		writeError(w, r, "User", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// DeleteUser handles DELETE /users/{id}.
//
//	@Summary		Delete a user
//	@Tags			users
//	@Param			id	path		int	true	"User ID"
//	@Success		200	{object}	messageResponse
//	@Failure		400	{object}	errResponse	"Self-delete"
//	@Failure		403	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/users/{id} [delete]
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, "User", err)
		return
	}
	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		writeError(w, r, "User", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "User deleted successfully"})
}

// GetTicket handles GET /tickets/{id}.
func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, "Ticket", err)
		return
	}
	t, err := h.svc.GetTicket(r.Context(), id)
	if err != nil {
		writeError(w, r, "Ticket", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CreateTicket handles POST /tickets.
//
//	@Summary		Open a ticket
//	@Tags			tickets
//	@Accept			json
//	@Produce		json
//	@Param			body	body		TicketInput	true	"Ticket to create"
//	@Success		201		{object}	Ticket
//	@Failure		400		{object}	errResponse	"Linked record missing"
//	@Security		BearerAuth
//	@Router			/tickets [post]
func (h *Handler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var in models.TicketInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, "Ticket", err)
		return
	}
	t, err := h.svc.CreateTicket(r.Context(), in)
	if err != nil {
		writeError(w, r, "Ticket", err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// UpdateTicket handles PUT /tickets/{id}.
func (h *Handler) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, "Ticket", err)
		return
	}
	var in models.TicketInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, "Ticket", err)
		return
	}
	t, err := h.svc.UpdateTicket(r.Context(), id, in)
	if err != nil {
		writeError(w, r, "Ticket", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTicket handles DELETE /tickets/{id}.
func (h *Handler) DeleteTicket(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, "Ticket", err)
		return
	}
	if err := h.svc.DeleteTicket(r.Context(), id); err != nil {
		writeError(w, r, "Ticket", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Ticket deleted successfully"})
}

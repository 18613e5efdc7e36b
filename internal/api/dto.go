package api

import (
	"github.com/starford/itam/internal/listengine"
	"github.com/starford/itam/internal/models"
)

// TokenResponse is returned by POST /token.
type TokenResponse struct {
	AccessToken string `json:"access_token" example:"5f1c...e9" validate:"required"`
	TokenType   string `json:"token_type" example:"bearer" validate:"required"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page       int `json:"page" example:"1" validate:"required"`
	PageSize   int `json:"page_size" example:"5" validate:"required"`
	TotalPages int `json:"total_pages" example:"3" validate:"required"`
	Total      int `json:"total" example:"12" validate:"required"`
}

// ListResponse wraps a paged list. It is returned only when the request
// carries a page parameter; otherwise the full array is returned.
type ListResponse struct {
	Items      []listengine.Record `json:"items" validate:"required"`
	Pagination Pagination          `json:"pagination" validate:"required"`
}

// FacetResponse lists the distinct values of one field.
type FacetResponse struct {
	Field  string   `json:"field" example:"location" validate:"required"`
	Values []string `json:"values" validate:"required"`
}

// Domain payloads, aliased for swag.
type (
	Asset       = models.Asset
	User        = models.User
	Ticket      = models.Ticket
	Stats       = models.Stats
	AssetInput  = models.AssetInput
	UserCreate  = models.UserCreate
	UserUpdate  = models.UserUpdate
	TicketInput = models.TicketInput
)

func newListResponse(p listengine.Page) ListResponse {
	return ListResponse{
		Items: p.Items,
		Pagination: Pagination{
			Page:       p.Number,
			PageSize:   p.PageSize,
			TotalPages: p.TotalPages,
			Total:      p.Total,
		},
	}
}

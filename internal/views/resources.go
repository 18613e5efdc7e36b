package views

import (
	"context"

	"github.com/starford/itam/internal/apperr"
	"github.com/starford/itam/internal/listengine"
	"github.com/starford/itam/internal/session"
)

// Errors raised by the users view before any request is sent.
var (
	ErrAdminOnlyDelete = apperr.WithDetail(apperr.ErrForbidden, "Access denied: Only administrators can delete users.")
	ErrSelfDelete      = apperr.WithDetail(apperr.ErrBadRequest, "You cannot delete your own account.")
)

// NewAssetsView returns the assets list. Mutations refetch the collection.
func NewAssetsView(gw Gateway) *ListView {
	return NewListView(Config{
		Schema:       listengine.AssetSchema,
		Noun:         "asset",
		Policy:       PolicyRefetch,
		Required:     []string{"hostname"},
		RequiredText: "Hostname is required.",
	}, gw)
}

// NewTicketsView returns the tickets list. Mutations are applied locally with
// new tickets first.
func NewTicketsView(gw Gateway) *ListView {
	return NewListView(Config{
		Schema:       listengine.TicketSchema,
		Noun:         "ticket",
		Policy:       PolicyPrepend,
		Required:     []string{"title", "description"},
		RequiredText: "Title and Description are required.",
	}, gw)
}

// UsersView is the users list with the delete rules enforced locally.
type UsersView struct {
	*ListView
}

// NewUsersView returns the users list. Mutations refetch the collection.
func NewUsersView(gw Gateway) *UsersView {
	return &UsersView{NewListView(Config{
		Schema: listengine.UserSchema,
		Noun:   "user",
		Policy: PolicyRefetch,
	}, gw)}
}

// Delete refuses non-admin callers and self-deletion without contacting the
// server.
func (v *UsersView) Delete(ctx context.Context, sess session.Session, id int64) error {
	v.clearNotice()
	switch {
	case sess.Authenticated() && !sess.Identity.IsAdmin():
		return v.fail(ErrAdminOnlyDelete)
	case sess.Authenticated() && sess.Identity.ID == id:
		return v.fail(ErrSelfDelete)
	}
	return v.ListView.Delete(ctx, sess, id)
}

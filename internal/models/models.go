// Package models defines the domain types for the asset inventory.
package models

import (
	"github.com/starford/itam/internal/listengine"
)

// Asset statuses.
const (
	AssetActive   = "active"
	AssetInactive = "inactive"
)

// Ticket statuses and priorities.
const (
	TicketOpen       = "open"
	TicketInProgress = "in_progress"
	TicketClosed     = "closed"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// Asset is a tracked piece of hardware.
type Asset struct {
	ID          int64   `json:"id"`
	Hostname    string  `json:"hostname"`
	Serial      *string `json:"serial"`
	Model       *string `json:"model"`
	Location    *string `json:"location"`
	Status      string  `json:"status"`
	PurchasedAt *string `json:"purchased_at"`
}

// User is an account. The password hash never leaves the store.
type User struct {
	ID         int64   `json:"id"`
	Username   string  `json:"username"`
	Fullname   *string `json:"fullname"`
	Email      *string `json:"email"`
	Department *string `json:"department"`
	IsActive   bool    `json:"is_active"`
	Role       string  `json:"role"`
}

// Ticket is a support request, optionally linked to an asset and a user.
type Ticket struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	CreatedAt   *string `json:"created_at"`
	AssetID     *int64  `json:"asset_id"`
	UserID      *int64  `json:"user_id"`
	User        *User   `json:"user,omitempty"`
}

// Record projects the asset onto the list engine's field mapping.
func (a Asset) Record() listengine.Record {
	return listengine.Record{
		"id":           a.ID,
		"hostname":     a.Hostname,
		"serial":       deref(a.Serial),
		"model":        deref(a.Model),
		"location":     deref(a.Location),
		"status":       a.Status,
		"purchased_at": deref(a.PurchasedAt),
	}
}

// Record projects the user onto the list engine's field mapping.
func (u User) Record() listengine.Record {
	return listengine.Record{
		"id":         u.ID,
		"username":   u.Username,
		"fullname":   deref(u.Fullname),
		"email":      deref(u.Email),
		"department": deref(u.Department),
		"is_active":  u.IsActive,
		"role":       u.Role,
	}
}

// Record projects the ticket onto the list engine's field mapping. The linked
// user, when loaded, is embedded under "user".
func (t Ticket) Record() listengine.Record {
	r := listengine.Record{
		"id":          t.ID,
		"title":       t.Title,
		"description": deref(t.Description),
		"status":      t.Status,
		"priority":    t.Priority,
		"created_at":  deref(t.CreatedAt),
		"asset_id":    derefInt(t.AssetID),
		"user_id":     derefInt(t.UserID),
	}
	if t.User != nil {
		r["user"] = map[string]any(t.User.Record())
	}
	return r
}

// Records projects a slice of any record-capable model.
func Records[T interface{ Record() listengine.Record }](items []T) []listengine.Record {
	out := make([]listengine.Record, len(items))
	for i, it := range items {
		out[i] = it.Record()
	}
	return out
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func derefInt(n *int64) any {
	if n == nil {
		return nil
	}
	return *n
}

// Stats are the dashboard counters.
type Stats struct {
	Assets      int `json:"assets"`
	Users       int `json:"users"`
	OpenTickets int `json:"open_tickets"`
}

package models

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/itam/internal/session"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AssetInput is the create/update payload for an asset.
type AssetInput struct {
	Hostname    string  `json:"hostname" yaml:"hostname"`
	Serial      *string `json:"serial" yaml:"serial"`
	Model       *string `json:"model" yaml:"model"`
	Location    *string `json:"location" yaml:"location"`
	Status      *string `json:"status" yaml:"status"`
	PurchasedAt *string `json:"purchased_at" yaml:"purchased_at"`
}

// Validate validates the asset payload.
func (in *AssetInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Hostname, validation.Required, validation.Length(1, 128)),
		validation.Field(&in.Serial, validation.NilOrNotEmpty, validation.Length(0, 128)),
		validation.Field(&in.Model, validation.Length(0, 128)),
		validation.Field(&in.Location, validation.Length(0, 128)),
		validation.Field(&in.Status, validation.NilOrNotEmpty, validation.In(AssetActive, AssetInactive)),
		validation.Field(&in.PurchasedAt, validation.Date(DateLayout)),
	)
}

// Normalize fills defaults and turns empty optional strings into nil.
func (in *AssetInput) Normalize() {
	in.Serial = nilIfEmpty(in.Serial)
	in.Model = nilIfEmpty(in.Model)
	in.Location = nilIfEmpty(in.Location)
	in.PurchasedAt = nilIfEmpty(in.PurchasedAt)
	in.Status = nilIfEmpty(in.Status)
	if in.Status == nil {
		s := AssetActive
		in.Status = &s
	}
}

// UserCreate is the registration payload.
type UserCreate struct {
	Username   string  `json:"username"`
	Fullname   *string `json:"fullname"`
	Email      *string `json:"email"`
	Department *string `json:"department"`
	IsActive   *bool   `json:"is_active"`
	Role       *string `json:"role"`
	Password   string  `json:"password"`
}

// Validate validates the registration payload.
func (in *UserCreate) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Username, validation.Required, validation.Length(1, 64)),
		validation.Field(&in.Email, validation.Match(emailRe)),
		validation.Field(&in.Role, validation.NilOrNotEmpty, validation.In(session.RoleUser, session.RoleAdmin)),
		validation.Field(&in.Password, validation.Required, validation.Length(4, 256)),
	)
}

// Normalize fills defaults.
func (in *UserCreate) Normalize() {
	in.Fullname = nilIfEmpty(in.Fullname)
	in.Email = nilIfEmpty(in.Email)
	in.Department = nilIfEmpty(in.Department)
	if in.IsActive == nil {
		v := true
		in.IsActive = &v
	}
	if in.Role == nil || *in.Role == "" {
		r := session.RoleUser
		in.Role = &r
	}
}

// UserUpdate is a partial update; nil fields are left unchanged.
type UserUpdate struct {
	Username   *string `json:"username"`
	Fullname   *string `json:"fullname"`
	Email      *string `json:"email"`
	Department *string `json:"department"`
	IsActive   *bool   `json:"is_active"`
	Role       *string `json:"role"`
	Password   *string `json:"password"`
}

// Validate validates the partial update.
func (in *UserUpdate) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Username, validation.NilOrNotEmpty, validation.Length(1, 64)),
		validation.Field(&in.Email, validation.Match(emailRe)),
		validation.Field(&in.Role, validation.NilOrNotEmpty, validation.In(session.RoleUser, session.RoleAdmin)),
		validation.Field(&in.Password, validation.NilOrNotEmpty, validation.Length(4, 256)),
	)
}

// TicketInput is the create/update payload for a ticket.
type TicketInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	CreatedAt   *string `json:"created_at"`
	AssetID     *int64  `json:"asset_id"`
	UserID      *int64  `json:"user_id"`
}

// Validate validates the ticket payload.
func (in *TicketInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 256)),
		validation.Field(&in.Status, validation.NilOrNotEmpty, validation.In(TicketOpen, TicketInProgress, TicketClosed)),
		validation.Field(&in.Priority, validation.NilOrNotEmpty, validation.In(PriorityLow, PriorityMedium, PriorityHigh)),
		validation.Field(&in.CreatedAt, validation.Date(DateLayout)),
	)
}

// Normalize fills defaults.
func (in *TicketInput) Normalize() {
	in.Description = nilIfEmpty(in.Description)
	in.CreatedAt = nilIfEmpty(in.CreatedAt)
	if in.Status == nil || *in.Status == "" {
		s := TicketOpen
		in.Status = &s
	}
	if in.Priority == nil || *in.Priority == "" {
		p := PriorityMedium
		in.Priority = &p
	}
}

func nilIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

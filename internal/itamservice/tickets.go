package itamservice

import (
	"context"
	"errors"

	"github.com/starford/itam/internal/apperr"
	"github.com/starford/itam/internal/models"
	"github.com/starford/itam/internal/session"
)

const resTickets = "tickets"

// ListTickets returns all tickets for admins and the caller's own otherwise.
func (s *Service) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	me, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if me.IsAdmin() {
		return s.db.ListTickets(ctx, nil)
	}
	return s.db.ListTickets(ctx, &me.ID)
}

// GetTicket returns a ticket the caller owns (or any ticket for admins).
func (s *Service) GetTicket(ctx context.Context, id int64) (*models.Ticket, error) {
	me, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	return s.ownedTicket(ctx, me, id, "Access denied: You can only view your own tickets")
}

// CreateTicket stores a ticket. Linked records must exist. Without an
// explicit user the ticket is assigned to the caller.
func (s *Service) CreateTicket(ctx context.Context, in models.TicketInput) (*models.Ticket, error) {
	me, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	if in.UserID == nil && me.ID != 0 {
		uid := me.ID
		in.UserID = &uid
	}
	if err := s.checkLinks(ctx, in); err != nil {
		return nil, err
	}
	t, err := s.db.CreateTicket(ctx, in)
	if err != nil {
		return nil, err
	}
	s.onChange(resTickets, ActionCreated, t.ID)
	return t, nil
}

// UpdateTicket replaces a ticket the caller owns.
func (s *Service) UpdateTicket(ctx context.Context, id int64, in models.TicketInput) (*models.Ticket, error) {
	me, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedTicket(ctx, me, id, "Access denied: You can only edit your own tickets"); err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.checkLinks(ctx, in); err != nil {
		return nil, err
	}
	t, err := s.db.UpdateTicket(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.onChange(resTickets, ActionUpdated, t.ID)
	return t, nil
}

// DeleteTicket removes a ticket the caller owns.
func (s *Service) DeleteTicket(ctx context.Context, id int64) error {
	me, err := caller(ctx)
	if err != nil {
		return err
	}
	if _, err := s.ownedTicket(ctx, me, id, "Access denied: You can only delete your own tickets"); err != nil {
		return err
	}
	if err := s.db.DeleteTicket(ctx, id); err != nil {
		return err
	}
	s.onChange(resTickets, ActionDeleted, id)
	return nil
}

func (s *Service) ownedTicket(ctx context.Context, me session.Identity, id int64, denied string) (*models.Ticket, error) {
	t, err := s.db.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if !me.IsAdmin() && (t.UserID == nil || *t.UserID != me.ID) {
		return nil, apperr.WithDetail(apperr.ErrForbidden, denied)
	}
	return t, nil
}

func (s *Service) checkLinks(ctx context.Context, in models.TicketInput) error {
	if in.AssetID != nil {
		if _, err := s.db.GetAsset(ctx, *in.AssetID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.WithDetail(apperr.ErrBadRequest, "Linked asset does not exist")
			}
			return err
		}
	}
	if in.UserID != nil {
		if _, err := s.db.GetUser(ctx, *in.UserID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.WithDetail(apperr.ErrBadRequest, "Linked user does not exist")
			}
			return err
		}
	}
	return nil
}

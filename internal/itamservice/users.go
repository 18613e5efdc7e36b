package itamservice

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/starford/itam/internal/apperr"
	"github.com/starford/itam/internal/models"
	"github.com/starford/itam/internal/session"
)

const resUsers = "users"

func hashPassword(pw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// ListUsers returns every user. Requires an authenticated caller.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}
	return s.db.ListUsers(ctx)
}

// CreateUser registers a user. Registration is open, but only admins may
// create another admin.
func (s *Service) CreateUser(ctx context.Context, in models.UserCreate) (*models.User, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	if *in.Role == session.RoleAdmin {
		if me, ok := session.FromContext(ctx); !ok || !me.IsAdmin() {
			return nil, apperr.WithDetail(apperr.ErrForbidden, "Access denied: Only administrators can change roles")
		}
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u, err := s.db.CreateUser(ctx, in, hash)
	if err != nil {
		return nil, err
	}
	s.onChange(resUsers, ActionCreated, u.ID)
	return u, nil
}

// UpdateUser applies a partial update. Only admins change roles; other
// users may only edit themselves.
func (s *Service) UpdateUser(ctx context.Context, id int64, in models.UserUpdate) (*models.User, error) {
	me, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if in.Role != nil && !me.IsAdmin() {
		return nil, apperr.WithDetail(apperr.ErrForbidden, "Access denied: Only administrators can change roles")
	}
	if !me.IsAdmin() && id != me.ID {
		return nil, apperr.WithDetail(apperr.ErrForbidden, "Access denied: You can only edit your own profile")
	}
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}

	var hash *string
	if in.Password != nil && *in.Password != "" {
		h, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		hash = &h
	}
	u, err := s.db.UpdateUser(ctx, id, in, hash)
	if err != nil {
		return nil, err
	}
	s.onChange(resUsers, ActionUpdated, u.ID)
	return u, nil
}

// DeleteUser removes a user. Admin only; admins cannot delete themselves.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	me, err := caller(ctx)
	if err != nil {
		return err
	}
	if !me.IsAdmin() {
		return apperr.WithDetail(apperr.ErrForbidden, "Access denied: Only administrators can delete users")
	}
	if id == me.ID {
		return apperr.WithDetail(apperr.ErrBadRequest, "You cannot delete your own account")
	}
	if err := s.db.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.onChange(resUsers, ActionDeleted, id)
	return nil
}

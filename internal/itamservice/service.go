// Package itamservice applies the inventory's business rules on top of the
// store: authentication, role gating, and ticket ownership.
package itamservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/starford/itam/internal/apperr"
	"github.com/starford/itam/internal/listengine"
	"github.com/starford/itam/internal/models"
	"github.com/starford/itam/internal/session"
	"github.com/starford/itam/internal/store"
)

// Event actions passed to the change hook.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeFunc is invoked after every successful mutation.
type ChangeFunc func(resource, action string, id int64)

// SystemIdentity is used by in-process callers (MCP, inventory import, auth
// disabled mode). It has admin rights and no user row.
var SystemIdentity = session.Identity{Username: "system", Role: session.RoleAdmin}

// Service coordinates store operations and access rules.
type Service struct {
	db       store.Store
	tokenTTL time.Duration
	now      func() time.Time
	onChange ChangeFunc
}

// NewService creates a new service. tokenTTL bounds login sessions.
func NewService(db store.Store, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{
		db:       db,
		tokenTTL: tokenTTL,
		now:      time.Now,
		onChange: func(string, string, int64) {},
	}
}

// OnChange registers the mutation hook. Must be called before serving.
func (s *Service) OnChange(fn ChangeFunc) {
	if fn != nil {
		s.onChange = fn
	}
}

func caller(ctx context.Context) (session.Identity, error) {
	id, ok := session.FromContext(ctx)
	if !ok {
		return session.Identity{}, apperr.ErrUnauthenticated
	}
	return id, nil
}

func invalid(err error) error {
	return apperr.WithDetail(apperr.ErrValidation, err.Error())
}

// Login checks the credentials and issues an opaque bearer token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	badCreds := apperr.WithDetail(apperr.ErrUnauthenticated, "Incorrect username or password")
	u, hash, err := s.db.GetCredentials(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", badCreds
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", badCreds
	}
	token := uuid.NewString()
	if err := s.db.CreateSession(ctx, token, u.ID, s.now().Add(s.tokenTTL)); err != nil {
		return "", err
	}
	return token, nil
}

// Authenticate resolves a bearer token into the caller's identity.
func (s *Service) Authenticate(ctx context.Context, token string) (session.Identity, error) {
	u, err := s.db.ResolveSession(ctx, token, s.now())
	if err != nil {
		return session.Identity{}, apperr.WithDetail(apperr.ErrUnauthenticated, "Invalid token")
	}
	return session.Identity{ID: u.ID, Username: u.Username, Role: u.Role}, nil
}

// Logout invalidates a token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.db.DeleteSession(ctx, token)
}

// Me returns the calling user.
func (s *Service) Me(ctx context.Context) (*models.User, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if id.ID == 0 {
		return &models.User{Username: id.Username, Role: id.Role, IsActive: true}, nil
	}
	return s.db.GetUser(ctx, id.ID)
}

// Stats returns the dashboard counters.
func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	return s.db.Stats(ctx)
}

// Records returns the full collection of resource as engine records, scoped
// to what the caller may see.
func (s *Service) Records(ctx context.Context, resource string) ([]listengine.Record, error) {
	switch resource {
	case listengine.AssetSchema.Name:
		list, err := s.ListAssets(ctx)
		if err != nil {
			return nil, err
		}
		return models.Records(list), nil
	case listengine.UserSchema.Name:
		list, err := s.ListUsers(ctx)
		if err != nil {
			return nil, err
		}
		return models.Records(list), nil
	case listengine.TicketSchema.Name:
		list, err := s.ListTickets(ctx)
		if err != nil {
			return nil, err
		}
		return models.Records(list), nil
	}
	return nil, fmt.Errorf("%w: unknown resource %q", apperr.ErrNotFound, resource)
}

// BootstrapAdmin creates an admin account when the users table is empty.
// It reports whether a user was created.
func (s *Service) BootstrapAdmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	n, err := s.db.CountUsers(ctx)
	if err != nil || n > 0 {
		return false, err
	}
	role := session.RoleAdmin
	ctx = session.WithIdentity(ctx, SystemIdentity)
	if _, err := s.CreateUser(ctx, models.UserCreate{Username: username, Password: password, Role: &role}); err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	return true, nil
}

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/itam/internal/models"
)

// Store defines the persistence operations used by the service layer.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type Store interface {
	ListAssets(ctx context.Context) ([]models.Asset, error)
	GetAsset(ctx context.Context, id int64) (*models.Asset, error)
	CreateAsset(ctx context.Context, in models.AssetInput) (*models.Asset, error)
	UpdateAsset(ctx context.Context, id int64, in models.AssetInput) (*models.Asset, error)
	DeleteAsset(ctx context.Context, id int64) error
	UpsertAsset(ctx context.Context, in models.AssetInput) (*models.Asset, bool, error)

	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetCredentials(ctx context.Context, username string) (*models.User, string, error)
	CreateUser(ctx context.Context, in models.UserCreate, hash string) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, in models.UserUpdate, hash *string) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	CountUsers(ctx context.Context) (int, error)

	ListTickets(ctx context.Context, ownerID *int64) ([]models.Ticket, error)
	GetTicket(ctx context.Context, id int64) (*models.Ticket, error)
	CreateTicket(ctx context.Context, in models.TicketInput) (*models.Ticket, error)
	UpdateTicket(ctx context.Context, id int64, in models.TicketInput) (*models.Ticket, error)
	DeleteTicket(ctx context.Context, id int64) error

	CreateSession(ctx context.Context, token string, userID int64, expires time.Time) error
	ResolveSession(ctx context.Context, token string, now time.Time) (*models.User, error)
	DeleteSession(ctx context.Context, token string) error

	Stats(ctx context.Context) (models.Stats, error)

	FileChecksum(ctx context.Context, path string) (string, error)
	SetFileChecksum(ctx context.Context, path, checksum string) error
	AllFileChecksums(ctx context.Context) (map[string]string, error)

	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)

// Stats counts assets, users, and open tickets.
func (db *DB) Stats(ctx context.Context) (models.Stats, error) {
	var s models.Stats
	err := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT count(*) FROM assets),
			(SELECT count(*) FROM users),
			(SELECT count(*) FROM tickets WHERE lower(status) = 'open')
	`).Scan(&s.Assets, &s.Users, &s.OpenTickets)
	if err != nil {
		return models.Stats{}, fmt.Errorf("store: stats: %w", err)
	}
	return s, nil
}

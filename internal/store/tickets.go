package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/itam/internal/apperr"
	"github.com/starford/itam/internal/models"
)

const ticketSelect = `
	SELECT t.id, t.title, t.description, t.status, t.priority, t.created_at, t.asset_id, t.user_id,
	       u.id, u.username, u.fullname, u.email, u.department, u.is_active, u.role
	FROM tickets t
	LEFT JOIN users u ON u.id = t.user_id`

func scanTicket(s scanner) (*models.Ticket, error) {
	var (
		t                        models.Ticket
		desc, created            sql.NullString
		assetID, userID          sql.NullInt64
		uid                      sql.NullInt64
		uname, full, email, dept sql.NullString
		active                   sql.NullBool
		role                     sql.NullString
	)
	err := s.Scan(&t.ID, &t.Title, &desc, &t.Status, &t.Priority, &created, &assetID, &userID,
		&uid, &uname, &full, &email, &dept, &active, &role)
	if err != nil {
		return nil, err
	}
	t.Description = strPtr(desc)
	t.CreatedAt = strPtr(created)
	t.AssetID = intPtr(assetID)
	t.UserID = intPtr(userID)
	if uid.Valid {
		t.User = &models.User{
			ID:         uid.Int64,
			Username:   uname.String,
			Fullname:   strPtr(full),
			Email:      strPtr(email),
			Department: strPtr(dept),
			IsActive:   active.Bool,
			Role:       role.String,
		}
	}
	return &t, nil
}

func ticketDefaults(in models.TicketInput) (status, priority string) {
	status, priority = models.TicketOpen, models.PriorityMedium
	if in.Status != nil && *in.Status != "" {
		status = *in.Status
	}
	if in.Priority != nil && *in.Priority != "" {
		priority = *in.Priority
	}
	return status, priority
}

// ListTickets returns tickets in insertion order with their linked user.
// A non-nil ownerID restricts the result to that user's tickets.
func (db *DB) ListTickets(ctx context.Context, ownerID *int64) ([]models.Ticket, error) {
	q := ticketSelect
	var args []any
	if ownerID != nil {
		q += ` WHERE t.user_id = ?`
		args = append(args, *ownerID)
	}
	rows, err := db.conn.QueryContext(ctx, q+` ORDER BY t.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list tickets: %w", err)
	}
	defer rows.Close()

	out := []models.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan ticket: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// GetTicket returns one ticket or apperr.ErrNotFound.
func (db *DB) GetTicket(ctx context.Context, id int64) (*models.Ticket, error) {
	t, err := scanTicket(db.conn.QueryRowContext(ctx, ticketSelect+` WHERE t.id = ?`, id))
	if err != nil {
		return nil, mapErr(err, nil)
	}
	return t, nil
}

// CreateTicket inserts a ticket.
func (db *DB) CreateTicket(ctx context.Context, in models.TicketInput) (*models.Ticket, error) {
	status, priority := ticketDefaults(in)
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO tickets (title, description, status, priority, created_at, asset_id, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, in.Title, nullString(in.Description), status, priority, nullString(in.CreatedAt),
		nullInt(in.AssetID), nullInt(in.UserID))
	if err != nil {
		return nil, fmt.Errorf("store: create ticket: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("store: ticket id: %w", err)
	}
	return db.GetTicket(ctx, id)
}

// UpdateTicket replaces every column of an existing ticket.
func (db *DB) UpdateTicket(ctx context.Context, id int64, in models.TicketInput) (*models.Ticket, error) {
	status, priority := ticketDefaults(in)
	res, err := db.conn.ExecContext(ctx, `
		UPDATE tickets SET
			title       = ?,
			description = ?,
			status      = ?,
			priority    = ?,
			created_at  = ?,
			asset_id    = ?,
			user_id     = ?
		WHERE id = ?
	`, in.Title, nullString(in.Description), status, priority, nullString(in.CreatedAt),
		nullInt(in.AssetID), nullInt(in.UserID), id)
	if err != nil {
		return nil, fmt.Errorf("store: update ticket: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.ErrNotFound
	}
	return db.GetTicket(ctx, id)
}

// DeleteTicket removes a ticket.
func (db *DB) DeleteTicket(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM tickets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete ticket: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

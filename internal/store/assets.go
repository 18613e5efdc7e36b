package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/itam/internal/apperr"
	"github.com/starford/itam/internal/models"
)

const assetColumns = `id, hostname, serial, model, location, status, purchased_at`

func scanAsset(s scanner) (*models.Asset, error) {
	var (
		a                             models.Asset
		serial, model, loc, purchased sql.NullString
	)
	if err := s.Scan(&a.ID, &a.Hostname, &serial, &model, &loc, &a.Status, &purchased); err != nil {
		return nil, err
	}
	a.Serial = strPtr(serial)
	a.Model = strPtr(model)
	a.Location = strPtr(loc)
	a.PurchasedAt = strPtr(purchased)
	return &a, nil
}

func assetValues(in models.AssetInput) map[string]string {
	return map[string]string{"hostname": in.Hostname, "serial": deref(in.Serial)}
}

func assetStatus(in models.AssetInput) string {
	if in.Status == nil || *in.Status == "" {
		return models.AssetActive
	}
	return *in.Status
}

// ListAssets returns every asset in insertion order.
func (db *DB) ListAssets(ctx context.Context) ([]models.Asset, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+assetColumns+` FROM assets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list assets: %w", err)
	}
	defer rows.Close()

	out := []models.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan asset: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// GetAsset returns one asset or apperr.ErrNotFound.
func (db *DB) GetAsset(ctx context.Context, id int64) (*models.Asset, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = ?`, id)
	a, err := scanAsset(row)
	if err != nil {
		return nil, mapErr(err, nil)
	}
	return a, nil
}

// CreateAsset inserts an asset and returns the stored row.
func (db *DB) CreateAsset(ctx context.Context, in models.AssetInput) (*models.Asset, error) {
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO assets (hostname, serial, model, location, status, purchased_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, in.Hostname, nullString(in.Serial), nullString(in.Model), nullString(in.Location),
		assetStatus(in), nullString(in.PurchasedAt))
	if err != nil {
		return nil, mapErr(err, assetValues(in))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("store: asset id: %w", err)
	}
	return db.GetAsset(ctx, id)
}

// UpdateAsset replaces every column of an existing asset.
func (db *DB) UpdateAsset(ctx context.Context, id int64, in models.AssetInput) (*models.Asset, error) {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE assets SET
			hostname     = ?,
			serial       = ?,
			model        = ?,
			location     = ?,
			status       = ?,
			purchased_at = ?
		WHERE id = ?
	`, in.Hostname, nullString(in.Serial), nullString(in.Model), nullString(in.Location),
		assetStatus(in), nullString(in.PurchasedAt), id)
	if err != nil {
		return nil, mapErr(err, assetValues(in))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.ErrNotFound
	}
	return db.GetAsset(ctx, id)
}

// DeleteAsset removes an asset; linked tickets cascade.
func (db *DB) DeleteAsset(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete asset: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// UpsertAsset matches an existing asset by serial, or by hostname when the
// serial is empty, and updates it; otherwise it inserts. The bool reports
// whether a new row was created.
func (db *DB) UpsertAsset(ctx context.Context, in models.AssetInput) (*models.Asset, bool, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	var id int64
	if in.Serial != nil && *in.Serial != "" {
		err = tx.QueryRowContext(ctx, `SELECT id FROM assets WHERE serial = ?`, *in.Serial).Scan(&id)
	} else {
		err = tx.QueryRowContext(ctx, `SELECT id FROM assets WHERE hostname = ?`, in.Hostname).Scan(&id)
	}

	created := false
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx, `
			INSERT INTO assets (hostname, serial, model, location, status, purchased_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, in.Hostname, nullString(in.Serial), nullString(in.Model), nullString(in.Location),
			assetStatus(in), nullString(in.PurchasedAt))
		if err != nil {
			return nil, false, mapErr(err, assetValues(in))
		}
		if id, err = res.LastInsertId(); err != nil {
			return nil, false, fmt.Errorf("store: asset id: %w", err)
		}
		created = true
	case err != nil:
		return nil, false, fmt.Errorf("store: lookup asset: %w", err)
	default:
		_, err := tx.ExecContext(ctx, `
			UPDATE assets SET hostname = ?, serial = ?, model = ?, location = ?, status = ?, purchased_at = ?
			WHERE id = ?
		`, in.Hostname, nullString(in.Serial), nullString(in.Model), nullString(in.Location),
			assetStatus(in), nullString(in.PurchasedAt), id)
		if err != nil {
			return nil, false, mapErr(err, assetValues(in))
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("store: commit: %w", err)
	}
	a, err := db.GetAsset(ctx, id)
	return a, created, err
}

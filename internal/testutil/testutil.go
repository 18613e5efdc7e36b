// Package testutil provides shared test helpers for setting up databases,
// callers, and inventory directories.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/itam/internal/session"
	"github.com/starford/itam/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "itam-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// As returns a context carrying the given caller.
func As(id int64, username, role string) context.Context {
	return session.WithIdentity(context.Background(), session.Identity{ID: id, Username: username, Role: role})
}

// TestInventoryDir creates a temporary inventory directory seeded with files
// (relative path → content).
func TestInventoryDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

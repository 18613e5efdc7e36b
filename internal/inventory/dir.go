// Package inventory imports assets from a drop directory of YAML manifests
// and keeps watching it for changes.
package inventory

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// File is one manifest found in the inventory directory.
type File struct {
	Path     string // relative to the directory root
	Checksum string
}

// Dir is a read-only view of the inventory directory.
type Dir struct {
	root string
}

// OpenDir returns a Dir rooted at root, which must be an existing directory.
func OpenDir(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("inventory: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("inventory: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("inventory: root is not a directory: %s", abs)
	}
	return &Dir{root: abs}, nil
}

// Root returns the absolute directory path.
func (d *Dir) Root() string { return d.root }

// isManifest reports whether name is a YAML manifest. Hidden files (editor
// swap files, partial writes) are skipped.
func isManifest(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	return ext == ".yaml" || ext == ".yml"
}

// safePath resolves rel against the root and rejects anything outside it.
func (d *Dir) safePath(rel string) (string, error) {
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("inventory: absolute paths not allowed: %s", rel)
	}
	abs := filepath.Join(d.root, cleaned)
	if !strings.HasPrefix(abs, d.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("inventory: path escapes root: %s", rel)
	}
	return abs, nil
}

// List walks the directory and returns every manifest with its checksum.
func (d *Dir) List() ([]File, error) {
	var out []File
	err := filepath.WalkDir(d.root, func(p string, e fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if e.IsDir() || !isManifest(e.Name()) {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(d.root, p)
		out = append(out, File{Path: rel, Checksum: sum(data)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("inventory: list: %w", err)
	}
	return out, nil
}

// Read returns the raw bytes of a manifest.
func (d *Dir) Read(rel string) ([]byte, error) {
	abs, err := d.safePath(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("inventory: read %s: %w", rel, err)
	}
	return data, nil
}

// sum returns the hex SHA-256 of data.
func sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

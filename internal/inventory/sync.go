package inventory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/itam/internal/models"
)

// Importer upserts one asset. itamservice.Service implements it.
type Importer interface {
	ImportAsset(ctx context.Context, in models.AssetInput) (*models.Asset, bool, error)
}

// Checksums remembers which manifest contents were already imported.
type Checksums interface {
	FileChecksum(ctx context.Context, path string) (string, error)
	SetFileChecksum(ctx context.Context, path, checksum string) error
	AllFileChecksums(ctx context.Context) (map[string]string, error)
}

// Report summarizes one sync pass.
type Report struct {
	Files   int // manifests imported (unchanged ones are not counted)
	Created int
	Updated int
	Failed  int // assets rejected by the importer
}

func (r *Report) add(o Report) {
	r.Files += o.Files
	r.Created += o.Created
	r.Updated += o.Updated
	r.Failed += o.Failed
}

// Sync imports every manifest whose content changed since the last pass.
// Files removed from disk leave their assets in place.
func Sync(ctx context.Context, dir *Dir, imp Importer, sums Checksums, logger *slog.Logger) (Report, error) {
	var rep Report
	files, err := dir.List()
	if err != nil {
		return rep, err
	}
	known, err := sums.AllFileChecksums(ctx)
	if err != nil {
		return rep, err
	}
	for _, f := range files {
		if known[f.Path] == f.Checksum {
			continue
		}
		r, err := importFile(ctx, dir, imp, sums, f.Path)
		rep.add(r)
		if err != nil {
			logger.Warn("inventory: import failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("inventory: imported", slog.String("path", f.Path),
			slog.Int("created", r.Created), slog.Int("updated", r.Updated))
	}
	return rep, nil
}

// importFile upserts every asset of one manifest. The checksum is recorded
// only when all assets were accepted, so a rejected file is retried on the
// next pass.
func importFile(ctx context.Context, dir *Dir, imp Importer, sums Checksums, rel string) (Report, error) {
	var rep Report
	data, err := dir.Read(rel)
	if err != nil {
		return rep, err
	}
	cs := sum(data)
	if prev, _ := sums.FileChecksum(ctx, rel); prev == cs {
		return rep, nil
	}
	assets, err := Parse(data)
	if err != nil {
		return rep, err
	}

	rep.Files = 1
	var firstErr error
	for i, in := range assets {
		_, created, err := imp.ImportAsset(ctx, in)
		switch {
		case err != nil:
			rep.Failed++
			if firstErr == nil {
				firstErr = fmt.Errorf("asset #%d (%s): %w", i+1, in.Hostname, err)
			}
		case created:
			rep.Created++
		default:
			rep.Updated++
		}
	}
	if firstErr != nil {
		return rep, firstErr
	}
	return rep, sums.SetFileChecksum(ctx, rel, cs)
}

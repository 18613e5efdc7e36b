package inventory

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debounce is the quiet period after the last write before a changed
// manifest is imported. Editors often write a file in several steps.
const Debounce = 200 * time.Millisecond

// Watch imports changed manifests until ctx is cancelled. New directories
// are watched as they appear. Removals are logged and otherwise ignored.
func Watch(ctx context.Context, dir *Dir, imp Importer, sums Checksums, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, dir.Root()); err != nil {
		return err
	}
	logger.Info("inventory: watching", slog.String("root", dir.Root()))

	pending := make(map[string]struct{})
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	schedule := func(rel string) {
		pending[rel] = struct{}{}
		if timer == nil {
			timer = time.NewTimer(Debounce)
			fire = timer.C
		} else {
			timer.Reset(Debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("inventory: watcher stopped")
			return nil

		case <-fire:
			for rel := range pending {
				rep, err := importFile(ctx, dir, imp, sums, rel)
				if err != nil {
					logger.Warn("inventory: import failed", slog.String("path", rel), slog.String("error", err.Error()))
					continue
				}
				if rep.Files > 0 {
					logger.Info("inventory: imported", slog.String("path", rel),
						slog.Int("created", rep.Created), slog.Int("updated", rep.Updated))
				}
			}
			clear(pending)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addDirsRecursive(w, ev.Name); err != nil {
						logger.Warn("inventory: watch new dir failed", slog.String("path", ev.Name), slog.String("error", err.Error()))
					}
					scheduleDir(dir.Root(), ev.Name, schedule)
					continue
				}
			}
			if !isManifest(ev.Name) {
				continue
			}
			rel, err := filepath.Rel(dir.Root(), ev.Name)
			if err != nil {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				schedule(rel)
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				logger.Debug("inventory: manifest removed", slog.String("path", rel))
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("inventory: watcher error", slog.String("error", err.Error()))
		}
	}
}

// scheduleDir queues every manifest already present in a new directory.
func scheduleDir(root, path string, schedule func(string)) {
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !isManifest(p) {
			return nil
		}
		if rel, err := filepath.Rel(root, p); err == nil {
			schedule(rel)
		}
		return nil
	})
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/starford/lngkit/internal/langs"
	"github.com/starford/lngkit/internal/parser"
	"github.com/starford/lngkit/internal/storage"
)

// EventCallback is called after a watcher-driven index change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, code string)

const reconcileDelay = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the languages directory and processes
// file change events until ctx is cancelled. It calls cb (if non-nil) after
// each successful index mutation.
//
// Rename events trigger a debounced reconciliation pass that removes stale
// index entries and picks up files that arrived under a new name.
func Watch(ctx context.Context, db *DB, store storage.Provider, logger *slog.Logger, cb EventCallback, opts ...parser.Option) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := store.Root()
	if err := w.Add(root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	notify := func(kind, code string) {
		if cb != nil {
			cb(kind, code)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, store, logger, notify, opts)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			file := filepath.Base(ev.Name)
			code, isLang := langs.FileCode(file, store.Ext())
			if !isLang || filepath.Dir(ev.Name) != root {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := store.Read(file)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("file", file), slog.String("error", readErr.Error()))
					continue
				}
				prev, _ := db.GetChecksum(code)
				res, idxErr := IndexFile(db, code, file, data, opts...)
				if idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("file", file), slog.String("error", idxErr.Error()))
					continue
				}
				kind := "updated"
				if prev == "" {
					kind = "created"
				}
				logger.Debug("watcher: indexed", slog.String("file", file), slog.String("op", kind),
					slog.Int("errors", res.Errors))
				notify(kind, code)

			case ev.Op&fsnotify.Remove != 0:
				if delErr := db.DeleteLanguage(code); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("code", code), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("code", code))
				notify("deleted", code)

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the old name only; the new name
				// arrives as a Create if it stays in the directory.
				if delErr := db.DeleteLanguage(code); delErr != nil {
					logger.Warn("watcher: rename delete failed", slog.String("code", code), slog.String("error", delErr.Error()))
				} else {
					logger.Debug("watcher: rename old deleted", slog.String("code", code))
					notify("deleted", code)
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile removes index entries without a file on disk and indexes
// on-disk files whose checksum differs from the index.
func reconcile(db *DB, store storage.Provider, logger *slog.Logger, notify EventCallback, opts []parser.Option) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	metas, err := store.List()
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Code] = struct{}{}
	}

	for code := range checksums {
		if _, ok := disk[code]; !ok {
			if delErr := db.DeleteLanguage(code); delErr == nil {
				logger.Debug("reconcile: removed stale", slog.String("code", code))
				notify("deleted", code)
			}
		}
	}

	for _, m := range metas {
		prev, known := checksums[m.Code]
		if prev == m.Checksum {
			continue
		}
		data, readErr := store.Read(m.File)
		if readErr != nil {
			continue
		}
		if _, idxErr := IndexFile(db, m.Code, m.File, data, opts...); idxErr == nil {
			logger.Debug("reconcile: indexed", slog.String("file", m.File))
			if known {
				notify("updated", m.Code)
			} else {
				notify("created", m.Code)
			}
		}
	}
}

package index

import (
	"log/slog"
	"time"

	"github.com/starford/lngkit/internal/checksum"
	"github.com/starford/lngkit/internal/langs"
	"github.com/starford/lngkit/internal/parser"
	"github.com/starford/lngkit/internal/storage"
)

// Sync walks the languages directory and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger, opts ...parser.Option) error {
	metas, err := store.List()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Code] = struct{}{}

		if checksums[m.Code] == m.Checksum {
			continue
		}

		data, err := store.Read(m.File)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("file", m.File), slog.String("error", err.Error()))
			continue
		}
		res, err := IndexFile(db, m.Code, m.File, data, opts...)
		if err != nil {
			logger.Warn("sync: index failed", slog.String("file", m.File), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: indexed", slog.String("file", m.File),
			slog.Int("keys", len(res.Translations)), slog.Int("errors", res.Errors))
	}

	for code := range checksums {
		if _, ok := disk[code]; !ok {
			if err := db.DeleteLanguage(code); err != nil {
				logger.Warn("sync: delete failed", slog.String("code", code), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("code", code))
			}
		}
	}

	return nil
}

// IndexFile parses data and upserts the result under code. A parse with
// errors is stored with its counters and no translations.
func IndexFile(db *DB, code, file string, data []byte, opts ...parser.Option) (*parser.Result, error) {
	res := parser.Parse(data, append([]parser.Option{parser.WithSource(file)}, opts...)...)

	translations := res.Translations
	if !res.OK() {
		translations = nil
	}
	row := LanguageRow{
		Code:      code,
		Name:      langs.DisplayName(code),
		File:      file,
		Checksum:  checksum.Sum(data),
		Warnings:  res.Warnings,
		Errors:    res.Errors,
		UpdatedAt: time.Now().UTC(),
	}
	if err := db.UpsertLanguage(row, translations); err != nil {
		return nil, err
	}
	return res, nil
}

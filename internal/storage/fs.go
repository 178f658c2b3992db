package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/lngkit/internal/checksum"
	"github.com/starford/lngkit/internal/langs"
	"github.com/starford/lngkit/internal/models"
)

// FS implements Provider backed by a single local directory.
type FS struct {
	root string // absolute path to the languages directory
	ext  string // language file extension, with leading dot
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root, ext string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	if !strings.HasPrefix(ext, ".") {
		return nil, fmt.Errorf("storage: extension must start with a dot: %q", ext)
	}
	return &FS{root: abs, ext: ext}, nil
}

// Root returns the absolute directory path.
func (f *FS) Root() string {
	return f.root
}

// Ext returns the language file extension.
func (f *FS) Ext() string {
	return f.ext
}

// Path resolves name inside the root and rejects anything that is not a
// plain language file name.
func (f *FS) Path(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("storage: empty file name")
	}
	if filepath.IsAbs(name) || name != filepath.Base(filepath.Clean(name)) || strings.Contains(name, "..") {
		return "", fmt.Errorf("storage: invalid file name: %s", name)
	}
	if _, ok := langs.FileCode(name, f.ext); !ok {
		return "", fmt.Errorf("storage: not a %s file: %s", f.ext, name)
	}
	return filepath.Join(f.root, name), nil
}

// List returns metadata for every language file directly under root.
func (f *FS) List() ([]models.LanguageFile, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	var out []models.LanguageFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		code, ok := langs.FileCode(e.Name(), f.ext)
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("storage: stat %s: %w", e.Name(), err)
		}
		data, err := os.ReadFile(filepath.Join(f.root, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("storage: read %s: %w", e.Name(), err)
		}
		out = append(out, models.LanguageFile{
			Code:      code,
			File:      e.Name(),
			Checksum:  checksum.Sum(data),
			UpdatedAt: info.ModTime(),
		})
	}
	return out, nil
}

// Read returns the raw bytes of a language file.
func (f *FS) Read(name string) ([]byte, error) {
	abs, err := f.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(name string, content []byte) error {
	abs, err := f.Path(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.root, ".lngkit-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes a language file.
func (f *FS) Delete(name string) error {
	abs, err := f.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", name, err)
	}
	return nil
}

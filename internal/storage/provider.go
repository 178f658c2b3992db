// Package storage defines the language directory abstraction.
package storage

import "github.com/starford/lngkit/internal/models"

// Provider is the interface for language file operations.
// Names are plain file names inside the languages directory.
type Provider interface {
	// Root returns the absolute path of the languages directory.
	Root() string
	// Ext returns the language file extension, with leading dot.
	Ext() string
	// List returns metadata for every language file in the directory.
	List() ([]models.LanguageFile, error)
	// Path returns the absolute path of name after validating it.
	Path(name string) (string, error)
	// Read returns the raw bytes of the file.
	Read(name string) ([]byte, error)
	// Write atomically writes content to the file.
	Write(name string, content []byte) error
	// Delete removes the file.
	Delete(name string) error
}

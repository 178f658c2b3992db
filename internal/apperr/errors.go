// Package apperr holds sentinel errors shared by the service and transport layers.
package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrAlreadyExists  = errors.New("already exists")
	ErrInvalidContent = errors.New("invalid content")
	ErrInvalidCode    = errors.New("invalid language code")
)

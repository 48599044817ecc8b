// Package apperr defines the error kinds shared by every adrkit surface.
package apperr

import "errors"

var (
	ErrMissingArgument = errors.New("missing argument")
	ErrInvalidChoice   = errors.New("invalid choice")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrPathNotFound    = errors.New("path not found")
	ErrNoStatusField   = errors.New("no status field found")
	ErrDuplicateRecord = errors.New("record already exists")
	ErrConflict        = errors.New("conflict")
)

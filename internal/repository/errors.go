package repository

import "errors"

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a create would overwrite an existing record
// that must stay unique, such as a registered email.
var ErrConflict = errors.New("conflict")

package database

import "errors"

// ErrNotFound is returned by Update when the target id is absent or soft-deleted.
// Reads report absence as nil/false instead.
var ErrNotFound = errors.New("property not found")

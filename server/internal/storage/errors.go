package storage

import "errors"

// ErrNotFound is returned by updates that matched no row
var ErrNotFound = errors.New("not found")

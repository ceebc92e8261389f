package model

import "errors"

// ErrNotFound is returned by file stores for a file that does not exist.
var ErrNotFound = errors.New("not found")

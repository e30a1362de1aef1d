package repository

import "errors"

// ErrDuplicate is returned by Create when a unique constraint rejects the row
var ErrDuplicate = errors.New("duplicate record")

package errors

import "errors"

var ErrNotFound = errors.New("lock not found")

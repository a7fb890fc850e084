package errors

import "errors"

var ErrNotFound = errors.New("scheduled item not found")

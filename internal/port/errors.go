package port

import "errors"

// Sentinel errors used across ports.
var (
	ErrResourceNotFound = errors.New("resource not found")
)

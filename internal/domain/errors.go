package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrNotReady         = errors.New("result not ready")
	ErrCapacityExceeded = errors.New("queue capacity exceeded")
	ErrInvalidImage     = errors.New("invalid image")
)

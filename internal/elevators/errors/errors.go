package errors

import "errors"

var (
	ErrNotFound = errors.New("lift not found")

	ErrInvalidID = errors.New("invalid lift ID format")

	ErrNoOpenUsage = errors.New("lift has no active usage")

	ErrAlreadyInUse = errors.New("lift already has an open usage record")
)

package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid execution context")

	// ErrEmptyDigest means the digest window has nothing worth sending.
	// The HTTP layer reports it as not found so no empty email goes out.
	ErrEmptyDigest = errors.New("digest has no content")
)

package semcache

import (
	"errors"
)

var (
	// ErrInvalidTopK is returned when topK is not positive.
	ErrInvalidTopK = errors.New("topK must be positive")

	// ErrNoBackend is returned when constructing a SemCache without a
	// search backend.
	ErrNoBackend = errors.New("search backend must not be nil")
)

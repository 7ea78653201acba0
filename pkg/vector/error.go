package vector

import "errors"

var (
	// ErrDimensionMismatch is returned when a vector's dimensionality does
	// not match the index configuration.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrConnection is returned when the index backend fails.
	ErrConnection = errors.New("vector index backend failed")
)

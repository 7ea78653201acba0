// Package embeddings defines the embedding provider contract.
//
// An Embedder is a pure mapping from text to a fixed-dimension vector. The
// store relies on determinism (same text, same vector) so that index
// rebuilds after cleanup are reproducible. Providers are pluggable via
// configuration; the digest provider is the default and requires no
// external service.
package embeddings

import (
	"context"
	"errors"
)

// ErrEmbedding is returned when embedding generation fails.
var ErrEmbedding = errors.New("embedding failed")

// Embedder provides text embedding capabilities.
type Embedder interface {
	// Embed converts text into a normalized vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}

// Package digest provides a deterministic, content-derived embedder.
//
// The vector is derived from a SHA-256 digest of the input text, giving a
// reproducible, uniformly-distributed embedding that carries no semantic
// meaning. It exists so the store works end to end without an embedding
// service; any real provider behind the same interface is a drop-in
// replacement.
package digest

import (
	"context"
	"crypto/sha256"

	"github.com/draftloop/exemplar/pkg/embeddings"
)

// DefaultDimensions matches the dimensionality of common sentence
// embedding models so a real provider can replace this one without an
// index dimension change.
const DefaultDimensions = 768

// Embedder maps text to a fixed-dimension normalized vector.
type Embedder struct {
	dims int
}

// NewEmbedder creates a digest embedder. Dimensions defaults to
// DefaultDimensions when zero.
func NewEmbedder(dims int) *Embedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Embedder{dims: dims}
}

// Dimensions reports the vector dimensionality.
func (e *Embedder) Dimensions() int {
	return e.dims
}

// Embed converts text into a unit-norm vector. Empty input yields the zero
// vector rather than an error so ranking stays total over the corpus.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dims)
	if text == "" {
		return vec, nil
	}

	sum := sha256.Sum256([]byte(text))
	for i, b := range sum {
		if i >= e.dims {
			break
		}
		vec[i] = (float32(b) - 128) / 128
	}

	return embeddings.Normalize(vec), nil
}

// Close is a no-op for the digest embedder.
func (e *Embedder) Close() error {
	return nil
}

var _ embeddings.Embedder = (*Embedder)(nil)

// Package vector provides the similarity index contract for the exemplar
// memory store.
//
// An Index is an append-only nearest-neighbor structure over pre-normalized
// embedding vectors. Point deletion is deliberately absent from the
// contract: the reference backends support append but not delete, so
// removing vectors happens only through Rebuild, which reconstructs the
// index from the surviving vector set. This keeps the O(n) cost of
// structural change visible in the interface.
//
// The whole component is optional. When no index is configured or the
// backend fails to initialize, the store degrades to quality/recency
// fallback ranking without raising.
package vector

import "context"

// Match pairs an indexed vector's ordinal position with its similarity
// score (inner product against the query; higher = more similar).
type Match struct {
	Position int
	Score    float32
}

// Index handles storage and similarity ranking of embedding vectors.
type Index interface {
	// Append adds a vector and returns its ordinal position.
	Append(ctx context.Context, vec []float32) (int, error)

	// Count reports the number of indexed vectors.
	Count(ctx context.Context) (int, error)

	// Search returns indexed vectors ordered by descending inner product
	// against the query, ties broken by ascending position. A topK <= 0
	// returns the full ranking.
	Search(ctx context.Context, query []float32, topK int) ([]Match, error)

	// Rebuild replaces the index contents with the given vectors, in
	// order. Used after cleanup removes records from the corpus.
	Rebuild(ctx context.Context, vecs [][]float32) error

	// Save persists the index artifact, where the backend has one.
	Save() error

	// Close releases any resources held by the index.
	Close() error
}

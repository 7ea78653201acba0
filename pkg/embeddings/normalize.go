package embeddings

import "math"

// Normalize scales vec to unit L2 norm in place and returns it. The store
// ranks by raw inner product, so every provider must hand back unit
// vectors regardless of what its backing service returns. A zero vector
// is returned unchanged.
func Normalize(vec []float32) []float32 {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}

	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}

	return vec
}

package vector

import "math"

// cosineEpsilon guards the denominator so an all-zero vector scores 0
// instead of dividing by zero.
const cosineEpsilon = 1e-8

// CosineSimilarity computes normalized dot-product similarity between two
// vectors, roughly in [-1, 1].
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + cosineEpsilon)
}

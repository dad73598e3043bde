package embedding

import "math"

// Cosine computes the cosine similarity between two vectors. Returns 0 when
// the lengths differ or either vector has zero magnitude, so a provider or
// model mismatch degrades ranking instead of panicking.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

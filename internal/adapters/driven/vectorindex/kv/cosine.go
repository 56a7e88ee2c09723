package kv

import "math"

// cosineSimilarity computes dot(a,b) / (|a| * |b|).
//
// Mismatched lengths are a scoring error, not a fault: the result is 0
// and the caller's threshold excludes the record. A zero norm on
// either side also yields 0, never NaN.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
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

package matching

import "math"

// Similarity returns the cosine similarity of two feature vectors.
// Vectors of differing length score 0 rather than erroring, as do zero
// vectors, so a malformed embedding can never break a match scan.
func Similarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Percentage converts a raw [0,1] similarity score into the rounded 0-100
// integer used in API responses. Scores are stored raw; this is the only
// place the display unit is produced.
func Percentage(score float64) int {
	return int(math.Round(score * 100))
}

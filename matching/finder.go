package matching

import "sort"

// Candidate is one opposite-kind report considered during a match scan.
// Embedding may be nil when the report was saved without image features.
type Candidate struct {
	ID        string
	Embedding []float64
}

// Result is a candidate that scored at or above the threshold
type Result struct {
	ID         string
	Similarity float64
}

// FindMatches scores target against every candidate that has an embedding and
// returns the ones at or above threshold, best first. Candidates without an
// embedding are skipped entirely, not scored as zero. Ties keep input order.
func FindMatches(target []float64, candidates []Candidate, threshold float64) []Result {
	results := []Result{}
	if len(target) == 0 {
		return results
	}
	for _, c := range candidates {
		if len(c.Embedding) == 0 {
			continue
		}
		score := Similarity(target, c.Embedding)
		if score >= threshold {
			results = append(results, Result{ID: c.ID, Similarity: score})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	return results
}

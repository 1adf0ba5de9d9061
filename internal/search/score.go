package search

import "github.com/hyperjump/hikari/internal/models"

// NormalizeScores scales matcher scores to [0,1] by the best score, keeping order.
func NormalizeScores(results []models.SearchResult) []float64 {
	out := make([]float64, len(results))
	if len(results) == 0 {
		return out
	}
	maxScore := results[0].Score
	for _, r := range results {
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}
	for i, r := range results {
		if maxScore > 0 && r.Score > 0 {
			out[i] = r.Score / maxScore
		}
	}
	return out
}

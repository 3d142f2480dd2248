package ranking

import (
	"math"
	"math/rand"
	"sort"

	"github.com/nileways/trip-planner/internal/models"
)

// CosineSimilarity returns the cosine of the angle between two vectors in
// [-1, 1]. It returns 0 when either vector has zero magnitude or when the
// dimensions differ, guarding the divide-by-zero.
func CosineSimilarity(u, v []float64) float64 {
	if len(u) != len(v) || len(u) == 0 {
		return 0
	}
	var dot, magU, magV float64
	for i := range u {
		dot += u[i] * v[i]
		magU += u[i] * u[i]
		magV += v[i] * v[i]
	}
	if magU == 0 || magV == 0 {
		return 0
	}
	return dot / (math.Sqrt(magU) * math.Sqrt(magV))
}

// RankSites scores candidates against the user embedding and returns the top
// limit by descending similarity. Candidates whose embedding length does not
// match the user embedding are excluded from ranking. Ties keep the original
// candidate order (stable sort). Scores are rounded to 2 decimal places to
// match the stored similarity precision.
func RankSites(candidates []models.Site, userEmbedding []float64, limit int) []models.ScoredSite {
	scored := make([]models.ScoredSite, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Embedding) != len(userEmbedding) {
			continue
		}
		sim := CosineSimilarity(userEmbedding, c.Embedding)
		scored = append(scored, models.ScoredSite{
			Site:            c,
			SimilarityScore: math.Round(sim*100) / 100,
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].SimilarityScore > scored[j].SimilarityScore
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// SyntheticScores attaches non-semantic similarity scores in [0.5, 1.0) to up
// to limit candidates. This is the degraded fallback used when no usable
// embeddings exist; the random source is injected so tests can seed it.
func SyntheticScores(candidates []models.Site, limit int, rng *rand.Rand) []models.ScoredSite {
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	scored := make([]models.ScoredSite, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, models.ScoredSite{
			Site:            c,
			SimilarityScore: rng.Float64()*0.5 + 0.5,
		})
	}
	return scored
}

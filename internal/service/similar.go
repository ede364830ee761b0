package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/vietcart/search-service/internal/domain"
)

// Similarity weights. Category is the strongest signal, then brand, then a
// shared tag. The price band only widens the candidate pool and never adds
// to the score.
const (
	scoreSameCategory = 3
	scoreSameBrand    = 2
	scoreSharedTag    = 1
)

// DefaultSimilarLimit is the number of similar products returned when the
// caller does not ask for a specific count.
const DefaultSimilarLimit = 8

// similarPoolSize bounds the candidate pool fetched for scoring.
const similarPoolSize = 50

// Similar returns products related to the anchor, ranked by similarity
// score, then views, then recency. An unknown anchor surfaces as not found.
func (s *SearchService) Similar(ctx context.Context, productID string, limit int) ([]domain.SimilarProduct, error) {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}

	anchor, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.catalog.FindSimilarCandidates(ctx, anchor, similarPoolSize)
	if err != nil {
		return nil, err
	}

	scored := make([]domain.SimilarProduct, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, domain.SimilarProduct{
			Product:         c,
			SimilarityScore: similarityScore(anchor, &c),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].SimilarityScore != scored[j].SimilarityScore {
			return scored[i].SimilarityScore > scored[j].SimilarityScore
		}
		if scored[i].Views != scored[j].Views {
			return scored[i].Views > scored[j].Views
		}
		return scored[i].CreatedAt.After(scored[j].CreatedAt)
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	s.logger.DebugContext(ctx, "similar products computed",
		slog.String("product_id", productID),
		slog.Int("candidates", len(candidates)),
		slog.Int("returned", len(scored)),
	)
	return scored, nil
}

func similarityScore(anchor, candidate *domain.Product) int {
	var score int
	if candidate.CategoryID == anchor.CategoryID {
		score += scoreSameCategory
	}
	if anchor.Brand != "" && candidate.Brand == anchor.Brand {
		score += scoreSameBrand
	}
	if candidate.TagOverlap(anchor.Tags) {
		score += scoreSharedTag
	}
	return score
}

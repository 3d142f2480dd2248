package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/nileways/trip-planner/app/observability/metrics"
	"github.com/nileways/trip-planner/internal/models"
	"github.com/nileways/trip-planner/internal/ranking"
)

// fallbackFetchLimit caps the unranked tier-2 query.
const fallbackFetchLimit = 10

// Retriever produces ranked site candidates and restaurant pools for the
// planner. Retrieval failures are degraded to empty results, never propagated.
type Retriever interface {
	TopSimilarSites(ctx context.Context, userEmbedding []float64, city string, limit int, maxBudget float64, maxAge int) []models.ScoredSite
	SeedSite(ctx context.Context, patterns []string) *models.Site
	Restaurants(ctx context.Context, city string, maxCost float64) []models.Restaurant
	RestaurantUpgrades(ctx context.Context, city string, meal models.MealType, minCost, maxCost float64) []models.Restaurant
}

var _ Retriever = (*RetrieverImpl)(nil)

type RetrieverImpl struct {
	repo   Repository
	logger *slog.Logger
	cache  *cache.Cache
	rng    *rand.Rand
}

// NewRetriever builds a retriever. The random source feeds the synthetic
// similarity scores of the degraded fallback; inject a seeded one in tests.
func NewRetriever(repo Repository, rng *rand.Rand, logger *slog.Logger) *RetrieverImpl {
	return &RetrieverImpl{
		repo:   repo,
		logger: logger,
		cache:  cache.New(5*time.Minute, 10*time.Minute),
		rng:    rng,
	}
}

// TopSimilarSites runs the retrieval ladder for one day's site search:
//
//  1. constrained query (embedding present, city, budget, age) ranked by
//     cosine similarity against the user embedding,
//  2. city-only query capped at fallbackFetchLimit with synthetic scores,
//  3. synthetic scores over tier-1 candidates whose embeddings were all
//     malformed.
//
// Each tier runs only when the previous one yields nothing.
func (r *RetrieverImpl) TopSimilarSites(ctx context.Context, userEmbedding []float64, city string, limit int, maxBudget float64, maxAge int) []models.ScoredSite {
	ctx, span := otel.Tracer("CatalogRetriever").Start(ctx, "TopSimilarSites")
	defer span.End()
	span.SetAttributes(attribute.String("city", city), attribute.Int("limit", limit))

	l := r.logger.With(slog.String("method", "TopSimilarSites"), slog.String("city", city))

	filter := SiteFilter{RequireEmbedding: true, MaxBudget: &maxBudget, MaxAge: &maxAge}
	if city != "" {
		filter.City = &city
	}

	candidates, err := r.repo.SearchSites(ctx, filter)
	if err != nil {
		l.ErrorContext(ctx, "Site search failed, degrading to empty result", slog.Any("error", err))
		span.RecordError(err)
		metrics.Get().RetrievalFallbacksTotal.Add(ctx, 1)
		return nil
	}
	l.InfoContext(ctx, "Constrained site search completed", slog.Int("candidates", len(candidates)))

	if len(candidates) == 0 {
		return r.fallbackByCity(ctx, l, city, limit)
	}

	ranked := ranking.RankSites(candidates, userEmbedding, limit)
	if len(ranked) == 0 {
		// Embeddings exist but none match the user vector's dimension.
		l.WarnContext(ctx, "No valid embeddings among candidates, assigning synthetic scores")
		metrics.Get().RetrievalFallbacksTotal.Add(ctx, 1)
		return ranking.SyntheticScores(candidates, limit, r.rng)
	}

	span.SetStatus(codes.Ok, "Ranked candidates returned")
	return ranked
}

func (r *RetrieverImpl) fallbackByCity(ctx context.Context, l *slog.Logger, city string, limit int) []models.ScoredSite {
	l.WarnContext(ctx, "No candidates found, retrying without embedding and numeric constraints")
	metrics.Get().RetrievalFallbacksTotal.Add(ctx, 1)

	filter := SiteFilter{Limit: fallbackFetchLimit}
	if city != "" {
		filter.City = &city
	}
	candidates, err := r.repo.SearchSites(ctx, filter)
	if err != nil {
		l.ErrorContext(ctx, "Fallback site search failed", slog.Any("error", err))
		return nil
	}
	if len(candidates) == 0 {
		l.WarnContext(ctx, "Fallback site search found nothing")
		return nil
	}
	return ranking.SyntheticScores(candidates, limit, r.rng)
}

// SeedSite resolves a hard-coded seed (e.g. day 1's Pyramids lookup) by fuzzy
// name match. Returns nil when the catalog has no match.
func (r *RetrieverImpl) SeedSite(ctx context.Context, patterns []string) *models.Site {
	site, err := r.repo.FindSiteByFuzzyName(ctx, patterns)
	if err != nil {
		r.logger.ErrorContext(ctx, "Seed site lookup failed", slog.Any("error", err))
		return nil
	}
	return site
}

// Restaurants returns the restaurant pool for a city under a cost ceiling.
// Results are cached per (city, ceiling) for the cache TTL since every day in
// the same city re-reads the same pool.
func (r *RetrieverImpl) Restaurants(ctx context.Context, city string, maxCost float64) []models.Restaurant {
	ctx, span := otel.Tracer("CatalogRetriever").Start(ctx, "Restaurants")
	defer span.End()

	cacheKey := fmt.Sprintf("restaurants:%s:%.0f", city, maxCost)
	if cached, found := r.cache.Get(cacheKey); found {
		if restaurants, ok := cached.([]models.Restaurant); ok {
			span.SetStatus(codes.Ok, "Served from cache")
			return restaurants
		}
	}

	restaurants, err := r.repo.FindRestaurants(ctx, city, maxCost)
	if err != nil {
		r.logger.ErrorContext(ctx, "Restaurant search failed, degrading to empty result",
			slog.String("city", city), slog.Any("error", err))
		span.RecordError(err)
		return nil
	}
	r.cache.Set(cacheKey, restaurants, cache.DefaultExpiration)
	return restaurants
}

// RestaurantUpgrades returns same-city, same-meal restaurants priced within
// the given band, cheapest first.
func (r *RetrieverImpl) RestaurantUpgrades(ctx context.Context, city string, meal models.MealType, minCost, maxCost float64) []models.Restaurant {
	restaurants, err := r.repo.FindRestaurantsInPriceBand(ctx, city, meal, minCost, maxCost)
	if err != nil {
		r.logger.ErrorContext(ctx, "Restaurant upgrade search failed",
			slog.String("city", city), slog.String("meal", string(meal)), slog.Any("error", err))
		return nil
	}
	return restaurants
}

package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/nileways/trip-planner/app/observability/metrics"
	"github.com/nileways/trip-planner/internal/models"
)

var _ Repository = (*PostgresCatalogRepository)(nil)

// SiteFilter narrows a site search. Nil fields are not applied.
type SiteFilter struct {
	City             *string
	MaxBudget        *float64
	MaxAge           *int
	RequireEmbedding bool
	Limit            int
}

// Repository is the read-only document-store interface the planner consumes.
type Repository interface {
	SearchSites(ctx context.Context, filter SiteFilter) ([]models.Site, error)
	FindSiteByFuzzyName(ctx context.Context, patterns []string) (*models.Site, error)
	FindRestaurants(ctx context.Context, city string, maxCost float64) ([]models.Restaurant, error)
	FindRestaurantsInPriceBand(ctx context.Context, city string, meal models.MealType, minCost, maxCost float64) ([]models.Restaurant, error)
}

// pgxQuerier is the slice of the pool the repository needs; pgxmock satisfies
// it in tests.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type PostgresCatalogRepository struct {
	logger *slog.Logger
	pgpool pgxQuerier
}

func NewPostgresCatalogRepository(pgpool *pgxpool.Pool, logger *slog.Logger) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

// query wraps pool.Query and records the duration under the given query name.
func (r *PostgresCatalogRepository) query(ctx context.Context, name, sql string, args ...any) (pgx.Rows, error) {
	start := time.Now()
	rows, err := r.pgpool.Query(ctx, sql, args...)
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("query", name)))
	return rows, err
}

const siteColumns = `
    id, name, city, governorate, description, activities,
    opening_time, closing_time, average_time_spent_hours,
    entry_cost_egp, age_limit, latitude, longitude, embedding
`

func scanSites(rows pgx.Rows) ([]models.Site, error) {
	var sites []models.Site
	for rows.Next() {
		var s models.Site
		if err := rows.Scan(
			&s.ID, &s.Name, &s.City, &s.Governorate, &s.Description, &s.Activities,
			&s.OpeningTime, &s.ClosingTime, &s.AverageTimeSpentHours,
			&s.EntryCostEGP, &s.AgeLimit, &s.Latitude, &s.Longitude, &s.Embedding,
		); err != nil {
			return nil, fmt.Errorf("failed to scan site row: %w", err)
		}
		sites = append(sites, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("site rows error: %w", err)
	}
	return sites, nil
}

func (r *PostgresCatalogRepository) SearchSites(ctx context.Context, filter SiteFilter) ([]models.Site, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.RequireEmbedding {
		conds = append(conds, "embedding IS NOT NULL AND cardinality(embedding) > 0")
	}
	if filter.City != nil {
		conds = append(conds, "city = "+arg(*filter.City))
	}
	if filter.MaxBudget != nil {
		conds = append(conds, "entry_cost_egp <= "+arg(*filter.MaxBudget))
	}
	if filter.MaxAge != nil {
		conds = append(conds, "(age_limit IS NULL OR age_limit <= "+arg(*filter.MaxAge)+")")
	}

	query := "SELECT " + siteColumns + " FROM sites"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := r.query(ctx, "search_sites", query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sites: %w", err)
	}
	defer rows.Close()
	return scanSites(rows)
}

// FindSiteByFuzzyName returns the first site whose name matches any of the
// given case-insensitive substrings, in pattern priority order.
func (r *PostgresCatalogRepository) FindSiteByFuzzyName(ctx context.Context, patterns []string) (*models.Site, error) {
	for _, p := range patterns {
		query := "SELECT " + siteColumns + " FROM sites WHERE name ILIKE $1 ORDER BY name LIMIT 1"
		rows, err := r.query(ctx, "find_site_by_fuzzy_name", query, "%"+p+"%")
		if err != nil {
			return nil, fmt.Errorf("failed to query site by name: %w", err)
		}
		sites, err := scanSites(rows)
		rows.Close()
		if err != nil {
			return nil, err
		}
		if len(sites) > 0 {
			return &sites[0], nil
		}
	}
	return nil, nil
}

const restaurantColumns = `
    id, name, city, description, average_budget_egp, price_range,
    meal_type, opening_hours, closing_hours, latitude, longitude
`

func scanRestaurants(rows pgx.Rows) ([]models.Restaurant, error) {
	var restaurants []models.Restaurant
	for rows.Next() {
		var rest models.Restaurant
		if err := rows.Scan(
			&rest.ID, &rest.Name, &rest.City, &rest.Description, &rest.AverageBudgetEGP,
			&rest.PriceRange, &rest.MealType, &rest.OpeningHours, &rest.ClosingHours,
			&rest.Latitude, &rest.Longitude,
		); err != nil {
			return nil, fmt.Errorf("failed to scan restaurant row: %w", err)
		}
		restaurants = append(restaurants, rest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("restaurant rows error: %w", err)
	}
	return restaurants, nil
}

func (r *PostgresCatalogRepository) FindRestaurants(ctx context.Context, city string, maxCost float64) ([]models.Restaurant, error) {
	query := "SELECT " + restaurantColumns + ` FROM restaurants
        WHERE city = $1 AND average_budget_egp <= $2
        ORDER BY name`
	rows, err := r.query(ctx, "find_restaurants", query, city, maxCost)
	if err != nil {
		return nil, fmt.Errorf("failed to query restaurants: %w", err)
	}
	defer rows.Close()
	return scanRestaurants(rows)
}

// FindRestaurantsInPriceBand serves the budget optimizer: same-city, same-meal
// restaurants priced within [minCost, maxCost], cheapest first so the first
// match is the smallest viable upgrade.
func (r *PostgresCatalogRepository) FindRestaurantsInPriceBand(ctx context.Context, city string, meal models.MealType, minCost, maxCost float64) ([]models.Restaurant, error) {
	query := "SELECT " + restaurantColumns + ` FROM restaurants
        WHERE city = $1 AND meal_type = $2
          AND average_budget_egp >= $3 AND average_budget_egp <= $4
        ORDER BY average_budget_egp, name`
	rows, err := r.query(ctx, "find_restaurants_in_price_band", query, city, string(meal), minCost, maxCost)
	if err != nil {
		return nil, fmt.Errorf("failed to query restaurants in price band: %w", err)
	}
	defer rows.Close()
	return scanRestaurants(rows)
}

package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nileways/trip-planner/internal/models"
)

var siteColumnNames = []string{
	"id", "name", "city", "governorate", "description", "activities",
	"opening_time", "closing_time", "average_time_spent_hours",
	"entry_cost_egp", "age_limit", "latitude", "longitude", "embedding",
}

var restaurantColumnNames = []string{
	"id", "name", "city", "description", "average_budget_egp", "price_range",
	"meal_type", "opening_hours", "closing_hours", "latitude", "longitude",
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMockRepo(t *testing.T) (*PostgresCatalogRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return &PostgresCatalogRepository{logger: discard(), pgpool: pool}, pool
}

func karnakRow() *pgxmock.Rows {
	return pgxmock.NewRows(siteColumnNames).AddRow(
		uuid.New(), "Karnak Temple", "Luxor", "Luxor", "Vast temple complex",
		[]string{"Exploring", "Photography"}, "06:00", "17:30", 3.0,
		450.0, nil, 25.7188, 32.6573, []float64{0.1, 0.2, 0.3},
	)
}

func TestSearchSites(t *testing.T) {
	t.Run("applies all filters in order", func(t *testing.T) {
		repo, pool := newMockRepo(t)

		city := "Luxor"
		maxBudget := 1000.0
		maxAge := 30
		pool.ExpectQuery(`SELECT(.|\s)+FROM sites WHERE embedding IS NOT NULL AND cardinality\(embedding\) > 0 AND city = \$1 AND entry_cost_egp <= \$2 AND \(age_limit IS NULL OR age_limit <= \$3\) ORDER BY name`).
			WithArgs(city, maxBudget, maxAge).
			WillReturnRows(karnakRow())

		sites, err := repo.SearchSites(context.Background(), SiteFilter{
			City:             &city,
			MaxBudget:        &maxBudget,
			MaxAge:           &maxAge,
			RequireEmbedding: true,
		})
		require.NoError(t, err)
		require.Len(t, sites, 1)
		assert.Equal(t, "Karnak Temple", sites[0].Name)
		assert.Equal(t, 450.0, sites[0].EntryCostEGP)
		assert.Len(t, sites[0].Embedding, 3)
		assert.Nil(t, sites[0].AgeLimit)
		require.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("unfiltered query has no WHERE clause", func(t *testing.T) {
		repo, pool := newMockRepo(t)
		pool.ExpectQuery(`SELECT(.|\s)+FROM sites ORDER BY name LIMIT \$1`).
			WithArgs(10).
			WillReturnRows(karnakRow())

		sites, err := repo.SearchSites(context.Background(), SiteFilter{Limit: 10})
		require.NoError(t, err)
		assert.Len(t, sites, 1)
		require.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("query error is wrapped", func(t *testing.T) {
		repo, pool := newMockRepo(t)
		pool.ExpectQuery(`SELECT(.|\s)+FROM sites`).
			WillReturnError(errors.New("connection refused"))

		_, err := repo.SearchSites(context.Background(), SiteFilter{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query sites")
	})
}

func TestFindSiteByFuzzyName(t *testing.T) {
	t.Run("tries patterns in priority order", func(t *testing.T) {
		repo, pool := newMockRepo(t)
		pool.ExpectQuery(`SELECT(.|\s)+FROM sites WHERE name ILIKE \$1`).
			WithArgs("%pyramid%").
			WillReturnRows(pgxmock.NewRows(siteColumnNames))
		pool.ExpectQuery(`SELECT(.|\s)+FROM sites WHERE name ILIKE \$1`).
			WithArgs("%giza%").
			WillReturnRows(karnakRow())

		site, err := repo.FindSiteByFuzzyName(context.Background(), []string{"pyramid", "giza"})
		require.NoError(t, err)
		require.NotNil(t, site)
		assert.Equal(t, "Karnak Temple", site.Name)
		require.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("no match returns nil without error", func(t *testing.T) {
		repo, pool := newMockRepo(t)
		pool.ExpectQuery(`SELECT(.|\s)+FROM sites WHERE name ILIKE \$1`).
			WithArgs("%sphinx%").
			WillReturnRows(pgxmock.NewRows(siteColumnNames))

		site, err := repo.FindSiteByFuzzyName(context.Background(), []string{"sphinx"})
		require.NoError(t, err)
		assert.Nil(t, site)
	})
}

func TestFindRestaurants(t *testing.T) {
	repo, pool := newMockRepo(t)
	rows := pgxmock.NewRows(restaurantColumnNames).
		AddRow(uuid.New(), "Sofra", "Luxor", "Home-style cooking", 220.0, "Moderate",
			models.MealLunch, "11:00", "23:00", 25.6989, 32.6421)
	pool.ExpectQuery(`SELECT(.|\s)+FROM restaurants(.|\s)+WHERE city = \$1 AND average_budget_egp <= \$2`).
		WithArgs("Luxor", 700.0).
		WillReturnRows(rows)

	restaurants, err := repo.FindRestaurants(context.Background(), "Luxor", 700)
	require.NoError(t, err)
	require.Len(t, restaurants, 1)
	assert.Equal(t, "Sofra", restaurants[0].Name)
	assert.Equal(t, models.MealLunch, restaurants[0].MealType)
	require.NoError(t, pool.ExpectationsWereMet())
}

func TestFindRestaurantsInPriceBand(t *testing.T) {
	repo, pool := newMockRepo(t)
	rows := pgxmock.NewRows(restaurantColumnNames).
		AddRow(uuid.New(), "Al Sahaby Lane", "Luxor", "Rooftop dinner", 300.0, "Moderate",
			models.MealDinner, "12:00", "23:00", 25.7006, 32.6390)
	pool.ExpectQuery(`SELECT(.|\s)+FROM restaurants(.|\s)+ORDER BY average_budget_egp, name`).
		WithArgs("Luxor", "dinner", 250.0, 400.0).
		WillReturnRows(rows)

	restaurants, err := repo.FindRestaurantsInPriceBand(context.Background(), "Luxor", models.MealDinner, 250, 400)
	require.NoError(t, err)
	require.Len(t, restaurants, 1)
	assert.Equal(t, "Al Sahaby Lane", restaurants[0].Name)
	require.NoError(t, pool.ExpectationsWereMet())
}

package trip

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nileways/trip-planner/config"
	"github.com/nileways/trip-planner/internal/api/narrative"
	"github.com/nileways/trip-planner/internal/embedding"
	"github.com/nileways/trip-planner/internal/models"
)

// MockRetriever mocks the catalog retriever for planner tests.
type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) TopSimilarSites(ctx context.Context, userEmbedding []float64, city string, limit int, maxBudget float64, maxAge int) []models.ScoredSite {
	args := m.Called(ctx, userEmbedding, city, limit, maxBudget, maxAge)
	if sites, ok := args.Get(0).([]models.ScoredSite); ok {
		return sites
	}
	return nil
}

func (m *MockRetriever) SeedSite(ctx context.Context, patterns []string) *models.Site {
	args := m.Called(ctx, patterns)
	if site, ok := args.Get(0).(*models.Site); ok {
		return site
	}
	return nil
}

func (m *MockRetriever) Restaurants(ctx context.Context, city string, maxCost float64) []models.Restaurant {
	args := m.Called(ctx, city, maxCost)
	if restaurants, ok := args.Get(0).([]models.Restaurant); ok {
		return restaurants
	}
	return nil
}

func (m *MockRetriever) RestaurantUpgrades(ctx context.Context, city string, meal models.MealType, minCost, maxCost float64) []models.Restaurant {
	args := m.Called(ctx, city, meal, minCost, maxCost)
	if restaurants, ok := args.Get(0).([]models.Restaurant); ok {
		return restaurants
	}
	return nil
}

type failingNarrator struct{}

func (failingNarrator) GenerateDayItinerary(context.Context, narrative.DayContext) (string, error) {
	return "", errors.New("model unavailable")
}

func newTestService(retriever *MockRetriever, narrator narrative.Generator) *ServiceImpl {
	return NewServiceImpl(retriever, embedding.NewLocalEmbedder(8), narrator, config.DefaultPlannerConfig(), discard())
}

func scoredWithCost(name, city, governorate string, score, cost, lat, lon float64) models.ScoredSite {
	s := scored(name, city, governorate, score)
	s.EntryCostEGP = cost
	s.Latitude = lat
	s.Longitude = lon
	return s
}

func cairoCandidates() []models.ScoredSite {
	return []models.ScoredSite{
		scoredWithCost("Pyramids of Giza", "Giza", "Giza", 0.95, 800, 29.9792, 31.1342),
		scoredWithCost("Citadel of Saladin", "Cairo", "Cairo", 0.9, 400, 30.0299, 31.2612),
		scoredWithCost("Khan el-Khalili", "Cairo", "Cairo", 0.8, 100, 30.0477, 31.2623),
	}
}

func alexandriaCandidates() []models.ScoredSite {
	return []models.ScoredSite{
		scoredWithCost("Bibliotheca Alexandrina", "Alexandria", "Alexandria", 0.9, 400, 31.2089, 29.9092),
		scoredWithCost("Citadel of Qaitbay", "Alexandria", "Alexandria", 0.8, 200, 31.2140, 29.8855),
	}
}

func TestBuildTripPlan(t *testing.T) {
	t.Run("multi-city trip with seeded first day", func(t *testing.T) {
		retriever := new(MockRetriever)
		retriever.On("SeedSite", mock.Anything, mock.Anything).Return(nil)
		retriever.On("TopSimilarSites", mock.Anything, mock.Anything, "Cairo", mock.Anything, mock.Anything, mock.Anything).Return(cairoCandidates())
		retriever.On("TopSimilarSites", mock.Anything, mock.Anything, "Alexandria", mock.Anything, mock.Anything, mock.Anything).Return(alexandriaCandidates())
		retriever.On("Restaurants", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		retriever.On("RestaurantUpgrades", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		service := newTestService(retriever, nil)
		plan, err := service.BuildTripPlan(context.Background(), models.UserTripRequest{
			Age:       30,
			BudgetEGP: 12000,
			Days:      3,
			Interests: []string{"history"},
			Cities:    []string{"Cairo", "Alexandria"},
		})
		require.NoError(t, err)
		require.Len(t, plan.Days, 3)

		assert.Equal(t, []string{"Cairo", "Cairo", "Alexandria"}, plan.UserPreferences.CityAllocation)
		assert.Equal(t, 4000.0, plan.UserPreferences.DailyBudgetEGP)

		day1 := plan.Days[0]
		require.Len(t, day1.Sites, 2)
		assert.Equal(t, "Pyramids of Giza", day1.Sites[0].Name)
		assert.Equal(t, "Egyptian Museum", day1.Sites[1].Name)
		assert.Equal(t, "Giza", day1.City)

		day2 := plan.Days[1]
		require.Len(t, day2.Sites, 2)
		assert.Equal(t, "Citadel of Saladin", day2.Sites[0].Name)
		assert.Equal(t, "Khan el-Khalili", day2.Sites[1].Name)

		day3 := plan.Days[2]
		require.Len(t, day3.Sites, 2)
		assert.Equal(t, "Alexandria", day3.City)

		// No site appears on two days.
		seen := make(map[string]bool)
		for _, day := range plan.Days {
			for _, site := range day.Sites {
				require.False(t, seen[site.Name], "site %s planned twice", site.Name)
				seen[site.Name] = true
			}
		}

		var total float64
		for _, day := range plan.Days {
			total += day.DailyCostEGP
		}
		assert.Equal(t, total, plan.Summary.TotalTripCostEGP)
		assert.Equal(t, 12000-total, plan.Summary.RemainingBudgetEGP)
	})

	t.Run("day one excluded the pyramids from later retrieval", func(t *testing.T) {
		// Pyramids score highest among the Cairo candidates but were already
		// seeded on day one, so day two must skip them.
		retriever := new(MockRetriever)
		retriever.On("SeedSite", mock.Anything, mock.Anything).Return(nil)
		retriever.On("TopSimilarSites", mock.Anything, mock.Anything, "Cairo", mock.Anything, mock.Anything, mock.Anything).Return(cairoCandidates())
		retriever.On("Restaurants", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		retriever.On("RestaurantUpgrades", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		service := newTestService(retriever, nil)
		plan, err := service.BuildTripPlan(context.Background(), models.UserTripRequest{
			BudgetEGP: 9000,
			Days:      2,
			Cities:    []string{"Cairo"},
		})
		require.NoError(t, err)
		require.Len(t, plan.Days, 2)
		for _, site := range plan.Days[1].Sites {
			assert.NotEqual(t, "Pyramids of Giza", site.Name)
		}
	})

	t.Run("empty retrieval falls back to the static pair", func(t *testing.T) {
		retriever := new(MockRetriever)
		retriever.On("SeedSite", mock.Anything, mock.Anything).Return(nil)
		retriever.On("TopSimilarSites", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		retriever.On("Restaurants", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		retriever.On("RestaurantUpgrades", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		service := newTestService(retriever, nil)
		plan, err := service.BuildTripPlan(context.Background(), models.UserTripRequest{
			BudgetEGP: 6000,
			Days:      2,
			Cities:    []string{"Cairo"},
		})
		require.NoError(t, err)

		day2 := plan.Days[1]
		require.Len(t, day2.Sites, 2)
		assert.Equal(t, "Luxor", day2.City)
		assert.Equal(t, "Karnak Temple", day2.Sites[0].Name)
		assert.Equal(t, "Valley of the Kings", day2.Sites[1].Name)
	})

	t.Run("no restaurants means the day costs its site entries", func(t *testing.T) {
		retriever := new(MockRetriever)
		retriever.On("SeedSite", mock.Anything, mock.Anything).Return(nil)
		retriever.On("TopSimilarSites", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(cairoCandidates())
		retriever.On("Restaurants", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		retriever.On("RestaurantUpgrades", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		service := newTestService(retriever, nil)
		// Daily budget 1800 equals day one's seeded entry costs exactly, so
		// the optimizer has no headroom and the cost stays arithmetic.
		plan, err := service.BuildTripPlan(context.Background(), models.UserTripRequest{
			BudgetEGP: 5400,
			Days:      3,
			Cities:    []string{"Cairo"},
		})
		require.NoError(t, err)

		day1 := plan.Days[0]
		assert.Equal(t, 1800.0, day1.DailyCostEGP)
		assert.Zero(t, day1.Restaurants.Count())
		assert.Nil(t, day1.Restaurants.Breakfast)
		assert.Greater(t, day1.DistanceBetweenSitesKm, 0.0)
	})

	t.Run("defaults applied to an empty request", func(t *testing.T) {
		retriever := new(MockRetriever)
		retriever.On("SeedSite", mock.Anything, mock.Anything).Return(nil)
		retriever.On("TopSimilarSites", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(cairoCandidates())
		retriever.On("Restaurants", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		retriever.On("RestaurantUpgrades", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		service := newTestService(retriever, nil)
		plan, err := service.BuildTripPlan(context.Background(), models.UserTripRequest{})
		require.NoError(t, err)

		assert.Equal(t, 25, plan.UserPreferences.Age)
		assert.Equal(t, 5000.0, plan.UserPreferences.TotalBudgetEGP)
		assert.Equal(t, 3, plan.UserPreferences.DurationDays)
		assert.Equal(t, []string{"culture", "history"}, plan.UserPreferences.Interests)
		assert.Equal(t, "Cairo", plan.UserPreferences.City)
	})

	t.Run("same request builds the same plan", func(t *testing.T) {
		retriever := new(MockRetriever)
		retriever.On("SeedSite", mock.Anything, mock.Anything).Return(nil)
		retriever.On("TopSimilarSites", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(cairoCandidates())
		retriever.On("Restaurants", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		retriever.On("RestaurantUpgrades", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		service := newTestService(retriever, nil)
		req := models.UserTripRequest{BudgetEGP: 9000, Days: 2, Cities: []string{"Cairo"}}

		first, err := service.BuildTripPlan(context.Background(), req)
		require.NoError(t, err)
		second, err := service.BuildTripPlan(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("narrator failure falls back to the template itinerary", func(t *testing.T) {
		retriever := new(MockRetriever)
		retriever.On("SeedSite", mock.Anything, mock.Anything).Return(nil)
		retriever.On("Restaurants", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		retriever.On("RestaurantUpgrades", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		service := newTestService(retriever, failingNarrator{})
		plan, err := service.BuildTripPlan(context.Background(), models.UserTripRequest{
			BudgetEGP: 1800,
			Days:      1,
			Cities:    []string{"Cairo"},
		})
		require.NoError(t, err)
		assert.Contains(t, plan.Days[0].Itinerary, "**Day 1 -")
		assert.Contains(t, plan.Days[0].Itinerary, "Pyramids of Giza")
	})
}

func TestBuildActivitiesTimeline(t *testing.T) {
	plan := models.DailyPlan{
		Day: 2,
		Sites: []models.PlannedSite{
			{Name: "Karnak Temple", City: "Luxor", AverageTimeSpentHours: 3, CostEGP: 500},
			{Name: "Valley of the Kings", City: "Luxor", AverageTimeSpentHours: 2.5, CostEGP: 300},
		},
	}
	plan.Restaurants.Set(models.MealBreakfast, &models.MealAssignment{Name: "Nile Cafe", MealType: models.MealBreakfast, BudgetEGP: 120})
	plan.Restaurants.Set(models.MealDinner, &models.MealAssignment{Name: "Temple View", MealType: models.MealDinner, BudgetEGP: 400})

	activities := buildActivities(plan)
	require.Len(t, activities, 4)

	assert.Equal(t, "day-2-breakfast", activities[0].ID)
	assert.Equal(t, "08:00", activities[0].Time)
	assert.Equal(t, "1 hour", activities[0].Duration)

	assert.Equal(t, "day-2-site-1", activities[1].ID)
	assert.Equal(t, "09:00", activities[1].Time)
	assert.Equal(t, "3 hours", activities[1].Duration)

	assert.Equal(t, "day-2-site-2", activities[2].ID)
	assert.Equal(t, "15:00", activities[2].Time)
	assert.Equal(t, "2.5 hours", activities[2].Duration)

	assert.Equal(t, "day-2-dinner", activities[3].ID)
	assert.Equal(t, "19:00", activities[3].Time)
	assert.Equal(t, "1.5 hours", activities[3].Duration)
}

func TestPlaceholderDay(t *testing.T) {
	day := placeholderDay(4, "")
	assert.Equal(t, 4, day.Day)
	assert.Equal(t, "Cairo", day.City)
	assert.Empty(t, day.Sites)
	assert.Empty(t, day.Activities)
	assert.Zero(t, day.DailyCostEGP)
	assert.Nil(t, day.Restaurants.Breakfast)
	assert.Nil(t, day.Restaurants.Lunch)
	assert.Nil(t, day.Restaurants.Dinner)
}

func TestConvertToSuggestions(t *testing.T) {
	service := newTestService(new(MockRetriever), nil)
	plan := &models.TripPlan{
		Days: []models.DailyPlan{{
			Sites: []models.PlannedSite{
				{Name: "Pyramids of Giza", City: "Giza", SimilarityScore: 1.0, CostEGP: 800, AverageTimeSpentHours: 3},
				{Name: "Khan el-Khalili", City: "Cairo", SimilarityScore: 0.5, CostEGP: 100, AverageTimeSpentHours: 2},
				{Name: "Aswan High Dam", City: "Aswan", SimilarityScore: 0.2, CostEGP: 150, AverageTimeSpentHours: 1.5},
			},
		}},
	}

	suggestions := service.ConvertToSuggestions(plan)
	require.Len(t, suggestions, 3)

	assert.Equal(t, "pyramids-of-giza", suggestions[0].ID)
	assert.Equal(t, 5.0, suggestions[0].AverageRating)
	assert.Equal(t, "high", suggestions[0].Priority)
	assert.Equal(t, "3 hours", suggestions[0].VisitDuration)

	assert.Equal(t, 4.0, suggestions[1].AverageRating)
	assert.Equal(t, "medium", suggestions[1].Priority)

	assert.InDelta(t, 3.4, suggestions[2].AverageRating, 1e-9)
	assert.Equal(t, "low", suggestions[2].Priority)

	assert.Nil(t, service.ConvertToSuggestions(nil))
}

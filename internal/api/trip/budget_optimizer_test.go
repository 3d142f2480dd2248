package trip

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nileways/trip-planner/config"
	"github.com/nileways/trip-planner/internal/models"
)

func newTestOptimizer(retriever *MockRetriever) *budgetOptimizer {
	return &budgetOptimizer{
		cfg:       config.DefaultPlannerConfig(),
		retriever: retriever,
		logger:    discard(),
	}
}

func optimizablePlan(dailyCost float64) models.DailyPlan {
	plan := models.DailyPlan{
		Day:  2,
		City: "Cairo",
		Sites: []models.PlannedSite{
			{Name: "Citadel of Saladin", City: "Cairo", CostEGP: 400, Latitude: 30.0299, Longitude: 31.2612, Activities: []string{"Exploring"}},
			{Name: "Khan el-Khalili", City: "Cairo", CostEGP: 100, Latitude: 30.0477, Longitude: 31.2623, Activities: []string{"Shopping"}},
		},
		DailyCostEGP: dailyCost,
	}
	plan.Restaurants.Set(models.MealLunch, &models.MealAssignment{
		Name: "Souq Lunch", City: "Cairo", MealType: models.MealLunch, BudgetEGP: 150,
	})
	plan.Restaurants.Set(models.MealDinner, &models.MealAssignment{
		Name: "Citadel Dinner", City: "Cairo", MealType: models.MealDinner, BudgetEGP: 300,
	})
	return plan
}

func TestBudgetOptimizer(t *testing.T) {
	t.Run("no-op when utilization already meets the target", func(t *testing.T) {
		retriever := new(MockRetriever)
		o := newTestOptimizer(retriever)

		plan := optimizablePlan(1800)
		before := plan
		o.optimize(context.Background(), &plan, 2000) // 90% utilized

		assert.Equal(t, before, plan)
		retriever.AssertNotCalled(t, "RestaurantUpgrades", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("upgrades dinner to a pricier restaurant within the band", func(t *testing.T) {
		retriever := new(MockRetriever)
		upgrade := models.Restaurant{
			Name: "Rooftop Grill", City: "Cairo", MealType: models.MealDinner,
			AverageBudgetEGP: 450, Latitude: 30.05, Longitude: 31.24,
		}
		// remaining 1050, upgradeAmount min(630, 500) = 500, dinner room 250.
		retriever.On("RestaurantUpgrades", mock.Anything, "Cairo", models.MealDinner, 300.0, 550.0).
			Return([]models.Restaurant{upgrade})
		retriever.On("RestaurantUpgrades", mock.Anything, "Cairo", models.MealLunch, mock.Anything, mock.Anything).
			Return(nil)
		o := newTestOptimizer(retriever)

		plan := optimizablePlan(950)
		o.optimize(context.Background(), &plan, 2000)

		require.NotNil(t, plan.Restaurants.Dinner)
		assert.Equal(t, "Rooftop Grill", plan.Restaurants.Dinner.Name)
		assert.Equal(t, 450.0, plan.Restaurants.Dinner.BudgetEGP)
		// Premium experiences also land: 900 remaining after the upgrade
		// clears the threshold, adding 200 per site.
		assert.Equal(t, 950.0+150.0+400.0, plan.DailyCostEGP)
		retriever.AssertExpectations(t)
	})

	t.Run("skips upgrades that exceed the room", func(t *testing.T) {
		retriever := new(MockRetriever)
		tooExpensive := models.Restaurant{
			Name: "Palace Dining", City: "Cairo", MealType: models.MealDinner,
			AverageBudgetEGP: 600, Latitude: 30.05, Longitude: 31.24,
		}
		retriever.On("RestaurantUpgrades", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]models.Restaurant{tooExpensive})
		o := newTestOptimizer(retriever)

		plan := optimizablePlan(950)
		o.optimize(context.Background(), &plan, 2000)

		assert.Equal(t, "Citadel Dinner", plan.Restaurants.Dinner.Name)
		assert.Equal(t, "Souq Lunch", plan.Restaurants.Lunch.Name)
	})

	t.Run("same-price candidate is not an upgrade", func(t *testing.T) {
		retriever := new(MockRetriever)
		samePrice := models.Restaurant{
			Name: "Citadel Dinner", City: "Cairo", MealType: models.MealDinner,
			AverageBudgetEGP: 300, Latitude: 30.03, Longitude: 31.26,
		}
		retriever.On("RestaurantUpgrades", mock.Anything, mock.Anything, models.MealDinner, mock.Anything, mock.Anything).
			Return([]models.Restaurant{samePrice})
		retriever.On("RestaurantUpgrades", mock.Anything, mock.Anything, models.MealLunch, mock.Anything, mock.Anything).
			Return(nil)
		o := newTestOptimizer(retriever)

		plan := optimizablePlan(950)
		before := plan.Restaurants.Dinner.BudgetEGP
		o.optimize(context.Background(), &plan, 2000)

		assert.Equal(t, before, plan.Restaurants.Dinner.BudgetEGP)
	})

	t.Run("daily cost never decreases and never exceeds the budget", func(t *testing.T) {
		retriever := new(MockRetriever)
		retriever.On("RestaurantUpgrades", mock.Anything, mock.Anything, models.MealDinner, mock.Anything, mock.Anything).
			Return([]models.Restaurant{{
				Name: "Rooftop Grill", City: "Cairo", MealType: models.MealDinner,
				AverageBudgetEGP: 420, Latitude: 30.05, Longitude: 31.24,
			}})
		retriever.On("RestaurantUpgrades", mock.Anything, mock.Anything, models.MealLunch, mock.Anything, mock.Anything).
			Return([]models.Restaurant{{
				Name: "Garden Lunch", City: "Cairo", MealType: models.MealLunch,
				AverageBudgetEGP: 280, Latitude: 30.04, Longitude: 31.25,
			}})
		o := newTestOptimizer(retriever)

		for _, dailyBudget := range []float64{1500, 2000, 3000, 5000} {
			plan := optimizablePlan(950)
			o.optimize(context.Background(), &plan, dailyBudget)
			assert.GreaterOrEqual(t, plan.DailyCostEGP, 950.0, "budget %v", dailyBudget)
			assert.LessOrEqual(t, plan.DailyCostEGP, dailyBudget, "budget %v", dailyBudget)
		}
	})

	t.Run("premium experiences attach to every site", func(t *testing.T) {
		retriever := new(MockRetriever)
		retriever.On("RestaurantUpgrades", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil)
		o := newTestOptimizer(retriever)

		plan := optimizablePlan(950)
		o.optimize(context.Background(), &plan, 2000)

		// remaining 1050, premium per site min(315, 200) = 200.
		assert.Equal(t, 600.0, plan.Sites[0].CostEGP)
		assert.Equal(t, 300.0, plan.Sites[1].CostEGP)
		assert.Equal(t, 1350.0, plan.DailyCostEGP)
		for _, site := range plan.Sites {
			assert.Contains(t, site.Activities, "Private guided tour")
			assert.Contains(t, site.Activities, "Professional photography session")
			assert.NotContains(t, site.Activities, "VIP access")
		}
	})

	t.Run("small remainders are left alone", func(t *testing.T) {
		retriever := new(MockRetriever)
		o := newTestOptimizer(retriever)

		plan := optimizablePlan(950)
		before := plan
		o.optimize(context.Background(), &plan, 1040) // remaining 90 < threshold

		assert.Equal(t, before, plan)
	})

	t.Run("zero budget is a no-op", func(t *testing.T) {
		retriever := new(MockRetriever)
		o := newTestOptimizer(retriever)

		plan := optimizablePlan(0)
		o.optimize(context.Background(), &plan, 0)
		assert.Zero(t, plan.DailyCostEGP)
	})
}

package narrative

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nileways/trip-planner/internal/models"
)

func cairoDay() DayContext {
	return DayContext{
		Day:  1,
		City: "Cairo",
		Sites: []models.PlannedSite{
			{
				Name:                  "Pyramids of Giza",
				City:                  "Giza",
				Description:           "The last surviving wonder of the ancient world.",
				Activities:            []string{"Exploring", "Photography"},
				AverageTimeSpentHours: 3,
				CostEGP:               800,
			},
			{
				Name:                  "Egyptian Museum",
				City:                  "Cairo",
				Description:           "World's most extensive collection of ancient Egyptian artifacts.",
				Activities:            []string{"Museum Tour", "Learning"},
				AverageTimeSpentHours: 2.5,
				CostEGP:               1000,
			},
		},
		Meals: models.MealSlots{
			Breakfast: &models.MealAssignment{Name: "Felfela", Description: "Classic Egyptian breakfast", BudgetEGP: 120, MealType: models.MealBreakfast},
			Dinner:    &models.MealAssignment{Name: "Abou El Sid", Description: "Traditional dining", BudgetEGP: 400, MealType: models.MealDinner},
		},
		User: models.UserTripRequest{Age: 25, Interests: []string{"history"}},
	}
}

func TestTemplateGenerator(t *testing.T) {
	g := NewTemplateGenerator()
	ctx := context.Background()

	t.Run("Deterministic", func(t *testing.T) {
		a, err := g.GenerateDayItinerary(ctx, cairoDay())
		require.NoError(t, err)
		b, err := g.GenerateDayItinerary(ctx, cairoDay())
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("ContainsProvidedNamesAndCosts", func(t *testing.T) {
		text, err := g.GenerateDayItinerary(ctx, cairoDay())
		require.NoError(t, err)
		assert.Contains(t, text, "Pyramids of Giza")
		assert.Contains(t, text, "Egyptian Museum")
		assert.Contains(t, text, "Felfela")
		assert.Contains(t, text, "Abou El Sid")
		assert.Contains(t, text, "**Daily Total:** 2320 EGP")
	})

	t.Run("SkipsEmptyMealSlots", func(t *testing.T) {
		day := cairoDay()
		day.Meals = models.MealSlots{}
		text, err := g.GenerateDayItinerary(ctx, day)
		require.NoError(t, err)
		assert.NotContains(t, text, "Lunch at")
		assert.Contains(t, text, "**Daily Total:** 1800 EGP")
	})

	t.Run("EmptyDayStillRenders", func(t *testing.T) {
		day := DayContext{Day: 2, City: "Luxor"}
		text, err := g.GenerateDayItinerary(ctx, day)
		require.NoError(t, err)
		assert.Contains(t, text, "Day 2 - Luxor Adventure")
		assert.Contains(t, text, "**Daily Total:** 0 EGP")
	})
}

func TestTransportSuggestion(t *testing.T) {
	t.Run("PyramidsRule", func(t *testing.T) {
		day := cairoDay()
		s := TransportSuggestion(day.Sites, "Cairo")
		assert.Contains(t, s, "Pyramids")
	})

	t.Run("NoSitesDefault", func(t *testing.T) {
		s := TransportSuggestion(nil, "Cairo")
		assert.Contains(t, s, "local transportation")
	})

	t.Run("LuxorRule", func(t *testing.T) {
		sites := []models.PlannedSite{{Name: "Karnak Temple", City: "Luxor"}}
		s := TransportSuggestion(sites, "Luxor")
		assert.Contains(t, s, "felucca")
	})
}

func TestTransportCost(t *testing.T) {
	tests := []struct {
		name  string
		sites []models.PlannedSite
		city  string
		want  float64
	}{
		{"NoSites", nil, "Cairo", 100},
		{"Pyramids", []models.PlannedSite{{Name: "Pyramids of Giza"}}, "Giza", 200},
		{"Luxor", []models.PlannedSite{{Name: "Karnak Temple"}}, "Luxor", 300},
		{"Alexandria", []models.PlannedSite{{Name: "Citadel of Qaitbay"}}, "Alexandria", 150},
		{"CairoMuseum", []models.PlannedSite{{Name: "Egyptian Museum"}}, "Cairo", 80},
		{"Default", []models.PlannedSite{{Name: "Philae Temple"}}, "Hurghada", 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TransportCost(tt.sites, tt.city))
		})
	}
}

func TestCleanResponse(t *testing.T) {
	t.Run("StripsArtifacts", func(t *testing.T) {
		raw := "<|im_start|>Day plan<|im_end|>\n\n\n\nMore text"
		assert.Equal(t, "Day plan\n\nMore text", cleanResponse(raw))
	})
}

func TestFixItinerary(t *testing.T) {
	t.Run("RepairsDailyTotal", func(t *testing.T) {
		day := cairoDay()
		text := "**Day 1 - Giza Adventure**\n**Daily Total:** 999 EGP (excluding transportation)"
		fixed := fixItinerary(text, day)
		assert.Contains(t, fixed, "**Daily Total:** 2320 EGP")
		assert.NotContains(t, fixed, "999")
	})
}

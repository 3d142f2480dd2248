package trip

import (
	"strings"

	"github.com/nileways/trip-planner/internal/geo"
	"github.com/nileways/trip-planner/internal/models"
)

// assignMeals fills the day's three meal slots from the restaurant pool.
// Breakfast and lunch anchor on the first site, dinner on the second site when
// the day has two. Each slot takes the closest restaurant of the right meal
// type with usable coordinates, and no restaurant serves twice in one day.
// Slots with no eligible restaurant stay nil.
func assignMeals(sites []models.PlannedSite, pool []models.Restaurant) (models.MealSlots, float64) {
	var slots models.MealSlots
	if len(sites) == 0 || len(pool) == 0 {
		return slots, 0
	}

	first := models.Coordinate{Latitude: sites[0].Latitude, Longitude: sites[0].Longitude}
	last := first
	if len(sites) > 1 {
		n := len(sites) - 1
		last = models.Coordinate{Latitude: sites[n].Latitude, Longitude: sites[n].Longitude}
	}

	anchors := map[models.MealType]models.Coordinate{
		models.MealBreakfast: first,
		models.MealLunch:     first,
		models.MealDinner:    last,
	}

	used := make(map[string]bool)
	var total float64
	for _, meal := range models.MealTypes {
		restaurant, distance := closestRestaurant(pool, meal, anchors[meal], used)
		if restaurant == nil {
			continue
		}
		used[strings.ToLower(restaurant.Name)] = true
		assignment := models.NewMealAssignment(restaurant, meal, distance)
		slots.Set(meal, assignment)
		total += assignment.BudgetEGP
	}
	return slots, total
}

func closestRestaurant(pool []models.Restaurant, meal models.MealType, anchor models.Coordinate, used map[string]bool) (*models.Restaurant, float64) {
	var best *models.Restaurant
	bestDistance := 0.0
	for i := range pool {
		r := &pool[i]
		if r.MealType != meal || !r.HasCoordinate() || used[strings.ToLower(r.Name)] {
			continue
		}
		distance := geo.Distance(anchor, r.Coordinate())
		if best == nil || distance < bestDistance {
			best = r
			bestDistance = distance
		}
	}
	return best, bestDistance
}

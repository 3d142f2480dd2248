package models

// MealSlots holds up to one assigned restaurant per meal of a day. A nil slot
// means no matching restaurant was found; cost and narrative generation fall
// back to defaults for that meal.
type MealSlots struct {
	Breakfast *MealAssignment `json:"breakfast"`
	Lunch     *MealAssignment `json:"lunch"`
	Dinner    *MealAssignment `json:"dinner"`
}

// Count returns the number of filled meal slots.
func (m *MealSlots) Count() int {
	n := 0
	if m.Breakfast != nil {
		n++
	}
	if m.Lunch != nil {
		n++
	}
	if m.Dinner != nil {
		n++
	}
	return n
}

// Get returns the assignment for a meal type, or nil.
func (m *MealSlots) Get(meal MealType) *MealAssignment {
	switch meal {
	case MealBreakfast:
		return m.Breakfast
	case MealLunch:
		return m.Lunch
	case MealDinner:
		return m.Dinner
	}
	return nil
}

// Set stores the assignment for a meal type.
func (m *MealSlots) Set(meal MealType, assignment *MealAssignment) {
	switch meal {
	case MealBreakfast:
		m.Breakfast = assignment
	case MealLunch:
		m.Lunch = assignment
	case MealDinner:
		m.Dinner = assignment
	}
}

// PlannedSite is a site placed on a daily plan, with the cost the traveler
// actually pays that day (entry fee plus any premium experience add-ons).
type PlannedSite struct {
	Name                  string   `json:"name"`
	City                  string   `json:"city"`
	Governorate           string   `json:"governorate,omitempty"`
	Description           string   `json:"description"`
	SimilarityScore       float64  `json:"similarity_score"`
	Activities            []string `json:"activities"`
	OpeningTime           string   `json:"opening_time"`
	ClosingTime           string   `json:"closing_time"`
	AverageTimeSpentHours float64  `json:"average_time_spent_hours"`
	CostEGP               float64  `json:"cost_egp"`
	Latitude              float64  `json:"latitude"`
	Longitude             float64  `json:"longitude"`
}

// Coordinate returns the planned site's geo position.
func (p *PlannedSite) Coordinate() Coordinate {
	return Coordinate{Latitude: p.Latitude, Longitude: p.Longitude}
}

// Activity is one entry of a day's standardized, time-ordered timeline.
type Activity struct {
	ID          string      `json:"id"`
	Time        string      `json:"time"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	Type        string      `json:"type"` // "site" or "restaurant"
	Duration    string      `json:"duration"`
	CostEGP     float64     `json:"cost_egp"`
	MealType    MealType    `json:"meal_type,omitempty"`
	Activities  []string    `json:"activities,omitempty"`
	Coordinates *Coordinate `json:"coordinates,omitempty"`
}

// DaySummary aggregates display counts for one day.
type DaySummary struct {
	TotalActivities   int    `json:"total_activities"`
	SitesCount        int    `json:"sites_count"`
	RestaurantsCount  int    `json:"restaurants_count"`
	EstimatedDuration string `json:"estimated_duration"`
	PrimaryCity       string `json:"primary_city"`
}

// DailyPlan is one fully-assembled day of a trip.
type DailyPlan struct {
	Day                    int           `json:"day"` // 1-based
	City                   string        `json:"city"`
	Sites                  []PlannedSite `json:"sites"`
	DistanceBetweenSitesKm float64       `json:"distance_between_sites_km"`
	Restaurants            MealSlots     `json:"restaurants"`
	DailyCostEGP           float64       `json:"daily_cost_egp"`
	TransportationNote     string        `json:"transportation_note,omitempty"`
	TransportationCostEGP  float64       `json:"transportation_cost_egp,omitempty"`
	Itinerary              string        `json:"comprehensive_itinerary,omitempty"`
	Activities             []Activity    `json:"activities"`
	Summary                DaySummary    `json:"day_summary"`
}

// UserPreferences echoes the validated request back on the trip plan.
type UserPreferences struct {
	Age            int      `json:"age"`
	TotalBudgetEGP float64  `json:"total_budget_egp"`
	DailyBudgetEGP float64  `json:"daily_budget_egp"`
	Interests      []string `json:"interests"`
	DurationDays   int      `json:"duration_days"`
	City           string   `json:"city"`
	CityAllocation []string `json:"city_allocation"`
}

// TripSummary carries the trip-level budget accounting. RemainingBudgetEGP may
// be negative: the optimizer aims below the cap but nothing enforces it
// globally.
type TripSummary struct {
	TotalTripCostEGP   float64 `json:"total_trip_cost_egp"`
	RemainingBudgetEGP float64 `json:"remaining_budget_egp"`
}

// TripPlan is the complete planner output consumed by the UI layer.
type TripPlan struct {
	UserPreferences UserPreferences `json:"user_preferences"`
	Days            []DailyPlan     `json:"days"`
	Summary         TripSummary     `json:"trip_summary"`
}

// Suggestion is the flattened site card shape the frontend renders.
type Suggestion struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Region           string  `json:"region"`
	Category         string  `json:"category"`
	ShortDescription string  `json:"shortDescription"`
	AverageRating    float64 `json:"averageRating"`
	EntryFeeEGP      float64 `json:"entryFeeEGP"`
	VisitDuration    string  `json:"visitDuration"`
	Reason           string  `json:"reason"`
	Priority         string  `json:"priority"`
}

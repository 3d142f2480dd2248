package models

import "github.com/google/uuid"

// MealType classifies a restaurant by the single meal it serves in this model.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
)

// MealTypes lists the meal slots of a day in time order.
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner}

// Restaurant represents a restaurant record in the catalog.
type Restaurant struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	City             string    `json:"city" db:"city"`
	Description      string    `json:"description" db:"description"`
	AverageBudgetEGP float64   `json:"average_budget_egp" db:"average_budget_egp"`
	PriceRange       string    `json:"price_range,omitempty" db:"price_range"`
	MealType         MealType  `json:"type" db:"meal_type"`
	OpeningHours     string    `json:"opening_hours" db:"opening_hours"`
	ClosingHours     string    `json:"closing_hours" db:"closing_hours"`
	Latitude         float64   `json:"latitude" db:"latitude"`
	Longitude        float64   `json:"longitude" db:"longitude"`
}

// Coordinate returns the restaurant's geo position.
func (r *Restaurant) Coordinate() Coordinate {
	return Coordinate{Latitude: r.Latitude, Longitude: r.Longitude}
}

// HasCoordinate reports whether the record carries a usable position.
func (r *Restaurant) HasCoordinate() bool {
	return r.Latitude != 0 || r.Longitude != 0
}

// defaultMealPrices is the fallback price matrix applied when a restaurant
// record carries no average budget, keyed by meal type then price range.
var defaultMealPrices = map[MealType]map[string]float64{
	MealBreakfast: {"Budget": 80, "Moderate": 150, "Upscale": 250},
	MealLunch:     {"Budget": 150, "Moderate": 300, "Upscale": 450},
	MealDinner:    {"Budget": 150, "Moderate": 350, "Upscale": 550},
}

// DefaultMealPrice returns the fallback cost for a meal slot given the
// restaurant's price range, defaulting to the Moderate tier.
func DefaultMealPrice(meal MealType, priceRange string) float64 {
	tiers, ok := defaultMealPrices[meal]
	if !ok {
		return 200
	}
	if price, ok := tiers[priceRange]; ok {
		return price
	}
	return tiers["Moderate"]
}

var defaultOpeningHours = map[MealType]string{
	MealBreakfast: "08:00",
	MealLunch:     "11:00",
	MealDinner:    "17:00",
}

var defaultClosingHours = map[MealType]string{
	MealBreakfast: "16:00",
	MealLunch:     "20:00",
	MealDinner:    "23:00",
}

// DefaultOpeningHours returns the assumed opening time for a meal slot.
func DefaultOpeningHours(meal MealType) string {
	if h, ok := defaultOpeningHours[meal]; ok {
		return h
	}
	return "09:00"
}

// DefaultClosingHours returns the assumed closing time for a meal slot.
func DefaultClosingHours(meal MealType) string {
	if h, ok := defaultClosingHours[meal]; ok {
		return h
	}
	return "22:00"
}

// MealAssignment is a restaurant assigned to one of a day's meal slots,
// normalized with all defaults applied.
type MealAssignment struct {
	Name         string   `json:"name"`
	City         string   `json:"city"`
	Description  string   `json:"description"`
	BudgetEGP    float64  `json:"budget_egp"`
	MealType     MealType `json:"meal_type"`
	OpeningHours string   `json:"opening_hours"`
	ClosingHours string   `json:"closing_hours"`
	DistanceKm   float64  `json:"distance_km"`
}

// NewMealAssignment normalizes a restaurant record into a meal assignment,
// applying the default price matrix and default hours where fields are missing.
func NewMealAssignment(r *Restaurant, meal MealType, distanceKm float64) *MealAssignment {
	if r == nil {
		return nil
	}
	budget := r.AverageBudgetEGP
	if budget == 0 {
		budget = DefaultMealPrice(meal, r.PriceRange)
	}
	name := r.Name
	if name == "" {
		name = "Unknown Restaurant"
	}
	city := r.City
	if city == "" {
		city = "Cairo"
	}
	description := r.Description
	if description == "" {
		description = "No description available"
	}
	opening := r.OpeningHours
	if opening == "" {
		opening = DefaultOpeningHours(meal)
	}
	closing := r.ClosingHours
	if closing == "" {
		closing = DefaultClosingHours(meal)
	}
	return &MealAssignment{
		Name:         name,
		City:         city,
		Description:  description,
		BudgetEGP:    budget,
		MealType:     meal,
		OpeningHours: opening,
		ClosingHours: closing,
		DistanceKm:   distanceKm,
	}
}

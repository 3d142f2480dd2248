package models

import (
	"strings"

	"github.com/google/uuid"
)

// Coordinate is a WGS84 lat/long pair.
type Coordinate struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// Site represents a tourism site in the catalog.
type Site struct {
	ID                    uuid.UUID `json:"id" db:"id"`
	Name                  string    `json:"name" db:"name"`
	City                  string    `json:"city" db:"city"`
	Governorate           string    `json:"governorate" db:"governorate"`
	Description           string    `json:"description" db:"description"`
	Activities            []string  `json:"activities" db:"activities"`
	OpeningTime           string    `json:"opening_time" db:"opening_time"`
	ClosingTime           string    `json:"closing_time" db:"closing_time"`
	AverageTimeSpentHours float64   `json:"average_time_spent_hours" db:"average_time_spent_hours"`
	EntryCostEGP          float64   `json:"cost_egp" db:"entry_cost_egp"`
	AgeLimit              *int      `json:"age_limit,omitempty" db:"age_limit"`
	Latitude              float64   `json:"latitude" db:"latitude"`
	Longitude             float64   `json:"longitude" db:"longitude"`
	Embedding             []float64 `json:"-" db:"embedding"`
}

// Coordinate returns the site's geo position.
func (s *Site) Coordinate() Coordinate {
	return Coordinate{Latitude: s.Latitude, Longitude: s.Longitude}
}

// LocationKey is the normalized grouping key used for same-day pairing:
// governorate when present, city otherwise.
func (s *Site) LocationKey() string {
	loc := s.Governorate
	if loc == "" {
		loc = s.City
	}
	if loc == "" {
		loc = "unknown"
	}
	return strings.ToLower(strings.TrimSpace(loc))
}

// ScoredSite is a site annotated with its similarity to the user's
// interest embedding.
type ScoredSite struct {
	Site
	SimilarityScore float64 `json:"similarity_score"`
}

// Normalize applies the catalog defaults for optional fields once, so
// downstream planning code never has to guard missing values.
func (s *Site) Normalize() {
	if s.Name == "" {
		s.Name = "Unknown Site"
	}
	if s.City == "" {
		s.City = "Cairo"
	}
	if s.Description == "" {
		s.Description = "No description available"
	}
	if len(s.Activities) == 0 {
		s.Activities = []string{"Exploring", "Photography"}
	}
	if s.OpeningTime == "" {
		s.OpeningTime = "08:00"
	}
	if s.ClosingTime == "" {
		s.ClosingTime = "18:00"
	}
	if s.AverageTimeSpentHours == 0 {
		s.AverageTimeSpentHours = 2.0
	}
}

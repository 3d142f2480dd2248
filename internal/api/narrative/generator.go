package narrative

import (
	"context"
	"regexp"
	"strings"

	"github.com/nileways/trip-planner/internal/models"
)

// DayContext is the structured day summary handed to narrative generation.
// It carries everything the prompt and the template need; no prompt detail
// leaks back into the planning pipeline.
type DayContext struct {
	Day   int // 1-based
	City  string
	Sites []models.PlannedSite
	Meals models.MealSlots
	User  models.UserTripRequest
}

// SiteCosts sums the day's site costs.
func (d DayContext) SiteCosts() float64 {
	var total float64
	for _, s := range d.Sites {
		total += s.CostEGP
	}
	return total
}

// MealCosts sums the day's assigned meal costs; empty slots contribute zero.
func (d DayContext) MealCosts() float64 {
	var total float64
	for _, meal := range models.MealTypes {
		if a := d.Meals.Get(meal); a != nil {
			total += a.BudgetEGP
		}
	}
	return total
}

// Total is the day's cost excluding transportation.
func (d DayContext) Total() float64 {
	return d.SiteCosts() + d.MealCosts()
}

// Generator produces the free-text day itinerary. Implementations backed by a
// remote model are unreliable by contract; callers pair them with the
// deterministic template fallback.
type Generator interface {
	GenerateDayItinerary(ctx context.Context, day DayContext) (string, error)
}

var tokenArtifacts = []string{
	"<|header_start|>", "<|header_end|>",
	"<|im_start|>", "<|im_end|>",
	"<|system|>", "<|user|>", "<|assistant|>",
}

var (
	dailyTotalRe = regexp.MustCompile(`\*\*Daily Total:\*\*\s*\d+(\.\d+)?\s*EGP`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

// cleanResponse strips tokenizer artifacts the hosted model occasionally
// leaks and collapses runaway blank lines.
func cleanResponse(text string) string {
	for _, artifact := range tokenArtifacts {
		text = strings.ReplaceAll(text, artifact, "")
	}
	return strings.TrimSpace(blankLinesRe.ReplaceAllString(text, "\n\n"))
}

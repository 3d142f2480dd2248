package narrative

import (
	"context"
	"fmt"
	"strings"

	"github.com/nileways/trip-planner/internal/models"
)

var _ Generator = (*TemplateGenerator)(nil)

// TemplateGenerator renders the deterministic day itinerary used whenever the
// hosted model is unavailable, times out, or returns malformed output. Its
// output is built only from the structured day data, so two identical inputs
// always produce identical text.
type TemplateGenerator struct{}

func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

func (g *TemplateGenerator) GenerateDayItinerary(_ context.Context, day DayContext) (string, error) {
	primaryCity := day.City
	if len(day.Sites) > 0 && day.Sites[0].City != "" {
		primaryCity = day.Sites[0].City
	}
	if primaryCity == "" {
		primaryCity = "Cairo"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Day %d - %s Adventure**\n\n", day.Day, primaryCity)

	if breakfast := day.Meals.Breakfast; breakfast != nil {
		fmt.Fprintf(&b, "**08:00 - Breakfast**\n")
		fmt.Fprintf(&b, "Breakfast at %s - %s\n", breakfast.Name, breakfast.Description)
		fmt.Fprintf(&b, "Budget: %.0f EGP | Duration: 1 hour\n", breakfast.BudgetEGP)
		fmt.Fprintf(&b, "Tip: Start your day with traditional ful medames and fresh bread\n\n")
	}

	if len(day.Sites) > 0 {
		site := day.Sites[0]
		fmt.Fprintf(&b, "**09:00 - Morning Site Visit**\n")
		fmt.Fprintf(&b, "Visit %s - %s\n", site.Name, site.Description)
		fmt.Fprintf(&b, "Duration: %.1f hours | Cost: %.0f EGP | Location: %s\n", site.AverageTimeSpentHours, site.CostEGP, site.City)
		fmt.Fprintf(&b, "Activities: %s\n", strings.Join(site.Activities, ", "))
		fmt.Fprintf(&b, "Tip: Arrive early to avoid crowds and enjoy the best lighting for photos\n\n")
	}

	if lunch := day.Meals.Lunch; lunch != nil {
		fmt.Fprintf(&b, "**13:00 - Lunch Break**\n")
		fmt.Fprintf(&b, "Lunch at %s - %s\n", lunch.Name, lunch.Description)
		fmt.Fprintf(&b, "Budget: %.0f EGP | Duration: 1 hour\n", lunch.BudgetEGP)
		fmt.Fprintf(&b, "Tip: Try traditional Egyptian dishes and stay hydrated\n\n")
	}

	if len(day.Sites) > 1 {
		site := day.Sites[1]
		fmt.Fprintf(&b, "**15:00 - Afternoon Site Visit**\n")
		fmt.Fprintf(&b, "Visit %s - %s\n", site.Name, site.Description)
		fmt.Fprintf(&b, "Duration: %.1f hours | Cost: %.0f EGP | Location: %s\n", site.AverageTimeSpentHours, site.CostEGP, site.City)
		fmt.Fprintf(&b, "Activities: %s\n", strings.Join(site.Activities, ", "))
		fmt.Fprintf(&b, "Tip: Perfect time for afternoon exploration with comfortable temperatures\n\n")
	}

	if dinner := day.Meals.Dinner; dinner != nil {
		fmt.Fprintf(&b, "**19:00 - Dinner**\n")
		fmt.Fprintf(&b, "Dinner at %s - %s\n", dinner.Name, dinner.Description)
		fmt.Fprintf(&b, "Budget: %.0f EGP | Duration: 1.5 hours\n", dinner.BudgetEGP)
		fmt.Fprintf(&b, "Tip: Experience local flavors and enjoy the evening atmosphere\n\n")
	}

	fmt.Fprintf(&b, "**Transportation:** %s\n", TransportSuggestion(day.Sites, primaryCity))
	fmt.Fprintf(&b, "**Transportation Cost:** Approximately %.0f EGP for the day\n", TransportCost(day.Sites, primaryCity))
	fmt.Fprintf(&b, "**Daily Total:** %.0f EGP (excluding transportation)\n", day.Total())

	return b.String(), nil
}

// mealLine formats one meal bullet of the Gemini prompt.
func mealLine(meal models.MealType, a *models.MealAssignment) string {
	label := string(meal)
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	if a == nil {
		return fmt.Sprintf("- %s: Not scheduled", label)
	}
	return fmt.Sprintf("- %s: %s | COST: %.0f EGP", label, a.Name, a.BudgetEGP)
}

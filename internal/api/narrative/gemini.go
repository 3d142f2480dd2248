package narrative

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"

	"github.com/nileways/trip-planner/internal/models"
)

// minUsableLength rejects truncated model replies in favor of the template.
const minUsableLength = 200

var _ Generator = (*GeminiGenerator)(nil)

// GeminiGenerator asks Gemini for the day narrative. Every call runs under a
// bounded timeout; malformed or short replies are treated as failures so the
// caller falls back to the deterministic template.
type GeminiGenerator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

func NewGeminiGenerator(ctx context.Context, model string, timeout time.Duration, logger *slog.Logger) (*GeminiGenerator, error) {
	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_GEMINI_API_KEY environment variable is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiGenerator{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}, nil
}

func (g *GeminiGenerator) GenerateDayItinerary(ctx context.Context, day DayContext) (string, error) {
	ctx, span := otel.Tracer("NarrativeGenerator").Start(ctx, "GenerateDayItinerary")
	defer span.End()
	span.SetAttributes(attribute.Int("day", day.Day), attribute.String("city", day.City))

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt := buildDayPrompt(day)
	temperature := float32(0.3)
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: &temperature,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Generation failed")
		return "", fmt.Errorf("failed to generate day itinerary: %w", err)
	}

	text := cleanResponse(result.Text())
	if len(text) < minUsableLength {
		err := fmt.Errorf("model reply too short (%d chars)", len(text))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Reply too short")
		return "", err
	}

	span.SetStatus(codes.Ok, "Narrative generated")
	return fixItinerary(text, day), nil
}

// fixItinerary repairs the formatting drift the model is prone to: wrong
// daily total and an inconsistent headline city.
func fixItinerary(text string, day DayContext) string {
	primaryCity := day.City
	if len(day.Sites) > 0 && day.Sites[0].City != "" {
		primaryCity = day.Sites[0].City
	}
	text = dailyTotalRe.ReplaceAllString(text, fmt.Sprintf("**Daily Total:** %.0f EGP", day.Total()))
	headlineRe := fmt.Sprintf("**Day %d - %s Adventure**", day.Day, primaryCity)
	if !strings.Contains(text, headlineRe) {
		// Leave the body alone; only prepend the canonical headline when the
		// model dropped it entirely.
		if !strings.Contains(text, fmt.Sprintf("Day %d", day.Day)) {
			text = headlineRe + "\n\n" + text
		}
	}
	return text
}

func buildDayPrompt(day DayContext) string {
	primaryCity := day.City
	if len(day.Sites) > 0 && day.Sites[0].City != "" {
		primaryCity = day.Sites[0].City
	}

	var sites strings.Builder
	for _, s := range day.Sites {
		desc := s.Description
		if len(desc) > 80 {
			desc = desc[:80] + "..."
		}
		fmt.Fprintf(&sites, "- %s (%s): %s | COST: %.0f EGP\n", s.Name, s.City, desc, s.CostEGP)
	}

	return fmt.Sprintf(`Create a professional full-day Egypt travel itinerary for Day %d.

STRICT REQUIREMENTS:
- Use ONLY the exact restaurant names and costs provided
- Use ONLY the exact site names and costs provided
- Keep descriptions professional and informative
- Include practical travel tips
- Day structure: breakfast 08:00, morning site 09:00, lunch 12:00, afternoon site or free time 14:00, dinner 19:00
- Headline: **Day %d - %s Adventure**
- End with transportation advice, transportation cost, and a "**Daily Total:** <amount> EGP (excluding transportation)" line

USER PROFILE: Age %d, interests: %s

SITES FOR TODAY:
%s
RESTAURANTS FOR TODAY:
%s
%s
%s

TRANSPORTATION ADVICE: %s
TRANSPORTATION COST: Approximately %.0f EGP for the day
DAILY TOTAL: %.0f EGP (excluding transportation)
`,
		day.Day, day.Day, primaryCity,
		day.User.Age, strings.Join(day.User.Interests, ", "),
		sites.String(),
		mealLine(models.MealBreakfast, day.Meals.Breakfast),
		mealLine(models.MealLunch, day.Meals.Lunch),
		mealLine(models.MealDinner, day.Meals.Dinner),
		TransportSuggestion(day.Sites, primaryCity),
		TransportCost(day.Sites, primaryCity),
		day.Total(),
	)
}

package trip

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/nileways/trip-planner/app/observability/metrics"
	"github.com/nileways/trip-planner/config"
	"github.com/nileways/trip-planner/internal/api/catalog"
	"github.com/nileways/trip-planner/internal/api/narrative"
	"github.com/nileways/trip-planner/internal/embedding"
	"github.com/nileways/trip-planner/internal/geo"
	"github.com/nileways/trip-planner/internal/models"
)

// Service assembles complete trip plans from the catalog, the embedding layer
// and the narrative layer.
type Service interface {
	BuildTripPlan(ctx context.Context, req models.UserTripRequest) (*models.TripPlan, error)
	ConvertToSuggestions(plan *models.TripPlan) []models.Suggestion
}

var _ Service = (*ServiceImpl)(nil)

// ServiceImpl implements the trip planning pipeline. The narrator is optional;
// when it is nil or fails, day itineraries come from the deterministic
// template.
type ServiceImpl struct {
	retriever catalog.Retriever
	embedder  embedding.Embedder
	narrator  narrative.Generator
	template  narrative.Generator
	optimizer budgetOptimizer
	cfg       config.PlannerConfig
	logger    *slog.Logger
}

func NewServiceImpl(retriever catalog.Retriever, embedder embedding.Embedder, narrator narrative.Generator, cfg config.PlannerConfig, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		retriever: retriever,
		embedder:  embedder,
		narrator:  narrator,
		template:  narrative.NewTemplateGenerator(),
		optimizer: budgetOptimizer{cfg: cfg, retriever: retriever, logger: logger},
		cfg:       cfg,
		logger:    logger,
	}
}

// BuildTripPlan assembles one daily plan per requested day. The total budget
// splits evenly across days, each day's city comes from the contiguous city
// allocation, and sites never repeat across days. A day whose assembly fails
// becomes an empty zero-cost placeholder rather than failing the trip.
func (s *ServiceImpl) BuildTripPlan(ctx context.Context, req models.UserTripRequest) (*models.TripPlan, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "BuildTripPlan")
	defer span.End()
	start := time.Now()

	user := req.Validated(s.cfg.DefaultAge, s.cfg.DefaultBudget, s.cfg.DefaultDays)
	span.SetAttributes(
		attribute.Int("days", user.Days),
		attribute.Float64("budget_egp", user.BudgetEGP),
		attribute.StringSlice("cities", user.Cities),
	)
	l := s.logger.With(slog.String("method", "BuildTripPlan"), slog.Int("days", user.Days))
	l.InfoContext(ctx, "Building trip plan",
		slog.Float64("budget_egp", user.BudgetEGP),
		slog.Any("cities", user.Cities))

	dailyBudget := user.BudgetEGP / float64(user.Days)
	allocation := AllocateCities(user.Cities, user.Days)

	usedSites := make(map[string]bool)
	days := make([]models.DailyPlan, 0, user.Days)
	var totalCost float64

	for day := 1; day <= user.Days; day++ {
		assignedCity := allocation[day-1]
		plan, err := s.buildDailyPlan(ctx, user, day, assignedCity, dailyBudget, usedSites)
		if err != nil {
			l.ErrorContext(ctx, "Daily plan assembly failed, inserting placeholder",
				slog.Int("day", day), slog.Any("error", err))
			span.RecordError(err)
			metrics.Get().DayBuildFailuresTotal.Add(ctx, 1)
			plan = placeholderDay(day, assignedCity)
		}
		for _, site := range plan.Sites {
			usedSites[strings.ToLower(strings.TrimSpace(site.Name))] = true
		}
		totalCost += plan.DailyCostEGP
		days = append(days, plan)
	}

	plan := &models.TripPlan{
		UserPreferences: models.UserPreferences{
			Age:            user.Age,
			TotalBudgetEGP: user.BudgetEGP,
			DailyBudgetEGP: dailyBudget,
			Interests:      user.Interests,
			DurationDays:   user.Days,
			City:           strings.Join(user.Cities, ", "),
			CityAllocation: allocation,
		},
		Days: days,
		Summary: models.TripSummary{
			TotalTripCostEGP:   totalCost,
			RemainingBudgetEGP: user.BudgetEGP - totalCost,
		},
	}

	metrics.Get().TripsBuiltTotal.Add(ctx, 1)
	metrics.Get().TripBuildDurationSeconds.Record(ctx, time.Since(start).Seconds())
	span.SetStatus(codes.Ok, "Trip plan built")
	l.InfoContext(ctx, "Trip plan built",
		slog.Float64("total_cost_egp", totalCost),
		slog.Duration("elapsed", time.Since(start)))
	return plan, nil
}

// firstDayCities are the cities whose day-one plans anchor on the seed sites.
// A day-one allocation elsewhere falls through to the standard retrieval path.
var firstDayCities = map[string]bool{"": true, "cairo": true, "giza": true}

func (s *ServiceImpl) buildDailyPlan(ctx context.Context, user models.UserTripRequest, day int, assignedCity string, dailyBudget float64, usedSites map[string]bool) (models.DailyPlan, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "BuildDailyPlan")
	defer span.End()
	span.SetAttributes(attribute.Int("day", day), attribute.String("assigned_city", assignedCity))

	l := s.logger.With(slog.Int("day", day), slog.String("assigned_city", assignedCity))

	siteBudget := dailyBudget * s.cfg.SitesBudgetShare
	foodBudget := dailyBudget * s.cfg.FoodBudgetShare

	var selected []models.ScoredSite
	if day == 1 && firstDayCities[strings.ToLower(strings.TrimSpace(assignedCity))] {
		selected = firstDaySites(ctx, s.retriever, l)
	} else {
		candidates := s.retrieveCandidates(ctx, user, assignedCity, siteBudget)
		selected = selectSitesByLocation(candidates, candidates, usedSites, l)
		if len(selected) == 0 {
			l.WarnContext(ctx, "No sites retrievable, using static fallback pair")
			selected = fallbackSitesForDay(day)
		}
	}

	if len(selected) == 0 {
		return models.DailyPlan{}, fmt.Errorf("no sites selectable for day %d", day)
	}

	plan := models.DailyPlan{Day: day, City: assignedCity}
	if plan.City == "" {
		plan.City = "Cairo"
	}
	if len(selected) > 0 {
		plan.City = selected[0].City
	}

	var sitesCost float64
	for _, scored := range selected {
		site := scored.Site
		site.Normalize()
		plan.Sites = append(plan.Sites, models.PlannedSite{
			Name:                  site.Name,
			City:                  site.City,
			Governorate:           site.Governorate,
			Description:           site.Description,
			SimilarityScore:       scored.SimilarityScore,
			Activities:            site.Activities,
			OpeningTime:           site.OpeningTime,
			ClosingTime:           site.ClosingTime,
			AverageTimeSpentHours: site.AverageTimeSpentHours,
			CostEGP:               site.EntryCostEGP,
			Latitude:              site.Latitude,
			Longitude:             site.Longitude,
		})
		sitesCost += site.EntryCostEGP
	}
	if len(plan.Sites) >= 2 {
		plan.DistanceBetweenSitesKm = geo.Distance(plan.Sites[0].Coordinate(), plan.Sites[1].Coordinate())
	}

	pool := s.retriever.Restaurants(ctx, plan.City, foodBudget)
	meals, mealCost := assignMeals(plan.Sites, pool)
	plan.Restaurants = meals
	plan.DailyCostEGP = sitesCost + mealCost

	s.optimizer.optimize(ctx, &plan, dailyBudget)

	plan.TransportationNote = narrative.TransportSuggestion(plan.Sites, plan.City)
	plan.TransportationCostEGP = narrative.TransportCost(plan.Sites, plan.City)
	plan.Itinerary = s.dayItinerary(ctx, plan, user)
	plan.Activities = buildActivities(plan)
	plan.Summary = models.DaySummary{
		TotalActivities:   len(plan.Activities),
		SitesCount:        len(plan.Sites),
		RestaurantsCount:  plan.Restaurants.Count(),
		EstimatedDuration: "Full day (approximately 12 hours)",
		PrimaryCity:       plan.City,
	}

	span.SetStatus(codes.Ok, "Daily plan assembled")
	l.InfoContext(ctx, "Daily plan assembled",
		slog.String("city", plan.City),
		slog.Int("sites", len(plan.Sites)),
		slog.Float64("daily_cost_egp", plan.DailyCostEGP))
	return plan, nil
}

// retrieveCandidates embeds the user's interest query and runs the retrieval
// ladder. An embedding failure degrades to a nil vector, which the ladder
// resolves with synthetic scores.
func (s *ServiceImpl) retrieveCandidates(ctx context.Context, user models.UserTripRequest, city string, siteBudget float64) []models.ScoredSite {
	query := fmt.Sprintf("Tourist attractions for a traveler interested in %s", strings.Join(user.Interests, ", "))
	if city != "" {
		query += " in " + city
	}

	userEmbedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.logger.WarnContext(ctx, "Query embedding failed, retrieval will degrade to synthetic scores",
			slog.Any("error", err))
		userEmbedding = nil
	}
	return s.retriever.TopSimilarSites(ctx, userEmbedding, city, s.cfg.TopK, siteBudget, user.Age)
}

func (s *ServiceImpl) dayItinerary(ctx context.Context, plan models.DailyPlan, user models.UserTripRequest) string {
	dayCtx := narrative.DayContext{
		Day:   plan.Day,
		City:  plan.City,
		Sites: plan.Sites,
		Meals: plan.Restaurants,
		User:  user,
	}
	if s.narrator != nil {
		text, err := s.narrator.GenerateDayItinerary(ctx, dayCtx)
		if err == nil {
			return text
		}
		s.logger.WarnContext(ctx, "Narrative generation failed, using template",
			slog.Int("day", plan.Day), slog.Any("error", err))
		metrics.Get().NarrativeFallbacksTotal.Add(ctx, 1)
	}
	text, _ := s.template.GenerateDayItinerary(ctx, dayCtx)
	return text
}

// placeholderDay is the zero-cost empty day inserted when assembly fails.
func placeholderDay(day int, city string) models.DailyPlan {
	if city == "" {
		city = "Cairo"
	}
	return models.DailyPlan{
		Day:        day,
		City:       city,
		Sites:      []models.PlannedSite{},
		Activities: []models.Activity{},
		Summary: models.DaySummary{
			EstimatedDuration: "Unavailable",
			PrimaryCity:       city,
		},
	}
}

// buildActivities renders the day as the standardized timeline: breakfast at
// 08:00, the first site at 09:00, lunch at 12:00, the second site at 15:00 and
// dinner at 19:00. Empty meal slots and missing sites produce no entry.
func buildActivities(plan models.DailyPlan) []models.Activity {
	activities := make([]models.Activity, 0, 5)

	if a := plan.Restaurants.Breakfast; a != nil {
		activities = append(activities, mealActivity(plan.Day, a, "08:00", "1 hour"))
	}
	if len(plan.Sites) > 0 {
		activities = append(activities, siteActivity(plan.Day, 1, plan.Sites[0], "09:00"))
	}
	if a := plan.Restaurants.Lunch; a != nil {
		activities = append(activities, mealActivity(plan.Day, a, "12:00", "1 hour"))
	}
	if len(plan.Sites) > 1 {
		activities = append(activities, siteActivity(plan.Day, 2, plan.Sites[1], "15:00"))
	}
	if a := plan.Restaurants.Dinner; a != nil {
		activities = append(activities, mealActivity(plan.Day, a, "19:00", "1.5 hours"))
	}
	return activities
}

func siteActivity(day, position int, site models.PlannedSite, at string) models.Activity {
	coords := site.Coordinate()
	return models.Activity{
		ID:          fmt.Sprintf("day-%d-site-%d", day, position),
		Time:        at,
		Title:       site.Name,
		Description: site.Description,
		Location:    site.City,
		Type:        "site",
		Duration:    fmt.Sprintf("%g hours", site.AverageTimeSpentHours),
		CostEGP:     site.CostEGP,
		Activities:  site.Activities,
		Coordinates: &coords,
	}
}

func mealActivity(day int, a *models.MealAssignment, at, duration string) models.Activity {
	return models.Activity{
		ID:          fmt.Sprintf("day-%d-%s", day, a.MealType),
		Time:        at,
		Title:       a.Name,
		Description: a.Description,
		Location:    a.City,
		Type:        "restaurant",
		Duration:    duration,
		CostEGP:     a.BudgetEGP,
		MealType:    a.MealType,
	}
}

// ConvertToSuggestions flattens a trip plan's sites into the card shape the
// frontend renders. Rating maps similarity onto a 3-to-5 star scale and
// priority buckets it at the 0.7 and 0.4 marks.
func (s *ServiceImpl) ConvertToSuggestions(plan *models.TripPlan) []models.Suggestion {
	if plan == nil {
		return nil
	}
	suggestions := make([]models.Suggestion, 0)
	for _, day := range plan.Days {
		for _, site := range day.Sites {
			rating := 3 + site.SimilarityScore*2
			if rating > 5 {
				rating = 5
			}
			priority := "low"
			switch {
			case site.SimilarityScore > 0.7:
				priority = "high"
			case site.SimilarityScore > 0.4:
				priority = "medium"
			}
			suggestions = append(suggestions, models.Suggestion{
				ID:               suggestionID(site.Name),
				Name:             site.Name,
				Region:           site.City,
				Category:         "Historical Site",
				ShortDescription: site.Description,
				AverageRating:    rating,
				EntryFeeEGP:      site.CostEGP,
				VisitDuration:    fmt.Sprintf("%g hours", site.AverageTimeSpentHours),
				Reason:           fmt.Sprintf("Matched your interests with %.0f%% similarity", site.SimilarityScore*100),
				Priority:         priority,
			})
		}
	}
	return suggestions
}

func suggestionID(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

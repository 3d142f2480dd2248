package trip

import (
	"context"
	"log/slog"

	"github.com/nileways/trip-planner/config"
	"github.com/nileways/trip-planner/internal/api/catalog"
	"github.com/nileways/trip-planner/internal/geo"
	"github.com/nileways/trip-planner/internal/models"
)

// premiumExperiences are the add-on activities attached to sites when the
// day's budget is still underused after meal upgrades. Only the first two are
// appended per site.
var premiumExperiences = []string{
	"Private guided tour",
	"Professional photography session",
	"VIP access",
	"Audio guide rental",
	"Souvenir shopping",
}

const premiumExperiencesPerSite = 2

type budgetOptimizer struct {
	cfg       config.PlannerConfig
	retriever catalog.Retriever
	logger    *slog.Logger
}

// optimize raises the day's spend toward the daily budget when utilization is
// low. It upgrades dinner first, then lunch, each to a pricier restaurant of
// the same meal type in the same city, and finally attaches premium
// experiences to the day's sites. Every replacement costs at least as much as
// what it replaces, so the daily cost never decreases, and each step spends
// within a band derived from the budget still remaining, so the daily budget
// is never exceeded by the optimizer itself.
func (o *budgetOptimizer) optimize(ctx context.Context, plan *models.DailyPlan, dailyBudget float64) {
	if dailyBudget <= 0 {
		return
	}
	remaining := dailyBudget - plan.DailyCostEGP
	utilization := plan.DailyCostEGP / dailyBudget
	if utilization >= o.cfg.UtilizationTarget || remaining <= o.cfg.OptimizeMinRemaining {
		return
	}

	l := o.logger.With(slog.Int("day", plan.Day), slog.Float64("remaining", remaining))
	l.DebugContext(ctx, "Budget underused, attempting upgrades",
		slog.Float64("utilization", utilization))

	if len(plan.Sites) > 0 && remaining > o.cfg.UpgradeMinRemaining {
		upgradeAmount := remaining * o.cfg.UpgradeShare
		if upgradeAmount > o.cfg.UpgradeCap {
			upgradeAmount = o.cfg.UpgradeCap
		}

		if plan.Restaurants.Dinner != nil && upgradeAmount > o.cfg.OptimizeMinRemaining {
			o.upgradeMeal(ctx, plan, models.MealDinner, upgradeAmount*0.5, o.dinnerAnchor(plan))
		}

		newRemaining := dailyBudget - plan.DailyCostEGP
		if plan.Restaurants.Lunch != nil && newRemaining > o.cfg.OptimizeMinRemaining {
			o.upgradeMeal(ctx, plan, models.MealLunch, newRemaining*o.cfg.LunchUpgradeShare, o.lunchAnchor(plan))
		}
	}

	o.addPremiumExperiences(ctx, plan, dailyBudget)
}

// upgradeMeal replaces the slot's restaurant with the cheapest same-city
// restaurant priced within budgetRoom above the current one. No-op when
// nothing in the band beats the current price.
func (o *budgetOptimizer) upgradeMeal(ctx context.Context, plan *models.DailyPlan, meal models.MealType, budgetRoom float64, anchor models.Coordinate) {
	current := plan.Restaurants.Get(meal)
	if current == nil {
		return
	}
	ceiling := current.BudgetEGP + budgetRoom
	candidates := o.retriever.RestaurantUpgrades(ctx, plan.City, meal, current.BudgetEGP, ceiling)
	for i := range candidates {
		candidate := &candidates[i]
		additional := candidate.AverageBudgetEGP - current.BudgetEGP
		if additional <= 0 || additional > budgetRoom {
			continue
		}
		distance := geo.Distance(anchor, candidate.Coordinate())
		plan.Restaurants.Set(meal, models.NewMealAssignment(candidate, meal, distance))
		plan.DailyCostEGP += additional
		o.logger.InfoContext(ctx, "Upgraded meal within remaining budget",
			slog.Int("day", plan.Day),
			slog.String("meal", string(meal)),
			slog.String("restaurant", candidate.Name),
			slog.Float64("additional_cost", additional))
		return
	}
}

// dinnerAnchor is the last site of the day, matching where dinner was placed.
func (o *budgetOptimizer) dinnerAnchor(plan *models.DailyPlan) models.Coordinate {
	if n := len(plan.Sites); n > 0 {
		return plan.Sites[n-1].Coordinate()
	}
	return models.Coordinate{}
}

// lunchAnchor is the midpoint between the day's two sites, or the single site
// when the day has only one.
func (o *budgetOptimizer) lunchAnchor(plan *models.DailyPlan) models.Coordinate {
	switch len(plan.Sites) {
	case 0:
		return models.Coordinate{}
	case 1:
		return plan.Sites[0].Coordinate()
	default:
		return geo.Midpoint(plan.Sites[0].Coordinate(), plan.Sites[1].Coordinate())
	}
}

// addPremiumExperiences tops up each site with an experience add-on when the
// budget left after meal upgrades still clears the premium threshold. The
// add-on amount is derived from the remaining budget once, before any site is
// topped up, so two sites can each receive the same share.
func (o *budgetOptimizer) addPremiumExperiences(ctx context.Context, plan *models.DailyPlan, dailyBudget float64) {
	finalRemaining := dailyBudget - plan.DailyCostEGP
	if finalRemaining <= o.cfg.PremiumMinRemaining || len(plan.Sites) == 0 {
		return
	}

	premium := finalRemaining * o.cfg.PremiumShare
	if premium > o.cfg.PremiumCapPerSite {
		premium = o.cfg.PremiumCapPerSite
	}
	for i := range plan.Sites {
		site := &plan.Sites[i]
		site.CostEGP += premium
		site.Activities = append(site.Activities, premiumExperiences[:premiumExperiencesPerSite]...)
		plan.DailyCostEGP += premium
	}
	o.logger.InfoContext(ctx, "Added premium experiences",
		slog.Int("day", plan.Day),
		slog.Float64("premium_per_site", premium),
		slog.Int("sites", len(plan.Sites)))
}

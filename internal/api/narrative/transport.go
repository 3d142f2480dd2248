package narrative

import (
	"strings"

	"github.com/nileways/trip-planner/internal/models"
)

type transportRule struct {
	keywords   []string
	suggestion string
}

// Keyword-matched transportation advice per region. The rule with the most
// keyword hits against the day's site names and city wins.
var transportRules = []transportRule{
	{
		keywords:   []string{"pyramid", "giza", "sphinx"},
		suggestion: "Taxi or ride-sharing to the Pyramids (150-200 EGP from Cairo center) or an organized tour bus. Camel rides are available on-site (100-150 EGP). Avoid long walks in desert heat.",
	},
	{
		keywords:   []string{"museum", "egyptian museum", "coptic", "islamic cairo"},
		suggestion: "Cairo Metro (5-10 EGP) or taxi (30-80 EGP within the city). Walking works between nearby sites in Islamic and Coptic Cairo; ride-sharing apps are the convenient option.",
	},
	{
		keywords:   []string{"luxor", "karnak", "valley of kings", "hatshepsut", "thebes"},
		suggestion: "Private taxi for the full day (300-500 EGP) or an organized tour. Bicycle rental covers the East Bank sites (50-100 EGP/day); a felucca crossing of the Nile runs 20-50 EGP.",
	},
	{
		keywords:   []string{"aswan", "philae", "abu simbel", "high dam", "nubian"},
		suggestion: "Private taxi or driver (400-600 EGP/day) for multiple sites. Motorboat to Philae Temple (100-150 EGP); tour bus to Abu Simbel (300-500 EGP including transport).",
	},
	{
		keywords:   []string{"alexandria", "bibliotheca", "citadel", "catacombs", "montaza"},
		suggestion: "Taxi or ride-sharing within the city (20-60 EGP per trip), local buses (5-10 EGP), or walking along the Corniche between waterfront sites.",
	},
	{
		keywords:   []string{"hurghada", "sharm", "dahab", "marsa alam", "red sea"},
		suggestion: "Hotel shuttle or taxi to dive sites (100-200 EGP). Boat trips for snorkeling and diving run 300-800 EGP including transport; tourist buses connect the resorts.",
	},
	{
		keywords:   []string{"siwa", "oasis", "desert"},
		suggestion: "A 4WD vehicle is essential for desert sites (500-800 EGP/day with driver). Bicycles cover the town (30-50 EGP/day); camel treks run at sunset.",
	},
}

// TransportSuggestion returns region-appropriate transportation advice for a
// day's selected sites.
func TransportSuggestion(sites []models.PlannedSite, primaryCity string) string {
	if len(sites) == 0 {
		return "Use local transportation as needed (approximately 50-100 EGP per trip)."
	}

	cityLower := strings.ToLower(primaryCity)
	siteNames := make([]string, len(sites))
	for i, s := range sites {
		siteNames[i] = strings.ToLower(s.Name)
	}

	var best *transportRule
	bestHits := 0
	for i := range transportRules {
		rule := &transportRules[i]
		hits := 0
		for _, kw := range rule.keywords {
			if strings.Contains(cityLower, kw) {
				hits++
				continue
			}
			for _, name := range siteNames {
				if strings.Contains(name, kw) {
					hits++
					break
				}
			}
		}
		if hits > bestHits {
			bestHits = hits
			best = rule
		}
	}

	if best == nil {
		if strings.Contains(cityLower, "cairo") || strings.Contains(cityLower, "giza") {
			return "Cairo Metro (5-10 EGP), taxis (30-100 EGP per trip), or ride-sharing apps. Walk between nearby sites when possible."
		}
		return "Local taxi or ride-sharing (50-150 EGP per trip); public buses run 10-30 EGP. Consider hiring a driver for multiple sites."
	}
	return best.suggestion
}

// TransportCost estimates the day's transportation spend in EGP from the
// selected sites and primary city.
func TransportCost(sites []models.PlannedSite, primaryCity string) float64 {
	if len(sites) == 0 {
		return 100
	}

	cityLower := strings.ToLower(primaryCity)
	hasName := func(sub string) bool {
		for _, s := range sites {
			if strings.Contains(strings.ToLower(s.Name), sub) {
				return true
			}
		}
		return false
	}

	switch {
	case hasName("pyramid") || hasName("giza"):
		return 200
	case strings.Contains(cityLower, "luxor") || strings.Contains(cityLower, "aswan"):
		return 300
	case strings.Contains(cityLower, "alexandria"):
		return 150
	case hasName("museum") || hasName("cairo"):
		return 80
	}
	return 120
}

package trip

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/nileways/trip-planner/internal/api/catalog"
	"github.com/nileways/trip-planner/internal/models"
)

const sitesPerDay = 2

// selectSitesByLocation picks up to two sites for a day, preferring pairs that
// share a location so travel between them stays short. Sites whose names appear
// in used are skipped. Selection order:
//
//  1. locations holding at least two unused candidates, ranked by average score
//  2. the single best-scoring location, widened with same-city or
//     same-governorate sites from the full available pool
//  3. the top two candidates overall, ignoring location
func selectSitesByLocation(candidates, available []models.ScoredSite, used map[string]bool, logger *slog.Logger) []models.ScoredSite {
	unused := make([]models.ScoredSite, 0, len(candidates))
	for _, s := range candidates {
		if !used[strings.ToLower(strings.TrimSpace(s.Name))] {
			unused = append(unused, s)
		}
	}
	if len(unused) == 0 {
		return nil
	}

	groups := make(map[string][]models.ScoredSite)
	order := make([]string, 0)
	for _, s := range unused {
		key := s.LocationKey()
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], s)
	}

	var bestKey string
	bestAvg := 0.0
	for _, key := range order {
		group := groups[key]
		if len(group) < sitesPerDay {
			continue
		}
		var sum float64
		for _, s := range group {
			sum += s.SimilarityScore
		}
		avg := sum / float64(len(group))
		if avg > bestAvg {
			bestAvg = avg
			bestKey = key
		}
	}
	if bestKey != "" {
		group := groups[bestKey]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].SimilarityScore > group[j].SimilarityScore
		})
		return group[:sitesPerDay]
	}

	// No location carries a pair. Anchor on the best single-site location
	// and widen the search to the full available pool.
	var anchorKey string
	anchorBest := 0.0
	for _, key := range order {
		group := groups[key]
		top := 0.0
		for _, s := range group {
			if s.SimilarityScore > top {
				top = s.SimilarityScore
			}
		}
		if top > anchorBest {
			anchorBest = top
			anchorKey = key
		}
	}
	if anchorKey == "" {
		// All scores are zero, location preference carries no signal.
		logger.Debug("no scored location, falling back to top candidates overall")
		sorted := make([]models.ScoredSite, len(unused))
		copy(sorted, unused)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].SimilarityScore > sorted[j].SimilarityScore
		})
		if len(sorted) > sitesPerDay {
			sorted = sorted[:sitesPerDay]
		}
		return sorted
	}

	anchor := groups[anchorKey][0]
	widened := make([]models.ScoredSite, 0, sitesPerDay)
	for _, s := range available {
		if used[strings.ToLower(strings.TrimSpace(s.Name))] {
			continue
		}
		sameCity := strings.EqualFold(strings.TrimSpace(s.City), strings.TrimSpace(anchor.City))
		sameGov := anchor.Governorate != "" &&
			strings.EqualFold(strings.TrimSpace(s.Governorate), strings.TrimSpace(anchor.Governorate))
		if sameCity || sameGov {
			widened = append(widened, s)
		}
	}
	if len(widened) >= sitesPerDay {
		return widened[:sitesPerDay]
	}

	group := groups[anchorKey]
	if len(group) > sitesPerDay {
		group = group[:sitesPerDay]
	}
	return group
}

// Day one anchors the trip on Egypt's two signature attractions. The catalog
// is asked first so real records with embeddings and costs win, with fixed
// definitions standing in when the lookup comes back empty.
var daySeedPatterns = [][]string{
	{"pyramid", "giza"},
	{"egyptian museum", "museum"},
}

func seedSiteDefaults() []models.ScoredSite {
	return []models.ScoredSite{
		{
			Site: models.Site{
				ID:                    uuid.New(),
				Name:                  "Pyramids of Giza",
				City:                  "Giza",
				Governorate:           "Giza",
				Description:           "The last standing wonder of the ancient world, home to the Great Pyramid and the Sphinx",
				Activities:            []string{"Exploring", "Photography", "Camel Riding"},
				OpeningTime:           "08:00",
				ClosingTime:           "17:00",
				AverageTimeSpentHours: 3,
				EntryCostEGP:          800,
				Latitude:              29.9792,
				Longitude:             31.1342,
			},
			SimilarityScore: 1.0,
		},
		{
			Site: models.Site{
				ID:                    uuid.New(),
				Name:                  "Egyptian Museum",
				City:                  "Cairo",
				Governorate:           "Cairo",
				Description:           "Over 120,000 artifacts spanning five millennia of Egyptian history, including the treasures of Tutankhamun",
				Activities:            []string{"Museum Tour", "Photography", "Learning"},
				OpeningTime:           "09:00",
				ClosingTime:           "17:00",
				AverageTimeSpentHours: 2.5,
				EntryCostEGP:          1000,
				Latitude:              30.0478,
				Longitude:             31.2336,
			},
			SimilarityScore: 1.0,
		},
	}
}

func firstDaySites(ctx context.Context, retriever catalog.Retriever, logger *slog.Logger) []models.ScoredSite {
	defaults := seedSiteDefaults()
	seeds := make([]models.ScoredSite, 0, len(defaults))
	for i, patterns := range daySeedPatterns {
		site := retriever.SeedSite(ctx, patterns)
		if site == nil {
			logger.Debug("seed site not in catalog, using built-in definition",
				slog.String("site", defaults[i].Name))
			seeds = append(seeds, defaults[i])
			continue
		}
		seeds = append(seeds, models.ScoredSite{Site: *site, SimilarityScore: 1.0})
	}
	return seeds
}

// fallbackPair describes one static site used when retrieval produces nothing.
type fallbackPair struct {
	city  string
	sites [sitesPerDay]fallbackSite
}

type fallbackSite struct {
	name string
	lat  float64
	lon  float64
}

var fallbackPairsByDay = []fallbackPair{
	{city: "Luxor", sites: [sitesPerDay]fallbackSite{
		{name: "Karnak Temple", lat: 25.7188, lon: 32.6573},
		{name: "Valley of the Kings", lat: 25.7402, lon: 32.6014},
	}},
	{city: "Alexandria", sites: [sitesPerDay]fallbackSite{
		{name: "Bibliotheca Alexandrina", lat: 31.2089, lon: 29.9092},
		{name: "Citadel of Qaitbay", lat: 31.2140, lon: 29.8855},
	}},
	{city: "Aswan", sites: [sitesPerDay]fallbackSite{
		{name: "Philae Temple", lat: 24.0256, lon: 32.8844},
		{name: "Aswan High Dam", lat: 23.9707, lon: 32.8773},
	}},
	{city: "Cairo", sites: [sitesPerDay]fallbackSite{
		{name: "Citadel of Saladin", lat: 30.0299, lon: 31.2612},
		{name: "Khan el-Khalili", lat: 30.0477, lon: 31.2623},
	}},
}

const (
	fallbackFirstSiteCost  = 500
	fallbackSecondSiteCost = 300
	fallbackSimilarity     = 0.7
)

// fallbackSitesForDay returns a static two-site list for the given 1-based
// trip day: Luxor for day 2, Alexandria for day 3, Aswan for day 4 and Cairo
// from day 5 on.
func fallbackSitesForDay(day int) []models.ScoredSite {
	idx := day - 2
	if idx < 0 {
		idx = len(fallbackPairsByDay) - 1
	}
	if idx >= len(fallbackPairsByDay) {
		idx = len(fallbackPairsByDay) - 1
	}
	pair := fallbackPairsByDay[idx]

	out := make([]models.ScoredSite, 0, sitesPerDay)
	for i, fs := range pair.sites {
		cost := float64(fallbackFirstSiteCost)
		if i > 0 {
			cost = fallbackSecondSiteCost
		}
		out = append(out, models.ScoredSite{
			Site: models.Site{
				ID:                    uuid.New(),
				Name:                  fs.name,
				City:                  pair.city,
				Governorate:           pair.city,
				Description:           "Historic site in " + pair.city,
				Activities:            []string{"Exploring", "Photography"},
				OpeningTime:           "08:00",
				ClosingTime:           "18:00",
				AverageTimeSpentHours: 2,
				EntryCostEGP:          cost,
				Latitude:              fs.lat,
				Longitude:             fs.lon,
			},
			SimilarityScore: fallbackSimilarity,
		})
	}
	return out
}

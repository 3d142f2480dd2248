package trip

// AllocateCities maps each of totalDays trip days to one of the requested
// cities as contiguous blocks, in city list order. Remainder days go to the
// earliest-listed cities. An empty city list yields an all-empty allocation,
// meaning "any city".
func AllocateCities(cities []string, totalDays int) []string {
	if totalDays < 1 {
		return nil
	}
	allocation := make([]string, totalDays)
	if len(cities) == 0 {
		return allocation
	}
	if len(cities) == 1 {
		for i := range allocation {
			allocation[i] = cities[0]
		}
		return allocation
	}

	base := totalDays / len(cities)
	extra := totalDays % len(cities)

	day := 0
	for i, city := range cities {
		daysForCity := base
		if i < extra {
			daysForCity++
		}
		for j := 0; j < daysForCity && day < totalDays; j++ {
			allocation[day] = city
			day++
		}
	}
	return allocation
}

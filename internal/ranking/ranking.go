package ranking

import (
	"sort"

	"github.com/dharmasatrya/tripfares/internal/models"
)

// Dedup drops options whose id was already seen; the first occurrence wins.
func Dedup(opts []models.FlightOption) ([]models.FlightOption, int) {
	seen := make(map[string]struct{}, len(opts))
	result := make([]models.FlightOption, 0, len(opts))

	for _, o := range opts {
		if _, dup := seen[o.ID]; dup {
			continue
		}
		seen[o.ID] = struct{}{}
		result = append(result, o)
	}

	return result, len(opts) - len(result)
}

// SortByPrice orders by per-person price ascending. Equal prices keep their
// discovery order.
func SortByPrice(opts []models.FlightOption) {
	sort.SliceStable(opts, func(i, j int) bool {
		return opts[i].TotalAmountPerPerson < opts[j].TotalAmountPerPerson
	})
}

func Truncate(opts []models.FlightOption, limit int) []models.FlightOption {
	if limit <= 0 || len(opts) <= limit {
		return opts
	}
	return opts[:limit]
}

// Rank deduplicates, sorts and truncates, returning the duplicate count.
func Rank(opts []models.FlightOption, limit int) ([]models.FlightOption, int) {
	unique, dups := Dedup(opts)
	SortByPrice(unique)
	return Truncate(unique, limit), dups
}

// Cheapest returns the lowest per-person price, or false for no options.
func Cheapest(opts []models.FlightOption) (int, bool) {
	if len(opts) == 0 {
		return 0, false
	}
	lowest := opts[0].TotalAmountPerPerson
	for _, o := range opts[1:] {
		if o.TotalAmountPerPerson < lowest {
			lowest = o.TotalAmountPerPerson
		}
	}
	return lowest, true
}

package filter

import (
	"github.com/dharmasatrya/tripfares/internal/models"
)

// Rules bound what counts as a reasonable round trip. Limits apply to each
// slice separately.
type Rules struct {
	MaxStopsPerSlice     int
	MaxConnectionMinutes int
	MaxSliceMinutes      int
	RequireBaggage       bool
}

func DefaultRules() Rules {
	return Rules{
		MaxStopsPerSlice:     1,
		MaxConnectionMinutes: 12 * 60,
		MaxSliceMinutes:      36 * 60,
	}
}

func IsAcceptable(opt models.FlightOption, rules Rules) bool {
	if len(opt.Outbound) == 0 || len(opt.Inbound) == 0 {
		return false
	}
	if rules.RequireBaggage && !opt.BaggageIncluded {
		return false
	}
	return sliceAcceptable(opt.Outbound, rules) && sliceAcceptable(opt.Inbound, rules)
}

func sliceAcceptable(s models.Slice, rules Rules) bool {
	if s.Stops() > rules.MaxStopsPerSlice {
		return false
	}
	if s.Stops() > 0 && s.FirstConnectionMinutes() > rules.MaxConnectionMinutes {
		return false
	}
	if s.TotalMinutes() > rules.MaxSliceMinutes {
		return false
	}
	return true
}

// Apply keeps acceptable options in their original order and reports how
// many were rejected.
func Apply(opts []models.FlightOption, rules Rules) ([]models.FlightOption, int) {
	result := make([]models.FlightOption, 0, len(opts))
	for _, o := range opts {
		if IsAcceptable(o, rules) {
			result = append(result, o)
		}
	}
	return result, len(opts) - len(result)
}

package pricing

import "time"

const (
	MinPassengers = 1
	MaxPassengers = 6
)

// FareTable holds the per-person base fare for 1..6 travellers, index 0 being
// a single traveller.
type FareTable [MaxPassengers]int

type Rules struct {
	Windows []SeasonWindow
	High    FareTable
	Normal  FareTable
}

func DefaultRules() Rules {
	return Rules{
		Windows: DefaultHighSeason(),
		High:    FareTable{1470, 1295, 1245, 1220, 1195, 1170},
		Normal:  FareTable{1290, 1175, 1125, 1100, 1075, 1050},
	}
}

// ClampPassengers forces a passenger count into [1,6].
func ClampPassengers(pax int) int {
	if pax < MinPassengers {
		return MinPassengers
	}
	if pax > MaxPassengers {
		return MaxPassengers
	}
	return pax
}

// BaseFarePerPerson returns the land-package price per traveller for a
// departure date and party size.
func (r Rules) BaseFarePerPerson(date time.Time, pax int) int {
	table := r.Normal
	if r.SeasonOf(date) == SeasonHigh {
		table = r.High
	}
	return table[ClampPassengers(pax)-1]
}

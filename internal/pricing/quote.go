package pricing

import (
	"math"
	"time"
)

// Extras are the optional add-ons offered on the summary step.
type Extras struct {
	LuxuryPerPerson    int
	InsurancePerPerson int
	SingleRoom         int
	DepositRatio       float64
}

func DefaultExtras() Extras {
	return Extras{
		LuxuryPerPerson:    400,
		InsurancePerPerson: 100,
		SingleRoom:         280,
		DepositRatio:       0.6,
	}
}

type QuoteInput struct {
	Date            time.Time
	Passengers      int
	FlightPerPerson int
	Luxury          bool
	Insurance       bool
	SingleRooms     int
}

type Quote struct {
	Season            Season `json:"season"`
	BaseFarePerPerson int    `json:"base_fare_per_person"`
	FlightPerPerson   int    `json:"flight_per_person"`
	PerPerson         int    `json:"per_person"`
	SingleRooms       int    `json:"single_rooms"`
	SinglesSupplement int    `json:"singles_supplement"`
	Total             int    `json:"total"`
	PayNow            int    `json:"pay_now"`
	PayLater          int    `json:"pay_later"`
}

// NormalizeSingleRooms applies the rooming rule: a solo traveller always
// needs one single room, and nobody is left to share alone, so odd counts
// round up.
func NormalizeSingleRooms(singles, pax int) int {
	if singles <= 0 {
		return 0
	}
	if pax == 1 {
		return 1
	}
	if singles%2 == 1 {
		return singles + 1
	}
	return singles
}

func (r Rules) Quote(in QuoteInput, extras Extras) Quote {
	pax := ClampPassengers(in.Passengers)
	base := r.BaseFarePerPerson(in.Date, pax)

	perPerson := base + in.FlightPerPerson
	if in.Luxury {
		perPerson += extras.LuxuryPerPerson
	}
	if in.Insurance {
		perPerson += extras.InsurancePerPerson
	}

	singles := NormalizeSingleRooms(in.SingleRooms, pax)
	supplement := singles * extras.SingleRoom
	total := perPerson*pax + supplement
	payNow := int(math.Round(float64(total) * extras.DepositRatio))

	return Quote{
		Season:            r.SeasonOf(in.Date),
		BaseFarePerPerson: base,
		FlightPerPerson:   in.FlightPerPerson,
		PerPerson:         perPerson,
		SingleRooms:       singles,
		SinglesSupplement: supplement,
		Total:             total,
		PayNow:            payNow,
		PayLater:          total - payNow,
	}
}

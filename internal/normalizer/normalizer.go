// Package normalizer turns upstream offers into FlightOption values.
package normalizer

import (
	"math"
	"strconv"
	"strings"

	"github.com/dharmasatrya/tripfares/internal/airlines"
	"github.com/dharmasatrya/tripfares/internal/models"
	"github.com/dharmasatrya/tripfares/internal/providers"
	"github.com/dharmasatrya/tripfares/internal/timeutil"
)

const (
	DefaultCabin    = "Economy"
	DefaultCurrency = "EUR"
)

type Normalizer struct {
	// DefaultBaggageIncluded applies when the upstream says nothing about
	// checked bags.
	DefaultBaggageIncluded bool
	DefaultCabin           string
}

func New() *Normalizer {
	return &Normalizer{DefaultBaggageIncluded: true, DefaultCabin: DefaultCabin}
}

// Normalize maps a raw offer priced for pax passengers. The second result is
// false when the offer cannot be represented and must be dropped.
func (n *Normalizer) Normalize(offer providers.Offer, pax int) (models.FlightOption, bool) {
	if len(offer.Slices) < 2 {
		return models.FlightOption{}, false
	}
	if pax < 1 {
		pax = 1
	}

	out, ok := buildSlice(offer.Slices[0])
	if !ok {
		return models.FlightOption{}, false
	}
	ret, ok := buildSlice(offer.Slices[1])
	if !ok {
		return models.FlightOption{}, false
	}

	total, err := strconv.ParseFloat(strings.TrimSpace(offer.TotalAmount), 64)
	if err != nil {
		return models.FlightOption{}, false
	}
	perPerson := int(math.Round(total / float64(pax)))
	if perPerson <= 0 {
		return models.FlightOption{}, false
	}

	currency := offer.TotalCurrency
	if currency == "" {
		currency = DefaultCurrency
	}

	return models.FlightOption{
		ID:                   offer.ID,
		Destination:          out[len(out)-1].Destination,
		Outbound:             out,
		Inbound:              ret,
		BaggageIncluded:      n.baggageIncluded(offer),
		Cabin:                n.cabin(offer),
		TotalAmountPerPerson: perPerson,
		Currency:             currency,
		Airlines:             carriers(out, ret),
	}, true
}

func buildSlice(raw providers.OfferSlice) (models.Slice, bool) {
	if len(raw.Segments) == 0 {
		return nil, false
	}

	segs := make(models.Slice, 0, len(raw.Segments))
	for _, s := range raw.Segments {
		dep, err := timeutil.ParseTimestamp(s.DepartingAt, s.Origin.IATACode)
		if err != nil {
			return nil, false
		}
		arr, err := timeutil.ParseTimestamp(s.ArrivingAt, s.Destination.IATACode)
		if err != nil {
			return nil, false
		}

		minutes, ok := timeutil.ParseISODuration(s.Duration)
		if !ok {
			minutes = timeutil.MinutesBetween(dep, arr)
		}

		segs = append(segs, models.FlightSegment{
			Origin:           s.Origin.IATACode,
			Destination:      s.Destination.IATACode,
			Departure:        dep,
			Arrival:          arr,
			DurationMinutes:  minutes,
			MarketingCarrier: s.MarketingCarrier.IATACode,
			FlightNumber:     s.MarketingCarrierFlightNumber,
			OperatingCarrier: s.OperatingCarrier.IATACode,
		})
	}

	segs[0].Stops = len(segs) - 1
	if len(segs) > 1 {
		conn := timeutil.MinutesBetween(segs[0].Arrival, segs[1].Departure)
		segs[0].ConnectionAirport = segs[0].Destination
		segs[0].ConnectionMinutes = &conn
	}

	return segs, true
}

func (n *Normalizer) baggageIncluded(offer providers.Offer) bool {
	first := offer.Slices[0].Segments[0]
	for _, p := range first.Passengers {
		if len(p.Baggages) == 0 {
			continue
		}
		for _, b := range p.Baggages {
			if b.Type == "checked" {
				return b.Quantity > 0
			}
		}
		return false
	}
	return n.DefaultBaggageIncluded
}

func (n *Normalizer) cabin(offer providers.Offer) string {
	for _, p := range offer.Slices[0].Segments[0].Passengers {
		if name := strings.TrimSpace(p.CabinClassMarketingName); name != "" {
			return name
		}
	}
	if n.DefaultCabin != "" {
		return n.DefaultCabin
	}
	return DefaultCabin
}

func carriers(slices ...models.Slice) []models.Airline {
	seen := make(map[string]bool)
	var result []models.Airline
	for _, sl := range slices {
		for _, seg := range sl {
			code := strings.ToUpper(seg.MarketingCarrier)
			if code == "" || seen[code] {
				continue
			}
			seen[code] = true
			result = append(result, models.Airline{Code: code, Name: airlines.Name(code)})
		}
	}
	return result
}

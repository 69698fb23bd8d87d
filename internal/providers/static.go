package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"time"

	"github.com/dharmasatrya/tripfares/internal/providers/data"
)

const templateLayout = "2006-01-02T15:04:05"

// StaticProvider answers searches from embedded template offers, moved onto
// the requested dates and priced per passenger with a stable per-date
// variation. It stands in for the real upstream in local runs.
type StaticProvider struct {
	offers  map[string][]Offer
	latency time.Duration
}

func NewStaticProvider(latency time.Duration) (*StaticProvider, error) {
	var offers map[string][]Offer
	if err := json.Unmarshal(data.Offers, &offers); err != nil {
		return nil, err
	}
	return &StaticProvider{offers: offers, latency: latency}, nil
}

func (p *StaticProvider) Name() string {
	return "static"
}

func (p *StaticProvider) Search(ctx context.Context, req SearchRequest) ([]Offer, error) {
	if p.latency > 0 {
		select {
		case <-time.After(p.latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	dep, err := time.Parse("2006-01-02", req.DepartureDate)
	if err != nil {
		return nil, fmt.Errorf("departure date: %w", err)
	}
	ret, err := time.Parse("2006-01-02", req.ReturnDate)
	if err != nil {
		return nil, fmt.Errorf("return date: %w", err)
	}
	pax := req.Passengers
	if pax < 1 {
		pax = 1
	}

	templates := p.offers[strings.ToUpper(req.Destination)]
	factor := priceFactor(req.Destination, req.DepartureDate)

	results := make([]Offer, 0, len(templates))
	for _, tpl := range templates {
		offer, err := rebase(tpl, req.Origin, []time.Time{dep, ret})
		if err != nil {
			continue
		}
		amount, err := strconv.ParseFloat(tpl.TotalAmount, 64)
		if err != nil {
			continue
		}
		offer.ID = fmt.Sprintf("%s_%s_%d", tpl.ID, dep.Format("20060102"), pax)
		offer.TotalAmount = strconv.FormatFloat(amount*factor*float64(pax), 'f', 2, 64)
		results = append(results, offer)
	}

	return results, nil
}

// rebase moves each slice onto its target date keeping clock times and day
// offsets, and swaps the template origin for the requested one.
func rebase(tpl Offer, origin string, targets []time.Time) (Offer, error) {
	out := tpl
	out.Slices = make([]OfferSlice, len(tpl.Slices))

	for i, sl := range tpl.Slices {
		if i >= len(targets) || len(sl.Segments) == 0 {
			out.Slices[i] = sl
			continue
		}
		first, err := time.Parse(templateLayout, sl.Segments[0].DepartingAt)
		if err != nil {
			return Offer{}, err
		}
		anchor := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, time.UTC)
		shift := targets[i].Sub(anchor)

		segs := make([]OfferSegment, len(sl.Segments))
		for j, s := range sl.Segments {
			depAt, err := time.Parse(templateLayout, s.DepartingAt)
			if err != nil {
				return Offer{}, err
			}
			arrAt, err := time.Parse(templateLayout, s.ArrivingAt)
			if err != nil {
				return Offer{}, err
			}
			s.DepartingAt = depAt.Add(shift).Format(templateLayout)
			s.ArrivingAt = arrAt.Add(shift).Format(templateLayout)
			segs[j] = s
		}

		if origin != "" {
			if i == 0 {
				segs[0].Origin.IATACode = origin
			} else {
				segs[len(segs)-1].Destination.IATACode = origin
			}
		}
		out.Slices[i] = OfferSlice{Segments: segs}
	}

	return out, nil
}

// priceFactor varies fares between 0.85 and 1.25 depending on destination and
// departure date.
func priceFactor(destination, date string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToUpper(destination) + "|" + date))
	return 0.85 + float64(h.Sum32()%41)/100
}

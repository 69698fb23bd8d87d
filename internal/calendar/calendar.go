// Package calendar builds the "cheapest package per departure day" view of a
// month on top of the multi-destination search.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dharmasatrya/tripfares/internal/aggregator"
	"github.com/dharmasatrya/tripfares/internal/cache"
	"github.com/dharmasatrya/tripfares/internal/models"
	"github.com/dharmasatrya/tripfares/internal/pricing"
	"github.com/dharmasatrya/tripfares/internal/ranking"
	"github.com/dharmasatrya/tripfares/internal/ratelimit"
	"github.com/dharmasatrya/tripfares/internal/timeutil"
)

var ErrAllDestinationsFailed = errors.New("all destinations failed")

// Searcher is the part of the search aggregator the calendar needs.
type Searcher interface {
	Search(ctx context.Context, q models.SearchQuery) (*aggregator.Result, error)
}

type Config struct {
	// TripLength counts both travel days, so the return is TripLength-1 days
	// after departure.
	TripLength   int
	LeadTimeDays int
	Concurrency  int
	DayTTL       time.Duration
	MonthTTL     time.Duration
	Now          func() time.Time
}

func DefaultConfig() Config {
	return Config{
		TripLength:   10,
		LeadTimeDays: 30,
		Concurrency:  4,
		DayTTL:       6 * time.Hour,
		MonthTTL:     12 * time.Hour,
		Now:          time.Now,
	}
}

type Aggregator struct {
	searcher Searcher
	store    cache.Store
	rules    pricing.Rules
	config   Config
	gate     *ratelimit.Gate
	flights  singleflight.Group
}

func NewAggregator(searcher Searcher, store cache.Store, rules pricing.Rules, config Config) *Aggregator {
	def := DefaultConfig()
	if config.TripLength < 2 {
		config.TripLength = def.TripLength
	}
	if config.LeadTimeDays < 0 {
		config.LeadTimeDays = 0
	}
	if config.Concurrency <= 0 {
		config.Concurrency = def.Concurrency
	}
	if config.DayTTL <= 0 {
		config.DayTTL = def.DayTTL
	}
	if config.MonthTTL <= 0 {
		config.MonthTTL = def.MonthTTL
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if store == nil {
		store = cache.NewNoOpStore()
	}
	return &Aggregator{
		searcher: searcher,
		store:    store,
		rules:    rules,
		config:   config,
		gate:     ratelimit.NewGate(config.Concurrency),
	}
}

type dayResult struct {
	day       models.CalendarDay
	fromCache bool
	search    *models.SearchDiagnostics
	err       error
}

// AggregateMonth returns one entry per day of q's month. A failing day is
// reported as unavailable and never fails the month.
func (a *Aggregator) AggregateMonth(ctx context.Context, q models.CalendarQuery) (*models.CalendarMonthPayload, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	monthKey := cache.MonthKey(q.Origin, q.Passengers, q.Year, q.Month)
	if !q.NoCache {
		var cached models.CalendarMonthPayload
		hit, err := cache.GetJSON(ctx, a.store, monthKey, &cached)
		if err != nil {
			slog.Warn("month cache read failed", "key", monthKey, "error", err)
		}
		if hit {
			cached.Diag = nil
			if q.Debug {
				cached.Diag = &models.CalendarDiagnostics{MonthCacheHit: true}
			}
			return &cached, nil
		}
	}

	dates := timeutil.MonthDates(q.Year, q.Month)
	results := make([]dayResult, len(dates))
	cutoff := timeutil.StartOfDay(a.config.Now()).AddDate(0, 0, a.config.LeadTimeDays)

	var wg sync.WaitGroup
	for i, date := range dates {
		base := a.rules.BaseFarePerPerson(date, q.Passengers)
		results[i].day = models.CalendarDay{Date: timeutil.FormatDate(date), BaseFare: base}

		if date.Before(cutoff) {
			continue
		}

		// Slots are taken here, in date order, so earlier days go first.
		if err := a.gate.Acquire(ctx); err != nil {
			for j := i; j < len(dates); j++ {
				results[j].day = models.CalendarDay{
					Date:     timeutil.FormatDate(dates[j]),
					BaseFare: a.rules.BaseFarePerPerson(dates[j], q.Passengers),
				}
				results[j].err = err
			}
			break
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer a.gate.Release()
			results[i] = a.day(ctx, q, results[i].day)
		}(i)
	}
	wg.Wait()

	payload := &models.CalendarMonthPayload{
		Origin: q.Origin,
		Pax:    q.Passengers,
		Year:   q.Year,
		Month:  q.Month,
		Days:   make([]models.CalendarDay, len(dates)),
	}
	diag := &models.CalendarDiagnostics{}

	for i, r := range results {
		payload.Days[i] = r.day
		switch {
		case dates[i].Before(cutoff):
			diag.DaysSkipped++
		case r.err != nil:
			diag.DaysFailed++
			if diag.Errors == nil {
				diag.Errors = make(map[string]string)
			}
			diag.Errors[r.day.Date] = r.err.Error()
		case r.fromCache:
			diag.DaysFromCache++
		default:
			diag.DaysComputed++
			if diag.FirstSearch == nil {
				diag.FirstSearch = r.search
			}
		}
	}

	if diag.DaysFailed == 0 {
		if err := cache.SetJSON(ctx, a.store, monthKey, payload, a.config.MonthTTL); err != nil {
			slog.Warn("month cache write failed", "key", monthKey, "error", err)
		}
	} else {
		slog.Warn("calendar month incomplete",
			"origin", q.Origin, "pax", q.Passengers, "year", q.Year, "month", q.Month, "failed_days", diag.DaysFailed)
	}

	if q.Debug {
		payload.Diag = diag
	}
	return payload, nil
}

// day resolves one departure date from cache or upstream. The returned entry
// is unavailable when err is set.
func (a *Aggregator) day(ctx context.Context, q models.CalendarQuery, pending models.CalendarDay) dayResult {
	key := cache.DayKey(q.Origin, q.Passengers, pending.Date)

	if !q.NoCache {
		var cached models.CalendarDay
		hit, err := cache.GetJSON(ctx, a.store, key, &cached)
		if err != nil {
			slog.Warn("day cache read failed", "key", key, "error", err)
		}
		if hit {
			a.storeDay(ctx, key, cached)
			return dayResult{day: cached, fromCache: true}
		}
	}

	// The shared call outlives any single caller: it runs detached from the
	// first caller's cancellation and each caller stops waiting on its own ctx.
	ch := a.flights.DoChan(key, func() (interface{}, error) {
		shared := context.WithoutCancel(ctx)
		r, err := a.compute(shared, q, pending)
		if err == nil {
			a.storeDay(shared, key, r.day)
		}
		return r, err
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		res.Err = ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		slog.Warn("calendar day failed", "origin", q.Origin, "date", pending.Date, "error", res.Err)
		return dayResult{day: pending, err: res.Err}
	}
	return res.Val.(dayResult)
}

func (a *Aggregator) compute(ctx context.Context, q models.CalendarQuery, pending models.CalendarDay) (dayResult, error) {
	ret, err := timeutil.AddDays(pending.Date, a.config.TripLength-1)
	if err != nil {
		return dayResult{}, err
	}

	res, err := a.searcher.Search(ctx, models.SearchQuery{
		Origin:        q.Origin,
		DepartureDate: pending.Date,
		ReturnDate:    ret,
		Passengers:    q.Passengers,
		Limit:         1,
	})
	if err != nil {
		return dayResult{}, err
	}
	if res.Diagnostics.AllFailed() {
		return dayResult{}, fmt.Errorf("%w: %s", ErrAllDestinationsFailed, firstError(res.Diagnostics))
	}

	day := pending
	if flight, ok := ranking.Cheapest(res.Options); ok {
		price := day.BaseFare + flight
		day.Show = true
		day.PriceFrom = &price
	}

	diag := res.Diagnostics
	return dayResult{day: day, search: &diag}, nil
}

func (a *Aggregator) storeDay(ctx context.Context, key string, day models.CalendarDay) {
	if err := cache.SetJSON(ctx, a.store, key, day, a.config.DayTTL); err != nil {
		slog.Warn("day cache write failed", "key", key, "error", err)
	}
}

func firstError(d models.SearchDiagnostics) string {
	dests := make([]string, 0, len(d.Destinations))
	for dest := range d.Destinations {
		dests = append(dests, dest)
	}
	sort.Strings(dests)
	for _, dest := range dests {
		if msg := d.Destinations[dest].Error; msg != "" {
			return dest + ": " + msg
		}
	}
	return ""
}

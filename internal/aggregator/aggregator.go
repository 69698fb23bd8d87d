package aggregator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dharmasatrya/tripfares/internal/filter"
	"github.com/dharmasatrya/tripfares/internal/models"
	"github.com/dharmasatrya/tripfares/internal/normalizer"
	"github.com/dharmasatrya/tripfares/internal/providers"
	"github.com/dharmasatrya/tripfares/internal/ranking"
	"github.com/dharmasatrya/tripfares/internal/ratelimit"
)

type Config struct {
	Destinations []string
	CabinClass   string
	// Timeout bounds each destination call, retries included.
	Timeout     time.Duration
	MaxRetries  int
	RetryDelays []time.Duration
	RateLimiter *ratelimit.ProviderLimiter
	Rules       filter.Rules
}

func DefaultConfig() Config {
	return Config{
		Destinations: []string{"ICN", "GMP"},
		CabinClass:   "economy",
		Timeout:      45 * time.Second,
		RetryDelays:  []time.Duration{500 * time.Millisecond, time.Second},
		Rules:        filter.DefaultRules(),
	}
}

// Aggregator queries one upstream for every destination in parallel and
// merges the answers into a single ranked list.
type Aggregator struct {
	provider   providers.Provider
	normalizer *normalizer.Normalizer
	config     Config
}

type Result struct {
	Options     []models.FlightOption
	Diagnostics models.SearchDiagnostics
}

func NewAggregator(provider providers.Provider, norm *normalizer.Normalizer, config Config) *Aggregator {
	if norm == nil {
		norm = normalizer.New()
	}
	if len(config.Destinations) == 0 {
		config.Destinations = DefaultConfig().Destinations
	}
	if config.CabinClass == "" {
		config.CabinClass = DefaultConfig().CabinClass
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.MaxRetries > 0 && len(config.RetryDelays) == 0 {
		config.RetryDelays = DefaultConfig().RetryDelays
	}
	if config.Rules == (filter.Rules{}) {
		config.Rules = filter.DefaultRules()
	}
	return &Aggregator{
		provider:   provider,
		normalizer: norm,
		config:     config,
	}
}

func (a *Aggregator) Destinations() []string {
	return append([]string(nil), a.config.Destinations...)
}

func (a *Aggregator) Search(ctx context.Context, q models.SearchQuery) (*Result, error) {
	return a.SearchDestinations(ctx, q, a.config.Destinations)
}

// SearchDestinations validates q and searches the given destinations. Only a
// validation failure is returned as an error; upstream failures are recorded
// per destination in the diagnostics.
func (a *Aggregator) SearchDestinations(ctx context.Context, q models.SearchQuery, destinations []string) (*Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	type destinationResult struct {
		offers   []providers.Offer
		err      error
		duration time.Duration
	}

	results := make([]destinationResult, len(destinations))
	var wg sync.WaitGroup

	for i, dest := range destinations {
		wg.Add(1)
		go func(i int, dest string) {
			defer wg.Done()
			start := time.Now()

			callCtx, cancel := context.WithTimeout(ctx, a.config.Timeout)
			defer cancel()

			req := providers.SearchRequest{
				Origin:        q.Origin,
				Destination:   dest,
				DepartureDate: q.DepartureDate,
				ReturnDate:    q.ReturnDate,
				Passengers:    q.Passengers,
				CabinClass:    a.config.CabinClass,
			}

			var offers []providers.Offer
			err := a.config.RateLimiter.Wait(callCtx, a.provider.Name())
			if err == nil {
				offers, err = a.searchWithRetry(callCtx, req)
			}
			if err != nil {
				err = providers.NewProviderError(a.provider.Name(), err)
			}
			results[i] = destinationResult{offers: offers, err: err, duration: time.Since(start)}
		}(i, dest)
	}
	wg.Wait()

	diag := models.SearchDiagnostics{Destinations: make(map[string]models.DestinationDiag, len(destinations))}
	var options []models.FlightOption

	// Merge in destination order so ties keep a stable discovery order.
	for i, dest := range destinations {
		r := results[i]
		entry := models.DestinationDiag{DurationMs: r.duration.Milliseconds()}
		if r.err != nil {
			slog.Warn("destination search failed",
				"origin", q.Origin, "destination", dest, "dep", q.DepartureDate, "error", r.err)
			entry.Error = r.err.Error()
			diag.Destinations[dest] = entry
			continue
		}

		diag.RawOffers += len(r.offers)
		for _, offer := range r.offers {
			opt, ok := a.normalizer.Normalize(offer, q.Passengers)
			if !ok {
				diag.Dropped++
				continue
			}
			if opt.Destination == "" {
				opt.Destination = dest
			}
			options = append(options, opt)
			entry.Count++
		}
		diag.Destinations[dest] = entry
	}

	kept, rejected := filter.Apply(options, a.config.Rules)
	diag.Rejected = rejected

	ranked, dups := ranking.Rank(kept, q.Limit)
	diag.Duplicates = dups

	return &Result{Options: ranked, Diagnostics: diag}, nil
}

func (a *Aggregator) searchWithRetry(ctx context.Context, req providers.SearchRequest) ([]providers.Offer, error) {
	var lastErr error

	for attempt := 0; attempt <= a.config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if attempt > 0 && len(a.config.RetryDelays) > 0 {
			delayIdx := attempt - 1
			if delayIdx >= len(a.config.RetryDelays) {
				delayIdx = len(a.config.RetryDelays) - 1
			}
			delay := a.config.RetryDelays[delayIdx]

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		offers, err := a.provider.Search(ctx, req)
		if err == nil {
			return offers, nil
		}

		lastErr = err
		slog.Debug("upstream attempt failed",
			"provider", a.provider.Name(), "destination", req.Destination, "attempt", attempt+1, "error", err)
	}

	return nil, lastErr
}

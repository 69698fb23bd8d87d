// Package app assembles the service components from configuration.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dharmasatrya/tripfares/internal/aggregator"
	"github.com/dharmasatrya/tripfares/internal/cache"
	"github.com/dharmasatrya/tripfares/internal/calendar"
	"github.com/dharmasatrya/tripfares/internal/config"
	"github.com/dharmasatrya/tripfares/internal/filter"
	"github.com/dharmasatrya/tripfares/internal/normalizer"
	"github.com/dharmasatrya/tripfares/internal/prewarm"
	"github.com/dharmasatrya/tripfares/internal/pricing"
	"github.com/dharmasatrya/tripfares/internal/providers"
	"github.com/dharmasatrya/tripfares/internal/queue"
	"github.com/dharmasatrya/tripfares/internal/ratelimit"
)

type Options struct {
	// DisableCache swaps the configured store for a no-op one.
	DisableCache bool
}

type App struct {
	Config     *config.Config
	Provider   providers.Provider
	Store      cache.Store
	Rules      pricing.Rules
	Extras     pricing.Extras
	Search     *aggregator.Aggregator
	Calendar   *calendar.Aggregator
	Warmer     *prewarm.Warmer
	Dispatcher prewarm.Dispatcher
}

func New(cfg *config.Config, opts Options) (*App, error) {
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}

	store, err := newStore(cfg, opts)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.NewProviderLimiter(ratelimit.RateLimitConfig{
		RequestsPerSecond: cfg.Search.RateRPS,
		BurstSize:         cfg.Search.RateBurst,
	})

	norm := &normalizer.Normalizer{
		DefaultBaggageIncluded: cfg.Rules.DefaultBaggageIncluded,
		DefaultCabin:           normalizer.DefaultCabin,
	}

	search := aggregator.NewAggregator(provider, norm, aggregator.Config{
		Destinations: cfg.Search.Destinations,
		CabinClass:   cfg.Search.CabinClass,
		Timeout:      cfg.Search.Timeout,
		MaxRetries:   cfg.Search.MaxRetries,
		RetryDelays:  cfg.Search.RetryDelays,
		RateLimiter:  limiter,
		Rules: filter.Rules{
			MaxStopsPerSlice:     cfg.Rules.MaxStops,
			MaxConnectionMinutes: cfg.Rules.MaxConnectionMinutes,
			MaxSliceMinutes:      cfg.Rules.MaxSliceMinutes,
			RequireBaggage:       cfg.Rules.RequireBaggage,
		},
	})

	rules := pricing.DefaultRules()
	cal := calendar.NewAggregator(search, store, rules, calendar.Config{
		TripLength:   cfg.Calendar.TripLength,
		LeadTimeDays: cfg.Calendar.LeadTimeDays,
		Concurrency:  cfg.Calendar.Concurrency,
		DayTTL:       cfg.Calendar.DayTTL,
		MonthTTL:     cfg.Calendar.MonthTTL,
	})

	a := &App{
		Config:   cfg,
		Provider: provider,
		Store:    store,
		Rules:    rules,
		Extras:   pricing.DefaultExtras(),
		Search:   search,
		Calendar: cal,
		Warmer:   prewarm.NewWarmer(cal, cfg.Prewarm.Concurrency),
	}
	if cfg.Prewarm.QueueEnabled {
		a.Dispatcher = queue.NewPublisher(cfg.Prewarm.AMQPURL, cfg.Prewarm.Queue)
	}
	return a, nil
}

// Consumer returns the background prewarm worker bound to this app.
func (a *App) Consumer() *queue.Consumer {
	return queue.NewConsumer(a.Config.Prewarm.AMQPURL, a.Config.Prewarm.Queue, a.Config.Prewarm.Prefetch, queue.WarmHandler(a.Warmer))
}

func (a *App) Close() error {
	return a.Store.Close()
}

func newProvider(cfg *config.Config) (providers.Provider, error) {
	if cfg.UsesStaticProvider() {
		slog.Warn("no upstream API key configured, serving fixture offers")
		return providers.NewStaticProvider(cfg.Duffel.StaticLatency)
	}
	return providers.NewDuffelProvider(providers.DuffelConfig{
		BaseURL:     cfg.Duffel.BaseURL,
		APIKey:      cfg.Duffel.APIKey,
		Version:     cfg.Duffel.Version,
		Timeout:     cfg.Duffel.Timeout,
		OffersLimit: cfg.Duffel.OffersLimit,
	})
}

func newStore(cfg *config.Config, opts Options) (cache.Store, error) {
	if opts.DisableCache {
		return cache.NewNoOpStore(), nil
	}
	if !cfg.Redis.Enabled {
		slog.Info("redis disabled, using in-process cache")
		return cache.NewMemoryStore(), nil
	}

	store, err := cache.NewRedisStore(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to redis %s:%s: %w", cfg.Redis.Host, cfg.Redis.Port, err)
	}
	slog.Info("redis cache enabled", "addr", cfg.Redis.Host+":"+cfg.Redis.Port)
	return store, nil
}

// SetupLogger installs the process-wide slog logger.
func SetupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(os.Stderr, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

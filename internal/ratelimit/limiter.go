package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// ProviderLimiter keeps one token bucket per upstream name so bursts of
// calendar and search traffic stay under the upstream's request rate.
type ProviderLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	defaults RateLimitConfig
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 5,
		BurstSize:         10,
	}
}

func NewProviderLimiter(config RateLimitConfig) *ProviderLimiter {
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = DefaultConfig().RequestsPerSecond
	}
	if config.BurstSize <= 0 {
		config.BurstSize = DefaultConfig().BurstSize
	}
	return &ProviderLimiter{
		limiters: make(map[string]*rate.Limiter),
		defaults: config,
	}
}

func (p *ProviderLimiter) GetLimiter(provider string) *rate.Limiter {
	p.mu.RLock()
	limiter, exists := p.limiters[provider]
	p.mu.RUnlock()

	if exists {
		return limiter
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if limiter, exists = p.limiters[provider]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(p.defaults.RequestsPerSecond), p.defaults.BurstSize)
	p.limiters[provider] = limiter
	return limiter
}

// Wait blocks until the provider's bucket has a token or ctx is done. A nil
// limiter never blocks.
func (p *ProviderLimiter) Wait(ctx context.Context, provider string) error {
	if p == nil {
		return nil
	}
	return p.GetLimiter(provider).Wait(ctx)
}

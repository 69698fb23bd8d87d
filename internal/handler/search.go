package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/tripfares/internal/aggregator"
	"github.com/dharmasatrya/tripfares/internal/cache"
	"github.com/dharmasatrya/tripfares/internal/models"
)

const (
	errNoOptions           = "no_options"
	errUpstreamUnavailable = "upstream_unavailable"
)

type FlightSearcher interface {
	Search(ctx context.Context, q models.SearchQuery) (*aggregator.Result, error)
}

type SearchHandler struct {
	searcher     FlightSearcher
	store        cache.Store
	ttl          time.Duration
	defaultLimit int
	maxLimit     int
}

func NewSearchHandler(searcher FlightSearcher, store cache.Store, ttl time.Duration) *SearchHandler {
	if store == nil {
		store = cache.NewNoOpStore()
	}
	return &SearchHandler{
		searcher: searcher,
		store:    store,
		ttl:      ttl,
	}
}

// WithLimits overrides the default and maximum result limits. Values are
// still capped by models.MaxSearchLimit.
func (h *SearchHandler) WithLimits(defaultLimit, maxLimit int) *SearchHandler {
	h.defaultLimit = defaultLimit
	h.maxLimit = maxLimit
	return h
}

type cachedSearch struct {
	Options []models.FlightOption    `json:"options"`
	Diag    models.SearchDiagnostics `json:"diag"`
}

// FlightOptions lists the cheapest acceptable round trips for one departure
// date across all destinations.
func (h *SearchHandler) FlightOptions(c echo.Context) error {
	ctx := c.Request().Context()

	var q models.SearchQuery
	if err := c.Bind(&q); err != nil {
		return badRequest(c, "invalid_request", "Failed to parse query: "+err.Error())
	}
	if q.DepartureDate == "" {
		q.DepartureDate = c.QueryParam("departure")
	}
	if q.Limit <= 0 && h.defaultLimit > 0 {
		q.Limit = h.defaultLimit
	}
	if h.maxLimit > 0 && q.Limit > h.maxLimit {
		q.Limit = h.maxLimit
	}
	if err := q.Validate(); err != nil {
		return badRequest(c, "validation_error", err.Error())
	}

	key := cache.SearchKey(q)
	if !q.NoCache {
		var cached cachedSearch
		hit, err := cache.GetJSON(ctx, h.store, key, &cached)
		if err != nil {
			slog.Warn("search cache read failed", "key", key, "error", err)
		}
		if hit {
			cached.Diag.CacheHit = true
			return c.JSON(http.StatusOK, optionsResponse(cached.Options, cached.Diag, q.Debug))
		}
	}

	result, err := h.searcher.Search(ctx, q)
	if err != nil {
		return err
	}

	if len(result.Options) == 0 {
		status, code := http.StatusOK, errNoOptions
		if result.Diagnostics.AllFailed() {
			status, code = http.StatusBadGateway, errUpstreamUnavailable
		}
		diag := result.Diagnostics
		return c.JSON(status, models.FlightOptionsResponse{
			OK:      false,
			Options: []models.FlightOption{},
			Err:     code,
			Diag:    &diag,
		})
	}

	if h.ttl > 0 {
		if err := cache.SetJSON(ctx, h.store, key, cachedSearch{Options: result.Options, Diag: result.Diagnostics}, h.ttl); err != nil {
			slog.Warn("search cache write failed", "key", key, "error", err)
		}
	}

	return c.JSON(http.StatusOK, optionsResponse(result.Options, result.Diagnostics, q.Debug))
}

func optionsResponse(opts []models.FlightOption, diag models.SearchDiagnostics, debug bool) models.FlightOptionsResponse {
	resp := models.FlightOptionsResponse{OK: true, Options: opts}
	if debug {
		resp.Diag = &diag
	}
	return resp
}

func badRequest(c echo.Context, code, message string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   code,
		Message: message,
		Code:    http.StatusBadRequest,
	})
}

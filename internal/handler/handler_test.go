package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/tripfares/internal/aggregator"
	"github.com/dharmasatrya/tripfares/internal/cache"
	"github.com/dharmasatrya/tripfares/internal/models"
	"github.com/dharmasatrya/tripfares/internal/prewarm"
	"github.com/dharmasatrya/tripfares/internal/pricing"
)

type fakeSearcher struct {
	calls  int
	last   models.SearchQuery
	result *aggregator.Result
	err    error
}

func (f *fakeSearcher) Search(ctx context.Context, q models.SearchQuery) (*aggregator.Result, error) {
	f.calls++
	if err := q.Validate(); err != nil {
		return nil, err
	}
	f.last = q
	return f.result, f.err
}

type fakeCalendar struct {
	last models.CalendarQuery
	err  error
}

func (f *fakeCalendar) AggregateMonth(ctx context.Context, q models.CalendarQuery) (*models.CalendarMonthPayload, error) {
	f.last = q
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return &models.CalendarMonthPayload{Origin: q.Origin, Pax: q.Passengers, Year: q.Year, Month: q.Month}, nil
}

type fakeRunner struct{ jobs []prewarm.Job }

func (f *fakeRunner) Run(ctx context.Context, jobs []prewarm.Job) prewarm.Summary {
	f.jobs = jobs
	return prewarm.Summary{TotalJobs: len(jobs), OK: len(jobs)}
}

type fakeDispatcher struct {
	mu      sync.Mutex
	batches map[string][]prewarm.Job
	err     error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, batchID string, jobs []prewarm.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.batches == nil {
		f.batches = map[string][]prewarm.Job{}
	}
	f.batches[batchID] = jobs
	return nil
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	return e
}

func do(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func okResult() *aggregator.Result {
	return &aggregator.Result{
		Options: []models.FlightOption{{ID: "a", TotalAmountPerPerson: 600}, {ID: "b", TotalAmountPerPerson: 700}},
		Diagnostics: models.SearchDiagnostics{Destinations: map[string]models.DestinationDiag{
			"ICN": {Count: 1}, "GMP": {Count: 1},
		}},
	}
}

func TestFlightOptions(t *testing.T) {
	s := &fakeSearcher{result: okResult()}
	e := newEcho()
	e.GET("/flight-options", NewSearchHandler(s, cache.NewMemoryStore(), time.Minute).FlightOptions)

	rec := do(e, "/flight-options?origin=bcn&departure=2025-11-10&ret=2025-11-19&pax=2&limit=3")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.FlightOptionsResponse
	decode(t, rec, &resp)
	assert.True(t, resp.OK)
	assert.Len(t, resp.Options, 2)
	assert.Nil(t, resp.Diag)
	assert.Equal(t, "2025-11-10", s.last.DepartureDate)
	assert.Equal(t, 3, s.last.Limit)

	// Served from cache the second time.
	rec = do(e, "/flight-options?origin=BCN&dep=2025-11-10&ret=2025-11-19&pax=2&limit=3&debug=1")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &resp)
	assert.Equal(t, 1, s.calls)
	require.NotNil(t, resp.Diag)
	assert.True(t, resp.Diag.CacheHit)

	rec = do(e, "/flight-options?origin=BCN&dep=2025-11-10&ret=2025-11-19&pax=2&limit=3&nocache=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, s.calls)
}

func TestFlightOptionsMissingParams(t *testing.T) {
	s := &fakeSearcher{result: okResult()}
	e := newEcho()
	e.GET("/flight-options", NewSearchHandler(s, nil, 0).FlightOptions)

	rec := do(e, "/flight-options?origin=BCN&ret=2025-11-19")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.ErrorResponse
	decode(t, rec, &resp)
	assert.Equal(t, "validation_error", resp.Error)
	assert.Equal(t, models.ErrMissingDepartureDate.Error(), resp.Message)
	assert.Equal(t, 0, s.calls)

	rec = do(e, "/flight-options?origin=BCN&dep=2025-11-10&ret=2025-11-19&pax=many")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFlightOptionsNoOptions(t *testing.T) {
	s := &fakeSearcher{result: &aggregator.Result{Diagnostics: models.SearchDiagnostics{
		Destinations: map[string]models.DestinationDiag{"ICN": {Error: "timeout"}, "GMP": {Count: 0}},
	}}}
	e := newEcho()
	e.GET("/flight-options", NewSearchHandler(s, nil, time.Minute).FlightOptions)

	rec := do(e, "/flight-options?origin=BCN&dep=2025-11-10&ret=2025-11-19")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.FlightOptionsResponse
	decode(t, rec, &resp)
	assert.False(t, resp.OK)
	assert.Equal(t, "no_options", resp.Err)
	require.NotNil(t, resp.Diag)
	assert.Equal(t, "timeout", resp.Diag.Destinations["ICN"].Error)
}

func TestFlightOptionsAllFailed(t *testing.T) {
	s := &fakeSearcher{result: &aggregator.Result{Diagnostics: models.SearchDiagnostics{
		Destinations: map[string]models.DestinationDiag{"ICN": {Error: "timeout"}, "GMP": {Error: "upstream status 500"}},
	}}}
	e := newEcho()
	e.GET("/flight-options", NewSearchHandler(s, nil, time.Minute).FlightOptions)

	rec := do(e, "/flight-options?origin=BCN&dep=2025-11-10&ret=2025-11-19")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var resp models.FlightOptionsResponse
	decode(t, rec, &resp)
	assert.Equal(t, "upstream_unavailable", resp.Err)
}

func TestFlightOptionsInternalError(t *testing.T) {
	s := &fakeSearcher{err: errors.New("secret detail")}
	e := newEcho()
	e.GET("/flight-options", NewSearchHandler(s, nil, 0).FlightOptions)

	rec := do(e, "/flight-options?origin=BCN&dep=2025-11-10&ret=2025-11-19")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp models.ErrorResponse
	decode(t, rec, &resp)
	assert.Equal(t, "internal_error", resp.Error)
	assert.NotContains(t, rec.Body.String(), "secret detail")
}

func TestCalendarPrices(t *testing.T) {
	cal := &fakeCalendar{}
	e := newEcho()
	e.GET("/calendar-prices", NewCalendarHandler(cal, "BCN", 2).CalendarPrices)

	rec := do(e, "/calendar-prices?year=2025&month=10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var payload models.CalendarMonthPayload
	decode(t, rec, &payload)
	assert.Equal(t, "BCN", payload.Origin)
	assert.Equal(t, 2, payload.Pax)
	assert.Equal(t, 10, payload.Month)

	rec = do(e, "/calendar-prices?origin=mad&pax=4&year=2025&month=12&debug=1&nocache=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, cal.last.Debug)
	assert.True(t, cal.last.NoCache)
	assert.Equal(t, 4, cal.last.Passengers)
}

func TestCalendarPricesValidation(t *testing.T) {
	e := newEcho()
	e.GET("/calendar-prices", NewCalendarHandler(&fakeCalendar{}, "BCN", 2).CalendarPrices)

	tests := []struct {
		name   string
		target string
	}{
		{"missing month", "/calendar-prices?year=2025"},
		{"missing year", "/calendar-prices?month=3"},
		{"month zero-based", "/calendar-prices?year=2025&month=0"},
		{"month too large", "/calendar-prices?year=2025&month=13"},
		{"not a number", "/calendar-prices?year=2025&month=oct"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, do(e, tt.target).Code)
		})
	}
}

func TestPrewarmSync(t *testing.T) {
	runner := &fakeRunner{}
	h := NewPrewarmHandler(runner, nil, []string{"BCN", "MAD"}, 2)
	h.now = func() time.Time { return time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC) }
	e := newEcho()
	e.GET("/prewarm", h.Prewarm)

	rec := do(e, "/prewarm?pax=1-3")
	require.Equal(t, http.StatusOK, rec.Code)

	var s prewarm.Summary
	decode(t, rec, &s)
	assert.Equal(t, 12, s.TotalJobs)
	assert.Equal(t, prewarm.Job{Origin: "BCN", Pax: 1, Year: 2025, Month: 9}, runner.jobs[0])

	rec = do(e, "/prewarm?origins=LPA&months=1,2&year=2026")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []prewarm.Job{
		{Origin: "LPA", Pax: 2, Year: 2026, Month: 1},
		{Origin: "LPA", Pax: 2, Year: 2026, Month: 2},
	}, runner.jobs)

	assert.Equal(t, http.StatusBadRequest, do(e, "/prewarm?pax=9").Code)

	rec = do(e, "/prewarm?origins=BCN,MAD,VLC,AGP,LPA&pax=1-6&months_ahead=2000000")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, runner.jobs, 5*6*prewarm.MaxMonthsAhead)

	runner.jobs = nil
	rec = do(e, "/prewarm?origins=BCN,MAD,VLC,AGP,LPA,SVQ&pax=1-6&months_ahead=12")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, runner.jobs)
}

func TestPrewarmAsync(t *testing.T) {
	d := &fakeDispatcher{}
	e := newEcho()
	e.GET("/prewarm", NewPrewarmHandler(&fakeRunner{}, d, nil, 3).Prewarm)

	rec := do(e, "/prewarm?origins=BCN&async=1")
	require.Equal(t, http.StatusAccepted, rec.Code)

	var accepted PrewarmAccepted
	decode(t, rec, &accepted)
	assert.Equal(t, 3, accepted.Jobs)
	assert.Len(t, d.batches[accepted.BatchID], 3)

	d.err = errors.New("broker down")
	assert.Equal(t, http.StatusBadGateway, do(e, "/prewarm?origins=BCN&async=true").Code)

	e2 := newEcho()
	e2.GET("/prewarm", NewPrewarmHandler(&fakeRunner{}, nil, nil, 3).Prewarm)
	assert.Equal(t, http.StatusBadRequest, do(e2, "/prewarm?async=1").Code)
}

func TestQuote(t *testing.T) {
	e := newEcho()
	e.GET("/quote", NewQuoteHandler(pricing.DefaultRules(), pricing.DefaultExtras()).Quote)

	rec := do(e, "/quote?date=2025-10-15&pax=3&flight=500&lux=1&insurance=true&singles=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var q QuoteResponse
	decode(t, rec, &q)
	assert.Equal(t, pricing.SeasonHigh, q.Season)
	assert.Equal(t, 1245, q.BaseFarePerPerson)
	assert.Equal(t, 1245+500+400+100, q.PerPerson)
	assert.Equal(t, 2, q.SingleRooms)
	assert.Equal(t, 2245*3+560, q.Total)
	assert.Equal(t, "7.295 €", q.TotalLabel)

	assert.Equal(t, http.StatusBadRequest, do(e, "/quote?date=15/10/2025").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, "/quote?date=2025-10-15&pax=7").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, "/quote?date=2025-10-15&pax=2&singles=3").Code)
}

func TestHealthAndEnv(t *testing.T) {
	e := newEcho()
	e.GET("/health", HealthHandler)
	e.GET("/_env", EnvHandler(func() map[string]interface{} {
		return map[string]interface{}{"duffel_api_key_masked": "duffel…abcd"}
	}))

	rec := do(e, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(e, "/_env")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "duffel")
}

func TestErrorHandlerNotFound(t *testing.T) {
	e := newEcho()
	rec := do(e, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp models.ErrorResponse
	decode(t, rec, &resp)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestFlightOptionsLimits(t *testing.T) {
	s := &fakeSearcher{result: okResult()}
	e := newEcho()
	e.GET("/flight-options", NewSearchHandler(s, nil, 0).WithLimits(5, 10).FlightOptions)

	require.Equal(t, http.StatusOK, do(e, "/flight-options?origin=BCN&dep=2025-11-10&ret=2025-11-19").Code)
	assert.Equal(t, 5, s.last.Limit)

	require.Equal(t, http.StatusOK, do(e, "/flight-options?origin=BCN&dep=2025-11-10&ret=2025-11-19&limit=40").Code)
	assert.Equal(t, 10, s.last.Limit)
}

func TestRegisterMountsApiAlias(t *testing.T) {
	e := newEcho()
	Handlers{
		Search:   NewSearchHandler(&fakeSearcher{result: okResult()}, nil, 0),
		Calendar: NewCalendarHandler(&fakeCalendar{}, "BCN", 2),
		Prewarm:  NewPrewarmHandler(&fakeRunner{}, nil, nil, 1),
		Quote:    NewQuoteHandler(pricing.DefaultRules(), pricing.DefaultExtras()),
	}.Register(e)

	for _, path := range []string{"/calendar-prices?year=2026&month=2", "/api/calendar-prices?year=2026&month=2", "/api/quote?date=2026-02-02", "/health"} {
		assert.Equal(t, http.StatusOK, do(e, path).Code, path)
	}
	assert.Equal(t, http.StatusNotFound, do(e, "/api/_env").Code)
}

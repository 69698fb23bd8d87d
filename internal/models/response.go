package models

// DestinationDiag is the outcome of one destination query: a result count
// or an error message.
type DestinationDiag struct {
	Count      int    `json:"count"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

type SearchDiagnostics struct {
	Destinations map[string]DestinationDiag `json:"destinations"`
	RawOffers    int                        `json:"raw_offers"`
	Dropped      int                        `json:"dropped"`
	Rejected     int                        `json:"rejected"`
	Duplicates   int                        `json:"duplicates"`
	CacheHit     bool                       `json:"cache_hit,omitempty"`
}

// Succeeded counts destinations that answered without error.
func (d SearchDiagnostics) Succeeded() int {
	n := 0
	for _, dd := range d.Destinations {
		if dd.Error == "" {
			n++
		}
	}
	return n
}

// AllFailed is true when every queried destination errored.
func (d SearchDiagnostics) AllFailed() bool {
	return len(d.Destinations) > 0 && d.Succeeded() == 0
}

type FlightOptionsResponse struct {
	OK      bool               `json:"ok"`
	Options []FlightOption     `json:"options"`
	Err     string             `json:"err,omitempty"`
	Diag    *SearchDiagnostics `json:"diag,omitempty"`
}

type CalendarDay struct {
	Date      string `json:"date"`
	Show      bool   `json:"show"`
	PriceFrom *int   `json:"priceFrom"`
	BaseFare  int    `json:"baseFare"`
}

type CalendarDiagnostics struct {
	MonthCacheHit bool               `json:"month_cache_hit"`
	DaysFromCache int                `json:"days_from_cache"`
	DaysComputed  int                `json:"days_computed"`
	DaysFailed    int                `json:"days_failed"`
	DaysSkipped   int                `json:"days_skipped"`
	Errors        map[string]string  `json:"errors,omitempty"`
	FirstSearch   *SearchDiagnostics `json:"first_search,omitempty"`
}

// CalendarMonthPayload covers one calendar month; Month is 1-based.
type CalendarMonthPayload struct {
	Origin string               `json:"origin"`
	Pax    int                  `json:"pax"`
	Year   int                  `json:"year"`
	Month  int                  `json:"month"`
	Days   []CalendarDay        `json:"days"`
	Diag   *CalendarDiagnostics `json:"diag,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

package models

import (
	"strings"

	"github.com/dharmasatrya/tripfares/internal/timeutil"
)

const (
	MinPassengers = 1
	MaxPassengers = 6

	DefaultSearchLimit = 20
	MaxSearchLimit     = 50
)

type SearchQuery struct {
	Origin        string `query:"origin" json:"origin"`
	DepartureDate string `query:"dep" json:"dep"`
	ReturnDate    string `query:"ret" json:"ret"`
	Passengers    int    `query:"pax" json:"pax"`
	Limit         int    `query:"limit" json:"limit"`
	Debug         bool   `query:"debug" json:"-"`
	NoCache       bool   `query:"nocache" json:"-"`
}

func (q *SearchQuery) Validate() error {
	q.Origin = strings.ToUpper(strings.TrimSpace(q.Origin))
	if q.Origin == "" {
		return ErrMissingOrigin
	}
	if q.DepartureDate == "" {
		return ErrMissingDepartureDate
	}
	if q.ReturnDate == "" {
		return ErrMissingReturnDate
	}

	dep, err := timeutil.ParseDate(q.DepartureDate)
	if err != nil {
		return ErrInvalidDepartureDate
	}
	ret, err := timeutil.ParseDate(q.ReturnDate)
	if err != nil {
		return ErrInvalidReturnDate
	}
	if !ret.After(dep) {
		return ErrReturnBeforeDeparture
	}

	if q.Passengers == 0 {
		q.Passengers = 1
	}
	if q.Passengers < MinPassengers || q.Passengers > MaxPassengers {
		return ErrInvalidPassengers
	}

	q.Limit = ClampLimit(q.Limit)
	return nil
}

// ClampLimit applies the default and maximum result limits.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		return MaxSearchLimit
	}
	return limit
}

// CalendarQuery selects a month; Month is 1-based (January = 1).
type CalendarQuery struct {
	Origin     string `query:"origin"`
	Passengers int    `query:"pax"`
	Year       int    `query:"year"`
	Month      int    `query:"month"`
	Debug      bool   `query:"debug"`
	NoCache    bool   `query:"nocache"`
}

func (q *CalendarQuery) Validate() error {
	q.Origin = strings.ToUpper(strings.TrimSpace(q.Origin))
	if q.Origin == "" {
		return ErrMissingOrigin
	}
	if q.Year == 0 || q.Month == 0 {
		return ErrMissingYearMonth
	}
	if q.Year < 2000 || q.Year > 2100 {
		return ErrInvalidYear
	}
	if q.Month < 1 || q.Month > 12 {
		return ErrInvalidMonth
	}
	if q.Passengers < MinPassengers || q.Passengers > MaxPassengers {
		return ErrInvalidPassengers
	}
	return nil
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingOrigin         ValidationError = "origin is required"
	ErrMissingDepartureDate  ValidationError = "dep is required"
	ErrMissingReturnDate     ValidationError = "ret is required"
	ErrInvalidDepartureDate  ValidationError = "dep must be a YYYY-MM-DD date"
	ErrInvalidReturnDate     ValidationError = "ret must be a YYYY-MM-DD date"
	ErrReturnBeforeDeparture ValidationError = "ret must be later than dep"
	ErrInvalidPassengers     ValidationError = "pax must be between 1 and 6"
	ErrMissingYearMonth      ValidationError = "year and month are required"
	ErrInvalidYear           ValidationError = "year is out of range"
	ErrInvalidMonth          ValidationError = "month must be between 1 and 12"
)

// Package prewarm recomputes calendar months ahead of user traffic so the
// cache is warm when people browse.
package prewarm

import (
	"strconv"
	"strings"
	"time"

	"github.com/dharmasatrya/tripfares/internal/models"
)

var DefaultOrigins = []string{"BCN", "MAD", "VLC", "AGP", "LPA"}

const (
	DefaultPax         = 2
	DefaultMonthsAhead = 3
	// MaxMonthsAhead bounds planning to one year, like explicit months.
	MaxMonthsAhead = 12
)

// Target is a calendar month; Month is 1-based.
type Target struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type Job struct {
	Origin string `json:"origin"`
	Pax    int    `json:"pax"`
	Year   int    `json:"year"`
	Month  int    `json:"month"`
}

func (j Job) Query() models.CalendarQuery {
	return models.CalendarQuery{
		Origin:     j.Origin,
		Passengers: j.Pax,
		Year:       j.Year,
		Month:      j.Month,
		Debug:      true,
		NoCache:    true,
	}
}

// Options are the raw operator inputs. Empty fields fall back to defaults.
type Options struct {
	Origins     string
	Pax         string
	Months      string
	MonthsAhead string
	Year        string
}

func ParseOrigins(input string) []string {
	if strings.TrimSpace(input) == "" {
		return append([]string(nil), DefaultOrigins...)
	}
	var out []string
	for _, s := range strings.Split(input, ",") {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ParsePax accepts a single count ("2"), a range ("1-6") or a list ("1,2,3").
// Range bounds are clamped to 1..6; list entries outside it are dropped.
func ParsePax(input string) []int {
	input = strings.TrimSpace(input)
	if input == "" {
		return []int{DefaultPax}
	}

	if from, to, ok := strings.Cut(input, "-"); ok {
		a := clampPax(atoiOr(from, models.MinPassengers))
		b := clampPax(atoiOr(to, models.MaxPassengers))
		if a > b {
			a, b = b, a
		}
		out := make([]int, 0, b-a+1)
		for i := a; i <= b; i++ {
			out = append(out, i)
		}
		return out
	}

	var out []int
	for _, s := range strings.Split(input, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err == nil && n >= models.MinPassengers && n <= models.MaxPassengers {
			out = append(out, n)
		}
	}
	return out
}

// ParseMonths reads a list of 1-based months ("9,10,11"), dropping anything
// outside 1..12.
func ParseMonths(input string) []int {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	var out []int
	for _, s := range strings.Split(input, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err == nil && n >= 1 && n <= 12 {
			out = append(out, n)
		}
	}
	return out
}

// NextMonths lists count months starting with the one after now's (UTC).
func NextMonths(now time.Time, count int) []Target {
	now = now.UTC()
	out := make([]Target, 0, count)
	for i := 1; i <= count; i++ {
		t := time.Date(now.Year(), now.Month()+time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		out = append(out, Target{Year: t.Year(), Month: int(t.Month())})
	}
	return out
}

// PlanTargets resolves which months to warm. Explicit months use year when
// given, otherwise their next occurrence after now; without explicit months
// the monthsAhead months after now are used, capped at MaxMonthsAhead.
func PlanTargets(now time.Time, months []int, monthsAhead, year int) []Target {
	if len(months) > 0 && year > 0 {
		out := make([]Target, len(months))
		for i, m := range months {
			out[i] = Target{Year: year, Month: m}
		}
		return out
	}

	if len(months) > 0 {
		wanted := make(map[int]bool, len(months))
		for _, m := range months {
			wanted[m] = true
		}
		var out []Target
		for _, t := range NextMonths(now, 12) {
			if wanted[t.Month] {
				out = append(out, t)
			}
		}
		return out
	}

	if monthsAhead < 1 {
		monthsAhead = 1
	}
	if monthsAhead > MaxMonthsAhead {
		monthsAhead = MaxMonthsAhead
	}
	return NextMonths(now, monthsAhead)
}

// Plan expands origins × pax × targets into jobs in that nesting order.
func Plan(origins []string, pax []int, targets []Target) []Job {
	jobs := make([]Job, 0, len(origins)*len(pax)*len(targets))
	for _, o := range origins {
		for _, p := range pax {
			for _, t := range targets {
				jobs = append(jobs, Job{Origin: o, Pax: p, Year: t.Year, Month: t.Month})
			}
		}
	}
	return jobs
}

func (o Options) Jobs(now time.Time) []Job {
	origins, pax, targets := o.resolve(now)
	return Plan(origins, pax, targets)
}

// Size is len(o.Jobs(now)) without building the jobs.
func (o Options) Size(now time.Time) int {
	origins, pax, targets := o.resolve(now)
	return len(origins) * len(pax) * len(targets)
}

func (o Options) resolve(now time.Time) ([]string, []int, []Target) {
	monthsAhead := atoiOr(o.MonthsAhead, DefaultMonthsAhead)
	year := atoiOr(o.Year, 0)
	targets := PlanTargets(now, ParseMonths(o.Months), monthsAhead, year)
	return ParseOrigins(o.Origins), ParsePax(o.Pax), targets
}

func clampPax(n int) int {
	if n < models.MinPassengers {
		return models.MinPassengers
	}
	if n > models.MaxPassengers {
		return models.MaxPassengers
	}
	return n
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

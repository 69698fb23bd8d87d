// Package pricing holds the land-package fare rules: which dates fall in high
// season and what each traveller pays for the base package.
package pricing

import (
	"time"

	"github.com/dharmasatrya/tripfares/internal/timeutil"
)

type Season string

const (
	SeasonHigh   Season = "high"
	SeasonNormal Season = "normal"
)

// SeasonWindow is an inclusive range of calendar dates.
type SeasonWindow struct {
	Start time.Time
	End   time.Time
}

func (w SeasonWindow) Contains(date time.Time) bool {
	d := timeutil.StartOfDay(date)
	return !d.Before(timeutil.StartOfDay(w.Start)) && !d.After(timeutil.StartOfDay(w.End))
}

// Window builds a SeasonWindow from two YYYY-MM-DD dates and panics on bad
// input; it is meant for static tables.
func Window(start, end string) SeasonWindow {
	s, err := timeutil.ParseDate(start)
	if err != nil {
		panic(err)
	}
	e, err := timeutil.ParseDate(end)
	if err != nil {
		panic(err)
	}
	return SeasonWindow{Start: s, End: e}
}

func DefaultHighSeason() []SeasonWindow {
	return []SeasonWindow{
		Window("2025-10-10", "2025-11-05"),
		Window("2025-12-23", "2026-01-01"),
		Window("2026-02-14", "2026-02-18"),
		Window("2026-03-25", "2026-04-15"),
		Window("2026-07-10", "2026-08-25"),
		Window("2026-09-23", "2026-09-27"),
		Window("2026-10-10", "2026-11-05"),
		Window("2026-12-23", "2027-01-01"),
	}
}

// SeasonOf reports SeasonHigh when date falls inside any high-season window.
func (r Rules) SeasonOf(date time.Time) Season {
	for _, w := range r.Windows {
		if w.Contains(date) {
			return SeasonHigh
		}
	}
	return SeasonNormal
}

package timeutil

import (
	"math"
	"regexp"
	"strconv"
	"time"
)

var isoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// ParseISODuration converts an ISO-8601 duration such as "PT13H5M" into
// minutes. Missing groups count as zero; seconds are truncated.
func ParseISODuration(s string) (int, bool) {
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "PT" {
		return 0, false
	}

	days := atoiOrZero(m[1])
	hours := atoiOrZero(m[2])
	mins := atoiOrZero(m[3])

	return days*24*60 + hours*60 + mins, true
}

// MinutesBetween returns the whole minutes from a to b, rounded, and never
// negative.
func MinutesBetween(a, b time.Time) int {
	d := b.Sub(a)
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Minutes()))
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

package timeutil

import (
	"strings"
	"sync"
	"time"

	// Airport zones must resolve on hosts without a system zoneinfo database.
	_ "time/tzdata"
)

var airportTimezones = map[string]string{
	// Spain
	"BCN": "Europe/Madrid", // Barcelona - El Prat
	"MAD": "Europe/Madrid", // Madrid - Barajas
	"VLC": "Europe/Madrid", // Valencia
	"AGP": "Europe/Madrid", // Malaga - Costa del Sol
	"SVQ": "Europe/Madrid", // Sevilla
	"BIO": "Europe/Madrid", // Bilbao
	"PMI": "Europe/Madrid", // Palma de Mallorca
	"LPA": "Atlantic/Canary",
	"TFN": "Atlantic/Canary",

	// South Korea
	"ICN": "Asia/Seoul", // Seoul - Incheon
	"GMP": "Asia/Seoul", // Seoul - Gimpo
	"PUS": "Asia/Seoul", // Busan - Gimhae
	"CJU": "Asia/Seoul", // Jeju

	// Usual connection hubs
	"DOH": "Asia/Qatar",
	"DXB": "Asia/Dubai",
	"AUH": "Asia/Dubai",
	"IST": "Europe/Istanbul",
	"FRA": "Europe/Berlin",
	"MUC": "Europe/Berlin",
	"CDG": "Europe/Paris",
	"AMS": "Europe/Amsterdam",
	"HEL": "Europe/Helsinki",
	"LHR": "Europe/London",
	"ZRH": "Europe/Zurich",
	"VIE": "Europe/Vienna",
	"FCO": "Europe/Rome",
	"WAW": "Europe/Warsaw",
	"ADD": "Africa/Addis_Ababa",
	"PEK": "Asia/Shanghai",
	"PVG": "Asia/Shanghai",
	"CAN": "Asia/Shanghai",
	"HKG": "Asia/Hong_Kong",
	"NRT": "Asia/Tokyo",
	"HND": "Asia/Tokyo",
	"SIN": "Asia/Singapore",
	"BKK": "Asia/Bangkok",
	"TAS": "Asia/Tashkent",
}

var (
	locMu    sync.RWMutex
	locCache = map[string]*time.Location{}
)

// GetTimezoneByAirport returns the IANA zone name for an airport, or "UTC"
// when the airport is not in the table.
func GetTimezoneByAirport(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if tz, ok := airportTimezones[code]; ok {
		return tz
	}
	return "UTC"
}

func GetLocationByAirport(code string) *time.Location {
	return GetLocationByName(GetTimezoneByAirport(code))
}

func GetLocationByName(name string) *time.Location {
	locMu.RLock()
	loc, ok := locCache[name]
	locMu.RUnlock()
	if ok {
		return loc
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		loc = time.UTC
	}

	locMu.Lock()
	locCache[name] = loc
	locMu.Unlock()
	return loc
}

// ParseTimestamp parses an upstream timestamp. Values carrying an offset keep
// it; offset-less values are local times at the given airport.
func ParseTimestamp(timeStr string, airportCode string) (time.Time, error) {
	withOffset := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05-0700",
		"2006-01-02T15:04-07:00",
	}
	for _, format := range withOffset {
		if t, err := time.Parse(format, timeStr); err == nil {
			return t, nil
		}
	}

	loc := GetLocationByAirport(airportCode)
	local := []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
	}
	for _, format := range local {
		if t, err := time.ParseInLocation(format, timeStr, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &time.ParseError{
		Value:   timeStr,
		Message: "unable to parse time string",
	}
}

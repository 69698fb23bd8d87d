// Package airlines maps IATA carrier codes to display names.
package airlines

import "strings"

var names = map[string]string{
	"QR": "Qatar Airways",
	"EK": "Emirates",
	"EY": "Etihad Airways",
	"KE": "Korean Air",
	"OZ": "Asiana Airlines",
	"TK": "Turkish Airlines",
	"AF": "Air France",
	"KL": "KLM",
	"LH": "Lufthansa",
	"IB": "Iberia",
	"UX": "Air Europa",
	"BA": "British Airways",
	"AY": "Finnair",
	"CX": "Cathay Pacific",
	"JL": "Japan Airlines",
	"NH": "ANA (All Nippon Airways)",
	"SQ": "Singapore Airlines",
	"TG": "Thai Airways",
	"CA": "Air China",
	"MU": "China Eastern",
	"CZ": "China Southern",
	"ET": "Ethiopian Airlines",
	"VY": "Vueling",
	"LO": "LOT Polish Airlines",
	"HY": "Uzbekistan Airways",
}

// Name returns the carrier name, falling back to the upper-cased code when
// the carrier is unknown.
func Name(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if n, ok := names[code]; ok {
		return n
	}
	return code
}

func Known(code string) bool {
	_, ok := names[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// Package data embeds sample upstream offers used when no API key is
// configured.
package data

import _ "embed"

// Offers maps a destination airport to template offers departing
// 2025-01-06 and returning 2025-01-15, priced for one adult.
//
//go:embed offers.json
var Offers []byte

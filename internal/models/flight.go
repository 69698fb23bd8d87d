package models

import "time"

type Airline struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// FlightSegment is one flown leg. The first segment of a slice also carries
// the slice-level stop count and first connection.
type FlightSegment struct {
	Origin           string    `json:"origin"`
	Destination      string    `json:"destination"`
	Departure        time.Time `json:"departure"`
	Arrival          time.Time `json:"arrival"`
	DurationMinutes  int       `json:"duration_minutes"`
	MarketingCarrier string    `json:"marketing_carrier"`
	FlightNumber     string    `json:"marketing_flight_number,omitempty"`
	OperatingCarrier string    `json:"operating_carrier,omitempty"`

	Stops             int    `json:"stops"`
	ConnectionAirport string `json:"connection_airport,omitempty"`
	ConnectionMinutes *int   `json:"connection_minutes,omitempty"`
}

// Slice is one direction of travel, segments in chronological order.
type Slice []FlightSegment

func (s Slice) Stops() int {
	if len(s) == 0 {
		return 0
	}
	return len(s) - 1
}

// FirstConnectionMinutes is the ground time between the first two segments,
// or zero for a direct slice.
func (s Slice) FirstConnectionMinutes() int {
	if len(s) == 0 || s[0].ConnectionMinutes == nil {
		return 0
	}
	return *s[0].ConnectionMinutes
}

// TotalMinutes spans first departure to last arrival.
func (s Slice) TotalMinutes() int {
	if len(s) == 0 {
		return 0
	}
	d := s[len(s)-1].Arrival.Sub(s[0].Departure)
	if d <= 0 {
		return 0
	}
	return int(d.Minutes())
}

// FlightOption is a priced round trip for the whole party.
type FlightOption struct {
	ID                   string    `json:"id"`
	Destination          string    `json:"destination"`
	Outbound             Slice     `json:"out"`
	Inbound              Slice     `json:"ret"`
	BaggageIncluded      bool      `json:"baggage_included"`
	Cabin                string    `json:"cabin"`
	TotalAmountPerPerson int       `json:"total_amount_per_person"`
	Currency             string    `json:"currency"`
	Airlines             []Airline `json:"airlines,omitempty"`
}

package providers

// Offer is the upstream (Duffel v2) priced itinerary. Only the fields the
// normalizer reads are mapped.
type Offer struct {
	ID            string       `json:"id"`
	TotalAmount   string       `json:"total_amount"`
	TotalCurrency string       `json:"total_currency"`
	Slices        []OfferSlice `json:"slices"`
}

type OfferSlice struct {
	Origin      Place          `json:"origin"`
	Destination Place          `json:"destination"`
	Duration    string         `json:"duration,omitempty"`
	Segments    []OfferSegment `json:"segments"`
}

type Place struct {
	IATACode string `json:"iata_code"`
	Name     string `json:"name,omitempty"`
}

type Carrier struct {
	IATACode string `json:"iata_code"`
	Name     string `json:"name,omitempty"`
}

type OfferSegment struct {
	Origin                       Place              `json:"origin"`
	Destination                  Place              `json:"destination"`
	DepartingAt                  string             `json:"departing_at"`
	ArrivingAt                   string             `json:"arriving_at"`
	Duration                     string             `json:"duration,omitempty"`
	MarketingCarrier             Carrier            `json:"marketing_carrier"`
	MarketingCarrierFlightNumber string             `json:"marketing_carrier_flight_number,omitempty"`
	OperatingCarrier             Carrier            `json:"operating_carrier"`
	Passengers                   []SegmentPassenger `json:"passengers,omitempty"`
}

type SegmentPassenger struct {
	CabinClass              string    `json:"cabin_class,omitempty"`
	CabinClassMarketingName string    `json:"cabin_class_marketing_name,omitempty"`
	Baggages                []Baggage `json:"baggages,omitempty"`
}

type Baggage struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
}

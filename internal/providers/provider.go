package providers

import (
	"context"
	"fmt"
)

// SearchRequest asks the upstream for round trips origin → destination on
// DepartureDate and back on ReturnDate.
type SearchRequest struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Passengers    int
	CabinClass    string
}

type Provider interface {
	Name() string
	Search(ctx context.Context, req SearchRequest) ([]Offer, error)
}

type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Err:      err,
	}
}

// UpstreamError is a non-2xx reply from the flight-search API.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Body)
}

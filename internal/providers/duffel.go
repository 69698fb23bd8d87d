package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var ErrMissingAPIKey = errors.New("duffel api key is not set")

const maxErrorBody = 512

type DuffelConfig struct {
	BaseURL     string
	APIKey      string
	Version     string
	Timeout     time.Duration
	OffersLimit int
}

func DefaultDuffelConfig() DuffelConfig {
	return DuffelConfig{
		BaseURL:     "https://api.duffel.com",
		Version:     "v2",
		Timeout:     30 * time.Second,
		OffersLimit: 50,
	}
}

type duffelSliceInput struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
}

type duffelPassengerInput struct {
	Type string `json:"type"`
}

type duffelOfferRequest struct {
	Data struct {
		Slices     []duffelSliceInput     `json:"slices"`
		Passengers []duffelPassengerInput `json:"passengers"`
		CabinClass string                 `json:"cabin_class"`
	} `json:"data"`
}

type duffelOfferRequestResponse struct {
	Data struct {
		ID     string  `json:"id"`
		Offers []Offer `json:"offers"`
	} `json:"data"`
}

type duffelOfferListResponse struct {
	Data []Offer `json:"data"`
}

// DuffelProvider searches round trips through the Duffel offer-request API.
// Offers normally come back embedded in the offer request; when they do not,
// they are listed by offer request id.
type DuffelProvider struct {
	cfg    DuffelConfig
	client *http.Client
}

func NewDuffelProvider(cfg DuffelConfig) (*DuffelProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	def := DefaultDuffelConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Version == "" {
		cfg.Version = def.Version
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.OffersLimit <= 0 {
		cfg.OffersLimit = def.OffersLimit
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &DuffelProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (p *DuffelProvider) Name() string {
	return "duffel"
}

func (p *DuffelProvider) Search(ctx context.Context, req SearchRequest) ([]Offer, error) {
	body := duffelOfferRequest{}
	body.Data.Slices = []duffelSliceInput{
		{Origin: req.Origin, Destination: req.Destination, DepartureDate: req.DepartureDate},
		{Origin: req.Destination, Destination: req.Origin, DepartureDate: req.ReturnDate},
	}
	pax := req.Passengers
	if pax < 1 {
		pax = 1
	}
	body.Data.Passengers = make([]duffelPassengerInput, pax)
	for i := range body.Data.Passengers {
		body.Data.Passengers[i] = duffelPassengerInput{Type: "adult"}
	}
	body.Data.CabinClass = req.CabinClass
	if body.Data.CabinClass == "" {
		body.Data.CabinClass = "economy"
	}

	var created duffelOfferRequestResponse
	if err := p.do(ctx, http.MethodPost, "/air/offer_requests?return_offers=true", body, &created); err != nil {
		return nil, err
	}
	if len(created.Data.Offers) > 0 || created.Data.ID == "" {
		return created.Data.Offers, nil
	}

	q := url.Values{}
	q.Set("offer_request_id", created.Data.ID)
	q.Set("limit", strconv.Itoa(p.cfg.OffersLimit))

	var listed duffelOfferListResponse
	if err := p.do(ctx, http.MethodGet, "/air/offers?"+q.Encode(), nil, &listed); err != nil {
		return nil, fmt.Errorf("list offers for %s: %w", created.Data.ID, err)
	}
	return listed.Data, nil
}

func (p *DuffelProvider) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, p.cfg.BaseURL+path, reader)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Duffel-Version", p.cfg.Version)
	httpReq.Header.Set("Authorization", bearer(p.cfg.APIKey))

	res, err := p.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return &UpstreamError{Status: res.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode upstream response: %w", err)
	}
	return nil
}

func bearer(key string) string {
	if strings.HasPrefix(key, "Bearer ") {
		return key
	}
	return "Bearer " + key
}

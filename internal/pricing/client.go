package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

const (
	// HetznerAPIEndpoint is the default Hetzner Cloud API endpoint.
	HetznerAPIEndpoint = "https://api.hetzner.cloud/v1"

	// PricingEndpoint is the pricing API path.
	PricingEndpoint = "/pricing"
)

// Client fetches pricing data from the Hetzner API.
type Client struct {
	token      string
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a new pricing client with the given API token.
func NewClient(token string) *Client {
	return NewClientWithEndpoint(token, HetznerAPIEndpoint)
}

// NewClientWithEndpoint creates a client with a custom endpoint (for testing).
func NewClientWithEndpoint(token, endpoint string) *Client {
	httpClient := cleanhttp.DefaultClient()
	httpClient.Timeout = 30 * time.Second
	return &Client{
		token:      token,
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

// FetchPrices fetches current pricing from the Hetzner API.
func (c *Client) FetchPrices(ctx context.Context) (*Prices, error) {
	url := c.endpoint + PricingEndpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pricing: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pricing API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return parsePricingResponse(body)
}

// Hetzner API response structures

type pricingResponse struct {
	Pricing pricingData `json:"pricing"`
}

type pricingData struct {
	Currency    string              `json:"currency"`
	VATRate     string              `json:"vat_rate"`
	ServerTypes []serverTypePricing `json:"server_types"`
}

type serverTypePricing struct {
	Name   string       `json:"name"`
	Prices []priceByLoc `json:"prices"`
}

type priceByLoc struct {
	Location     string `json:"location"`
	PriceHourly  amount `json:"price_hourly"`
	PriceMonthly amount `json:"price_monthly"`
}

type amount struct {
	Net string `json:"net"`
}

// parsePricingResponse parses the Hetzner pricing API response.
func parsePricingResponse(data []byte) (*Prices, error) {
	var resp pricingResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse pricing response: %w", err)
	}

	prices := &Prices{
		Currency: resp.Pricing.Currency,
		VATRate:  parsePriceString(resp.Pricing.VATRate) / 100,
		Servers:  make(map[string]map[string]ServerPrice, len(resp.Pricing.ServerTypes)),
	}
	if prices.Currency == "" {
		prices.Currency = DefaultCurrency
	}

	for _, st := range resp.Pricing.ServerTypes {
		byLocation := make(map[string]ServerPrice, len(st.Prices))
		for _, p := range st.Prices {
			byLocation[p.Location] = ServerPrice{
				Hourly:  parsePriceString(p.PriceHourly.Net),
				Monthly: parsePriceString(p.PriceMonthly.Net),
			}
		}
		prices.Servers[st.Name] = byLocation
	}

	return prices, nil
}

// parsePriceString converts a price string (e.g., "4.3500") to float64.
func parsePriceString(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// FetchOrDefault fetches prices from the API, falling back to defaults on error.
// The second result reports whether live prices were used.
func FetchOrDefault(ctx context.Context, token string) (*Prices, bool) {
	if token == "" {
		return DefaultPrices(), false
	}

	prices, err := NewClient(token).FetchPrices(ctx)
	if err != nil {
		return DefaultPrices(), false
	}

	return prices, true
}

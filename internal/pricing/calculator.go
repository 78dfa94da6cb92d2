// Package pricing estimates what a running game server costs.
package pricing

import (
	"fmt"
	"math"
)

const (
	// DefaultCurrency is what Hetzner bills in.
	DefaultCurrency = "EUR"
	// DefaultVATRate is the German VAT rate (19%).
	DefaultVATRate = 0.19

	hoursPerDay   = 24
	hoursPerMonth = 730
	monthsPerYear = 12
)

// ServerPrice is the net price of one server type in one location.
type ServerPrice struct {
	Hourly  float64
	Monthly float64
}

// Prices contains Hetzner pricing data.
type Prices struct {
	Currency string
	VATRate  float64
	// Servers maps server type, then location, to its price.
	Servers map[string]map[string]ServerPrice
}

// Lookup returns the price of serverType in location. When the location is
// not listed, the first listed location in sorted order stands in.
func (p *Prices) Lookup(serverType, location string) (ServerPrice, bool) {
	byLocation, ok := p.Servers[serverType]
	if !ok || len(byLocation) == 0 {
		return ServerPrice{}, false
	}
	if price, ok := byLocation[location]; ok {
		return price, true
	}
	first := ""
	for loc := range byLocation {
		if first == "" || loc < first {
			first = loc
		}
	}
	return byLocation[first], true
}

// Estimate is the running cost of one server, VAT included.
type Estimate struct {
	ServerType string
	Location   string
	Currency   string
	VATRate    float64

	Hourly  float64
	Daily   float64
	Monthly float64
	Yearly  float64
}

// String returns a one-line summary.
func (e *Estimate) String() string {
	return fmt.Sprintf("%s in %s: %.4f %s/h, %.2f %s/mo incl. VAT",
		e.ServerType, e.Location, e.Hourly, e.Currency, e.Monthly, e.Currency)
}

// Calculator turns prices into estimates.
type Calculator struct {
	prices *Prices
}

// NewCalculator creates a new calculator with default pricing.
func NewCalculator() *Calculator {
	return NewCalculatorWithPrices(DefaultPrices())
}

// NewCalculatorWithPrices creates a new calculator with specific pricing.
func NewCalculatorWithPrices(prices *Prices) *Calculator {
	return &Calculator{prices: prices}
}

// Calculate estimates the cost of running serverType in location. Hetzner
// bills by the hour up to the monthly cap, so longer periods never exceed
// the monthly price per month.
func (c *Calculator) Calculate(serverType, location string) (*Estimate, error) {
	price, ok := c.prices.Lookup(serverType, location)
	if !ok {
		return nil, fmt.Errorf("no price known for server type %q", serverType)
	}

	vat := c.prices.VATRate
	gross := func(net float64) float64 { return round(net * (1 + vat)) }

	monthlyNet := price.Hourly * hoursPerMonth
	if price.Monthly > 0 && price.Monthly < monthlyNet {
		monthlyNet = price.Monthly
	}

	currency := c.prices.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Estimate{
		ServerType: serverType,
		Location:   location,
		Currency:   currency,
		VATRate:    vat,
		Hourly:     gross(price.Hourly),
		Daily:      gross(math.Min(price.Hourly*hoursPerDay, monthlyNet)),
		Monthly:    gross(monthlyNet),
		Yearly:     gross(monthlyNet * monthsPerYear),
	}, nil
}

func round(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// DefaultPrices returns hardcoded net Hetzner prices for fsn1.
// They drift; live prices from the API are preferred.
func DefaultPrices() *Prices {
	fsn := func(hourly, monthly float64) map[string]ServerPrice {
		return map[string]ServerPrice{"fsn1": {Hourly: hourly, Monthly: monthly}}
	}
	return &Prices{
		Currency: DefaultCurrency,
		VATRate:  DefaultVATRate,
		Servers: map[string]map[string]ServerPrice{
			"cx22":  fsn(0.0060, 3.79),
			"cx32":  fsn(0.0110, 6.80),
			"cx42":  fsn(0.0268, 16.40),
			"cx52":  fsn(0.0532, 32.40),
			"cpx11": fsn(0.0071, 4.35),
			"cpx21": fsn(0.0121, 7.55),
			"cpx31": fsn(0.0218, 13.60),
			"cpx41": fsn(0.0402, 25.20),
			"cpx51": fsn(0.0868, 54.90),
			"cax11": fsn(0.0061, 3.79),
			"cax21": fsn(0.0104, 6.49),
			"cax31": fsn(0.0201, 12.49),
			"cax41": fsn(0.0399, 24.49),
		},
	}
}

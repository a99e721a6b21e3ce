package rates

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ReferenceRates holds the official BCV rates in bolívares per unit. A zero
// value means the rate is not (yet) available.
type ReferenceRates struct {
	USD       decimal.Decimal
	EUR       decimal.Decimal
	FetchedAt time.Time
}

// Available reports whether at least the USD rate resolved
func (r ReferenceRates) Available() bool {
	return !r.USD.IsZero()
}

// Currency selects one of the published reference quotes
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// For returns the quote for the given currency, zero when unavailable
func (r ReferenceRates) For(c Currency) decimal.Decimal {
	switch c {
	case CurrencyEUR:
		return r.EUR
	default:
		return r.USD
	}
}

// Provider fetches the official reference rates from an upstream source
type Provider interface {
	FetchRates(ctx context.Context) (ReferenceRates, error)
}

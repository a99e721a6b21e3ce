// Package rates provides the HTTP client for the official BCV reference rates.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	domainrates "github.com/ordena/backend/internal/domain/rates"
	"github.com/ordena/backend/internal/infrastructure/config"
)

// maxResponseSize caps the rate provider response at 1 MiB
const maxResponseSize = 1 << 20

// Ensure BCVClient implements rates.Provider
var _ domainrates.Provider = (*BCVClient)(nil)

// BCVClient fetches the official BCV reference rates from the public
// exchange-rate API
type BCVClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewBCVClient creates a new BCVClient from configuration
func NewBCVClient(cfg *config.RatesConfig) *BCVClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &BCVClient{
		endpoint: cfg.Endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// exchangeRateResponse mirrors the public exchange-rate API payload. Only the
// current quote is read; the previous one is ignored.
type exchangeRateResponse struct {
	Current struct {
		Date string          `json:"date"`
		USD  decimal.Decimal `json:"usd"`
		EUR  decimal.Decimal `json:"eur"`
	} `json:"current"`
}

// FetchRates retrieves the current USD and EUR reference rates
func (c *BCVClient) FetchRates(ctx context.Context) (domainrates.ReferenceRates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return domainrates.ReferenceRates{}, fmt.Errorf("failed to build rates request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domainrates.ReferenceRates{}, fmt.Errorf("failed to fetch reference rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domainrates.ReferenceRates{}, fmt.Errorf("rates endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return domainrates.ReferenceRates{}, fmt.Errorf("failed to read rates response: %w", err)
	}

	var payload exchangeRateResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return domainrates.ReferenceRates{}, fmt.Errorf("failed to decode rates response: %w", err)
	}

	rates := domainrates.ReferenceRates{
		USD:       payload.Current.USD,
		EUR:       payload.Current.EUR,
		FetchedAt: time.Now(),
	}
	if !rates.Available() {
		return domainrates.ReferenceRates{}, fmt.Errorf("rates endpoint returned no usable USD rate")
	}
	return rates, nil
}

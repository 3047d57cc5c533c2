// Package price retrieves fiat prices for the fee token from CoinGecko.
// Pricing is display-only: every caller must treat a failure here as
// non-fatal.
package price

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// Fetcher retrieves token prices from CoinGecko.
type Fetcher struct {
	client   *http.Client
	baseURL  string
	currency string
}

// NewFetcher creates a price fetcher. currency defaults to usd.
func NewFetcher(currency string) *Fetcher {
	if currency == "" {
		currency = "usd"
	}
	return &Fetcher{
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  defaultBaseURL,
		currency: strings.ToLower(currency),
	}
}

// NewFetcherWithBaseURL creates a fetcher against a custom API base.
func NewFetcherWithBaseURL(currency, base string) *Fetcher {
	f := NewFetcher(currency)
	f.baseURL = strings.TrimRight(base, "/")
	return f
}

// TokenPrice returns the fiat price for a CoinGecko coin ID ("tether",
// "binance-usd", ...).
func (f *Fetcher) TokenPrice(coinID string) (float64, error) {
	if coinID == "" {
		return 0, fmt.Errorf("no coin id configured")
	}

	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s",
		f.baseURL, url.QueryEscape(coinID), url.QueryEscape(f.currency))

	resp, err := f.client.Get(endpoint)
	if err != nil {
		return 0, fmt.Errorf("fetching price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("price API returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("reading price response: %w", err)
	}

	var parsed map[string]map[string]float64
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, fmt.Errorf("parsing price response: %w", err)
	}

	p, ok := parsed[coinID][f.currency]
	if !ok {
		return 0, fmt.Errorf("no %s price for %s", f.currency, coinID)
	}
	return p, nil
}

// Format renders an amount of tokens in fiat, e.g. "≈ $12.50".
func (f *Fetcher) Format(amount, price float64) string {
	symbol := "$"
	if f.currency != "usd" {
		symbol = strings.ToUpper(f.currency) + " "
	}
	return fmt.Sprintf("≈ %s%.2f", symbol, amount*price)
}

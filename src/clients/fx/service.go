package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gmgifpe/asset-tracker/src/config"
	"github.com/gmgifpe/asset-tracker/src/utils"
	"github.com/gmgifpe/asset-tracker/src/utils/requests"

	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://api.exchangerate-api.com/v4/latest"

// Static USD rates used when the exchange-rate API cannot be reached.
var fallbackRates = map[string]decimal.Decimal{
	"USD": decimal.NewFromInt(1),
	"TWD": decimal.NewFromFloat(0.031),
	"EUR": decimal.NewFromFloat(1.1),
	"GBP": decimal.NewFromFloat(1.25),
	"JPY": decimal.NewFromFloat(0.0067),
}

type FXClientI interface {
	// RateToUSD returns the multiplier that converts one unit of
	// currency into USD, plus whether a stale fallback rate was used.
	RateToUSD(ctx context.Context, currency string) (decimal.Decimal, bool, error)
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, bool, error)
}

type FXClient struct {
	API      *requests.ExternalAPIService
	BaseURL  string
	cache    *utils.Cache[map[string]decimal.Decimal]
	cacheTTL time.Duration
}

type ratesResponse struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// NewClient creates a new instance of FXClient
func NewClient(cfg *config.Config) *FXClient {
	baseURL := cfg.ExternalClients.FX.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	ttl := time.Duration(cfg.ExternalClients.FX.CacheTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &FXClient{
		API:      requests.NewExternalAPIService(),
		BaseURL:  baseURL,
		cache:    utils.NewCache[map[string]decimal.Decimal](),
		cacheTTL: ttl,
	}
}

// RateToUSD returns the USD value of one unit of currency. The second
// return reports whether a static fallback rate had to be used.
func (c *FXClient) RateToUSD(ctx context.Context, currency string) (decimal.Decimal, bool, error) {
	currency = strings.ToUpper(currency)
	if currency == "USD" || currency == "" {
		return decimal.NewFromInt(1), false, nil
	}

	rates, err := c.usdRates(ctx)
	if err == nil {
		if rate, ok := rates[currency]; ok && !rate.IsZero() {
			// API rates are quoted as USD -> currency, so invert.
			return decimal.NewFromInt(1).Div(rate), false, nil
		}
	}

	if rate, ok := fallbackRates[currency]; ok {
		return rate, true, nil
	}
	return decimal.Decimal{}, true, fmt.Errorf("no exchange rate available for %s", currency)
}

// Convert converts amount between two currencies via USD.
func (c *FXClient) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, bool, error) {
	fromRate, fromStale, err := c.RateToUSD(ctx, from)
	if err != nil {
		return decimal.Decimal{}, true, err
	}
	toRate, toStale, err := c.RateToUSD(ctx, to)
	if err != nil {
		return decimal.Decimal{}, true, err
	}
	if toRate.IsZero() {
		return decimal.Decimal{}, true, fmt.Errorf("zero exchange rate for %s", to)
	}
	return amount.Mul(fromRate).Div(toRate), fromStale || toStale, nil
}

func (c *FXClient) usdRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	if rates, ok := c.cache.Get(); ok {
		return rates, nil
	}

	endpoint := fmt.Sprintf("%s/USD", c.BaseURL)
	resp, err := c.API.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed ratesResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Rates) == 0 {
		return nil, fmt.Errorf("exchange rate response contained no rates")
	}

	c.cache.Set(parsed.Rates, c.cacheTTL)
	return parsed.Rates, nil
}

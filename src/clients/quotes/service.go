package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gmgifpe/asset-tracker/src/config"
	"github.com/gmgifpe/asset-tracker/src/models"
	"github.com/gmgifpe/asset-tracker/src/schemas"
	"github.com/gmgifpe/asset-tracker/src/utils/requests"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"
)

const defaultCryptoBaseURL = "https://api.coingecko.com/api/v3"

// Symbols CoinGecko knows by a different id than the ticker.
var coinIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"LTC":  "litecoin",
	"XRP":  "ripple",
	"ADA":  "cardano",
	"DOT":  "polkadot",
	"LINK": "chainlink",
	"BCH":  "bitcoin-cash",
	"XLM":  "stellar",
	"DOGE": "dogecoin",
}

type QuoteClientI interface {
	GetPrice(ctx context.Context, symbol, assetType string) (*schemas.Quote, error)
}

type QuoteClient struct {
	API           *requests.ExternalAPIService
	CryptoBaseURL string
}

// NewClient creates a new instance of QuoteClient
func NewClient(cfg *config.Config) *QuoteClient {
	baseURL := cfg.ExternalClients.Quotes.CryptoBaseURL
	if baseURL == "" {
		baseURL = defaultCryptoBaseURL
	}
	return &QuoteClient{
		API:           requests.NewExternalAPIService(),
		CryptoBaseURL: baseURL,
	}
}

// GetPrice fetches the current market price for a symbol. Stocks go
// through Yahoo Finance, crypto through CoinGecko.
func (c *QuoteClient) GetPrice(ctx context.Context, symbol, assetType string) (*schemas.Quote, error) {
	switch assetType {
	case models.AssetTypeCrypto:
		return c.getCryptoPrice(ctx, symbol)
	default:
		return c.getStockPrice(symbol)
	}
}

func (c *QuoteClient) getStockPrice(symbol string) (*schemas.Quote, error) {
	q, err := quote.Get(yahooSymbol(symbol))
	if err == nil && q != nil {
		return quoteFromYahoo(symbol, q), nil
	}

	// Taiwan listings that failed with the .TW suffix are retried raw.
	if yahooSymbol(symbol) != symbol {
		q, err = quote.Get(symbol)
		if err == nil && q != nil {
			return quoteFromYahoo(symbol, q), nil
		}
	}
	if err == nil {
		err = fmt.Errorf("no quote data for %s", symbol)
	}
	return nil, fmt.Errorf("failed to fetch stock quote for %s: %w", symbol, err)
}

// yahooSymbol maps 4-digit numeric tickers to their Taiwan exchange
// listing.
func yahooSymbol(symbol string) string {
	if len(symbol) == 4 && strings.Trim(symbol, "0123456789") == "" {
		return symbol + ".TW"
	}
	return symbol
}

func quoteFromYahoo(symbol string, q *finance.Quote) *schemas.Quote {
	currency := q.CurrencyID
	if currency == "" {
		currency = "USD"
	}
	return &schemas.Quote{
		Symbol:   symbol,
		Price:    decimal.NewFromFloat(q.RegularMarketPrice),
		Currency: currency,
	}
}

func (c *QuoteClient) getCryptoPrice(ctx context.Context, symbol string) (*schemas.Quote, error) {
	coinID, ok := coinIDs[strings.ToUpper(symbol)]
	if !ok {
		coinID = strings.ToLower(symbol)
	}

	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.CryptoBaseURL, coinID)
	resp, err := c.API.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch crypto quote for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var priceResponse map[string]map[string]decimal.Decimal
	if err := json.Unmarshal(responseBody, &priceResponse); err != nil {
		return nil, err
	}

	entry, ok := priceResponse[coinID]
	if !ok {
		return nil, fmt.Errorf("no crypto quote data for %s", symbol)
	}
	price, ok := entry["usd"]
	if !ok {
		return nil, fmt.Errorf("no USD quote for %s", symbol)
	}

	return &schemas.Quote{
		Symbol:   strings.ToUpper(symbol),
		Price:    price,
		Currency: "USD",
	}, nil
}

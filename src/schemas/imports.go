package schemas

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParsedTransaction is one trade row extracted from a broker statement.
type ParsedTransaction struct {
	Date            time.Time
	Symbol          string
	Name            string
	Description     string
	Quantity        decimal.Decimal
	Price           decimal.Decimal
	Amount          decimal.Decimal
	TransactionType string
	Broker          string
}

type PreviewTransaction struct {
	Date        string          `json:"date"`
	Symbol      string          `json:"symbol"`
	Type        string          `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type PreviewCSVResponse struct {
	Success      bool                 `json:"success"`
	Transactions []PreviewTransaction `json:"transactions"`
	TotalCount   int                  `json:"total_count"`
	Broker       string               `json:"broker"`
}

type ImportCSVResponse struct {
	Success              bool   `json:"success"`
	Message              string `json:"message"`
	TransactionsImported int    `json:"transactions_imported"`
	AssetsUpdated        int    `json:"assets_updated"`
	PricesUpdated        int    `json:"prices_updated"`
	Broker               string `json:"broker"`
}

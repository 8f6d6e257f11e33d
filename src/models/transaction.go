package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID              int             `db:"id"`
	UserID          uint            `db:"user_id"`
	AccountID       *int            `db:"account_id"`
	Symbol          string          `db:"symbol"`
	Name            string          `db:"name"`
	AssetType       string          `db:"asset_type"`
	TransactionType string          `db:"transaction_type"`
	Quantity        decimal.Decimal `db:"quantity"`
	PricePerUnit    decimal.Decimal `db:"price_per_unit"`
	TotalAmount     decimal.Decimal `db:"total_amount"`
	Currency        string          `db:"currency"`
	TransactionDate time.Time       `db:"transaction_date"`
	CreatedAt       time.Time       `db:"created_at"`
	Notes           string          `db:"notes"`
}

const (
	TransactionTypeBuy  = "BUY"
	TransactionTypeSell = "SELL"
)

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PriceHistory struct {
	ID        int             `db:"id"`
	Symbol    string          `db:"symbol"`
	AssetType string          `db:"asset_type"`
	Price     decimal.Decimal `db:"price"`
	Timestamp time.Time       `db:"timestamp"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Asset struct {
	ID        int    `db:"id"`
	UserID    uint   `db:"user_id"`
	AccountID *int   `db:"account_id"`
	Symbol    string `db:"symbol"`
	Name      string `db:"name"`
	AssetType string `db:"asset_type"`

	Quantity      decimal.Decimal `db:"quantity"`
	PurchasePrice decimal.Decimal `db:"purchase_price"`
	CurrentPrice  decimal.Decimal `db:"current_price"`
	Currency      string          `db:"currency"`

	PurchaseDate time.Time `db:"purchase_date"`
	LastUpdated  time.Time `db:"last_updated"`

	// Equity compensation fields
	GrantDate      *time.Time       `db:"grant_date"`
	VestingDate    *time.Time       `db:"vesting_date"`
	ExpirationDate *time.Time       `db:"expiration_date"`
	StrikePrice    *decimal.Decimal `db:"strike_price"`
	VestFMV        *decimal.Decimal `db:"vest_fmv"`
	Status         string           `db:"status"`

	// Tax tracking fields
	TaxCountry      string           `db:"tax_country"`
	TaxRate         *decimal.Decimal `db:"tax_rate"`
	ExercisePrice   *decimal.Decimal `db:"exercise_price"`
	ExerciseDate    *time.Time       `db:"exercise_date"`
	VestMarketPrice *decimal.Decimal `db:"vest_market_price"`

	Notes string `db:"notes"`
}

const (
	AssetTypeStock       = "stock"
	AssetTypeCrypto      = "crypto"
	AssetTypeCash        = "cash"
	AssetTypeRealEstate  = "real_estate"
	AssetTypeCommodity   = "commodity"
	AssetTypeStockOption = "stock_option"
	AssetTypeRSU         = "rsu"
	AssetTypeESPP        = "espp"
	AssetTypeOther       = "other"
)

const (
	StatusGranted   = "granted"
	StatusVested    = "vested"
	StatusExercised = "exercised"
	StatusExpired   = "expired"
)

// IsEquityCompensation reports whether the asset carries grant/vest/tax
// metadata.
func (a Asset) IsEquityCompensation() bool {
	return IsEquityCompensationType(a.AssetType)
}

func IsEquityCompensationType(assetType string) bool {
	switch assetType {
	case AssetTypeStockOption, AssetTypeRSU, AssetTypeESPP:
		return true
	}
	return false
}

// IsQuotable reports whether a live market quote exists for the asset.
func (a Asset) IsQuotable() bool {
	return a.AssetType == AssetTypeStock || a.AssetType == AssetTypeCrypto
}

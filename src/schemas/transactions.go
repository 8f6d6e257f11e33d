package schemas

import (
	"strings"
	"time"

	"github.com/gmgifpe/asset-tracker/src/models"
	"github.com/gmgifpe/asset-tracker/src/utils"

	"github.com/shopspring/decimal"
)

type TransactionRequest struct {
	AccountID       *int            `json:"account_id"`
	Symbol          string          `json:"symbol"`
	Name            string          `json:"name"`
	AssetType       string          `json:"asset_type"`
	TransactionType string          `json:"transaction_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	PricePerUnit    decimal.Decimal `json:"price_per_unit"`
	Currency        string          `json:"currency"`
	TransactionDate *string         `json:"transaction_date"`
	Notes           string          `json:"notes"`
}

func (r *TransactionRequest) Validate() error {
	if r.Symbol == "" {
		return utils.Validationf("symbol", "must not be empty")
	}
	if r.Name == "" {
		return utils.Validationf("name", "must not be empty")
	}
	if r.AssetType == "" {
		return utils.Validationf("asset_type", "must not be empty")
	}
	side := strings.ToUpper(r.TransactionType)
	if side != models.TransactionTypeBuy && side != models.TransactionTypeSell {
		return utils.Validationf("transaction_type", "must be BUY or SELL")
	}
	if !r.Quantity.IsPositive() {
		return utils.Validationf("quantity", "must be positive")
	}
	if r.PricePerUnit.IsNegative() {
		return utils.Validationf("price_per_unit", "must not be negative")
	}
	return nil
}

func (r *TransactionRequest) ToModel(userID uint) (*models.Transaction, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	currency := r.Currency
	if currency == "" {
		currency = "USD"
	}

	date := time.Now().UTC()
	if r.TransactionDate != nil && *r.TransactionDate != "" {
		parsed, err := time.Parse(time.RFC3339, *r.TransactionDate)
		if err != nil {
			parsed, err = time.Parse(utils.ShortDashDateLayout, *r.TransactionDate)
			if err != nil {
				return nil, utils.Validationf("transaction_date", "unparseable date %q", *r.TransactionDate)
			}
		}
		date = parsed
	}

	return &models.Transaction{
		UserID:          userID,
		AccountID:       r.AccountID,
		Symbol:          strings.ToUpper(r.Symbol),
		Name:            r.Name,
		AssetType:       r.AssetType,
		TransactionType: strings.ToUpper(r.TransactionType),
		Quantity:        r.Quantity,
		PricePerUnit:    r.PricePerUnit,
		TotalAmount:     r.Quantity.Mul(r.PricePerUnit),
		Currency:        currency,
		TransactionDate: date,
		Notes:           r.Notes,
	}, nil
}

type TransactionResponse struct {
	ID              int             `json:"id"`
	Symbol          string          `json:"symbol"`
	Name            string          `json:"name"`
	AssetType       string          `json:"asset_type"`
	TransactionType string          `json:"transaction_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	PricePerUnit    decimal.Decimal `json:"price_per_unit"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Currency        string          `json:"currency"`
	TransactionDate time.Time       `json:"transaction_date"`
	AccountID       *int            `json:"account_id"`
	AccountName     string          `json:"account_name"`
	Notes           string          `json:"notes"`
}

type CreateTransactionResponse struct {
	Message       string `json:"message"`
	TransactionID int    `json:"transaction_id"`
}

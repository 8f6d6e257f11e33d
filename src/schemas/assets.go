package schemas

import (
	"bytes"
	"time"

	"github.com/gmgifpe/asset-tracker/src/models"
	"github.com/gmgifpe/asset-tracker/src/utils"

	"github.com/shopspring/decimal"
)

// OptionalDecimal tolerates the loosely typed payloads the web client
// sends: a JSON number, a quoted number, an empty string, or null. The
// engine only ever sees the parsed *decimal.Decimal.
type OptionalDecimal struct {
	Value *decimal.Decimal
}

func (o *OptionalDecimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	if data[0] == '"' {
		data = bytes.Trim(data, `"`)
		if len(bytes.TrimSpace(data)) == 0 {
			o.Value = nil
			return nil
		}
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return err
	}
	o.Value = &d
	return nil
}

func (o OptionalDecimal) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return o.Value.MarshalJSON()
}

type AssetRequest struct {
	AccountID     *int            `json:"account_id"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	AssetType     string          `json:"asset_type"`
	Quantity      decimal.Decimal `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	Currency      string          `json:"currency"`
	Notes         string          `json:"notes"`

	GrantDate      *string         `json:"grant_date"`
	VestingDate    *string         `json:"vesting_date"`
	ExpirationDate *string         `json:"expiration_date"`
	StrikePrice    OptionalDecimal `json:"strike_price"`
	VestFMV        OptionalDecimal `json:"vest_fmv"`
	Status         string          `json:"status"`

	TaxCountry      string          `json:"tax_country"`
	TaxRate         OptionalDecimal `json:"tax_rate"`
	ExercisePrice   OptionalDecimal `json:"exercise_price"`
	ExerciseDate    *string         `json:"exercise_date"`
	VestMarketPrice OptionalDecimal `json:"vest_market_price"`
}

// Validate rejects malformed input before any state change.
func (r *AssetRequest) Validate() error {
	if r.Symbol == "" {
		return utils.Validationf("symbol", "must not be empty")
	}
	if r.Name == "" {
		return utils.Validationf("name", "must not be empty")
	}
	if r.AssetType == "" {
		return utils.Validationf("asset_type", "must not be empty")
	}
	if r.Quantity.IsNegative() {
		return utils.Validationf("quantity", "must not be negative")
	}
	if r.PurchasePrice.IsNegative() {
		return utils.Validationf("purchase_price", "must not be negative")
	}
	if models.IsEquityCompensationType(r.AssetType) && r.TaxRate.Value != nil {
		rate := *r.TaxRate.Value
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
			return utils.Validationf("tax_rate", "must be between 0 and 100")
		}
	}
	return nil
}

// ToModel converts the validated request into a persistable asset.
func (r *AssetRequest) ToModel(userID uint) (*models.Asset, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	currency := r.Currency
	if currency == "" {
		currency = "USD"
	}
	status := r.Status
	if status == "" {
		status = models.StatusGranted
	}
	taxCountry := r.TaxCountry
	if taxCountry == "" {
		taxCountry = "TW"
	}

	asset := &models.Asset{
		UserID:          userID,
		AccountID:       r.AccountID,
		Symbol:          r.Symbol,
		Name:            r.Name,
		AssetType:       r.AssetType,
		Quantity:        r.Quantity,
		PurchasePrice:   r.PurchasePrice,
		Currency:        currency,
		Status:          status,
		TaxCountry:      taxCountry,
		TaxRate:         r.TaxRate.Value,
		StrikePrice:     r.StrikePrice.Value,
		VestFMV:         r.VestFMV.Value,
		ExercisePrice:   r.ExercisePrice.Value,
		VestMarketPrice: r.VestMarketPrice.Value,
		Notes:           r.Notes,
	}

	var err error
	if asset.GrantDate, err = parseOptionalDate("grant_date", r.GrantDate); err != nil {
		return nil, err
	}
	if asset.VestingDate, err = parseOptionalDate("vesting_date", r.VestingDate); err != nil {
		return nil, err
	}
	if asset.ExpirationDate, err = parseOptionalDate("expiration_date", r.ExpirationDate); err != nil {
		return nil, err
	}
	if asset.ExerciseDate, err = parseOptionalDate("exercise_date", r.ExerciseDate); err != nil {
		return nil, err
	}

	return asset, nil
}

func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		// Date-only values are also accepted.
		t, err = time.Parse(utils.ShortDashDateLayout, *value)
		if err != nil {
			return nil, utils.Validationf(field, "unparseable date %q", *value)
		}
	}
	return &t, nil
}

type AssetResponse struct {
	ID          int    `json:"id"`
	AccountID   *int   `json:"account_id"`
	AccountName string `json:"account_name"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	AssetType   string `json:"asset_type"`

	Quantity      decimal.Decimal `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	Currency      string          `json:"currency"`

	TotalValue      decimal.Decimal `json:"total_value"`
	GainLoss        decimal.Decimal `json:"gain_loss"`
	GainLossPercent float64         `json:"gain_loss_percent"`

	PurchaseDate time.Time `json:"purchase_date"`
	Notes        string    `json:"notes"`

	GrantDate      *time.Time       `json:"grant_date"`
	VestingDate    *time.Time       `json:"vesting_date"`
	ExpirationDate *time.Time       `json:"expiration_date"`
	StrikePrice    *decimal.Decimal `json:"strike_price"`
	VestFMV        *decimal.Decimal `json:"vest_fmv"`
	Status         string           `json:"status"`

	TaxCountry      string           `json:"tax_country"`
	TaxRate         *decimal.Decimal `json:"tax_rate"`
	ExercisePrice   *decimal.Decimal `json:"exercise_price"`
	ExerciseDate    *time.Time       `json:"exercise_date"`
	VestMarketPrice *decimal.Decimal `json:"vest_market_price"`

	CurrentTaxLiability   decimal.Decimal `json:"current_tax_liability"`
	PotentialTaxLiability decimal.Decimal `json:"potential_tax_liability"`
	Moneyness             string          `json:"moneyness,omitempty"`
}

type CreateAssetResponse struct {
	Message string `json:"message"`
	AssetID int    `json:"asset_id"`
}

package schemas

import "github.com/shopspring/decimal"

// Quote is a market price for a symbol as returned by the quote client.
type Quote struct {
	Symbol   string          `json:"symbol"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

// TaxPreset maps a country code to its default equity-compensation tax
// rate. A nil rate means the rate is custom/editable.
type TaxPreset struct {
	Country string           `json:"country"`
	Rate    *decimal.Decimal `json:"rate"`
}

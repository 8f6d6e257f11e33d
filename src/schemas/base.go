package schemas

import "github.com/shopspring/decimal"

func init() {
	// API consumers expect plain JSON numbers for money fields.
	decimal.MarshalJSONWithoutQuotes = true
}

// Message is the generic acknowledgement payload.
type Message struct {
	Message string `json:"message"`
}

package schemas

import (
	"time"

	"github.com/shopspring/decimal"
)

// HoldingPosition is the running state of the average-cost tracker for
// one symbol.
type HoldingPosition struct {
	Symbol            string          `json:"symbol"`
	Name              string          `json:"name"`
	AssetType         string          `json:"asset_type"`
	Quantity          decimal.Decimal `json:"quantity"`
	AverageCost       decimal.Decimal `json:"average_cost"`
	FirstPurchaseDate time.Time       `json:"first_purchase_date"`
}

// TotalCost is the cost basis of the whole open position.
func (h HoldingPosition) TotalCost() decimal.Decimal {
	return h.AverageCost.Mul(h.Quantity)
}

// HoldingSummary is a holding valued at the current market price.
type HoldingSummary struct {
	Symbol                    string          `json:"symbol"`
	Name                      string          `json:"name"`
	AssetType                 string          `json:"asset_type"`
	Quantity                  decimal.Decimal `json:"quantity"`
	AverageCost               decimal.Decimal `json:"average_cost"`
	CurrentPrice              decimal.Decimal `json:"current_price"`
	CurrentValue              decimal.Decimal `json:"current_value"`
	UnrealizedGainLoss        decimal.Decimal `json:"unrealized_gain_loss"`
	UnrealizedGainLossPercent float64         `json:"unrealized_gain_loss_percent"`
}

// RealizedGain is emitted for every SELL, in chronological order.
type RealizedGain struct {
	TransactionID           int             `json:"transaction_id"`
	Symbol                  string          `json:"symbol"`
	Name                    string          `json:"name"`
	SellDate                time.Time       `json:"sell_date"`
	QuantitySold            decimal.Decimal `json:"quantity_sold"`
	SellPrice               decimal.Decimal `json:"sell_price"`
	SellAmount              decimal.Decimal `json:"sell_amount"`
	AverageCostBasis        decimal.Decimal `json:"average_cost_basis"`
	CostBasisTotal          decimal.Decimal `json:"cost_basis_total"`
	RealizedGainLoss        decimal.Decimal `json:"realized_gain_loss"`
	RealizedGainLossPercent float64         `json:"realized_gain_loss_percent"`
}

type PortfolioSummary struct {
	TotalValue           decimal.Decimal            `json:"total_value"`
	TotalCost            decimal.Decimal            `json:"total_cost"`
	TotalGainLoss        decimal.Decimal            `json:"total_gain_loss"`
	TotalGainLossPercent float64                    `json:"total_gain_loss_percent"`
	AssetDistribution    map[string]decimal.Decimal `json:"asset_distribution"`
	AccountDistribution  map[string]decimal.Decimal `json:"account_distribution"`
	StockDistribution    map[string]decimal.Decimal `json:"stock_distribution"`
	AssetCount           int                        `json:"asset_count"`
	BaseCurrency         string                     `json:"base_currency"`
	Warnings             []string                   `json:"warnings,omitempty"`
}

type AssetPerformance struct {
	ID                int             `json:"id"`
	Symbol            string          `json:"symbol"`
	Name              string          `json:"name"`
	AssetType         string          `json:"asset_type"`
	TotalValue        decimal.Decimal `json:"total_value"`
	GainLoss          decimal.Decimal `json:"gain_loss"`
	GainLossPercent   float64         `json:"gain_loss_percent"`
	DaysHeld          int             `json:"days_held"`
	AnnualReturn      float64         `json:"annual_return"`
	AllocationPercent float64         `json:"allocation_percent"`
}

type PerformerSummary struct {
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	GainPercent float64 `json:"gain_percent"`
}

type PortfolioMetrics struct {
	TotalAssets          int               `json:"total_assets"`
	TotalValue           decimal.Decimal   `json:"total_value"`
	TotalCost            decimal.Decimal   `json:"total_cost"`
	TotalGainLoss        decimal.Decimal   `json:"total_gain_loss"`
	TotalGainLossPercent float64           `json:"total_gain_loss_percent"`
	BestPerformer        *PerformerSummary `json:"best_performer"`
	WorstPerformer       *PerformerSummary `json:"worst_performer"`
	AvgDaysHeld          int               `json:"avg_days_held"`
	DiversificationScore int               `json:"diversification_score"`
	BaseCurrency         string            `json:"base_currency"`
}

// TransactionSummary is the running per-symbol view with one entry per
// transaction and the realized figures attached to sells.
type TransactionSummary struct {
	Symbol            string                  `json:"symbol"`
	Name              string                  `json:"name"`
	TotalBuyQuantity  decimal.Decimal         `json:"total_buy_quantity"`
	TotalSellQuantity decimal.Decimal         `json:"total_sell_quantity"`
	TotalBuyAmount    decimal.Decimal         `json:"total_buy_amount"`
	TotalSellAmount   decimal.Decimal         `json:"total_sell_amount"`
	CurrentHoldings   decimal.Decimal         `json:"current_holdings"`
	AverageCostBasis  decimal.Decimal         `json:"average_cost_basis"`
	RealizedGainLoss  decimal.Decimal         `json:"realized_gain_loss"`
	TransactionCount  int                     `json:"transaction_count"`
	FirstPurchaseDate time.Time               `json:"first_purchase_date"`
	Transactions      []SummarizedTransaction `json:"transactions"`
}

type SummarizedTransaction struct {
	ID               int              `json:"id"`
	TransactionType  string           `json:"transaction_type"`
	Quantity         decimal.Decimal  `json:"quantity"`
	PricePerUnit     decimal.Decimal  `json:"price_per_unit"`
	TotalAmount      decimal.Decimal  `json:"total_amount"`
	TransactionDate  time.Time        `json:"transaction_date"`
	RealizedGainLoss *decimal.Decimal `json:"realized_gain_loss,omitempty"`
	Notes            string           `json:"notes"`
}

type UpdatePricesResponse struct {
	Message      string   `json:"message"`
	UpdatedCount int      `json:"updated_count"`
	Warnings     []string `json:"warnings,omitempty"`
}

type CurrencyConversionResponse struct {
	FromCurrency    string          `json:"from_currency"`
	ToCurrency      string          `json:"to_currency"`
	OriginalAmount  decimal.Decimal `json:"original_amount"`
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
}

type BackupData struct {
	User         UserResponse          `json:"user"`
	Accounts     []AccountResponse     `json:"accounts"`
	Assets       []AssetResponse       `json:"assets"`
	Transactions []TransactionResponse `json:"transactions"`
	ExportDate   time.Time             `json:"export_date"`
}

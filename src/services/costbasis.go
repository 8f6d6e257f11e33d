package services

import (
	"fmt"
	"sort"

	"github.com/gmgifpe/asset-tracker/src/models"
	"github.com/gmgifpe/asset-tracker/src/schemas"

	"github.com/shopspring/decimal"
)

// OversellError reports a SELL for more shares than the running
// position holds at that point in the transaction history.
type OversellError struct {
	Symbol    string
	Requested decimal.Decimal
	Held      decimal.Decimal
}

func (e *OversellError) Error() string {
	return fmt.Sprintf("cannot sell %s shares of %s, only %s held", e.Requested, e.Symbol, e.Held)
}

// costTracker accumulates a position under average cost basis. BUYs
// re-average the cost across the whole position, SELLs reduce quantity
// and leave the average untouched.
type costTracker struct {
	quantity decimal.Decimal
	avgCost  decimal.Decimal
}

func (t *costTracker) buy(quantity, price decimal.Decimal) {
	newQuantity := t.quantity.Add(quantity)
	if newQuantity.IsZero() {
		t.quantity = decimal.Zero
		t.avgCost = decimal.Zero
		return
	}
	totalCost := t.quantity.Mul(t.avgCost).Add(quantity.Mul(price))
	t.avgCost = totalCost.Div(newQuantity)
	t.quantity = newQuantity
}

// sell reduces the position and returns the realized gain for the lot.
func (t *costTracker) sell(quantity, price decimal.Decimal) (decimal.Decimal, error) {
	if quantity.GreaterThan(t.quantity) {
		return decimal.Decimal{}, &OversellError{Requested: quantity, Held: t.quantity}
	}
	gain := price.Sub(t.avgCost).Mul(quantity)
	t.quantity = t.quantity.Sub(quantity)
	// A full exit keeps the average on record; the next buy from a
	// zero quantity re-derives it from scratch anyway.
	return gain, nil
}

// sortTransactions orders transactions chronologically, ties broken by
// insertion id so same-day trades replay in entry order.
func sortTransactions(transactions []*models.Transaction) []*models.Transaction {
	ordered := make([]*models.Transaction, len(transactions))
	copy(ordered, transactions)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].TransactionDate.Equal(ordered[j].TransactionDate) {
			return ordered[i].TransactionDate.Before(ordered[j].TransactionDate)
		}
		return ordered[i].ID < ordered[j].ID
	})
	return ordered
}

// ComputeHolding replays a symbol's transactions under average cost
// basis and returns the resulting open position plus every realized
// gain along the way.
func ComputeHolding(transactions []*models.Transaction) (*schemas.HoldingPosition, []*schemas.RealizedGain, error) {
	ordered := sortTransactions(transactions)

	tracker := &costTracker{}
	gains := []*schemas.RealizedGain{}
	position := &schemas.HoldingPosition{}

	for _, tx := range ordered {
		if position.Symbol == "" {
			position.Symbol = tx.Symbol
		}
		if position.FirstPurchaseDate.IsZero() && tx.TransactionType == models.TransactionTypeBuy {
			position.FirstPurchaseDate = tx.TransactionDate
		}

		switch tx.TransactionType {
		case models.TransactionTypeBuy:
			tracker.buy(tx.Quantity, tx.PricePerUnit)
		case models.TransactionTypeSell:
			avgAtSale := tracker.avgCost
			gain, err := tracker.sell(tx.Quantity, tx.PricePerUnit)
			if err != nil {
				if oversell, ok := err.(*OversellError); ok {
					oversell.Symbol = tx.Symbol
				}
				return nil, nil, err
			}
			costBasis := tx.Quantity.Mul(avgAtSale)
			gainPercent := 0.0
			if !costBasis.IsZero() {
				gainPercent, _ = gain.Div(costBasis).Mul(decimal.NewFromInt(100)).Float64()
			}
			gains = append(gains, &schemas.RealizedGain{
				TransactionID:           tx.ID,
				Symbol:                  tx.Symbol,
				SellDate:                tx.TransactionDate,
				QuantitySold:            tx.Quantity,
				SellPrice:               tx.PricePerUnit,
				SellAmount:              tx.Quantity.Mul(tx.PricePerUnit),
				AverageCostBasis:        avgAtSale,
				CostBasisTotal:          costBasis,
				RealizedGainLoss:        gain,
				RealizedGainLossPercent: gainPercent,
			})
		default:
			return nil, nil, fmt.Errorf("unknown transaction type %q for %s", tx.TransactionType, tx.Symbol)
		}
	}

	position.Quantity = tracker.quantity
	position.AverageCost = tracker.avgCost
	return position, gains, nil
}

package services

import (
	"github.com/gmgifpe/asset-tracker/src/models"
	"github.com/gmgifpe/asset-tracker/src/schemas"

	"github.com/shopspring/decimal"
)

// Default tax rates by country code. OTHER carries no preset and the
// caller must supply a custom rate.
var taxPresets = map[string]*decimal.Decimal{
	"TW":    decimalPtr(decimal.NewFromInt(40)),
	"US":    decimalPtr(decimal.NewFromInt(37)),
	"HK":    decimalPtr(decimal.NewFromInt(17)),
	"SG":    decimalPtr(decimal.NewFromInt(22)),
	"OTHER": nil,
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// TaxPresets returns the built-in country rates in a stable order.
func TaxPresets() []schemas.TaxPreset {
	presets := make([]schemas.TaxPreset, 0, len(taxPresets))
	for _, country := range []string{"TW", "US", "HK", "SG", "OTHER"} {
		rate := taxPresets[country]
		if rate != nil {
			copied := *rate
			rate = &copied
		}
		presets = append(presets, schemas.TaxPreset{Country: country, Rate: rate})
	}
	return presets
}

// TaxPresetFor returns the default rate for a country, nil when the
// country has no preset.
func TaxPresetFor(country string) *decimal.Decimal {
	rate, ok := taxPresets[country]
	if !ok || rate == nil {
		return nil
	}
	copied := *rate
	return &copied
}

// EquityTax is the tax picture for one equity-compensation asset.
type EquityTax struct {
	// CurrentLiability taxes income already triggered by an exercise
	// or a recorded vest.
	CurrentLiability decimal.Decimal
	// PotentialLiability estimates the tax if the asset were
	// exercised or vested at the current market price.
	PotentialLiability decimal.Decimal
}

// ComputeEquityTax evaluates the tax liabilities of an equity grant.
// Only options and RSUs are taxed; ESPP shares just carry their market
// value. Exercised options and vests with a recorded market price
// produce a current liability, everything else only a potential one.
func ComputeEquityTax(asset *models.Asset) EquityTax {
	if asset.TaxRate == nil {
		return EquityTax{}
	}
	rate := asset.TaxRate.Div(decimal.NewFromInt(100))

	switch asset.AssetType {
	case models.AssetTypeStockOption:
		strike := decimal.Zero
		if asset.StrikePrice != nil {
			strike = *asset.StrikePrice
		}
		if asset.Status == models.StatusExercised && asset.ExercisePrice != nil {
			spread := decimal.Max(asset.ExercisePrice.Sub(strike), decimal.Zero)
			return EquityTax{CurrentLiability: rate.Mul(spread).Mul(asset.Quantity)}
		}
		spread := decimal.Max(asset.CurrentPrice.Sub(strike), decimal.Zero)
		return EquityTax{PotentialLiability: rate.Mul(spread).Mul(asset.Quantity)}

	case models.AssetTypeRSU:
		if asset.Status == models.StatusVested && asset.VestMarketPrice != nil {
			return EquityTax{CurrentLiability: rate.Mul(*asset.VestMarketPrice).Mul(asset.Quantity)}
		}
		return EquityTax{PotentialLiability: rate.Mul(asset.CurrentPrice).Mul(asset.Quantity)}
	}
	return EquityTax{}
}

// Moneyness classifies an option against the current market price:
// in_the_money, at_the_money or out_of_the_money. Non-options return
// an empty string.
func Moneyness(asset *models.Asset) string {
	if asset.AssetType != models.AssetTypeStockOption || asset.StrikePrice == nil {
		return ""
	}
	switch asset.CurrentPrice.Cmp(*asset.StrikePrice) {
	case 1:
		return "in_the_money"
	case 0:
		return "at_the_money"
	default:
		return "out_of_the_money"
	}
}

// IntrinsicValue is the value of an equity grant at the current price.
// Options are worth the spread over the strike, never negative; RSUs
// and ESPP shares are worth the full market price.
func IntrinsicValue(asset *models.Asset) decimal.Decimal {
	switch asset.AssetType {
	case models.AssetTypeStockOption:
		strike := decimal.Zero
		if asset.StrikePrice != nil {
			strike = *asset.StrikePrice
		}
		return decimal.Max(asset.CurrentPrice.Sub(strike), decimal.Zero).Mul(asset.Quantity)
	case models.AssetTypeRSU, models.AssetTypeESPP:
		return asset.CurrentPrice.Mul(asset.Quantity)
	}
	return asset.CurrentPrice.Mul(asset.Quantity)
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/gmgifpe/asset-tracker/src/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPortfolioService() (*PortfolioService, *fakeUserRepo, *fakeAccountRepo, *fakeAssetRepo, *fakeTransactionRepo) {
	users := newFakeUserRepo()
	accounts := newFakeAccountRepo()
	assets := newFakeAssetRepo()
	transactions := newFakeTransactionRepo()

	prices := &fakePriceService{prices: map[string]decimal.Decimal{
		"AAPL": decimal.NewFromInt(200),
	}}
	fxRates := &fakeFXClient{rates: map[string]decimal.Decimal{
		"TWD": decimal.NewFromFloat(0.031),
	}}

	service := NewPortfolioService(users, accounts, assets, transactions, prices, fxRates)
	return service, users, accounts, assets, transactions
}

func seedTrade(t *testing.T, repo *fakeTransactionRepo, userID uint, symbol, side string, day int, quantity, price float64) {
	t.Helper()
	err := repo.Create(context.Background(), &models.Transaction{
		UserID:          userID,
		Symbol:          symbol,
		Name:            symbol,
		AssetType:       models.AssetTypeStock,
		TransactionType: side,
		Quantity:        decimal.NewFromFloat(quantity),
		PricePerUnit:    decimal.NewFromFloat(price),
		TotalAmount:     decimal.NewFromFloat(quantity * price),
		Currency:        "USD",
		TransactionDate: time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
	}, nil)
	require.NoError(t, err)
}

func TestGetHoldings(t *testing.T) {
	ctx := context.Background()
	userID := uint(1)

	service, _, _, _, transactions := newTestPortfolioService()
	seedTrade(t, transactions, userID, "AAPL", models.TransactionTypeBuy, 1, 10, 100)
	seedTrade(t, transactions, userID, "AAPL", models.TransactionTypeBuy, 2, 10, 200)
	seedTrade(t, transactions, userID, "AAPL", models.TransactionTypeSell, 3, 5, 180)
	// A closed position must not show up.
	seedTrade(t, transactions, userID, "MSFT", models.TransactionTypeBuy, 1, 3, 400)
	seedTrade(t, transactions, userID, "MSFT", models.TransactionTypeSell, 2, 3, 410)

	holdings, err := service.GetHoldings(ctx, userID)
	require.NoError(t, err)
	require.Len(t, holdings, 1)

	aapl := holdings[0]
	assert.Equal(t, "AAPL", aapl.Symbol)
	assert.True(t, aapl.Quantity.Equal(decimal.NewFromInt(15)))
	assert.True(t, aapl.AverageCost.Equal(decimal.NewFromInt(150)))
	assert.True(t, aapl.CurrentPrice.Equal(decimal.NewFromInt(200)), "live quote is used")
	assert.True(t, aapl.CurrentValue.Equal(decimal.NewFromInt(3000)))
	assert.True(t, aapl.UnrealizedGainLoss.Equal(decimal.NewFromInt(750)))
	assert.InDelta(t, 33.33, aapl.UnrealizedGainLossPercent, 0.01)
}

func TestGetHoldingsFallsBackWithoutQuote(t *testing.T) {
	ctx := context.Background()
	userID := uint(1)

	service, _, _, assets, transactions := newTestPortfolioService()
	seedTrade(t, transactions, userID, "TSLA", models.TransactionTypeBuy, 1, 2, 300)

	// No quote for TSLA; a stored asset price fills in.
	require.NoError(t, assets.Create(ctx, &models.Asset{
		UserID:       userID,
		Symbol:       "TSLA",
		Name:         "Tesla",
		AssetType:    models.AssetTypeStock,
		Quantity:     decimal.NewFromInt(2),
		CurrentPrice: decimal.NewFromInt(250),
	}, nil))

	holdings, err := service.GetHoldings(ctx, userID)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.True(t, holdings[0].CurrentPrice.Equal(decimal.NewFromInt(250)))
}

func TestGetRealizedGains(t *testing.T) {
	ctx := context.Background()
	userID := uint(1)

	service, _, _, _, transactions := newTestPortfolioService()
	seedTrade(t, transactions, userID, "AAPL", models.TransactionTypeBuy, 1, 10, 100)
	seedTrade(t, transactions, userID, "AAPL", models.TransactionTypeSell, 5, 5, 120)
	seedTrade(t, transactions, userID, "MSFT", models.TransactionTypeBuy, 2, 4, 400)
	seedTrade(t, transactions, userID, "MSFT", models.TransactionTypeSell, 10, 4, 390)

	gains, err := service.GetRealizedGains(ctx, userID)
	require.NoError(t, err)
	require.Len(t, gains, 2)

	// Newest sale first.
	assert.Equal(t, "MSFT", gains[0].Symbol)
	assert.True(t, gains[0].RealizedGainLoss.Equal(decimal.NewFromInt(-40)))
	assert.Equal(t, "AAPL", gains[1].Symbol)
	assert.True(t, gains[1].RealizedGainLoss.Equal(decimal.NewFromInt(100)))
}

func TestGetTransactionSummary(t *testing.T) {
	ctx := context.Background()
	userID := uint(1)

	service, _, _, _, transactions := newTestPortfolioService()
	seedTrade(t, transactions, userID, "AAPL", models.TransactionTypeBuy, 1, 10, 100)
	seedTrade(t, transactions, userID, "AAPL", models.TransactionTypeBuy, 2, 10, 200)
	seedTrade(t, transactions, userID, "AAPL", models.TransactionTypeSell, 3, 5, 180)

	summaries, err := service.GetTransactionSummary(ctx, userID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	summary := summaries[0]
	assert.Equal(t, "AAPL", summary.Symbol)
	assert.Equal(t, 3, summary.TransactionCount)
	assert.True(t, summary.TotalBuyQuantity.Equal(decimal.NewFromInt(20)))
	assert.True(t, summary.TotalSellQuantity.Equal(decimal.NewFromInt(5)))
	assert.True(t, summary.TotalBuyAmount.Equal(decimal.NewFromInt(3000)))
	assert.True(t, summary.TotalSellAmount.Equal(decimal.NewFromInt(900)))
	assert.True(t, summary.CurrentHoldings.Equal(decimal.NewFromInt(15)))
	assert.True(t, summary.AverageCostBasis.Equal(decimal.NewFromInt(150)))
	assert.True(t, summary.RealizedGainLoss.Equal(decimal.NewFromInt(150)))

	require.Len(t, summary.Transactions, 3)
	sell := summary.Transactions[2]
	require.NotNil(t, sell.RealizedGainLoss)
	assert.True(t, sell.RealizedGainLoss.Equal(decimal.NewFromInt(150)))
	assert.Nil(t, summary.Transactions[0].RealizedGainLoss, "buys carry no realized figure")
}

func TestGetPortfolioSummary(t *testing.T) {
	ctx := context.Background()
	userID := uint(1)

	service, _, accounts, assets, _ := newTestPortfolioService()

	broker := &models.Account{UserID: userID, Name: "Broker", AccountType: models.AccountTypeBrokerage, Currency: "USD"}
	require.NoError(t, accounts.Create(ctx, broker, nil))

	require.NoError(t, assets.Create(ctx, &models.Asset{
		UserID: userID, AccountID: &broker.ID,
		Symbol: "AAPL", Name: "Apple", AssetType: models.AssetTypeStock,
		Quantity: decimal.NewFromInt(10), PurchasePrice: decimal.NewFromInt(150),
		CurrentPrice: decimal.NewFromInt(200), Currency: "USD",
	}, nil))
	// TWD cash converts at 0.031.
	require.NoError(t, assets.Create(ctx, &models.Asset{
		UserID: userID,
		Symbol: "TWD-CASH", Name: "Cash", AssetType: models.AssetTypeCash,
		Quantity: decimal.NewFromInt(100000), PurchasePrice: decimal.NewFromInt(1),
		CurrentPrice: decimal.NewFromInt(1), Currency: "TWD",
	}, nil))

	summary, err := service.GetPortfolioSummary(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.AssetCount)
	assert.Equal(t, "USD", summary.BaseCurrency)

	// 10*200 + 100000*0.031 = 2000 + 3100
	assert.True(t, summary.TotalValue.Equal(decimal.NewFromInt(5100)),
		"expected 5100, got %s", summary.TotalValue)
	assert.True(t, summary.TotalCost.Equal(decimal.NewFromInt(4600)))

	assert.True(t, summary.AssetDistribution[models.AssetTypeStock].Equal(decimal.NewFromInt(2000)))
	assert.True(t, summary.AssetDistribution[models.AssetTypeCash].Equal(decimal.NewFromInt(3100)))
	assert.True(t, summary.AccountDistribution["Broker"].Equal(decimal.NewFromInt(2000)))
	assert.True(t, summary.AccountDistribution["No Account"].Equal(decimal.NewFromInt(3100)))
	assert.True(t, summary.StockDistribution["AAPL"].Equal(decimal.NewFromInt(2000)))
	assert.True(t, summary.StockDistribution["TWD-CASH"].Equal(decimal.NewFromInt(3100)))
}

func TestGetPortfolioSummaryUnknownCurrencyDegrades(t *testing.T) {
	ctx := context.Background()
	userID := uint(1)

	service, _, _, assets, _ := newTestPortfolioService()
	require.NoError(t, assets.Create(ctx, &models.Asset{
		UserID: userID,
		Symbol: "GOLD", Name: "Gold", AssetType: models.AssetTypeCommodity,
		Quantity: decimal.NewFromInt(1), PurchasePrice: decimal.NewFromInt(1000),
		CurrentPrice: decimal.NewFromInt(1100), Currency: "XAU",
	}, nil))

	summary, err := service.GetPortfolioSummary(ctx, userID)
	require.NoError(t, err)

	// Unknown currency counts 1:1 and surfaces a warning.
	assert.True(t, summary.TotalValue.Equal(decimal.NewFromInt(1100)))
	assert.NotEmpty(t, summary.Warnings)
}

func TestGetPortfolioMetrics(t *testing.T) {
	ctx := context.Background()
	userID := uint(1)

	service, _, _, assets, _ := newTestPortfolioService()
	now := time.Now().UTC()

	require.NoError(t, assets.Create(ctx, &models.Asset{
		UserID: userID, Symbol: "WIN", Name: "Winner", AssetType: models.AssetTypeStock,
		Quantity: decimal.NewFromInt(10), PurchasePrice: decimal.NewFromInt(100),
		CurrentPrice: decimal.NewFromInt(150), Currency: "USD",
		PurchaseDate: now.AddDate(0, 0, -100),
	}, nil))
	require.NoError(t, assets.Create(ctx, &models.Asset{
		UserID: userID, Symbol: "LOSE", Name: "Loser", AssetType: models.AssetTypeCrypto,
		Quantity: decimal.NewFromInt(10), PurchasePrice: decimal.NewFromInt(100),
		CurrentPrice: decimal.NewFromInt(80), Currency: "USD",
		PurchaseDate: now.AddDate(0, 0, -50),
	}, nil))

	metrics, err := service.GetPortfolioMetrics(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, 2, metrics.TotalAssets)
	require.NotNil(t, metrics.BestPerformer)
	assert.Equal(t, "WIN", metrics.BestPerformer.Symbol)
	require.NotNil(t, metrics.WorstPerformer)
	assert.Equal(t, "LOSE", metrics.WorstPerformer.Symbol)
	assert.Equal(t, 20, metrics.DiversificationScore)
	assert.Equal(t, 75, metrics.AvgDaysHeld)
}

func TestConvertCurrency(t *testing.T) {
	ctx := context.Background()
	service, _, _, _, _ := newTestPortfolioService()

	res, err := service.ConvertCurrency(ctx, decimal.NewFromInt(1000), "TWD", "USD")
	require.NoError(t, err)
	assert.True(t, res.ConvertedAmount.Equal(decimal.NewFromInt(31)),
		"expected 31, got %s", res.ConvertedAmount)
	assert.Equal(t, "TWD", res.FromCurrency)
	assert.Equal(t, "USD", res.ToCurrency)

	_, err = service.ConvertCurrency(ctx, decimal.NewFromInt(1), "XXX", "USD")
	assert.Error(t, err)
}

func TestGetBackup(t *testing.T) {
	ctx := context.Background()

	service, users, accounts, assets, transactions := newTestPortfolioService()
	user := &models.User{Username: "kate", Email: "kate@example.com", PasswordHash: "x"}
	require.NoError(t, users.Create(user))

	require.NoError(t, accounts.Create(ctx, &models.Account{
		UserID: user.ID, Name: "Broker", AccountType: models.AccountTypeBrokerage, Currency: "USD",
	}, nil))
	require.NoError(t, assets.Create(ctx, &models.Asset{
		UserID: user.ID, Symbol: "AAPL", Name: "Apple", AssetType: models.AssetTypeStock,
		Quantity: decimal.NewFromInt(1), PurchasePrice: decimal.NewFromInt(100), Currency: "USD",
	}, nil))
	seedTrade(t, transactions, user.ID, "AAPL", models.TransactionTypeBuy, 1, 1, 100)

	backup, err := service.GetBackup(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "kate", backup.User.Username)
	assert.Len(t, backup.Accounts, 1)
	assert.Len(t, backup.Assets, 1)
	assert.Len(t, backup.Transactions, 1)
	assert.False(t, backup.ExportDate.IsZero())

	_, err = service.GetBackup(ctx, 999)
	assert.Error(t, err, "unknown user")
}

func TestGetPortfolioSummaryStockDistribution(t *testing.T) {
	ctx := context.Background()
	userID := uint(1)
	strike := decimal.NewFromInt(10)

	service, _, _, assets, _ := newTestPortfolioService()
	require.NoError(t, assets.Create(ctx, &models.Asset{
		UserID: userID, Symbol: "AAPL", Name: "Apple", AssetType: models.AssetTypeStock,
		Quantity: decimal.NewFromInt(10), PurchasePrice: decimal.NewFromInt(100),
		CurrentPrice: decimal.NewFromInt(200), Currency: "USD",
	}, nil))
	require.NoError(t, assets.Create(ctx, &models.Asset{
		UserID: userID, Symbol: "HOUSE", Name: "House", AssetType: models.AssetTypeRealEstate,
		Quantity: decimal.NewFromInt(1), PurchasePrice: decimal.NewFromInt(400000),
		CurrentPrice: decimal.NewFromInt(500000), Currency: "USD",
	}, nil))
	require.NoError(t, assets.Create(ctx, &models.Asset{
		UserID: userID, Symbol: "ACME-OPT", Name: "Options", AssetType: models.AssetTypeStockOption,
		Quantity: decimal.NewFromInt(100), StrikePrice: &strike,
		CurrentPrice: decimal.NewFromInt(80), Currency: "USD",
	}, nil))

	summary, err := service.GetPortfolioSummary(ctx, userID)
	require.NoError(t, err)

	// Every holding shows up by symbol except equity compensation.
	assert.True(t, summary.StockDistribution["AAPL"].Equal(decimal.NewFromInt(2000)))
	assert.True(t, summary.StockDistribution["HOUSE"].Equal(decimal.NewFromInt(500000)))
	assert.NotContains(t, summary.StockDistribution, "ACME-OPT")
}

func TestAssetToResponseOptionGain(t *testing.T) {
	strike := decimal.NewFromInt(10)
	asset := &models.Asset{
		AssetType: models.AssetTypeStockOption,
		Symbol:    "ACME-OPT", Name: "Options",
		Quantity: decimal.NewFromInt(100), StrikePrice: &strike,
		CurrentPrice: decimal.NewFromInt(80),
	}

	res := AssetToResponse(asset, nil)

	// Options report the whole intrinsic value as gain, measured
	// against the strike.
	assert.True(t, res.TotalValue.Equal(decimal.NewFromInt(7000)))
	assert.True(t, res.GainLoss.Equal(decimal.NewFromInt(7000)))
	assert.InDelta(t, 700.0, res.GainLossPercent, 0.001)
	assert.Equal(t, "in_the_money", res.Moneyness)
}

func TestAssetCostBasis(t *testing.T) {
	strike := decimal.NewFromInt(50)
	fmv := decimal.NewFromInt(120)

	t.Run("options measure against strike", func(t *testing.T) {
		cost := assetCostBasis(&models.Asset{
			AssetType: models.AssetTypeStockOption,
			Quantity:  decimal.NewFromInt(100), StrikePrice: &strike,
			PurchasePrice: decimal.NewFromInt(1),
		})
		assert.True(t, cost.Equal(decimal.NewFromInt(5000)))
	})

	t.Run("options without a strike have zero cost basis", func(t *testing.T) {
		cost := assetCostBasis(&models.Asset{
			AssetType: models.AssetTypeStockOption,
			Quantity:  decimal.NewFromInt(100), PurchasePrice: decimal.NewFromInt(1),
		})
		assert.True(t, cost.IsZero())
	})

	t.Run("rsus prefer vest fmv", func(t *testing.T) {
		cost := assetCostBasis(&models.Asset{
			AssetType: models.AssetTypeRSU,
			Quantity:  decimal.NewFromInt(10), VestFMV: &fmv,
			PurchasePrice: decimal.NewFromInt(1),
		})
		assert.True(t, cost.Equal(decimal.NewFromInt(1200)))
	})

	t.Run("plain assets use purchase price", func(t *testing.T) {
		cost := assetCostBasis(&models.Asset{
			AssetType: models.AssetTypeStock,
			Quantity:  decimal.NewFromInt(10), PurchasePrice: decimal.NewFromInt(100),
		})
		assert.True(t, cost.Equal(decimal.NewFromInt(1000)))
	})
}

package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gmgifpe/asset-tracker/src/clients/fx"
	"github.com/gmgifpe/asset-tracker/src/models"
	"github.com/gmgifpe/asset-tracker/src/repositories"
	"github.com/gmgifpe/asset-tracker/src/schemas"
	"github.com/gmgifpe/asset-tracker/src/utils"

	"github.com/shopspring/decimal"
)

type PortfolioServiceI interface {
	GetHoldings(ctx context.Context, userID uint) ([]*schemas.HoldingSummary, error)
	GetRealizedGains(ctx context.Context, userID uint) ([]*schemas.RealizedGain, error)
	GetTransactionSummary(ctx context.Context, userID uint) ([]*schemas.TransactionSummary, error)
	GetPortfolioSummary(ctx context.Context, userID uint) (*schemas.PortfolioSummary, error)
	GetAssetPerformance(ctx context.Context, userID uint) ([]*schemas.AssetPerformance, error)
	GetPortfolioMetrics(ctx context.Context, userID uint) (*schemas.PortfolioMetrics, error)
	ConvertCurrency(ctx context.Context, amount decimal.Decimal, from, to string) (*schemas.CurrencyConversionResponse, error)
	GetBackup(ctx context.Context, userID uint) (*schemas.BackupData, error)
}

type PortfolioService struct {
	usersRepo        repositories.UserRepository
	accountsRepo     repositories.AccountRepository
	assetsRepo       repositories.AssetRepository
	transactionsRepo repositories.TransactionRepository
	priceService     PriceServiceI
	fxClient         fx.FXClientI
}

func NewPortfolioService(
	usersRepo repositories.UserRepository,
	accountsRepo repositories.AccountRepository,
	assetsRepo repositories.AssetRepository,
	transactionsRepo repositories.TransactionRepository,
	priceService PriceServiceI,
	fxClient fx.FXClientI,
) *PortfolioService {
	return &PortfolioService{
		usersRepo:        usersRepo,
		accountsRepo:     accountsRepo,
		assetsRepo:       assetsRepo,
		transactionsRepo: transactionsRepo,
		priceService:     priceService,
		fxClient:         fxClient,
	}
}

// symbolGroup is a symbol's transactions with the descriptive fields of
// its first occurrence.
type symbolGroup struct {
	symbol       string
	name         string
	assetType    string
	transactions []*models.Transaction
}

func groupBySymbol(transactions []models.Transaction) []*symbolGroup {
	bySymbol := map[string]*symbolGroup{}
	order := []string{}
	for i := range transactions {
		tx := &transactions[i]
		group, ok := bySymbol[tx.Symbol]
		if !ok {
			group = &symbolGroup{symbol: tx.Symbol, name: tx.Name, assetType: tx.AssetType}
			bySymbol[tx.Symbol] = group
			order = append(order, tx.Symbol)
		}
		group.transactions = append(group.transactions, tx)
	}
	sort.Strings(order)

	groups := make([]*symbolGroup, 0, len(order))
	for _, symbol := range order {
		groups = append(groups, bySymbol[symbol])
	}
	return groups
}

// GetHoldings replays all transactions into open positions and values
// them at the current market price. Price lookups degrade to the last
// stored asset price rather than failing the whole listing.
func (s *PortfolioService) GetHoldings(ctx context.Context, userID uint) ([]*schemas.HoldingSummary, error) {
	transactions, err := s.transactionsRepo.GetAllByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	holdings := []*schemas.HoldingSummary{}
	for _, group := range groupBySymbol(transactions) {
		position, _, err := ComputeHolding(group.transactions)
		if err != nil {
			return nil, err
		}
		if !position.Quantity.IsPositive() {
			continue
		}

		currentPrice := s.resolvePrice(ctx, userID, group.symbol, group.assetType, position.AverageCost)
		currentValue := currentPrice.Mul(position.Quantity)
		totalCost := position.AverageCost.Mul(position.Quantity)
		unrealized := currentValue.Sub(totalCost)
		unrealizedPercent := 0.0
		if !totalCost.IsZero() {
			unrealizedPercent, _ = unrealized.Div(totalCost).Mul(decimal.NewFromInt(100)).Float64()
		}

		holdings = append(holdings, &schemas.HoldingSummary{
			Symbol:                    group.symbol,
			Name:                      group.name,
			AssetType:                 group.assetType,
			Quantity:                  position.Quantity,
			AverageCost:               position.AverageCost,
			CurrentPrice:              currentPrice,
			CurrentValue:              currentValue,
			UnrealizedGainLoss:        unrealized,
			UnrealizedGainLossPercent: unrealizedPercent,
		})
	}
	return holdings, nil
}

// resolvePrice finds the best available price for a symbol: live quote,
// then the stored asset price, then the average cost itself.
func (s *PortfolioService) resolvePrice(ctx context.Context, userID uint, symbol, assetType string, avgCost decimal.Decimal) decimal.Decimal {
	logger := utils.LoggerFromContext(ctx)

	if assetType == models.AssetTypeStock || assetType == models.AssetTypeCrypto {
		quote, _, err := s.priceService.GetPrice(ctx, symbol, assetType)
		if err == nil {
			return quote.Price
		}
		logger.Warnf("no live price for %s: %v", symbol, err)
	}

	asset, err := s.assetsRepo.GetByUserSymbol(ctx, userID, symbol)
	if err == nil && asset != nil && asset.CurrentPrice.IsPositive() {
		return asset.CurrentPrice
	}
	return avgCost
}

// GetRealizedGains returns every realized sale across all symbols,
// newest first.
func (s *PortfolioService) GetRealizedGains(ctx context.Context, userID uint) ([]*schemas.RealizedGain, error) {
	transactions, err := s.transactionsRepo.GetAllByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	allGains := []*schemas.RealizedGain{}
	for _, group := range groupBySymbol(transactions) {
		_, gains, err := ComputeHolding(group.transactions)
		if err != nil {
			return nil, err
		}
		for _, gain := range gains {
			gain.Name = group.name
		}
		allGains = append(allGains, gains...)
	}

	sort.SliceStable(allGains, func(i, j int) bool {
		return allGains[i].SellDate.After(allGains[j].SellDate)
	})
	return allGains, nil
}

// GetTransactionSummary aggregates each symbol's full trade history
// with realized figures attached to the sells.
func (s *PortfolioService) GetTransactionSummary(ctx context.Context, userID uint) ([]*schemas.TransactionSummary, error) {
	transactions, err := s.transactionsRepo.GetAllByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := []*schemas.TransactionSummary{}
	for _, group := range groupBySymbol(transactions) {
		position, gains, err := ComputeHolding(group.transactions)
		if err != nil {
			return nil, err
		}

		gainByTransaction := map[int]decimal.Decimal{}
		totalRealized := decimal.Zero
		for _, gain := range gains {
			gainByTransaction[gain.TransactionID] = gain.RealizedGainLoss
			totalRealized = totalRealized.Add(gain.RealizedGainLoss)
		}

		summary := &schemas.TransactionSummary{
			Symbol:            group.symbol,
			Name:              group.name,
			CurrentHoldings:   position.Quantity,
			AverageCostBasis:  position.AverageCost,
			RealizedGainLoss:  totalRealized,
			FirstPurchaseDate: position.FirstPurchaseDate,
			Transactions:      []schemas.SummarizedTransaction{},
		}

		for _, tx := range sortTransactions(group.transactions) {
			summarized := schemas.SummarizedTransaction{
				ID:              tx.ID,
				TransactionType: tx.TransactionType,
				Quantity:        tx.Quantity,
				PricePerUnit:    tx.PricePerUnit,
				TotalAmount:     tx.TotalAmount,
				TransactionDate: tx.TransactionDate,
				Notes:           tx.Notes,
			}
			switch tx.TransactionType {
			case models.TransactionTypeBuy:
				summary.TotalBuyQuantity = summary.TotalBuyQuantity.Add(tx.Quantity)
				summary.TotalBuyAmount = summary.TotalBuyAmount.Add(tx.TotalAmount)
			case models.TransactionTypeSell:
				summary.TotalSellQuantity = summary.TotalSellQuantity.Add(tx.Quantity)
				summary.TotalSellAmount = summary.TotalSellAmount.Add(tx.TotalAmount)
				if gain, ok := gainByTransaction[tx.ID]; ok {
					realized := gain
					summarized.RealizedGainLoss = &realized
				}
			}
			summary.TransactionCount++
			summary.Transactions = append(summary.Transactions, summarized)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// GetPortfolioSummary totals the asset list in USD and breaks the value
// down by asset type, account and symbol. FX failures degrade to 1:1
// with a warning instead of failing the endpoint.
func (s *PortfolioService) GetPortfolioSummary(ctx context.Context, userID uint) (*schemas.PortfolioSummary, error) {
	assets, err := s.assetsRepo.GetAllByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	accountNames, err := s.accountNames(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &schemas.PortfolioSummary{
		AssetDistribution:   map[string]decimal.Decimal{},
		AccountDistribution: map[string]decimal.Decimal{},
		StockDistribution:   map[string]decimal.Decimal{},
		BaseCurrency:        "USD",
		AssetCount:          len(assets),
	}

	for i := range assets {
		asset := &assets[i]
		value := assetValue(asset)
		cost := assetCostBasis(asset)

		valueUSD, stale := s.toUSD(ctx, value, asset.Currency)
		costUSD, _ := s.toUSD(ctx, cost, asset.Currency)
		if stale {
			summary.Warnings = appendOnce(summary.Warnings,
				fmt.Sprintf("stale exchange rate used for %s", asset.Currency))
		}

		summary.TotalValue = summary.TotalValue.Add(valueUSD)
		summary.TotalCost = summary.TotalCost.Add(costUSD)

		summary.AssetDistribution[asset.AssetType] = summary.AssetDistribution[asset.AssetType].Add(valueUSD)

		accountName := "No Account"
		if asset.AccountID != nil {
			if name, ok := accountNames[*asset.AccountID]; ok {
				accountName = name
			}
		}
		summary.AccountDistribution[accountName] = summary.AccountDistribution[accountName].Add(valueUSD)

		if !asset.IsEquityCompensation() {
			summary.StockDistribution[asset.Symbol] = summary.StockDistribution[asset.Symbol].Add(valueUSD)
		}
	}

	summary.TotalGainLoss = summary.TotalValue.Sub(summary.TotalCost)
	if !summary.TotalCost.IsZero() {
		summary.TotalGainLossPercent, _ = summary.TotalGainLoss.Div(summary.TotalCost).Mul(decimal.NewFromInt(100)).Float64()
	}
	return summary, nil
}

func (s *PortfolioService) GetAssetPerformance(ctx context.Context, userID uint) ([]*schemas.AssetPerformance, error) {
	assets, err := s.assetsRepo.GetAllByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	totalValue := decimal.Zero
	for i := range assets {
		totalValue = totalValue.Add(assetValue(&assets[i]))
	}

	now := time.Now().UTC()
	performances := make([]*schemas.AssetPerformance, 0, len(assets))
	for i := range assets {
		asset := &assets[i]
		value := assetValue(asset)
		cost := assetCostBasis(asset)
		gainLoss := assetGainLoss(asset, value, cost)

		gainPercent := 0.0
		if !cost.IsZero() {
			gainPercent, _ = gainLoss.Div(cost).Mul(decimal.NewFromInt(100)).Float64()
		}

		daysHeld := utils.DaysHeld(asset.PurchaseDate, now)
		annualReturn := 0.0
		if daysHeld > 0 {
			annualReturn = gainPercent / float64(daysHeld) * 365
		}

		allocation := 0.0
		if !totalValue.IsZero() {
			allocation, _ = value.Div(totalValue).Mul(decimal.NewFromInt(100)).Float64()
		}

		performances = append(performances, &schemas.AssetPerformance{
			ID:                asset.ID,
			Symbol:            asset.Symbol,
			Name:              asset.Name,
			AssetType:         asset.AssetType,
			TotalValue:        value,
			GainLoss:          gainLoss,
			GainLossPercent:   gainPercent,
			DaysHeld:          daysHeld,
			AnnualReturn:      annualReturn,
			AllocationPercent: allocation,
		})
	}

	sort.SliceStable(performances, func(i, j int) bool {
		return performances[i].GainLossPercent > performances[j].GainLossPercent
	})
	return performances, nil
}

func (s *PortfolioService) GetPortfolioMetrics(ctx context.Context, userID uint) (*schemas.PortfolioMetrics, error) {
	performances, err := s.GetAssetPerformance(ctx, userID)
	if err != nil {
		return nil, err
	}

	metrics := &schemas.PortfolioMetrics{
		TotalAssets:  len(performances),
		BaseCurrency: "USD",
	}
	if len(performances) == 0 {
		return metrics, nil
	}

	totalDays := 0
	assetTypes := map[string]bool{}
	for _, p := range performances {
		metrics.TotalValue = metrics.TotalValue.Add(p.TotalValue)
		metrics.TotalCost = metrics.TotalCost.Add(p.TotalValue.Sub(p.GainLoss))
		totalDays += p.DaysHeld
		assetTypes[p.AssetType] = true
	}
	metrics.TotalGainLoss = metrics.TotalValue.Sub(metrics.TotalCost)
	if !metrics.TotalCost.IsZero() {
		metrics.TotalGainLossPercent, _ = metrics.TotalGainLoss.Div(metrics.TotalCost).Mul(decimal.NewFromInt(100)).Float64()
	}
	metrics.AvgDaysHeld = totalDays / len(performances)

	best := performances[0]
	worst := performances[len(performances)-1]
	metrics.BestPerformer = &schemas.PerformerSummary{
		Symbol:      best.Symbol,
		Name:        best.Name,
		GainPercent: best.GainLossPercent,
	}
	metrics.WorstPerformer = &schemas.PerformerSummary{
		Symbol:      worst.Symbol,
		Name:        worst.Name,
		GainPercent: worst.GainLossPercent,
	}

	// Ten distinct asset types score 100.
	score := len(assetTypes) * 10
	if score > 100 {
		score = 100
	}
	metrics.DiversificationScore = score
	return metrics, nil
}

func (s *PortfolioService) ConvertCurrency(ctx context.Context, amount decimal.Decimal, from, to string) (*schemas.CurrencyConversionResponse, error) {
	converted, _, err := s.fxClient.Convert(ctx, amount, from, to)
	if err != nil {
		return nil, utils.ServiceUnavailable(fmt.Sprintf("currency conversion unavailable: %v", err))
	}

	rate := decimal.NewFromInt(1)
	if !amount.IsZero() {
		rate = converted.Div(amount)
	}
	return &schemas.CurrencyConversionResponse{
		FromCurrency:    from,
		ToCurrency:      to,
		OriginalAmount:  amount,
		ConvertedAmount: converted,
		ExchangeRate:    rate,
	}, nil
}

// GetBackup bundles all of a user's records for export.
func (s *PortfolioService) GetBackup(ctx context.Context, userID uint) (*schemas.BackupData, error) {
	user, err := s.usersRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.NotFound("user not found")
	}

	accounts, err := s.accountsRepo.GetAllByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	assets, err := s.assetsRepo.GetAllByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	transactions, err := s.transactionsRepo.GetAllByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	accountNames, err := s.accountNames(ctx, userID)
	if err != nil {
		return nil, err
	}

	backup := &schemas.BackupData{
		User: schemas.UserResponse{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		},
		Accounts:     []schemas.AccountResponse{},
		Assets:       []schemas.AssetResponse{},
		Transactions: []schemas.TransactionResponse{},
		ExportDate:   time.Now().UTC(),
	}
	for _, account := range accounts {
		backup.Accounts = append(backup.Accounts, schemas.AccountResponse{
			ID:          account.ID,
			Name:        account.Name,
			AccountType: account.AccountType,
			Currency:    account.Currency,
			CreatedAt:   account.CreatedAt,
		})
	}
	for i := range assets {
		backup.Assets = append(backup.Assets, *AssetToResponse(&assets[i], accountNames))
	}
	for i := range transactions {
		backup.Transactions = append(backup.Transactions, *TransactionToResponse(&transactions[i], accountNames))
	}
	return backup, nil
}

func (s *PortfolioService) accountNames(ctx context.Context, userID uint) (map[int]string, error) {
	accounts, err := s.accountsRepo.GetAllByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(accounts))
	for _, account := range accounts {
		names[account.ID] = account.Name
	}
	return names, nil
}

func (s *PortfolioService) toUSD(ctx context.Context, amount decimal.Decimal, currency string) (decimal.Decimal, bool) {
	rate, stale, err := s.fxClient.RateToUSD(ctx, currency)
	if err != nil {
		// Unknown currency counts 1:1 rather than dropping the asset.
		return amount, true
	}
	return amount.Mul(rate), stale
}

// assetValue is the market value of one asset row, using intrinsic
// value for equity compensation.
func assetValue(asset *models.Asset) decimal.Decimal {
	if asset.IsEquityCompensation() {
		return IntrinsicValue(asset)
	}
	price := asset.CurrentPrice
	if price.IsZero() {
		price = asset.PurchasePrice
	}
	return price.Mul(asset.Quantity)
}

// assetGainLoss is the gain figure for one asset row. Options report
// the whole intrinsic value as gain (the strike is what the percent is
// measured against, not money spent); everything else is value − cost.
func assetGainLoss(asset *models.Asset, value, cost decimal.Decimal) decimal.Decimal {
	if asset.AssetType == models.AssetTypeStockOption {
		return value
	}
	return value.Sub(cost)
}

// assetCostBasis is the cost side of the gain computation: strike for
// options, vest FMV for RSUs when recorded, purchase price otherwise.
func assetCostBasis(asset *models.Asset) decimal.Decimal {
	switch asset.AssetType {
	case models.AssetTypeStockOption:
		if asset.StrikePrice != nil {
			return asset.StrikePrice.Mul(asset.Quantity)
		}
		return decimal.Zero
	case models.AssetTypeRSU:
		if asset.VestFMV != nil {
			return asset.VestFMV.Mul(asset.Quantity)
		}
	}
	return asset.PurchasePrice.Mul(asset.Quantity)
}

func appendOnce(warnings []string, warning string) []string {
	for _, existing := range warnings {
		if existing == warning {
			return warnings
		}
	}
	return append(warnings, warning)
}

// AssetToResponse builds the API view of an asset, tax liabilities and
// moneyness included.
func AssetToResponse(asset *models.Asset, accountNames map[int]string) *schemas.AssetResponse {
	value := assetValue(asset)
	cost := assetCostBasis(asset)
	gainLoss := assetGainLoss(asset, value, cost)
	gainPercent := 0.0
	if !cost.IsZero() {
		gainPercent, _ = gainLoss.Div(cost).Mul(decimal.NewFromInt(100)).Float64()
	}

	accountName := ""
	if asset.AccountID != nil {
		accountName = accountNames[*asset.AccountID]
	}

	tax := ComputeEquityTax(asset)
	return &schemas.AssetResponse{
		ID:                    asset.ID,
		AccountID:             asset.AccountID,
		AccountName:           accountName,
		Symbol:                asset.Symbol,
		Name:                  asset.Name,
		AssetType:             asset.AssetType,
		Quantity:              asset.Quantity,
		PurchasePrice:         asset.PurchasePrice,
		CurrentPrice:          asset.CurrentPrice,
		Currency:              asset.Currency,
		TotalValue:            value,
		GainLoss:              gainLoss,
		GainLossPercent:       gainPercent,
		PurchaseDate:          asset.PurchaseDate,
		Notes:                 asset.Notes,
		GrantDate:             asset.GrantDate,
		VestingDate:           asset.VestingDate,
		ExpirationDate:        asset.ExpirationDate,
		StrikePrice:           asset.StrikePrice,
		VestFMV:               asset.VestFMV,
		Status:                asset.Status,
		TaxCountry:            asset.TaxCountry,
		TaxRate:               asset.TaxRate,
		ExercisePrice:         asset.ExercisePrice,
		ExerciseDate:          asset.ExerciseDate,
		VestMarketPrice:       asset.VestMarketPrice,
		CurrentTaxLiability:   tax.CurrentLiability,
		PotentialTaxLiability: tax.PotentialLiability,
		Moneyness:             Moneyness(asset),
	}
}

// TransactionToResponse builds the API view of a transaction.
func TransactionToResponse(tx *models.Transaction, accountNames map[int]string) *schemas.TransactionResponse {
	accountName := ""
	if tx.AccountID != nil {
		accountName = accountNames[*tx.AccountID]
	}
	return &schemas.TransactionResponse{
		ID:              tx.ID,
		Symbol:          tx.Symbol,
		Name:            tx.Name,
		AssetType:       tx.AssetType,
		TransactionType: tx.TransactionType,
		Quantity:        tx.Quantity,
		PricePerUnit:    tx.PricePerUnit,
		TotalAmount:     tx.TotalAmount,
		Currency:        tx.Currency,
		TransactionDate: tx.TransactionDate,
		AccountID:       tx.AccountID,
		AccountName:     accountName,
		Notes:           tx.Notes,
	}
}

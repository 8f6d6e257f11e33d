package controllers

import (
	"context"

	"github.com/gmgifpe/asset-tracker/src/schemas"
	"github.com/gmgifpe/asset-tracker/src/services"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func (c *Controller) GetHoldings(ctx context.Context, userID uint) ([]*schemas.HoldingSummary, error) {
	return c.PortfolioService.GetHoldings(ctx, userID)
}

func (c *Controller) GetRealizedGains(ctx context.Context, userID uint) ([]*schemas.RealizedGain, error) {
	return c.PortfolioService.GetRealizedGains(ctx, userID)
}

func (c *Controller) GetPortfolioSummary(ctx context.Context, userID uint) (*schemas.PortfolioSummary, error) {
	return c.PortfolioService.GetPortfolioSummary(ctx, userID)
}

func (c *Controller) GetAssetPerformance(ctx context.Context, userID uint) ([]*schemas.AssetPerformance, error) {
	return c.PortfolioService.GetAssetPerformance(ctx, userID)
}

func (c *Controller) GetPortfolioMetrics(ctx context.Context, userID uint) (*schemas.PortfolioMetrics, error) {
	return c.PortfolioService.GetPortfolioMetrics(ctx, userID)
}

func (c *Controller) UpdatePrices(ctx context.Context, userID uint) (*schemas.UpdatePricesResponse, error) {
	return c.PriceService.RefreshUserPrices(ctx, userID)
}

func (c *Controller) ConvertCurrency(ctx context.Context, amount decimal.Decimal, from, to string) (*schemas.CurrencyConversionResponse, error) {
	return c.PortfolioService.ConvertCurrency(ctx, amount, from, to)
}

func (c *Controller) GetBackup(ctx context.Context, userID uint) (*schemas.BackupData, error) {
	return c.PortfolioService.GetBackup(ctx, userID)
}

func (c *Controller) ExportXLSX(ctx context.Context, userID uint) (*excelize.File, error) {
	return c.ExportService.GenerateXLSX(ctx, userID)
}

func (c *Controller) GetTaxPresets(ctx context.Context) []schemas.TaxPreset {
	return services.TaxPresets()
}

func (c *Controller) PreviewCSV(ctx context.Context, content []byte) (*schemas.PreviewCSVResponse, error) {
	return c.ImportService.Preview(ctx, content)
}

func (c *Controller) ImportCSV(ctx context.Context, userID uint, content []byte) (*schemas.ImportCSVResponse, error) {
	return c.ImportService.Import(ctx, userID, content)
}

package services

import (
	"context"
	"fmt"

	"github.com/gmgifpe/asset-tracker/src/repositories"
	"github.com/gmgifpe/asset-tracker/src/utils"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type ExportServiceI interface {
	GenerateXLSX(ctx context.Context, userID uint) (*excelize.File, error)
}

type ExportService struct {
	accountsRepo     repositories.AccountRepository
	assetsRepo       repositories.AssetRepository
	transactionsRepo repositories.TransactionRepository
	portfolioService PortfolioServiceI
}

func NewExportService(
	accountsRepo repositories.AccountRepository,
	assetsRepo repositories.AssetRepository,
	transactionsRepo repositories.TransactionRepository,
	portfolioService PortfolioServiceI,
) *ExportService {
	return &ExportService{
		accountsRepo:     accountsRepo,
		assetsRepo:       assetsRepo,
		transactionsRepo: transactionsRepo,
		portfolioService: portfolioService,
	}
}

// GenerateXLSX builds a workbook with an Assets, Transactions and
// Realized Gains sheet for the user.
func (s *ExportService) GenerateXLSX(ctx context.Context, userID uint) (*excelize.File, error) {
	file := excelize.NewFile()

	if err := s.writeAssetsSheet(ctx, file, userID); err != nil {
		return nil, err
	}
	if err := s.writeTransactionsSheet(ctx, file, userID); err != nil {
		return nil, err
	}
	if err := s.writeRealizedGainsSheet(ctx, file, userID); err != nil {
		return nil, err
	}
	return file, nil
}

func (s *ExportService) writeAssetsSheet(ctx context.Context, file *excelize.File, userID uint) error {
	if err := file.SetSheetName("Sheet1", "Assets"); err != nil {
		return err
	}

	assets, err := s.assetsRepo.GetAllByUserID(ctx, userID)
	if err != nil {
		return err
	}
	accounts, err := s.accountsRepo.GetAllByUserID(ctx, userID)
	if err != nil {
		return err
	}
	accountNames := map[int]string{}
	for _, account := range accounts {
		accountNames[account.ID] = account.Name
	}

	headers := []interface{}{
		"Symbol", "Name", "Type", "Account", "Quantity",
		"Purchase Price", "Current Price", "Total Value", "Gain/Loss", "Currency",
	}
	if err := file.SetSheetRow("Assets", "A1", &headers); err != nil {
		return err
	}

	for i := range assets {
		response := AssetToResponse(&assets[i], accountNames)
		row := []interface{}{
			response.Symbol,
			response.Name,
			response.AssetType,
			response.AccountName,
			decimalCell(response.Quantity),
			decimalCell(response.PurchasePrice),
			decimalCell(response.CurrentPrice),
			decimalCell(response.TotalValue),
			decimalCell(response.GainLoss),
			response.Currency,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := file.SetSheetRow("Assets", cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (s *ExportService) writeTransactionsSheet(ctx context.Context, file *excelize.File, userID uint) error {
	if _, err := file.NewSheet("Transactions"); err != nil {
		return err
	}

	transactions, err := s.transactionsRepo.GetAllByUserID(ctx, userID)
	if err != nil {
		return err
	}

	headers := []interface{}{
		"Date", "Symbol", "Name", "Type", "Quantity", "Price", "Total", "Currency", "Notes",
	}
	if err := file.SetSheetRow("Transactions", "A1", &headers); err != nil {
		return err
	}

	for i := range transactions {
		tx := &transactions[i]
		row := []interface{}{
			tx.TransactionDate.Format(utils.ShortDashDateLayout),
			tx.Symbol,
			tx.Name,
			tx.TransactionType,
			decimalCell(tx.Quantity),
			decimalCell(tx.PricePerUnit),
			decimalCell(tx.TotalAmount),
			tx.Currency,
			tx.Notes,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := file.SetSheetRow("Transactions", cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (s *ExportService) writeRealizedGainsSheet(ctx context.Context, file *excelize.File, userID uint) error {
	if _, err := file.NewSheet("Realized Gains"); err != nil {
		return err
	}

	gains, err := s.portfolioService.GetRealizedGains(ctx, userID)
	if err != nil {
		return err
	}

	headers := []interface{}{
		"Date", "Symbol", "Quantity", "Sell Price", "Cost Basis", "Proceeds", "Gain/Loss", "Gain %",
	}
	if err := file.SetSheetRow("Realized Gains", "A1", &headers); err != nil {
		return err
	}

	for i, gain := range gains {
		row := []interface{}{
			gain.SellDate.Format(utils.ShortDashDateLayout),
			gain.Symbol,
			decimalCell(gain.QuantitySold),
			decimalCell(gain.SellPrice),
			decimalCell(gain.CostBasisTotal),
			decimalCell(gain.SellAmount),
			decimalCell(gain.RealizedGainLoss),
			gain.RealizedGainLossPercent,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := file.SetSheetRow("Realized Gains", cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func decimalCell(d decimal.Decimal) float64 {
	value, _ := d.Float64()
	return value
}

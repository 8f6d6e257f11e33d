package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/gmgifpe/asset-tracker/src/clients/quotes"
	"github.com/gmgifpe/asset-tracker/src/models"
	"github.com/gmgifpe/asset-tracker/src/repositories"
	"github.com/gmgifpe/asset-tracker/src/schemas"
	"github.com/gmgifpe/asset-tracker/src/utils"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

const (
	BrokerSchwab    = "schwab"
	BrokerFirstrade = "firstrade"
)

// schwabRow mirrors a Charles Schwab transaction export. Numeric fields
// stay strings because the export wraps them in $ signs and commas.
type schwabRow struct {
	Date        string `csv:"Date"`
	Action      string `csv:"Action"`
	Symbol      string `csv:"Symbol"`
	Description string `csv:"Description"`
	Quantity    string `csv:"Quantity"`
	Price       string `csv:"Price"`
	Fees        string `csv:"Fees & Comm"`
	Amount      string `csv:"Amount"`
}

// firstradeRow mirrors a Firstrade transaction export.
type firstradeRow struct {
	Symbol      string `csv:"Symbol"`
	Quantity    string `csv:"Quantity"`
	Price       string `csv:"Price"`
	Action      string `csv:"Action"`
	Description string `csv:"Description"`
	TradeDate   string `csv:"TradeDate"`
	SettledDate string `csv:"SettledDate"`
	Amount      string `csv:"Amount"`
	RecordType  string `csv:"RecordType"`
}

type ImportServiceI interface {
	Preview(ctx context.Context, content []byte) (*schemas.PreviewCSVResponse, error)
	Import(ctx context.Context, userID uint, content []byte) (*schemas.ImportCSVResponse, error)
}

type ImportService struct {
	accountsRepo     repositories.AccountRepository
	assetsRepo       repositories.AssetRepository
	transactionsRepo repositories.TransactionRepository
	quoteClient      quotes.QuoteClientI
	priceService     PriceServiceI
}

func NewImportService(
	accountsRepo repositories.AccountRepository,
	assetsRepo repositories.AssetRepository,
	transactionsRepo repositories.TransactionRepository,
	quoteClient quotes.QuoteClientI,
	priceService PriceServiceI,
) *ImportService {
	return &ImportService{
		accountsRepo:     accountsRepo,
		assetsRepo:       assetsRepo,
		transactionsRepo: transactionsRepo,
		quoteClient:      quoteClient,
		priceService:     priceService,
	}
}

// detectBroker finds the statement format by its header line and
// returns the content starting at that header. Schwab exports carry a
// banner line before the header.
func detectBroker(content []byte) (string, []byte, error) {
	lines := bytes.Split(content, []byte("\n"))
	for i, line := range lines {
		header := strings.ToLower(string(line))
		switch {
		case strings.Contains(header, "fees & comm"):
			return BrokerSchwab, bytes.Join(lines[i:], []byte("\n")), nil
		case strings.Contains(header, "tradedate") && strings.Contains(header, "recordtype"):
			return BrokerFirstrade, bytes.Join(lines[i:], []byte("\n")), nil
		}
	}
	return "", nil, utils.BadRequest("unrecognized CSV format, expected a Schwab or Firstrade export")
}

// ParseCSV extracts BUY/SELL trades from a broker statement. Rows that
// are not trades (dividends, transfers, totals) are skipped.
func ParseCSV(content []byte) (string, []*schemas.ParsedTransaction, error) {
	broker, body, err := detectBroker(content)
	if err != nil {
		return "", nil, err
	}

	switch broker {
	case BrokerSchwab:
		transactions, err := parseSchwab(body)
		return broker, transactions, err
	default:
		transactions, err := parseFirstrade(body)
		return broker, transactions, err
	}
}

func parseSchwab(body []byte) ([]*schemas.ParsedTransaction, error) {
	var rows []*schwabRow
	if err := gocsv.UnmarshalBytes(body, &rows); err != nil {
		return nil, utils.BadRequest(fmt.Sprintf("malformed Schwab CSV: %v", err))
	}

	transactions := []*schemas.ParsedTransaction{}
	for _, row := range rows {
		action := strings.ToUpper(strings.TrimSpace(row.Action))
		if action != "BUY" && action != "SELL" {
			continue
		}
		if row.Symbol == "" {
			continue
		}

		date, err := utils.ParseStatementDate(row.Date)
		if err != nil {
			continue
		}
		quantity, err := parseStatementDecimal(row.Quantity)
		if err != nil || quantity.IsZero() {
			continue
		}
		price, err := parseStatementDecimal(row.Price)
		if err != nil {
			continue
		}
		amount, err := parseStatementDecimal(row.Amount)
		if err != nil {
			amount = quantity.Mul(price)
		}

		transactions = append(transactions, &schemas.ParsedTransaction{
			Date:            date,
			Symbol:          strings.ToUpper(strings.TrimSpace(row.Symbol)),
			Name:            row.Description,
			Description:     row.Description,
			Quantity:        quantity.Abs(),
			Price:           price,
			Amount:          amount.Abs(),
			TransactionType: action,
			Broker:          BrokerSchwab,
		})
	}
	return transactions, nil
}

func parseFirstrade(body []byte) ([]*schemas.ParsedTransaction, error) {
	var rows []*firstradeRow
	if err := gocsv.UnmarshalBytes(body, &rows); err != nil {
		return nil, utils.BadRequest(fmt.Sprintf("malformed Firstrade CSV: %v", err))
	}

	transactions := []*schemas.ParsedTransaction{}
	for _, row := range rows {
		action := strings.ToUpper(strings.TrimSpace(row.Action))
		if action != "BUY" && action != "SELL" {
			continue
		}
		if row.Symbol == "" {
			continue
		}

		date, err := utils.ParseStatementDate(row.TradeDate)
		if err != nil {
			continue
		}
		quantity, err := parseStatementDecimal(row.Quantity)
		if err != nil || quantity.IsZero() {
			continue
		}
		price, err := parseStatementDecimal(row.Price)
		if err != nil {
			continue
		}
		amount, err := parseStatementDecimal(row.Amount)
		if err != nil {
			amount = quantity.Mul(price)
		}

		transactions = append(transactions, &schemas.ParsedTransaction{
			Date:            date,
			Symbol:          strings.ToUpper(strings.TrimSpace(row.Symbol)),
			Name:            row.Description,
			Description:     row.Description,
			Quantity:        quantity.Abs(),
			Price:           price,
			Amount:          amount.Abs(),
			TransactionType: action,
			Broker:          BrokerFirstrade,
		})
	}
	return transactions, nil
}

// parseStatementDecimal strips the $ signs and thousands separators
// broker exports decorate numbers with.
func parseStatementDecimal(value string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", "(", "-", ")", "").Replace(strings.TrimSpace(value))
	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("empty numeric field")
	}
	return decimal.NewFromString(cleaned)
}

// Preview parses a statement without writing anything.
func (s *ImportService) Preview(ctx context.Context, content []byte) (*schemas.PreviewCSVResponse, error) {
	broker, transactions, err := ParseCSV(content)
	if err != nil {
		return nil, err
	}

	preview := make([]schemas.PreviewTransaction, 0, len(transactions))
	for _, tx := range transactions {
		preview = append(preview, schemas.PreviewTransaction{
			Date:        tx.Date.Format(utils.ShortDashDateLayout),
			Symbol:      tx.Symbol,
			Type:        tx.TransactionType,
			Quantity:    tx.Quantity,
			Price:       tx.Price,
			Amount:      tx.Amount,
			Description: tx.Description,
		})
	}
	return &schemas.PreviewCSVResponse{
		Success:      true,
		Transactions: preview,
		TotalCount:   len(preview),
		Broker:       broker,
	}, nil
}

// Import persists a statement's trades, skipping rows already imported,
// then rebuilds the touched asset rows and refreshes their prices.
func (s *ImportService) Import(ctx context.Context, userID uint, content []byte) (*schemas.ImportCSVResponse, error) {
	logger := utils.LoggerFromContext(ctx)

	broker, transactions, err := ParseCSV(content)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return nil, utils.BadRequest("no BUY or SELL rows found in statement")
	}

	account, err := s.brokerAccount(ctx, userID, broker)
	if err != nil {
		return nil, err
	}

	imported := 0
	touched := map[string]bool{}
	for _, parsed := range transactions {
		exists, err := s.transactionsRepo.Exists(ctx, userID, parsed.Symbol, parsed.Date, parsed.Quantity, parsed.Price)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		name := parsed.Name
		if name == "" {
			name = parsed.Symbol
		}
		tx := &models.Transaction{
			UserID:          userID,
			AccountID:       &account.ID,
			Symbol:          parsed.Symbol,
			Name:            name,
			AssetType:       models.AssetTypeStock,
			TransactionType: parsed.TransactionType,
			Quantity:        parsed.Quantity,
			PricePerUnit:    parsed.Price,
			TotalAmount:     parsed.Quantity.Mul(parsed.Price),
			Currency:        "USD",
			TransactionDate: parsed.Date,
			Notes:           fmt.Sprintf("imported from %s statement", broker),
		}
		if err := s.transactionsRepo.Create(ctx, tx, nil); err != nil {
			return nil, err
		}
		imported++
		touched[parsed.Symbol] = true
	}

	assetsUpdated := 0
	for symbol := range touched {
		updated, err := s.rebuildAsset(ctx, userID, account.ID, symbol)
		if err != nil {
			logger.Warnf("could not rebuild asset %s after import: %v", symbol, err)
			continue
		}
		if updated {
			assetsUpdated++
		}
	}

	pricesUpdated := 0
	if refresh, err := s.priceService.RefreshUserPrices(ctx, userID); err == nil {
		pricesUpdated = refresh.UpdatedCount
	} else {
		logger.Warnf("post-import price refresh failed: %v", err)
	}

	return &schemas.ImportCSVResponse{
		Success:              true,
		Message:              fmt.Sprintf("imported %d transactions from %s", imported, broker),
		TransactionsImported: imported,
		AssetsUpdated:        assetsUpdated,
		PricesUpdated:        pricesUpdated,
		Broker:               broker,
	}, nil
}

// brokerAccount finds or creates the brokerage account trades from this
// broker land in.
func (s *ImportService) brokerAccount(ctx context.Context, userID uint, broker string) (*models.Account, error) {
	name := strings.ToUpper(broker[:1]) + broker[1:]
	account, err := s.accountsRepo.GetByName(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}

	account = &models.Account{
		UserID:      userID,
		Name:        name,
		AccountType: models.AccountTypeBrokerage,
		Currency:    "USD",
	}
	if err := s.accountsRepo.Create(ctx, account, nil); err != nil {
		return nil, err
	}
	return account, nil
}

// rebuildAsset replays the symbol's full history and upserts the asset
// row to the resulting position.
func (s *ImportService) rebuildAsset(ctx context.Context, userID uint, accountID int, symbol string) (bool, error) {
	transactions, err := s.transactionsRepo.GetByUserSymbol(ctx, userID, symbol)
	if err != nil {
		return false, err
	}
	pointers := make([]*models.Transaction, len(transactions))
	for i := range transactions {
		pointers[i] = &transactions[i]
	}

	position, _, err := ComputeHolding(pointers)
	if err != nil {
		return false, err
	}

	asset, err := s.assetsRepo.GetByUserSymbolAccount(ctx, userID, symbol, &accountID)
	if err != nil {
		return false, err
	}

	if asset != nil {
		asset.Quantity = position.Quantity
		asset.PurchasePrice = position.AverageCost
		if err := s.assetsRepo.Update(ctx, asset, nil); err != nil {
			return false, err
		}
		return true, nil
	}

	if !position.Quantity.IsPositive() {
		return false, nil
	}
	name := symbol
	if len(transactions) > 0 && transactions[0].Name != "" {
		name = transactions[0].Name
	}
	asset = &models.Asset{
		UserID:        userID,
		AccountID:     &accountID,
		Symbol:        symbol,
		Name:          name,
		AssetType:     models.AssetTypeStock,
		Quantity:      position.Quantity,
		PurchasePrice: position.AverageCost,
		Currency:      "USD",
		Status:        models.StatusGranted,
		TaxCountry:    "TW",
	}
	if err := s.assetsRepo.Create(ctx, asset, nil); err != nil {
		return false, err
	}
	return true, nil
}

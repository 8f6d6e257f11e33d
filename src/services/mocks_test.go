package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gmgifpe/asset-tracker/src/models"
	"github.com/gmgifpe/asset-tracker/src/schemas"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// In-memory fakes for the repository and client interfaces, enough to
// exercise the services without a database.

type fakeAccountRepo struct {
	nextID   int
	accounts []*models.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{nextID: 1}
}

func (r *fakeAccountRepo) GetAllByUserID(_ context.Context, userID uint) ([]models.Account, error) {
	out := []models.Account{}
	for _, a := range r.accounts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, userID uint, id int) (*models.Account, error) {
	for _, a := range r.accounts {
		if a.UserID == userID && a.ID == id {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) GetByName(_ context.Context, userID uint, name string) (*models.Account, error) {
	for _, a := range r.accounts {
		if a.UserID == userID && a.Name == name {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) Create(_ context.Context, a *models.Account, _ pgx.Tx) error {
	a.ID = r.nextID
	a.CreatedAt = time.Now().UTC()
	r.nextID++
	copied := *a
	r.accounts = append(r.accounts, &copied)
	return nil
}

func (r *fakeAccountRepo) Delete(_ context.Context, userID uint, id int, _ pgx.Tx) error {
	for i, a := range r.accounts {
		if a.UserID == userID && a.ID == id {
			r.accounts = append(r.accounts[:i], r.accounts[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeAssetRepo struct {
	nextID int
	assets []*models.Asset
}

func newFakeAssetRepo() *fakeAssetRepo {
	return &fakeAssetRepo{nextID: 1}
}

func (r *fakeAssetRepo) GetAllByUserID(_ context.Context, userID uint) ([]models.Asset, error) {
	out := []models.Asset{}
	for _, a := range r.assets {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAssetRepo) GetByID(_ context.Context, userID uint, id int) (*models.Asset, error) {
	for _, a := range r.assets {
		if a.UserID == userID && a.ID == id {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeAssetRepo) GetByUserSymbol(_ context.Context, userID uint, symbol string) (*models.Asset, error) {
	for _, a := range r.assets {
		if a.UserID == userID && a.Symbol == symbol {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeAssetRepo) GetByUserSymbolAccount(_ context.Context, userID uint, symbol string, accountID *int) (*models.Asset, error) {
	for _, a := range r.assets {
		if a.UserID != userID || a.Symbol != symbol {
			continue
		}
		if accountID == nil && a.AccountID == nil {
			copied := *a
			return &copied, nil
		}
		if accountID != nil && a.AccountID != nil && *accountID == *a.AccountID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeAssetRepo) Create(_ context.Context, a *models.Asset, _ pgx.Tx) error {
	a.ID = r.nextID
	r.nextID++
	copied := *a
	r.assets = append(r.assets, &copied)
	return nil
}

func (r *fakeAssetRepo) Update(_ context.Context, a *models.Asset, _ pgx.Tx) error {
	for i, existing := range r.assets {
		if existing.ID == a.ID {
			copied := *a
			r.assets[i] = &copied
			return nil
		}
	}
	return fmt.Errorf("asset %d not found", a.ID)
}

func (r *fakeAssetRepo) UpdatePrice(_ context.Context, id int, price decimal.Decimal, _ pgx.Tx) error {
	for _, a := range r.assets {
		if a.ID == id {
			a.CurrentPrice = price
			a.LastUpdated = time.Now().UTC()
			return nil
		}
	}
	return fmt.Errorf("asset %d not found", id)
}

func (r *fakeAssetRepo) Delete(_ context.Context, userID uint, id int, _ pgx.Tx) error {
	for i, a := range r.assets {
		if a.UserID == userID && a.ID == id {
			r.assets = append(r.assets[:i], r.assets[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeAssetRepo) ReassignAccount(_ context.Context, userID uint, accountID int, _ pgx.Tx) error {
	for _, a := range r.assets {
		if a.UserID == userID && a.AccountID != nil && *a.AccountID == accountID {
			a.AccountID = nil
		}
	}
	return nil
}

func (r *fakeAssetRepo) DeleteByAccount(_ context.Context, userID uint, accountID int, _ pgx.Tx) error {
	kept := r.assets[:0]
	for _, a := range r.assets {
		if a.UserID == userID && a.AccountID != nil && *a.AccountID == accountID {
			continue
		}
		kept = append(kept, a)
	}
	r.assets = kept
	return nil
}

type fakeTransactionRepo struct {
	nextID       int
	transactions []*models.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{nextID: 1}
}

func (r *fakeTransactionRepo) GetAllByUserID(_ context.Context, userID uint) ([]models.Transaction, error) {
	out := []models.Transaction{}
	for _, tx := range r.transactions {
		if tx.UserID == userID {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) GetByUserSymbol(_ context.Context, userID uint, symbol string) ([]models.Transaction, error) {
	out := []models.Transaction{}
	for _, tx := range r.transactions {
		if tx.UserID == userID && tx.Symbol == symbol {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) Create(_ context.Context, tx *models.Transaction, _ pgx.Tx) error {
	tx.ID = r.nextID
	tx.CreatedAt = time.Now().UTC()
	r.nextID++
	copied := *tx
	r.transactions = append(r.transactions, &copied)
	return nil
}

func (r *fakeTransactionRepo) ReassignAccount(_ context.Context, userID uint, accountID int, _ pgx.Tx) error {
	for _, tx := range r.transactions {
		if tx.UserID == userID && tx.AccountID != nil && *tx.AccountID == accountID {
			tx.AccountID = nil
		}
	}
	return nil
}

func (r *fakeTransactionRepo) DeleteByAccount(_ context.Context, userID uint, accountID int, _ pgx.Tx) error {
	kept := r.transactions[:0]
	for _, tx := range r.transactions {
		if tx.UserID == userID && tx.AccountID != nil && *tx.AccountID == accountID {
			continue
		}
		kept = append(kept, tx)
	}
	r.transactions = kept
	return nil
}

func (r *fakeTransactionRepo) Exists(_ context.Context, userID uint, symbol string, date time.Time, quantity, price decimal.Decimal) (bool, error) {
	for _, tx := range r.transactions {
		if tx.UserID == userID && tx.Symbol == symbol &&
			tx.TransactionDate.Equal(date) &&
			tx.Quantity.Equal(quantity) && tx.PricePerUnit.Equal(price) {
			return true, nil
		}
	}
	return false, nil
}

type fakeUserRepo struct {
	nextID uint
	users  []*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1}
}

func (r *fakeUserRepo) Create(u *models.User) error {
	u.ID = r.nextID
	u.CreatedAt = time.Now().UTC()
	r.nextID++
	copied := *u
	r.users = append(r.users, &copied)
	return nil
}

func (r *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) List() ([]models.User, error) {
	out := []models.User{}
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

type fakeHistoryRepo struct {
	nextID  int
	entries []*models.PriceHistory
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{nextID: 1}
}

func (r *fakeHistoryRepo) Create(_ context.Context, p *models.PriceHistory, _ pgx.Tx) error {
	p.ID = r.nextID
	p.Timestamp = time.Now().UTC()
	r.nextID++
	copied := *p
	r.entries = append(r.entries, &copied)
	return nil
}

func (r *fakeHistoryRepo) GetLatestBySymbol(_ context.Context, symbol string) (*models.PriceHistory, error) {
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].Symbol == symbol {
			copied := *r.entries[i]
			return &copied, nil
		}
	}
	return nil, nil
}

// fakeQuoteClient serves canned prices and fails for unknown symbols.
type fakeQuoteClient struct {
	prices map[string]decimal.Decimal
	calls  int
}

func (c *fakeQuoteClient) GetPrice(_ context.Context, symbol, _ string) (*schemas.Quote, error) {
	c.calls++
	price, ok := c.prices[symbol]
	if !ok {
		return nil, fmt.Errorf("no quote for %s", symbol)
	}
	return &schemas.Quote{Symbol: symbol, Price: price, Currency: "USD"}, nil
}

// fakePriceService wraps canned prices behind the PriceServiceI shape.
type fakePriceService struct {
	prices map[string]decimal.Decimal
}

func (s *fakePriceService) GetPrice(_ context.Context, symbol, _ string) (*schemas.Quote, bool, error) {
	price, ok := s.prices[symbol]
	if !ok {
		return nil, false, fmt.Errorf("no quote for %s", symbol)
	}
	return &schemas.Quote{Symbol: symbol, Price: price, Currency: "USD"}, false, nil
}

func (s *fakePriceService) RefreshUserPrices(context.Context, uint) (*schemas.UpdatePricesResponse, error) {
	return &schemas.UpdatePricesResponse{Message: "updated 0 prices"}, nil
}

func (s *fakePriceService) RefreshAllPrices(context.Context) (*schemas.UpdatePricesResponse, error) {
	return &schemas.UpdatePricesResponse{Message: "updated 0 prices"}, nil
}

// fakeFXClient converts with a fixed rate table and reports staleness
// for currencies outside it.
type fakeFXClient struct {
	rates map[string]decimal.Decimal
}

func (c *fakeFXClient) RateToUSD(_ context.Context, currency string) (decimal.Decimal, bool, error) {
	if currency == "USD" || currency == "" {
		return decimal.NewFromInt(1), false, nil
	}
	rate, ok := c.rates[currency]
	if !ok {
		return decimal.Decimal{}, true, fmt.Errorf("no rate for %s", currency)
	}
	return rate, false, nil
}

func (c *fakeFXClient) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, bool, error) {
	fromRate, fromStale, err := c.RateToUSD(ctx, from)
	if err != nil {
		return decimal.Decimal{}, true, err
	}
	toRate, toStale, err := c.RateToUSD(ctx, to)
	if err != nil {
		return decimal.Decimal{}, true, err
	}
	return amount.Mul(fromRate).Div(toRate), fromStale || toStale, nil
}

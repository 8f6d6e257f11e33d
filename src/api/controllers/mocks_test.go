package controllers

import (
	"context"
	"time"

	"github.com/gmgifpe/asset-tracker/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// In-memory repositories for controller tests. They ignore the optional
// pgx.Tx the pgx-backed implementations accept.

type memoryAccountRepo struct {
	nextID   int
	accounts []*models.Account
}

func newMemoryAccountRepo() *memoryAccountRepo {
	return &memoryAccountRepo{nextID: 1}
}

func (r *memoryAccountRepo) GetAllByUserID(_ context.Context, userID uint) ([]models.Account, error) {
	out := []models.Account{}
	for _, a := range r.accounts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memoryAccountRepo) GetByID(_ context.Context, userID uint, id int) (*models.Account, error) {
	for _, a := range r.accounts {
		if a.UserID == userID && a.ID == id {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memoryAccountRepo) GetByName(_ context.Context, userID uint, name string) (*models.Account, error) {
	for _, a := range r.accounts {
		if a.UserID == userID && a.Name == name {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memoryAccountRepo) Create(_ context.Context, a *models.Account, _ pgx.Tx) error {
	a.ID = r.nextID
	a.CreatedAt = time.Now().UTC()
	r.nextID++
	copied := *a
	r.accounts = append(r.accounts, &copied)
	return nil
}

func (r *memoryAccountRepo) Delete(_ context.Context, userID uint, id int, _ pgx.Tx) error {
	for i, a := range r.accounts {
		if a.UserID == userID && a.ID == id {
			r.accounts = append(r.accounts[:i], r.accounts[i+1:]...)
			return nil
		}
	}
	return nil
}

type memoryAssetRepo struct {
	nextID int
	assets []*models.Asset
}

func newMemoryAssetRepo() *memoryAssetRepo {
	return &memoryAssetRepo{nextID: 1}
}

func (r *memoryAssetRepo) GetAllByUserID(_ context.Context, userID uint) ([]models.Asset, error) {
	out := []models.Asset{}
	for _, a := range r.assets {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memoryAssetRepo) GetByID(_ context.Context, userID uint, id int) (*models.Asset, error) {
	for _, a := range r.assets {
		if a.UserID == userID && a.ID == id {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memoryAssetRepo) GetByUserSymbol(_ context.Context, userID uint, symbol string) (*models.Asset, error) {
	for _, a := range r.assets {
		if a.UserID == userID && a.Symbol == symbol {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memoryAssetRepo) GetByUserSymbolAccount(_ context.Context, userID uint, symbol string, accountID *int) (*models.Asset, error) {
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

func (r *memoryAssetRepo) Create(_ context.Context, a *models.Asset, _ pgx.Tx) error {
	a.ID = r.nextID
	r.nextID++
	copied := *a
	r.assets = append(r.assets, &copied)
	return nil
}

func (r *memoryAssetRepo) Update(_ context.Context, a *models.Asset, _ pgx.Tx) error {
	for i, existing := range r.assets {
		if existing.ID == a.ID {
			copied := *a
			r.assets[i] = &copied
			return nil
		}
	}
	return nil
}

func (r *memoryAssetRepo) UpdatePrice(_ context.Context, id int, price decimal.Decimal, _ pgx.Tx) error {
	for _, a := range r.assets {
		if a.ID == id {
			a.CurrentPrice = price
			a.LastUpdated = time.Now().UTC()
		}
	}
	return nil
}

func (r *memoryAssetRepo) Delete(_ context.Context, userID uint, id int, _ pgx.Tx) error {
	for i, a := range r.assets {
		if a.UserID == userID && a.ID == id {
			r.assets = append(r.assets[:i], r.assets[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memoryAssetRepo) ReassignAccount(_ context.Context, userID uint, accountID int, _ pgx.Tx) error {
	for _, a := range r.assets {
		if a.UserID == userID && a.AccountID != nil && *a.AccountID == accountID {
			a.AccountID = nil
		}
	}
	return nil
}

func (r *memoryAssetRepo) DeleteByAccount(_ context.Context, userID uint, accountID int, _ pgx.Tx) error {
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

type memoryTransactionRepo struct {
	nextID       int
	transactions []*models.Transaction
}

func newMemoryTransactionRepo() *memoryTransactionRepo {
	return &memoryTransactionRepo{nextID: 1}
}

func (r *memoryTransactionRepo) GetAllByUserID(_ context.Context, userID uint) ([]models.Transaction, error) {
	out := []models.Transaction{}
	for _, tx := range r.transactions {
		if tx.UserID == userID {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (r *memoryTransactionRepo) GetByUserSymbol(_ context.Context, userID uint, symbol string) ([]models.Transaction, error) {
	out := []models.Transaction{}
	for _, tx := range r.transactions {
		if tx.UserID == userID && tx.Symbol == symbol {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (r *memoryTransactionRepo) Create(_ context.Context, tx *models.Transaction, _ pgx.Tx) error {
	tx.ID = r.nextID
	tx.CreatedAt = time.Now().UTC()
	r.nextID++
	copied := *tx
	r.transactions = append(r.transactions, &copied)
	return nil
}

func (r *memoryTransactionRepo) Exists(_ context.Context, userID uint, symbol string, date time.Time, quantity, price decimal.Decimal) (bool, error) {
	for _, tx := range r.transactions {
		if tx.UserID == userID && tx.Symbol == symbol &&
			tx.TransactionDate.Equal(date) &&
			tx.Quantity.Equal(quantity) && tx.PricePerUnit.Equal(price) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryTransactionRepo) ReassignAccount(_ context.Context, userID uint, accountID int, _ pgx.Tx) error {
	for _, tx := range r.transactions {
		if tx.UserID == userID && tx.AccountID != nil && *tx.AccountID == accountID {
			tx.AccountID = nil
		}
	}
	return nil
}

func (r *memoryTransactionRepo) DeleteByAccount(_ context.Context, userID uint, accountID int, _ pgx.Tx) error {
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

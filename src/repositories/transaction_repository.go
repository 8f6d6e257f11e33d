package repositories

import (
	"context"
	"time"

	"github.com/gmgifpe/asset-tracker/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type TransactionRepository interface {
	// GetAllByUserID returns transactions newest first, for listing.
	GetAllByUserID(ctx context.Context, userID uint) ([]models.Transaction, error)
	// GetByUserSymbol returns transactions in cost-basis order:
	// transaction_date ascending, insertion order breaking ties.
	GetByUserSymbol(ctx context.Context, userID uint, symbol string) ([]models.Transaction, error)
	Create(ctx context.Context, t *models.Transaction, tx pgx.Tx) error
	Exists(ctx context.Context, userID uint, symbol string, date time.Time, quantity, price decimal.Decimal) (bool, error)
	ReassignAccount(ctx context.Context, userID uint, accountID int, tx pgx.Tx) error
	DeleteByAccount(ctx context.Context, userID uint, accountID int, tx pgx.Tx) error
}

type transactionRepo struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) TransactionRepository {
	return &transactionRepo{db: db}
}

const transactionColumns = `id, user_id, account_id, symbol, name, asset_type,
	transaction_type, quantity, price_per_unit, total_amount, currency,
	transaction_date, created_at, notes`

func scanTransaction(row pgx.Row, t *models.Transaction) error {
	return row.Scan(
		&t.ID, &t.UserID, &t.AccountID, &t.Symbol, &t.Name, &t.AssetType,
		&t.TransactionType, &t.Quantity, &t.PricePerUnit, &t.TotalAmount, &t.Currency,
		&t.TransactionDate, &t.CreatedAt, &t.Notes,
	)
}

func (r *transactionRepo) GetAllByUserID(ctx context.Context, userID uint) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = $1
		ORDER BY transaction_date DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func (r *transactionRepo) GetByUserSymbol(ctx context.Context, userID uint, symbol string) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = $1 AND symbol = $2
		ORDER BY transaction_date ASC, id ASC`,
		userID, symbol,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]models.Transaction, error) {
	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := scanTransaction(rows, &t); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *transactionRepo) Create(ctx context.Context, t *models.Transaction, tx pgx.Tx) error {
	query := `
		INSERT INTO transactions (user_id, account_id, symbol, name, asset_type,
			transaction_type, quantity, price_per_unit, total_amount, currency,
			transaction_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`

	args := []interface{}{
		t.UserID, t.AccountID, t.Symbol, t.Name, t.AssetType,
		t.TransactionType, t.Quantity, t.PricePerUnit, t.TotalAmount, t.Currency,
		t.TransactionDate, t.Notes,
	}

	if tx != nil {
		return tx.QueryRow(ctx, query, args...).Scan(&t.ID, &t.CreatedAt)
	}
	return r.db.QueryRow(ctx, query, args...).Scan(&t.ID, &t.CreatedAt)
}

func (r *transactionRepo) ReassignAccount(ctx context.Context, userID uint, accountID int, tx pgx.Tx) error {
	query := `UPDATE transactions SET account_id = NULL WHERE user_id = $1 AND account_id = $2`
	if tx != nil {
		_, err := tx.Exec(ctx, query, userID, accountID)
		return err
	}
	_, err := r.db.Exec(ctx, query, userID, accountID)
	return err
}

func (r *transactionRepo) DeleteByAccount(ctx context.Context, userID uint, accountID int, tx pgx.Tx) error {
	query := `DELETE FROM transactions WHERE user_id = $1 AND account_id = $2`
	if tx != nil {
		_, err := tx.Exec(ctx, query, userID, accountID)
		return err
	}
	_, err := r.db.Exec(ctx, query, userID, accountID)
	return err
}

func (r *transactionRepo) Exists(ctx context.Context, userID uint, symbol string, date time.Time, quantity, price decimal.Decimal) (bool, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(1) FROM transactions
		WHERE user_id = $1 AND symbol = $2 AND transaction_date = $3
			AND quantity = $4 AND price_per_unit = $5`,
		userID, symbol, date, quantity, price,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

package repositories

import (
	"context"

	"github.com/gmgifpe/asset-tracker/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountRepository interface {
	GetAllByUserID(ctx context.Context, userID uint) ([]models.Account, error)
	GetByID(ctx context.Context, userID uint, id int) (*models.Account, error)
	GetByName(ctx context.Context, userID uint, name string) (*models.Account, error)
	Create(ctx context.Context, a *models.Account, tx pgx.Tx) error
	Delete(ctx context.Context, userID uint, id int, tx pgx.Tx) error
}

type accountRepo struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) AccountRepository {
	return &accountRepo{db: db}
}

const accountColumns = `id, user_id, name, account_type, currency, created_at`

func scanAccount(row pgx.Row, a *models.Account) error {
	return row.Scan(&a.ID, &a.UserID, &a.Name, &a.AccountType, &a.Currency, &a.CreatedAt)
}

func (r *accountRepo) GetAllByUserID(ctx context.Context, userID uint) ([]models.Account, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		if err := scanAccount(rows, &a); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *accountRepo) GetByID(ctx context.Context, userID uint, id int) (*models.Account, error) {
	var a models.Account
	err := scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 AND id = $2`,
		userID, id,
	), &a)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepo) GetByName(ctx context.Context, userID uint, name string) (*models.Account, error) {
	var a models.Account
	err := scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 AND name = $2`,
		userID, name,
	), &a)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepo) Create(ctx context.Context, a *models.Account, tx pgx.Tx) error {
	query := `
		INSERT INTO accounts (user_id, name, account_type, currency)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	if tx != nil {
		return tx.QueryRow(ctx, query, a.UserID, a.Name, a.AccountType, a.Currency).Scan(&a.ID, &a.CreatedAt)
	}
	return r.db.QueryRow(ctx, query, a.UserID, a.Name, a.AccountType, a.Currency).Scan(&a.ID, &a.CreatedAt)
}

func (r *accountRepo) Delete(ctx context.Context, userID uint, id int, tx pgx.Tx) error {
	query := `DELETE FROM accounts WHERE user_id = $1 AND id = $2`
	if tx != nil {
		_, err := tx.Exec(ctx, query, userID, id)
		return err
	}
	_, err := r.db.Exec(ctx, query, userID, id)
	return err
}

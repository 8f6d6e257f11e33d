package repositories

import (
	"context"
	"time"

	"github.com/gmgifpe/asset-tracker/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type AssetRepository interface {
	GetAllByUserID(ctx context.Context, userID uint) ([]models.Asset, error)
	GetByID(ctx context.Context, userID uint, id int) (*models.Asset, error)
	GetByUserSymbol(ctx context.Context, userID uint, symbol string) (*models.Asset, error)
	GetByUserSymbolAccount(ctx context.Context, userID uint, symbol string, accountID *int) (*models.Asset, error)
	Create(ctx context.Context, a *models.Asset, tx pgx.Tx) error
	Update(ctx context.Context, a *models.Asset, tx pgx.Tx) error
	UpdatePrice(ctx context.Context, id int, price decimal.Decimal, tx pgx.Tx) error
	Delete(ctx context.Context, userID uint, id int, tx pgx.Tx) error
	ReassignAccount(ctx context.Context, userID uint, accountID int, tx pgx.Tx) error
	DeleteByAccount(ctx context.Context, userID uint, accountID int, tx pgx.Tx) error
}

type assetRepo struct {
	db *pgxpool.Pool
}

func NewAssetRepository(db *pgxpool.Pool) AssetRepository {
	return &assetRepo{db: db}
}

const assetColumns = `id, user_id, account_id, symbol, name, asset_type,
	quantity, purchase_price, current_price, currency, purchase_date, last_updated,
	grant_date, vesting_date, expiration_date, strike_price, vest_fmv, status,
	tax_country, tax_rate, exercise_price, exercise_date, vest_market_price, notes`

func scanAsset(row pgx.Row, a *models.Asset) error {
	return row.Scan(
		&a.ID, &a.UserID, &a.AccountID, &a.Symbol, &a.Name, &a.AssetType,
		&a.Quantity, &a.PurchasePrice, &a.CurrentPrice, &a.Currency, &a.PurchaseDate, &a.LastUpdated,
		&a.GrantDate, &a.VestingDate, &a.ExpirationDate, &a.StrikePrice, &a.VestFMV, &a.Status,
		&a.TaxCountry, &a.TaxRate, &a.ExercisePrice, &a.ExerciseDate, &a.VestMarketPrice, &a.Notes,
	)
}

func (r *assetRepo) GetAllByUserID(ctx context.Context, userID uint) ([]models.Asset, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE user_id = $1 ORDER BY id ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		var a models.Asset
		if err := scanAsset(rows, &a); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (r *assetRepo) GetByID(ctx context.Context, userID uint, id int) (*models.Asset, error) {
	var a models.Asset
	err := scanAsset(r.db.QueryRow(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE user_id = $1 AND id = $2`,
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

func (r *assetRepo) GetByUserSymbol(ctx context.Context, userID uint, symbol string) (*models.Asset, error) {
	var a models.Asset
	err := scanAsset(r.db.QueryRow(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE user_id = $1 AND symbol = $2 ORDER BY id ASC LIMIT 1`,
		userID, symbol,
	), &a)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assetRepo) GetByUserSymbolAccount(ctx context.Context, userID uint, symbol string, accountID *int) (*models.Asset, error) {
	var a models.Asset
	var row pgx.Row
	if accountID == nil {
		row = r.db.QueryRow(ctx,
			`SELECT `+assetColumns+` FROM assets WHERE user_id = $1 AND symbol = $2 AND account_id IS NULL LIMIT 1`,
			userID, symbol,
		)
	} else {
		row = r.db.QueryRow(ctx,
			`SELECT `+assetColumns+` FROM assets WHERE user_id = $1 AND symbol = $2 AND account_id = $3 LIMIT 1`,
			userID, symbol, *accountID,
		)
	}
	err := scanAsset(row, &a)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assetRepo) Create(ctx context.Context, a *models.Asset, tx pgx.Tx) error {
	query := `
		INSERT INTO assets (user_id, account_id, symbol, name, asset_type,
			quantity, purchase_price, current_price, currency, purchase_date, last_updated,
			grant_date, vesting_date, expiration_date, strike_price, vest_fmv, status,
			tax_country, tax_rate, exercise_price, exercise_date, vest_market_price, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		RETURNING id`

	if a.PurchaseDate.IsZero() {
		a.PurchaseDate = time.Now().UTC()
	}
	a.LastUpdated = time.Now().UTC()

	args := []interface{}{
		a.UserID, a.AccountID, a.Symbol, a.Name, a.AssetType,
		a.Quantity, a.PurchasePrice, a.CurrentPrice, a.Currency, a.PurchaseDate, a.LastUpdated,
		a.GrantDate, a.VestingDate, a.ExpirationDate, a.StrikePrice, a.VestFMV, a.Status,
		a.TaxCountry, a.TaxRate, a.ExercisePrice, a.ExerciseDate, a.VestMarketPrice, a.Notes,
	}

	if tx != nil {
		return tx.QueryRow(ctx, query, args...).Scan(&a.ID)
	}
	return r.db.QueryRow(ctx, query, args...).Scan(&a.ID)
}

func (r *assetRepo) Update(ctx context.Context, a *models.Asset, tx pgx.Tx) error {
	query := `
		UPDATE assets SET
			account_id = $3, symbol = $4, name = $5, asset_type = $6,
			quantity = $7, purchase_price = $8, current_price = $9, currency = $10,
			last_updated = $11,
			grant_date = $12, vesting_date = $13, expiration_date = $14,
			strike_price = $15, vest_fmv = $16, status = $17,
			tax_country = $18, tax_rate = $19, exercise_price = $20,
			exercise_date = $21, vest_market_price = $22, notes = $23
		WHERE user_id = $1 AND id = $2`

	a.LastUpdated = time.Now().UTC()

	args := []interface{}{
		a.UserID, a.ID,
		a.AccountID, a.Symbol, a.Name, a.AssetType,
		a.Quantity, a.PurchasePrice, a.CurrentPrice, a.Currency,
		a.LastUpdated,
		a.GrantDate, a.VestingDate, a.ExpirationDate,
		a.StrikePrice, a.VestFMV, a.Status,
		a.TaxCountry, a.TaxRate, a.ExercisePrice,
		a.ExerciseDate, a.VestMarketPrice, a.Notes,
	}

	if tx != nil {
		_, err := tx.Exec(ctx, query, args...)
		return err
	}
	_, err := r.db.Exec(ctx, query, args...)
	return err
}

func (r *assetRepo) UpdatePrice(ctx context.Context, id int, price decimal.Decimal, tx pgx.Tx) error {
	query := `UPDATE assets SET current_price = $2, last_updated = $3 WHERE id = $1`
	if tx != nil {
		_, err := tx.Exec(ctx, query, id, price, time.Now().UTC())
		return err
	}
	_, err := r.db.Exec(ctx, query, id, price, time.Now().UTC())
	return err
}

func (r *assetRepo) Delete(ctx context.Context, userID uint, id int, tx pgx.Tx) error {
	query := `DELETE FROM assets WHERE user_id = $1 AND id = $2`
	if tx != nil {
		_, err := tx.Exec(ctx, query, userID, id)
		return err
	}
	_, err := r.db.Exec(ctx, query, userID, id)
	return err
}

func (r *assetRepo) ReassignAccount(ctx context.Context, userID uint, accountID int, tx pgx.Tx) error {
	query := `UPDATE assets SET account_id = NULL WHERE user_id = $1 AND account_id = $2`
	if tx != nil {
		_, err := tx.Exec(ctx, query, userID, accountID)
		return err
	}
	_, err := r.db.Exec(ctx, query, userID, accountID)
	return err
}

func (r *assetRepo) DeleteByAccount(ctx context.Context, userID uint, accountID int, tx pgx.Tx) error {
	query := `DELETE FROM assets WHERE user_id = $1 AND account_id = $2`
	if tx != nil {
		_, err := tx.Exec(ctx, query, userID, accountID)
		return err
	}
	_, err := r.db.Exec(ctx, query, userID, accountID)
	return err
}

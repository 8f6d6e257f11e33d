package repositories

import (
	"context"

	"github.com/gmgifpe/asset-tracker/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PriceHistoryRepository interface {
	Create(ctx context.Context, p *models.PriceHistory, tx pgx.Tx) error
	GetLatestBySymbol(ctx context.Context, symbol string) (*models.PriceHistory, error)
}

type priceHistoryRepo struct {
	db *pgxpool.Pool
}

func NewPriceHistoryRepository(db *pgxpool.Pool) PriceHistoryRepository {
	return &priceHistoryRepo{db: db}
}

func (r *priceHistoryRepo) Create(ctx context.Context, p *models.PriceHistory, tx pgx.Tx) error {
	query := `
		INSERT INTO price_history (symbol, asset_type, price)
		VALUES ($1, $2, $3)
		RETURNING id, timestamp`

	if tx != nil {
		return tx.QueryRow(ctx, query, p.Symbol, p.AssetType, p.Price).Scan(&p.ID, &p.Timestamp)
	}
	return r.db.QueryRow(ctx, query, p.Symbol, p.AssetType, p.Price).Scan(&p.ID, &p.Timestamp)
}

func (r *priceHistoryRepo) GetLatestBySymbol(ctx context.Context, symbol string) (*models.PriceHistory, error) {
	var p models.PriceHistory
	err := r.db.QueryRow(ctx,
		`SELECT id, symbol, asset_type, price, timestamp FROM price_history
		WHERE symbol = $1 ORDER BY timestamp DESC LIMIT 1`,
		symbol,
	).Scan(&p.ID, &p.Symbol, &p.AssetType, &p.Price, &p.Timestamp)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

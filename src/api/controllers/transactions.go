package controllers

import (
	"context"
	"errors"
	"strings"

	"github.com/gmgifpe/asset-tracker/src/models"
	"github.com/gmgifpe/asset-tracker/src/schemas"
	"github.com/gmgifpe/asset-tracker/src/services"
	"github.com/gmgifpe/asset-tracker/src/utils"
)

func (c *Controller) GetTransactions(ctx context.Context, userID uint) ([]schemas.TransactionResponse, error) {
	transactions, err := c.TransactionsRepo.GetAllByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	accountNames, err := c.accountNames(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]schemas.TransactionResponse, 0, len(transactions))
	for i := range transactions {
		responses = append(responses, *services.TransactionToResponse(&transactions[i], accountNames))
	}
	return responses, nil
}

// CreateTransaction records a trade. A SELL that exceeds the running
// position is rejected before anything is written, and the asset row
// for the symbol is rebuilt from the full history afterwards.
func (c *Controller) CreateTransaction(ctx context.Context, userID uint, req *schemas.TransactionRequest) (*schemas.CreateTransactionResponse, error) {
	tx, err := req.ToModel(userID)
	if err != nil {
		return nil, err
	}

	if req.AccountID != nil {
		account, err := c.AccountsRepo.GetByID(ctx, userID, *req.AccountID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, utils.NotFound("account not found")
		}
	}

	history, err := c.TransactionsRepo.GetByUserSymbol(ctx, userID, tx.Symbol)
	if err != nil {
		return nil, err
	}
	replay := make([]*models.Transaction, 0, len(history)+1)
	for i := range history {
		replay = append(replay, &history[i])
	}
	// The candidate has no ID yet; place it after every stored row so a
	// same-day sell replays after the buys already on record.
	candidate := *tx
	for i := range history {
		if history[i].ID >= candidate.ID {
			candidate.ID = history[i].ID + 1
		}
	}
	replay = append(replay, &candidate)
	if _, _, err := services.ComputeHolding(replay); err != nil {
		var oversell *services.OversellError
		if errors.As(err, &oversell) {
			return nil, utils.BadRequest(oversell.Error())
		}
		return nil, err
	}

	if err := c.TransactionsRepo.Create(ctx, tx, nil); err != nil {
		return nil, err
	}

	if err := c.syncAssetPosition(ctx, userID, tx); err != nil {
		utils.LoggerFromContext(ctx).Warnf("could not sync asset position for %s: %v", tx.Symbol, err)
	}

	return &schemas.CreateTransactionResponse{
		Message:       "transaction recorded",
		TransactionID: tx.ID,
	}, nil
}

// GetTransactionSummary returns per-symbol trade summaries, narrowed
// to a single symbol when one is given.
func (c *Controller) GetTransactionSummary(ctx context.Context, userID uint, symbol string) ([]*schemas.TransactionSummary, error) {
	summaries, err := c.PortfolioService.GetTransactionSummary(ctx, userID)
	if err != nil {
		return nil, err
	}
	if symbol == "" {
		return summaries, nil
	}
	symbol = strings.ToUpper(symbol)
	filtered := make([]*schemas.TransactionSummary, 0, 1)
	for _, summary := range summaries {
		if summary.Symbol == symbol {
			filtered = append(filtered, summary)
		}
	}
	return filtered, nil
}

// syncAssetPosition replays a symbol's history and upserts the asset
// row to keep the asset view consistent with the transaction log.
func (c *Controller) syncAssetPosition(ctx context.Context, userID uint, tx *models.Transaction) error {
	history, err := c.TransactionsRepo.GetByUserSymbol(ctx, userID, tx.Symbol)
	if err != nil {
		return err
	}
	replay := make([]*models.Transaction, 0, len(history))
	for i := range history {
		replay = append(replay, &history[i])
	}
	position, _, err := services.ComputeHolding(replay)
	if err != nil {
		return err
	}

	asset, err := c.AssetsRepo.GetByUserSymbolAccount(ctx, userID, tx.Symbol, tx.AccountID)
	if err != nil {
		return err
	}
	if asset != nil {
		asset.Quantity = position.Quantity
		asset.PurchasePrice = position.AverageCost
		return c.AssetsRepo.Update(ctx, asset, nil)
	}

	if !position.Quantity.IsPositive() {
		return nil
	}
	asset = &models.Asset{
		UserID:        userID,
		AccountID:     tx.AccountID,
		Symbol:        tx.Symbol,
		Name:          tx.Name,
		AssetType:     tx.AssetType,
		Quantity:      position.Quantity,
		PurchasePrice: position.AverageCost,
		Currency:      tx.Currency,
		Status:        models.StatusGranted,
		TaxCountry:    "TW",
	}
	return c.AssetsRepo.Create(ctx, asset, nil)
}

package controllers

import (
	"context"

	"github.com/gmgifpe/asset-tracker/src/schemas"
	"github.com/gmgifpe/asset-tracker/src/services"
	"github.com/gmgifpe/asset-tracker/src/utils"
)

func (c *Controller) GetAssets(ctx context.Context, userID uint) ([]schemas.AssetResponse, error) {
	assets, err := c.AssetsRepo.GetAllByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	accountNames, err := c.accountNames(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]schemas.AssetResponse, 0, len(assets))
	for i := range assets {
		responses = append(responses, *services.AssetToResponse(&assets[i], accountNames))
	}
	return responses, nil
}

func (c *Controller) GetAsset(ctx context.Context, userID uint, assetID int) (*schemas.AssetResponse, error) {
	asset, err := c.AssetsRepo.GetByID(ctx, userID, assetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, utils.NotFound("asset not found")
	}
	accountNames, err := c.accountNames(ctx, userID)
	if err != nil {
		return nil, err
	}
	return services.AssetToResponse(asset, accountNames), nil
}

// CreateAsset adds an asset. A second asset with the same symbol in the
// same account merges into the existing row with a weighted average
// purchase price.
func (c *Controller) CreateAsset(ctx context.Context, userID uint, req *schemas.AssetRequest) (*schemas.CreateAssetResponse, error) {
	asset, err := req.ToModel(userID)
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

	existing, err := c.AssetsRepo.GetByUserSymbolAccount(ctx, userID, asset.Symbol, asset.AccountID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.AssetType == asset.AssetType && !existing.IsEquityCompensation() {
		combined := existing.Quantity.Add(asset.Quantity)
		if combined.IsPositive() {
			totalCost := existing.PurchasePrice.Mul(existing.Quantity).Add(asset.PurchasePrice.Mul(asset.Quantity))
			existing.PurchasePrice = totalCost.Div(combined)
		}
		existing.Quantity = combined
		if err := c.AssetsRepo.Update(ctx, existing, nil); err != nil {
			return nil, err
		}
		return &schemas.CreateAssetResponse{
			Message: "asset merged into existing position",
			AssetID: existing.ID,
		}, nil
	}

	if err := c.AssetsRepo.Create(ctx, asset, nil); err != nil {
		return nil, err
	}
	return &schemas.CreateAssetResponse{
		Message: "asset created",
		AssetID: asset.ID,
	}, nil
}

// UpdateAsset replaces the mutable fields of an asset. Vesting and
// exercising equity grants go through here as status changes.
func (c *Controller) UpdateAsset(ctx context.Context, userID uint, assetID int, req *schemas.AssetRequest) (*schemas.AssetResponse, error) {
	existing, err := c.AssetsRepo.GetByID(ctx, userID, assetID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, utils.NotFound("asset not found")
	}

	updated, err := req.ToModel(userID)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.PurchaseDate = existing.PurchaseDate
	updated.CurrentPrice = existing.CurrentPrice

	if err := c.AssetsRepo.Update(ctx, updated, nil); err != nil {
		return nil, err
	}

	accountNames, err := c.accountNames(ctx, userID)
	if err != nil {
		return nil, err
	}
	return services.AssetToResponse(updated, accountNames), nil
}

func (c *Controller) DeleteAsset(ctx context.Context, userID uint, assetID int) (*schemas.Message, error) {
	asset, err := c.AssetsRepo.GetByID(ctx, userID, assetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, utils.NotFound("asset not found")
	}
	if err := c.AssetsRepo.Delete(ctx, userID, assetID, nil); err != nil {
		return nil, err
	}
	return &schemas.Message{Message: "asset deleted"}, nil
}

func (c *Controller) accountNames(ctx context.Context, userID uint) (map[int]string, error) {
	accounts, err := c.AccountsRepo.GetAllByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(accounts))
	for _, account := range accounts {
		names[account.ID] = account.Name
	}
	return names, nil
}

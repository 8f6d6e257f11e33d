package controllers

import (
	"context"

	"github.com/gmgifpe/asset-tracker/src/models"
	"github.com/gmgifpe/asset-tracker/src/schemas"
	"github.com/gmgifpe/asset-tracker/src/utils"

	"github.com/jackc/pgx/v5"
)

func (c *Controller) GetAccounts(ctx context.Context, userID uint) ([]schemas.AccountResponse, error) {
	accounts, err := c.AccountsRepo.GetAllByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	responses := make([]schemas.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		responses = append(responses, schemas.AccountResponse{
			ID:          account.ID,
			Name:        account.Name,
			AccountType: account.AccountType,
			Currency:    account.Currency,
			CreatedAt:   account.CreatedAt,
		})
	}
	return responses, nil
}

func (c *Controller) CreateAccount(ctx context.Context, userID uint, req *schemas.CreateAccountRequest) (*schemas.CreateAccountResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := c.AccountsRepo.GetByName(ctx, userID, req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, utils.BadRequest("an account with this name already exists")
	}

	account := &models.Account{
		UserID:      userID,
		Name:        req.Name,
		AccountType: req.AccountType,
		Currency:    req.Currency,
	}
	if err := c.AccountsRepo.Create(ctx, account, nil); err != nil {
		return nil, err
	}
	return &schemas.CreateAccountResponse{
		Message:   "account created",
		AccountID: account.ID,
	}, nil
}

// DeleteAccount removes an account and its references. Dependent assets
// and transactions are detached under the reassign policy (the default)
// or removed under cascade, in one database transaction with the delete
// so a failure leaves everything in place.
func (c *Controller) DeleteAccount(ctx context.Context, userID uint, accountID int, policy string) (*schemas.Message, error) {
	if policy != "" && policy != schemas.DeletePolicyReassign && policy != schemas.DeletePolicyCascade {
		return nil, utils.Validationf("policy", "must be reassign or cascade")
	}

	account, err := c.AccountsRepo.GetByID(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, utils.NotFound("account not found")
	}

	var tx pgx.Tx
	if c.DB != nil {
		tx, err = c.DB.Begin(ctx)
		if err != nil {
			return nil, err
		}
		defer func() {
			if tx != nil {
				_ = tx.Rollback(ctx)
			}
		}()
	}

	if policy == schemas.DeletePolicyCascade {
		if err := c.AssetsRepo.DeleteByAccount(ctx, userID, accountID, tx); err != nil {
			return nil, err
		}
		if err := c.TransactionsRepo.DeleteByAccount(ctx, userID, accountID, tx); err != nil {
			return nil, err
		}
	} else {
		if err := c.AssetsRepo.ReassignAccount(ctx, userID, accountID, tx); err != nil {
			return nil, err
		}
		if err := c.TransactionsRepo.ReassignAccount(ctx, userID, accountID, tx); err != nil {
			return nil, err
		}
	}

	if err := c.AccountsRepo.Delete(ctx, userID, accountID, tx); err != nil {
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		tx = nil
	}
	return &schemas.Message{Message: "account deleted"}, nil
}

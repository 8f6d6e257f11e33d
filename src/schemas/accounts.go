package schemas

import (
	"time"

	"github.com/gmgifpe/asset-tracker/src/utils"
)

type CreateAccountRequest struct {
	Name        string `json:"name"`
	AccountType string `json:"account_type"`
	Currency    string `json:"currency"`
}

func (r *CreateAccountRequest) Validate() error {
	if r.Name == "" {
		return utils.Validationf("name", "must not be empty")
	}
	if r.AccountType == "" {
		return utils.Validationf("account_type", "must not be empty")
	}
	if r.Currency == "" {
		r.Currency = "USD"
	}
	return nil
}

type AccountResponse struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	AccountType string    `json:"account_type"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateAccountResponse struct {
	Message   string `json:"message"`
	AccountID int    `json:"account_id"`
}

// Account deletion policies for dependent assets.
const (
	DeletePolicyReassign = "reassign"
	DeletePolicyCascade  = "cascade"
)

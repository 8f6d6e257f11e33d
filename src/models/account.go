package models

import "time"

type Account struct {
	ID          int       `db:"id"`
	UserID      uint      `db:"user_id"`
	Name        string    `db:"name"`
	AccountType string    `db:"account_type"`
	Currency    string    `db:"currency"`
	CreatedAt   time.Time `db:"created_at"`
}

// Account types accepted on creation.
const (
	AccountTypeBrokerage  = "brokerage"
	AccountTypeBank       = "bank"
	AccountTypeCrypto     = "crypto"
	AccountTypeRetirement = "retirement"
	AccountTypeOther      = "other"
)

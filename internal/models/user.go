package models

import "time"

// UserProfile holds account identity and the credit balance. The balance is
// only ever written through CreditLedgerService; no other code path touches
// credit_balance.
type UserProfile struct {
	ID            string    `json:"id" db:"id"`
	DisplayName   *string   `json:"display_name" db:"display_name"`
	CreditBalance int64     `json:"credit_balance" db:"credit_balance"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

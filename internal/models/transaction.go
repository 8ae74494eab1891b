package models

import "time"

const (
	TransactionTypePurchase  = "purchase"
	TransactionTypeDeduction = "deduction"
	TransactionTypeRefund    = "refund"
)

// CreditTransaction is an append-only ledger row. BalanceAfter snapshots the
// account balance immediately after this row was written, so ordering a
// user's rows by created_at yields a reconcilable balance chain.
//
// StripeSessionID is unique when present and serves as the idempotency key
// for webhook redeliveries.
type CreditTransaction struct {
	ID              string    `json:"id" db:"id"`
	UserID          string    `json:"user_id" db:"user_id"`
	Amount          int64     `json:"amount" db:"amount"`
	BalanceAfter    int64     `json:"balance_after" db:"balance_after"`
	TransactionType string    `json:"transaction_type" db:"transaction_type"`
	Description     string    `json:"description" db:"description"`
	StripeSessionID *string   `json:"stripe_session_id,omitempty" db:"stripe_session_id"`
	SongID          *string   `json:"song_id,omitempty" db:"song_id"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

package services

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
	"github.com/songforge/backend/internal/models"
)

var (
	// ErrAccountNotFound means the user profile row does not exist.
	ErrAccountNotFound = errors.New("user profile not found")
	// ErrDuplicateTransaction means a ledger row already exists for the
	// checkout session. Callers treat this as "already processed".
	ErrDuplicateTransaction = errors.New("transaction already recorded for session")
	// ErrInsufficientCredits means the deduction would drive the balance
	// negative.
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// CreditLedgerService is the only writer of user_profile.credit_balance.
// Every balance change commits together with an append-only
// credit_transaction row carrying the resulting balance.
type CreditLedgerService struct {
	db *sql.DB
}

func NewCreditLedgerService(db *sql.DB) *CreditLedgerService {
	return &CreditLedgerService{db: db}
}

// AddCredits credits a user account and appends the matching ledger row in a
// single transaction. The unique constraint on stripe_session_id is the
// final backstop against concurrent redeliveries: a unique violation at
// insert time surfaces as ErrDuplicateTransaction, not as a failure.
func (s *CreditLedgerService) AddCredits(userID string, amount int64, description, stripeSessionID string) (*models.CreditTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	balance, err := s.lockBalance(tx, userID)
	if err != nil {
		return nil, err
	}

	newBalance := balance + amount
	if err := s.updateBalance(tx, userID, newBalance); err != nil {
		return nil, err
	}

	txn := &models.CreditTransaction{
		ID:              uuid.NewString(),
		UserID:          userID,
		Amount:          amount,
		BalanceAfter:    newBalance,
		TransactionType: models.TransactionTypePurchase,
		Description:     description,
		StripeSessionID: &stripeSessionID,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.insertTransaction(tx, txn); err != nil {
		if isUniqueViolation(err) {
			log.Printf("[LEDGER] Session %s already recorded, skipping credit for user %s", stripeSessionID, userID)
			return nil, ErrDuplicateTransaction
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return txn, nil
}

// DeductCredits runs DeductCreditsTx in its own transaction.
func (s *CreditLedgerService) DeductCredits(userID string, amount int64, description string, songID *string) (*models.CreditTransaction, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	txn, err := s.DeductCreditsTx(tx, userID, amount, description, songID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return txn, nil
}

// DeductCreditsTx debits a user account inside the caller's transaction so
// the deduction can commit atomically with related rows (e.g. a song
// insert). The balance is never allowed to go negative.
func (s *CreditLedgerService) DeductCreditsTx(tx *sql.Tx, userID string, amount int64, description string, songID *string) (*models.CreditTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("deduction amount must be positive, got %d", amount)
	}

	balance, err := s.lockBalance(tx, userID)
	if err != nil {
		return nil, err
	}
	if balance < amount {
		return nil, ErrInsufficientCredits
	}

	newBalance := balance - amount
	if err := s.updateBalance(tx, userID, newBalance); err != nil {
		return nil, err
	}

	txn := &models.CreditTransaction{
		ID:              uuid.NewString(),
		UserID:          userID,
		Amount:          -amount,
		BalanceAfter:    newBalance,
		TransactionType: models.TransactionTypeDeduction,
		Description:     description,
		SongID:          songID,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.insertTransaction(tx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// HasProcessedSession reports whether a ledger row already exists for the
// given checkout session. Two concurrent deliveries can both pass this
// check, so callers must still treat ErrDuplicateTransaction from AddCredits
// as "already processed".
func (s *CreditLedgerService) HasProcessedSession(stripeSessionID string) (bool, error) {
	var id string
	err := s.db.QueryRow(`SELECT id FROM credit_transaction WHERE stripe_session_id = $1`, stripeSessionID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetBalance returns the current credit balance for a user
func (s *CreditLedgerService) GetBalance(userID string) (int64, error) {
	var balance int64
	err := s.db.QueryRow(`SELECT credit_balance FROM user_profile WHERE id = $1`, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrAccountNotFound
	}
	return balance, err
}

// ListTransactions returns a user's most recent ledger rows
func (s *CreditLedgerService) ListTransactions(userID string, limit int) ([]models.CreditTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, user_id, amount, balance_after, transaction_type, description, stripe_session_id, song_id, created_at
		FROM credit_transaction
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []models.CreditTransaction
	for rows.Next() {
		var txn models.CreditTransaction
		if err := rows.Scan(&txn.ID, &txn.UserID, &txn.Amount, &txn.BalanceAfter, &txn.TransactionType,
			&txn.Description, &txn.StripeSessionID, &txn.SongID, &txn.CreatedAt); err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

func (s *CreditLedgerService) lockBalance(tx *sql.Tx, userID string) (int64, error) {
	var balance int64
	err := tx.QueryRow(`
		SELECT credit_balance
		FROM user_profile
		WHERE id = $1
		FOR UPDATE`, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrAccountNotFound
	}
	return balance, err
}

func (s *CreditLedgerService) updateBalance(tx *sql.Tx, userID string, newBalance int64) error {
	_, err := tx.Exec(`
		UPDATE user_profile
		SET credit_balance = $1, updated_at = $2
		WHERE id = $3`,
		newBalance, time.Now(), userID)
	return err
}

func (s *CreditLedgerService) insertTransaction(tx *sql.Tx, txn *models.CreditTransaction) error {
	_, err := tx.Exec(`
		INSERT INTO credit_transaction (id, user_id, amount, balance_after, transaction_type, description, stripe_session_id, song_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		txn.ID, txn.UserID, txn.Amount, txn.BalanceAfter, txn.TransactionType,
		txn.Description, txn.StripeSessionID, txn.SongID, txn.CreatedAt)
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgerrcode.UniqueViolation
	}
	return false
}

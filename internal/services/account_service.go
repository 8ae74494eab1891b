package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/songforge/backend/internal/models"
)

// AccountService serves the authenticated account surface. Like the ledger,
// it reads user_profile but never writes credit_balance.
type AccountService struct {
	db     *sql.DB
	ledger *CreditLedgerService
}

func NewAccountService(db *sql.DB, ledger *CreditLedgerService) *AccountService {
	return &AccountService{db: db, ledger: ledger}
}

// GetUserAccount returns the caller's profile and credit balance
// @Summary Get user account
// @Tags account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]models.UserProfile
// @Failure 401 {object} services.ErrorResponse
// @Router /account [get]
func (s *AccountService) GetUserAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendAPIError(w, &APIError{Code: CodeUnauthorized, Message: "Unauthorized", Status: http.StatusUnauthorized})
		return
	}

	var profile models.UserProfile
	err := s.db.QueryRow(`
		SELECT id, display_name, credit_balance, created_at, updated_at
		FROM user_profile
		WHERE id = $1`, userID).
		Scan(&profile.ID, &profile.DisplayName, &profile.CreditBalance, &profile.CreatedAt, &profile.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		SendAPIError(w, &APIError{Code: CodeNotFound, Message: "User profile not found", Status: http.StatusNotFound})
		return
	}
	if err != nil {
		log.Printf("[ACCOUNT] Failed to load profile %s: %v", userID, err)
		SendAPIError(w, &APIError{Code: CodeInternalError, Message: "Failed to load account", Status: http.StatusInternalServerError})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"data": profile})
}

// ListCreditTransactions returns the caller's ledger history
// @Summary List credit transactions
// @Tags account
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max rows (default 50)"
// @Success 200 {object} map[string][]models.CreditTransaction
// @Failure 401 {object} services.ErrorResponse
// @Router /credits/transactions [get]
func (s *AccountService) ListCreditTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendAPIError(w, &APIError{Code: CodeUnauthorized, Message: "Unauthorized", Status: http.StatusUnauthorized})
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	txns, err := s.ledger.ListTransactions(userID, limit)
	if err != nil {
		log.Printf("[ACCOUNT] Failed to list transactions for %s: %v", userID, err)
		SendAPIError(w, &APIError{Code: CodeInternalError, Message: "Failed to load transactions", Status: http.StatusInternalServerError})
		return
	}
	if txns == nil {
		txns = []models.CreditTransaction{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"data": txns})
}

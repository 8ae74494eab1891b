package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/songforge/backend/internal/models"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
)

const checkoutCompletedEvent = "checkout.session.completed"

// WebhookOutcome classifies an acknowledged delivery. Every outcome maps to
// the same {"received":true} response so Stripe does not retry events we
// have already handled or deliberately ignored.
type WebhookOutcome string

const (
	OutcomeIgnored   WebhookOutcome = "ignored"
	OutcomeDuplicate WebhookOutcome = "duplicate"
	OutcomeCredited  WebhookOutcome = "credited"
)

type WebhookResult struct {
	Outcome     WebhookOutcome
	EventType   string
	Transaction *models.CreditTransaction
}

type StripeWebhookService struct {
	ledger        *CreditLedgerService
	webhookSecret string
}

func NewStripeWebhookService(ledger *CreditLedgerService, webhookSecret string) *StripeWebhookService {
	return &StripeWebhookService{
		ledger:        ledger,
		webhookSecret: webhookSecret,
	}
}

// ProcessEvent runs a raw Stripe delivery through signature verification,
// event classification, the idempotency guard and the ledger. The payload
// must be the untouched request body: re-serializing it before verification
// invalidates the signature.
func (s *StripeWebhookService) ProcessEvent(payload []byte, sigHeader string) (*WebhookResult, *APIError) {
	if sigHeader == "" {
		return nil, &APIError{Code: CodeMissingSignature, Message: "Missing Stripe signature", Status: http.StatusBadRequest}
	}
	if s.webhookSecret == "" {
		log.Printf("[WEBHOOK] STRIPE_WEBHOOK_SECRET is not configured")
		return nil, &APIError{Code: CodeConfigError, Message: "Webhook secret not configured", Status: http.StatusInternalServerError}
	}

	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		log.Printf("[WEBHOOK] Signature verification failed: %v", err)
		return nil, &APIError{Code: CodeInvalidSignature, Message: "Webhook signature verification failed", Status: http.StatusBadRequest}
	}

	if event.Type != checkoutCompletedEvent {
		log.Printf("[WEBHOOK] Ignoring event type %s", event.Type)
		return &WebhookResult{Outcome: OutcomeIgnored, EventType: string(event.Type)}, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		log.Printf("[WEBHOOK] Malformed checkout session payload: %v", err)
		return nil, &APIError{Code: CodeMissingMetadata, Message: "Invalid session payload", Status: http.StatusBadRequest}
	}

	userID := session.Metadata["userId"]
	creditsRaw := session.Metadata["credits"]
	packageID := session.Metadata["packageId"]

	if userID == "" || creditsRaw == "" {
		log.Printf("[WEBHOOK] Missing metadata in session %s: userId=%q credits=%q", session.ID, userID, creditsRaw)
		return nil, &APIError{Code: CodeMissingMetadata, Message: "Invalid session metadata", Status: http.StatusBadRequest}
	}

	credits, err := strconv.ParseInt(creditsRaw, 10, 64)
	if err != nil || credits <= 0 {
		log.Printf("[WEBHOOK] Invalid credits value %q in session %s", creditsRaw, session.ID)
		return nil, &APIError{Code: CodeMissingMetadata, Message: "Invalid session metadata", Status: http.StatusBadRequest}
	}

	processed, err := s.ledger.HasProcessedSession(session.ID)
	if err != nil {
		log.Printf("[WEBHOOK] Idempotency check failed for session %s: %v", session.ID, err)
		return nil, &APIError{Code: CodeWebhookError, Message: "Webhook processing failed", Status: http.StatusInternalServerError}
	}
	if processed {
		log.Printf("[WEBHOOK] Session %s already processed (idempotent)", session.ID)
		return &WebhookResult{Outcome: OutcomeDuplicate, EventType: string(event.Type)}, nil
	}

	description := fmt.Sprintf("Credit purchase: %s package", packageID)
	txn, err := s.ledger.AddCredits(userID, credits, description, session.ID)
	if errors.Is(err, ErrDuplicateTransaction) {
		// A concurrent delivery won the insert race. Same acknowledgment
		// as the guard hit above.
		return &WebhookResult{Outcome: OutcomeDuplicate, EventType: string(event.Type)}, nil
	}
	if err != nil {
		// Money was received but not credited; log everything needed for
		// manual reconciliation.
		log.Printf("[WEBHOOK] Failed to add credits: user=%s session=%s amount=%d err=%v", userID, session.ID, credits, err)
		return nil, &APIError{Code: CodeAddCreditsFailed, Message: "Failed to add credits", Details: err.Error(), Status: http.StatusInternalServerError}
	}

	log.Printf("[WEBHOOK] Credits added: user=%s session=%s amount=%d balance=%d txn=%s",
		userID, session.ID, credits, txn.BalanceAfter, txn.ID)
	return &WebhookResult{Outcome: OutcomeCredited, EventType: string(event.Type), Transaction: txn}, nil
}

package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/songforge/backend/internal/services"
	"github.com/stretchr/testify/assert"
)

const testWebhookSecret = "whsec_test_secret"

func signPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func newWebhookHandler(t *testing.T) (*WebhookHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	service := services.NewStripeWebhookService(services.NewCreditLedgerService(db), testWebhookSecret)
	return NewWebhookHandler(service), mock, func() { db.Close() }
}

func postWebhook(handler *WebhookHandler, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	handler.HandleStripeWebhook(rec, req)
	return rec
}

func TestWebhookHandler_HandleStripeWebhook(t *testing.T) {
	checkoutPayload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"sess_1","metadata":{"userId":"u1","credits":"100","packageId":"starter"}}}}`)

	t.Run("credited delivery acknowledges with received true", func(t *testing.T) {
		handler, mock, cleanup := newWebhookHandler(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT id FROM credit_transaction WHERE stripe_session_id = \$1`).
			WithArgs("sess_1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT credit_balance FROM user_profile WHERE id = \$1 FOR UPDATE`).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"credit_balance"}).AddRow(0))
		mock.ExpectExec(`UPDATE user_profile SET credit_balance = \$1`).
			WithArgs(100, sqlmock.AnyArg(), "u1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO credit_transaction`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		rec := postWebhook(handler, checkoutPayload, signPayload(checkoutPayload, testWebhookSecret))
		assert.Equal(t, http.StatusOK, rec.Code)

		var body map[string]bool
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body["received"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ignored event type acknowledges identically", func(t *testing.T) {
		handler, mock, cleanup := newWebhookHandler(t)
		defer cleanup()

		payload := []byte(`{"id":"evt_2","type":"payment_intent.created","data":{"object":{"id":"pi_1"}}}`)

		rec := postWebhook(handler, payload, signPayload(payload, testWebhookSecret))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"received":true}`, rec.Body.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate delivery acknowledges identically", func(t *testing.T) {
		handler, mock, cleanup := newWebhookHandler(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT id FROM credit_transaction WHERE stripe_session_id = \$1`).
			WithArgs("sess_1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("txn-1"))

		rec := postWebhook(handler, checkoutPayload, signPayload(checkoutPayload, testWebhookSecret))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"received":true}`, rec.Body.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing signature is rejected with the error envelope", func(t *testing.T) {
		handler, mock, cleanup := newWebhookHandler(t)
		defer cleanup()

		rec := postWebhook(handler, checkoutPayload, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var body services.ErrorResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, services.CodeMissingSignature, body.Error.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("tampered payload is rejected without touching the ledger", func(t *testing.T) {
		handler, mock, cleanup := newWebhookHandler(t)
		defer cleanup()

		tampered := bytes.Replace(checkoutPayload, []byte(`"credits":"100"`), []byte(`"credits":"100000"`), 1)

		rec := postWebhook(handler, tampered, signPayload(checkoutPayload, testWebhookSecret))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var body services.ErrorResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, services.CodeInvalidSignature, body.Error.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ledger failure returns a 500 envelope", func(t *testing.T) {
		handler, mock, cleanup := newWebhookHandler(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT id FROM credit_transaction WHERE stripe_session_id = \$1`).
			WithArgs("sess_1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT credit_balance FROM user_profile WHERE id = \$1 FOR UPDATE`).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"credit_balance"}))
		mock.ExpectRollback()

		rec := postWebhook(handler, checkoutPayload, signPayload(checkoutPayload, testWebhookSecret))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		var body services.ErrorResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, services.CodeAddCreditsFailed, body.Error.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

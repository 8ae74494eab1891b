package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/songforge/backend/internal/services"
)

// Stripe webhook payloads are small; anything larger is not a legitimate
// event.
const maxWebhookBodyBytes = 65_536

type WebhookHandler struct {
	service *services.StripeWebhookService
}

func NewWebhookHandler(service *services.StripeWebhookService) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// HandleStripeWebhook processes a payment confirmation delivery
// @Summary Stripe webhook
// @Description Verifies and processes Stripe checkout events, crediting user accounts idempotently
// @Tags webhooks
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Stripe signature header"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /webhooks/stripe [post]
func (h *WebhookHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	// The raw body goes to signature verification untouched; do not decode
	// and re-encode it anywhere on this path.
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		services.SendAPIError(w, &services.APIError{
			Code:    services.CodeWebhookError,
			Message: "Unable to read request body",
			Status:  http.StatusBadRequest,
		})
		return
	}

	_, apiErr := h.service.ProcessEvent(payload, r.Header.Get("Stripe-Signature"))
	if apiErr != nil {
		services.SendAPIError(w, apiErr)
		return
	}

	// Ignored, duplicate and credited outcomes all acknowledge identically
	// so Stripe does not redeliver.
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"received": true})
}

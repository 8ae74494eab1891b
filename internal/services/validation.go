package services

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Error codes returned in the {error:{code,...}} envelope.
const (
	CodeMissingSignature    = "MISSING_SIGNATURE"
	CodeConfigError         = "CONFIG_ERROR"
	CodeInvalidSignature    = "INVALID_SIGNATURE"
	CodeMissingMetadata     = "MISSING_METADATA"
	CodeAddCreditsFailed    = "ADD_CREDITS_FAILED"
	CodeWebhookError        = "WEBHOOK_ERROR"
	CodeInvalidConcept      = "INVALID_CONCEPT"
	CodeConceptTooShort     = "CONCEPT_TOO_SHORT"
	CodeConceptTooLong      = "CONCEPT_TOO_LONG"
	CodeInvalidGenre        = "INVALID_GENRE"
	CodeGenerationFailed    = "GENERATION_FAILED"
	CodeAPIKeyError         = "API_KEY_ERROR"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeInsufficientCredits = "INSUFFICIENT_CREDITS"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeNotFound            = "NOT_FOUND"
	CodeInternalError       = "INTERNAL_ERROR"
)

// APIError carries a client-facing error through the service layer up to the
// transport response. Details is free text and must never contain secret
// values.
type APIError struct {
	Code    string
	Message string
	Details string
	Status  int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper
func NewValidationHelper() *ValidationHelper {
	return &ValidationHelper{
		validator: validator.New(),
	}
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// SendAPIError writes an APIError as a JSON error envelope
func SendAPIError(w http.ResponseWriter, apiErr *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)

	detail := ErrorDetail{Code: apiErr.Code, Message: apiErr.Message}
	if apiErr.Details != "" {
		detail.Details = apiErr.Details
	}
	json.NewEncoder(w).Encode(ErrorResponse{Error: detail})
}

// SendValidationError maps validator errors onto the envelope's details
func SendValidationError(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	detail := ErrorDetail{Code: CodeValidationFailed, Message: message}
	if fieldErrs, ok := validationErr.(validator.ValidationErrors); ok {
		details := make(map[string]string)
		for _, err := range fieldErrs {
			details[err.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
		}
		detail.Details = details
	}
	json.NewEncoder(w).Encode(ErrorResponse{Error: detail})
}

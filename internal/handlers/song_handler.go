package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/songforge/backend/internal/services"
)

type SongHandler struct {
	service   *services.SongService
	validator *services.ValidationHelper
}

func NewSongHandler(service *services.SongService) *SongHandler {
	return &SongHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

// CreateSong creates a song and deducts its credit cost
// @Summary Create song
// @Tags songs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateSongRequest true "Song data"
// @Success 200 {object} map[string]any
// @Failure 400 {object} services.ErrorResponse
// @Failure 402 {object} services.ErrorResponse
// @Router /songs [post]
func (h *SongHandler) CreateSong(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		services.SendAPIError(w, &services.APIError{Code: services.CodeUnauthorized, Message: "Unauthorized", Status: http.StatusUnauthorized})
		return
	}

	var req services.CreateSongRequest

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		services.SendValidationError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendValidationError(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendValidationError(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	song, txn, err := h.service.CreateSong(userID, &req)
	if errors.Is(err, services.ErrInsufficientCredits) {
		services.SendAPIError(w, &services.APIError{Code: services.CodeInsufficientCredits, Message: "Not enough credits", Status: http.StatusPaymentRequired})
		return
	}
	if errors.Is(err, services.ErrAccountNotFound) {
		services.SendAPIError(w, &services.APIError{Code: services.CodeNotFound, Message: "User profile not found", Status: http.StatusNotFound})
		return
	}
	if err != nil {
		log.Printf("[SONGS] Failed to create song for user %s: %v", userID, err)
		services.SendAPIError(w, &services.APIError{Code: services.CodeInternalError, Message: "Failed to create song", Status: http.StatusInternalServerError})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"data": map[string]any{
			"song":        song,
			"transaction": txn,
		},
	})
}

// RequestMastering queues a mastering request for an owned song
// @Summary Request mastering
// @Tags mastering
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.MasteringRequestInput true "Song and notes"
// @Success 200 {object} map[string]models.MasteringRequest
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /mastering [post]
func (h *SongHandler) RequestMastering(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		services.SendAPIError(w, &services.APIError{Code: services.CodeUnauthorized, Message: "Unauthorized", Status: http.StatusUnauthorized})
		return
	}

	var req services.MasteringRequestInput

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		services.SendValidationError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendValidationError(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	mr, err := h.service.RequestMastering(userID, &req)
	if errors.Is(err, services.ErrSongNotFound) {
		services.SendAPIError(w, &services.APIError{Code: services.CodeNotFound, Message: "Song not found", Status: http.StatusNotFound})
		return
	}
	if err != nil {
		log.Printf("[MASTERING] Failed to create request for user %s: %v", userID, err)
		services.SendAPIError(w, &services.APIError{Code: services.CodeInternalError, Message: "Failed to create mastering request", Status: http.StatusInternalServerError})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"data": mr})
}

// ListMasteringRequests lists the caller's mastering requests
// @Summary List mastering requests
// @Tags mastering
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]models.MasteringRequest
// @Router /mastering [get]
func (h *SongHandler) ListMasteringRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		services.SendAPIError(w, &services.APIError{Code: services.CodeUnauthorized, Message: "Unauthorized", Status: http.StatusUnauthorized})
		return
	}

	requests, err := h.service.ListMasteringRequests(userID)
	if err != nil {
		log.Printf("[MASTERING] Failed to list requests for user %s: %v", userID, err)
		services.SendAPIError(w, &services.APIError{Code: services.CodeInternalError, Message: "Failed to load mastering requests", Status: http.StatusInternalServerError})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"data": requests})
}

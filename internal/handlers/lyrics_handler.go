package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/songforge/backend/internal/services"
)

type LyricsHandler struct {
	service *services.LyricsService
}

func NewLyricsHandler(service *services.LyricsService) *LyricsHandler {
	return &LyricsHandler{service: service}
}

// GenerateLyrics generates song lyrics for a concept and genre
// @Summary Generate lyrics
// @Tags lyrics
// @Accept json
// @Produce json
// @Param request body services.LyricRequest true "Concept and genre"
// @Success 200 {object} map[string]map[string]string
// @Failure 400 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /lyrics/generate [post]
func (h *LyricsHandler) GenerateLyrics(w http.ResponseWriter, r *http.Request) {
	var req services.LyricRequest

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		services.SendAPIError(w, &services.APIError{
			Code:    services.CodeInvalidConcept,
			Message: "Konsept er påkrevd",
			Status:  http.StatusBadRequest,
		})
		return
	}

	lyrics, apiErr := h.service.Generate(r.Context(), &req)
	if apiErr != nil {
		services.SendAPIError(w, apiErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"data": map[string]string{"lyrics": lyrics},
	})
}

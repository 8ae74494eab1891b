package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/songforge/backend/internal/config"
	"github.com/songforge/backend/internal/services"
)

// CatalogHandler serves the public genre and credit package catalogs.
type CatalogHandler struct {
	genres   *services.GenreService
	packages []config.CreditPackage
}

func NewCatalogHandler(genres *services.GenreService, packages []config.CreditPackage) *CatalogHandler {
	return &CatalogHandler{genres: genres, packages: packages}
}

// ListGenres returns the active genre catalog
// @Summary List genres
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string][]models.Genre
// @Router /genres [get]
func (h *CatalogHandler) ListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.genres.ListGenres(r.Context())
	if err != nil {
		log.Printf("[CATALOG] Failed to list genres: %v", err)
		services.SendAPIError(w, &services.APIError{Code: services.CodeInternalError, Message: "Failed to load genres", Status: http.StatusInternalServerError})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"data": genres})
}

// ListPackages returns the purchasable credit packages
// @Summary List credit packages
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string][]config.CreditPackage
// @Router /packages [get]
func (h *CatalogHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"data": h.packages})
}

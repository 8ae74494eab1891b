package services

import (
	"context"
	"errors"
	"log"
	"net/http"
	"unicode/utf8"
)

const (
	conceptMinLength = 10
	conceptMaxLength = 500
)

type LyricRequest struct {
	Concept string `json:"concept"`
	Genre   string `json:"genre"`
}

type LyricsService struct {
	generator LyricGenerator
}

func NewLyricsService(generator LyricGenerator) *LyricsService {
	return &LyricsService{generator: generator}
}

// ValidateRequest checks concept and genre in the order the client reports
// them. Nothing reaches the provider before this passes.
func (s *LyricsService) ValidateRequest(req *LyricRequest) *APIError {
	switch {
	case req.Concept == "":
		return &APIError{Code: CodeInvalidConcept, Message: "Konsept er påkrevd", Status: http.StatusBadRequest}
	case utf8.RuneCountInString(req.Concept) < conceptMinLength:
		return &APIError{Code: CodeConceptTooShort, Message: "Konseptet må være minst 10 tegn", Status: http.StatusBadRequest}
	case utf8.RuneCountInString(req.Concept) > conceptMaxLength:
		return &APIError{Code: CodeConceptTooLong, Message: "Konseptet kan ikke være mer enn 500 tegn", Status: http.StatusBadRequest}
	case req.Genre == "":
		return &APIError{Code: CodeInvalidGenre, Message: "Sjanger er påkrevd", Status: http.StatusBadRequest}
	}
	return nil
}

// Generate validates the request and asks the provider for lyrics.
func (s *LyricsService) Generate(ctx context.Context, req *LyricRequest) (string, *APIError) {
	if apiErr := s.ValidateRequest(req); apiErr != nil {
		return "", apiErr
	}

	lyrics, err := s.generator.GenerateLyrics(ctx, req.Genre, req.Concept)
	if err != nil {
		log.Printf("[LYRICS] Generation failed: %v", err)
		if errors.Is(err, ErrAPIKey) {
			return "", &APIError{Code: CodeAPIKeyError, Message: "Kunne ikke koble til AI-tjenesten. Vennligst prøv igjen senere.", Status: http.StatusInternalServerError}
		}
		return "", &APIError{Code: CodeGenerationFailed, Message: "Kunne ikke generere tekst. Prøv igjen.", Status: http.StatusInternalServerError}
	}
	return lyrics, nil
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/songforge/backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GenerateLyrics(ctx context.Context, genre, concept string) (string, error) {
	args := m.Called(ctx, genre, concept)
	return args.String(0), args.Error(1)
}

func postLyrics(handler *LyricsHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/lyrics/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.GenerateLyrics(rec, req)
	return rec
}

func TestLyricsHandler_GenerateLyrics(t *testing.T) {
	t.Run("successful generation", func(t *testing.T) {
		generator := new(mockGenerator)
		generator.On("GenerateLyrics", mock.Anything, "pop", "en sang om fjell og fjord").
			Return("Vi går på tur, aldri sur", nil)
		handler := NewLyricsHandler(services.NewLyricsService(generator))

		rec := postLyrics(handler, `{"concept":"en sang om fjell og fjord","genre":"pop"}`)
		assert.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data struct {
				Lyrics string `json:"lyrics"`
			} `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Vi går på tur, aldri sur", body.Data.Lyrics)
		generator.AssertExpectations(t)
	})

	t.Run("short concept never reaches the provider", func(t *testing.T) {
		generator := new(mockGenerator)
		handler := NewLyricsHandler(services.NewLyricsService(generator))

		rec := postLyrics(handler, `{"concept":"hytte","genre":"pop"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var body services.ErrorResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, services.CodeConceptTooShort, body.Error.Code)
		generator.AssertNotCalled(t, "GenerateLyrics", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed body", func(t *testing.T) {
		generator := new(mockGenerator)
		handler := NewLyricsHandler(services.NewLyricsService(generator))

		rec := postLyrics(handler, `{"concept":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var body services.ErrorResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, services.CodeInvalidConcept, body.Error.Code)
		generator.AssertNotCalled(t, "GenerateLyrics", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("provider failure returns a 500 envelope", func(t *testing.T) {
		generator := new(mockGenerator)
		generator.On("GenerateLyrics", mock.Anything, "pop", "en sang om fjell og fjord").
			Return("", services.ErrEmptyCompletion)
		handler := NewLyricsHandler(services.NewLyricsService(generator))

		rec := postLyrics(handler, `{"concept":"en sang om fjell og fjord","genre":"pop"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		var body services.ErrorResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, services.CodeGenerationFailed, body.Error.Code)
	})
}

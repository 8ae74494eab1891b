package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	openaiChatURL     = "https://api.openai.com/v1/chat/completions"
	openaiModel       = "gpt-4"
	openaiTemperature = 0.7
	openaiMaxTokens   = 200
)

var (
	// ErrAPIKey covers a missing or rejected OpenAI API key.
	ErrAPIKey = errors.New("openai api key missing or rejected")
	// ErrEmptyCompletion means the provider answered but produced no lyrics.
	ErrEmptyCompletion = errors.New("provider returned no lyrics")
)

// LyricGenerator produces song lyrics for a concept in a given genre.
type LyricGenerator interface {
	GenerateLyrics(ctx context.Context, genre, concept string) (string, error)
}

// OpenAIClient calls the chat completions API over plain HTTP.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: openaiChatURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func systemPrompt(genre string) string {
	return fmt.Sprintf(`Du er en norsk låtskriver som lager autentiske norske tekster i %s stil.
Skriv 4-8 korte verslinjer på norsk bokmål med referanser til norsk kultur og humor.
Ikke bruk anførselstegn eller formatering - bare rene tekstlinjer.
Linjene skal være morsomme, personlige og passe til sjangeren.`, genre)
}

func (c *OpenAIClient) GenerateLyrics(ctx context.Context, genre, concept string) (string, error) {
	if c.apiKey == "" {
		return "", ErrAPIKey
	}

	body, err := json.Marshal(chatRequest{
		Model:       openaiModel,
		Temperature: openaiTemperature,
		MaxTokens:   openaiMaxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(genre)},
			{Role: "user", Content: fmt.Sprintf("Lag en %s sang om: %s", genre, concept)},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized {
			return "", fmt.Errorf("%w: status %d", ErrAPIKey, resp.StatusCode)
		}
		var apiErr chatError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("openai: %s (status %d)", apiErr.Error.Message, resp.StatusCode)
		}
		return "", fmt.Errorf("openai: unexpected status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	lyrics := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if lyrics == "" {
		return "", ErrEmptyCompletion
	}
	return lyrics, nil
}

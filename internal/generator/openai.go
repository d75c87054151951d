package generator

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

const openAIChatURL = "https://api.openai.com/v1/chat/completions"

const systemPrompt = "You are a puzzle generator for a word-chain game. " +
	"You respond with a single JSON array of uppercase words and nothing else."

// Generator produces free-form text expected to contain a word chain.
// No well-formedness is guaranteed; callers must parse defensively.
type Generator interface {
	Complete(ctx context.Context, instructions string) (string, error)
}

// OpenAIGenerator calls the chat-completions API with a low-temperature,
// bounded-length request. A single failure surfaces immediately; the
// caller decides whether to retry.
type OpenAIGenerator struct {
	APIKey  string
	Model   string
	Client  *http.Client
	BaseURL string
}

type openAIChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openAIChatMessage `json:"messages"`
	Temperature float64             `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
}

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	return &OpenAIGenerator{
		APIKey:  apiKey,
		Model:   model,
		Client:  &http.Client{Timeout: 30 * time.Second},
		BaseURL: openAIChatURL,
	}
}

func (g *OpenAIGenerator) Complete(ctx context.Context, instructions string) (string, error) {
	if strings.TrimSpace(g.APIKey) == "" {
		return "", errors.New("OpenAI API key is not configured")
	}

	reqBody := openAIChatRequest{
		Model: g.Model,
		Messages: []openAIChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: instructions},
		},
		Temperature: 0.2,
		MaxTokens:   200,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to build OpenAI request")
	}

	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, g.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build OpenAI request")
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(g.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach OpenAI")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read OpenAI response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("OpenAI request failed (%d)", resp.StatusCode)
	}

	var parsed openAIChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse OpenAI response")
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return "", fmt.Errorf("OpenAI error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("OpenAI returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

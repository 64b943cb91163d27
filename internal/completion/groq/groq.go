// Package groq generates chat completions via Groq's OpenAI-compatible API.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// Client sends single-turn chat completion requests. A circuit breaker
// short-circuits calls while the provider is failing.
type Client struct {
	url     string
	apiKey  string
	model   string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// Config configures the completions client. APIKey is injected by the
// caller; the client never reads the environment itself.
type Config struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("groq: missing API key")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3-8b-8192"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 60 * time.Second
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GroqAPI",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("circuit breaker %s: %s -> %s", name, from, to)
		},
	})
	return &Client{
		url:     cfg.BaseURL + "/chat/completions",
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: t},
		breaker: breaker,
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the prompt as a single user message and returns the
// trimmed first-choice content.
func (c *Client) Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	out, err := c.breaker.Execute(func() (any, error) {
		return c.complete(ctx, prompt, temperature, maxTokens)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (c *Client) complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
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
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("groq chat completion failed: %s", resp.Status)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var out chatResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", fmt.Errorf("groq: malformed response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("groq: response has no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

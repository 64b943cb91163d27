// Package huggingface embeds text via the HuggingFace inference API.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Client calls a feature-extraction model endpoint. The model produces
// fixed-length vectors; any response of a different length is rejected by
// the caller against Dimension.
type Client struct {
	url        string
	apiKey     string
	dimension  int
	client     *http.Client
	maxRetries int
}

// Config configures the embeddings client. APIKey is injected by the
// caller; the client never reads the environment itself.
type Config struct {
	BaseURL   string
	Model     string
	APIKey    string
	Dimension int
	Timeout   time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("huggingface: missing API key")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api-inference.huggingface.co/models"
	}
	if cfg.Model == "" {
		cfg.Model = "BAAI/bge-small-en-v1.5"
	}
	if cfg.Dimension == 0 {
		cfg.Dimension = 384
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		url:        fmt.Sprintf("%s/%s", cfg.BaseURL, cfg.Model),
		apiKey:     cfg.APIKey,
		dimension:  cfg.Dimension,
		client:     &http.Client{Timeout: t},
		maxRetries: 5,
	}, nil
}

// Dimension returns the configured vector length.
func (c *Client) Dimension() int { return c.dimension }

// Embed returns the embedding vector for the given text. Transient failures
// (429, 5xx, transport errors) are retried with exponential backoff.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	body, _ := json.Marshal(map[string]any{"inputs": []string{text}})
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt < c.maxRetries {
				time.Sleep(retryDelay(attempt, ""))
				continue
			}
			return nil, err
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			retryAfter := resp.Header.Get("Retry-After")
			_ = resp.Body.Close()
			if attempt < c.maxRetries {
				time.Sleep(retryDelay(attempt, retryAfter))
				continue
			}
			return nil, fmt.Errorf("huggingface embeddings failed: %s", resp.Status)
		}
		if resp.StatusCode >= 300 {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("huggingface embeddings failed: %s", resp.Status)
		}

		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			if attempt < c.maxRetries {
				time.Sleep(retryDelay(attempt, ""))
				continue
			}
			return nil, err
		}
		vec, err := decodeVector(payload)
		if err != nil {
			return nil, err
		}
		return vec, nil
	}
	return nil, errors.New("huggingface: no embedding returned")
}

// decodeVector accepts either a batch-shaped [[...]] response for a single
// input or a flat [...] vector, and unwraps to one vector.
func decodeVector(payload []byte) ([]float32, error) {
	var batch [][]float32
	if err := json.Unmarshal(payload, &batch); err == nil {
		if len(batch) == 0 || len(batch[0]) == 0 {
			return nil, errors.New("huggingface: empty embedding response")
		}
		return batch[0], nil
	}
	var flat []float32
	if err := json.Unmarshal(payload, &flat); err == nil {
		if len(flat) == 0 {
			return nil, errors.New("huggingface: empty embedding response")
		}
		return flat, nil
	}
	return nil, errors.New("huggingface: malformed embedding response")
}

func retryDelay(attempt int, retryAfter string) time.Duration {
	if retryAfter != "" {
		if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

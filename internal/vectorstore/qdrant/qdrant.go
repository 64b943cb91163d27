// Package qdrant is a REST client to a remote Qdrant collection.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"docqa/internal/domain"
)

// Store talks to one named Qdrant collection over HTTP. Cosine distance is
// assumed; the collection is created on demand by EnsureCollection.
type Store struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
	scrollPage int
}

// Config contains connection details. APIKey is injected by the caller.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStore(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, errors.New("qdrant: missing URL")
	}
	if cfg.Collection == "" {
		return nil, errors.New("qdrant: missing collection name")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
		scrollPage: 100,
	}, nil
}

// Exists reports whether the collection exists.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.collectionURL(), nil)
	if err != nil {
		return false, err
	}
	s.setHeaders(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("qdrant GET collection failed: %s", resp.Status)
	}
}

// EnsureCollection creates the collection with the given vector size if it
// does not exist yet. An existing collection is left untouched.
func (s *Store) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("qdrant: invalid dimension")
	}
	exists, err := s.Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return s.putJSON(ctx, s.collectionURL(), body, nil)
}

// EnsureSourceIndex creates the keyword payload index on the source field
// used by dedup queries. "Already exists" responses are swallowed.
func (s *Store) EnsureSourceIndex(ctx context.Context) error {
	body := map[string]any{
		"field_name":   "source",
		"field_schema": "keyword",
	}
	err := s.putJSON(ctx, s.collectionURL()+"/index", body, nil)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusConflict {
			log.Printf("qdrant: source index already exists on %s", s.collection)
			return nil
		}
	}
	return err
}

// Upsert writes all points in one call, waiting for the operation to apply.
func (s *Store) Upsert(ctx context.Context, points []domain.Point) error {
	if len(points) == 0 {
		return nil
	}
	items := make([]map[string]any, len(points))
	for i, p := range points {
		items[i] = map[string]any{
			"id":      p.ID,
			"vector":  p.Vector,
			"payload": p.Payload,
		}
	}
	body := map[string]any{"points": items}
	return s.putJSON(ctx, s.collectionURL()+"/points?wait=true", body, nil)
}

// Search returns the topK nearest points with payloads, best first.
func (s *Store) Search(ctx context.Context, vector []float32, topK int) ([]domain.SearchHit, error) {
	if topK <= 0 {
		topK = 5
	}
	body := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload domain.Payload `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(ctx, s.collectionURL()+"/points/search", body, &resp); err != nil {
		return nil, err
	}
	hits := make([]domain.SearchHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, domain.SearchHit{
			ID:      fmt.Sprint(r.ID),
			Score:   r.Score,
			Payload: r.Payload,
		})
	}
	return hits, nil
}

// Sources scrolls the whole collection and collects the distinct source
// payload values. Used to build the ingestion dedup set.
func (s *Store) Sources(ctx context.Context) (map[string]struct{}, error) {
	sources := make(map[string]struct{})
	var offset any
	for {
		body := map[string]any{
			"limit":        s.scrollPage,
			"with_payload": true,
			"with_vector":  false,
		}
		if offset != nil {
			body["offset"] = offset
		}
		var resp struct {
			Result struct {
				Points []struct {
					Payload domain.Payload `json:"payload"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		if err := s.postJSON(ctx, s.collectionURL()+"/points/scroll", body, &resp); err != nil {
			return nil, err
		}
		for _, p := range resp.Result.Points {
			if p.Payload.Source != "" {
				sources[p.Payload.Source] = struct{}{}
			}
		}
		if resp.Result.NextPageOffset == nil {
			return sources, nil
		}
		offset = resp.Result.NextPageOffset
	}
}

func (s *Store) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", s.url, s.collection)
}

func (s *Store) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
}

type statusError struct {
	method string
	url    string
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant %s %s failed: %s", e.method, e.url, e.status)
}

func (s *Store) putJSON(ctx context.Context, url string, body, out any) error {
	return s.doJSON(ctx, http.MethodPut, url, body, out)
}

func (s *Store) postJSON(ctx context.Context, url string, body, out any) error {
	return s.doJSON(ctx, http.MethodPost, url, body, out)
}

func (s *Store) doJSON(ctx context.Context, method, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	s.setHeaders(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return &statusError{method: method, url: url, code: resp.StatusCode, status: resp.Status}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

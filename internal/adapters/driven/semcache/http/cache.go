// Package http provides a semantic cache adapter backed by a remote
// cache service speaking a small JSON protocol.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/semgate/internal/core/domain"
	"github.com/custodia-labs/semgate/internal/core/ports/driven"
	"github.com/custodia-labs/semgate/internal/logger"
)

// Ensure Cache implements the interface.
var _ driven.SemanticCache = (*Cache)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8080"
	DefaultTimeout = 5 * time.Second
)

// Config holds configuration for the cache client.
type Config struct {
	// BaseURL is the cache service base URL (default: http://localhost:8080).
	BaseURL string

	// Timeout is the request timeout (default: 5s). The cache sits on the
	// hot path of every query, so this should stay short.
	Timeout time.Duration
}

// Cache is a client for a remote semantic cache service. Lookups fail
// open: any transport or server error is reported as a miss so the
// caller can fall through to generation.
type Cache struct {
	client  *http.Client
	baseURL string
}

// searchRequest is the cache lookup request format.
type searchRequest struct {
	Prompt string `json:"prompt"`
}

// searchResponse is the cache lookup response format.
type searchResponse struct {
	Response      string  `json:"response"`
	Similarity    float64 `json:"similarity"`
	MatchedPrompt string  `json:"matched_prompt"`
}

// storeRequest is the cache store request format. TTL is in seconds;
// zero means the service default.
type storeRequest struct {
	Prompt     string `json:"prompt"`
	Response   string `json:"response"`
	TTLSeconds int    `json:"ttl_seconds,omitempty"`
}

// NewCache creates a new cache client.
func NewCache(cfg Config) *Cache {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Cache{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
	}
}

// Search looks up a semantically similar prompt. A service or transport
// failure is logged and returned as a miss (nil, nil) so a degraded
// cache never blocks answering.
func (c *Cache) Search(ctx context.Context, prompt string) (*driven.CacheMatch, error) {
	jsonBody, err := json.Marshal(searchRequest{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/v1/search",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Warn("cache search failed, treating as miss: %v", err)
		return nil, nil
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusNotFound:
		// genuine miss
		return nil, nil
	default:
		logger.Warn("cache search returned status %d, treating as miss", resp.StatusCode)
		return nil, nil
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		logger.Warn("cache search returned malformed response, treating as miss: %v", err)
		return nil, nil
	}

	return &driven.CacheMatch{
		Response:      searchResp.Response,
		Similarity:    searchResp.Similarity,
		MatchedPrompt: searchResp.MatchedPrompt,
	}, nil
}

// Store writes a prompt/response pair to the cache.
func (c *Cache) Store(ctx context.Context, prompt, response string, ttl time.Duration) error {
	jsonBody, err := json.Marshal(storeRequest{
		Prompt:     prompt,
		Response:   response,
		TTLSeconds: int(ttl / time.Second),
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/v1/store",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("cache store returned status %d", resp.StatusCode)
	}
	return nil
}

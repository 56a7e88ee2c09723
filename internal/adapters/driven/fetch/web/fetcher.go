// Package web provides a source fetcher for HTTP and HTTPS locators.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/semgate/internal/core/domain"
	"github.com/custodia-labs/semgate/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.SourceFetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second

	// maxBodySize caps how much we read from a remote source (10 MiB).
	maxBodySize = 10 << 20
)

// Fetcher retrieves document content over HTTP.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a new web fetcher.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch retrieves the content at the locator URL.
func (f *Fetcher) Fetch(ctx context.Context, locator string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", locator, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to read
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", fmt.Errorf("%s: %w", locator, domain.ErrSourceUnauthorized)
	case http.StatusNotFound:
		return "", fmt.Errorf("%s: %w", locator, domain.ErrSourceNotFound)
	default:
		return "", fmt.Errorf("fetch %s: unexpected status %d", locator, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", locator, err)
	}

	content := string(data)
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%s: %w", locator, domain.ErrSourceEmpty)
	}
	return content, nil
}

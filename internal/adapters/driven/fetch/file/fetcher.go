// Package file provides a source fetcher reading from the local filesystem.
package file

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/semgate/internal/core/domain"
	"github.com/custodia-labs/semgate/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.SourceFetcher = (*Fetcher)(nil)

// Fetcher reads document content from local files. The locator is a
// filesystem path, optionally prefixed with file://.
type Fetcher struct{}

// NewFetcher creates a new file fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{}
}

// Fetch reads the file at the locator and returns its content.
func (f *Fetcher) Fetch(ctx context.Context, locator string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := strings.TrimPrefix(locator, "file://")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", path, domain.ErrSourceNotFound)
		}
		if os.IsPermission(err) {
			return "", fmt.Errorf("%s: %w", path, domain.ErrSourceUnauthorized)
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	content := string(data)
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%s: %w", path, domain.ErrSourceEmpty)
	}
	return content, nil
}

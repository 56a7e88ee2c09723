// Package fetch selects a source fetcher for a document locator.
package fetch

import (
	"context"
	"strings"
	"time"

	"github.com/custodia-labs/semgate/internal/adapters/driven/fetch/file"
	"github.com/custodia-labs/semgate/internal/adapters/driven/fetch/web"
	"github.com/custodia-labs/semgate/internal/core/ports/driven"
)

// Ensure Router implements the interface.
var _ driven.SourceFetcher = (*Router)(nil)

// Router dispatches fetches to the file or web fetcher based on the
// locator scheme. Locators without a scheme are treated as file paths.
type Router struct {
	file *file.Fetcher
	web  *web.Fetcher
}

// NewRouter creates a fetch router with both backends.
func NewRouter(webTimeout time.Duration) *Router {
	return &Router{
		file: file.NewFetcher(),
		web:  web.NewFetcher(webTimeout),
	}
}

// Fetch retrieves the content behind the locator.
func (r *Router) Fetch(ctx context.Context, locator string) (string, error) {
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		return r.web.Fetch(ctx, locator)
	}
	return r.file.Fetch(ctx, locator)
}

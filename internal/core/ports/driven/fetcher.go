package driven

import "context"

// SourceFetcher retrieves raw document text from a locator.
// Failures map to the domain source errors (ErrSourceUnauthorized,
// ErrSourceNotFound, ErrSourceEmpty); the pipeline treats any of them
// as ingestion failure and performs no retry.
type SourceFetcher interface {
	// Fetch returns the plain text behind the locator.
	Fetch(ctx context.Context, locator string) (string, error)
}

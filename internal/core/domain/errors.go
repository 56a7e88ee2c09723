package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIngestInProgress indicates the document is still being processed.
	ErrIngestInProgress = errors.New("ingestion in progress")

	// Source fetch errors. Any of these fails ingestion with a
	// human-readable reason; the pipeline performs no retry.

	// ErrSourceUnauthorized indicates the document source rejected the fetch.
	ErrSourceUnauthorized = errors.New("source unauthorized")

	// ErrSourceNotFound indicates the locator resolved to nothing.
	ErrSourceNotFound = errors.New("source not found")

	// ErrSourceEmpty indicates the source returned no text.
	ErrSourceEmpty = errors.New("source empty")

	// Required-path errors. These propagate to the caller as explicit
	// errors distinguishable from an answer.

	// ErrGenerationFailure indicates the generation service failed.
	// Fatal to the chat turn; retry is the caller's policy.
	ErrGenerationFailure = errors.New("generation failed")

	// ErrGenerationUnavailable indicates no generation service is configured.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// Optimisation-path errors. These never surface to the user: the
	// request degrades (slower, less context) but never aborts.

	// ErrCacheUnavailable indicates the semantic cache backend could
	// not be reached. Treated as a miss (fail-open).
	ErrCacheUnavailable = errors.New("semantic cache unavailable")

	// ErrEmbeddingFailure indicates an embedding call failed for a
	// text or batch. Non-fatal to sibling batches.
	ErrEmbeddingFailure = errors.New("embedding failed")
)

package driven

import (
	"context"
	"time"
)

// SemanticCache wraps a managed approximate-match cache service.
// Caching is an optimisation, never a correctness requirement: any
// backend failure degrades to a miss rather than surfacing an error.
type SemanticCache interface {
	// Search looks up the best cached match for the prompt above the
	// backend's similarity threshold. A nil match means miss.
	// Connectivity failures also return a miss (fail-open).
	Search(ctx context.Context, prompt string) (*CacheMatch, error)

	// Store persists a prompt/response pair with a TTL. Best-effort:
	// callers log failures and never block a response on this call.
	Store(ctx context.Context, prompt, response string, ttl time.Duration) error
}

// CacheMatch is a semantic cache hit.
type CacheMatch struct {
	// Response is the cached response text.
	Response string

	// Similarity is the match score reported by the backend.
	Similarity float64

	// MatchedPrompt is the cached prompt that matched the query.
	MatchedPrompt string
}

package domain

import "time"

// ChatOptions configures a single chat turn.
type ChatOptions struct {
	// ShadowMode evaluates the cache path for measurement only; the
	// served answer always comes from fresh generation.
	ShadowMode bool

	// RAGEnabled augments generation with context retrieved from the
	// vector index.
	RAGEnabled bool
}

// Outcome is the result of one chat turn. Exactly one of the three
// variants is produced per request: CacheHitOutcome,
// FreshGenerationOutcome or ShadowOutcome. The variant carries only
// the fields meaningful for its path instead of one wide struct of
// optional fields.
type Outcome interface {
	// Answer returns the content served to the user.
	Answer() string

	// Cached reports whether the served answer came from the cache.
	Cached() bool
}

// CacheHitOutcome is produced when the semantic cache served the
// answer. The generation service is never invoked on this path.
type CacheHitOutcome struct {
	// Content is the cached response served to the user.
	Content string

	// Similarity is the score of the cache match.
	Similarity float64

	// MatchedPrompt is the cached prompt text that matched.
	MatchedPrompt string

	// TokensSaved estimates the tokens the avoided generation call
	// would have spent, counting the query and the response at four
	// characters per token.
	TokensSaved int

	// CacheLatency is the wall-clock duration of the cache lookup.
	CacheLatency time.Duration
}

// Answer returns the cached response.
func (o CacheHitOutcome) Answer() string { return o.Content }

// Cached reports true: the answer was served from cache.
func (o CacheHitOutcome) Cached() bool { return true }

// FreshGenerationOutcome is produced on a cache miss (or with caching
// disabled): the generation service produced the answer.
type FreshGenerationOutcome struct {
	// Content is the generated response.
	Content string

	// TokensUsed is the real token usage reported by the generation
	// service.
	TokensUsed int

	// Context holds the retrieved chunks used to augment the prompt,
	// empty when RAG is disabled or retrieval degraded.
	Context []ScoredChunk

	// CacheLatency is the duration of the (missed) cache lookup,
	// zero when caching is disabled.
	CacheLatency time.Duration

	// GenerationLatency is the duration of the generation call.
	GenerationLatency time.Duration
}

// Answer returns the generated response.
func (o FreshGenerationOutcome) Answer() string { return o.Content }

// Cached reports false: the answer was freshly generated.
func (o FreshGenerationOutcome) Cached() bool { return false }

// ShadowOutcome is produced in shadow mode: the cache path is
// evaluated concurrently with generation for quality measurement, but
// the served answer is always the generation output.
type ShadowOutcome struct {
	// Content is the generated response (always served).
	Content string

	// TokensUsed is the real token usage of the generation call.
	TokensUsed int

	// CacheHit records whether the cache would have answered.
	CacheHit bool

	// Similarity is the cache match score when CacheHit is true.
	Similarity float64

	// MatchedPrompt is the matched cached prompt when CacheHit is true.
	MatchedPrompt string

	// TokensSaved is hypothetical: the tokens that would have been
	// saved had the hit been served. Equals TokensUsed when CacheHit
	// is true, 0 otherwise. Never subtracted from real spend.
	TokensSaved int

	// Context holds retrieved chunks used to augment the prompt.
	Context []ScoredChunk

	// CacheLatency is the duration of the concurrent cache lookup.
	CacheLatency time.Duration

	// GenerationLatency is the duration of the generation call.
	GenerationLatency time.Duration
}

// Answer returns the generation output; cache results are never served
// in shadow mode.
func (o ShadowOutcome) Answer() string { return o.Content }

// Cached reports false: shadow mode never serves from cache.
func (o ShadowOutcome) Cached() bool { return false }

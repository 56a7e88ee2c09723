package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/semgate/internal/core/domain"
	"github.com/custodia-labs/semgate/internal/core/ports/driven"
	"github.com/custodia-labs/semgate/internal/core/ports/driving"
	"github.com/custodia-labs/semgate/internal/embedder"
	"github.com/custodia-labs/semgate/internal/logger"
)

// Ensure QueryRouter implements the interface.
var _ driving.ChatService = (*QueryRouter)(nil)

// Default retrieval and caching parameters.
const (
	DefaultTopK         = 5
	DefaultThreshold    = 0.7
	DefaultCacheTTL     = time.Hour
	defaultStoreTimeout = 10 * time.Second
)

// RouterConfig holds the tunable parameters of the query router.
type RouterConfig struct {
	// CacheEnabled turns cache lookups on. When false every turn is a
	// fresh generation.
	CacheEnabled bool

	// CacheTTL is the lifetime of stored cache entries.
	CacheTTL time.Duration

	// TopK is the number of chunks retrieved for RAG augmentation.
	TopK int

	// Threshold is the minimum similarity for retrieved chunks.
	Threshold float64
}

// QueryRouter answers chat turns with a cache-aside protocol: consult
// the semantic cache first, serve hits directly, and fall through to
// generation (optionally RAG-augmented) on a miss. The cache is an
// accelerator, never a gatekeeper: any cache failure degrades to a
// miss, while a generation failure is fatal to the turn.
type QueryRouter struct {
	cache   driven.SemanticCache
	gen     driven.GenerationService
	index   driven.VectorIndex
	batcher *embedder.Batcher
	metrics driven.MetricsRecorder

	mu  sync.RWMutex
	cfg RouterConfig

	// stores tracks in-flight asynchronous cache writes.
	stores sync.WaitGroup
}

// NewQueryRouter creates a new query router. cache, index, batcher and
// metrics may be nil, disabling the corresponding behaviour.
func NewQueryRouter(
	cache driven.SemanticCache,
	gen driven.GenerationService,
	index driven.VectorIndex,
	batcher *embedder.Batcher,
	metrics driven.MetricsRecorder,
	cfg RouterConfig,
) *QueryRouter {
	r := &QueryRouter{
		cache:   cache,
		gen:     gen,
		index:   index,
		batcher: batcher,
		metrics: metrics,
	}
	r.UpdateConfig(cfg)
	return r
}

// UpdateConfig swaps the router's tunable parameters. Safe to call
// while turns are in flight; each turn snapshots the config once.
func (r *QueryRouter) UpdateConfig(cfg RouterConfig) {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if r.cache == nil {
		cfg.CacheEnabled = false
	}

	r.mu.Lock()
	r.cfg = cfg
	r.mu.Unlock()
}

// config returns a snapshot of the current parameters.
func (r *QueryRouter) config() RouterConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg
}

// Ask executes one chat turn.
func (r *QueryRouter) Ask(ctx context.Context, query string, opts domain.ChatOptions) (domain.Outcome, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty: %w", domain.ErrInvalidInput)
	}

	var outcome domain.Outcome
	var err error
	cfg := r.config()
	if opts.ShadowMode && cfg.CacheEnabled {
		outcome, err = r.askShadow(ctx, query, opts, cfg)
	} else {
		outcome, err = r.askNormal(ctx, query, opts, cfg)
	}
	if err != nil {
		return nil, err
	}

	if r.metrics != nil {
		r.metrics.RecordTurn(outcome)
	}
	return outcome, nil
}

// askNormal runs the cache-aside path: lookup, serve a hit, otherwise
// generate and store the fresh answer behind the response.
func (r *QueryRouter) askNormal(ctx context.Context, query string, opts domain.ChatOptions, cfg RouterConfig) (domain.Outcome, error) {
	var cacheLatency time.Duration
	if cfg.CacheEnabled {
		start := time.Now()
		match, err := r.cache.Search(ctx, query)
		cacheLatency = time.Since(start)
		if err != nil {
			// adapters normally absorb failures; treat a surfaced one
			// as a miss all the same
			logger.Warn("cache lookup error, continuing uncached: %v", err)
		}
		if match != nil {
			return domain.CacheHitOutcome{
				Content:       match.Response,
				Similarity:    match.Similarity,
				MatchedPrompt: match.MatchedPrompt,
				TokensSaved:   estimateTokens(query) + estimateTokens(match.Response),
				CacheLatency:  cacheLatency,
			}, nil
		}
	}

	text, tokens, contextChunks, genLatency, err := r.generate(ctx, query, opts, cfg)
	if err != nil {
		return nil, err
	}

	r.storeAsync(query, text, cfg)

	return domain.FreshGenerationOutcome{
		Content:           text,
		TokensUsed:        tokens,
		Context:           contextChunks,
		CacheLatency:      cacheLatency,
		GenerationLatency: genLatency,
	}, nil
}

// askShadow evaluates the cache concurrently with generation. The
// served answer always comes from generation; the cache result is
// recorded for measurement only.
func (r *QueryRouter) askShadow(ctx context.Context, query string, opts domain.ChatOptions, cfg RouterConfig) (domain.Outcome, error) {
	type cacheResult struct {
		match   *driven.CacheMatch
		latency time.Duration
	}
	cacheCh := make(chan cacheResult, 1)

	go func() {
		start := time.Now()
		match, err := r.cache.Search(ctx, query)
		if err != nil {
			logger.Warn("shadow cache lookup error: %v", err)
			match = nil
		}
		cacheCh <- cacheResult{match: match, latency: time.Since(start)}
	}()

	text, tokens, contextChunks, genLatency, err := r.generate(ctx, query, opts, cfg)
	if err != nil {
		// the turn fails even if the cache would have answered:
		// shadow mode never serves cached content
		return nil, err
	}

	cr := <-cacheCh

	outcome := domain.ShadowOutcome{
		Content:           text,
		TokensUsed:        tokens,
		Context:           contextChunks,
		CacheLatency:      cr.latency,
		GenerationLatency: genLatency,
	}
	if cr.match != nil {
		outcome.CacheHit = true
		outcome.Similarity = cr.match.Similarity
		outcome.MatchedPrompt = cr.match.MatchedPrompt
		// hypothetical: what the hit would have saved had it been served
		outcome.TokensSaved = tokens
	} else {
		r.storeAsync(query, text, cfg)
	}

	return outcome, nil
}

// generate produces a fresh answer, augmenting the prompt with
// retrieved context when RAG is enabled. Retrieval failures degrade to
// an unaugmented prompt; a generation failure fails the turn.
func (r *QueryRouter) generate(ctx context.Context, query string, opts domain.ChatOptions, cfg RouterConfig) (string, int, []domain.ScoredChunk, time.Duration, error) {
	if r.gen == nil {
		return "", 0, nil, 0, domain.ErrGenerationUnavailable
	}

	var contextChunks []domain.ScoredChunk
	if opts.RAGEnabled {
		contextChunks = r.retrieve(ctx, query, cfg)
	}

	prompt := buildPrompt(query, contextChunks)

	start := time.Now()
	result, err := r.gen.Generate(ctx, prompt)
	genLatency := time.Since(start)
	if err != nil {
		return "", 0, nil, 0, fmt.Errorf("%w: %v", domain.ErrGenerationFailure, err)
	}

	return result.Text, result.TokensUsed, contextChunks, genLatency, nil
}

// retrieve embeds the query and fetches similar chunks. Any failure is
// logged and returns no context: retrieval is best-effort.
func (r *QueryRouter) retrieve(ctx context.Context, query string, cfg RouterConfig) []domain.ScoredChunk {
	if r.index == nil || r.batcher == nil {
		return nil
	}

	vec, err := r.batcher.EmbedQuery(ctx, query)
	if err != nil || vec == nil {
		logger.Warn("query embedding failed, answering without retrieved context: %v", err)
		return nil
	}

	chunks, err := r.index.SearchSimilar(ctx, vec, cfg.TopK, cfg.Threshold)
	if err != nil {
		logger.Warn("retrieval failed, answering without retrieved context: %v", err)
		return nil
	}
	return chunks
}

// storeAsync writes the answer to the cache behind the response. The
// write is best-effort: failures are logged, never surfaced.
func (r *QueryRouter) storeAsync(query, response string, cfg RouterConfig) {
	if !cfg.CacheEnabled {
		return
	}

	r.stores.Add(1)
	go func() {
		defer r.stores.Done()

		// detached from the request context: the caller has already
		// been answered by the time this runs
		ctx, cancel := context.WithTimeout(context.Background(), defaultStoreTimeout)
		defer cancel()

		if err := r.cache.Store(ctx, query, response, cfg.CacheTTL); err != nil {
			logger.Error("cache store failed: %v", err)
		}
	}()
}

// Drain blocks until all in-flight cache writes finish. Call before
// process exit so short-lived invocations do not drop their writes.
func (r *QueryRouter) Drain() {
	r.stores.Wait()
}

// buildPrompt assembles the generation prompt, prefixing retrieved
// context when present.
func buildPrompt(query string, chunks []domain.ScoredChunk) string {
	if len(chunks) == 0 {
		return query
	}

	var b strings.Builder
	b.WriteString("Use the following context to answer the question.\n\n")
	for i, sc := range chunks {
		fmt.Fprintf(&b, "Context %d:\n%s\n\n", i+1, sc.Chunk.Content)
	}
	b.WriteString("Question: ")
	b.WriteString(query)
	return b.String()
}

// estimateTokens approximates token count as one token per four
// characters, rounding up.
func estimateTokens(s string) int {
	return (len(s) + 3) / 4
}

// Package embedder batches embedding calls against an upstream
// embedding service. Input is processed in fixed-size groups to
// respect upstream rate limits, and one failed batch never aborts its
// sibling batches: each text in the failed group receives a failure
// marker instead.
package embedder

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/semgate/internal/core/domain"
	"github.com/custodia-labs/semgate/internal/core/ports/driven"
	"github.com/custodia-labs/semgate/internal/logger"
)

// DefaultBatchSize is the number of texts sent per upstream call.
const DefaultBatchSize = 10

// DefaultBatchesPerSecond is the proactive throttle on upstream calls.
const DefaultBatchesPerSecond = 5

// Result is the embedding outcome for one input text. Exactly one of
// Vector and Err is set.
type Result struct {
	Vector []float32
	Err    error
}

// Batcher wraps an embedding service with batching and throttling.
type Batcher struct {
	svc       driven.EmbeddingService
	batchSize int
	limiter   *rate.Limiter
}

// Option configures the batcher.
type Option func(*Batcher)

// WithBatchSize sets the number of texts per upstream call.
func WithBatchSize(n int) Option {
	return func(b *Batcher) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// WithRateLimit sets the maximum upstream calls per second.
func WithRateLimit(perSecond float64) Option {
	return func(b *Batcher) {
		if perSecond > 0 {
			b.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// New creates a batcher over the given embedding service.
func New(svc driven.EmbeddingService, opts ...Option) *Batcher {
	b := &Batcher{
		svc:       svc,
		batchSize: DefaultBatchSize,
		limiter:   rate.NewLimiter(rate.Limit(DefaultBatchesPerSecond), 1),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// EmbedAll embeds every text, preserving input order and length.
// A failed batch marks each of its texts with an error Result; other
// batches proceed. Only a cancelled context aborts the whole job.
func (b *Batcher) EmbedAll(ctx context.Context, texts []string) ([]Result, error) {
	results := make([]Result, len(texts))

	for start := 0; start < len(texts); start += b.batchSize {
		end := start + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		if err := b.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		vectors, err := b.svc.EmbedBatch(ctx, batch)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("Embedding batch %d-%d failed: %v", start, end-1, err)
			for i := start; i < end; i++ {
				results[i] = Result{Err: fmt.Errorf("%w: %v", domain.ErrEmbeddingFailure, err)}
			}
			continue
		}

		if len(vectors) != len(batch) {
			logger.Warn("Embedding batch %d-%d returned %d vectors for %d texts", start, end-1, len(vectors), len(batch))
			for i := start; i < end; i++ {
				results[i] = Result{Err: fmt.Errorf("%w: vector count mismatch", domain.ErrEmbeddingFailure)}
			}
			continue
		}

		for i, vec := range vectors {
			results[start+i] = Result{Vector: vec}
		}
	}

	return results, nil
}

// EmbedQuery embeds a single runtime query. Callers treat an error as
// "no search possible" and degrade, not as a fatal condition.
func (b *Batcher) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	vec, err := b.svc.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingFailure, err)
	}
	return vec, nil
}

// BatchSize returns the configured batch size.
func (b *Batcher) BatchSize() int {
	return b.batchSize
}

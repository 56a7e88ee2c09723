package driven

import (
	"context"

	"github.com/custodia-labs/semgate/internal/core/domain"
)

// VectorIndex stores chunk records and answers top-K similarity
// queries. The stated core behaviour is a brute-force cosine scan over
// every stored chunk; implementations targeting larger corpora can
// swap in an approximate-nearest-neighbour index behind this interface
// without touching callers.
type VectorIndex interface {
	// StoreChunks upserts one record per chunk and tracks chunk IDs
	// per document for later deletion and listing. Idempotent:
	// re-storing a chunk with the same ID overwrites it.
	StoreChunks(ctx context.Context, chunks []domain.Chunk) error

	// SearchSimilar returns up to limit chunks whose cosine
	// similarity against query is at least threshold, in strictly
	// non-increasing score order.
	SearchSimilar(ctx context.Context, query []float32, limit int, threshold float64) ([]domain.ScoredChunk, error)

	// DeleteDocument removes every chunk record of the document and
	// its chunk-ID set.
	DeleteDocument(ctx context.Context, documentID string) error

	// ListDocuments returns the IDs of documents with at least one
	// stored chunk.
	ListDocuments(ctx context.Context) ([]string, error)

	// Close releases resources.
	Close() error
}

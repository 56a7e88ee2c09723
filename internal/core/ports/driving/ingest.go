package driving

import (
	"context"

	"github.com/custodia-labs/semgate/internal/core/domain"
)

// IngestService manages documents in the retrieval corpus.
type IngestService interface {
	// Ingest fetches, chunks, embeds and stores one document,
	// returning its final record. A failed document ends in
	// StatusError with a reason and must be re-submitted to retry.
	Ingest(ctx context.Context, name, locator string) (*domain.Document, error)

	// Get retrieves a document record by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// List returns all known documents.
	List(ctx context.Context) ([]domain.Document, error)

	// Delete removes a document and all of its chunks.
	Delete(ctx context.Context, documentID string) error
}

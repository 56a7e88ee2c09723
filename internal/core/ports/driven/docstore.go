package driven

import (
	"context"

	"github.com/custodia-labs/semgate/internal/core/domain"
)

// DocumentStore persists document metadata and ingestion status.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// DeleteDocument removes a document record.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all known documents.
	ListDocuments(ctx context.Context) ([]domain.Document, error)
}

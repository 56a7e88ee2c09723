package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/semgate/internal/chunker"
	"github.com/custodia-labs/semgate/internal/core/domain"
	"github.com/custodia-labs/semgate/internal/core/ports/driven"
	"github.com/custodia-labs/semgate/internal/core/ports/driving"
	"github.com/custodia-labs/semgate/internal/embedder"
	"github.com/custodia-labs/semgate/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestService = (*IngestionService)(nil)

// IngestionService runs the document ingestion pipeline: fetch, chunk,
// embed, store. Each stage transition is persisted so a document's
// progress is observable while the pipeline runs.
type IngestionService struct {
	docs    driven.DocumentStore
	index   driven.VectorIndex
	fetcher driven.SourceFetcher
	chunker *chunker.Chunker
	batcher *embedder.Batcher
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(
	docs driven.DocumentStore,
	index driven.VectorIndex,
	fetcher driven.SourceFetcher,
	chk *chunker.Chunker,
	batcher *embedder.Batcher,
) *IngestionService {
	return &IngestionService{
		docs:    docs,
		index:   index,
		fetcher: fetcher,
		chunker: chk,
		batcher: batcher,
	}
}

// Ingest runs the full pipeline for one document. A document that
// fails in any stage ends in StatusError with a reason; it is never
// retried automatically and must be submitted again. Re-submitting a
// locator whose previous ingest finished (ready or error) replaces the
// earlier document.
//
// A locator whose previous attempt is still in a non-terminal state is
// rejected with ErrIngestInProgress. If the process died mid-ingest,
// that record stays non-terminal; delete the document to free the
// locator for another attempt.
func (s *IngestionService) Ingest(ctx context.Context, name, locator string) (*domain.Document, error) {
	if name == "" || locator == "" {
		return nil, fmt.Errorf("name and locator are required: %w", domain.ErrInvalidInput)
	}

	existing, err := s.findByLocator(ctx, locator)
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{
		ID:        uuid.NewString(),
		Name:      name,
		Locator:   locator,
		Status:    domain.StatusPending,
		CreatedAt: time.Now(),
	}

	if existing != nil {
		if !existing.Status.Terminal() {
			return nil, fmt.Errorf("document %s: %w", existing.ID, domain.ErrIngestInProgress)
		}
		// Replace the finished attempt: reuse its ID so the corpus
		// holds one document per locator.
		doc.ID = existing.ID
		doc.CreatedAt = existing.CreatedAt
		if err := s.index.DeleteDocument(ctx, doc.ID); err != nil {
			return nil, fmt.Errorf("clear previous chunks: %w", err)
		}
	}

	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}

	// Fetch.
	s.advance(ctx, doc, domain.StatusExtracting)
	content, err := s.fetcher.Fetch(ctx, locator)
	if err != nil {
		return s.fail(ctx, doc, fmt.Sprintf("fetching source failed: %v", err))
	}
	doc.Content = content
	doc.WordCount = len(strings.Fields(content))

	// Chunk.
	s.advance(ctx, doc, domain.StatusChunking)
	chunks := s.chunker.Split(content, doc.ID)
	if len(chunks) == 0 {
		return s.fail(ctx, doc, "source produced no chunks")
	}

	// Embed.
	s.advance(ctx, doc, domain.StatusEmbedding)
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	results, err := s.batcher.EmbedAll(ctx, texts)
	if err != nil {
		return s.fail(ctx, doc, fmt.Sprintf("embedding failed: %v", err))
	}

	failed := 0
	for i, res := range results {
		if res.Err != nil {
			chunks[i].EmbedError = res.Err.Error()
			failed++
			continue
		}
		chunks[i].Embedding = res.Vector
	}
	if failed == len(chunks) {
		return s.fail(ctx, doc, "embedding failed for every chunk")
	}
	if failed > 0 {
		logger.Warn("document %s: %d of %d chunks failed to embed and will be excluded from retrieval",
			doc.ID, failed, len(chunks))
	}

	// Store.
	s.advance(ctx, doc, domain.StatusStoring)
	if err := s.index.StoreChunks(ctx, chunks); err != nil {
		return s.fail(ctx, doc, fmt.Sprintf("storing chunks failed: %v", err))
	}

	doc.ChunkCount = len(chunks)
	s.advance(ctx, doc, domain.StatusReady)
	return doc, nil
}

// Get retrieves a document record by ID.
func (s *IngestionService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	if documentID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.docs.GetDocument(ctx, documentID)
}

// List returns all known documents.
func (s *IngestionService) List(ctx context.Context) ([]domain.Document, error) {
	return s.docs.ListDocuments(ctx)
}

// Delete removes a document and its chunks. Chunk records go first and
// the chunk-ID set last, so a delete interrupted midway can be
// completed by deleting again.
func (s *IngestionService) Delete(ctx context.Context, documentID string) error {
	if documentID == "" {
		return domain.ErrInvalidInput
	}

	if _, err := s.docs.GetDocument(ctx, documentID); err != nil {
		return err
	}
	if err := s.index.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return s.docs.DeleteDocument(ctx, documentID)
}

// findByLocator returns the document ingested from locator, if any.
func (s *IngestionService) findByLocator(ctx context.Context, locator string) (*domain.Document, error) {
	docs, err := s.docs.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	for i := range docs {
		if docs[i].Locator == locator {
			return &docs[i], nil
		}
	}
	return nil, nil
}

// advance moves the document to the next stage and persists it. A save
// failure here is logged but does not abort the pipeline: the stage
// record is observability, not correctness.
func (s *IngestionService) advance(ctx context.Context, doc *domain.Document, status domain.IngestStatus) {
	doc.Status = status
	doc.StatusReason = ""
	doc.UpdatedAt = time.Now()
	if err := s.docs.SaveDocument(ctx, doc); err != nil {
		logger.Warn("document %s: failed to record status %s: %v", doc.ID, status, err)
	}
}

// fail parks the document in the error state with a reason and returns
// the record alongside a pipeline error.
func (s *IngestionService) fail(ctx context.Context, doc *domain.Document, reason string) (*domain.Document, error) {
	doc.Status = domain.StatusError
	doc.StatusReason = reason
	doc.UpdatedAt = time.Now()
	if err := s.docs.SaveDocument(ctx, doc); err != nil {
		logger.Warn("document %s: failed to record error state: %v", doc.ID, err)
	}
	return doc, errors.New(reason)
}

// save persists the document, wrapping store errors.
func (s *IngestionService) save(ctx context.Context, doc *domain.Document) error {
	if err := s.docs.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

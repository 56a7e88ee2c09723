package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/semgate/internal/core/domain"
)

// mockChatService is a test double for driving.ChatService.
type mockChatService struct {
	outcome  domain.Outcome
	err      error
	lastOpts domain.ChatOptions
}

func (m *mockChatService) Ask(_ context.Context, _ string, opts domain.ChatOptions) (domain.Outcome, error) {
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.outcome, nil
}

// mockIngestService is a test double for driving.IngestService.
type mockIngestService struct {
	doc     *domain.Document
	docs    []domain.Document
	err     error
	deleted []string
}

func (m *mockIngestService) Ingest(_ context.Context, _, _ string) (*domain.Document, error) {
	return m.doc, m.err
}

func (m *mockIngestService) Get(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.doc == nil || m.doc.ID != id {
		return nil, domain.ErrNotFound
	}
	return m.doc, nil
}

func (m *mockIngestService) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockIngestService) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

// setupTestServices swaps the package-level services for mocks and
// returns a cleanup that restores them.
func setupTestServices(chat *mockChatService, ingest *mockIngestService) func() {
	oldChat := chatService
	oldIngest := ingestService

	chatService = chat
	ingestService = ingest

	return func() {
		chatService = oldChat
		ingestService = oldIngest
	}
}

// readyDoc builds a completed document record for tests.
func readyDoc() *domain.Document {
	return &domain.Document{
		ID:         "doc-1",
		Name:       "Test Document",
		Locator:    "doc.txt",
		Status:     domain.StatusReady,
		WordCount:  120,
		ChunkCount: 3,
		CreatedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2025, 6, 1, 12, 0, 5, 0, time.UTC),
	}
}

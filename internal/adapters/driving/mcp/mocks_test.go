package mcp

import (
	"context"

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
	doc  *domain.Document
	docs []domain.Document
	err  error
}

func (m *mockIngestService) Ingest(_ context.Context, _, _ string) (*domain.Document, error) {
	return m.doc, m.err
}

func (m *mockIngestService) Get(_ context.Context, _ string) (*domain.Document, error) {
	if m.doc == nil {
		return nil, domain.ErrNotFound
	}
	return m.doc, m.err
}

func (m *mockIngestService) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockIngestService) Delete(_ context.Context, _ string) error {
	return m.err
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semgate/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/semgate/internal/adapters/driven/vectorindex/kv"
	"github.com/custodia-labs/semgate/internal/chunker"
	"github.com/custodia-labs/semgate/internal/core/domain"
	"github.com/custodia-labs/semgate/internal/embedder"
)

// mockFetcher returns canned content per locator.
type mockFetcher struct {
	content map[string]string
	err     error
}

func (m *mockFetcher) Fetch(_ context.Context, locator string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	content, ok := m.content[locator]
	if !ok {
		return "", domain.ErrSourceNotFound
	}
	return content, nil
}

// mockEmbedder returns fixed-dimension vectors, optionally failing.
type mockEmbedder struct {
	dims    int
	failAll bool
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.failAll {
		return nil, errors.New("embedding backend down")
	}
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vec := make([]float32, m.dims)
		vec[0] = 1
		vecs[i] = vec
	}
	return vecs, nil
}

func (m *mockEmbedder) Dimensions() int              { return m.dims }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

type ingestFixture struct {
	svc   *IngestionService
	docs  *memory.DocumentStore
	index *kv.Index
}

func newIngestFixture(t *testing.T, fetcher *mockFetcher, embedSvc *mockEmbedder) *ingestFixture {
	t.Helper()

	docs := memory.NewDocumentStore()
	index := kv.NewIndex(memory.NewKVStore())
	batcher := embedder.New(embedSvc, embedder.WithRateLimit(10000))

	return &ingestFixture{
		svc:   NewIngestionService(docs, index, fetcher, chunker.New(), batcher),
		docs:  docs,
		index: index,
	}
}

func TestIngest_SuccessEndsReady(t *testing.T) {
	fetcher := &mockFetcher{content: map[string]string{
		"doc.txt": "First sentence here. Second sentence follows. A third one closes it.",
	}}
	f := newIngestFixture(t, fetcher, &mockEmbedder{dims: 4})

	doc, err := f.svc.Ingest(context.Background(), "notes", "doc.txt")
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, domain.StatusReady, doc.Status)
	assert.Empty(t, doc.StatusReason)
	assert.Equal(t, "notes", doc.Name)
	assert.Equal(t, 11, doc.WordCount)
	assert.Positive(t, doc.ChunkCount)

	stored, err := f.docs.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, stored.Status)

	ids, err := f.index.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{doc.ID}, ids)
}

func TestIngest_PersistsFullText(t *testing.T) {
	const text = "Alpha beta. Gamma delta."
	fetcher := &mockFetcher{content: map[string]string{"doc.txt": text}}
	f := newIngestFixture(t, fetcher, &mockEmbedder{dims: 4})

	doc, err := f.svc.Ingest(context.Background(), "notes", "doc.txt")
	require.NoError(t, err)
	assert.Equal(t, text, doc.Content)

	stored, err := f.docs.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, text, stored.Content)
}

func TestIngest_StuckLocatorFreedByDelete(t *testing.T) {
	fetcher := &mockFetcher{content: map[string]string{
		"doc.txt": "One sentence. Another sentence.",
	}}
	f := newIngestFixture(t, fetcher, &mockEmbedder{dims: 4})

	// A document abandoned mid-pipeline, as after a crash.
	stuck := &domain.Document{
		ID:      "stuck-doc",
		Name:    "notes",
		Locator: "doc.txt",
		Status:  domain.StatusEmbedding,
	}
	require.NoError(t, f.docs.SaveDocument(context.Background(), stuck))

	_, err := f.svc.Ingest(context.Background(), "notes", "doc.txt")
	assert.ErrorIs(t, err, domain.ErrIngestInProgress)

	require.NoError(t, f.svc.Delete(context.Background(), stuck.ID))

	doc, err := f.svc.Ingest(context.Background(), "notes", "doc.txt")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, doc.Status)
}

func TestIngest_EmptyArgsRejected(t *testing.T) {
	f := newIngestFixture(t, &mockFetcher{}, &mockEmbedder{dims: 4})

	_, err := f.svc.Ingest(context.Background(), "", "doc.txt")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Ingest(context.Background(), "notes", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngest_FetchFailureEndsInErrorState(t *testing.T) {
	f := newIngestFixture(t, &mockFetcher{content: map[string]string{}}, &mockEmbedder{dims: 4})

	doc, err := f.svc.Ingest(context.Background(), "notes", "missing.txt")
	require.Error(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, domain.StatusError, doc.Status)
	assert.Contains(t, doc.StatusReason, "fetching source failed")

	// the failed attempt is persisted for inspection
	stored, getErr := f.docs.GetDocument(context.Background(), doc.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.StatusError, stored.Status)
}

func TestIngest_AllEmbeddingsFailedEndsInErrorState(t *testing.T) {
	fetcher := &mockFetcher{content: map[string]string{
		"doc.txt": "Some content worth chunking. It has two sentences.",
	}}
	f := newIngestFixture(t, fetcher, &mockEmbedder{dims: 4, failAll: true})

	doc, err := f.svc.Ingest(context.Background(), "notes", "doc.txt")
	require.Error(t, err)
	assert.Equal(t, domain.StatusError, doc.Status)
	assert.Contains(t, doc.StatusReason, "every chunk")
}

func TestIngest_ResubmitReplacesFailedAttempt(t *testing.T) {
	fetcher := &mockFetcher{content: map[string]string{}}
	f := newIngestFixture(t, fetcher, &mockEmbedder{dims: 4})

	failed, err := f.svc.Ingest(context.Background(), "notes", "doc.txt")
	require.Error(t, err)

	fetcher.content["doc.txt"] = "Now the source exists. Ingestion should succeed."

	doc, err := f.svc.Ingest(context.Background(), "notes", "doc.txt")
	require.NoError(t, err)

	// same locator reuses the document identity
	assert.Equal(t, failed.ID, doc.ID)
	assert.Equal(t, domain.StatusReady, doc.Status)

	docs, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestDelete_RemovesDocumentAndChunks(t *testing.T) {
	fetcher := &mockFetcher{content: map[string]string{
		"doc.txt": "Content to be deleted later. It spans two sentences.",
	}}
	f := newIngestFixture(t, fetcher, &mockEmbedder{dims: 4})

	doc, err := f.svc.Ingest(context.Background(), "notes", "doc.txt")
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), doc.ID))

	_, err = f.svc.Get(context.Background(), doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ids, err := f.index.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDelete_UnknownDocument(t *testing.T) {
	f := newIngestFixture(t, &mockFetcher{}, &mockEmbedder{dims: 4})

	err := f.svc.Delete(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

package domain

// IngestStatus tracks a document through the ingestion pipeline.
// Transitions are one-directional:
//
//	pending → extracting → chunking → embedding → storing → ready
//
// with StatusError reachable from any step. A failed document must be
// re-submitted by the caller; there are no automatic retries.
type IngestStatus string

// Ingestion pipeline states.
const (
	StatusPending    IngestStatus = "pending"
	StatusExtracting IngestStatus = "extracting"
	StatusChunking   IngestStatus = "chunking"
	StatusEmbedding  IngestStatus = "embedding"
	StatusStoring    IngestStatus = "storing"
	StatusReady      IngestStatus = "ready"
	StatusError      IngestStatus = "error"
)

// Terminal returns true when no further transitions are possible.
func (s IngestStatus) Terminal() bool {
	return s == StatusReady || s == StatusError
}

package domain

import (
	"fmt"
	"time"
)

// Document represents an ingested document with metadata.
// It is immutable once stored except for metadata refresh on
// re-ingestion.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Name is the human-readable display name.
	Name string

	// Locator is the original source location (file path, URL, etc).
	Locator string

	// Content is the full text content as fetched from the source.
	Content string

	// WordCount is the number of words in the content, finalised
	// when the document reaches StatusReady.
	WordCount int

	// ChunkCount is the number of chunks produced, finalised when
	// the document reaches StatusReady.
	ChunkCount int

	// Status is the current ingestion state.
	Status IngestStatus

	// StatusReason carries a human-readable failure reason when
	// Status is StatusError.
	StatusReason string

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}

// Chunk represents a bounded, overlapping text segment of a document,
// the unit of embedding and retrieval. Chunks are created in bulk by
// the chunker, mutated once when the embedding is attached, persisted
// by the vector index and never mutated thereafter.
type Chunk struct {
	// ID is "{documentID}_chunk_{index}": stable, derivable, unique
	// within a document.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Index is the 0-based, gapless ordinal position within the
	// document.
	Index int

	// Content is the text content of this chunk.
	Content string

	// StartChar and EndChar are character offsets into the parent
	// document text. Consecutive chunks overlap intentionally, so
	// StartChar of chunk i+1 may fall inside chunk i.
	StartChar int
	EndChar   int

	// WordCount is the number of words in Content.
	WordCount int

	// SentenceCount is the number of sentences accumulated into
	// Content (overlap seed words excluded).
	SentenceCount int

	// Embedding is the vector representation, nil until computed.
	Embedding []float32

	// EmbedError records a per-chunk embedding failure. A chunk with
	// a non-empty EmbedError is stored without a usable vector and is
	// never returned by similarity search.
	EmbedError string
}

// ChunkID derives the stable chunk identifier for a document and index.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}

// ScoredChunk is a chunk paired with its similarity score against a
// query vector.
type ScoredChunk struct {
	Chunk Chunk

	// Score is the cosine similarity in [-1, 1].
	Score float64
}

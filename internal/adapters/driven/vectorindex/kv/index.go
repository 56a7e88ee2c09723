// Package kv provides a vector index over a key-value store.
//
// Similarity search is a brute-force cosine scan over every stored
// chunk record: O(n) per query across all documents. That is the
// stated core behaviour, acceptable for the corpus sizes the gateway
// targets; larger deployments should swap this implementation for an
// approximate-nearest-neighbour index behind the same port.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/semgate/internal/core/domain"
	"github.com/custodia-labs/semgate/internal/core/ports/driven"
	"github.com/custodia-labs/semgate/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// chunkSetSuffix names the per-document set of chunk IDs.
const chunkSetSuffix = ":chunks"

// Index stores chunk records in a key-value backend.
//
// Key layout (the structural contract for interoperability with
// existing stored data):
//
//	{documentID}:{chunkID}  hash record per chunk
//	{documentID}:chunks     set of the document's chunk IDs
type Index struct {
	store driven.KVStore
}

// NewIndex creates a vector index over the given key-value store.
func NewIndex(store driven.KVStore) *Index {
	return &Index{store: store}
}

// chunkMetadata is the serialized metadata field of a chunk record.
type chunkMetadata struct {
	StartChar     int    `json:"start_char"`
	EndChar       int    `json:"end_char"`
	WordCount     int    `json:"word_count"`
	SentenceCount int    `json:"sentence_count"`
	EmbedError    string `json:"embed_error,omitempty"`
}

// StoreChunks upserts one record per chunk and appends each chunk ID
// to its document's chunk-ID set. Re-storing a chunk with the same ID
// overwrites the previous record.
func (x *Index) StoreChunks(ctx context.Context, chunks []domain.Chunk) error {
	for i := range chunks {
		chunk := &chunks[i]
		if chunk.DocumentID == "" || chunk.ID == "" {
			return fmt.Errorf("store chunk %d: %w", i, domain.ErrInvalidInput)
		}

		fields, err := marshalChunk(chunk)
		if err != nil {
			return fmt.Errorf("marshal chunk %s: %w", chunk.ID, err)
		}

		key := recordKey(chunk.DocumentID, chunk.ID)
		if err := x.store.HashSet(ctx, key, fields); err != nil {
			return fmt.Errorf("store chunk %s: %w", chunk.ID, err)
		}

		if err := x.store.SetAdd(ctx, chunk.DocumentID+chunkSetSuffix, chunk.ID); err != nil {
			return fmt.Errorf("track chunk %s: %w", chunk.ID, err)
		}
	}

	return nil
}

// SearchSimilar scores every stored chunk against the query vector and
// returns up to limit results with similarity >= threshold, sorted by
// descending score. Ties keep enumeration order (stable sort). Chunks
// whose vector length differs from the query's score 0 and fall below
// any positive threshold.
func (x *Index) SearchSimilar(ctx context.Context, query []float32, limit int, threshold float64) ([]domain.ScoredChunk, error) {
	if len(query) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		return []domain.ScoredChunk{}, nil
	}

	keys, err := x.store.Keys(ctx, "*_chunk_*")
	if err != nil {
		return nil, fmt.Errorf("enumerate chunk records: %w", err)
	}

	var scored []domain.ScoredChunk
	for _, key := range keys {
		fields, err := x.store.HashGetAll(ctx, key)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Deleted between enumeration and read.
				continue
			}
			return nil, fmt.Errorf("read chunk record %s: %w", key, err)
		}

		chunk, err := unmarshalChunk(fields)
		if err != nil {
			logger.Warn("Skipping malformed chunk record %s: %v", key, err)
			continue
		}

		score := cosineSimilarity(query, chunk.Embedding)
		if score >= threshold {
			scored = append(scored, domain.ScoredChunk{Chunk: *chunk, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	logger.Debug("Vector search: %d records scanned, %d above threshold %.2f", len(keys), len(scored), threshold)
	return scored, nil
}

// DeleteDocument removes every chunk record referenced by the
// document's chunk-ID set, then the set itself.
//
// Deletion is not transactional: a crash partway leaves the chunk-ID
// set pointing at already-deleted records. The set is deleted last so
// a re-issued DeleteDocument always completes the cleanup; no record
// is ever left unreachable.
func (x *Index) DeleteDocument(ctx context.Context, documentID string) error {
	setKey := documentID + chunkSetSuffix

	chunkIDs, err := x.store.SetMembers(ctx, setKey)
	if err != nil {
		return fmt.Errorf("list chunks of %s: %w", documentID, err)
	}

	for _, chunkID := range chunkIDs {
		if err := x.store.Delete(ctx, recordKey(documentID, chunkID)); err != nil {
			return fmt.Errorf("delete chunk %s: %w", chunkID, err)
		}
	}

	if err := x.store.Delete(ctx, setKey); err != nil {
		return fmt.Errorf("delete chunk set of %s: %w", documentID, err)
	}

	logger.Debug("Deleted document %s (%d chunks)", documentID, len(chunkIDs))
	return nil
}

// ListDocuments returns the IDs of documents that have a chunk-ID set.
func (x *Index) ListDocuments(ctx context.Context) ([]string, error) {
	keys, err := x.store.Keys(ctx, "*"+chunkSetSuffix)
	if err != nil {
		return nil, fmt.Errorf("enumerate chunk sets: %w", err)
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, strings.TrimSuffix(key, chunkSetSuffix))
	}

	return ids, nil
}

// Close releases the underlying store.
func (x *Index) Close() error {
	return x.store.Close()
}

// recordKey builds the hash record key for a chunk.
func recordKey(documentID, chunkID string) string {
	return documentID + ":" + chunkID
}

// marshalChunk serializes a chunk into hash record fields.
func marshalChunk(chunk *domain.Chunk) (map[string]string, error) {
	embedding, err := json.Marshal(chunk.Embedding)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding: %w", err)
	}

	metadata, err := json.Marshal(chunkMetadata{
		StartChar:     chunk.StartChar,
		EndChar:       chunk.EndChar,
		WordCount:     chunk.WordCount,
		SentenceCount: chunk.SentenceCount,
		EmbedError:    chunk.EmbedError,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	return map[string]string{
		"document_id": chunk.DocumentID,
		"chunk_id":    chunk.ID,
		"chunk_index": strconv.Itoa(chunk.Index),
		"content":     chunk.Content,
		"embedding":   string(embedding),
		"metadata":    string(metadata),
	}, nil
}

// unmarshalChunk restores a chunk from hash record fields.
func unmarshalChunk(fields map[string]string) (*domain.Chunk, error) {
	chunk := &domain.Chunk{
		DocumentID: fields["document_id"],
		ID:         fields["chunk_id"],
		Content:    fields["content"],
	}

	if raw := fields["chunk_index"]; raw != "" {
		index, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("parse chunk_index: %w", err)
		}
		chunk.Index = index
	}

	if raw := fields["embedding"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &chunk.Embedding); err != nil {
			return nil, fmt.Errorf("parse embedding: %w", err)
		}
	}

	if raw := fields["metadata"]; raw != "" {
		var meta chunkMetadata
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return nil, fmt.Errorf("parse metadata: %w", err)
		}
		chunk.StartChar = meta.StartChar
		chunk.EndChar = meta.EndChar
		chunk.WordCount = meta.WordCount
		chunk.SentenceCount = meta.SentenceCount
		chunk.EmbedError = meta.EmbedError
	}

	return chunk, nil
}

// Package chunker splits document text into overlapping, bounded-size
// segments with positional metadata. Splitting is pure and
// deterministic: the same text always produces the same chunks.
package chunker

import (
	"strings"

	"github.com/custodia-labs/semgate/internal/core/domain"
)

// DefaultChunkSizeTokens is the default chunk budget in estimated tokens.
const DefaultChunkSizeTokens = 500

// DefaultOverlapTokens is the default overlap between consecutive
// chunks in estimated tokens.
const DefaultOverlapTokens = 50

// Chunker accumulates sentences into token-bounded chunks.
type Chunker struct {
	chunkSizeTokens int
	overlapTokens   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in estimated tokens.
func WithChunkSize(tokens int) Option {
	return func(c *Chunker) {
		if tokens > 0 {
			c.chunkSizeTokens = tokens
		}
	}
}

// WithOverlap sets the overlap between chunks in estimated tokens.
func WithOverlap(tokens int) Option {
	return func(c *Chunker) {
		if tokens >= 0 {
			c.overlapTokens = tokens
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSizeTokens: DefaultChunkSizeTokens,
		overlapTokens:   DefaultOverlapTokens,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave room for new content in every chunk.
	if c.overlapTokens >= c.chunkSizeTokens {
		c.overlapTokens = c.chunkSizeTokens / 4
	}

	return c
}

// Split divides text into ordered chunks for the given document.
// Embeddings are left unset. Chunk indices are sequential from 0 with
// no gaps; each chunk after the first starts with the trailing words
// of its predecessor so that context survives the cut.
//
// Token counts are estimated as len/4. This is a fixed heuristic, not
// a real tokenizer: it misestimates for non-English text and code.
// Chunk sizing and the gateway's token-savings metric both depend on
// this exact estimate, so it must not be swapped for a true tokenizer
// without recalibrating both.
func (c *Chunker) Split(text, documentID string) []domain.Chunk {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []domain.Chunk
	var buffer string
	sentenceCount := 0
	startOffset := 0

	flush := func() {
		content := strings.TrimSpace(buffer)
		if content == "" {
			return
		}
		index := len(chunks)
		chunks = append(chunks, domain.Chunk{
			ID:            domain.ChunkID(documentID, index),
			DocumentID:    documentID,
			Index:         index,
			Content:       content,
			StartChar:     startOffset,
			EndChar:       startOffset + len(content),
			WordCount:     len(strings.Fields(content)),
			SentenceCount: sentenceCount,
		})
	}

	for _, sentence := range sentences {
		candidate := sentence
		if buffer != "" {
			candidate = buffer + " " + sentence
		}

		if estimateTokens(candidate) > c.chunkSizeTokens && buffer != "" {
			flush()

			// Seed the next buffer with the closed chunk's tail so
			// consecutive chunks share an overlap region.
			closed := chunks[len(chunks)-1]
			overlap := tailWords(closed.Content, c.overlapTokens/4)
			if overlap != "" {
				buffer = overlap + " " + sentence
				startOffset = closed.EndChar - len(overlap)
			} else {
				buffer = sentence
				startOffset = closed.EndChar
			}
			sentenceCount = 1
			continue
		}

		buffer = candidate
		sentenceCount++
	}

	flush()
	return chunks
}

// estimateTokens approximates the token count of s as len/4.
func estimateTokens(s string) int {
	return len(s) / 4
}

// splitSentences cuts text after each terminal punctuation mark
// (., ! or ?), discarding empty units. Text without any terminal
// punctuation is treated as a single sentence.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// tailWords returns the last n words of s joined by single spaces,
// or the whole string when it has fewer than n words.
func tailWords(s string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(s)
	if len(words) > n {
		words = words[len(words)-n:]
	}
	return strings.Join(words, " ")
}

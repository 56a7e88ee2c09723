package mcp

import (
	"github.com/custodia-labs/semgate/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat answers questions through the cache-aside gateway.
	Chat driving.ChatService

	// Ingest manages the retrieval corpus.
	Ingest driving.IngestService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	// Ingest is optional: without it the server is ask-only
	return nil
}

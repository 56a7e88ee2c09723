package driving

import (
	"context"

	"github.com/custodia-labs/semgate/internal/core/domain"
)

// ChatService answers chat turns through the cache-aside protocol.
type ChatService interface {
	// Ask executes one chat turn: consult the semantic cache, augment
	// with retrieved context when RAG is enabled, and fall through to
	// fresh generation on a miss. In shadow mode the cache is
	// evaluated concurrently for measurement only.
	Ask(ctx context.Context, query string, opts domain.ChatOptions) (domain.Outcome, error)
}

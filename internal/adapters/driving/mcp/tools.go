package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/semgate/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer"`
	Shadow   bool   `json:"shadow,omitempty" jsonschema:"evaluate the cache without serving from it"`
	NoRAG    bool   `json:"no_rag,omitempty" jsonschema:"answer without retrieved document context"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer        string  `json:"answer"`
	Cached        bool    `json:"cached"`
	Similarity    float64 `json:"similarity,omitempty"`
	MatchedPrompt string  `json:"matched_prompt,omitempty"`
	TokensUsed    int     `json:"tokens_used,omitempty"`
	TokensSaved   int     `json:"tokens_saved,omitempty"`
}

// IngestInput is the input schema for the ingest_document tool.
type IngestInput struct {
	Name    string `json:"name" jsonschema:"display name for the document"`
	Locator string `json:"locator" jsonschema:"file path or URL of the document"`
}

// IngestOutput is the output schema for the ingest_document tool.
type IngestOutput struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
	ChunkCount int    `json:"chunk_count"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput represents a single corpus document.
type DocumentOutput struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Locator    string `json:"locator"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
	ChunkCount int    `json:"chunk_count"`
	WordCount  int    `json:"word_count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask a question through the semantic-cache gateway",
	}, s.handleAsk)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_document",
			Description: "Fetch, chunk, embed and index a document for retrieval",
		}, s.handleIngest)
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List documents in the retrieval corpus",
		}, s.handleListDocuments)
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	opts := domain.ChatOptions{
		ShadowMode: input.Shadow,
		RAGEnabled: !input.NoRAG,
	}

	outcome, err := s.ports.Chat.Ask(ctx, input.Question, opts)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer: outcome.Answer(),
		Cached: outcome.Cached(),
	}
	switch o := outcome.(type) {
	case domain.CacheHitOutcome:
		output.Similarity = o.Similarity
		output.MatchedPrompt = o.MatchedPrompt
		output.TokensSaved = o.TokensSaved
	case domain.FreshGenerationOutcome:
		output.TokensUsed = o.TokensUsed
	case domain.ShadowOutcome:
		output.TokensUsed = o.TokensUsed
		output.TokensSaved = o.TokensSaved
		if o.CacheHit {
			output.Similarity = o.Similarity
			output.MatchedPrompt = o.MatchedPrompt
		}
	}

	return nil, output, nil
}

// handleIngest handles the ingest_document tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	doc, err := s.ports.Ingest.Ingest(ctx, input.Name, input.Locator)
	if doc == nil && err != nil {
		return nil, IngestOutput{}, err
	}

	// a failed ingest still returns the parked record so the caller
	// can see the reason
	return nil, IngestOutput{
		DocumentID: doc.ID,
		Status:     string(doc.Status),
		Reason:     doc.StatusReason,
		ChunkCount: doc.ChunkCount,
	}, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Ingest.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = DocumentOutput{
			ID:         docs[i].ID,
			Name:       docs[i].Name,
			Locator:    docs[i].Locator,
			Status:     string(docs[i].Status),
			Reason:     docs[i].StatusReason,
			ChunkCount: docs[i].ChunkCount,
			WordCount:  docs[i].WordCount,
		}
	}

	return nil, output, nil
}

// Package mcp provides an MCP (Model Context Protocol) server adapter
// for semgate. It lets AI assistants ask questions through the gateway
// and manage the retrieval corpus.
package mcp

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("mcp: chat service is required")

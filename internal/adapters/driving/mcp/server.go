package mcp

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is the MCP server version.
const Version = "0.1.0"

// readHeaderTimeout bounds slow clients on the HTTP transport.
const readHeaderTimeout = 10 * time.Second

// Server exposes the gateway over the Model Context Protocol. It
// registers the ask and ingestion tools plus the document resources
// against a single underlying MCP server, and serves it over stdio or
// streamable HTTP depending on the address given to Serve.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer creates an MCP server wired to the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "semgate",
			Version: Version,
		}, nil),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve blocks until the context is cancelled or the transport fails.
// An empty addr serves a single session over stdio; otherwise the
// server listens for streamable-HTTP sessions on addr and shuts down
// gracefully on cancellation.
func (s *Server) Serve(ctx context.Context, addr string) error {
	if addr == "" {
		return s.server.Run(ctx, &mcp.StdioTransport{})
	}

	httpServer := &http.Server{
		Addr: addr,
		Handler: mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
			return s.server
		}, nil),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

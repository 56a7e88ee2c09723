// Package driving provides interfaces for actors that drive the
// gateway core (primary/inbound ports): the CLI and the MCP server.
package driving

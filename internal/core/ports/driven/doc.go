// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports). The gateway core depends only on these
// contracts; backends are pluggable.
package driven

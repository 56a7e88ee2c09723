// Package file provides TOML-backed configuration with hot reload.
package file

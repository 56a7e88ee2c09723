package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrIngestInProgress", ErrIngestInProgress},
		{"ErrSourceUnauthorized", ErrSourceUnauthorized},
		{"ErrSourceNotFound", ErrSourceNotFound},
		{"ErrSourceEmpty", ErrSourceEmpty},
		{"ErrGenerationFailure", ErrGenerationFailure},
		{"ErrGenerationUnavailable", ErrGenerationUnavailable},
		{"ErrCacheUnavailable", ErrCacheUnavailable},
		{"ErrEmbeddingFailure", ErrEmbeddingFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_WrappingPreservesSentinel(t *testing.T) {
	wrapped := fmt.Errorf("fetch doc.txt: %w", ErrSourceNotFound)
	assert.True(t, errors.Is(wrapped, ErrSourceNotFound))
	assert.False(t, errors.Is(wrapped, ErrSourceUnauthorized))
}

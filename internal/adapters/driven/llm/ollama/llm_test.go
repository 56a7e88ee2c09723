package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "why is the sky blue", req.Prompt)
		assert.False(t, req.Stream)

		json.NewEncoder(w).Encode(generateResponse{
			Response:        "Rayleigh scattering.",
			Done:            true,
			PromptEvalCount: 12,
			EvalCount:       30,
		})
	}))
	defer server.Close()

	svc := NewGenerationService(Config{BaseURL: server.URL, Model: "test-model"})

	result, err := svc.Generate(context.Background(), "why is the sky blue")
	require.NoError(t, err)
	assert.Equal(t, "Rayleigh scattering.", result.Text)
	// token usage counts both prompt and completion
	assert.Equal(t, 42, result.TokensUsed)
}

func TestGenerate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewGenerationService(Config{BaseURL: server.URL})

	_, err := svc.Generate(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestModelName(t *testing.T) {
	svc := NewGenerationService(Config{Model: "llama3.2"})
	assert.Equal(t, "llama3.2", svc.ModelName())
}

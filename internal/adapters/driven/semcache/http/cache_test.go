package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_Hit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/search", r.URL.Path)

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "what is go", req.Prompt)

		json.NewEncoder(w).Encode(searchResponse{
			Response:      "Go is a programming language.",
			Similarity:    0.93,
			MatchedPrompt: "what is golang",
		})
	}))
	defer server.Close()

	cache := NewCache(Config{BaseURL: server.URL})

	match, err := cache.Search(context.Background(), "what is go")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "Go is a programming language.", match.Response)
	assert.InDelta(t, 0.93, match.Similarity, 0.001)
	assert.Equal(t, "what is golang", match.MatchedPrompt)
}

func TestSearch_MissReturns404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cache := NewCache(Config{BaseURL: server.URL})

	match, err := cache.Search(context.Background(), "never seen")
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestSearch_ServerErrorFailsOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cache := NewCache(Config{BaseURL: server.URL})

	match, err := cache.Search(context.Background(), "anything")
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestSearch_UnreachableServiceFailsOpen(t *testing.T) {
	cache := NewCache(Config{
		BaseURL: "http://127.0.0.1:1",
		Timeout: 200 * time.Millisecond,
	})

	match, err := cache.Search(context.Background(), "anything")
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestStore_SendsTTL(t *testing.T) {
	var got storeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/store", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	cache := NewCache(Config{BaseURL: server.URL})

	err := cache.Store(context.Background(), "prompt", "response", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "prompt", got.Prompt)
	assert.Equal(t, "response", got.Response)
	assert.Equal(t, 3600, got.TTLSeconds)
}

func TestStore_ServerErrorReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cache := NewCache(Config{BaseURL: server.URL})

	err := cache.Store(context.Background(), "p", "r", 0)
	assert.Error(t, err)
}

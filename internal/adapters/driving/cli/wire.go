package cli

import (
	"fmt"
	"os"
	"time"

	configfile "github.com/custodia-labs/semgate/internal/adapters/driven/config/file"
	embedollama "github.com/custodia-labs/semgate/internal/adapters/driven/embedding/ollama"
	embedopenai "github.com/custodia-labs/semgate/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/semgate/internal/adapters/driven/fetch"
	llmollama "github.com/custodia-labs/semgate/internal/adapters/driven/llm/ollama"
	llmopenai "github.com/custodia-labs/semgate/internal/adapters/driven/llm/openai"
	metricsmem "github.com/custodia-labs/semgate/internal/adapters/driven/metrics/memory"
	semcache "github.com/custodia-labs/semgate/internal/adapters/driven/semcache/http"
	"github.com/custodia-labs/semgate/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/semgate/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/semgate/internal/adapters/driven/vectorindex/kv"
	"github.com/custodia-labs/semgate/internal/chunker"
	"github.com/custodia-labs/semgate/internal/core/ports/driven"
	"github.com/custodia-labs/semgate/internal/core/services"
	"github.com/custodia-labs/semgate/internal/embedder"
)

// openaiKeyEnv overrides the configured OpenAI API key.
const openaiKeyEnv = "SEMGATE_OPENAI_API_KEY"

// Wired infrastructure shared by commands beyond the core services.
var (
	configStore   *configfile.Store
	statsRecorder *metricsmem.Recorder
	embedService  driven.EmbeddingService
	genService    driven.GenerationService
)

// ensureServices wires adapters and services from configuration. It is
// idempotent so every command can call it; tests that inject mocks set
// the service variables before running a command.
func ensureServices() error {
	if chatService != nil && ingestService != nil {
		return nil
	}

	store, err := configfile.NewStore(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	configStore = store
	cfg := store.Current()

	kvStore, docStore, err := buildStorage(cfg.Storage)
	if err != nil {
		return err
	}

	index := kv.NewIndex(kvStore)
	fetcher := fetch.NewRouter(0)

	embedService, err = buildEmbedding(cfg.Embedding)
	if err != nil {
		return err
	}
	genService, err = buildGeneration(cfg.LLM)
	if err != nil {
		return err
	}

	batcher := embedder.New(embedService,
		embedder.WithBatchSize(cfg.Embedding.BatchSize),
	)

	var cache driven.SemanticCache
	if cfg.Cache.Enabled {
		cache = semcache.NewCache(semcache.Config{BaseURL: cfg.Cache.BaseURL})
	}

	statsRecorder = metricsmem.NewRecorder()

	queryRouter = services.NewQueryRouter(cache, genService, index, batcher, statsRecorder, services.RouterConfig{
		CacheEnabled: cfg.Cache.Enabled,
		CacheTTL:     cfg.Cache.CacheTTL(),
		TopK:         cfg.RAG.TopK,
		Threshold:    cfg.RAG.Threshold,
	})
	chatService = queryRouter

	ingestService = services.NewIngestionService(docStore, index, fetcher,
		chunker.New(
			chunker.WithChunkSize(cfg.RAG.ChunkSizeTokens),
			chunker.WithOverlap(cfg.RAG.OverlapTokens),
		),
		batcher,
	)

	return nil
}

// buildStorage creates the configured persistence backend.
func buildStorage(cfg configfile.StorageConfig) (driven.KVStore, driven.DocumentStore, error) {
	switch cfg.Backend {
	case "memory":
		return memory.NewKVStore(), memory.NewDocumentStore(), nil
	case "sqlite", "":
		store, err := sqlite.NewStore(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		closers = append(closers, store)
		return store.KVStore(), store.DocumentStore(), nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// buildEmbedding creates the configured embedding service.
func buildEmbedding(cfg configfile.EmbeddingConfig) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case "ollama", "":
		return embedollama.NewEmbeddingService(embedollama.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		}), nil
	case "openai":
		return embedopenai.NewEmbeddingService(embedopenai.Config{
			APIKey:  apiKey(cfg.APIKey),
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// buildGeneration creates the configured generation service.
func buildGeneration(cfg configfile.LLMConfig) (driven.GenerationService, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	switch cfg.Provider {
	case "ollama", "":
		return llmollama.NewGenerationService(llmollama.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
		}), nil
	case "openai":
		return llmopenai.NewGenerationService(llmopenai.Config{
			APIKey:  apiKey(cfg.APIKey),
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// apiKey prefers the environment variable over the configured key.
func apiKey(configured string) string {
	if key := os.Getenv(openaiKeyEnv); key != "" {
		return key
	}
	return configured
}

package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full gateway configuration.
type Config struct {
	LLM       LLMConfig       `toml:"llm"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Cache     CacheConfig     `toml:"cache"`
	RAG       RAGConfig       `toml:"rag"`
	Storage   StorageConfig   `toml:"storage"`
}

// LLMConfig configures the generation backend.
type LLMConfig struct {
	// Provider is "ollama" or "openai".
	Provider string `toml:"provider"`

	// Model overrides the provider default model.
	Model string `toml:"model"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `toml:"base_url"`

	// APIKey authenticates hosted providers. The SEMGATE_OPENAI_API_KEY
	// environment variable takes precedence when set.
	APIKey string `toml:"api_key"`

	TimeoutSeconds int `toml:"timeout_seconds"`
}

// EmbeddingConfig configures the embedding backend.
type EmbeddingConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url"`
	APIKey   string `toml:"api_key"`

	// BatchSize is the number of texts per embedding request.
	BatchSize int `toml:"batch_size"`
}

// CacheConfig configures the semantic cache.
type CacheConfig struct {
	// Enabled turns cache lookups on.
	Enabled bool `toml:"enabled"`

	// ShadowMode evaluates the cache without serving from it.
	ShadowMode bool `toml:"shadow_mode"`

	// BaseURL is the cache service endpoint.
	BaseURL string `toml:"base_url"`

	// TTLSeconds is how long stored entries live.
	TTLSeconds int `toml:"ttl_seconds"`
}

// RAGConfig configures retrieval augmentation.
type RAGConfig struct {
	Enabled bool `toml:"enabled"`

	// TopK is the number of chunks retrieved per query.
	TopK int `toml:"top_k"`

	// Threshold is the minimum similarity for a retrieved chunk.
	Threshold float64 `toml:"threshold"`

	// ChunkSizeTokens and OverlapTokens control document chunking.
	ChunkSizeTokens int `toml:"chunk_size_tokens"`
	OverlapTokens   int `toml:"overlap_tokens"`
}

// StorageConfig configures the persistence backend.
type StorageConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `toml:"backend"`

	// Path is the sqlite database path (empty = default).
	Path string `toml:"path"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			Provider:       "ollama",
			TimeoutSeconds: 120,
		},
		Embedding: EmbeddingConfig{
			Provider:  "ollama",
			BatchSize: 10,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 3600,
		},
		RAG: RAGConfig{
			Enabled:         true,
			TopK:            5,
			Threshold:       0.7,
			ChunkSizeTokens: 500,
			OverlapTokens:   50,
		},
		Storage: StorageConfig{
			Backend: "sqlite",
		},
	}
}

// Store loads and persists gateway configuration as TOML. If configDir
// is empty it defaults to ~/.semgate.
type Store struct {
	mu       sync.RWMutex
	filePath string
	cfg      Config
}

// NewStore creates a config store rooted at configDir, loading the
// existing file or falling back to defaults.
func NewStore(configDir string) (*Store, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		configDir = filepath.Join(home, ".semgate")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &Store{
		filePath: filepath.Join(configDir, "config.toml"),
		cfg:      Default(),
	}

	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads the configuration file, leaving defaults in place for any
// fields the file omits. A missing file is not an error.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	s.cfg = cfg
	return nil
}

// Save persists the current configuration to disk.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(s.cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	// Restricted permissions: the file may hold API keys.
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Current returns a copy of the loaded configuration.
func (s *Store) Current() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Update applies fn to the configuration under the lock and persists
// the result.
func (s *Store) Update(fn func(*Config)) error {
	s.mu.Lock()
	fn(&s.cfg)
	data, err := toml.Marshal(s.cfg)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Path returns the configuration file path.
func (s *Store) Path() string {
	return s.filePath
}

// CacheTTL returns the configured cache TTL as a duration.
func (c CacheConfig) CacheTTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

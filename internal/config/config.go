package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EmbedderConfig configures the remote embedding provider.
type EmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Dimension   int    `yaml:"dimension"`
	TimeoutSecs int    `yaml:"timeout_secs"`

	APIKey string `yaml:"-"`
}

// CompletionConfig configures the chat-completion provider.
type CompletionConfig struct {
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`

	APIKey string `yaml:"-"`
}

// QdrantConfig contains connection details for the vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`

	APIKey string `yaml:"-"`
}

// IngestConfig configures the ingestion run.
type IngestConfig struct {
	Dir       string `yaml:"dir"`
	ChunkSize int    `yaml:"chunk_size"`
	Workers   int    `yaml:"workers"`
}

// RetrievalConfig configures the question-answering loop.
type RetrievalConfig struct {
	TopK         int  `yaml:"top_k"`
	MaxRephrases int  `yaml:"max_rephrases"`
	Corrective   bool `yaml:"corrective"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Completion CompletionConfig `yaml:"completion"`
	Qdrant     QdrantConfig     `yaml:"qdrant"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
}

// Load reads a config from path. A missing file yields defaults. API keys
// are resolved from the configured environment variables so clients receive
// them by injection, never by reading the environment themselves.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(cfg)
	resolveKeys(cfg)
	return cfg, nil
}

// Validate reports the first missing required external-service setting.
func (cfg *AppConfig) Validate() error {
	if cfg.Embedder.APIKey == "" {
		return fmt.Errorf("missing embedding API key (set %s)", cfg.Embedder.APIKeyEnv)
	}
	if cfg.Completion.APIKey == "" {
		return fmt.Errorf("missing completion API key (set %s)", cfg.Completion.APIKeyEnv)
	}
	if cfg.Qdrant.URL == "" {
		return errors.New("missing qdrant.url")
	}
	if cfg.Qdrant.Collection == "" {
		return errors.New("missing qdrant.collection")
	}
	return nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Embedder: EmbedderConfig{
			BaseURL:     "https://api-inference.huggingface.co/models",
			Model:       "BAAI/bge-small-en-v1.5",
			APIKeyEnv:   "HUGGINGFACE_API_TOKEN",
			Dimension:   384,
			TimeoutSecs: 30,
		},
		Completion: CompletionConfig{
			BaseURL:     "https://api.groq.com/openai/v1",
			Model:       "llama3-8b-8192",
			APIKeyEnv:   "GROQ_API_KEY",
			TimeoutSecs: 60,
		},
		Qdrant: QdrantConfig{
			APIKeyEnv:   "QDRANT_API_KEY",
			TimeoutSecs: 15,
		},
		Ingest: IngestConfig{
			Dir:       "upload_here",
			ChunkSize: 300,
			Workers:   4,
		},
		Retrieval: RetrievalConfig{
			TopK:         5,
			MaxRephrases: 3,
			Corrective:   true,
		},
	}
}

func applyDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Embedder.BaseURL == "" {
		cfg.Embedder.BaseURL = def.Embedder.BaseURL
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = def.Embedder.Model
	}
	if cfg.Embedder.APIKeyEnv == "" {
		cfg.Embedder.APIKeyEnv = def.Embedder.APIKeyEnv
	}
	if cfg.Embedder.Dimension == 0 {
		cfg.Embedder.Dimension = def.Embedder.Dimension
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = def.Embedder.TimeoutSecs
	}
	if cfg.Completion.BaseURL == "" {
		cfg.Completion.BaseURL = def.Completion.BaseURL
	}
	if cfg.Completion.Model == "" {
		cfg.Completion.Model = def.Completion.Model
	}
	if cfg.Completion.APIKeyEnv == "" {
		cfg.Completion.APIKeyEnv = def.Completion.APIKeyEnv
	}
	if cfg.Completion.TimeoutSecs == 0 {
		cfg.Completion.TimeoutSecs = def.Completion.TimeoutSecs
	}
	if cfg.Qdrant.APIKeyEnv == "" {
		cfg.Qdrant.APIKeyEnv = def.Qdrant.APIKeyEnv
	}
	if cfg.Qdrant.TimeoutSecs == 0 {
		cfg.Qdrant.TimeoutSecs = def.Qdrant.TimeoutSecs
	}
	if cfg.Qdrant.URL == "" {
		cfg.Qdrant.URL = os.Getenv("QDRANT_URL")
	}
	if cfg.Qdrant.Collection == "" {
		cfg.Qdrant.Collection = os.Getenv("COLLECTION_NAME")
	}
	if cfg.Ingest.Dir == "" {
		cfg.Ingest.Dir = def.Ingest.Dir
	}
	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = def.Ingest.ChunkSize
	}
	if cfg.Ingest.Workers == 0 {
		cfg.Ingest.Workers = def.Ingest.Workers
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = def.Retrieval.TopK
	}
	if cfg.Retrieval.MaxRephrases == 0 {
		cfg.Retrieval.MaxRephrases = def.Retrieval.MaxRephrases
	}
}

func resolveKeys(cfg *AppConfig) {
	cfg.Embedder.APIKey = os.Getenv(cfg.Embedder.APIKeyEnv)
	cfg.Completion.APIKey = os.Getenv(cfg.Completion.APIKeyEnv)
	cfg.Qdrant.APIKey = os.Getenv(cfg.Qdrant.APIKeyEnv)
}

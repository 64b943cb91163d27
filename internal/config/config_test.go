package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "BAAI/bge-small-en-v1.5", cfg.Embedder.Model)
	assert.Equal(t, 384, cfg.Embedder.Dimension)
	assert.Equal(t, "llama3-8b-8192", cfg.Completion.Model)
	assert.Equal(t, 300, cfg.Ingest.ChunkSize)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, 3, cfg.Retrieval.MaxRephrases)
	assert.True(t, cfg.Retrieval.Corrective)
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
qdrant:
  url: http://localhost:6333
  collection: documents
retrieval:
  corrective: false
  top_k: 7
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:6333", cfg.Qdrant.URL)
	assert.Equal(t, "documents", cfg.Qdrant.Collection)
	assert.False(t, cfg.Retrieval.Corrective)
	assert.Equal(t, 7, cfg.Retrieval.TopK)
	// untouched sections keep their defaults
	assert.Equal(t, 384, cfg.Embedder.Dimension)
	assert.Equal(t, 4, cfg.Ingest.Workers)
}

func TestLoadResolvesAPIKeysFromEnv(t *testing.T) {
	t.Setenv("HUGGINGFACE_API_TOKEN", "hf-key")
	t.Setenv("GROQ_API_KEY", "groq-key")
	t.Setenv("QDRANT_API_KEY", "qdrant-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "hf-key", cfg.Embedder.APIKey)
	assert.Equal(t, "groq-key", cfg.Completion.APIKey)
	assert.Equal(t, "qdrant-key", cfg.Qdrant.APIKey)
}

func TestLoadQdrantConnectionFromEnv(t *testing.T) {
	t.Setenv("QDRANT_URL", "http://qdrant:6333")
	t.Setenv("COLLECTION_NAME", "docs")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://qdrant:6333", cfg.Qdrant.URL)
	assert.Equal(t, "docs", cfg.Qdrant.Collection)
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("qdrant: ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("HUGGINGFACE_API_TOKEN", "hf-key")
	t.Setenv("GROQ_API_KEY", "groq-key")
	t.Setenv("QDRANT_URL", "http://localhost:6333")
	t.Setenv("COLLECTION_NAME", "docs")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())

	cfg.Qdrant.Collection = ""
	assert.Error(t, cfg.Validate())

	cfg.Qdrant.Collection = "docs"
	cfg.Embedder.APIKey = ""
	assert.Error(t, cfg.Validate())
}

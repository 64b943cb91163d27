package cli

import (
	"time"

	"docqa/internal/completion/groq"
	"docqa/internal/domain"
	"docqa/internal/embedding/huggingface"
	"docqa/internal/vectorstore/qdrant"
)

func newEmbedder() (domain.Embedder, error) {
	return huggingface.NewClient(huggingface.Config{
		BaseURL:   cfg.Embedder.BaseURL,
		Model:     cfg.Embedder.Model,
		APIKey:    cfg.Embedder.APIKey,
		Dimension: cfg.Embedder.Dimension,
		Timeout:   time.Duration(cfg.Embedder.TimeoutSecs) * time.Second,
	})
}

func newCompleter() (domain.Completer, error) {
	return groq.NewClient(groq.Config{
		BaseURL: cfg.Completion.BaseURL,
		Model:   cfg.Completion.Model,
		APIKey:  cfg.Completion.APIKey,
		Timeout: time.Duration(cfg.Completion.TimeoutSecs) * time.Second,
	})
}

func newStore() (domain.VectorStore, error) {
	return qdrant.NewStore(qdrant.Config{
		URL:        cfg.Qdrant.URL,
		APIKey:     cfg.Qdrant.APIKey,
		Collection: cfg.Qdrant.Collection,
		Timeout:    time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
	})
}

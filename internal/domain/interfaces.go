package domain

import "context"

// ContentBlock is one logically distinct unit of text extracted from a
// source file (a PDF's full text, one JSON search-result item, ...).
// Blocks keep their position within the file so chunk identifiers stay stable.
type ContentBlock struct {
	Index int
	Text  string
}

// Chunk is a word-count-bounded slice of a content block, the unit of
// embedding. ChunkIndex is relative to its block, AbsoluteIndex to the
// whole source file.
type Chunk struct {
	Source        string
	ContentID     string
	Text          string
	ChunkIndex    int
	AbsoluteIndex int
}

// Point is the persisted unit in the vector store: a fresh UUID, the
// embedding vector and the chunk payload.
type Point struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// Payload carries the chunk metadata stored alongside each vector.
type Payload struct {
	Text          string `json:"text"`
	Source        string `json:"source"`
	ContentID     string `json:"content_id"`
	ChunkIndex    int    `json:"chunk_index"`
	AbsoluteIndex int    `json:"absolute_index"`
}

// SearchHit is one ranked result of a nearest-neighbor search.
type SearchHit struct {
	ID      string
	Score   float64
	Payload Payload
}

// IngestStatus classifies the outcome of ingesting a single file.
type IngestStatus string

const (
	StatusUploaded  IngestStatus = "uploaded"
	StatusSkipped   IngestStatus = "skipped"
	StatusNoContent IngestStatus = "no content"
	StatusFailed    IngestStatus = "failed"
)

// IngestReport records the per-file outcome of an ingestion run.
type IngestReport struct {
	Source  string
	Status  IngestStatus
	Vectors int
	Err     error
}

// Embedder converts free text into a fixed-length vector representation.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// Completer generates text from a prompt via a remote language model.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)
}

// VectorStore persists points in a remote collection and supports
// similarity search plus the payload queries needed for dedup.
type VectorStore interface {
	EnsureCollection(ctx context.Context, dimension int) error
	EnsureSourceIndex(ctx context.Context) error
	Upsert(ctx context.Context, points []Point) error
	Search(ctx context.Context, vector []float32, topK int) ([]SearchHit, error)
	Sources(ctx context.Context) (map[string]struct{}, error)
	Exists(ctx context.Context) (bool, error)
}

// Extractor turns a file into an ordered sequence of content blocks.
type Extractor interface {
	Extract(path string) ([]ContentBlock, error)
}

package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"docqa/internal/chunker"
	"docqa/internal/domain"
	"docqa/internal/extractor"
)

// Ingestor uploads the contents of a directory into the vector store.
// Ingestion is idempotent per source name: a file whose name already appears
// as a source payload value is skipped.
type Ingestor struct {
	extractor domain.Extractor
	chunker   chunker.WordChunker
	embedder  domain.Embedder
	store     domain.VectorStore
	workers   int

	mu       sync.Mutex
	onReport func(domain.IngestReport)
}

// IngestorOptions tunes the ingestion run.
type IngestorOptions struct {
	ChunkSize int
	Workers   int
}

func NewIngestor(ext domain.Extractor, embedder domain.Embedder, store domain.VectorStore, opts IngestorOptions) *Ingestor {
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	return &Ingestor{
		extractor: ext,
		chunker:   chunker.NewWordChunker(opts.ChunkSize),
		embedder:  embedder,
		store:     store,
		workers:   workers,
	}
}

// OnReport registers a callback invoked once per finished file. Callbacks
// are serialized.
func (ing *Ingestor) OnReport(fn func(domain.IngestReport)) { ing.onReport = fn }

// IngestDirectory processes every supported file in dir. Files are handled
// by a bounded worker pool; a failure on one file never aborts the others.
// Reports are returned in directory order.
func (ing *Ingestor) IngestDirectory(ctx context.Context, dir string) ([]domain.IngestReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read upload directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !extractor.Supported(filepath.Ext(entry.Name())) {
			continue
		}
		files = append(files, entry.Name())
	}

	if err := ing.store.EnsureCollection(ctx, ing.embedder.Dimension()); err != nil {
		return nil, fmt.Errorf("ensure collection: %w", err)
	}
	// Index creation is idempotent; a failure here only degrades filtered
	// queries, so it is logged and not fatal.
	if err := ing.store.EnsureSourceIndex(ctx); err != nil {
		log.Printf("create source index: %v", err)
	}
	existing, err := ing.store.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect existing sources: %w", err)
	}

	reports := make([]domain.IngestReport, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ing.workers)
	for i, name := range files {
		g.Go(func() error {
			reports[i] = ing.ingestFile(ctx, dir, name, existing)
			ing.report(reports[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, nil
}

func (ing *Ingestor) report(r domain.IngestReport) {
	if ing.onReport == nil {
		return
	}
	ing.mu.Lock()
	defer ing.mu.Unlock()
	ing.onReport(r)
}

func (ing *Ingestor) ingestFile(ctx context.Context, dir, name string, existing map[string]struct{}) domain.IngestReport {
	if _, ok := existing[name]; ok {
		return domain.IngestReport{Source: name, Status: domain.StatusSkipped}
	}
	blocks, err := ing.extractor.Extract(filepath.Join(dir, name))
	if err != nil {
		return domain.IngestReport{Source: name, Status: domain.StatusFailed, Err: fmt.Errorf("extract: %w", err)}
	}
	if len(blocks) == 0 {
		return domain.IngestReport{Source: name, Status: domain.StatusNoContent}
	}
	points, err := ing.buildPoints(ctx, name, blocks)
	if err != nil {
		return domain.IngestReport{Source: name, Status: domain.StatusFailed, Err: err}
	}
	if err := ing.store.Upsert(ctx, points); err != nil {
		return domain.IngestReport{Source: name, Status: domain.StatusFailed, Err: fmt.Errorf("upsert: %w", err)}
	}
	return domain.IngestReport{Source: name, Status: domain.StatusUploaded, Vectors: len(points)}
}

// buildPoints embeds every chunk of every block and assembles the points for
// one file. Any embedding or dimension failure discards the whole file so no
// partial vectors are ever upserted.
func (ing *Ingestor) buildPoints(ctx context.Context, source string, blocks []domain.ContentBlock) ([]domain.Point, error) {
	dim := ing.embedder.Dimension()
	var points []domain.Point
	absolute := 0
	for _, block := range blocks {
		contentID := fmt.Sprintf("%s_content_%d", source, block.Index+1)
		chunkIndex := 0
		for text := range ing.chunker.Split(block.Text) {
			vec, err := ing.embedder.Embed(ctx, text)
			if err != nil {
				return nil, fmt.Errorf("embed chunk %d: %w", absolute, err)
			}
			if len(vec) != dim {
				return nil, fmt.Errorf("chunk %d: %w: got %d, want %d", absolute, domain.ErrDimensionMismatch, len(vec), dim)
			}
			points = append(points, domain.Point{
				ID:     uuid.New().String(),
				Vector: vec,
				Payload: domain.Payload{
					Text:          text,
					Source:        source,
					ContentID:     contentID,
					ChunkIndex:    chunkIndex,
					AbsoluteIndex: absolute,
				},
			})
			chunkIndex++
			absolute++
		}
	}
	return points, nil
}

package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
	"docqa/internal/extractor"
)

// fakeEmbedder returns deterministic 3-dimensional vectors.
type fakeEmbedder struct {
	mu      sync.Mutex
	dim     int
	badText string // text for which a wrong-length vector is returned
	err     error
	texts   []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.badText != "" && strings.Contains(text, f.badText) {
		return make([]float32, f.dim+1), nil
	}
	return make([]float32, f.dim), nil
}

func (f *fakeEmbedder) Dimension() int { return f.dim }

type fakeStore struct {
	mu       sync.Mutex
	sources  map[string]struct{}
	upserts  [][]domain.Point
	hits     []domain.SearchHit
	searches [][]float32

	ensureCollectionErr error
	ensureIndexErr      error
	sourcesErr          error
	upsertErr           error
	searchErr           error

	collectionDim int
}

func (f *fakeStore) EnsureCollection(_ context.Context, dim int) error {
	f.collectionDim = dim
	return f.ensureCollectionErr
}

func (f *fakeStore) EnsureSourceIndex(context.Context) error { return f.ensureIndexErr }

func (f *fakeStore) Upsert(_ context.Context, points []domain.Point) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, points)
	return nil
}

func (f *fakeStore) Search(_ context.Context, vector []float32, _ int) ([]domain.SearchHit, error) {
	f.mu.Lock()
	f.searches = append(f.searches, vector)
	f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.hits, nil
}

func (f *fakeStore) Sources(context.Context) (map[string]struct{}, error) {
	if f.sourcesErr != nil {
		return nil, f.sourcesErr
	}
	if f.sources == nil {
		return map[string]struct{}{}, nil
	}
	return f.sources, nil
}

func (f *fakeStore) Exists(context.Context) (bool, error) { return len(f.sources) > 0, nil }

func (f *fakeStore) allPoints() []domain.Point {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []domain.Point
	for _, batch := range f.upserts {
		all = append(all, batch...)
	}
	return all
}

func writeUpload(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newIngestor(embedder *fakeEmbedder, store *fakeStore, chunkSize int) *Ingestor {
	return NewIngestor(extractor.New(), embedder, store, IngestorOptions{ChunkSize: chunkSize, Workers: 2})
}

func reportFor(t *testing.T, reports []domain.IngestReport, source string) domain.IngestReport {
	t.Helper()
	for _, r := range reports {
		if r.Source == source {
			return r
		}
	}
	t.Fatalf("no report for %s in %+v", source, reports)
	return domain.IngestReport{}
}

func TestIngestDirectoryUploadsChunkedFile(t *testing.T) {
	dir := t.TempDir()
	writeUpload(t, dir, "doc.txt", "alpha beta gamma")

	embedder := &fakeEmbedder{dim: 3}
	store := &fakeStore{}
	ing := newIngestor(embedder, store, 2)

	reports, err := ing.IngestDirectory(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, domain.StatusUploaded, reports[0].Status)
	assert.Equal(t, 2, reports[0].Vectors)
	assert.Equal(t, 3, store.collectionDim)

	points := store.allPoints()
	require.Len(t, points, 2)
	assert.Equal(t, "alpha beta", points[0].Payload.Text)
	assert.Equal(t, "gamma", points[1].Payload.Text)
	for i, p := range points {
		assert.Equal(t, "doc.txt", p.Payload.Source)
		assert.Equal(t, "doc.txt_content_1", p.Payload.ContentID)
		assert.Equal(t, i, p.Payload.ChunkIndex)
		assert.Equal(t, i, p.Payload.AbsoluteIndex)
		assert.Len(t, p.Vector, 3)
		assert.NotEmpty(t, p.ID)
	}
	assert.NotEqual(t, points[0].ID, points[1].ID)
}

func TestIngestDirectorySkipsExistingSource(t *testing.T) {
	dir := t.TempDir()
	writeUpload(t, dir, "doc.txt", "alpha beta gamma")

	store := &fakeStore{sources: map[string]struct{}{"doc.txt": {}}}
	ing := newIngestor(&fakeEmbedder{dim: 3}, store, 2)

	reports, err := ing.IngestDirectory(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, domain.StatusSkipped, reports[0].Status)
	assert.Empty(t, store.upserts)
}

func TestIngestDirectoryIgnoresUnsupportedExtensions(t *testing.T) {
	dir := t.TempDir()
	writeUpload(t, dir, "notes.md", "# not ingested")
	writeUpload(t, dir, "doc.txt", "hello world")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755))

	store := &fakeStore{}
	ing := newIngestor(&fakeEmbedder{dim: 3}, store, 300)

	reports, err := ing.IngestDirectory(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "doc.txt", reports[0].Source)
}

func TestIngestDirectoryIsolatesPerFileFailures(t *testing.T) {
	dir := t.TempDir()
	writeUpload(t, dir, "bad.json", `{"webSearchResults": [`)
	writeUpload(t, dir, "good.txt", "usable content here")

	store := &fakeStore{}
	ing := newIngestor(&fakeEmbedder{dim: 3}, store, 300)

	reports, err := ing.IngestDirectory(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	bad := reportFor(t, reports, "bad.json")
	assert.Equal(t, domain.StatusFailed, bad.Status)
	assert.Error(t, bad.Err)

	good := reportFor(t, reports, "good.txt")
	assert.Equal(t, domain.StatusUploaded, good.Status)
	assert.Equal(t, 1, good.Vectors)
}

func TestIngestDirectoryDimensionMismatchIsAllOrNothing(t *testing.T) {
	dir := t.TempDir()
	writeUpload(t, dir, "doc.txt", "alpha beta gamma")

	embedder := &fakeEmbedder{dim: 3, badText: "gamma"}
	store := &fakeStore{}
	ing := newIngestor(embedder, store, 2)

	reports, err := ing.IngestDirectory(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, domain.StatusFailed, reports[0].Status)
	assert.ErrorIs(t, reports[0].Err, domain.ErrDimensionMismatch)
	assert.Empty(t, store.upserts, "no partial vectors may be upserted")
}

func TestIngestDirectoryReportsNoContent(t *testing.T) {
	dir := t.TempDir()
	writeUpload(t, dir, "empty.txt", "   ")
	writeUpload(t, dir, "other.json", `{"something": "else"}`)

	store := &fakeStore{}
	ing := newIngestor(&fakeEmbedder{dim: 3}, store, 300)

	reports, err := ing.IngestDirectory(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, domain.StatusNoContent, reportFor(t, reports, "empty.txt").Status)
	assert.Equal(t, domain.StatusNoContent, reportFor(t, reports, "other.json").Status)
	assert.Empty(t, store.upserts)
}

func TestIngestDirectoryMultipleContentBlocks(t *testing.T) {
	dir := t.TempDir()
	writeUpload(t, dir, "results.json", `{"webSearchResults": [
		[{"content": "one two three"}],
		[{"content": "four five"}]
	]}`)

	store := &fakeStore{}
	ing := newIngestor(&fakeEmbedder{dim: 3}, store, 2)

	reports, err := ing.IngestDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 3, reports[0].Vectors)

	points := store.allPoints()
	require.Len(t, points, 3)
	assert.Equal(t, "results.json_content_1", points[0].Payload.ContentID)
	assert.Equal(t, 0, points[0].Payload.ChunkIndex)
	assert.Equal(t, "results.json_content_1", points[1].Payload.ContentID)
	assert.Equal(t, 1, points[1].Payload.ChunkIndex)
	assert.Equal(t, "results.json_content_2", points[2].Payload.ContentID)
	assert.Equal(t, 0, points[2].Payload.ChunkIndex)
	assert.Equal(t, 2, points[2].Payload.AbsoluteIndex)
}

func TestIngestDirectoryFatalSetupErrors(t *testing.T) {
	dir := t.TempDir()
	writeUpload(t, dir, "doc.txt", "content")

	ing := newIngestor(&fakeEmbedder{dim: 3}, &fakeStore{ensureCollectionErr: fmt.Errorf("boom")}, 300)
	_, err := ing.IngestDirectory(context.Background(), dir)
	assert.Error(t, err)

	ing = newIngestor(&fakeEmbedder{dim: 3}, &fakeStore{sourcesErr: fmt.Errorf("boom")}, 300)
	_, err = ing.IngestDirectory(context.Background(), dir)
	assert.Error(t, err)
}

func TestIngestDirectoryIndexErrorIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	writeUpload(t, dir, "doc.txt", "content")

	store := &fakeStore{ensureIndexErr: fmt.Errorf("index unavailable")}
	ing := newIngestor(&fakeEmbedder{dim: 3}, store, 300)

	reports, err := ing.IngestDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUploaded, reports[0].Status)
}

func TestIngestDirectoryOnReportCallback(t *testing.T) {
	dir := t.TempDir()
	writeUpload(t, dir, "a.txt", "one")
	writeUpload(t, dir, "b.txt", "two")

	ing := newIngestor(&fakeEmbedder{dim: 3}, &fakeStore{}, 300)
	var seen []string
	var mu sync.Mutex
	ing.OnReport(func(r domain.IngestReport) {
		mu.Lock()
		seen = append(seen, r.Source)
		mu.Unlock()
	})

	_, err := ing.IngestDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, seen)
}

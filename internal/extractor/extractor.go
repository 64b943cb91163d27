// Package extractor turns source files into ordered content blocks,
// dispatching on file extension. Supported formats: pdf, docx, txt, json.
package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docqa/internal/domain"
)

// Supported reports whether files with the given extension can be extracted.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".pdf", ".docx", ".txt", ".json":
		return true
	}
	return false
}

// FileExtractor extracts content blocks from local files.
type FileExtractor struct{}

func New() FileExtractor { return FileExtractor{} }

// Extract reads the file and returns its content blocks in order. A readable
// file with nothing to index yields zero blocks and no error.
func (FileExtractor) Extract(path string) ([]domain.ContentBlock, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var texts []string
	var err error
	switch ext {
	case ".txt":
		texts, err = extractText(path)
	case ".json":
		texts, err = extractWebSearchJSON(path)
	case ".pdf":
		texts, err = extractPDF(path)
	case ".docx":
		texts, err = extractDOCX(path)
	default:
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}
	if err != nil {
		return nil, err
	}
	blocks := make([]domain.ContentBlock, 0, len(texts))
	for i, t := range texts {
		blocks = append(blocks, domain.ContentBlock{Index: i, Text: t})
	}
	return blocks, nil
}

func extractText(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read txt: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, nil
	}
	return []string{text}, nil
}

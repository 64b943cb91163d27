package extractor

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF joins the plain text of every page into a single block.
// Pages that fail individually are skipped; a document with no extractable
// text yields zero blocks.
func extractPDF(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		if t := strings.TrimSpace(text); t != "" {
			pages = append(pages, t)
		}
	}
	if len(pages) == 0 {
		return nil, nil
	}
	return []string{strings.Join(pages, " ")}, nil
}

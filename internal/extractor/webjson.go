package extractor

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// webSearchFile is the only JSON shape the pipeline indexes: a dump of web
// search results grouped into batches. Anything else decodes to an empty
// document rather than an error.
type webSearchFile struct {
	WebSearchResults [][]webSearchItem `json:"webSearchResults"`
}

type webSearchItem struct {
	Content string `json:"content"`
}

func extractWebSearchJSON(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	var doc webSearchFile
	if err := json.Unmarshal(data, &doc); err != nil {
		// Valid JSON of another shape yields zero blocks; broken JSON is
		// an unreadable file.
		if json.Valid(data) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse json: %w", err)
	}
	var texts []string
	for _, batch := range doc.WebSearchResults {
		for _, item := range batch {
			cleaned := strings.TrimSpace(strings.ReplaceAll(item.Content, "\\n", " "))
			if cleaned != "" {
				texts = append(texts, cleaned)
			}
		}
	}
	return texts, nil
}

package extractor

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// documentXML mirrors the parts of word/document.xml we read: paragraphs
// containing runs of text nodes.
type documentXML struct {
	Body struct {
		Paragraphs []struct {
			Runs []struct {
				Text string `xml:"t"`
			} `xml:"r"`
		} `xml:"p"`
	} `xml:"body"`
}

// extractDOCX reads word/document.xml from the DOCX archive and joins the
// paragraph texts into a single block.
func extractDOCX(path string) ([]string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer reader.Close()

	var raw []byte
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open docx document.xml: %w", err)
		}
		raw, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read docx document.xml: %w", err)
		}
		break
	}
	if raw == nil {
		return nil, fmt.Errorf("docx has no word/document.xml")
	}

	var doc documentXML
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse docx document.xml: %w", err)
	}

	var paragraphs []string
	for _, p := range doc.Body.Paragraphs {
		var b strings.Builder
		for _, r := range p.Runs {
			b.WriteString(r.Text)
		}
		if t := strings.TrimSpace(b.String()); t != "" {
			paragraphs = append(paragraphs, t)
		}
	}
	if len(paragraphs) == 0 {
		return nil, nil
	}
	return []string{strings.Join(paragraphs, " ")}, nil
}

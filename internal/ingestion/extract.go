package ingestion

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText reads a watched-directory document and returns its raw text.
// Only PDF and plain-text files are recognized.
func ExtractText(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	case ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read text file: %w", err)
		}
		return sanitizeText(string(data)), nil
	default:
		return "", fmt.Errorf("unsupported document extension: %s", filepath.Ext(path))
	}
}

// IsDocument reports whether name carries a recognized document extension.
func IsDocument(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".txt":
		return true
	}
	return false
}

func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var builder strings.Builder
	if _, err := io.Copy(&builder, reader); err != nil {
		return "", fmt.Errorf("failed to read extracted text: %w", err)
	}

	return sanitizeText(builder.String()), nil
}

// sanitizeText drops NUL bytes and non-printing controls some PDF
// extractors emit, keeping common whitespace.
func sanitizeText(s string) string {
	if s == "" {
		return s
	}

	s = strings.ReplaceAll(s, "\x00", "")

	r := make([]rune, 0, len(s))
	for _, ch := range s {
		if ch == '\n' || ch == '\r' || ch == '\t' {
			r = append(r, ch)
			continue
		}
		if ch < 0x20 {
			continue
		}
		r = append(r, ch)
	}
	return strings.TrimSpace(string(r))
}

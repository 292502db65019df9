// Package doctext extracts plain text from dropped files. Recognized
// formats are PDF and TXT; anything else is an unsupported-format error.
package doctext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/content-alchemist/internal/core/domain"
)

type Extractor struct {
	maxWords int
}

func New(maxWords int) *Extractor {
	if maxWords <= 0 {
		maxWords = 3000
	}
	return &Extractor{maxWords: maxWords}
}

// Extract returns up to maxWords words of text. It fails with
// domain.ErrUnsupportedFormat for unrecognized extensions and
// domain.ErrExtraction when a recognized file cannot be parsed or yields
// no text.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		raw string
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		raw, err = extractPDF(path)
	case ".txt":
		raw, err = extractTxt(path)
	default:
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "extract", fmt.Errorf("extension %q", ext))
	}
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "extract", err)
	}

	words := strings.Fields(raw)
	if len(words) == 0 {
		return "", domain.WrapError(domain.ErrExtraction, "extract", fmt.Errorf("no text in %s", filepath.Base(path)))
	}
	if len(words) > e.maxWords {
		words = words[:e.maxWords]
	}
	return strings.Join(words, " "), nil
}

func extractPDF(path string) (text string, err error) {
	// The pdf parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			// Skip unreadable pages, keep the rest.
			continue
		}
		if content != "" {
			pages = append(pages, content)
		}
	}
	return strings.Join(pages, "\n"), nil
}

func extractTxt(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read txt: %w", err)
	}
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	// Latin-1 decode never fails; mirrors the lenient handling of legacy
	// text files.
	runes := make([]rune, len(raw))
	for i, b := range raw {
		runes[i] = rune(b)
	}
	return string(runes), nil
}

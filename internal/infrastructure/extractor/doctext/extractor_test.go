package doctext

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/content-alchemist/internal/core/domain"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestExtractTxt(t *testing.T) {
	path := writeFile(t, "note.txt", []byte("hello  world\nagain"))

	text, err := New(3000).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "hello world again" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractCapsWordCount(t *testing.T) {
	path := writeFile(t, "long.txt", []byte(strings.Repeat("word ", 50)))

	text, err := New(10).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got := len(strings.Fields(text)); got != 10 {
		t.Fatalf("expected 10 words, got %d", got)
	}
}

func TestExtractTxtLatin1Fallback(t *testing.T) {
	// 0xE9 is 'é' in latin-1 and invalid UTF-8 on its own.
	path := writeFile(t, "legacy.txt", []byte{'c', 'a', 'f', 0xE9})

	text, err := New(3000).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "café" {
		t.Fatalf("expected latin-1 decode, got %q", text)
	}
}

func TestExtractRejectsUnrecognizedExtension(t *testing.T) {
	path := writeFile(t, "image.png", []byte{0x89, 'P', 'N', 'G'})

	_, err := New(3000).Extract(context.Background(), path)
	if !domain.IsKind(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtractEmptyFileIsExtractionError(t *testing.T) {
	path := writeFile(t, "empty.txt", []byte("   \n\t"))

	_, err := New(3000).Extract(context.Background(), path)
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestExtractCorruptPDFIsExtractionError(t *testing.T) {
	path := writeFile(t, "broken.pdf", []byte("%PDF-1.4 not really a pdf"))

	_, err := New(3000).Extract(context.Background(), path)
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

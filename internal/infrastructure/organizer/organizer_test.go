package organizer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/content-alchemist/internal/core/domain"
)

func dropFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestMoveRelocatesIntoCategoryDir(t *testing.T) {
	drop := t.TempDir()
	archive := t.TempDir()
	src := dropFile(t, drop, "paper.pdf", "pdf-bytes")

	org, err := New(archive)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	final, err := org.Move(context.Background(), src, "ML-Bio", "2026_protein_folding_research", ".pdf")
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}

	want := filepath.Join(archive, "ML-Bio", "2026_protein_folding_research.pdf")
	if final != want {
		t.Fatalf("final path = %q, want %q", final, want)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("source must be gone after move")
	}
	data, err := os.ReadFile(final)
	if err != nil || string(data) != "pdf-bytes" {
		t.Fatalf("destination content mismatch: %q, %v", data, err)
	}
}

func TestMoveDisambiguatesCollisions(t *testing.T) {
	drop := t.TempDir()
	archive := t.TempDir()
	org, err := New(archive)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var finals []string
	for i, content := range []string{"first", "second", "third"} {
		src := dropFile(t, drop, "same.txt", content)
		final, err := org.Move(context.Background(), src, "Finance", "report", ".txt")
		if err != nil {
			t.Fatalf("Move() #%d error = %v", i, err)
		}
		finals = append(finals, final)
	}

	wantNames := []string{"report.txt", "report_1.txt", "report_2.txt"}
	for i, final := range finals {
		if filepath.Base(final) != wantNames[i] {
			t.Fatalf("move #%d got %q, want %q", i, filepath.Base(final), wantNames[i])
		}
	}
	first, _ := os.ReadFile(finals[0])
	if string(first) != "first" {
		t.Fatalf("earlier file was overwritten: %q", first)
	}
}

func TestMoveUppercaseExtensionIsLowered(t *testing.T) {
	drop := t.TempDir()
	archive := t.TempDir()
	src := dropFile(t, drop, "SCAN.PDF", "bytes")

	org, _ := New(archive)
	final, err := org.Move(context.Background(), src, "Personal", "scan", ".PDF")
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if filepath.Base(final) != "scan.pdf" {
		t.Fatalf("expected lowered extension, got %q", filepath.Base(final))
	}
}

func TestMoveMissingSourceFailsAndCleansClaim(t *testing.T) {
	archive := t.TempDir()
	org, _ := New(archive)

	_, err := org.Move(context.Background(), filepath.Join(t.TempDir(), "gone.txt"), "Finance", "gone", ".txt")
	if !domain.IsKind(err, domain.ErrMove) {
		t.Fatalf("expected ErrMove, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(archive, "Finance", "gone.txt")); !os.IsNotExist(statErr) {
		t.Fatalf("claimed placeholder must be cleaned up on failure")
	}
}

func TestCopyThenDeleteCleansPartialOnFailure(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "dest.txt")
	if err := os.WriteFile(dest, nil, 0o644); err != nil {
		t.Fatalf("seed dest: %v", err)
	}

	err := copyThenDelete(filepath.Join(dir, "missing-src.txt"), dest)
	if !domain.IsKind(err, domain.ErrMove) {
		t.Fatalf("expected ErrMove, got %v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Fatalf("partial destination must be removed")
	}
}

func TestCopyThenDeleteMovesContent(t *testing.T) {
	dir := t.TempDir()
	src := dropFile(t, dir, "src.txt", "payload")
	dest := filepath.Join(dir, "dest.txt")
	if err := os.WriteFile(dest, nil, 0o644); err != nil {
		t.Fatalf("seed dest: %v", err)
	}

	if err := copyThenDelete(src, dest); err != nil {
		t.Fatalf("copyThenDelete() error = %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("source must be removed")
	}
	data, _ := os.ReadFile(dest)
	if string(data) != "payload" {
		t.Fatalf("destination content = %q", data)
	}
}

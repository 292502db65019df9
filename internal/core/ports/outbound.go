package ports

import (
	"context"

	"github.com/kirillkom/content-alchemist/internal/core/domain"
)

// TextExtractor converts a file's raw bytes into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// DocumentClassifier obtains a schema-validated classification for
// extracted text, given the current category set.
type DocumentClassifier interface {
	Classify(ctx context.Context, text, originalName string, knownCategories []string) (domain.ClassificationResult, error)
}

// FileOrganizer relocates a file into archiveRoot/category under a
// collision-free name and returns the final path.
type FileOrganizer interface {
	Move(ctx context.Context, sourcePath, category, stem, ext string) (string, error)
}

// AuditLog persists and reads terminal job records.
type AuditLog interface {
	Append(ctx context.Context, record *domain.FileRecord) error
	Recent(ctx context.Context, limit int) ([]domain.FileRecord, error)
	SearchSummary(ctx context.Context, query string) ([]domain.FileRecord, error)
	Categories(ctx context.Context) ([]string, error)
}

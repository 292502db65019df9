package ports

import (
	"context"

	"github.com/kirillkom/content-alchemist/internal/core/domain"
)

// FileProcessor is the inbound contract for running the pipeline over one
// stable file. Used by the watcher dispatch loop and the one-shot CLI.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string) (*domain.ProcessingJob, error)
}

package watcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kirillkom/content-alchemist/internal/core/domain"
	"github.com/kirillkom/content-alchemist/internal/core/ports"
	"github.com/kirillkom/content-alchemist/internal/observability/metrics"
)

// Dispatcher fans stable files out to a bounded pool of pipeline workers.
type Dispatcher struct {
	watcher   *Watcher
	processor ports.FileProcessor
	workers   int
	logger    *slog.Logger
	metrics   *metrics.PipelineMetrics
}

func NewDispatcher(w *Watcher, processor ports.FileProcessor, workers int, logger *slog.Logger, m *metrics.PipelineMetrics) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	return &Dispatcher{
		watcher:   w,
		processor: processor,
		workers:   workers,
		logger:    logger,
		metrics:   m,
	}
}

// Run consumes the watcher's stable stream until it closes. Each worker
// releases the path once its job reaches a terminal state, whatever that
// state is, so a re-dropped file can trigger a fresh job.
func (d *Dispatcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range d.watcher.Stable() {
				d.handle(ctx, file)
			}
		}()
	}
	wg.Wait()
}

// outcomeLabel reports the metric outcome for a finished job. Fallback-
// routed jobs keep their originating failure status instead of the
// generic logged status, so fallback volume stays visible.
func outcomeLabel(job *domain.ProcessingJob) string {
	switch {
	case job == nil:
		return string(domain.StatusFailed)
	case job.FallbackFrom != "":
		return string(job.FallbackFrom)
	default:
		return string(job.Status)
	}
}

func (d *Dispatcher) handle(ctx context.Context, file StableFile) {
	defer d.watcher.Release(file.Path)

	if d.metrics != nil {
		d.metrics.StartFile()
	}
	started := time.Now()
	job, err := d.processor.ProcessFile(ctx, file.Path)

	outcome := outcomeLabel(job)
	if d.metrics != nil {
		d.metrics.FinishFile("pipeline", outcome, time.Since(started))
	}

	if err != nil {
		d.logger.Error("pipeline_failed", "path", file.Path, "outcome", outcome, "error", err)
		return
	}

	// Fallback-routed jobs carry no classification result.
	category := ""
	if job.Classification != nil {
		category = job.Classification.Category
	}
	d.logger.Info("pipeline_done",
		"path", file.Path,
		"outcome", outcome,
		"category", category,
		"final_path", job.FinalPath,
	)
}

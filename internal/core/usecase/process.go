package usecase

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/content-alchemist/internal/core/domain"
	"github.com/kirillkom/content-alchemist/internal/core/ports"
	"github.com/kirillkom/content-alchemist/internal/core/registry"
)

// ProcessFileUseCase runs one stable file through extract → classify →
// organize → log. Extraction and classification failures are contained by
// fallback routing; only a failed move (including the fallback move) is
// surfaced to the caller with the source file left in place.
type ProcessFileUseCase struct {
	extractor  ports.TextExtractor
	classifier ports.DocumentClassifier
	organizer  ports.FileOrganizer
	audit      ports.AuditLog
	categories *registry.Registry
}

func NewProcessFileUseCase(
	extractor ports.TextExtractor,
	classifier ports.DocumentClassifier,
	organizer ports.FileOrganizer,
	audit ports.AuditLog,
	categories *registry.Registry,
) *ProcessFileUseCase {
	return &ProcessFileUseCase{
		extractor:  extractor,
		classifier: classifier,
		organizer:  organizer,
		audit:      audit,
		categories: categories,
	}
}

func (uc *ProcessFileUseCase) ProcessFile(ctx context.Context, path string) (*domain.ProcessingJob, error) {
	job := &domain.ProcessingJob{
		ID:         uuid.NewString(),
		SourcePath: path,
		Status:     domain.StatusStable,
		DetectedAt: time.Now().UTC(),
	}

	text, err := uc.extractText(ctx, job)
	if err != nil {
		category := domain.CategoryUnclassified
		summary := domain.SummaryUnclassified
		if domain.IsKind(err, domain.ErrUnsupportedFormat) {
			category = domain.CategoryUnsupported
			summary = domain.SummaryUnsupported
		}
		return uc.routeFallback(ctx, job, category, summary)
	}

	classification, err := uc.classify(ctx, job, text)
	if err != nil {
		return uc.routeFallback(ctx, job, domain.CategoryUnclassified, domain.SummaryUnclassified)
	}

	if err := uc.route(ctx, job, classification.Category, classification.FilenameStem); err != nil {
		return job, err
	}

	return job, uc.logRecord(ctx, job, classification.Category, classification.Summary)
}

func (uc *ProcessFileUseCase) extractText(ctx context.Context, job *domain.ProcessingJob) (string, error) {
	text, err := uc.extractor.Extract(ctx, job.SourcePath)
	if err != nil {
		job.Status = domain.StatusExtractFailed
		job.Err = err
		return "", err
	}
	job.ExtractedText = text
	job.Status = domain.StatusExtracted
	return text, nil
}

// classify obtains the schema-validated triple and reconciles it: the
// category goes through the registry's single lookup-or-insert critical
// section, the stem is sanitized, and the summary is bounded.
func (uc *ProcessFileUseCase) classify(ctx context.Context, job *domain.ProcessingJob, text string) (domain.ClassificationResult, error) {
	original := filepath.Base(job.SourcePath)

	result, err := uc.classifier.Classify(ctx, text, original, uc.categories.Names())
	if err != nil {
		job.Status = domain.StatusClassifyFailed
		job.Err = err
		return domain.ClassificationResult{}, err
	}

	result.Category, _ = uc.categories.LookupOrInsert(result.Category)
	result.FilenameStem = domain.SanitizeStem(result.FilenameStem, original)
	result.Summary = strings.TrimSpace(domain.TruncateRunes(result.Summary, domain.MaxSummaryLen))

	job.Classification = &result
	job.Status = domain.StatusClassified
	return result, nil
}

func (uc *ProcessFileUseCase) route(ctx context.Context, job *domain.ProcessingJob, category, stem string) error {
	ext := strings.ToLower(filepath.Ext(job.SourcePath))

	final, err := uc.organizer.Move(ctx, job.SourcePath, category, stem, ext)
	if err != nil {
		job.Status = domain.StatusFailed
		job.Err = err
		return err
	}
	job.FinalPath = final
	job.Status = domain.StatusRouted
	return nil
}

// routeFallback moves a failed file into a reserved category under its
// (sanitized) original name and still logs exactly one audit record.
func (uc *ProcessFileUseCase) routeFallback(ctx context.Context, job *domain.ProcessingJob, category, summary string) (*domain.ProcessingJob, error) {
	job.FallbackFrom = job.Status

	original := filepath.Base(job.SourcePath)
	stem := domain.SanitizeStem(strings.TrimSuffix(original, filepath.Ext(original)), original)

	if err := uc.route(ctx, job, category, stem); err != nil {
		return job, err
	}
	return job, uc.logRecord(ctx, job, category, summary)
}

func (uc *ProcessFileUseCase) logRecord(ctx context.Context, job *domain.ProcessingJob, category, summary string) error {
	record := &domain.FileRecord{
		OriginalFilename: filepath.Base(job.SourcePath),
		NewFilename:      filepath.Base(job.FinalPath),
		Category:         category,
		Summary:          summary,
		FinalPath:        job.FinalPath,
		ProcessedAt:      time.Now().UTC(),
	}
	if err := uc.audit.Append(ctx, record); err != nil {
		job.Err = err
		return err
	}
	job.Status = domain.StatusLogged
	return nil
}

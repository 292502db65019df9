package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/kirillkom/content-alchemist/internal/core/domain"
	"github.com/kirillkom/content-alchemist/internal/core/registry"
)

type extractorFake struct {
	text string
	err  error
}

func (f *extractorFake) Extract(context.Context, string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type classifierFake struct {
	result domain.ClassificationResult
	err    error

	gotText       string
	gotOriginal   string
	gotCategories []string
}

func (f *classifierFake) Classify(_ context.Context, text, originalName string, knownCategories []string) (domain.ClassificationResult, error) {
	f.gotText = text
	f.gotOriginal = originalName
	f.gotCategories = knownCategories
	if f.err != nil {
		return domain.ClassificationResult{}, f.err
	}
	return f.result, nil
}

type moveCall struct {
	source   string
	category string
	stem     string
	ext      string
}

type organizerFake struct {
	err   error
	calls []moveCall
}

func (f *organizerFake) Move(_ context.Context, sourcePath, category, stem, ext string) (string, error) {
	f.calls = append(f.calls, moveCall{source: sourcePath, category: category, stem: stem, ext: ext})
	if f.err != nil {
		return "", f.err
	}
	return filepath.Join("/archive", category, stem+ext), nil
}

type auditFake struct {
	err     error
	records []domain.FileRecord
}

func (f *auditFake) Append(_ context.Context, record *domain.FileRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, *record)
	return nil
}

func (f *auditFake) Recent(context.Context, int) ([]domain.FileRecord, error) { return nil, nil }
func (f *auditFake) SearchSummary(context.Context, string) ([]domain.FileRecord, error) {
	return nil, nil
}
func (f *auditFake) Categories(context.Context) ([]string, error) { return nil, nil }

func newUC(extractor *extractorFake, classifier *classifierFake, org *organizerFake, audit *auditFake, seed ...string) *ProcessFileUseCase {
	return NewProcessFileUseCase(extractor, classifier, org, audit, registry.New(seed))
}

func TestProcessFileSuccess(t *testing.T) {
	classifier := &classifierFake{result: domain.ClassificationResult{
		Category:     "ML-Bio",
		FilenameStem: "2026_protein_folding_research",
		Summary:      "Protein folding with deep learning.",
	}}
	org := &organizerFake{}
	audit := &auditFake{}
	uc := newUC(&extractorFake{text: "This paper discusses protein folding using deep learning."}, classifier, org, audit, "Finance", "Personal")

	job, err := uc.ProcessFile(context.Background(), "/drop/paper.pdf")
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}
	if job.Status != domain.StatusLogged {
		t.Fatalf("expected logged status, got %s", job.Status)
	}
	if job.FinalPath != "/archive/ML-Bio/2026_protein_folding_research.pdf" {
		t.Fatalf("unexpected final path %q", job.FinalPath)
	}
	if classifier.gotOriginal != "paper.pdf" {
		t.Fatalf("classifier must receive the original name, got %q", classifier.gotOriginal)
	}
	if len(classifier.gotCategories) != 2 {
		t.Fatalf("classifier must receive the known categories, got %v", classifier.gotCategories)
	}
	if len(audit.records) != 1 {
		t.Fatalf("expected exactly one audit record, got %d", len(audit.records))
	}
	rec := audit.records[0]
	if rec.Category != "ML-Bio" || rec.OriginalFilename != "paper.pdf" || rec.NewFilename != "2026_protein_folding_research.pdf" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestProcessFileReconcilesCategoryCasing(t *testing.T) {
	classifier := &classifierFake{result: domain.ClassificationResult{
		Category:     "finance ",
		FilenameStem: "2026_q3_report",
		Summary:      "A report.",
	}}
	org := &organizerFake{}
	uc := newUC(&extractorFake{text: "t"}, classifier, org, &auditFake{}, "Finance")

	if _, err := uc.ProcessFile(context.Background(), "/drop/report.pdf"); err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}
	if org.calls[0].category != "Finance" {
		t.Fatalf("expected canonical category Finance, got %q", org.calls[0].category)
	}
}

func TestProcessFileRegistersNewCategory(t *testing.T) {
	classifier := &classifierFake{result: domain.ClassificationResult{
		Category:     "ML-Bio",
		FilenameStem: "x",
		Summary:      "s",
	}}
	reg := registry.New([]string{"Finance", "Personal"})
	uc := NewProcessFileUseCase(&extractorFake{text: "t"}, classifier, &organizerFake{}, &auditFake{}, reg)

	if _, err := uc.ProcessFile(context.Background(), "/drop/a.pdf"); err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}
	names := reg.Names()
	if len(names) != 3 || names[2] != "ML-Bio" {
		t.Fatalf("expected registry to gain ML-Bio, got %v", names)
	}
}

func TestProcessFileUnsupportedFormatRoutesToReservedFolder(t *testing.T) {
	extractErr := domain.WrapError(domain.ErrUnsupportedFormat, "extract", errors.New(`extension ".png"`))
	org := &organizerFake{}
	audit := &auditFake{}
	uc := newUC(&extractorFake{err: extractErr}, &classifierFake{}, org, audit)

	job, err := uc.ProcessFile(context.Background(), "/drop/photo.png")
	if err != nil {
		t.Fatalf("fallback routing must contain the failure, got %v", err)
	}
	if job.Status != domain.StatusLogged {
		t.Fatalf("expected logged status, got %s", job.Status)
	}
	if org.calls[0].category != domain.CategoryUnsupported {
		t.Fatalf("expected unsupported fallback, got %q", org.calls[0].category)
	}
	if org.calls[0].stem != "photo" || org.calls[0].ext != ".png" {
		t.Fatalf("fallback must keep the original name: %+v", org.calls[0])
	}
	if len(audit.records) != 1 || audit.records[0].Summary != domain.SummaryUnsupported {
		t.Fatalf("unexpected audit records %+v", audit.records)
	}
	if job.FallbackFrom != domain.StatusExtractFailed {
		t.Fatalf("FallbackFrom = %q, want %q", job.FallbackFrom, domain.StatusExtractFailed)
	}
}

func TestProcessFileExtractionErrorRoutesToUnclassified(t *testing.T) {
	extractErr := domain.WrapError(domain.ErrExtraction, "extract", errors.New("corrupt pdf"))
	org := &organizerFake{}
	audit := &auditFake{}
	uc := newUC(&extractorFake{err: extractErr}, &classifierFake{}, org, audit)

	job, err := uc.ProcessFile(context.Background(), "/drop/broken.pdf")
	if err != nil {
		t.Fatalf("fallback routing must contain the failure, got %v", err)
	}
	if org.calls[0].category != domain.CategoryUnclassified {
		t.Fatalf("expected unclassified fallback, got %q", org.calls[0].category)
	}
	if job.Status != domain.StatusLogged || len(audit.records) != 1 {
		t.Fatalf("expected one logged record, got status=%s records=%d", job.Status, len(audit.records))
	}
}

func TestProcessFileClassificationFailureRoutesToUnclassified(t *testing.T) {
	classifyErr := domain.WrapError(domain.ErrClassification, "classify", errors.New("retries exhausted"))
	org := &organizerFake{}
	audit := &auditFake{}
	uc := newUC(&extractorFake{text: "t"}, &classifierFake{err: classifyErr}, org, audit)

	job, err := uc.ProcessFile(context.Background(), "/drop/doc.pdf")
	if err != nil {
		t.Fatalf("fallback routing must contain the failure, got %v", err)
	}
	if org.calls[0].category != domain.CategoryUnclassified {
		t.Fatalf("expected unclassified fallback, got %q", org.calls[0].category)
	}
	if len(audit.records) != 1 || audit.records[0].Summary != domain.SummaryUnclassified {
		t.Fatalf("unexpected audit records %+v", audit.records)
	}
	if job.FallbackFrom != domain.StatusClassifyFailed {
		t.Fatalf("FallbackFrom = %q, want %q", job.FallbackFrom, domain.StatusClassifyFailed)
	}
}

func TestProcessFileMoveFailureIsTerminalFailed(t *testing.T) {
	moveErr := domain.WrapError(domain.ErrMove, "rename", errors.New("disk full"))
	audit := &auditFake{}
	classifier := &classifierFake{result: domain.ClassificationResult{Category: "Finance", FilenameStem: "x", Summary: "s"}}
	uc := newUC(&extractorFake{text: "t"}, classifier, &organizerFake{err: moveErr}, audit, "Finance")

	job, err := uc.ProcessFile(context.Background(), "/drop/doc.pdf")
	if !domain.IsKind(err, domain.ErrMove) {
		t.Fatalf("expected surfaced move error, got %v", err)
	}
	if job.Status != domain.StatusFailed {
		t.Fatalf("expected failed status, got %s", job.Status)
	}
	if len(audit.records) != 0 {
		t.Fatalf("failed jobs must not log records, got %+v", audit.records)
	}
}

func TestProcessFileSanitizesStemAndBoundsSummary(t *testing.T) {
	longSummary := make([]byte, 0, 3000)
	for range 3000 {
		longSummary = append(longSummary, 'a')
	}
	classifier := &classifierFake{result: domain.ClassificationResult{
		Category:     "Finance",
		FilenameStem: "Bad/Name With Spaces.pdf",
		Summary:      string(longSummary),
	}}
	org := &organizerFake{}
	audit := &auditFake{}
	uc := newUC(&extractorFake{text: "t"}, classifier, org, audit, "Finance")

	if _, err := uc.ProcessFile(context.Background(), "/drop/doc.pdf"); err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}
	if org.calls[0].stem != "name_with_spaces" {
		t.Fatalf("expected sanitized stem, got %q", org.calls[0].stem)
	}
	if len(audit.records[0].Summary) != domain.MaxSummaryLen {
		t.Fatalf("expected bounded summary, got %d chars", len(audit.records[0].Summary))
	}
}

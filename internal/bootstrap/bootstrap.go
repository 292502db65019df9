// Package bootstrap wires configuration into the concrete pipeline:
// audit store, category registry, extractor, classifier, organizer,
// use case, watcher, and the observability surface.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	httpadapter "github.com/kirillkom/content-alchemist/internal/adapters/http"
	"github.com/kirillkom/content-alchemist/internal/config"
	"github.com/kirillkom/content-alchemist/internal/core/domain"
	"github.com/kirillkom/content-alchemist/internal/core/registry"
	"github.com/kirillkom/content-alchemist/internal/core/usecase"
	"github.com/kirillkom/content-alchemist/internal/infrastructure/audit/sqldb"
	"github.com/kirillkom/content-alchemist/internal/infrastructure/extractor/doctext"
	"github.com/kirillkom/content-alchemist/internal/infrastructure/llm/openai"
	"github.com/kirillkom/content-alchemist/internal/infrastructure/organizer"
	"github.com/kirillkom/content-alchemist/internal/infrastructure/resilience"
	"github.com/kirillkom/content-alchemist/internal/infrastructure/watcher"
	"github.com/kirillkom/content-alchemist/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.PipelineMetrics

	Audit      *sqldb.Store
	Categories *registry.Registry
	ProcessUC  *usecase.ProcessFileUseCase
	Watcher    *watcher.Watcher
	Dispatcher *watcher.Dispatcher
	Router     *httpadapter.Router

	db *sql.DB
}

// New builds the full daemon wiring. NewPipeline is the subset used by
// the one-shot CLI, which has no watcher or HTTP surface.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	app, err := NewPipeline(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	w, err := watcher.New(watcher.Config{
		DropDir:        cfg.DropDir,
		PollInterval:   cfg.PollInterval,
		StableSamples:  cfg.StableSamples,
		RescanInterval: cfg.RescanInterval,
	}, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init watcher: %w", err)
	}
	w.StabilityObserver = app.Metrics.ObserveStabilityWait

	app.Watcher = w
	app.Dispatcher = watcher.NewDispatcher(w, app.ProcessUC, cfg.Workers, logger, app.Metrics)
	app.Router = httpadapter.NewRouter(app.Audit, app.Metrics.Handler())
	return app, nil
}

func NewPipeline(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := sqldb.Open(cfg.AuditDriver, cfg.AuditDSN)
	if err != nil {
		return nil, fmt.Errorf("open audit store: %w", err)
	}
	store := sqldb.NewStore(db, cfg.AuditDriver)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure audit schema: %w", err)
	}

	categories, err := hydrateRegistry(ctx, cfg.DefaultCategories, store)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	pipelineMetrics := metrics.NewPipelineMetrics("content-alchemist")

	executor := newClassifyExecutor(cfg, pipelineMetrics)

	classifier := openai.NewClassifier(openai.Options{
		BaseURL:        cfg.LLMBaseURL,
		APIKey:         cfg.LLMAPIKey,
		Model:          cfg.LLMModel,
		RequestTimeout: cfg.LLMRequestTimeout,
		RatePerMinute:  cfg.LLMRatePerMinute,
		MaxPromptChars: cfg.MaxPromptChars,
		Executor:       executor,
	})

	mover, err := organizer.New(cfg.ArchiveRoot)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init organizer: %w", err)
	}

	processUC := usecase.NewProcessFileUseCase(
		doctext.New(cfg.MaxExtractWords),
		classifier,
		mover,
		store,
		categories,
	)

	return &App{
		Config:     cfg,
		Logger:     logger,
		Metrics:    pipelineMetrics,
		Audit:      store,
		Categories: categories,
		ProcessUC:  processUC,
		db:         db,
	}, nil
}

// newClassifyExecutor overlays the configured retry policy on the breaker
// defaults. Starting from DefaultConfig keeps the circuit breaker enabled;
// a zero-valued Config would silently run retry-only.
func newClassifyExecutor(cfg config.Config, m *metrics.PipelineMetrics) *resilience.Executor {
	resilienceCfg := resilience.DefaultConfig()
	resilienceCfg.RetryMaxAttempts = cfg.RetryMaxAttempts
	resilienceCfg.RetryInitialBackoff = cfg.RetryInitialBackoff
	resilienceCfg.RetryMaxBackoff = cfg.RetryMaxBackoff

	executor := resilience.NewExecutor(resilienceCfg)
	executor.OnRetry(func(string) { m.CountClassifyRetry() })
	return executor
}

// hydrateRegistry seeds the registry with the configured defaults, then
// folds in every category already present in the audit log so restarts
// keep prior spellings canonical. Reserved fallback names never become
// registry entries.
func hydrateRegistry(ctx context.Context, seed []string, store *sqldb.Store) (*registry.Registry, error) {
	reg := registry.New(seed)

	persisted, err := store.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load persisted categories: %w", err)
	}
	for _, name := range persisted {
		if domain.IsReservedCategory(name) {
			continue
		}
		reg.LookupOrInsert(name)
	}
	return reg, nil
}

func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

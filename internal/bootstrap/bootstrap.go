// Package bootstrap assembles the application graph: infrastructure
// first, then use cases, then the HTTP surface. main stays a thin
// lifecycle shell.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	httpadapter "github.com/mycent-kz/edo-orchestrator/internal/adapters/http"
	"github.com/mycent-kz/edo-orchestrator/internal/config"
	"github.com/mycent-kz/edo-orchestrator/internal/core/usecase"
	"github.com/mycent-kz/edo-orchestrator/internal/infrastructure/edo"
	natsevents "github.com/mycent-kz/edo-orchestrator/internal/infrastructure/events/nats"
	"github.com/mycent-kz/edo-orchestrator/internal/infrastructure/journal/postgres"
	"github.com/mycent-kz/edo-orchestrator/internal/infrastructure/resilience"
	"github.com/mycent-kz/edo-orchestrator/internal/observability/metrics"
)

const serviceName = "edo-orchestrator"

type App struct {
	Handler http.Handler

	closers []func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	app := &App{}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	app.closers = append(app.closers, func() {
		if err := db.Close(); err != nil {
			logger.Warn("close_postgres_failed", "error", err)
		}
	})

	journal := postgres.NewJournal(db)
	if err := journal.EnsureSchema(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("ensure journal schema: %w", err)
	}

	publisher, err := natsevents.NewWithOptions(cfg.NATSURL, natsevents.Options{
		SubjectPrefix: cfg.NATSSubjectPrefix,
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	app.closers = append(app.closers, publisher.Close)

	executor := resilience.NewExecutor(resilience.Config{
		Enabled:          cfg.BreakerEnabled,
		MinRequests:      uint32(cfg.BreakerMinRequests),
		FailureRatio:     cfg.BreakerFailureRatio,
		OpenTimeout:      cfg.BreakerOpenTimeout,
		HalfOpenMaxCalls: uint32(cfg.BreakerHalfOpenMaxCalls),
	})

	gateway := edo.New(cfg.EdoBaseURL,
		edo.WithToken(cfg.EdoToken),
		edo.WithTimeout(cfg.EdoTimeout),
		edo.WithExecutor(executor),
	)

	httpMetrics := metrics.NewHTTPServerMetrics(serviceName)
	editorMetrics := metrics.NewEditorMetrics(httpMetrics.Registry(), serviceName)

	sessions := usecase.NewSessionManager()
	sessions.OnCountChange(editorMetrics.SetActiveSessions)

	resolver := usecase.NewSettingsResolver(gateway)
	loader := usecase.NewLoadDocumentUseCase(gateway, resolver, logger)
	creator := usecase.NewCreateDocumentUseCase(gateway, resolver, publisher, logger)
	submitter := usecase.NewSubmitUseCase(gateway, journal, publisher, editorMetrics, logger)
	resender := usecase.NewResendUseCase(gateway, publisher, editorMetrics, logger)
	printer := usecase.NewPrintFormUseCase(gateway, logger)

	router := httpadapter.NewRouter(sessions, loader, creator, submitter, resender, printer, httpMetrics, httpadapter.Options{
		JWTSecret:          cfg.JWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	})
	app.Handler = router.Handler()

	return app, nil
}

// Close releases infrastructure in reverse construction order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

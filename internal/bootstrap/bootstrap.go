package bootstrap

import (
	"context"
	"fmt"

	"github.com/kirillkom/voicebill/internal/config"
	"github.com/kirillkom/voicebill/internal/core/ports"
	"github.com/kirillkom/voicebill/internal/core/usecase"
	"github.com/kirillkom/voicebill/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/voicebill/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/voicebill/internal/infrastructure/queue/nats"
	renderpdf "github.com/kirillkom/voicebill/internal/infrastructure/render/pdf"
	"github.com/kirillkom/voicebill/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/voicebill/internal/infrastructure/resilience"
	sttopenai "github.com/kirillkom/voicebill/internal/infrastructure/stt/openai"
	"github.com/kirillkom/voicebill/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/voicebill/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Queue     *nats.Queue
	Catalog   ports.CatalogRepository
	Archive   ports.BillArchive
	Exporter  *xlsx.Exporter
	Processor ports.VoiceBillProcessor
	Metrics   *metrics.HTTPServerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	catalog := postgres.NewCatalogRepository(db)
	archive := postgres.NewBillRepository(db)

	audio, err := localfs.New(cfg.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("init audio storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultPolicy())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init event queue: %w", err)
	}

	transcriber, err := sttopenai.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.STTModel, cfg.STTLanguage, executor)
	if err != nil {
		return nil, fmt.Errorf("init transcriber: %w", err)
	}

	extractor := ollama.NewExtractor(ollama.New(cfg.OllamaURL, cfg.OllamaModel), executor)

	renderer, err := renderpdf.New(cfg.BillsPath)
	if err != nil {
		return nil, fmt.Errorf("init renderer: %w", err)
	}

	httpMetrics := metrics.NewHTTPServerMetrics("api")

	processor := usecase.NewProcessVoiceUseCase(
		transcriber,
		extractor,
		catalog,
		renderer,
		audio,
		queue,
		httpMetrics.StageObserver("api"),
	)

	return &App{
		Config: cfg,

		Queue:     queue,
		Catalog:   catalog,
		Archive:   archive,
		Exporter:  xlsx.New(archive, nil),
		Processor: processor,
		Metrics:   httpMetrics,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

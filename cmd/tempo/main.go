package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alexanderramin/tempo/internal/cli"
	"github.com/alexanderramin/tempo/internal/config"
	"github.com/alexanderramin/tempo/internal/corpus"
	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/llm"
	"github.com/alexanderramin/tempo/internal/observability"
	"github.com/alexanderramin/tempo/internal/planner"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/alexanderramin/tempo/internal/sessiontext"
	"github.com/alexanderramin/tempo/internal/vectorindex"
	"github.com/alexanderramin/tempo/internal/volume"
	"github.com/mattn/go-isatty"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Config path: TEMPO_CONFIG, else tempo.yaml in the working directory if present.
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Log.Level,
		Format: logFormat(cfg.Log.Format),
	})

	observers := []service.StageObserver{service.NewLogStageObserver(logger)}
	if cfg.Sentry.DSN != "" {
		reporter, err := observability.NewSentryReporter(
			observability.SentryOptions(cfg.Sentry.DSN, cfg.Sentry.Environment, "tempo@"+version))
		if err != nil {
			return err
		}
		defer reporter.Flush(2 * time.Second)
		observers = append(observers, service.NewReportingStageObserver(reporter))
	}

	database, dialect, err := db.Open(ctx, cfg.DB.Driver, cfg.DB.DSN())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	uow := db.NewUnitOfWork(database, dialect)
	calendar := repository.NewCalendarRepo(db.Bind(database, dialect))

	src, err := corpusSource(ctx, cfg.Corpus)
	if err != nil {
		return err
	}

	app := &cli.App{
		Calendar:     service.NewCalendarService(calendar),
		CorpusSource: src,
	}

	// A broken corpus still lets "corpus validate" and the calendar commands run.
	c, err := corpus.Load(ctx, src)
	if err != nil {
		logger.Warn("corpus_load_failed", "source", cfg.Corpus.Source, "error", err)
		app.CorpusErr = err
	} else {
		plans, err := buildPlanService(ctx, cfg, c, uow, logger, observers)
		if err != nil {
			return err
		}
		app.Corpus = c
		app.Plans = plans
		app.Tool = service.NewPlannerTool(plans)
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

func configPath() string {
	if p := os.Getenv("TEMPO_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("tempo.yaml"); err == nil {
		return "tempo.yaml"
	}
	return ""
}

// logFormat resolves "auto" against stderr.
func logFormat(format string) string {
	if format != config.LogFormatAuto {
		return format
	}
	fd := os.Stderr.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return "text"
	}
	return "json"
}

func corpusSource(ctx context.Context, cfg config.CorpusConfig) (corpus.Source, error) {
	if cfg.Source != "s3" {
		return corpus.NewDirSource(cfg.Dir), nil
	}
	src, err := corpus.NewS3Source(ctx, corpus.S3Config{
		Bucket:          cfg.S3.Bucket,
		Prefix:          cfg.S3.Prefix,
		Region:          cfg.S3.Region,
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("opening corpus bucket: %w", err)
	}
	return src, nil
}

func buildPlanService(ctx context.Context, cfg config.Config, c *corpus.Corpus, uow db.UnitOfWork, logger *slog.Logger, observers []service.StageObserver) (service.PlanService, error) {
	llmCfg := llm.LoadConfig()
	llmCfg.Provider = llm.Provider(cfg.LLM.Provider)
	if cfg.LLM.Endpoint != "" {
		llmCfg.Endpoint = cfg.LLM.Endpoint
	}
	if cfg.LLM.Model != "" {
		llmCfg.Model = cfg.LLM.Model
	}

	var callObserver llm.Observer = llm.NoopObserver{}
	if llmCfg.LogCalls {
		callObserver = llm.NewSlogObserver(logger)
	}
	client, err := llm.NewBackend(ctx, llmCfg, callObserver)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}

	var embedder llm.Embedder = vectorindex.NewHashEmbedder()
	if cfg.Embedding.Provider != "hash" {
		embCfg := llmCfg
		embCfg.Provider = llm.Provider(cfg.Embedding.Provider)
		if embCfg.Provider == llmCfg.Provider {
			embedder = client
		} else if embedder, err = llm.NewBackend(ctx, embCfg, callObserver); err != nil {
			return nil, fmt.Errorf("embedding provider: %w", err)
		}
	}

	idx, err := planner.BuildIndexes(ctx, c, embedder)
	if err != nil {
		return nil, fmt.Errorf("indexing corpus: %w", err)
	}
	sel := vectorindex.NewSelector(embedder)

	var philosophy planner.PhilosophyStrategy = planner.NewFilterPhilosophyStrategy(c)
	if cfg.Pipeline.PhilosophyStrategy == config.StrategyEmbedding {
		philosophy = planner.NewEmbeddingPhilosophyStrategy(c, idx, sel)
	}
	var structure planner.StructureStrategy = planner.NewFilterStructureStrategy(c)
	if cfg.Pipeline.StructureStrategy == config.StrategyEmbedding {
		structure = planner.NewEmbeddingStructureStrategy(c, idx, sel)
	}

	text := sessiontext.NewGenerator(
		client,
		sessiontext.NewCache(cfg.Pipeline.CacheTTL),
		sessiontext.NewLimiter(cfg.Pipeline.TextConcurrency),
		logger,
	)

	stages := service.Stages{
		Macro:      planner.NewMacroPlanner(client),
		Philosophy: planner.NewPhilosophySelector(c, philosophy),
		Structures: planner.NewStructureResolver(structure),
		Templates:  planner.NewTemplateSelector(c, idx, sel),
		Text:       text,
		Persist:    service.NewPersistService(uow, logger),
		Ratios:     volume.Ratios(cfg.Pipeline.Ratios),
	}
	return service.NewPlanService(stages, observers...), nil
}

package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/kirillkom/job-search-assistant/internal/config"
	"github.com/kirillkom/job-search-assistant/internal/core/domain"
	"github.com/kirillkom/job-search-assistant/internal/core/ports"
	"github.com/kirillkom/job-search-assistant/internal/core/usecase"
	"github.com/kirillkom/job-search-assistant/internal/infrastructure/corpus/jsonfile"
	"github.com/kirillkom/job-search-assistant/internal/infrastructure/extractor/resume"
	"github.com/kirillkom/job-search-assistant/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/job-search-assistant/internal/infrastructure/llm/openai"
	"github.com/kirillkom/job-search-assistant/internal/infrastructure/queue/nats"
	"github.com/kirillkom/job-search-assistant/internal/infrastructure/repository/badger"
	"github.com/kirillkom/job-search-assistant/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/job-search-assistant/internal/infrastructure/resilience"
	"github.com/kirillkom/job-search-assistant/internal/infrastructure/rules"
	"github.com/kirillkom/job-search-assistant/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/job-search-assistant/internal/infrastructure/vector/flat"
	"github.com/kirillkom/job-search-assistant/internal/infrastructure/vector/qdrant"
	"github.com/kirillkom/job-search-assistant/internal/observability/metrics"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	VectorBackendQdrant = "qdrant"
	VectorBackendMemory = "memory"

	CorpusSourcePostgres = "postgres"
	ProfileStorePostgres = "postgres"
)

// Options selects the optional parts of the graph a binary needs.
type Options struct {
	// Metrics receives search telemetry and resilience events; nil disables them.
	Metrics *metrics.SearchMetrics
	// ConnectQueue connects to NATS so reindex requests can be published or consumed.
	ConnectQueue bool
	// IndexIfStale builds the in-memory vector index at startup when its size
	// differs from the corpus. It has no effect on the qdrant backend.
	IndexIfStale bool
}

type App struct {
	Config config.Config
	Rules  domain.SearchRules
	Corpus *domain.Corpus

	Interpreter *usecase.QueryInterpreter
	SearchUC    *usecase.JobSearchUseCase
	ChatUC      ports.JobChatService
	ProfileUC   ports.ProfileService
	BrowseUC    ports.CorpusBrowser
	IndexUC     ports.CorpusIndexer
	// ReindexUC is nil when the queue is not connected.
	ReindexUC ports.ReindexRequester
	Queue     ports.MessageQueue

	closeFn []func()
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	app := &App{Config: cfg}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	searchRules, err := rules.Load(cfg.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	app.Rules = searchRules

	var db *sql.DB
	if cfg.CorpusSource == CorpusSourcePostgres || cfg.ProfileStore == ProfileStorePostgres {
		db, err = postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		app.closeFn = append(app.closeFn, func() { _ = db.Close() })
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}

	var loader ports.CorpusLoader = jsonfile.NewLoader(cfg.CorpusPath, slog.Default())
	if cfg.CorpusSource == CorpusSourcePostgres {
		loader = postgres.NewJobRepository(db)
	}
	records, err := loader.LoadCorpus(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	app.Corpus = domain.NewCorpus(records)
	slog.Info("corpus_ready", "source", cfg.CorpusSource, "records", app.Corpus.Len())

	executor := resilience.NewExecutor(ResilienceConfig(cfg))
	if opts.Metrics != nil {
		executor = executor.WithHooks(resilience.Hooks{
			OnRetry:       opts.Metrics.RecordRetry,
			OnStateChange: opts.Metrics.RecordBreakerTransition,
		})
	}

	embedder, summarizer, err := buildModels(cfg, executor)
	if err != nil {
		return nil, err
	}
	if opts.Metrics != nil {
		summarizer = opts.Metrics.InstrumentSummarizer(summarizer)
	}

	index, err := app.buildIndex(ctx, cfg, executor, embedder, opts.IndexIfStale)
	if err != nil {
		return nil, err
	}
	// Reindex runs re-read the corpus so imports made after startup are embedded.
	app.IndexUC = app.indexUseCase(cfg, embedder, index).WithLoader(loader)
	if memIndex, isFlat := index.(*flat.Index); isFlat {
		app.IndexUC = &persistingIndexer{next: app.IndexUC, index: memIndex, path: cfg.VectorIndexPath}
	}

	profiles, err := app.buildProfileStore(cfg, db)
	if err != nil {
		return nil, err
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	interpreter := usecase.NewQueryInterpreter(searchRules)
	candidates := usecase.NewVectorCandidateSource(embedder, index, app.Corpus, cfg.RetrievalTimeout())
	ranker := usecase.NewRanker(cfg.RankingStrategy, searchRules, interpreter.ExtractCities)

	var observer ports.SearchObserver
	if opts.Metrics != nil {
		observer = opts.Metrics
	}
	searchUC := usecase.NewJobSearchUseCase(
		interpreter,
		candidates,
		app.Corpus,
		usecase.DefaultFilterChain(),
		ranker,
		observer,
		usecase.SearchOptions{
			DefaultBudget: cfg.SearchDefaultBudget,
			MaxBudget:     cfg.SearchMaxBudget,
			CandidatePool: cfg.SearchCandidatePool,
		},
	)

	app.Interpreter = interpreter
	app.SearchUC = searchUC
	app.ChatUC = usecase.NewJobChatUseCase(searchUC, candidates, summarizer, profiles, app.Corpus, usecase.ChatLimits{
		AgentBudget:     cfg.SearchDefaultBudget,
		SummaryMaxJobs:  cfg.SummaryMaxJobs,
		BasicMaxResults: cfg.BasicChatMaxResults,
	})
	app.ProfileUC = usecase.NewProfileUseCase(profiles, storage, resume.NewExtractor(storage), interpreter)
	app.BrowseUC = usecase.NewCorpusBrowser(app.Corpus)

	if opts.ConnectQueue {
		queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSReindexSubject, nats.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		app.closeFn = append(app.closeFn, queue.Close)
		app.Queue = queue
		app.ReindexUC = usecase.NewReindexUseCase(queue)
	}

	ok = true
	return app, nil
}

func (a *App) Close() {
	for i := len(a.closeFn) - 1; i >= 0; i-- {
		a.closeFn[i]()
	}
	a.closeFn = nil
}

func ResilienceConfig(cfg config.Config) resilience.Config {
	return resilience.Config{
		RetryMaxAttempts:    cfg.RetryMaxAttempts,
		RetryInitialBackoff: time.Duration(cfg.RetryInitialBackoffMillis) * time.Millisecond,
		RetryMaxBackoff:     time.Duration(cfg.RetryMaxBackoffMillis) * time.Millisecond,
		RetryMultiplier:     2.0,

		BreakerEnabled:          cfg.BreakerEnabled,
		BreakerMinRequests:      uint32(max(cfg.BreakerMinRequests, 0)),
		BreakerFailureRatio:     cfg.BreakerFailureRatio,
		BreakerOpenTimeout:      time.Duration(cfg.BreakerOpenTimeoutSeconds) * time.Second,
		BreakerHalfOpenMaxCalls: 2,
	}
}

func buildModels(cfg config.Config, executor *resilience.Executor) (ports.Embedder, ports.Summarizer, error) {
	openaiCfg := openai.Config{
		BaseURL:    cfg.OpenAIBaseURL,
		APIKey:     cfg.OpenAIAPIKey,
		ChatModel:  cfg.OpenAIChatModel,
		EmbedModel: cfg.OpenAIEmbedModel,
	}
	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, ollama.WithExecutor(executor))

	var embedder ports.Embedder
	switch cfg.EmbedderProvider {
	case ProviderOllama:
		embedder = ollama.NewEmbedder(ollamaClient)
	case ProviderOpenAI:
		e, err := openai.NewEmbedder(openaiCfg, executor)
		if err != nil {
			return nil, nil, fmt.Errorf("init openai embedder: %w", err)
		}
		embedder = e
	default:
		return nil, nil, fmt.Errorf("unknown embedder provider %q", cfg.EmbedderProvider)
	}

	var summarizer ports.Summarizer
	switch cfg.SummarizerProvider {
	case ProviderOllama:
		summarizer = ollama.NewSummarizer(ollamaClient)
	case ProviderOpenAI:
		s, err := openai.NewSummarizer(openaiCfg, executor)
		if err != nil {
			return nil, nil, fmt.Errorf("init openai summarizer: %w", err)
		}
		summarizer = s
	default:
		return nil, nil, fmt.Errorf("unknown summarizer provider %q", cfg.SummarizerProvider)
	}
	return embedder, summarizer, nil
}

func (a *App) buildIndex(
	ctx context.Context,
	cfg config.Config,
	executor *resilience.Executor,
	embedder ports.Embedder,
	indexIfStale bool,
) (ports.VectorIndex, error) {
	switch cfg.VectorBackend {
	case VectorBackendQdrant:
		return qdrant.New(cfg.QdrantURL, cfg.QdrantCollection, executor), nil
	case VectorBackendMemory:
	default:
		return nil, fmt.Errorf("unknown vector backend %q", cfg.VectorBackend)
	}

	index, err := flat.Load(cfg.VectorIndexPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load vector index: %w", err)
	}
	if !indexIfStale || index.Len() == a.Corpus.Len() || a.Corpus.Len() == 0 {
		return index, nil
	}

	slog.Info("vector_index_stale", "indexed", index.Len(), "corpus", a.Corpus.Len())
	fresh := flat.New()
	indexed, err := a.indexUseCase(cfg, embedder, fresh).IndexCorpus(ctx)
	if err != nil {
		return nil, fmt.Errorf("build vector index: %w", err)
	}
	if err := fresh.Save(cfg.VectorIndexPath); err != nil {
		slog.Warn("vector_index_save_failed", "path", cfg.VectorIndexPath, "error", err)
	}
	slog.Info("vector_index_built", "records", indexed)
	return fresh, nil
}

func (a *App) indexUseCase(cfg config.Config, embedder ports.Embedder, index ports.VectorIndex) *usecase.IndexCorpusUseCase {
	return usecase.NewIndexCorpusUseCase(a.Corpus, embedder, index, usecase.IndexOptions{
		BatchSize:   cfg.IndexBatchSize,
		Concurrency: cfg.IndexConcurrency,
	})
}

func (a *App) buildProfileStore(cfg config.Config, db *sql.DB) (ports.ProfileStore, error) {
	if cfg.ProfileStore == ProfileStorePostgres {
		return postgres.NewProfileRepository(db), nil
	}
	store, err := badger.Open(cfg.BadgerPath)
	if err != nil {
		return nil, fmt.Errorf("open profile store: %w", err)
	}
	a.closeFn = append(a.closeFn, func() { _ = store.Close() })
	return store, nil
}

// persistingIndexer writes the in-memory index to disk after a successful rebuild.
type persistingIndexer struct {
	next  ports.CorpusIndexer
	index *flat.Index
	path  string
}

func (p *persistingIndexer) IndexCorpus(ctx context.Context) (int, error) {
	n, err := p.next.IndexCorpus(ctx)
	if err != nil {
		return n, err
	}
	if err := p.index.Save(p.path); err != nil {
		return n, fmt.Errorf("save vector index: %w", err)
	}
	return n, nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
	"github.com/kirillkom/job-search-assistant/internal/core/ports"
)

const searchSuffix = "developer"

type SearchOptions struct {
	DefaultBudget int
	MaxBudget     int
	CandidatePool int
}

func (o SearchOptions) normalize() SearchOptions {
	if o.DefaultBudget <= 0 {
		o.DefaultBudget = 20
	}
	if o.MaxBudget <= 0 {
		o.MaxBudget = 100
	}
	if o.DefaultBudget > o.MaxBudget {
		o.DefaultBudget = o.MaxBudget
	}
	if o.CandidatePool <= 0 {
		o.CandidatePool = 100
	}
	return o
}

// JobSearchUseCase is the retrieval agent: it interprets the query, picks a
// strategy for its category and runs candidate generation, filtering and ranking.
type JobSearchUseCase struct {
	interpreter ports.QueryInterpreter
	candidates  ports.CandidateSource
	corpus      *domain.Corpus
	filters     FilterChain
	ranker      Ranker
	observer    ports.SearchObserver
	opts        SearchOptions
	logger      *slog.Logger
}

func NewJobSearchUseCase(
	interpreter ports.QueryInterpreter,
	candidates ports.CandidateSource,
	corpus *domain.Corpus,
	filters FilterChain,
	ranker Ranker,
	observer ports.SearchObserver,
	opts SearchOptions,
) *JobSearchUseCase {
	if ranker == nil {
		ranker = OrderPreservingFilter{}
	}
	if observer == nil {
		observer = noopSearchObserver{}
	}
	return &JobSearchUseCase{
		interpreter: interpreter,
		candidates:  candidates,
		corpus:      corpus,
		filters:     filters,
		ranker:      ranker,
		observer:    observer,
		opts:        opts.normalize(),
		logger:      slog.Default().With("component", "job_search"),
	}
}

func (uc *JobSearchUseCase) RankingStrategy() string {
	return uc.ranker.Name()
}

func (uc *JobSearchUseCase) Search(ctx context.Context, query string, resultBudget int) (*domain.SearchResult, error) {
	start := time.Now()
	budget := uc.budget(resultBudget)
	intent := uc.interpreter.Analyze(query)

	var (
		records    []domain.JobRecord
		candidates int
		strategy   string
		err        error
	)

	switch intent.Category {
	case domain.CategoryGeneralBrowse:
		strategy = domain.StrategyBrowse
		records = uc.corpus.Head(budget)
		candidates = len(records)
	case domain.CategoryComparison:
		strategy = domain.StrategyComparison
		records, err = uc.candidates.Search(ctx, intent.OriginalQuery, min(budget, uc.corpus.Len()))
		candidates = len(records)
	default:
		strategy = domain.StrategyMultiStep
		records, candidates, err = uc.multiStepSearch(ctx, intent, budget)
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			uc.observer.ObserveRetrievalFailure(strategy)
		}
		return nil, fmt.Errorf("search jobs: %w", err)
	}
	if records == nil {
		records = []domain.JobRecord{}
	}

	uc.observer.ObserveSearch(intent.Category, strategy, candidates, len(records))
	uc.logger.Info("job_search",
		"category", intent.Category,
		"strategy", strategy,
		"ranking", uc.ranker.Name(),
		"candidates", candidates,
		"results", len(records),
		"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
	)

	return &domain.SearchResult{
		Records:      records,
		Intent:       intent,
		TotalMatches: len(records),
		Strategy:     strategy,
		Candidates:   candidates,
	}, nil
}

// multiStepSearch over-fetches candidates because the filters only ever remove records.
func (uc *JobSearchUseCase) multiStepSearch(ctx context.Context, intent domain.SearchIntent, budget int) ([]domain.JobRecord, int, error) {
	k := min(uc.opts.CandidatePool, uc.corpus.Len())
	candidates, err := uc.candidates.Search(ctx, buildSearchText(intent), k)
	if err != nil {
		return nil, 0, err
	}

	filtered := uc.filters.Apply(candidates, intent, uc.observeStage)
	ranked := uc.ranker.Rank(filtered, intent)
	return trimRecords(ranked, budget), len(candidates), nil
}

func (uc *JobSearchUseCase) observeStage(stage string, before, after int) {
	uc.observer.ObserveStage(stage, before, after)
	uc.logger.Debug("filter_stage", "stage", stage, "before", before, "after", after)
}

func (uc *JobSearchUseCase) budget(requested int) int {
	if requested <= 0 {
		return uc.opts.DefaultBudget
	}
	if requested > uc.opts.MaxBudget {
		return uc.opts.MaxBudget
	}
	return requested
}

func buildSearchText(intent domain.SearchIntent) string {
	if len(intent.Skills) == 0 {
		return intent.OriginalQuery
	}
	return strings.Join(intent.Skills, " ") + " " + searchSuffix
}

func trimRecords(records []domain.JobRecord, limit int) []domain.JobRecord {
	if limit < 0 || len(records) <= limit {
		return records
	}
	return records[:limit]
}

type noopSearchObserver struct{}

func (noopSearchObserver) ObserveSearch(domain.QueryCategory, string, int, int) {}
func (noopSearchObserver) ObserveRetrievalFailure(string)                       {}
func (noopSearchObserver) ObserveStage(string, int, int)                        {}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
	"github.com/kirillkom/job-search-assistant/internal/core/ports"
)

const (
	embeddingTechLimit        = 5
	embeddingDescriptionRunes = 200
	noDescriptionText         = "No description available"
)

type IndexOptions struct {
	BatchSize   int
	Concurrency int
}

// IndexCorpusUseCase embeds every corpus record and writes the vectors at the
// record's corpus position, keeping index ids aligned with the snapshot.
// Vectors past the end of the corpus are dropped on every run.
type IndexCorpusUseCase struct {
	corpus   *domain.Corpus
	loader   ports.CorpusLoader
	embedder ports.Embedder
	index    ports.VectorIndex
	opts     IndexOptions
}

func NewIndexCorpusUseCase(
	corpus *domain.Corpus,
	embedder ports.Embedder,
	index ports.VectorIndex,
	opts IndexOptions,
) *IndexCorpusUseCase {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 32
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &IndexCorpusUseCase{
		corpus:   corpus,
		embedder: embedder,
		index:    index,
		opts:     opts,
	}
}

// WithLoader makes every run re-read the corpus from loader instead of
// indexing the snapshot taken at construction.
func (uc *IndexCorpusUseCase) WithLoader(loader ports.CorpusLoader) *IndexCorpusUseCase {
	uc.loader = loader
	return uc
}

func (uc *IndexCorpusUseCase) IndexCorpus(ctx context.Context) (int, error) {
	corpus, err := uc.currentCorpus(ctx)
	if err != nil {
		return 0, err
	}
	total := corpus.Len()
	if total == 0 {
		return 0, domain.WrapError(domain.ErrCorpusEmpty, "index corpus", errors.New("no records to index"))
	}
	start := time.Now()

	texts := make([]string, 0, total)
	corpus.Range(func(_ int, rec domain.JobRecord) bool {
		texts = append(texts, EmbeddingText(rec))
		return true
	})

	if err := uc.index.Truncate(ctx, total); err != nil {
		return 0, fmt.Errorf("truncate vectors at %d: %w", total, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.opts.Concurrency)
	for offset := 0; offset < total; offset += uc.opts.BatchSize {
		offset := offset
		end := min(offset+uc.opts.BatchSize, total)
		g.Go(func() error {
			return uc.indexBatch(gctx, offset, texts[offset:end])
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	slog.Info("corpus_indexed",
		"records", total,
		"batch_size", uc.opts.BatchSize,
		"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
	)
	return total, nil
}

func (uc *IndexCorpusUseCase) currentCorpus(ctx context.Context) (*domain.Corpus, error) {
	if uc.loader == nil {
		return uc.corpus, nil
	}
	records, err := uc.loader.LoadCorpus(ctx)
	if err != nil {
		return nil, fmt.Errorf("reload corpus: %w", err)
	}
	return domain.NewCorpus(records), nil
}

func (uc *IndexCorpusUseCase) indexBatch(ctx context.Context, offset int, texts []string) error {
	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed records %d..%d: %w", offset, offset+len(texts)-1, err)
	}
	if len(vectors) != len(texts) {
		return domain.WrapError(
			domain.ErrInvalidInput,
			"embed records",
			fmt.Errorf("vectors/records mismatch: %d/%d", len(vectors), len(texts)),
		)
	}
	if err := uc.index.Upsert(ctx, offset, vectors); err != nil {
		return fmt.Errorf("upsert vectors at %d: %w", offset, err)
	}
	return nil
}

// EmbeddingText is the condensed form of a record that gets embedded:
// title, company, salary, the first few technologies and the start of the description.
func EmbeddingText(rec domain.JobRecord) string {
	tech := rec.TechStack
	if len(tech) > embeddingTechLimit {
		tech = tech[:embeddingTechLimit]
	}
	description := truncateRunes(rec.Description, embeddingDescriptionRunes)
	if description == "" {
		description = noDescriptionText
	}
	return strings.Join([]string{
		rec.Title,
		rec.Company,
		rec.Salary,
		strings.Join(tech, ", "),
		description,
	}, " | ")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

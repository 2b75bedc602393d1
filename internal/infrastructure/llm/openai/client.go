// Package openai talks to OpenAI-compatible APIs through langchaingo.
package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
	"github.com/kirillkom/job-search-assistant/internal/infrastructure/llm/prompt"
	"github.com/kirillkom/job-search-assistant/internal/infrastructure/resilience"
)

type Config struct {
	BaseURL    string
	APIKey     string
	ChatModel  string
	EmbedModel string
}

func (c Config) options() []lcopenai.Option {
	token := strings.TrimSpace(c.APIKey)
	if token == "" {
		// Local OpenAI-compatible servers accept any token.
		token = "none"
	}
	opts := []lcopenai.Option{
		lcopenai.WithToken(token),
		lcopenai.WithModel(c.ChatModel),
		lcopenai.WithEmbeddingModel(c.EmbedModel),
	}
	if base := strings.TrimSpace(c.BaseURL); base != "" {
		opts = append(opts, lcopenai.WithBaseURL(strings.TrimRight(base, "/")))
	}
	return opts
}

type Embedder struct {
	embedder embeddings.Embedder
	executor *resilience.Executor
}

func NewEmbedder(cfg Config, executor *resilience.Executor) (*Embedder, error) {
	client, err := lcopenai.New(cfg.options()...)
	if err != nil {
		return nil, fmt.Errorf("create openai embedding client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("create openai embedder: %w", err)
	}
	return &Embedder{embedder: embedder, executor: executor}, nil
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := resilience.Do(ctx, e.executor, "openai.embed", func(ctx context.Context) ([][]float32, error) {
		return e.embedder.EmbedDocuments(ctx, texts)
	}, resilience.ClassifyHTTPError)
	if err != nil {
		return nil, resilience.WrapTemporary("openai embed", fmt.Errorf("openai embed: %w", err), nil)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("openai embed: got %d vectors for %d inputs", len(vectors), len(texts))
	}
	return vectors, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vector, err := resilience.Do(ctx, e.executor, "openai.embed", func(ctx context.Context) ([]float32, error) {
		return e.embedder.EmbedQuery(ctx, text)
	}, resilience.ClassifyHTTPError)
	if err != nil {
		return nil, resilience.WrapTemporary("openai embed", fmt.Errorf("openai embed query: %w", err), nil)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vector, nil
}

type Summarizer struct {
	model    llms.Model
	executor *resilience.Executor
	logger   *slog.Logger
}

func NewSummarizer(cfg Config, executor *resilience.Executor) (*Summarizer, error) {
	client, err := lcopenai.New(cfg.options()...)
	if err != nil {
		return nil, fmt.Errorf("create openai chat client: %w", err)
	}
	return &Summarizer{
		model:    client,
		executor: executor,
		logger:   slog.Default().With("component", "openai_summarizer"),
	}, nil
}

func (s *Summarizer) Summarize(ctx context.Context, req domain.SummaryRequest) (string, error) {
	msgs := prompt.Summary(req)
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, msgs.System),
		llms.TextParts(llms.ChatMessageTypeHuman, msgs.User),
	}

	response, err := resilience.Do(ctx, s.executor, "openai.chat", func(ctx context.Context) (*llms.ContentResponse, error) {
		return s.model.GenerateContent(ctx, content)
	}, resilience.ClassifyHTTPError)
	if err != nil {
		return "", resilience.WrapTemporary("openai chat", fmt.Errorf("openai chat: %w", err), nil)
	}
	if len(response.Choices) == 0 {
		s.logger.Warn("summary_without_choices", "jobs", len(req.Jobs))
		return "", fmt.Errorf("openai chat: no choices returned")
	}
	return strings.TrimSpace(response.Choices[0].Content), nil
}

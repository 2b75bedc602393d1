package ports

import (
	"context"
	"io"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
)

// QueryInterpreter turns free text into a structured search intent. It never fails.
type QueryInterpreter interface {
	Analyze(query string) domain.SearchIntent
}

// JobSearchService is the inbound contract of the retrieval orchestrator.
type JobSearchService interface {
	Search(ctx context.Context, query string, resultBudget int) (*domain.SearchResult, error)
}

// JobChatService answers chat-style requests on top of search and summarization.
type JobChatService interface {
	AgentChat(ctx context.Context, req AgentChatRequest) (*domain.Summary, error)
	BasicChat(ctx context.Context, req BasicChatRequest) (*domain.Summary, error)
}

type AgentChatRequest struct {
	Message      string
	UserID       string
	UserMemory   string
	UseSummary   bool
	ResultBudget int
}

type BasicChatRequest struct {
	Message    string
	UserID     string
	UserMemory string
	ReturnAll  bool
}

// CorpusBrowser exposes paginated read access to the corpus.
type CorpusBrowser interface {
	Browse(page, limit int, term string) domain.BrowsePage
	Size() int
}

// ProfileService manages user preferences.
type ProfileService interface {
	Save(ctx context.Context, profile domain.UserProfile) (*domain.UserProfile, error)
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)
	ImportResume(ctx context.Context, userID, filename string, body io.Reader) (*domain.UserProfile, error)
	Count(ctx context.Context) (int, error)
}

// CorpusIndexer rebuilds the vector index from the corpus.
type CorpusIndexer interface {
	IndexCorpus(ctx context.Context) (int, error)
}

// ReindexRequester asks the worker fleet to rebuild the index.
type ReindexRequester interface {
	RequestReindex(ctx context.Context, reason string) error
}

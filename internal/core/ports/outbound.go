package ports

import (
	"context"
	"io"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
)

// Embedder builds vectors for corpus records and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex performs nearest-neighbour search over record vectors. Hits are
// returned closest first; Upsert and Truncate are used by offline indexing only.
type VectorIndex interface {
	Search(ctx context.Context, vector []float32, k int) ([]domain.VectorHit, error)
	Upsert(ctx context.Context, startIndex int, vectors [][]float32) error
	// Truncate drops every vector whose position is size or greater.
	Truncate(ctx context.Context, size int) error
}

// CandidateSource returns records similar to text without enforcing structured constraints.
type CandidateSource interface {
	Search(ctx context.Context, text string, k int) ([]domain.JobRecord, error)
}

// Summarizer presents a result set in natural language.
type Summarizer interface {
	Summarize(ctx context.Context, req domain.SummaryRequest) (string, error)
}

// CorpusLoader materializes the job corpus at process start.
type CorpusLoader interface {
	LoadCorpus(ctx context.Context) ([]domain.JobRecord, error)
}

// ProfileStore persists user profiles.
type ProfileStore interface {
	SaveProfile(ctx context.Context, profile *domain.UserProfile) error
	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
	CountProfiles(ctx context.Context) (int, error)
}

// ObjectStorage stores uploaded resumes.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// ResumeExtractor extracts plain text from a stored resume.
type ResumeExtractor interface {
	Extract(ctx context.Context, key string) (string, error)
}

// MessageQueue publishes/consumes reindex events.
type MessageQueue interface {
	PublishReindex(ctx context.Context, reason string) error
	SubscribeReindex(ctx context.Context, handler func(context.Context, string) error) error
}

// SearchObserver receives per-search telemetry.
type SearchObserver interface {
	ObserveSearch(category domain.QueryCategory, strategy string, candidates, results int)
	ObserveRetrievalFailure(operation string)
	ObserveStage(stage string, before, after int)
}

package usecase

import (
	"context"
	"time"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
	"github.com/kirillkom/job-search-assistant/internal/core/ports"
)

// VectorCandidateSource embeds the query text once, asks the vector index for
// the k closest records and resolves them against the corpus snapshot.
type VectorCandidateSource struct {
	embedder ports.Embedder
	index    ports.VectorIndex
	corpus   *domain.Corpus
	timeout  time.Duration
}

func NewVectorCandidateSource(
	embedder ports.Embedder,
	index ports.VectorIndex,
	corpus *domain.Corpus,
	timeout time.Duration,
) *VectorCandidateSource {
	return &VectorCandidateSource{
		embedder: embedder,
		index:    index,
		corpus:   corpus,
		timeout:  timeout,
	}
}

func (s *VectorCandidateSource) Search(ctx context.Context, text string, k int) ([]domain.JobRecord, error) {
	if k <= 0 {
		return []domain.JobRecord{}, nil
	}
	callerCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	vector, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, retrievalError(callerCtx, "embed query", err)
	}

	hits, err := s.index.Search(ctx, vector, k)
	if err != nil {
		return nil, retrievalError(callerCtx, "vector index search", err)
	}

	out := make([]domain.JobRecord, 0, len(hits))
	for _, hit := range hits {
		if len(out) == k {
			break
		}
		// Hits pointing outside the snapshot come from a stale index and are skipped.
		rec, ok := s.corpus.At(hit.RecordIndex)
		if !ok {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// retrievalError reports a caller cancellation as is. Everything else,
// including the retrieval timeout, means the backends are unavailable.
func retrievalError(callerCtx context.Context, op string, err error) error {
	if ctxErr := callerCtx.Err(); ctxErr != nil {
		return ctxErr
	}
	return domain.WrapError(domain.ErrRetrievalUnavailable, op, err)
}

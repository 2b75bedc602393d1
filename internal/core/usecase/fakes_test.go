package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
	"github.com/kirillkom/job-search-assistant/internal/core/ports"
)

func testRules() domain.SearchRules {
	return domain.SearchRules{
		Skills: []string{
			"python", "javascript", "typescript", "java", "c++", "c#", "ruby", "go", "golang", "rust",
			"php", "swift", "kotlin", "scala", "react", "angular", "vue", "node", "nodejs", "django",
			"flask", "spring", "aws", "azure", "gcp", "docker", "kubernetes", "k8s", "sql", "postgresql",
			"mysql", "mongodb", "redis", "elasticsearch", "machine learning", "ml", "ai", "data science", "devops",
		},
		Cities: []string{
			"london", "manchester", "birmingham", "leeds", "glasgow",
			"liverpool", "edinburgh", "bristol", "cardiff", "belfast",
		},
		Ranking: domain.RankingWeights{
			LocationMatch:     100,
			PenalizedLocation: "london",
			Penalty:           50,
			TechMatch:         10,
			TitleWord:         5,
			CompanyWord:       3,
		},
	}
}

// fakeCandidates returns the configured records in order, capped at k.
type fakeCandidates struct {
	records []domain.JobRecord
	err     error

	calls []candidateCall
}

type candidateCall struct {
	text string
	k    int
}

func (f *fakeCandidates) Search(_ context.Context, text string, k int) ([]domain.JobRecord, error) {
	f.calls = append(f.calls, candidateCall{text: text, k: k})
	if f.err != nil {
		return nil, f.err
	}
	if k > len(f.records) {
		k = len(f.records)
	}
	out := make([]domain.JobRecord, k)
	copy(out, f.records[:k])
	return out, nil
}

type stageEvent struct {
	stage         string
	before, after int
}

type recordingObserver struct {
	searches []domain.QueryCategory
	failures []string
	stages   []stageEvent
}

func (o *recordingObserver) ObserveSearch(category domain.QueryCategory, _ string, _, _ int) {
	o.searches = append(o.searches, category)
}

func (o *recordingObserver) ObserveRetrievalFailure(op string) {
	o.failures = append(o.failures, op)
}

func (o *recordingObserver) ObserveStage(stage string, before, after int) {
	o.stages = append(o.stages, stageEvent{stage: stage, before: before, after: after})
}

type fakeEmbedder struct {
	mu      sync.Mutex
	err     error
	batches [][]string
	dim     int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.batches = append(f.batches, append([]string(nil), texts...))
	dim := f.dim
	if dim == 0 {
		dim = 2
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, dim)
		vec[0] = float32(len(text))
		out[i] = vec
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

type fakeIndex struct {
	mu        sync.Mutex
	hits      []domain.VectorHit
	err       error
	upserts   map[int]int
	lastK     int
	truncated []int
	truncErr  error
}

func (f *fakeIndex) Search(_ context.Context, _ []float32, k int) ([]domain.VectorHit, error) {
	f.lastK = k
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

func (f *fakeIndex) Truncate(_ context.Context, size int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.truncated = append(f.truncated, size)
	return f.truncErr
}

func (f *fakeIndex) Upsert(_ context.Context, startIndex int, vectors [][]float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.upserts == nil {
		f.upserts = make(map[int]int)
	}
	f.upserts[startIndex] = len(vectors)
	return nil
}

type fakeSummarizer struct {
	answer string
	err    error
	calls  []domain.SummaryRequest
}

func (f *fakeSummarizer) Summarize(_ context.Context, req domain.SummaryRequest) (string, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type fakeProfileStore struct {
	profiles map[string]domain.UserProfile
	err      error
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{profiles: make(map[string]domain.UserProfile)}
}

func (f *fakeProfileStore) SaveProfile(_ context.Context, profile *domain.UserProfile) error {
	if f.err != nil {
		return f.err
	}
	f.profiles[profile.UserID] = *profile
	return nil
}

func (f *fakeProfileStore) GetProfile(_ context.Context, userID string) (*domain.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	profile, ok := f.profiles[userID]
	if !ok {
		return nil, domain.WrapError(domain.ErrProfileNotFound, "get profile", errors.New(userID))
	}
	return &profile, nil
}

func (f *fakeProfileStore) CountProfiles(context.Context) (int, error) {
	return len(f.profiles), f.err
}

type fakeObjectStorage struct {
	files map[string][]byte
}

func (f *fakeObjectStorage) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if f.files == nil {
		f.files = make(map[string][]byte)
	}
	f.files[key] = raw
	return nil
}

func (f *fakeObjectStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := f.files[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

// textExtractor reads stored bytes back as text.
type textExtractor struct {
	storage ports.ObjectStorage
}

func (e textExtractor) Extract(ctx context.Context, key string) (string, error) {
	rc, err := e.storage.Open(ctx, key)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

type fakeQueue struct {
	published []string
	err       error
}

func (f *fakeQueue) PublishReindex(_ context.Context, reason string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, reason)
	return nil
}

func (f *fakeQueue) SubscribeReindex(context.Context, func(context.Context, string) error) error {
	return nil
}

func intPtr(v int) *int {
	return &v
}

package httpadapter

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/kirillkom/job-search-assistant/internal/config"
	"github.com/kirillkom/job-search-assistant/internal/core/domain"
	"github.com/kirillkom/job-search-assistant/internal/core/ports"
)

type searchFake struct {
	result     *domain.SearchResult
	err        error
	lastQuery  string
	lastBudget int
}

func (f *searchFake) Search(_ context.Context, query string, budget int) (*domain.SearchResult, error) {
	f.lastQuery, f.lastBudget = query, budget
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &domain.SearchResult{
		Records:      []domain.JobRecord{{Title: "Go Engineer", Company: "Acme", TechStack: []string{"Go", "Kubernetes"}}},
		Intent:       domain.SearchIntent{Skills: []string{"Go"}, Category: domain.CategorySkillSearch, OriginalQuery: query},
		TotalMatches: 1,
		Strategy:     domain.StrategyMultiStep,
	}, nil
}

type chatFake struct {
	lastAgent ports.AgentChatRequest
	lastBasic ports.BasicChatRequest
	err       error
}

func (f *chatFake) AgentChat(_ context.Context, req ports.AgentChatRequest) (*domain.Summary, error) {
	f.lastAgent = req
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Summary{Jobs: []domain.JobRecord{}, Mode: domain.ModeAgentFast}, nil
}

func (f *chatFake) BasicChat(_ context.Context, req ports.BasicChatRequest) (*domain.Summary, error) {
	f.lastBasic = req
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Summary{Jobs: []domain.JobRecord{}, Mode: domain.ModeFast}, nil
}

type browseFake struct {
	page, limit int
	term        string
}

func (f *browseFake) Browse(page, limit int, term string) domain.BrowsePage {
	f.page, f.limit, f.term = page, limit, term
	return domain.BrowsePage{Results: []domain.JobRecord{}, Page: max(page, 1), Limit: limit}
}

func (f *browseFake) Size() int { return 42 }

type profilesFake struct {
	saved        domain.UserProfile
	lastUserID   string
	lastFilename string
	resumeBody   string
	err          error
}

func (f *profilesFake) Save(_ context.Context, p domain.UserProfile) (*domain.UserProfile, error) {
	f.saved = p
	if f.err != nil {
		return nil, f.err
	}
	return &p, nil
}

func (f *profilesFake) Get(_ context.Context, userID string) (*domain.UserProfile, error) {
	f.lastUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return &domain.UserProfile{UserID: userID, Preferences: domain.ProfilePreferences{TechStack: []string{}}}, nil
}

func (f *profilesFake) ImportResume(_ context.Context, userID, filename string, body io.Reader) (*domain.UserProfile, error) {
	f.lastUserID, f.lastFilename = userID, filename
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	f.resumeBody = string(raw)
	return &domain.UserProfile{UserID: userID, Preferences: domain.ProfilePreferences{TechStack: []string{"Go"}}}, nil
}

func (f *profilesFake) Count(context.Context) (int, error) { return 3, f.err }

type reindexFake struct {
	reason string
	err    error
}

func (f *reindexFake) RequestReindex(_ context.Context, reason string) error {
	f.reason = reason
	return f.err
}

type testServices struct {
	search   *searchFake
	chat     *chatFake
	browse   *browseFake
	profiles *profilesFake
	reindex  *reindexFake
}

func newTestServices() *testServices {
	return &testServices{
		search:   &searchFake{},
		chat:     &chatFake{},
		browse:   &browseFake{},
		profiles: &profilesFake{},
		reindex:  &reindexFake{},
	}
}

func (s *testServices) services() Services {
	return Services{
		Search:          s.search,
		Chat:            s.chat,
		Browse:          s.browse,
		Profiles:        s.profiles,
		Reindex:         s.reindex,
		RankingStrategy: "order",
	}
}

func newTestHandler(t *testing.T, cfg config.Config, svc Services) http.Handler {
	t.Helper()
	handler, err := NewRouter(cfg, svc, nil).Handler()
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	return handler
}

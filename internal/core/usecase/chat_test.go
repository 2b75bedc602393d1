package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
	"github.com/kirillkom/job-search-assistant/internal/core/ports"
)

func manyRecords(n int) []domain.JobRecord {
	out := make([]domain.JobRecord, n)
	for i := range out {
		out[i] = domain.JobRecord{
			Title:     "Python Engineer",
			Company:   "Acme",
			Salary:    "£70,000",
			Location:  "London",
			TechStack: []string{"Python"},
		}
	}
	return out
}

func newTestChat(records []domain.JobRecord, summarizer *fakeSummarizer, profiles *fakeProfileStore) (*JobChatUseCase, *fakeCandidates) {
	candidates := &fakeCandidates{records: records}
	search := newTestSearch(records, candidates, RankingOrder, nil)
	var store ports.ProfileStore
	if profiles != nil {
		store = profiles
	}
	return NewJobChatUseCase(search, candidates, summarizer, store, domain.NewCorpus(records), ChatLimits{}), candidates
}

func TestAgentChatWithoutSummaryReturnsFastMode(t *testing.T) {
	summarizer := &fakeSummarizer{answer: "unused"}
	uc, _ := newTestChat(scenarioCorpus(), summarizer, nil)

	out, err := uc.AgentChat(context.Background(), ports.AgentChatRequest{Message: "python jobs", UseSummary: false})
	if err != nil {
		t.Fatalf("AgentChat() error = %v", err)
	}
	if out.Mode != domain.ModeAgentFast || out.Answer != nil {
		t.Fatalf("unexpected fast response: %+v", out)
	}
	if out.ParsedQuery == nil || out.ParsedQuery.Skills[0] != "Python" {
		t.Fatalf("expected parsed query, got %+v", out.ParsedQuery)
	}
	if len(summarizer.calls) != 0 {
		t.Fatalf("summarizer must not be called")
	}
}

func TestAgentChatZeroMatchesUsesFixedAnswer(t *testing.T) {
	summarizer := &fakeSummarizer{answer: "unused"}
	uc, _ := newTestChat(scenarioCorpus(), summarizer, nil)

	out, err := uc.AgentChat(context.Background(), ports.AgentChatRequest{
		Message:    "Remote machine learning jobs between £70k and £90k",
		UseSummary: true,
	})
	if err != nil {
		t.Fatalf("AgentChat() error = %v", err)
	}
	if out.Answer == nil || *out.Answer != noMatchesAnswer {
		t.Fatalf("expected fixed answer, got %+v", out.Answer)
	}
	if out.TotalMatches != 0 || out.Mode != domain.ModeAgentSummary {
		t.Fatalf("unexpected response: %+v", out)
	}
	if len(summarizer.calls) != 0 {
		t.Fatalf("summarizer must not be called for empty results")
	}
}

func TestAgentChatSummarizesTopJobsWithStoredProfile(t *testing.T) {
	summarizer := &fakeSummarizer{answer: "three great roles"}
	profiles := newFakeProfileStore()
	profiles.profiles["u1"] = domain.UserProfile{
		UserID:      "u1",
		Preferences: domain.ProfilePreferences{TechStack: []string{"Go"}, SalaryMin: intPtr(65000)},
	}
	uc, _ := newTestChat(manyRecords(15), summarizer, profiles)

	out, err := uc.AgentChat(context.Background(), ports.AgentChatRequest{
		Message:    "python jobs in london",
		UserID:     "u1",
		UseSummary: true,
	})
	if err != nil {
		t.Fatalf("AgentChat() error = %v", err)
	}
	if out.Answer == nil || *out.Answer != "three great roles" {
		t.Fatalf("unexpected answer: %+v", out.Answer)
	}
	if len(out.Jobs) != 15 || out.TotalMatches != 15 {
		t.Fatalf("expected all 15 jobs returned, got %d", len(out.Jobs))
	}
	if len(summarizer.calls) != 1 {
		t.Fatalf("expected one summarizer call, got %d", len(summarizer.calls))
	}
	call := summarizer.calls[0]
	if len(call.Jobs) != 10 {
		t.Fatalf("expected top 10 jobs summarized, got %d", len(call.Jobs))
	}
	if call.Intent == nil || call.Intent.Location != "London" {
		t.Fatalf("expected intent passed to summarizer, got %+v", call.Intent)
	}
	if !strings.Contains(call.UserMemory, "Preferred tech stack: Go") || !strings.Contains(call.UserMemory, "£65,000") {
		t.Fatalf("unexpected user memory: %q", call.UserMemory)
	}
	if call.CorpusSize != 15 {
		t.Fatalf("expected corpus size 15, got %d", call.CorpusSize)
	}
}

func TestAgentChatSuppliedMemoryWins(t *testing.T) {
	summarizer := &fakeSummarizer{answer: "ok"}
	profiles := newFakeProfileStore()
	profiles.profiles["u1"] = domain.UserProfile{UserID: "u1", Preferences: domain.ProfilePreferences{Notes: "stored"}}
	uc, _ := newTestChat(manyRecords(2), summarizer, profiles)

	_, err := uc.AgentChat(context.Background(), ports.AgentChatRequest{
		Message:    "python",
		UserID:     "u1",
		UserMemory: "prefers startups",
		UseSummary: true,
	})
	if err != nil {
		t.Fatalf("AgentChat() error = %v", err)
	}
	if summarizer.calls[0].UserMemory != "prefers startups" {
		t.Fatalf("expected supplied memory, got %q", summarizer.calls[0].UserMemory)
	}
}

func TestAgentChatRejectsEmptyMessage(t *testing.T) {
	uc, _ := newTestChat(scenarioCorpus(), &fakeSummarizer{}, nil)

	_, err := uc.AgentChat(context.Background(), ports.AgentChatRequest{Message: "  "})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestAgentChatSummarizerFailureIsReturned(t *testing.T) {
	uc, _ := newTestChat(manyRecords(3), &fakeSummarizer{err: errors.New("llm down")}, nil)

	_, err := uc.AgentChat(context.Background(), ports.AgentChatRequest{Message: "python", UseSummary: true})
	if err == nil || !strings.Contains(err.Error(), "llm down") {
		t.Fatalf("expected summarizer error, got %v", err)
	}
}

func TestBasicChatReturnAllSkipsSummary(t *testing.T) {
	summarizer := &fakeSummarizer{answer: "unused"}
	uc, candidates := newTestChat(manyRecords(30), summarizer, nil)

	out, err := uc.BasicChat(context.Background(), ports.BasicChatRequest{Message: "python", ReturnAll: true})
	if err != nil {
		t.Fatalf("BasicChat() error = %v", err)
	}
	if out.Mode != domain.ModeFast || out.Answer != nil || out.ParsedQuery != nil {
		t.Fatalf("unexpected response: %+v", out)
	}
	if len(out.Jobs) != 20 || candidates.calls[0].k != 20 || candidates.calls[0].text != "python" {
		t.Fatalf("expected k=min(20, corpus) raw search, got %+v", candidates.calls)
	}
	if len(summarizer.calls) != 0 {
		t.Fatalf("summarizer must not be called")
	}
}

func TestBasicChatSummarizesWithoutIntent(t *testing.T) {
	summarizer := &fakeSummarizer{answer: "summary"}
	uc, _ := newTestChat(manyRecords(4), summarizer, nil)

	out, err := uc.BasicChat(context.Background(), ports.BasicChatRequest{Message: "python", UserMemory: "likes go"})
	if err != nil {
		t.Fatalf("BasicChat() error = %v", err)
	}
	if out.Mode != domain.ModeSummary || out.Answer == nil || *out.Answer != "summary" {
		t.Fatalf("unexpected response: %+v", out)
	}
	if summarizer.calls[0].Intent != nil || len(summarizer.calls[0].Jobs) != 4 {
		t.Fatalf("unexpected summary request: %+v", summarizer.calls[0])
	}
}

func TestRenderProfileMemory(t *testing.T) {
	got := RenderProfileMemory(domain.ProfilePreferences{
		TechStack:    []string{"Go", "Rust"},
		SalaryMin:    intPtr(1250000),
		CompanySize:  "startup",
		VisaRequired: true,
		Notes:        " hybrid only ",
	})
	want := strings.Join([]string{
		"Preferred tech stack: Go, Rust",
		"Minimum salary: £1,250,000",
		"Company size: startup",
		"Needs visa sponsorship: yes",
		"Notes: hybrid only",
	}, "\n")
	if got != want {
		t.Fatalf("RenderProfileMemory() = %q, want %q", got, want)
	}
	if RenderProfileMemory(domain.ProfilePreferences{}) != "" {
		t.Fatalf("expected empty memory for empty preferences")
	}
}

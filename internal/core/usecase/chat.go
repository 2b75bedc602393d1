package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
	"github.com/kirillkom/job-search-assistant/internal/core/ports"
)

const noMatchesAnswer = "I couldn't find any jobs matching your criteria. Try broadening your search parameters."

type ChatLimits struct {
	AgentBudget     int
	SummaryMaxJobs  int
	BasicMaxResults int
}

func (l ChatLimits) normalize() ChatLimits {
	if l.AgentBudget <= 0 {
		l.AgentBudget = 20
	}
	if l.SummaryMaxJobs <= 0 {
		l.SummaryMaxJobs = 10
	}
	if l.BasicMaxResults <= 0 {
		l.BasicMaxResults = 20
	}
	return l
}

// JobChatUseCase wraps search results with an optional language-model summary.
type JobChatUseCase struct {
	search     ports.JobSearchService
	candidates ports.CandidateSource
	summarizer ports.Summarizer
	profiles   ports.ProfileStore
	corpus     *domain.Corpus
	limits     ChatLimits
}

func NewJobChatUseCase(
	search ports.JobSearchService,
	candidates ports.CandidateSource,
	summarizer ports.Summarizer,
	profiles ports.ProfileStore,
	corpus *domain.Corpus,
	limits ChatLimits,
) *JobChatUseCase {
	return &JobChatUseCase{
		search:     search,
		candidates: candidates,
		summarizer: summarizer,
		profiles:   profiles,
		corpus:     corpus,
		limits:     limits.normalize(),
	}
}

func (uc *JobChatUseCase) AgentChat(ctx context.Context, req ports.AgentChatRequest) (*domain.Summary, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "agent chat", fmt.Errorf("message is required"))
	}

	budget := req.ResultBudget
	if budget <= 0 {
		budget = uc.limits.AgentBudget
	}
	result, err := uc.search.Search(ctx, message, budget)
	if err != nil {
		return nil, err
	}

	intent := result.Intent
	out := &domain.Summary{
		Jobs:         result.Records,
		TotalMatches: result.TotalMatches,
		ParsedQuery:  &intent,
		Mode:         domain.ModeAgentFast,
	}
	if !req.UseSummary {
		return out, nil
	}

	out.Mode = domain.ModeAgentSummary
	if len(result.Records) == 0 {
		answer := noMatchesAnswer
		out.Answer = &answer
		return out, nil
	}

	memory, err := uc.userMemory(ctx, req.UserID, req.UserMemory)
	if err != nil {
		return nil, err
	}
	answer, err := uc.summarizer.Summarize(ctx, domain.SummaryRequest{
		Query:      message,
		Intent:     &intent,
		Jobs:       trimRecords(result.Records, uc.limits.SummaryMaxJobs),
		UserMemory: memory,
		CorpusSize: uc.corpus.Len(),
	})
	if err != nil {
		return nil, fmt.Errorf("summarize agent results: %w", err)
	}
	out.Answer = &answer
	return out, nil
}

// BasicChat is plain similarity search without query interpretation or filters.
func (uc *JobChatUseCase) BasicChat(ctx context.Context, req ports.BasicChatRequest) (*domain.Summary, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "basic chat", fmt.Errorf("message is required"))
	}

	jobs, err := uc.candidates.Search(ctx, message, min(uc.limits.BasicMaxResults, uc.corpus.Len()))
	if err != nil {
		return nil, fmt.Errorf("basic chat search: %w", err)
	}
	if jobs == nil {
		jobs = []domain.JobRecord{}
	}

	out := &domain.Summary{
		Jobs:         jobs,
		TotalMatches: len(jobs),
		Mode:         domain.ModeFast,
	}
	if req.ReturnAll {
		return out, nil
	}

	memory, err := uc.userMemory(ctx, req.UserID, req.UserMemory)
	if err != nil {
		return nil, err
	}
	answer, err := uc.summarizer.Summarize(ctx, domain.SummaryRequest{
		Query:      message,
		Jobs:       jobs,
		UserMemory: memory,
		CorpusSize: uc.corpus.Len(),
	})
	if err != nil {
		return nil, fmt.Errorf("summarize chat results: %w", err)
	}
	out.Answer = &answer
	out.Mode = domain.ModeSummary
	return out, nil
}

// userMemory prefers caller-supplied memory and falls back to the stored profile.
func (uc *JobChatUseCase) userMemory(ctx context.Context, userID, supplied string) (string, error) {
	if memory := strings.TrimSpace(supplied); memory != "" {
		return memory, nil
	}
	userID = strings.TrimSpace(userID)
	if userID == "" || uc.profiles == nil {
		return "", nil
	}

	profile, err := uc.profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return "", nil
		}
		slog.Warn("profile_memory_unavailable", "user_id", userID, "error", err)
		return "", nil
	}
	return RenderProfileMemory(profile.Preferences), nil
}

// RenderProfileMemory formats stored preferences as prompt context.
func RenderProfileMemory(prefs domain.ProfilePreferences) string {
	lines := make([]string, 0, 5)
	if len(prefs.TechStack) > 0 {
		lines = append(lines, "Preferred tech stack: "+strings.Join(prefs.TechStack, ", "))
	}
	if prefs.SalaryMin != nil {
		lines = append(lines, "Minimum salary: £"+groupThousands(*prefs.SalaryMin))
	}
	if prefs.CompanySize != "" {
		lines = append(lines, "Company size: "+prefs.CompanySize)
	}
	if prefs.VisaRequired {
		lines = append(lines, "Needs visa sponsorship: yes")
	}
	if notes := strings.TrimSpace(prefs.Notes); notes != "" {
		lines = append(lines, "Notes: "+notes)
	}
	return strings.Join(lines, "\n")
}

func groupThousands(n int) string {
	raw := strconv.Itoa(n)
	sign := ""
	if strings.HasPrefix(raw, "-") {
		sign, raw = "-", raw[1:]
	}
	var b strings.Builder
	for i, r := range raw {
		if i > 0 && (len(raw)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String()
}

package prompt

import (
	"strings"
	"testing"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
)

func TestSummaryAgentPromptIncludesIntentAndVisa(t *testing.T) {
	minSalary := 60000
	msgs := Summary(domain.SummaryRequest{
		Query:      "python in london over 60k",
		Intent:     &domain.SearchIntent{Skills: []string{"Python"}, SalaryMin: &minSalary, Location: "London"},
		Jobs:       []domain.JobRecord{{Title: "Dev", Company: "Acme", VisaSponsorship: "Yes", Description: strings.Repeat("x", 300)}},
		UserMemory: "likes startups",
	})

	for _, want := range []string{"Skills needed: Python", "Min Salary: £60,000", "Max Salary: Not specified", "Location: London", "Visa: Yes", "User Profile/Preferences:\nlikes startups"} {
		if !strings.Contains(msgs.User, want) {
			t.Fatalf("agent prompt missing %q:\n%s", want, msgs.User)
		}
	}
	if strings.Contains(msgs.User, strings.Repeat("x", 151)) {
		t.Fatalf("description must be truncated to 150 runes")
	}
}

func TestSummaryBasicPromptMentionsCorpusSize(t *testing.T) {
	msgs := Summary(domain.SummaryRequest{
		Query:      "rust",
		Jobs:       []domain.JobRecord{{Title: "Rustacean"}},
		CorpusSize: 420,
	})

	if !strings.Contains(msgs.System, "420 job listings") {
		t.Fatalf("unexpected system prompt: %s", msgs.System)
	}
	if strings.Contains(msgs.User, "Visa:") || strings.Contains(msgs.User, "User Profile") {
		t.Fatalf("basic prompt must not include visa or empty memory:\n%s", msgs.User)
	}
	if !strings.Contains(msgs.User, "**Rustacean** at Unknown") {
		t.Fatalf("unexpected job rendering:\n%s", msgs.User)
	}
}

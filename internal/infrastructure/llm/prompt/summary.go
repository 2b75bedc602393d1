// Package prompt renders result sets into summarization prompts shared by all LLM providers.
package prompt

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
)

const (
	basicDescriptionRunes = 200
	agentDescriptionRunes = 150
	notSpecified          = "Not specified"
)

type Messages struct {
	System string
	User   string
}

// Summary builds the agent prompt when the request carries a parsed intent and
// the plain chat prompt otherwise.
func Summary(req domain.SummaryRequest) Messages {
	if req.Intent != nil {
		return agentSummary(req)
	}
	return basicSummary(req)
}

func basicSummary(req domain.SummaryRequest) Messages {
	var b strings.Builder
	fmt.Fprintf(&b, "User Query: %s\n", req.Query)
	writeMemory(&b, req.UserMemory)
	b.WriteString("\nBelow are the most relevant job positions based on the query:\n\n")
	writeJobs(&b, req.Jobs, basicDescriptionRunes, false)
	b.WriteString(`
Please analyze these jobs and provide a helpful response:
- Summarize the most relevant matches
- Highlight key details (salary, tech stack, company)
- Make recommendations based on the user's query
- Be concise but informative
`)

	return Messages{
		System: fmt.Sprintf("You are a helpful job assistant with access to %d job listings. "+
			"Provide personalized, helpful recommendations based on the user's query.", req.CorpusSize),
		User: b.String(),
	}
}

func agentSummary(req domain.SummaryRequest) Messages {
	intent := req.Intent

	var b strings.Builder
	fmt.Fprintf(&b, "User Query: %s\n\n", req.Query)
	b.WriteString("The search agent analyzed this query and found:\n")
	fmt.Fprintf(&b, "- Skills needed: %s\n", orDefault(strings.Join(intent.Skills, ", "), "None specified"))
	fmt.Fprintf(&b, "- Min Salary: %s\n", formatSalary(intent.SalaryMin))
	fmt.Fprintf(&b, "- Max Salary: %s\n", formatSalary(intent.SalaryMax))
	fmt.Fprintf(&b, "- Location: %s\n", orDefault(intent.Location, "Any"))
	fmt.Fprintf(&b, "- Visa Required: %s\n", yesNo(intent.VisaRequired))
	fmt.Fprintf(&b, "- Remote: %s\n", yesNo(intent.Remote))
	writeMemory(&b, req.UserMemory)
	b.WriteString("\nBelow are the top matching jobs after filtering:\n\n")
	writeJobs(&b, req.Jobs, agentDescriptionRunes, true)
	b.WriteString(`
Please provide a helpful summary:
1. Brief overview of the results
2. Highlight top 3-5 recommendations
3. Mention key patterns (average salary, common locations, etc.)
4. Be concise but informative
`)

	return Messages{
		System: "You are a helpful job assistant. The jobs below have already been filtered and ranked " +
			"against the user's criteria. Summarize and present them clearly.",
		User: b.String(),
	}
}

func writeMemory(b *strings.Builder, memory string) {
	if memory = strings.TrimSpace(memory); memory != "" {
		fmt.Fprintf(b, "\nUser Profile/Preferences:\n%s\n", memory)
	}
}

func writeJobs(b *strings.Builder, jobs []domain.JobRecord, descriptionRunes int, withVisa bool) {
	for i, job := range jobs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(b, "**%s** at %s\n", orDefault(job.Title, "Unknown"), orDefault(job.Company, "Unknown"))
		fmt.Fprintf(b, "Salary: %s\n", orDefault(job.Salary, notSpecified))
		fmt.Fprintf(b, "Location: %s\n", orDefault(job.Location, notSpecified))
		fmt.Fprintf(b, "Tech Stack: %s\n", strings.Join(job.TechStack, ", "))
		if withVisa {
			fmt.Fprintf(b, "Visa: %s\n", orDefault(job.VisaSponsorship, notSpecified))
		}
		fmt.Fprintf(b, "Description: %s...\n", truncate(job.Description, descriptionRunes))
	}
}

func formatSalary(v *int) string {
	if v == nil {
		return notSpecified
	}
	raw := strconv.Itoa(*v)
	var b strings.Builder
	for i, r := range raw {
		if i > 0 && (len(raw)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return "£" + b.String()
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

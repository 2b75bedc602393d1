package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
)

var recordSalaryPattern = regexp.MustCompile(`\d[\d,]*`)

var visaPositiveMarkers = []string{"yes", "available", "sponsor"}

// FilterStage is one narrowing step of the multi-step search. Apply must return
// a subsequence of its input and must not modify the records.
type FilterStage interface {
	Name() string
	Active(intent domain.SearchIntent) bool
	Apply(records []domain.JobRecord, intent domain.SearchIntent) []domain.JobRecord
}

type StageObserver func(stage string, before, after int)

// FilterChain runs stages in order, skipping the ones the intent does not activate.
type FilterChain struct {
	stages []FilterStage
}

func NewFilterChain(stages ...FilterStage) FilterChain {
	return FilterChain{stages: stages}
}

// DefaultFilterChain applies salary, location, visa and remote filters in that order.
func DefaultFilterChain() FilterChain {
	return NewFilterChain(SalaryFilter{}, LocationFilter{}, VisaFilter{}, RemoteFilter{})
}

func (c FilterChain) Apply(records []domain.JobRecord, intent domain.SearchIntent, observe StageObserver) []domain.JobRecord {
	active := records
	for _, stage := range c.stages {
		if !stage.Active(intent) {
			continue
		}
		before := len(active)
		active = stage.Apply(active, intent)
		if observe != nil {
			observe(stage.Name(), before, len(active))
		}
	}
	return active
}

func keepIf(records []domain.JobRecord, keep func(domain.JobRecord) bool) []domain.JobRecord {
	out := make([]domain.JobRecord, 0, len(records))
	for _, rec := range records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

type SalaryFilter struct{}

func (SalaryFilter) Name() string { return "salary" }

func (SalaryFilter) Active(intent domain.SearchIntent) bool { return intent.HasSalaryBound() }

func (SalaryFilter) Apply(records []domain.JobRecord, intent domain.SearchIntent) []domain.JobRecord {
	return keepIf(records, func(rec domain.JobRecord) bool {
		salary, ok := parseRecordSalary(rec.Salary)
		if !ok {
			return false
		}
		if intent.SalaryMin != nil && salary < *intent.SalaryMin {
			return false
		}
		if intent.SalaryMax != nil && salary > *intent.SalaryMax {
			return false
		}
		return true
	})
}

// parseRecordSalary reads the first number embedded in free-text salary such as
// "£60,000 - £80,000". Text without digits, e.g. "Not specified", is unparseable.
func parseRecordSalary(text string) (int, bool) {
	raw := recordSalaryPattern.FindString(text)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}

type LocationFilter struct{}

func (LocationFilter) Name() string { return "location" }

func (LocationFilter) Active(intent domain.SearchIntent) bool { return intent.HasLocation() }

func (LocationFilter) Apply(records []domain.JobRecord, intent domain.SearchIntent) []domain.JobRecord {
	want := strings.ToLower(intent.Location)
	return keepIf(records, func(rec domain.JobRecord) bool {
		return strings.Contains(strings.ToLower(rec.Location), want)
	})
}

type VisaFilter struct{}

func (VisaFilter) Name() string { return "visa" }

func (VisaFilter) Active(intent domain.SearchIntent) bool { return intent.VisaRequired }

func (VisaFilter) Apply(records []domain.JobRecord, _ domain.SearchIntent) []domain.JobRecord {
	return keepIf(records, func(rec domain.JobRecord) bool {
		return containsAny(strings.ToLower(rec.VisaSponsorship), visaPositiveMarkers)
	})
}

type RemoteFilter struct{}

func (RemoteFilter) Name() string { return "remote" }

func (RemoteFilter) Active(intent domain.SearchIntent) bool { return intent.Remote }

func (RemoteFilter) Apply(records []domain.JobRecord, _ domain.SearchIntent) []domain.JobRecord {
	return keepIf(records, func(rec domain.JobRecord) bool {
		return strings.Contains(strings.ToLower(rec.Location), "remote") ||
			strings.Contains(strings.ToLower(rec.Description), "remote")
	})
}

package usecase

import (
	"strings"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
)

const (
	DefaultBrowseLimit = 50
	MaxBrowseLimit     = 100
)

// CorpusBrowser lists the corpus page by page with an optional substring filter
// over title, company and tech stack.
type CorpusBrowser struct {
	corpus *domain.Corpus
}

func NewCorpusBrowser(corpus *domain.Corpus) *CorpusBrowser {
	return &CorpusBrowser{corpus: corpus}
}

func (b *CorpusBrowser) Size() int {
	return b.corpus.Len()
}

func (b *CorpusBrowser) Browse(page, limit int, term string) domain.BrowsePage {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultBrowseLimit
	}
	if limit > MaxBrowseLimit {
		limit = MaxBrowseLimit
	}

	term = strings.ToLower(strings.TrimSpace(term))
	matched := make([]domain.JobRecord, 0, b.corpus.Len())
	b.corpus.Range(func(_ int, rec domain.JobRecord) bool {
		if term == "" || matchesBrowseTerm(rec, term) {
			matched = append(matched, rec)
		}
		return true
	})

	total := len(matched)
	totalPages := (total + limit - 1) / limit
	start := (page - 1) * limit
	results := []domain.JobRecord{}
	if start < total {
		results = matched[start:min(start+limit, total)]
	}

	return domain.BrowsePage{
		Results:    results,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

func matchesBrowseTerm(rec domain.JobRecord, term string) bool {
	if strings.Contains(strings.ToLower(rec.Title), term) || strings.Contains(strings.ToLower(rec.Company), term) {
		return true
	}
	for _, tech := range rec.TechStack {
		if strings.Contains(strings.ToLower(tech), term) {
			return true
		}
	}
	return false
}

package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
)

const (
	defaultTitle           = "Unknown Position"
	defaultCompany         = "Unknown Company"
	defaultSalary          = "Not specified"
	defaultLocation        = "London, UK"
	defaultVisa            = "unknown"
	shortDescriptionLength = 200
)

// Loader reads the corpus either from a JSON array of records or from a
// directory of scraped per-job JSON files.
type Loader struct {
	path   string
	logger *slog.Logger
}

func NewLoader(path string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{path: path, logger: logger}
}

// rawJob accepts both the stored record shape and the scraper output, which
// names the tech stack "technologies".
type rawJob struct {
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	Salary          string   `json:"salary"`
	Location        string   `json:"location"`
	TechStack       []string `json:"tech_stack"`
	Technologies    []string `json:"technologies"`
	Description     string   `json:"description"`
	VisaSponsorship string   `json:"visa_sponsorship"`
	Link            string   `json:"link"`
	FullDescription string   `json:"full_description"`
}

func (l *Loader) LoadCorpus(ctx context.Context) ([]domain.JobRecord, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		return nil, fmt.Errorf("stat corpus path: %w", err)
	}
	if info.IsDir() {
		return l.loadDir(ctx)
	}
	return l.loadFile()
}

func (l *Loader) loadFile() ([]domain.JobRecord, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read corpus file: %w", err)
	}
	var jobs []rawJob
	if err := json.Unmarshal(raw, &jobs); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "decode corpus file", err)
	}
	out := make([]domain.JobRecord, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, job.toRecord())
	}
	return out, nil
}

// loadDir reads *.json files in name order. Files that fail to decode are
// skipped with a warning so one broken scrape does not block startup.
func (l *Loader) loadDir(ctx context.Context) ([]domain.JobRecord, error) {
	entries, err := os.ReadDir(l.path)
	if err != nil {
		return nil, fmt.Errorf("read corpus dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	out := make([]domain.JobRecord, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(filepath.Join(l.path, name))
		if err != nil {
			l.logger.Warn("corpus_file_skipped", "file", name, "error", err)
			continue
		}
		var job rawJob
		if err := json.Unmarshal(raw, &job); err != nil {
			l.logger.Warn("corpus_file_skipped", "file", name, "error", err)
			continue
		}
		out = append(out, job.toScrapedRecord())
	}
	l.logger.Info("corpus_loaded", "dir", l.path, "files", len(names), "records", len(out))
	return out, nil
}

func (j rawJob) toRecord() domain.JobRecord {
	tech := j.TechStack
	if tech == nil {
		tech = j.Technologies
	}
	if tech == nil {
		tech = []string{}
	}
	return domain.JobRecord{
		Title:           withDefault(j.Title, defaultTitle),
		Company:         withDefault(j.Company, defaultCompany),
		Salary:          withDefault(j.Salary, defaultSalary),
		Location:        j.Location,
		TechStack:       tech,
		Description:     CleanText(j.Description),
		VisaSponsorship: withDefault(j.VisaSponsorship, defaultVisa),
		Link:            j.Link,
		FullDescription: CleanText(j.FullDescription),
	}
}

// toScrapedRecord keeps the full text separately and shortens the description
// shown in listings.
func (j rawJob) toScrapedRecord() domain.JobRecord {
	rec := j.toRecord()
	rec.Location = withDefault(j.Location, defaultLocation)
	if rec.FullDescription == "" {
		rec.FullDescription = rec.Description
	}
	rec.Description = truncateRunes(rec.Description, shortDescriptionLength)
	return rec
}

// CleanText strips HTML markup and collapses whitespace. Plain text passes
// through with only whitespace normalization.
func CleanText(s string) string {
	if strings.ContainsRune(s, '<') {
		if doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(s))); err == nil {
			doc.Find("script, style").Remove()
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

func withDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

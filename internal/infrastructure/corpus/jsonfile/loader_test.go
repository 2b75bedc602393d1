package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadArrayFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")
	writeFile(t, path, `[
		{"title":"Go Engineer","company":"Acme","salary":"£70,000","location":"London","tech_stack":["Go"],"description":"Build APIs","visa_sponsorship":"Yes"},
		{"title":"","company":"","technologies":["Python"],"description":"<p>Remote <b>data</b> role</p>"}
	]`)

	records, err := NewLoader(path, nil).LoadCorpus(context.Background())
	if err != nil {
		t.Fatalf("LoadCorpus() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Title != "Go Engineer" || records[0].TechStack[0] != "Go" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	second := records[1]
	if second.Title != "Unknown Position" || second.Company != "Unknown Company" || second.Salary != "Not specified" {
		t.Fatalf("defaults not applied: %+v", second)
	}
	if len(second.TechStack) != 1 || second.TechStack[0] != "Python" {
		t.Fatalf("technologies alias not honored: %+v", second.TechStack)
	}
	if second.Description != "Remote data role" {
		t.Fatalf("html not cleaned: %q", second.Description)
	}
	if second.Location != "" {
		t.Fatalf("array records keep their own location, got %q", second.Location)
	}
}

func TestLoadArrayFileRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")
	writeFile(t, path, `{"title":`)

	_, err := NewLoader(path, nil).LoadCorpus(context.Background())
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLoadDirectoryOfScrapedJobs(t *testing.T) {
	dir := t.TempDir()
	long := strings.Repeat("x", 250)
	writeFile(t, filepath.Join(dir, "b.json"), `{"title":"Second","company":"Beta","technologies":["Go","Rust"],"description":"`+long+`"}`)
	writeFile(t, filepath.Join(dir, "a.json"), `{"title":"First","company":"Alpha"}`)
	writeFile(t, filepath.Join(dir, "broken.json"), `not json`)
	writeFile(t, filepath.Join(dir, "notes.txt"), `ignored`)

	records, err := NewLoader(dir, nil).LoadCorpus(context.Background())
	if err != nil {
		t.Fatalf("LoadCorpus() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Title != "First" || records[1].Title != "Second" {
		t.Fatalf("records not in file name order: %q, %q", records[0].Title, records[1].Title)
	}
	if records[0].Location != "London, UK" || records[0].VisaSponsorship != "unknown" {
		t.Fatalf("scrape defaults not applied: %+v", records[0])
	}
	if records[0].TechStack == nil {
		t.Fatalf("tech stack must not be nil")
	}
	if len([]rune(records[1].Description)) != 200 || records[1].FullDescription != long {
		t.Fatalf("description not split: short=%d full=%d", len(records[1].Description), len(records[1].FullDescription))
	}
}

func TestLoadMissingPath(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "missing.json"), nil).LoadCorpus(context.Background())
	if err == nil {
		t.Fatalf("expected error for missing path")
	}
}

func TestCleanText(t *testing.T) {
	cases := map[string]string{
		"plain   text\n here":                        "plain text here",
		"<div>Hello <script>x()</script>world</div>": "Hello world",
		"salary < 50k":                               "salary < 50k",
	}
	for in, want := range cases {
		if got := CleanText(in); got != want {
			t.Fatalf("CleanText(%q) = %q, want %q", in, got, want)
		}
	}
}

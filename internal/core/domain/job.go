package domain

// JobRecord is a single corpus entry. Records are read-only once the corpus is loaded.
type JobRecord struct {
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	Salary          string   `json:"salary"`
	Location        string   `json:"location"`
	TechStack       []string `json:"tech_stack"`
	Description     string   `json:"description"`
	VisaSponsorship string   `json:"visa_sponsorship"`
	Link            string   `json:"link"`
	FullDescription string   `json:"full_description,omitempty"`
}

type ScoredCandidate struct {
	Record JobRecord
	Score  int
}

// Corpus is an index-aligned snapshot of job records. Position i is the record
// addressed by vector index id i.
type Corpus struct {
	records []JobRecord
}

func NewCorpus(records []JobRecord) *Corpus {
	out := make([]JobRecord, len(records))
	copy(out, records)
	return &Corpus{records: out}
}

func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// At returns the record at position i; ok is false for out-of-range positions.
func (c *Corpus) At(i int) (JobRecord, bool) {
	if c == nil || i < 0 || i >= len(c.records) {
		return JobRecord{}, false
	}
	return c.records[i], true
}

// Head returns up to n records in corpus order.
func (c *Corpus) Head(n int) []JobRecord {
	if c == nil || n <= 0 {
		return []JobRecord{}
	}
	if n > len(c.records) {
		n = len(c.records)
	}
	out := make([]JobRecord, n)
	copy(out, c.records[:n])
	return out
}

// Range iterates over records in corpus order until fn returns false.
func (c *Corpus) Range(fn func(i int, rec JobRecord) bool) {
	if c == nil {
		return
	}
	for i, rec := range c.records {
		if !fn(i, rec) {
			return
		}
	}
}

// BrowsePage is one page of a corpus listing.
type BrowsePage struct {
	Results    []JobRecord `json:"results"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
	HasNext    bool        `json:"has_next"`
	HasPrev    bool        `json:"has_prev"`
}

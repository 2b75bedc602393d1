package domain

type QueryCategory string

const (
	CategorySkillSearch   QueryCategory = "skill_search"
	CategoryCompanySearch QueryCategory = "company_search"
	CategoryGeneralBrowse QueryCategory = "general_browse"
	CategoryComparison    QueryCategory = "comparison"
)

// SearchIntent is the structured form of a free-text job query.
type SearchIntent struct {
	Skills        []string      `json:"skills"`
	SalaryMin     *int          `json:"salary_min"`
	SalaryMax     *int          `json:"salary_max"`
	Location      string        `json:"location,omitempty"`
	VisaRequired  bool          `json:"visa_required"`
	Remote        bool          `json:"remote"`
	Category      QueryCategory `json:"query_type"`
	OriginalQuery string        `json:"original_query"`
}

func (i SearchIntent) HasSalaryBound() bool {
	return i.SalaryMin != nil || i.SalaryMax != nil
}

func (i SearchIntent) HasLocation() bool {
	return i.Location != ""
}

const (
	StrategyBrowse     = "browse"
	StrategyComparison = "comparison"
	StrategyMultiStep  = "multi_step"
)

// SearchResult is the orchestrator output echoed to callers.
type SearchResult struct {
	Records      []JobRecord  `json:"records"`
	Intent       SearchIntent `json:"intent"`
	TotalMatches int          `json:"total_matches"`
	Strategy     string       `json:"strategy"`
	Candidates   int          `json:"-"`
}

// VectorHit is a single nearest-neighbour result from a vector index.
type VectorHit struct {
	RecordIndex int
	Distance    float64
}

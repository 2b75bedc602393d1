package domain

import "time"

type ProfilePreferences struct {
	TechStack    []string `json:"tech_stack" validate:"omitempty,max=50,dive,min=1,max=64"`
	SalaryMin    *int     `json:"salary_min,omitempty" validate:"omitempty,min=0"`
	CompanySize  string   `json:"company_size,omitempty" validate:"omitempty,oneof=startup small medium large enterprise any"`
	VisaRequired bool     `json:"visa_required"`
	Notes        string   `json:"notes,omitempty" validate:"max=2000"`
}

type UserProfile struct {
	UserID      string             `json:"user_id"`
	Preferences ProfilePreferences `json:"preferences"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

type Summary struct {
	Answer       *string       `json:"answer"`
	Jobs         []JobRecord   `json:"jobs"`
	TotalMatches int           `json:"total_matches"`
	ParsedQuery  *SearchIntent `json:"parsed_query,omitempty"`
	Mode         string        `json:"mode"`
}

const (
	ModeFast         = "fast"
	ModeSummary      = "summary"
	ModeAgentFast    = "agent_fast"
	ModeAgentSummary = "agent_summary"
)

// SummaryRequest carries everything a language model needs to present a result set.
type SummaryRequest struct {
	Query      string
	Intent     *SearchIntent
	Jobs       []JobRecord
	UserMemory string
	CorpusSize int
}

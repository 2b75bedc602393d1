package usecase

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
)

var (
	salaryOverPattern  = regexp.MustCompile(`(?:over|above|more than|at least)\s*£?(\d+)k?`)
	salaryRangePattern = regexp.MustCompile(`£?(\d+)k?\s*(?:to|-|and)\s*£?(\d+)k?`)

	visaKeywords       = []string{"visa", "sponsorship", "sponsor", "tier 2", "work permit"}
	remoteKeywords     = []string{"remote", "work from home", "wfh", "hybrid"}
	remoteLocationHint = []string{"remote", "work from home"}

	comparisonKeywords = []string{"compare", "vs", "versus"}
	companyKeywords    = []string{"at", "company", "companies"}
	browseKeywords     = []string{"all", "browse", "list", "show"}
)

const remoteLocation = "Remote"

// QueryInterpreter is a deterministic keyword extractor over the configured gazetteers.
type QueryInterpreter struct {
	skills []string
	cities []string
}

func NewQueryInterpreter(rules domain.SearchRules) *QueryInterpreter {
	return &QueryInterpreter{
		skills: normalizeGazetteer(rules.Skills),
		cities: normalizeGazetteer(rules.Cities),
	}
}

func (qi *QueryInterpreter) Analyze(query string) domain.SearchIntent {
	lower := strings.ToLower(query)
	salaryMin, salaryMax := extractSalary(lower)

	return domain.SearchIntent{
		Skills:        qi.extractSkills(lower),
		SalaryMin:     salaryMin,
		SalaryMax:     salaryMax,
		Location:      qi.extractLocation(lower),
		VisaRequired:  containsAny(lower, visaKeywords),
		Remote:        containsAny(lower, remoteKeywords),
		Category:      classifyQuery(lower),
		OriginalQuery: query,
	}
}

// ExtractSkills returns the title-cased skills mentioned in text, in gazetteer order.
func (qi *QueryInterpreter) ExtractSkills(text string) []string {
	return qi.extractSkills(strings.ToLower(text))
}

// ExtractCities returns every gazetteer city mentioned in text, title-cased, in gazetteer order.
func (qi *QueryInterpreter) ExtractCities(text string) []string {
	lower := strings.ToLower(text)
	out := make([]string, 0, 2)
	for _, city := range qi.cities {
		if strings.Contains(lower, city) {
			out = append(out, titleCase(city))
		}
	}
	return out
}

func (qi *QueryInterpreter) extractSkills(lower string) []string {
	out := make([]string, 0, 4)
	for _, skill := range qi.skills {
		if strings.Contains(lower, skill) {
			out = append(out, titleCase(skill))
		}
	}
	return out
}

func (qi *QueryInterpreter) extractLocation(lower string) string {
	for _, city := range qi.cities {
		if strings.Contains(lower, city) {
			return titleCase(city)
		}
	}
	if containsAny(lower, remoteLocationHint) {
		return remoteLocation
	}
	return ""
}

// extractSalary applies the "over N" rule and then the "N to M" rule. A range
// match overwrites any lower bound set by the first rule.
func extractSalary(lower string) (*int, *int) {
	var salaryMin, salaryMax *int

	if m := salaryOverPattern.FindStringSubmatch(lower); m != nil {
		if amount, ok := parseSalaryAmount(m[1]); ok {
			salaryMin = &amount
		}
	}

	if m := salaryRangePattern.FindStringSubmatch(lower); m != nil {
		low, okLow := parseSalaryAmount(m[1])
		high, okHigh := parseSalaryAmount(m[2])
		if okLow && okHigh {
			salaryMin = &low
			salaryMax = &high
		}
	}

	return salaryMin, salaryMax
}

// parseSalaryAmount treats numbers below 1000 as thousands ("60" -> 60000).
func parseSalaryAmount(raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	if n < 1000 {
		return n * 1000, true
	}
	return n, true
}

func classifyQuery(lower string) domain.QueryCategory {
	switch {
	case containsAny(lower, comparisonKeywords):
		return domain.CategoryComparison
	case containsAny(lower, companyKeywords):
		return domain.CategoryCompanySearch
	case containsAny(lower, browseKeywords):
		return domain.CategoryGeneralBrowse
	default:
		return domain.CategorySkillSearch
	}
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

func normalizeGazetteer(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}
	return out
}

// titleCase upper-cases every letter that follows a non-letter and lower-cases
// the rest, so "k8s" becomes "K8S" and "machine learning" becomes "Machine Learning".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}

package usecase

import (
	"sort"
	"strings"
	"unicode"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
)

const (
	RankingOrder   = "order"
	RankingKeyword = "keyword"
)

// Ranker orders filtered records. Implementations must be stable.
type Ranker interface {
	Name() string
	Rank(records []domain.JobRecord, intent domain.SearchIntent) []domain.JobRecord
}

// NewRanker selects a ranking strategy by name; unknown names fall back to order preservation.
func NewRanker(strategy string, rules domain.SearchRules, cities func(string) []string) Ranker {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case RankingKeyword:
		return NewKeywordRankingFilter(rules.Ranking, cities)
	default:
		return OrderPreservingFilter{}
	}
}

// OrderPreservingFilter keeps the similarity order reported by the vector index.
type OrderPreservingFilter struct{}

func (OrderPreservingFilter) Name() string { return RankingOrder }

func (OrderPreservingFilter) Rank(records []domain.JobRecord, _ domain.SearchIntent) []domain.JobRecord {
	return records
}

// KeywordRankingFilter scores records against the query with fixed integer
// weights and sorts by score, keeping input order for ties.
type KeywordRankingFilter struct {
	weights domain.RankingWeights
	cities  func(string) []string
}

func NewKeywordRankingFilter(weights domain.RankingWeights, cities func(string) []string) *KeywordRankingFilter {
	if cities == nil {
		cities = func(string) []string { return nil }
	}
	return &KeywordRankingFilter{weights: weights, cities: cities}
}

func (f *KeywordRankingFilter) Name() string { return RankingKeyword }

func (f *KeywordRankingFilter) Rank(records []domain.JobRecord, intent domain.SearchIntent) []domain.JobRecord {
	if len(records) == 0 {
		return records
	}

	scored := f.Score(records, intent)
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	out := make([]domain.JobRecord, len(scored))
	for i := range scored {
		out[i] = scored[i].Record
	}
	return out
}

// Score returns one candidate per record, in input order.
func (f *KeywordRankingFilter) Score(records []domain.JobRecord, intent domain.SearchIntent) []domain.ScoredCandidate {
	queryCities := lowerSet(f.cities(intent.OriginalQuery))
	penalized := strings.ToLower(strings.TrimSpace(f.weights.PenalizedLocation))
	queryWords := queryWordsLongerThan(intent.OriginalQuery, 3)

	out := make([]domain.ScoredCandidate, 0, len(records))
	for _, rec := range records {
		score := 0
		location := primaryLocation(rec.Location)

		if _, ok := queryCities[location]; ok && location != "" {
			score += f.weights.LocationMatch
		}
		// The penalty needs another city in the query; no city means no preference.
		if penalized != "" && location == penalized && len(queryCities) > 0 {
			if _, named := queryCities[penalized]; !named {
				score -= f.weights.Penalty
			}
		}

		stack := lowerSet(rec.TechStack)
		for _, skill := range intent.Skills {
			if _, ok := stack[strings.ToLower(skill)]; ok {
				score += f.weights.TechMatch
			}
		}

		title := strings.ToLower(rec.Title)
		company := strings.ToLower(rec.Company)
		for _, word := range queryWords {
			if strings.Contains(title, word) {
				score += f.weights.TitleWord
			}
			if strings.Contains(company, word) {
				score += f.weights.CompanyWord
			}
		}

		out = append(out, domain.ScoredCandidate{Record: rec, Score: score})
	}
	return out
}

// primaryLocation is the lower-cased text before the first comma: "London, UK" -> "london".
func primaryLocation(location string) string {
	if i := strings.Index(location, ","); i >= 0 {
		location = location[:i]
	}
	return strings.ToLower(strings.TrimSpace(location))
}

func lowerSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out[v] = struct{}{}
		}
	}
	return out
}

func queryWordsLongerThan(query string, minLen int) []string {
	tokens := splitAlphaNumLower(query)
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len(token) <= minLen {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

func splitAlphaNumLower(s string) []string {
	if s == "" {
		return nil
	}

	tokens := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}

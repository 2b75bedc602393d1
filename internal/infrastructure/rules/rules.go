package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
)

//go:embed default_rules.yaml
var defaultRules []byte

type fileRules struct {
	Skills  []string    `yaml:"skills"`
	Cities  []string    `yaml:"cities"`
	Ranking fileRanking `yaml:"ranking"`
}

type fileRanking struct {
	LocationMatch     int    `yaml:"location_match"`
	PenalizedLocation string `yaml:"penalized_location"`
	Penalty           int    `yaml:"penalty"`
	TechMatch         int    `yaml:"tech_match"`
	TitleWord         int    `yaml:"title_word"`
	CompanyWord       int    `yaml:"company_word"`
}

// Default returns the built-in gazetteers and ranking weights.
func Default() domain.SearchRules {
	rules, err := Parse(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("embedded rules are invalid: %v", err))
	}
	return rules
}

// Load reads rules from path, or returns the built-in rules when path is empty.
func Load(path string) (domain.SearchRules, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.SearchRules{}, fmt.Errorf("read rules file: %w", err)
	}
	rules, err := Parse(raw)
	if err != nil {
		return domain.SearchRules{}, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	return rules, nil
}

func Parse(raw []byte) (domain.SearchRules, error) {
	var parsed fileRules
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return domain.SearchRules{}, fmt.Errorf("decode yaml: %w", err)
	}

	skills := compact(parsed.Skills)
	cities := compact(parsed.Cities)
	if len(skills) == 0 {
		return domain.SearchRules{}, errors.New("skills gazetteer is empty")
	}
	if len(cities) == 0 {
		return domain.SearchRules{}, errors.New("cities gazetteer is empty")
	}
	if parsed.Ranking.Penalty < 0 {
		return domain.SearchRules{}, errors.New("ranking penalty must be non-negative")
	}

	return domain.SearchRules{
		Skills: skills,
		Cities: cities,
		Ranking: domain.RankingWeights{
			LocationMatch:     parsed.Ranking.LocationMatch,
			PenalizedLocation: strings.ToLower(strings.TrimSpace(parsed.Ranking.PenalizedLocation)),
			Penalty:           parsed.Ranking.Penalty,
			TechMatch:         parsed.Ranking.TechMatch,
			TitleWord:         parsed.Ranking.TitleWord,
			CompanyWord:       parsed.Ranking.CompanyWord,
		},
	}, nil
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

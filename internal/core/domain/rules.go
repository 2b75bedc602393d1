package domain

// RankingWeights tunes the keyword ranking strategy.
type RankingWeights struct {
	LocationMatch     int
	PenalizedLocation string
	Penalty           int
	TechMatch         int
	TitleWord         int
	CompanyWord       int
}

// SearchRules holds the gazetteers used by the query interpreter and the
// weights used by keyword ranking. Gazetteer order is significant.
type SearchRules struct {
	Skills  []string
	Cities  []string
	Ranking RankingWeights
}

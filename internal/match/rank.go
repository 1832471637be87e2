// Package match ranks wardrobe items against a candidate garment and turns the
// ranking into outfit suggestions.
package match

import (
	"fmt"
	"sort"

	"thrift-matcher/internal/compat"
	"thrift-matcher/internal/garment"
)

const (
	// Threshold is the score an item must exceed to count as a match.
	Threshold = 0.5

	// MaxResults caps the number of returned matches.
	MaxResults = 5
)

// Result is one ranked wardrobe item.
type Result struct {
	ItemID string         `json:"item_id"`
	Score  float64        `json:"score"`
	Rank   int            `json:"rank"`
	Detail compat.Result  `json:"detail"`
	Item   garment.Record `json:"-"`
}

// Ranking is the outcome of matching a candidate against a wardrobe.
type Ranking struct {
	Matches     []Result `json:"matches"`
	Suggestions []string `json:"outfit_ideas"`
}

// Ranker scores and orders wardrobe items.
type Ranker struct {
	Rules      compat.Rules
	Threshold  float64
	MaxResults int
	Suggest    func(rules compat.Rules, candidate garment.Attributes, matches []Result) []string
}

// NewRanker returns a Ranker with the default rules and limits.
func NewRanker() *Ranker {
	return &Ranker{
		Rules:      compat.DefaultRules(),
		Threshold:  Threshold,
		MaxResults: MaxResults,
		Suggest:    SuggestionsWith,
	}
}

// Rank ranks wardrobe against candidate using the default Ranker.
func Rank(candidate garment.Attributes, wardrobe []garment.Record) (Ranking, error) {
	return NewRanker().Rank(candidate, wardrobe)
}

// Rank scores every wardrobe item, keeps those strictly above the threshold,
// orders them by score (ties keep wardrobe order) and returns at most
// MaxResults of them. The wardrobe slice is not modified.
//
// An empty wardrobe fails with garment.ErrEmptyWardrobe. When nothing clears
// the threshold the ranking has no matches and exactly one fallback
// suggestion.
func (r *Ranker) Rank(candidate garment.Attributes, wardrobe []garment.Record) (Ranking, error) {
	if len(wardrobe) == 0 {
		return Ranking{}, fmt.Errorf("match: %w", garment.ErrEmptyWardrobe)
	}

	matches := make([]Result, 0, len(wardrobe))
	for _, item := range wardrobe {
		res := r.Rules.Score(candidate, item.Attributes)
		if res.Score > r.Threshold {
			matches = append(matches, Result{
				ItemID: item.ID,
				Score:  res.Score,
				Detail: res,
				Item:   item,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if r.MaxResults > 0 && len(matches) > r.MaxResults {
		matches = matches[:r.MaxResults]
	}
	for i := range matches {
		matches[i].Rank = i + 1
	}

	suggest := r.Suggest
	if suggest == nil {
		suggest = SuggestionsWith
	}
	return Ranking{
		Matches:     matches,
		Suggestions: suggest(r.Rules, candidate, matches),
	}, nil
}

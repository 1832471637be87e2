package compat

import (
	"slices"

	"thrift-matcher/internal/garment"
)

// Weights in tenths so the total is exact in floating point.
const (
	categoryTenths = 4
	colorTenths    = 4
	seasonTenths   = 2
)

// Result is a compatibility score with the signals that produced it.
type Result struct {
	Score    float64 `json:"score"`
	Category bool    `json:"category_match"`
	Color    bool    `json:"color_match"`
	Season   bool    `json:"season_overlap"`
}

// SeasonsOverlap reports whether any candidate season is in the wardrobe
// item's seasons.
func SeasonsOverlap(candidate, item []garment.Season) bool {
	for _, s := range candidate {
		if slices.Contains(item, s) {
			return true
		}
	}
	return false
}

// Score rates how well a wardrobe item goes with the candidate:
// 0.4 for a compatible category, 0.4 for compatible primary colors and 0.2 for
// a shared season. Category and color checks run candidate -> item, so
// Score(a, b) and Score(b, a) can differ.
func (r Rules) Score(candidate, item garment.Attributes) Result {
	res := Result{
		Category: r.CompatibleCategories(candidate.Category, item.Category),
		Color:    r.CompatibleColors(candidate.PrimaryColor(), item.PrimaryColor()),
		Season:   SeasonsOverlap(candidate.Seasons, item.Seasons),
	}

	tenths := 0
	if res.Category {
		tenths += categoryTenths
	}
	if res.Color {
		tenths += colorTenths
	}
	if res.Season {
		tenths += seasonTenths
	}
	res.Score = clamp(float64(tenths) / 10)
	return res
}

// Score rates candidate against item using DefaultRules.
func Score(candidate, item garment.Attributes) Result {
	return DefaultRules().Score(candidate, item)
}

// ScoreValue returns only the numeric score from Score.
func ScoreValue(candidate, item garment.Attributes) float64 {
	return Score(candidate, item).Score
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

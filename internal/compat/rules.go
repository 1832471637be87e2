// Package compat holds the garment pairing rules and the pairwise
// compatibility score.
package compat

import (
	"slices"

	"thrift-matcher/internal/garment"
)

// CategoryTable maps a candidate category to the wardrobe categories it pairs
// with. The lookup is directed: (a, b) is compatible when b is in a's list.
type CategoryTable map[garment.Category][]garment.Category

// ColorTable maps a color to the colors it complements. Directed like
// CategoryTable.
type ColorTable map[garment.ColorName][]garment.ColorName

// DefaultCategories is the built-in category pairing table.
var DefaultCategories = CategoryTable{
	"shirt": {"pants", "skirt", "shorts"},
	"pants": {"shirt", "jacket", "sweater"},
	"shoes": {"pants", "skirt", "shorts"},

	// classifier labels
	"tshirt": {"pants", "jeans", "skirt", "shorts", "jacket"},
	"jeans":  {"shirt", "tshirt", "jacket", "sweater"},
	"jacket": {"pants", "jeans", "dress", "skirt"},
	"dress":  {"jacket", "shoes"},
}

// DefaultNeutrals pair with every color, in either position.
var DefaultNeutrals = []garment.ColorName{"black", "white", "gray", "grey", "beige"}

// DefaultComplements is the built-in complementary color table.
var DefaultComplements = ColorTable{
	"blue":   {"orange", "yellow"},
	"red":    {"green"},
	"purple": {"yellow"},
}

// Rules bundles the lookup tables used for scoring. Tables are only read.
type Rules struct {
	Categories  CategoryTable
	Neutrals    []garment.ColorName
	Complements ColorTable
}

// DefaultRules returns the built-in rule set.
func DefaultRules() Rules {
	return Rules{
		Categories:  DefaultCategories,
		Neutrals:    DefaultNeutrals,
		Complements: DefaultComplements,
	}
}

// Pairs returns the categories c pairs with. Unknown categories pair with
// nothing.
func (t CategoryTable) Pairs(c garment.Category) []garment.Category {
	return t[c]
}

// Compatible reports whether wardrobe category b is in candidate category a's
// pairing list.
func (t CategoryTable) Compatible(a, b garment.Category) bool {
	return slices.Contains(t[a], b)
}

// IsNeutral reports whether c is a neutral color.
func (r Rules) IsNeutral(c garment.ColorName) bool {
	return slices.Contains(r.Neutrals, c)
}

// CompatibleColors reports whether candidate color a goes with wardrobe color
// b: either is neutral, they are the same, or b complements a. The reverse
// complement direction is not consulted.
func (r Rules) CompatibleColors(a, b garment.ColorName) bool {
	if r.IsNeutral(a) || r.IsNeutral(b) {
		return true
	}
	if a == b {
		return true
	}
	return slices.Contains(r.Complements[a], b)
}

// CompatibleCategories reports whether candidate category a pairs with
// wardrobe category b.
func (r Rules) CompatibleCategories(a, b garment.Category) bool {
	return r.Categories.Compatible(a, b)
}

// CompatibleCategories checks a and b against DefaultRules.
func CompatibleCategories(a, b garment.Category) bool {
	return DefaultCategories.Compatible(a, b)
}

// CompatibleColors checks a and b against DefaultRules.
func CompatibleColors(a, b garment.ColorName) bool {
	return DefaultRules().CompatibleColors(a, b)
}

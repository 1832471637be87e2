package match

import (
	"fmt"

	"thrift-matcher/internal/compat"
	"thrift-matcher/internal/garment"
)

// NoMatchesSuggestion is the only suggestion given when nothing matched.
const NoMatchesSuggestion = "No matches found. Try different items!"

// Suggestions is SuggestionsWith under the default rules.
func Suggestions(candidate garment.Attributes, matches []Result) []string {
	return SuggestionsWith(compat.DefaultRules(), candidate, matches)
}

// SuggestionsWith builds outfit ideas from the top match, judging neutral
// colors by rules. It always returns at least one line; with no matches it
// returns only NoMatchesSuggestion.
func SuggestionsWith(rules compat.Rules, candidate garment.Attributes, matches []Result) []string {
	if len(matches) == 0 {
		return []string{NoMatchesSuggestion}
	}

	top := matches[0]
	ideas := []string{
		fmt.Sprintf("Pair with %s for a casual look", top.ItemID),
	}

	if top.Detail.Color && !rules.IsNeutral(candidate.PrimaryColor()) &&
		rules.IsNeutral(top.Item.Attributes.PrimaryColor()) {
		ideas = append(ideas, fmt.Sprintf("Let the %s stand out against the neutral %s",
			candidate.PrimaryColor(), top.Item.Attributes.Category))
	}

	if len(matches) > 1 {
		ideas = append(ideas, fmt.Sprintf("Swap in %s for a second look", matches[1].ItemID))
	}

	ideas = append(ideas,
		"Add a neutral jacket to complete the outfit",
		"Perfect for a weekend outing",
	)
	return ideas
}

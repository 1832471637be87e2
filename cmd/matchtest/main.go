// Command matchtest scores a candidate garment against a wardrobe described
// in a JSON file and prints the ranking and outfit suggestions.
//
// Input format:
//
//	{
//	  "candidate": {"category": "shirt", "color_distribution": {"white": 100}, "season": ["summer"]},
//	  "wardrobe": [
//	    {"id": "p1", "attributes": {"category": "pants", "color_distribution": {"black": 100}, "season": ["all"]}}
//	  ]
//	}
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"thrift-matcher/internal/compat"
	"thrift-matcher/internal/garment"
	"thrift-matcher/internal/match"

	"github.com/goccy/go-json"
)

type input struct {
	Candidate garment.Attributes `json:"candidate"`
	Wardrobe  []garment.Record   `json:"wardrobe"`
}

func main() {
	path := flag.String("input", "", "Path to JSON file with candidate and wardrobe")
	threshold := flag.Float64("threshold", match.Threshold, "Minimum score (exclusive) for a match")
	limit := flag.Int("n", match.MaxResults, "Maximum number of matches")
	flag.Parse()

	if *path == "" {
		fmt.Println("Usage: matchtest -input <file.json> [-threshold 0.5] [-n 5]")
		os.Exit(1)
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read input: %v\n", err)
		os.Exit(1)
	}
	var in input
	if err := json.Unmarshal(data, &in); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse input: %v\n", err)
		os.Exit(1)
	}

	candidate, err := garment.NewAttributes(in.Candidate.Category, in.Candidate.Colors, in.Candidate.Seasons)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid candidate: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Candidate: %s, primary %s, seasons %v\n", candidate.Category, candidate.PrimaryColor(), candidate.Seasons)

	fmt.Printf("\nPairwise scores (%d items):\n", len(in.Wardrobe))
	fmt.Printf("%-12s %-10s %-10s %6s %5s %5s %6s\n", "ID", "Category", "Color", "Score", "Cat", "Col", "Season")
	fmt.Println(strings.Repeat("-", 62))
	for _, rec := range in.Wardrobe {
		res := compat.Score(candidate, rec.Attributes)
		fmt.Printf("%-12s %-10s %-10s %6.1f %5v %5v %6v\n",
			rec.ID, rec.Attributes.Category, rec.Attributes.PrimaryColor(),
			res.Score, res.Category, res.Color, res.Season)
	}

	ranker := match.NewRanker()
	ranker.Threshold = *threshold
	ranker.MaxResults = *limit

	ranking, err := ranker.Rank(candidate, in.Wardrobe)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ranking failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nMatches (%d):\n", len(ranking.Matches))
	for _, m := range ranking.Matches {
		fmt.Printf("  #%d %-12s %.1f\n", m.Rank, m.ItemID, m.Score)
	}

	fmt.Printf("\nOutfit ideas:\n")
	for _, s := range ranking.Suggestions {
		fmt.Printf("  - %s\n", s)
	}
}

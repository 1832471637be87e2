// Command colortest segments a garment photo and prints its color distribution.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"thrift-matcher/internal/analysis"
	"thrift-matcher/internal/colors"
	"thrift-matcher/internal/garment"
	"thrift-matcher/internal/segment"
)

func main() {
	imagePath := flag.String("image", "", "Path to garment photo (JPEG, PNG, WebP, TIFF or BMP)")
	margin := flag.Int("margin", segment.DefaultMargin, "Inset in pixels of the garment seed rectangle")
	k := flag.Int("k", colors.DefaultClusters, "Number of color clusters")
	iterations := flag.Int("iter", segment.DefaultIterations, "GrabCut iterations")
	maxDim := flag.Int("max", analysis.DefaultMaxDimension, "Longest side of the working image (0 keeps original)")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: colortest -image <path> [-margin 10] [-k 3] [-iter 5] [-max 800]")
		os.Exit(1)
	}

	data, err := os.ReadFile(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read image: %v\n", err)
		os.Exit(1)
	}

	img, err := analysis.Decode(data, *maxDim)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode image: %v\n", err)
		os.Exit(1)
	}
	bounds := img.Bounds()
	fmt.Printf("Loaded image: %dx%d pixels (%d bytes)\n", bounds.Dx(), bounds.Dy(), len(data))

	mat, err := segment.ImageToMat(img)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to convert image: %v\n", err)
		os.Exit(1)
	}
	defer mat.Close()

	params := segment.DefaultParams().WithMargin(*margin).WithIterations(*iterations)
	fmt.Printf("\nSegmentation parameters:\n")
	fmt.Printf("  Margin: %d px\n", params.Margin)
	fmt.Printf("  Iterations: %d\n", params.Iterations)

	mask, err := segment.Segment(mat, params)
	if err != nil && !errors.Is(err, garment.ErrEmptySegmentation) {
		fmt.Fprintf(os.Stderr, "Segmentation failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nForeground: %d of %d pixels (%.1f%%)\n",
		mask.Count(), mask.Width*mask.Height, 100*mask.Fraction())
	if mask.Empty() {
		fmt.Println("No garment found; distribution is unknown.")
		printDistribution(garment.UnknownDistribution())
		return
	}

	dist, err := colors.Extract(mat, mask, *k)
	if errors.Is(err, garment.ErrInsufficientSamples) {
		fmt.Printf("Fewer than %d distinct colors; retrying with k=1\n", *k)
		dist, err = colors.Extract(mat, mask, 1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Color extraction failed: %v\n", err)
		os.Exit(1)
	}

	printDistribution(dist)
}

func printDistribution(dist garment.ColorDistribution) {
	fmt.Printf("\n%-10s %8s\n", "Color", "Share")
	fmt.Println(strings.Repeat("-", 19))
	for _, name := range dist.Names() {
		fmt.Printf("%-10s %7.2f%%\n", name, dist[name])
	}
	fmt.Printf("\nPrimary: %s\n", dist.Primary())
	if s := dist.Secondary(); s != "" {
		fmt.Printf("Secondary: %s\n", s)
	}
}

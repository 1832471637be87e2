// Package colors derives a garment's named color distribution from its
// foreground pixels.
package colors

import (
	"fmt"

	"thrift-matcher/internal/garment"
	"thrift-matcher/internal/segment"
	"thrift-matcher/pkg/colorutil"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"
)

// DefaultClusters is the default k for dominant color extraction.
const DefaultClusters = 3

// ForegroundPixels collects the colors of all pixels the mask marks as
// foreground. img must be an 8-bit BGR Mat with the mask's dimensions.
func ForegroundPixels(img gocv.Mat, mask *segment.Mask) ([]colorutil.RGB, error) {
	if mask == nil {
		return nil, fmt.Errorf("colors: nil mask")
	}
	if img.Cols() != mask.Width || img.Rows() != mask.Height {
		return nil, fmt.Errorf("colors: image %dx%d does not match mask %dx%d",
			img.Cols(), img.Rows(), mask.Width, mask.Height)
	}
	if img.Channels() != 3 {
		return nil, fmt.Errorf("colors: expected 3-channel image, got %d", img.Channels())
	}

	src := img
	if !img.IsContinuous() {
		src = img.Clone()
		defer src.Close()
	}
	bgr := src.ToBytes()

	pixels := make([]colorutil.RGB, 0, mask.Count())
	for i, v := range mask.Pix {
		if v == 0 {
			continue
		}
		o := i * 3
		pixels = append(pixels, colorutil.FromBGR(bgr[o], bgr[o+1], bgr[o+2]))
	}
	return pixels, nil
}

// Distribution names each cluster center and sums cluster shares per name.
// Percentages are rounded to two decimals.
func Distribution(clusters []Cluster) garment.ColorDistribution {
	total := 0
	counts := make(map[garment.ColorName]int)
	for _, c := range clusters {
		if c.Count <= 0 {
			continue
		}
		counts[Name(c.Center)] += c.Count
		total += c.Count
	}

	dist := make(garment.ColorDistribution, len(counts))
	if total == 0 {
		return dist
	}
	for name, n := range counts {
		dist[name] = floats.Round(100*float64(n)/float64(total), 2)
	}
	return dist
}

// Extract clusters the foreground colors of img into k groups and returns the
// named distribution.
//
// An empty mask fails with garment.ErrEmptySegmentation; k larger than the
// number of distinct foreground colors fails with
// garment.ErrInsufficientSamples.
func Extract(img gocv.Mat, mask *segment.Mask, k int) (garment.ColorDistribution, error) {
	pixels, err := ForegroundPixels(img, mask)
	if err != nil {
		return nil, err
	}
	if len(pixels) == 0 {
		return nil, fmt.Errorf("colors: %w", garment.ErrEmptySegmentation)
	}

	clusters, err := KMeans(pixels, k)
	if err != nil {
		return nil, err
	}
	return Distribution(clusters), nil
}

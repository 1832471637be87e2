// Package analysis turns an uploaded garment photo into garment attributes:
// category from the classifier, color distribution from segmentation and
// clustering.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"thrift-matcher/internal/colors"
	"thrift-matcher/internal/garment"
	"thrift-matcher/internal/logging"
	"thrift-matcher/internal/metrics"
	"thrift-matcher/internal/segment"
)

// segmentImage is replaced in tests to pin the foreground mask.
var segmentImage = segment.Segment

// ExtractOptions controls color extraction from an encoded photo.
type ExtractOptions struct {
	Margin       int
	Iterations   int
	Clusters     int
	MaxDimension int
}

// DefaultExtractOptions returns the defaults used by the service.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		Margin:       segment.DefaultMargin,
		Iterations:   segment.DefaultIterations,
		Clusters:     colors.DefaultClusters,
		MaxDimension: DefaultMaxDimension,
	}
}

// ExtractColorDistribution decodes imageBytes, segments the garment with the
// given margin and clusters its colors into k groups.
//
// When segmentation finds no foreground the result is the single-entry
// {"unknown": 100} distribution together with an error wrapping
// garment.ErrEmptySegmentation. When the foreground has fewer distinct
// colors than k, extraction is retried once with k=1.
func ExtractColorDistribution(ctx context.Context, imageBytes []byte, margin, k int) (garment.ColorDistribution, error) {
	opts := DefaultExtractOptions()
	opts.Margin = margin
	opts.Clusters = k
	return Extract(ctx, imageBytes, opts)
}

// Extract is ExtractColorDistribution with full options.
func Extract(ctx context.Context, imageBytes []byte, opts ExtractOptions) (garment.ColorDistribution, error) {
	log := logging.Component("analysis")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	img, err := Decode(imageBytes, opts.MaxDimension)
	metrics.ObserveStage("decode", start)
	if err != nil {
		return nil, err
	}

	mat, err := segment.ImageToMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	params := segment.DefaultParams().WithMargin(opts.Margin).WithIterations(opts.Iterations)
	mask, err := segmentImage(mat, params)
	metrics.ObserveStage("segment", start)
	if errors.Is(err, garment.ErrEmptySegmentation) {
		return garment.UnknownDistribution(), err
	}
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("width", mask.Width).
		Int("height", mask.Height).
		Float64("foreground", mask.Fraction()).
		Msg("segmented garment")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	defer metrics.ObserveStage("extract", start)

	dist, err := colors.Extract(mat, mask, opts.Clusters)
	if errors.Is(err, garment.ErrInsufficientSamples) && opts.Clusters > 1 {
		log.Debug().Err(err).Int("k", opts.Clusters).Msg("retrying color extraction with a single cluster")
		metrics.AnalysisRetries.Inc()
		dist, err = colors.Extract(mat, mask, 1)
	}
	if errors.Is(err, garment.ErrEmptySegmentation) {
		return garment.UnknownDistribution(), err
	}
	if err != nil {
		return nil, fmt.Errorf("analysis: extract colors: %w", err)
	}
	return dist, nil
}

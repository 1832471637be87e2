package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"thrift-matcher/internal/classifier"
	"thrift-matcher/internal/garment"
	"thrift-matcher/internal/logging"
	"thrift-matcher/internal/metrics"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of analyzing one photo.
type Result struct {
	garment.Attributes
	Confidence float64 `json:"confidence"`
}

// Analyzer combines a category classifier with color extraction.
type Analyzer struct {
	classifier    classifier.Classifier
	extract       ExtractOptions
	minConfidence float64
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithExtractOptions overrides the color extraction options.
func WithExtractOptions(opts ExtractOptions) Option {
	return func(a *Analyzer) { a.extract = opts }
}

// WithMinConfidence sets the classifier confidence threshold in percent.
func WithMinConfidence(min float64) Option {
	return func(a *Analyzer) { a.minConfidence = min }
}

// NewAnalyzer creates an Analyzer around c. A nil c leaves only AnalyzeAs
// usable; Analyze then fails with classifier.ErrUnavailable.
func NewAnalyzer(c classifier.Classifier, opts ...Option) *Analyzer {
	a := &Analyzer{
		classifier:    c,
		extract:       DefaultExtractOptions(),
		minConfidence: classifier.MinConfidence,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze classifies the garment in image and extracts its colors
// concurrently.
//
// A classifier confidence below the threshold yields attributes with the
// "uncertain" category together with a *garment.LowConfidenceError, leaving
// the caller to decide whether to keep them. Segmentation and clustering
// failures are returned as-is; empty segmentation still carries the
// "unknown" color distribution. When both happen the errors are joined.
// Without a classifier, or when it cannot be reached, Analyze fails with
// classifier.ErrUnavailable.
func (a *Analyzer) Analyze(ctx context.Context, image []byte, seasons []garment.Season) (Result, error) {
	return a.analyze(ctx, image, "", seasons)
}

// AnalyzeAs is Analyze with a caller-supplied category; the classifier is
// not consulted.
func (a *Analyzer) AnalyzeAs(ctx context.Context, image []byte, category garment.Category, seasons []garment.Season) (Result, error) {
	if category == "" {
		return Result{}, fmt.Errorf("analysis: empty category override")
	}
	return a.analyze(ctx, image, category, seasons)
}

func (a *Analyzer) analyze(ctx context.Context, image []byte, category garment.Category, seasons []garment.Season) (Result, error) {
	log := logging.Component("analysis")

	if category == "" && a.classifier == nil {
		metrics.RecordAnalysisError(ErrorKind(classifier.ErrUnavailable))
		return Result{}, fmt.Errorf("analysis: no category override: %w", classifier.ErrUnavailable)
	}

	var (
		prediction = classifier.Prediction{Label: category, Confidence: 100}
		dist       garment.ColorDistribution
		extractErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	if category == "" {
		g.Go(func() error {
			start := time.Now()
			p, err := a.classifier.Classify(gctx, image)
			metrics.ObserveStage("classify", start)
			if err != nil {
				metrics.RecordClassifier("error")
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return fmt.Errorf("analysis: classify: %w", err)
				}
				return fmt.Errorf("analysis: classify: %w: %w", classifier.ErrUnavailable, err)
			}
			prediction = p
			return nil
		})
	}
	g.Go(func() error {
		d, err := Extract(gctx, image, a.extract)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		dist, extractErr = d, err
		return nil
	})
	if err := g.Wait(); err != nil {
		metrics.RecordAnalysisError(ErrorKind(err))
		return Result{}, err
	}

	if extractErr != nil {
		kind := ErrorKind(extractErr)
		metrics.RecordAnalysisError(kind)
		log.Warn().Err(extractErr).Str("kind", kind).Msg("color extraction failed")
		if dist == nil {
			return Result{}, extractErr
		}
	}

	confErr := classifier.CheckConfidence(prediction, a.minConfidence)
	var lowErr *garment.LowConfidenceError
	switch {
	case errors.As(confErr, &lowErr):
		metrics.RecordClassifier("low_confidence")
		log.Info().
			Str("label", string(lowErr.Label)).
			Float64("confidence", lowErr.Confidence).
			Msg("classifier below confidence threshold")
		category = garment.CategoryUncertain
	case confErr != nil:
		metrics.RecordClassifier("error")
		return Result{}, fmt.Errorf("analysis: %w", confErr)
	default:
		if category == "" {
			metrics.RecordClassifier("ok")
		}
		category = prediction.Label
	}

	attrs, err := garment.NewAttributes(category, dist, seasons)
	if err != nil {
		return Result{}, fmt.Errorf("analysis: %w", err)
	}
	res := Result{Attributes: attrs, Confidence: prediction.Confidence}

	if lowErr != nil {
		metrics.RecordAnalysisError(ErrorKind(lowErr))
	}
	switch {
	case extractErr != nil && lowErr != nil:
		return res, errors.Join(extractErr, lowErr)
	case extractErr != nil:
		return res, extractErr
	case lowErr != nil:
		return res, lowErr
	}
	return res, nil
}

// ErrorKind extends garment.Kind with the failures analysis itself adds.
func ErrorKind(err error) string {
	if kind := garment.Kind(err); kind != "" {
		return kind
	}
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUndecodableImage):
		return "undecodable_image"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, classifier.ErrUnavailable):
		return "classifier_unavailable"
	default:
		return "internal"
	}
}

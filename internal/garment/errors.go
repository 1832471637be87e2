package garment

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidImageGeometry means the image is too small for the assumed
	// garment region.
	ErrInvalidImageGeometry = errors.New("invalid image geometry")

	// ErrEmptySegmentation means no pixel was marked as foreground.
	ErrEmptySegmentation = errors.New("empty segmentation")

	// ErrInsufficientSamples means there are fewer distinct foreground colors
	// than requested clusters.
	ErrInsufficientSamples = errors.New("insufficient samples")

	// ErrLowConfidenceCategory means the classifier was not confident enough.
	ErrLowConfidenceCategory = errors.New("low confidence category")

	// ErrEmptyWardrobe means ranking was requested against no items.
	ErrEmptyWardrobe = errors.New("empty wardrobe")
)

// LowConfidenceError carries the rejected classifier output.
type LowConfidenceError struct {
	Label      Category
	Confidence float64
	Threshold  float64
}

func (e *LowConfidenceError) Error() string {
	return fmt.Sprintf("%s: %q at %.2f%% (need %.0f%%)", ErrLowConfidenceCategory, e.Label, e.Confidence, e.Threshold)
}

func (e *LowConfidenceError) Unwrap() error {
	return ErrLowConfidenceCategory
}

// Kind returns a short name for the engine error wrapped by err, or "" if err
// is not one of them. Used for metric labels and API error codes.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidImageGeometry):
		return "invalid_image_geometry"
	case errors.Is(err, ErrEmptySegmentation):
		return "empty_segmentation"
	case errors.Is(err, ErrInsufficientSamples):
		return "insufficient_samples"
	case errors.Is(err, ErrLowConfidenceCategory):
		return "low_confidence_category"
	case errors.Is(err, ErrEmptyWardrobe):
		return "empty_wardrobe"
	default:
		return ""
	}
}

// Package classifier talks to the external garment-category classifier.
package classifier

import (
	"context"
	"errors"
	"fmt"

	"thrift-matcher/internal/garment"
)

// MinConfidence is the lowest classifier confidence, in percent, accepted as a
// real category.
const MinConfidence = 60.0

// ErrUnavailable means no classifier is configured or reachable, so a
// category can only come from the caller.
var ErrUnavailable = errors.New("classifier unavailable")

// Labels is the label set of the pretrained garment classifier, in output
// order.
var Labels = []garment.Category{"dress", "jacket", "jeans", "shirt", "tshirt"}

// Prediction is a classifier output.
type Prediction struct {
	Label      garment.Category `json:"label"`
	Confidence float64          `json:"confidence"` // percent, 0-100
}

// Classifier maps a garment photo to a category.
type Classifier interface {
	Classify(ctx context.Context, image []byte) (Prediction, error)
}

// CheckConfidence returns a *garment.LowConfidenceError when p is below min.
func CheckConfidence(p Prediction, min float64) error {
	if p.Confidence < 0 || p.Confidence > 100 {
		return fmt.Errorf("classifier: confidence %.2f outside [0,100]", p.Confidence)
	}
	if p.Confidence < min {
		return &garment.LowConfidenceError{Label: p.Label, Confidence: p.Confidence, Threshold: min}
	}
	return nil
}

// Static always returns the same prediction. Used by tests and offline tools.
type Static struct {
	Prediction Prediction
}

// NewStatic returns a Static classifier reporting label with full confidence.
func NewStatic(label garment.Category) *Static {
	return &Static{Prediction: Prediction{Label: label, Confidence: 100}}
}

// Classify returns the fixed prediction.
func (s *Static) Classify(ctx context.Context, image []byte) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	return s.Prediction, nil
}

package classifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"thrift-matcher/internal/garment"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
)

// ConfidenceScale declares how a model server reports confidence.
type ConfidenceScale string

const (
	// ScaleProbability means confidence is in [0,1].
	ScaleProbability ConfidenceScale = "probability"

	// ScalePercent means confidence is in [0,100].
	ScalePercent ConfidenceScale = "percent"
)

// ErrConfidenceRange means the server reported a confidence outside its
// declared scale.
var ErrConfidenceRange = errors.New("confidence outside declared scale")

// HTTPClassifier posts images to a model server and reads back
// {"label": "...", "confidence": ...}.
type HTTPClassifier struct {
	url     string
	scale   ConfidenceScale
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[Prediction]
}

// HTTPOptions configures an HTTPClassifier.
type HTTPOptions struct {
	Timeout          time.Duration
	FailureThreshold uint32        // consecutive failures before the breaker opens
	OpenTimeout      time.Duration // how long the breaker stays open
	Scale            ConfidenceScale
}

// DefaultHTTPOptions returns the default client options.
func DefaultHTTPOptions() HTTPOptions {
	return HTTPOptions{
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		Scale:            ScaleProbability,
	}
}

// NewHTTPClassifier creates a client for the model server at url.
func NewHTTPClassifier(url string, opts HTTPOptions) *HTTPClassifier {
	threshold := opts.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	settings := gobreaker.Settings{
		Name:    "classifier",
		Timeout: opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	}
	scale := opts.Scale
	if scale == "" {
		scale = ScaleProbability
	}
	return &HTTPClassifier{
		url:     url,
		scale:   scale,
		client:  &http.Client{Timeout: opts.Timeout},
		breaker: gobreaker.NewCircuitBreaker[Prediction](settings),
	}
}

type predictionResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classify sends image to the model server.
func (c *HTTPClassifier) Classify(ctx context.Context, image []byte) (Prediction, error) {
	return c.breaker.Execute(func() (Prediction, error) {
		return c.classify(ctx, image)
	})
}

func (c *HTTPClassifier) classify(ctx context.Context, image []byte) (Prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(image))
	if err != nil {
		return Prediction{}, fmt.Errorf("classifier: build request: %w", err)
	}
	req.Header.Set("Content-Type", http.DetectContentType(image))

	resp, err := c.client.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("classifier: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Prediction{}, fmt.Errorf("classifier: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Prediction{}, fmt.Errorf("classifier: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var pr predictionResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return Prediction{}, fmt.Errorf("classifier: decode response: %w", err)
	}
	if pr.Label == "" {
		return Prediction{}, fmt.Errorf("classifier: response has no label")
	}

	confidence, err := c.percent(pr.Confidence)
	if err != nil {
		return Prediction{}, err
	}
	return Prediction{Label: garment.Category(pr.Label), Confidence: confidence}, nil
}

// percent converts a reported confidence to percent under the declared scale.
func (c *HTTPClassifier) percent(v float64) (float64, error) {
	switch c.scale {
	case ScaleProbability:
		if v < 0 || v > 1 {
			return 0, fmt.Errorf("classifier: %w: %v is not a probability", ErrConfidenceRange, v)
		}
		return v * 100, nil
	case ScalePercent:
		if v < 0 || v > 100 {
			return 0, fmt.Errorf("classifier: %w: %v is not a percentage", ErrConfidenceRange, v)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("classifier: unknown confidence scale %q", c.scale)
	}
}

package classifier

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"thrift-matcher/internal/garment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConfidence(t *testing.T) {
	assert.NoError(t, CheckConfidence(Prediction{Label: "shirt", Confidence: 60}, MinConfidence))
	assert.NoError(t, CheckConfidence(Prediction{Label: "shirt", Confidence: 99.1}, MinConfidence))

	err := CheckConfidence(Prediction{Label: "jeans", Confidence: 59.9}, MinConfidence)
	require.Error(t, err)
	assert.True(t, errors.Is(err, garment.ErrLowConfidenceCategory))

	var lce *garment.LowConfidenceError
	require.True(t, errors.As(err, &lce))
	assert.Equal(t, garment.Category("jeans"), lce.Label)

	err = CheckConfidence(Prediction{Label: "jeans", Confidence: 140}, MinConfidence)
	require.Error(t, err)
	assert.False(t, errors.Is(err, garment.ErrLowConfidenceCategory))
}

func TestStatic(t *testing.T) {
	p, err := NewStatic("dress").Classify(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, Prediction{Label: "dress", Confidence: 100}, p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewStatic("dress").Classify(ctx, nil)
	assert.Error(t, err)
}

func TestHTTPClassifier(t *testing.T) {
	tests := []struct {
		name    string
		scale   ConfidenceScale
		body    string
		want    Prediction
		wantErr error
	}{
		{"probability", ScaleProbability, `{"label":"jacket","confidence":0.875}`, Prediction{Label: "jacket", Confidence: 87.5}, nil},
		{"default scale is probability", "", `{"label":"dress","confidence":1}`, Prediction{Label: "dress", Confidence: 100}, nil},
		{"percent", ScalePercent, `{"label":"tshirt","confidence":72.5}`, Prediction{Label: "tshirt", Confidence: 72.5}, nil},
		{"percent keeps one percent", ScalePercent, `{"label":"shirt","confidence":1}`, Prediction{Label: "shirt", Confidence: 1}, nil},
		{"percent keeps half a percent", ScalePercent, `{"label":"shirt","confidence":0.5}`, Prediction{Label: "shirt", Confidence: 0.5}, nil},
		{"probability above one", ScaleProbability, `{"label":"shirt","confidence":72.5}`, Prediction{}, ErrConfidenceRange},
		{"percent above hundred", ScalePercent, `{"label":"shirt","confidence":140}`, Prediction{}, ErrConfidenceRange},
		{"negative", ScalePercent, `{"label":"shirt","confidence":-3}`, Prediction{}, ErrConfidenceRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []byte
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = io.ReadAll(r.Body)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			opts := DefaultHTTPOptions()
			opts.Scale = tt.scale
			c := NewHTTPClassifier(srv.URL, opts)
			p, err := c.Classify(context.Background(), []byte("image-bytes"))
			assert.Equal(t, []byte("image-bytes"), got)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestPercentScaleLowConfidenceIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"label":"jeans","confidence":1}`))
	}))
	defer srv.Close()

	opts := DefaultHTTPOptions()
	opts.Scale = ScalePercent
	p, err := NewHTTPClassifier(srv.URL, opts).Classify(context.Background(), []byte("x"))
	require.NoError(t, err)

	err = CheckConfidence(p, MinConfidence)
	assert.ErrorIs(t, err, garment.ErrLowConfidenceCategory)
}

func TestHTTPClassifierBreakerOpens(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewHTTPClassifier(srv.URL, HTTPOptions{Timeout: time.Second, FailureThreshold: 2, OpenTimeout: time.Minute})
	for i := 0; i < 4; i++ {
		_, err := c.Classify(context.Background(), []byte("x"))
		assert.Error(t, err)
	}
	assert.Equal(t, 2, calls, "breaker should stop calling the server once open")
}

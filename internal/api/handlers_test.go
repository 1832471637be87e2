package api

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"thrift-matcher/internal/analysis"
	"thrift-matcher/internal/garment"
	"thrift-matcher/internal/wardrobe"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fakePhoto = []byte("\x89PNG\r\n\x1a\nfake photo bytes")

type fakeAnalyzer struct {
	category   garment.Category
	colors     garment.ColorDistribution
	confidence float64
	err        error

	lastOverride garment.Category
	calls        int
}

func (f *fakeAnalyzer) result(category garment.Category, seasons []garment.Season) (analysis.Result, error) {
	f.calls++
	attrs, err := garment.NewAttributes(category, f.colors, seasons)
	if err != nil {
		return analysis.Result{}, err
	}
	return analysis.Result{Attributes: attrs, Confidence: f.confidence}, f.err
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, image []byte, seasons []garment.Season) (analysis.Result, error) {
	return f.result(f.category, seasons)
}

func (f *fakeAnalyzer) AnalyzeAs(ctx context.Context, image []byte, category garment.Category, seasons []garment.Season) (analysis.Result, error) {
	f.lastOverride = category
	return f.result(category, seasons)
}

func newFake(category garment.Category, color garment.ColorName) *fakeAnalyzer {
	return &fakeAnalyzer{
		category:   category,
		colors:     garment.ColorDistribution{color: 100},
		confidence: 90,
	}
}

func newTestServer(t *testing.T, fa *fakeAnalyzer, opts ...HandlerOption) (http.Handler, *wardrobe.MemoryStore) {
	t.Helper()
	store := wardrobe.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	cfg := DefaultMiddlewareConfig()
	cfg.RateLimitRequests = 0
	return NewRouter(NewHandler(fa, store, opts...), cfg), store
}

func multipartRequest(t *testing.T, path string, fields map[string]string, file []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("file", "garment.png")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func seedItem(t *testing.T, store wardrobe.Repository, userID string, category garment.Category, color garment.ColorName) wardrobe.Item {
	t.Helper()
	attrs, err := garment.NewAttributes(category, garment.ColorDistribution{color: 100}, nil)
	require.NoError(t, err)
	item := wardrobe.NewItem(userID, attrs, 95)
	require.NoError(t, store.Add(context.Background(), item, fakePhoto))
	return item
}

func TestRootAndHealth(t *testing.T) {
	h, _ := newTestServer(t, newFake("shirt", garment.ColorWhite))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Thrift Matcher API")
	assert.Contains(t, rec.Body.String(), `"version"`)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUploadListAndImage(t *testing.T) {
	h, _ := newTestServer(t, newFake("shirt", garment.ColorWhite))

	rec := serve(h, multipartRequest(t, "/wardrobe/upload", map[string]string{
		"user_id": "u1",
		"season":  "summer,spring",
	}, fakePhoto))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	up := decode[UploadResponse](t, rec)
	assert.True(t, up.Success)
	assert.Equal(t, "u1", up.Item.UserID)
	assert.Equal(t, garment.Category("shirt"), up.Item.Category)
	assert.Equal(t, garment.ColorWhite, up.Item.ColorPrimary)
	assert.Equal(t, []garment.Season{garment.SeasonSummer, garment.SeasonSpring}, up.Item.Seasons)
	assert.Equal(t, "/wardrobe/images/"+up.Item.ID, up.Item.ImageURL)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/wardrobe/u1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[WardrobeResponse](t, rec)
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, up.Item.ID, list.Items[0].ID)

	rec = serve(h, httptest.NewRequest(http.MethodGet, up.Item.ImageURL, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fakePhoto, rec.Body.Bytes())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}

func TestListEmptyWardrobe(t *testing.T) {
	h, _ := newTestServer(t, newFake("shirt", garment.ColorWhite))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/wardrobe/nobody", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[],"count":0}`, rec.Body.String())
}

func TestUploadValidation(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		file   []byte
	}{
		{"missing user", map[string]string{}, fakePhoto},
		{"missing file", map[string]string{"user_id": "u1"}, nil},
		{"unknown season", map[string]string{"user_id": "u1", "season": "monsoon"}, fakePhoto},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := newFake("shirt", garment.ColorWhite)
			h, _ := newTestServer(t, fa)

			rec := serve(h, multipartRequest(t, "/wardrobe/upload", tt.fields, tt.file))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "VALIDATION_ERROR", decode[ErrorResponse](t, rec).Code)
			assert.Zero(t, fa.calls)
		})
	}
}

func TestUploadAnalysisErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"empty segmentation", garment.ErrEmptySegmentation, http.StatusUnprocessableEntity, "EMPTY_SEGMENTATION"},
		{"tiny image", garment.ErrInvalidImageGeometry, http.StatusUnprocessableEntity, "INVALID_IMAGE_GEOMETRY"},
		{"not an image", analysis.ErrUndecodableImage, http.StatusBadRequest, "UNDECODABLE_IMAGE"},
		{"low confidence", &garment.LowConfidenceError{Label: "shirt", Confidence: 30, Threshold: 60}, http.StatusUnprocessableEntity, "LOW_CONFIDENCE_CATEGORY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := newFake("shirt", garment.ColorWhite)
			fa.err = tt.err
			h, store := newTestServer(t, fa)

			rec := serve(h, multipartRequest(t, "/wardrobe/upload", map[string]string{"user_id": "u1"}, fakePhoto))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decode[ErrorResponse](t, rec).Code)

			items, err := store.List(context.Background(), "u1")
			require.NoError(t, err)
			assert.Empty(t, items)
		})
	}
}

func TestUploadAllowUncertain(t *testing.T) {
	fa := newFake(garment.CategoryUncertain, garment.ColorBlue)
	fa.confidence = 35
	fa.err = &garment.LowConfidenceError{Label: "jacket", Confidence: 35, Threshold: 60}
	h, _ := newTestServer(t, fa, WithAllowUncertain(true))

	rec := serve(h, multipartRequest(t, "/wardrobe/upload", map[string]string{"user_id": "u1"}, fakePhoto))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, garment.CategoryUncertain, decode[UploadResponse](t, rec).Item.Category)
}

func TestUploadAllowUncertainKeepsExtractionFailure(t *testing.T) {
	fa := newFake(garment.CategoryUncertain, garment.ColorUnknown)
	fa.err = errors.Join(
		garment.ErrEmptySegmentation,
		&garment.LowConfidenceError{Label: "jacket", Confidence: 35, Threshold: 60},
	)
	h, store := newTestServer(t, fa, WithAllowUncertain(true))

	rec := serve(h, multipartRequest(t, "/wardrobe/upload", map[string]string{"user_id": "u1"}, fakePhoto))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "EMPTY_SEGMENTATION", decode[ErrorResponse](t, rec).Code)

	items, err := store.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

// redSquarePNG encodes a red square centered on a white canvas.
func redSquarePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			c := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			if x >= 30 && x < 70 && y >= 30 && y < 70 {
				c = color.NRGBA{R: 200, G: 20, B: 20, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadWithoutClassifier(t *testing.T) {
	store := wardrobe.NewMemoryStore()
	cfg := DefaultMiddlewareConfig()
	cfg.RateLimitRequests = 0
	h := NewRouter(NewHandler(analysis.NewAnalyzer(nil), store), cfg)
	photo := redSquarePNG(t)

	rec := serve(h, multipartRequest(t, "/wardrobe/upload", map[string]string{"user_id": "u1"}, photo))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "CLASSIFIER_UNAVAILABLE", decode[ErrorResponse](t, rec).Code)

	items, err := store.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, items, "nothing is stored without a real category")

	rec = serve(h, multipartRequest(t, "/match/thrift", map[string]string{"user_id": "u1"}, photo))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(h, multipartRequest(t, "/wardrobe/upload", map[string]string{
		"user_id":  "u1",
		"category": "pants",
	}, photo))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode[UploadResponse](t, rec).Item
	assert.Equal(t, garment.Category("pants"), item.Category)
	assert.Equal(t, garment.ColorRed, item.ColorPrimary)
}

func TestUploadCategoryOverride(t *testing.T) {
	fa := newFake("shirt", garment.ColorBlack)
	h, _ := newTestServer(t, fa)

	rec := serve(h, multipartRequest(t, "/wardrobe/upload", map[string]string{
		"user_id":  "u1",
		"category": "Pants",
	}, fakePhoto))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, garment.Category("pants"), fa.lastOverride)
	assert.Equal(t, garment.Category("pants"), decode[UploadResponse](t, rec).Item.Category)
}

func TestDeleteWardrobeItem(t *testing.T) {
	h, store := newTestServer(t, newFake("shirt", garment.ColorWhite))
	item := seedItem(t, store, "u1", "pants", garment.ColorBlack)

	rec := serve(h, httptest.NewRequest(http.MethodDelete, "/wardrobe/u2/"+item.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodDelete, "/wardrobe/u1/"+item.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodDelete, "/wardrobe/u1/"+item.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/wardrobe/images/"+item.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMatchThrift(t *testing.T) {
	h, store := newTestServer(t, newFake("shirt", garment.ColorRed))
	pants := seedItem(t, store, "u1", "pants", garment.ColorBlack)
	seedItem(t, store, "u1", "shirt", garment.ColorBlue) // season only, 0.2

	rec := serve(h, multipartRequest(t, "/match/thrift", map[string]string{"user_id": "u1"}, fakePhoto))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[MatchResponse](t, rec)
	assert.Equal(t, garment.Category("shirt"), resp.ThriftItem.Category)
	assert.Equal(t, garment.ColorRed, resp.ThriftItem.ColorPrimary)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, pants.ID, resp.Matches[0].ItemID)
	assert.Equal(t, pants.ID, resp.Matches[0].Item.ID)
	assert.Equal(t, 1, resp.Matches[0].Rank)
	assert.Equal(t, 1.0, resp.Matches[0].Score)
	assert.NotEmpty(t, resp.OutfitIdeas)
}

func TestMatchThriftNoMatches(t *testing.T) {
	h, store := newTestServer(t, newFake("shirt", garment.ColorRed))
	seedItem(t, store, "u1", "shirt", garment.ColorBlue)

	rec := serve(h, multipartRequest(t, "/match/thrift", map[string]string{"user_id": "u1", "season": "winter"}, fakePhoto))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[MatchResponse](t, rec)
	assert.Empty(t, resp.Matches)
	assert.Equal(t, []string{"No matches found. Try different items!"}, resp.OutfitIdeas)
}

func TestMatchThriftEmptyWardrobe(t *testing.T) {
	h, _ := newTestServer(t, newFake("shirt", garment.ColorWhite))

	rec := serve(h, multipartRequest(t, "/match/thrift", map[string]string{"user_id": "u1"}, fakePhoto))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "EMPTY_WARDROBE", decode[ErrorResponse](t, rec).Code)
}

func TestUploadTooLarge(t *testing.T) {
	h, _ := newTestServer(t, newFake("shirt", garment.ColorWhite), WithMaxUploadBytes(64))

	rec := serve(h, multipartRequest(t, "/wardrobe/upload", map[string]string{"user_id": "u1"}, bytes.Repeat([]byte("x"), 1024)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := DefaultMiddlewareConfig()
	cfg.RateLimitRequests = 1
	h := NewRouter(NewHandler(newFake("shirt", garment.ColorWhite), wardrobe.NewMemoryStore()), cfg)

	first := serve(h, httptest.NewRequest(http.MethodGet, "/wardrobe/u1", nil))
	second := serve(h, httptest.NewRequest(http.MethodGet, "/wardrobe/u1", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

// Package api serves the wardrobe and thrift matching HTTP endpoints.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"thrift-matcher/internal/analysis"
	"thrift-matcher/internal/compat"
	"thrift-matcher/internal/garment"
	"thrift-matcher/internal/logging"
	"thrift-matcher/internal/match"
	"thrift-matcher/internal/metrics"
	"thrift-matcher/internal/version"
	"thrift-matcher/internal/wardrobe"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// DefaultMaxUploadBytes caps multipart uploads.
const DefaultMaxUploadBytes = 16 << 20

// Analyzer extracts garment attributes from a photo.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, seasons []garment.Season) (analysis.Result, error)
	AnalyzeAs(ctx context.Context, image []byte, category garment.Category, seasons []garment.Season) (analysis.Result, error)
}

// Handler holds the dependencies of the HTTP endpoints.
type Handler struct {
	analyzer       Analyzer
	store          wardrobe.Repository
	matcher        *match.Service
	allowUncertain bool
	maxUploadBytes int64
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithAllowUncertain keeps low-confidence garments under the "uncertain"
// category instead of rejecting them.
func WithAllowUncertain(allow bool) HandlerOption {
	return func(h *Handler) { h.allowUncertain = allow }
}

// WithMaxUploadBytes sets the multipart body limit.
func WithMaxUploadBytes(n int64) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.maxUploadBytes = n
		}
	}
}

// WithMatcher replaces the match service built from the store.
func WithMatcher(m *match.Service) HandlerOption {
	return func(h *Handler) { h.matcher = m }
}

// NewHandler creates a Handler.
func NewHandler(analyzer Analyzer, store wardrobe.Repository, opts ...HandlerOption) *Handler {
	h := &Handler{
		analyzer:       analyzer,
		store:          store,
		matcher:        match.NewService(store),
		maxUploadBytes: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

type uploadForm struct {
	UserID   string           `validate:"required,max=128"`
	Seasons  []garment.Season `validate:"dive,oneof=all winter spring summer autumn"`
	Category garment.Category `validate:"omitempty,max=64"`
	Image    []byte           `validate:"required,min=1"`
}

// parseUpload reads the multipart fields shared by upload and match.
func (h *Handler) parseUpload(w http.ResponseWriter, r *http.Request) (uploadForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return uploadForm{}, fmt.Errorf("invalid multipart form: %w", err)
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return uploadForm{}, fmt.Errorf("missing file: %w", err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return uploadForm{}, fmt.Errorf("read file: %w", err)
	}

	form := uploadForm{
		UserID:   strings.TrimSpace(r.FormValue("user_id")),
		Seasons:  parseSeasons(r.MultipartForm.Value["season"]),
		Category: garment.Category(strings.ToLower(strings.TrimSpace(r.FormValue("category")))),
		Image:    data,
	}
	if err := getValidator().Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return uploadForm{}, fmt.Errorf("field %s failed %q", verrs[0].Field(), verrs[0].Tag())
		}
		return uploadForm{}, err
	}
	return form, nil
}

// parseSeasons accepts repeated and comma-separated season values.
func parseSeasons(values []string) []garment.Season {
	var out []garment.Season
	for _, v := range values {
		for _, s := range strings.Split(v, ",") {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				out = append(out, garment.Season(s))
			}
		}
	}
	return out
}

// analyze runs the analyzer and decides whether a low-confidence result is
// kept. ok is false when a response has already been written.
func (h *Handler) analyze(w http.ResponseWriter, r *http.Request, form uploadForm) (analysis.Result, bool) {
	var (
		res analysis.Result
		err error
	)
	if form.Category != "" {
		res, err = h.analyzer.AnalyzeAs(r.Context(), form.Image, form.Category, form.Seasons)
	} else {
		res, err = h.analyzer.Analyze(r.Context(), form.Image, form.Seasons)
	}

	var lowErr *garment.LowConfidenceError
	// Only a bare low-confidence result is kept; extraction failures win.
	if h.allowUncertain && garment.Kind(err) == "low_confidence_category" && errors.As(err, &lowErr) {
		logging.Info().
			Str("label", string(lowErr.Label)).
			Float64("confidence", lowErr.Confidence).
			Msg("keeping low-confidence garment as uncertain")
		return res, true
	}
	if err != nil {
		respondErr(w, err)
		return analysis.Result{}, false
	}
	return res, true
}

// Root reports the service name and version.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Thrift Matcher API",
		"version": version.Get(),
	})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UploadResponse is returned after a wardrobe item is stored.
type UploadResponse struct {
	Success bool          `json:"success"`
	Item    wardrobe.Item `json:"item"`
}

// UploadWardrobeItem analyzes a photo and stores it in the user's wardrobe.
func (h *Handler) UploadWardrobeItem(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseUpload(w, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), err)
		return
	}

	res, ok := h.analyze(w, r, form)
	if !ok {
		return
	}

	item := wardrobe.NewItem(form.UserID, res.Attributes, res.Confidence)
	err = h.store.Add(r.Context(), item, form.Image)
	metrics.RecordWardrobeOp("add", err)
	if err != nil {
		respondErr(w, fmt.Errorf("store wardrobe item: %w", err))
		return
	}

	logging.Info().
		Str("user_id", item.UserID).
		Str("item_id", item.ID).
		Str("category", string(item.Category)).
		Str("color", string(item.ColorPrimary)).
		Msg("wardrobe item stored")

	respondJSON(w, http.StatusCreated, UploadResponse{Success: true, Item: item})
}

// WardrobeResponse lists a user's items.
type WardrobeResponse struct {
	Items []wardrobe.Item `json:"items"`
	Count int             `json:"count"`
}

// ListWardrobe returns all items of a user.
func (h *Handler) ListWardrobe(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	items, err := h.store.List(r.Context(), userID)
	metrics.RecordWardrobeOp("list", err)
	if err != nil {
		respondErr(w, err)
		return
	}
	if items == nil {
		items = []wardrobe.Item{}
	}
	respondJSON(w, http.StatusOK, WardrobeResponse{Items: items, Count: len(items)})
}

// DeleteWardrobeItem removes one of a user's items.
func (h *Handler) DeleteWardrobeItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	itemID := chi.URLParam(r, "itemID")
	err := h.store.Delete(r.Context(), userID, itemID)
	metrics.RecordWardrobeOp("delete", err)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "id": itemID})
}

// WardrobeImage serves the stored photo of an item.
func (h *Handler) WardrobeImage(w http.ResponseWriter, r *http.Request) {
	data, err := h.store.Image(r.Context(), chi.URLParam(r, "itemID"))
	metrics.RecordWardrobeOp("image", err)
	if err != nil {
		respondErr(w, err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write image response")
	}
}

// ThriftItem describes the analyzed candidate garment.
type ThriftItem struct {
	Category       garment.Category          `json:"category"`
	Confidence     float64                   `json:"confidence"`
	Colors         garment.ColorDistribution `json:"color_distribution"`
	ColorPrimary   garment.ColorName         `json:"color_primary"`
	ColorSecondary garment.ColorName         `json:"color_secondary,omitempty"`
	Seasons        []garment.Season          `json:"season"`
}

// MatchView is a ranked wardrobe item with its stored details.
type MatchView struct {
	ItemID string        `json:"item_id"`
	Score  float64       `json:"score"`
	Rank   int           `json:"rank"`
	Detail compat.Result `json:"detail"`
	Item   wardrobe.Item `json:"item"`
}

// MatchResponse is returned by the thrift matching endpoint.
type MatchResponse struct {
	ThriftItem  ThriftItem  `json:"thrift_item"`
	Matches     []MatchView `json:"matches"`
	OutfitIdeas []string    `json:"outfit_ideas"`
}

// MatchThrift analyzes a thrift store photo and ranks the user's wardrobe
// against it.
func (h *Handler) MatchThrift(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseUpload(w, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), err)
		return
	}

	res, ok := h.analyze(w, r, form)
	if !ok {
		return
	}

	ranking, err := h.matcher.MatchForUser(r.Context(), form.UserID, res.Attributes)
	if err != nil {
		respondErr(w, err)
		return
	}

	views := make([]MatchView, 0, len(ranking.Matches))
	scores := make([]float64, 0, len(ranking.Matches))
	for _, m := range ranking.Matches {
		item, err := h.store.Get(r.Context(), m.ItemID)
		metrics.RecordWardrobeOp("get", err)
		if err != nil {
			respondErr(w, fmt.Errorf("load matched item: %w", err))
			return
		}
		views = append(views, MatchView{ItemID: m.ItemID, Score: m.Score, Rank: m.Rank, Detail: m.Detail, Item: item})
		scores = append(scores, m.Score)
	}
	metrics.RecordMatch(scores, len(views))

	respondJSON(w, http.StatusOK, MatchResponse{
		ThriftItem: ThriftItem{
			Category:       res.Category,
			Confidence:     res.Confidence,
			Colors:         res.Colors,
			ColorPrimary:   res.Colors.Primary(),
			ColorSecondary: res.Colors.Secondary(),
			Seasons:        res.Seasons,
		},
		Matches:     views,
		OutfitIdeas: ranking.Suggestions,
	})
}

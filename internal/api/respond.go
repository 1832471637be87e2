package api

import (
	"errors"
	"net/http"
	"strings"

	"thrift-matcher/internal/analysis"
	"thrift-matcher/internal/classifier"
	"thrift-matcher/internal/garment"
	"thrift-matcher/internal/logging"
	"thrift-matcher/internal/wardrobe"

	"github.com/goccy/go-json"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		ev := logging.Warn()
		if status >= http.StatusInternalServerError {
			ev = logging.Error()
		}
		ev.Err(err).Str("code", code).Int("status", status).Msg("API error")
	}
	respondJSON(w, status, ErrorResponse{Success: false, Code: code, Message: message})
}

// statusFor maps engine, analysis and storage failures to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, analysis.ErrUndecodableImage),
		errors.Is(err, garment.ErrEmptyWardrobe):
		return http.StatusBadRequest
	case errors.Is(err, wardrobe.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, garment.ErrInvalidImageGeometry),
		errors.Is(err, garment.ErrEmptySegmentation),
		errors.Is(err, garment.ErrInsufficientSamples),
		errors.Is(err, garment.ErrLowConfidenceCategory):
		return http.StatusUnprocessableEntity
	case errors.Is(err, classifier.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondErr writes err with the status and code derived from it.
func respondErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	code := "INTERNAL"
	message := "internal error"
	switch {
	case errors.Is(err, wardrobe.ErrNotFound):
		code, message = "NOT_FOUND", err.Error()
	case status != http.StatusInternalServerError:
		code, message = codeFor(err), err.Error()
	}
	respondError(w, status, code, message, err)
}

func codeFor(err error) string {
	return strings.ToUpper(analysis.ErrorKind(err))
}

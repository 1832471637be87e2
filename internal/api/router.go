package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the endpoints onto a chi router.
func NewRouter(h *Handler, cfg MiddlewareConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(cfg)) // global so OPTIONS preflight is answered
	r.Use(Instrument)

	r.Get("/", h.Root)
	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(RateLimit(cfg))

		r.Route("/wardrobe", func(r chi.Router) {
			r.Post("/upload", h.UploadWardrobeItem)
			r.Get("/images/{itemID}", h.WardrobeImage)
			r.Get("/{userID}", h.ListWardrobe)
			r.Delete("/{userID}/{itemID}", h.DeleteWardrobeItem)
		})
		r.Post("/match/thrift", h.MatchThrift)
	})

	return r
}

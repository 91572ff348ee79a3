package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds everything NewRouter wires together.
type RouterConfig struct {
	Predict     *PredictHandler
	Model       *ModelHandler
	RateLimiter *RateLimiter
	OnLimited   func()
	Gatherer    prometheus.Gatherer
	Logger      *slog.Logger
}

// NewRouter returns the HTTP API. Only /predict is rate limited.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recovery(cfg.Logger))
	r.Use(Logger(cfg.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(RateLimitMiddleware(cfg.RateLimiter, cfg.OnLimited))
		}
		r.Post("/predict", cfg.Predict.Predict)
	})
	r.Get("/predictions", cfg.Predict.Recent)
	r.Get("/model", cfg.Model.Describe)

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

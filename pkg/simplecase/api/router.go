package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"

	"github.com/tendant/simple-case/pkg/simplecase"
)

const defaultMaxBodyBytes = 1 << 20

// RouterConfig configures NewRouter
type RouterConfig struct {
	Logger *slog.Logger

	// TokenAuth enables bearer token checks on /api routes when set
	TokenAuth *jwtauth.JWTAuth

	// Metrics is mounted at /metrics when set
	Metrics http.Handler

	// MaxBodyBytes limits request bodies; zero means 1 MiB
	MaxBodyBytes int64

	// CacheMaxAge lets clients cache object, path and content responses
	// for this many seconds; zero disables it
	CacheMaxAge int
}

// NewRouter builds the HTTP surface of a case: health checks, optional
// metrics and the object API under /api/v1/objects.
func NewRouter(store *simplecase.Case, cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}

	r := chi.NewRouter()
	r.Use(
		RequestIDMiddleware,
		LoggingMiddleware(cfg.Logger),
		RecoveryMiddleware(cfg.Logger),
		RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
	)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, http.StatusText(http.StatusOK))
	})
	r.Get("/healthz/ready", func(w http.ResponseWriter, r *http.Request) {
		if store.Closed() {
			render.Status(r, http.StatusServiceUnavailable)
			render.PlainText(w, r, simplecase.ErrCaseClosed.Error())
			return
		}
		render.PlainText(w, r, http.StatusText(http.StatusOK))
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	handler := NewCaseHandler(store, cfg.Logger)
	handler.cacheMaxAge = cfg.CacheMaxAge
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.TokenAuth != nil {
			r.Use(jwtauth.Verifier(cfg.TokenAuth))
			r.Use(jwtauth.Authenticator)
		}
		r.Mount("/objects", handler.Routes())
	})
	return r
}

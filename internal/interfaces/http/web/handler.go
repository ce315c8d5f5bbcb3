// Package web serves the coffee map page and the JSON endpoints its script
// calls. Every UI endpoint answers with freshly rendered fragments plus the
// map model, so the browser holds no application state of its own.
package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sngm3741/coffee-map/internal/coffee/application"
	"github.com/sngm3741/coffee-map/internal/logger"
)

const defaultRequestTimeout = 15 * time.Second

// Handler wires the browser-facing endpoints to the ShopFinder.
type Handler struct {
	logger         logger.Logger
	finder         application.ShopFinder
	defaultZipCode string
	requestTimeout time.Duration
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger         logger.Logger
	Finder         application.ShopFinder
	DefaultZipCode string
	RequestTimeout time.Duration
}

// NewHandler constructs the web handler set.
func NewHandler(cfg Config) *Handler {
	h := &Handler{
		logger:         cfg.Logger,
		finder:         cfg.Finder,
		defaultZipCode: strings.TrimSpace(cfg.DefaultZipCode),
		requestTimeout: cfg.RequestTimeout,
	}
	if h.logger == nil {
		h.logger = logger.NewNoOpLogger()
	}
	if h.requestTimeout <= 0 {
		h.requestTimeout = defaultRequestTimeout
	}
	return h
}

// Register mounts the page, its script and the UI endpoints. Everything that
// touches session state goes through sessionMiddleware.
func (h *Handler) Register(r chi.Router, sessionMiddleware func(http.Handler) http.Handler) {
	r.Get("/static/app.js", h.scriptHandler())
	r.With(sessionMiddleware).Get("/", h.pageHandler())
	r.Route("/ui", func(r chi.Router) {
		r.Use(sessionMiddleware)
		r.Get("/state", h.stateHandler())
		r.Get("/search", h.searchHandler())
		r.Post("/filter", h.filterHandler())
		r.Post("/overflow", h.overflowHandler())
		r.Post("/select/{id}", h.selectHandler())
		r.Get("/shops/{id}", h.detailHandler())
	})
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sngm3741/coffee-map/internal/coffee/application"
	"github.com/sngm3741/coffee-map/internal/coffee/domain"
	"github.com/sngm3741/coffee-map/internal/config"
	"github.com/sngm3741/coffee-map/internal/infrastructure/coffeeapi"
	"github.com/sngm3741/coffee-map/internal/infrastructure/memory"
	mongostore "github.com/sngm3741/coffee-map/internal/infrastructure/mongo"
	redisstore "github.com/sngm3741/coffee-map/internal/infrastructure/redis"
	"github.com/sngm3741/coffee-map/internal/interfaces/http/common"
	"github.com/sngm3741/coffee-map/internal/interfaces/http/web"
	"github.com/sngm3741/coffee-map/internal/interfaces/http/web/render"
	"github.com/sngm3741/coffee-map/internal/logger"
	"github.com/sngm3741/coffee-map/internal/metrics"
)

const searchAreaLabel = "Search area"

// Server owns the HTTP lifecycle and is the composition root: it picks the
// session backend and wires the API client, the finder and the web handler.
type Server struct {
	logger          logger.Logger
	addr            string
	allowedOrigins  []string
	shutdownTimeout time.Duration

	sessions  application.SessionStore
	finder    application.ShopFinder
	webCookie *common.Sessions
	web       *web.Handler

	closers []func(context.Context) error
}

// New builds the Server from configuration, connecting to the configured
// session backend.
func New(ctx context.Context, cfg config.Config, log logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	srv := &Server{
		logger:          log,
		addr:            cfg.Addr,
		allowedOrigins:  append([]string(nil), cfg.AllowedOrigins...),
		shutdownTimeout: cfg.ShutdownTimeout,
	}

	if err := srv.openSessionStore(ctx, cfg); err != nil {
		return nil, err
	}

	api := coffeeapi.NewClient(coffeeapi.Config{
		BaseURL: cfg.UpstreamBaseURL,
		Timeout: cfg.UpstreamTimeout,
		Logger:  log.WithFields(map[string]interface{}{"component": "coffeeapi"}),
	})
	srv.assemble(cfg, api)
	return srv, nil
}

// assemble wires the use cases and handlers around an already opened store.
func (s *Server) assemble(cfg config.Config, api application.ShopAPI) {
	s.finder = application.NewShopFinder(application.FinderConfig{
		API:             api,
		Sessions:        s.sessions,
		Logger:          s.logger.WithFields(map[string]interface{}{"component": "finder"}),
		DefaultCenter:   domain.Position{Lat: cfg.DefaultCenterLat, Lng: cfg.DefaultCenterLng},
		SearchAreaLabel: searchAreaLabel,
		Callout:         render.RenderCallout,
	})
	s.webCookie = common.NewSessions(common.SessionConfig{
		Secret:     cfg.SessionSecret,
		Issuer:     cfg.SessionIssuer,
		TTL:        cfg.SessionTTL,
		CookieName: cfg.SessionCookieName,
		Secure:     cfg.SessionCookieSecure,
		Logger:     s.logger,
	})
	s.web = web.NewHandler(web.Config{
		Logger:         s.logger.WithFields(map[string]interface{}{"component": "web"}),
		Finder:         s.finder,
		DefaultZipCode: cfg.DefaultZipCode,
		RequestTimeout: cfg.UpstreamTimeout + 5*time.Second,
	})
}

func (s *Server) openSessionStore(ctx context.Context, cfg config.Config) error {
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		client := redisstore.NewClient(redisstore.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		s.sessions = redisstore.NewSessionStore(client, cfg.SessionTTL)
		s.closers = append(s.closers, func(context.Context) error { return client.Close() })
	case config.SessionBackendMongo:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.MongoTimeout)
		defer cancel()

		clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
		client, err := mongo.Connect(connectCtx, clientOptions)
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		store := mongostore.NewSessionStore(client, cfg.MongoDatabase, cfg.SessionCollection, cfg.SessionTTL)
		if err := store.EnsureIndexes(connectCtx); err != nil {
			s.logger.WithError(err).Warn("session index setup failed", nil)
		}
		s.sessions = store
		s.closers = append(s.closers, client.Disconnect)
	case config.SessionBackendMemory, "":
		s.sessions = memory.NewSessionStore(cfg.SessionTTL)
	default:
		return fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
	s.logger.Info("session store ready", map[string]interface{}{"backend": cfg.SessionBackend})
	return nil
}

// Routes builds the router with middleware, health, metrics and the web handler.
func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(s.logger))
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", s.healthHandler())
	router.Handle("/metrics", promhttp.Handler())
	s.web.Register(router, s.webCookie.Middleware)
	return router
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", map[string]interface{}{"addr": s.addr})
		errChan <- httpServer.ListenAndServe()
	}()

	return s.waitForShutdown(httpServer, errChan)
}

// requestLogger logs each request once it completes and counts it by route
// pattern so ids in paths do not blow up label cardinality.
func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()

			fields := map[string]interface{}{
				"method":     r.Method,
				"route":      route,
				"status":     status,
				"bytes":      ww.BytesWritten(),
				"durationMs": time.Since(started).Milliseconds(),
				"requestId":  middleware.GetReqID(r.Context()),
			}
			if status >= http.StatusInternalServerError {
				log.Warn("http request", fields)
				return
			}
			log.Debug("http request", fields)
		})
	}
}

// withCORS は許可されたオリジン情報をもとに CORS ヘッダーを付与するミドルウェアを返す。
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// originAllowed は指定された Origin が許可リストに含まれるか判定する。
// クッキーを伴うため、リストが空なら同一オリジン以外は許可しない。
func originAllowed(origin string, allowed map[string]struct{}) bool {
	_, ok := allowed[origin]
	return ok
}

// healthHandler はセッションストアへの疎通確認のみを返す。
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.sessions.Ping(ctx); err != nil {
			common.WriteJSON(s.logger, w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}

		common.WriteJSON(s.logger, w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

// shutdown closes backend connections with a timeout.
func (s *Server) shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for _, closeFn := range s.closers {
		if err := closeFn(shutdownCtx); err != nil {
			s.logger.WithError(err).Warn("session backend close failed", nil)
		}
	}
}

// waitForShutdown は ListenAndServe の終了と OS シグナルを監視し、graceful shutdown を実現する。
func (s *Server) waitForShutdown(httpServer *http.Server, errChan <-chan error) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("http server: %w", err)
		}
	case sig := <-sigChan:
		s.logger.Info("shutdown signal received", map[string]interface{}{"signal": sig.String()})
		timeout := s.shutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			s.logger.WithError(err).Warn("http server shutdown failed", nil)
		}
	}

	s.shutdown(context.Background())
	return runErr
}

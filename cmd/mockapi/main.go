// Command mockapi serves the sample Honolulu data set on the upstream search
// API paths so the web service can run without the real backend.
package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sngm3741/coffee-map/internal/infrastructure/coffeeapi"
	"github.com/sngm3741/coffee-map/internal/logger"
)

func main() {
	addr := flag.String("addr", ":5000", "listen address")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	log := logger.NewStructured(*logLevel, "console")

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Mount("/", coffeeapi.NewSampleHandler(coffeeapi.HonoluluShops))

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info("sample coffee api listening", map[string]interface{}{"addr": *addr, "shops": len(coffeeapi.HonoluluShops)})
	if err := httpServer.ListenAndServe(); err != nil {
		log.WithError(err).Error("sample coffee api stopped", nil)
		os.Exit(1)
	}
}

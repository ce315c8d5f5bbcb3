package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sngm3741/coffee-map/internal/config"
	"github.com/sngm3741/coffee-map/internal/logger"
	"github.com/sngm3741/coffee-map/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	zapLogger := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = zapLogger.Sync() }()
	log := logger.NewZapAdapter(zapLogger)

	app, err := server.New(context.Background(), cfg, log)
	if err != nil {
		log.WithError(err).Error("server setup failed", nil)
		os.Exit(1)
	}
	if err := app.Run(); err != nil {
		log.WithError(err).Error("server stopped with error", nil)
		os.Exit(1)
	}
}

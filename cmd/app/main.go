package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"QuoteLens/internal/di"
	"QuoteLens/pkg/config"
	applogger "QuoteLens/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}

	l.Info("starting quotelens",
		applogger.String("env", cfg.Environment),
		applogger.String("store", cfg.Store.Backend),
		applogger.String("quote_cache", cfg.Quotes.Cache.Backend),
		applogger.String("archive", cfg.Archive.Backend),
		applogger.Bool("live", cfg.Live.Enabled),
	)
	if cfg.IsDemoKey() {
		l.Warn("alpha vantage demo key in use; most symbols will be served from generated data")
	}

	app, cleanup, err := di.InitializeApp(cfg, l)
	if err != nil {
		l.Error("app initialization failed", applogger.Error(err))
		os.Exit(1)
	}

	err = app.Run(context.Background())
	cleanup()
	if err != nil {
		l.Error("app error", applogger.Error(err))
		os.Exit(1)
	}
}

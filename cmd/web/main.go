package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"moodboard-ai/internal/app"
	"moodboard-ai/internal/config"
	"moodboard-ai/internal/logging"
	"moodboard-ai/internal/web"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, closer := logging.New(logging.Options{
		Level:          cfg.LogLevel,
		FilePath:       cfg.LogFile.Path,
		FileMaxSizeMB:  cfg.LogFile.MaxSizeMB,
		FileMaxBackups: cfg.LogFile.MaxBackups,
		FileMaxAgeDays: cfg.LogFile.MaxAgeDays,
	})
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("init failed", "err", err)
		os.Exit(1)
	}

	s := web.New(web.Options{
		Text:           a.Text,
		Images:         a.Images,
		MaxImages:      cfg.MaxImages,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              cfg.WebAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("web started",
		"addr", cfg.WebAddr,
		"text_provider", cfg.TextProvider,
		"text_model", cfg.TextModel,
		"image_candidates", len(a.Images.Candidates()),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "err", err)
	}
	logger.Info("shutting down")
}

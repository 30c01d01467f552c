package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"scoreclock/internal/config"
	"scoreclock/internal/hub"
	"scoreclock/internal/httpapi"
	"scoreclock/internal/scoreboard"
	"scoreclock/internal/store"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()

	var st store.Store
	if cfg.DatabaseURL != "" {
		gs, err := store.OpenGorm(cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("opening database", zap.Error(err))
		}
		st = gs
	} else {
		logger.Warn("DATABASE_URL not set, session state will not survive restarts")
		st = store.NewMemory()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := hub.New(ctx, hub.Deps{
		Store: st,
		Defaults: scoreboard.Defaults{
			TimerSeconds:    cfg.TimerSeconds,
			SubTimerSeconds: cfg.SubTimerSeconds,
		},
		Logger:         logger,
		KeepAliveEvery: cfg.KeepAliveEvery,
		IdleAfter:      cfg.IdleAfter,
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(h, logger),
	}

	// Context cancellation tears down the hub and every session actor.
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	logger.Info("server listening", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

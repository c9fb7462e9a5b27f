package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"property-catalog/internal/app"
	"property-catalog/internal/cleanup"
	"property-catalog/internal/handlers"
	"property-catalog/internal/ratelimit"
	"property-catalog/internal/repository"
	"property-catalog/internal/scheduler"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, log, err := app.Bootstrap("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.Logging.Mode == "production" || cfg.Logging.Mode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	backend, err := app.OpenBackend(cfg.Database, log)
	if err != nil {
		log.Fatal("failed to open database", "error", err)
	}
	defer backend.Close()

	repo := repository.NewPropertyRepo(backend.Store, log)

	limiter := ratelimit.NewRateLimiter(cfg.RateLimit)
	log.Info("rate limiter initialized",
		"per_minute", cfg.RateLimit.RequestsPerMinute,
		"per_hour", cfg.RateLimit.RequestsPerHour,
		"enabled", cfg.RateLimit.Enabled)

	// Purge scheduler and admin API (GORM backends only)
	var adminHandler *handlers.AdminHandler
	if backend.GormDB != nil {
		svc := cleanup.NewService(backend.GormDB.DB(), log)
		sched := scheduler.NewScheduler(svc, cfg.Cleanup, log)
		if err := sched.Start(); err != nil {
			log.Warn("failed to start scheduler", "error", err)
		}
		defer sched.Stop()
		adminHandler = handlers.NewAdminHandler(svc, sched, log)
	} else {
		log.Info("admin API disabled", "database", backend.Type)
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Repo:           repo,
		Limiter:        limiter,
		Admin:          adminHandler,
		Log:            log,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Server.GetRequestTimeout(),
		LogRequests:    cfg.Logging.LogRequests,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
}

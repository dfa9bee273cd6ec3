package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/noah-isme/faculty-realloc-api/api/swagger"
	"github.com/noah-isme/faculty-realloc-api/internal/bootstrap"
	"github.com/noah-isme/faculty-realloc-api/internal/handler"
	"github.com/noah-isme/faculty-realloc-api/internal/router"
	"github.com/noah-isme/faculty-realloc-api/pkg/config"
	"github.com/noah-isme/faculty-realloc-api/pkg/logger"
)

// @title Faculty Reallocation API
// @version 1.0.0
// @description Proposes substitute instructors for the classes of an absent faculty member.
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := bootstrap.New(cfg, logr)
	if err != nil {
		logr.Fatal("bootstrap failed", zap.Error(err))
	}
	defer app.Close() //nolint:errcheck

	engine := router.New(router.Deps{
		Config:       cfg,
		Logger:       logr,
		Metrics:      app.Metrics,
		Tokens:       app.Tokens,
		Audit:        app.Audit,
		Reallocation: app.ReallocationHandler(),
		Observe:      handler.NewMetricsHandler(app.Metrics, app.ReadinessChecks()),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.Audit.Start(ctx)
	defer app.Audit.Stop()

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// Package bootstrap assembles the service graph shared by the API server and
// the operator CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-realloc-api/internal/handler"
	"github.com/noah-isme/faculty-realloc-api/internal/repository"
	"github.com/noah-isme/faculty-realloc-api/internal/service"
	"github.com/noah-isme/faculty-realloc-api/pkg/cache"
	"github.com/noah-isme/faculty-realloc-api/pkg/config"
	"github.com/noah-isme/faculty-realloc-api/pkg/database"
	"github.com/noah-isme/faculty-realloc-api/pkg/holidays"
)

// Container holds long-lived dependencies.
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	DB            *sqlx.DB
	Redis         *redis.Client
	Metrics       *service.MetricsService
	Tokens        *service.TokenService
	Audit         *service.AuditService
	Reallocations *service.ReallocationService
	Exports       *service.ExportService
}

// New connects to postgres and redis, applies migrations when configured and
// wires every service. Redis is optional: a connection failure disables
// caching and run locking instead of aborting.
func New(cfg *config.Config, logr *zap.Logger) (*Container, error) {
	if logr == nil {
		logr = zap.NewNop()
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if cfg.Migrations.AutoApply {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	rdb, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching and run locks disabled", zap.Error(err))
		rdb = nil
	}

	holidayDates, err := loadHolidays(cfg.Reallocation.HolidaysFile)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	var cacheRepo service.CacheRepository
	if rdb != nil {
		cacheRepo = repository.NewCacheRepository(rdb, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Reallocation.CacheTTL, logr, rdb != nil)

	reallocations := service.NewReallocationService(
		repository.NewFacultyRepository(db),
		repository.NewTimetableSlotRepository(db),
		repository.NewLeaveRequestRepository(db),
		repository.NewReallocationRepository(db),
		repository.NewRunLockRepository(rdb),
		db,
		cacheSvc,
		metrics,
		validate,
		logr,
		service.ReallocationConfig{
			RequireApprovedLeave: cfg.Reallocation.RequireApprovedLeave,
			BookingsAsConflict:   cfg.Reallocation.BookingsAsConflict,
			LockTTL:              cfg.Reallocation.LockTTL,
			CacheTTL:             cfg.Reallocation.CacheTTL,
			Holidays:             holidayDates,
		},
	)

	var exports *service.ExportService
	if cfg.Exports.Enabled {
		exports = service.NewExportService(reallocations, validate, logr)
	}

	logr.Info("service graph ready",
		zap.Bool("redis", rdb != nil),
		zap.Int("holidays", len(holidayDates)),
		zap.Bool("exports", exports != nil),
	)

	return &Container{
		Config:        cfg,
		Logger:        logr,
		DB:            db,
		Redis:         rdb,
		Metrics:       metrics,
		Tokens:        service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer, Expiry: cfg.JWT.Expiration}, logr),
		Audit:         service.NewAuditService(repository.NewAuditRepository(db), logr),
		Reallocations: reallocations,
		Exports:       exports,
	}, nil
}

// ReallocationHandler builds the HTTP handler over the container's services.
func (c *Container) ReallocationHandler() *handler.ReallocationHandler {
	if c.Exports == nil {
		return handler.NewReallocationHandler(c.Reallocations, nil)
	}
	return handler.NewReallocationHandler(c.Reallocations, c.Exports)
}

// ReadinessChecks returns the dependencies probed by /ready.
func (c *Container) ReadinessChecks() map[string]handler.Pinger {
	checks := map[string]handler.Pinger{"postgres": c.DB}
	if c.Redis != nil {
		checks["redis"] = handler.PingerFunc(func(ctx context.Context) error {
			return c.Redis.Ping(ctx).Err()
		})
	}
	return checks
}

// Close releases connections.
func (c *Container) Close() error {
	var errs []error
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}

func loadHolidays(path string) ([]time.Time, error) {
	calendar, err := holidays.Load(path)
	if err != nil {
		return nil, err
	}
	return calendar.Dates()
}

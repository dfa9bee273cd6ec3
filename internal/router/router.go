package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-realloc-api/internal/handler"
	internalmiddleware "github.com/noah-isme/faculty-realloc-api/internal/middleware"
	"github.com/noah-isme/faculty-realloc-api/internal/models"
	"github.com/noah-isme/faculty-realloc-api/internal/service"
	"github.com/noah-isme/faculty-realloc-api/pkg/config"
	appErrors "github.com/noah-isme/faculty-realloc-api/pkg/errors"
	"github.com/noah-isme/faculty-realloc-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/faculty-realloc-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/faculty-realloc-api/pkg/middleware/requestid"
	"github.com/noah-isme/faculty-realloc-api/pkg/response"
)

// Deps carries the collaborators the HTTP surface needs.
type Deps struct {
	Config       *config.Config
	Logger       *zap.Logger
	Metrics      *service.MetricsService
	Tokens       internalmiddleware.TokenValidator
	Audit        internalmiddleware.AuditWriter
	Reallocation *handler.ReallocationHandler
	Observe      *handler.MetricsHandler
}

var reviewerRoles = []models.UserRole{models.RoleHOD, models.RoleAdmin, models.RoleSuperAdmin}

// New builds the gin engine with middleware and every route registered.
func New(deps Deps) *gin.Engine {
	cfg := deps.Config
	logr := deps.Logger
	if logr == nil {
		logr = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.FromContext(logr, c).Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		response.Error(c, appErrors.ErrInternal)
		c.Abort()
	}))
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(deps.Metrics))

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
	})

	if deps.Observe != nil {
		r.GET("/health", deps.Observe.Health)
		r.GET("/ready", deps.Observe.Ready)
		r.GET("/metrics", deps.Observe.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	api := r.Group(prefix)
	api.Use(internalmiddleware.JWT(deps.Tokens))

	if deps.Observe != nil {
		api.GET("/metrics/snapshot", internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin), deps.Observe.Snapshot)
	}

	if deps.Reallocation == nil || !cfg.Reallocation.Enabled {
		api.POST("/reallocations/generate", featureDisabled)
		return r
	}

	reviewers := internalmiddleware.RequireRoles(reviewerRoles...)
	api.POST("/reallocations/generate",
		reviewers,
		internalmiddleware.Audit(deps.Audit, logr, models.AuditActionReallocationGenerate, "reallocations"),
		deps.Reallocation.Generate,
	)

	leaves := api.Group("/leave-requests/:id", reviewers)
	leaves.GET("/reallocations", deps.Reallocation.List)
	leaves.GET("/reallocations/export",
		internalmiddleware.Audit(deps.Audit, logr, models.AuditActionReallocationExport, "reallocations"),
		deps.Reallocation.Export,
	)

	return r
}

func featureDisabled(c *gin.Context) {
	response.Error(c, appErrors.New("FEATURE_DISABLED", http.StatusServiceUnavailable, "reallocation is disabled"))
}

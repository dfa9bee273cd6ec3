package router

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-realloc-api/internal/dto"
	"github.com/noah-isme/faculty-realloc-api/internal/handler"
	"github.com/noah-isme/faculty-realloc-api/internal/models"
	"github.com/noah-isme/faculty-realloc-api/internal/service"
	"github.com/noah-isme/faculty-realloc-api/pkg/config"
	appErrors "github.com/noah-isme/faculty-realloc-api/pkg/errors"
)

const generatePayload = `{"leaveRequestId":"leave-1","facultyId":"fac-1","startDate":"2024-06-03","endDate":"2024-06-04"}`

type headerRoleValidator struct{}

func (headerRoleValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	role := models.UserRole(token)
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return &models.JWTClaims{UserID: "user-" + token, Role: role}, nil
}

type generatorStub struct{}

func (generatorStub) Generate(ctx context.Context, req dto.ReallocateRequest) (*dto.ReallocateResponse, error) {
	return &dto.ReallocateResponse{Count: 2, Message: "Generated 2 reallocation suggestions"}, nil
}

func (generatorStub) ListByLeave(ctx context.Context, leaveRequestID string) ([]models.ReallocationSuggestionView, error) {
	return []models.ReallocationSuggestionView{}, nil
}

type auditSink struct {
	actions []string
}

func (a *auditSink) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.actions = append(a.actions, log.Action)
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{Env: "test", APIPrefix: "/api/v1"}
	cfg.Reallocation.Enabled = true
	return cfg
}

func buildRouter(cfg *config.Config, audit *auditSink) *gin.Engine {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	return New(Deps{
		Config:       cfg,
		Metrics:      metrics,
		Tokens:       headerRoleValidator{},
		Audit:        audit,
		Reallocation: handler.NewReallocationHandler(generatorStub{}, nil),
		Observe:      handler.NewMetricsHandler(metrics, nil),
	})
}

func performRequest(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoutesIntegration(t *testing.T) {
	audit := &auditSink{}
	router := buildRouter(testConfig(), audit)

	t.Run("health is public", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/health", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("generate unauthorized", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/reallocations/generate", bytes.NewBufferString(generatePayload))
		req.Header.Set("Content-Type", "application/json")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("generate forbidden for faculty", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/reallocations/generate", bytes.NewBufferString(generatePayload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+string(models.RoleFaculty))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("generate success for hod", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/reallocations/generate", bytes.NewBufferString(generatePayload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+string(models.RoleHOD))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"count":2`)
		require.NotEmpty(t, resp.Header().Get("X-Request-ID"))
	})

	t.Run("list for admin", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/leave-requests/leave-1/reallocations", nil)
		req.Header.Set("Authorization", "Bearer "+string(models.RoleAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("export disabled", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/leave-requests/leave-1/reallocations/export", nil)
		req.Header.Set("Authorization", "Bearer "+string(models.RoleSuperAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("unknown route", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/nope", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusNotFound, resp.Code)
		require.Contains(t, resp.Body.String(), `"NOT_FOUND"`)
	})

	require.Equal(t, []string{models.AuditActionReallocationGenerate}, audit.actions)
}

func TestGenerateDisabledByConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Reallocation.Enabled = false
	router := buildRouter(cfg, &auditSink{})

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/reallocations/generate", bytes.NewBufferString(generatePayload))
	req.Header.Set("Authorization", "Bearer "+string(models.RoleHOD))
	resp := performRequest(router, req)
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

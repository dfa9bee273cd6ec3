package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-realloc-api/internal/dto"
	internalmiddleware "github.com/noah-isme/faculty-realloc-api/internal/middleware"
	"github.com/noah-isme/faculty-realloc-api/internal/models"
	appErrors "github.com/noah-isme/faculty-realloc-api/pkg/errors"
	"github.com/noah-isme/faculty-realloc-api/pkg/response"
)

type reallocationGenerator interface {
	Generate(ctx context.Context, req dto.ReallocateRequest) (*dto.ReallocateResponse, error)
	ListByLeave(ctx context.Context, leaveRequestID string) ([]models.ReallocationSuggestionView, error)
}

type reallocationExporter interface {
	Export(ctx context.Context, query dto.ExportReallocationsQuery) (*dto.ExportFile, error)
}

// ReallocationHandler exposes substitute suggestion endpoints.
type ReallocationHandler struct {
	service  reallocationGenerator
	exporter reallocationExporter
}

// NewReallocationHandler constructs the handler. exporter may be nil when
// exports are disabled.
func NewReallocationHandler(svc reallocationGenerator, exporter reallocationExporter) *ReallocationHandler {
	return &ReallocationHandler{service: svc, exporter: exporter}
}

// Generate godoc
// @Summary Generate substitute suggestions for an absence
// @Description Scores every active instructor for each teaching-day occurrence of the absent instructor's slots and stores the best positive-scoring pick as a "suggested" reallocation. dryRun returns the plan without storing it.
// @Tags Reallocations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ReallocateRequest true "Reallocation payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /reallocations/generate [post]
func (h *ReallocationHandler) Generate(c *gin.Context) {
	var req dto.ReallocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reallocation payload"))
		return
	}
	c.Set(internalmiddleware.AuditResourceKey, req.LeaveRequestID)

	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List reallocation suggestions of a leave request
// @Tags Reallocations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Leave request ID"
// @Success 200 {object} response.Envelope
// @Router /leave-requests/{id}/reallocations [get]
func (h *ReallocationHandler) List(c *gin.Context) {
	items, err := h.service.ListByLeave(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil, map[string]interface{}{"total": len(items)})
}

// Export godoc
// @Summary Download reallocation suggestions of a leave request
// @Tags Reallocations
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path string true "Leave request ID"
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /leave-requests/{id}/reallocations/export [get]
func (h *ReallocationHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	query := dto.ExportReallocationsQuery{
		LeaveRequestID: c.Param("id"),
		Format:         dto.ExportFormat(c.DefaultQuery("format", string(dto.ExportFormatCSV))),
	}
	file, err := h.exporter.Export(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

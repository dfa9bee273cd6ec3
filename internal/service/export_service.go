package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-realloc-api/internal/dto"
	"github.com/noah-isme/faculty-realloc-api/internal/models"
	appErrors "github.com/noah-isme/faculty-realloc-api/pkg/errors"
	"github.com/noah-isme/faculty-realloc-api/pkg/export"
)

type reallocationLister interface {
	ListByLeave(ctx context.Context, leaveRequestID string) ([]models.ReallocationSuggestionView, error)
}

type tableRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

var dayNames = map[int]string{
	1: "Monday",
	2: "Tuesday",
	3: "Wednesday",
	4: "Thursday",
	5: "Friday",
	6: "Saturday",
	7: "Sunday",
}

var reallocationColumns = []export.Column{
	{Key: "date", Label: "Date", Width: 1.1},
	{Key: "day", Label: "Day", Width: 1.1},
	{Key: "period", Label: "Period", Width: 0.6},
	{Key: "subject", Label: "Subject", Width: 2},
	{Key: "section", Label: "Section", Width: 1},
	{Key: "original", Label: "Absent Faculty", Width: 1.6},
	{Key: "substitute", Label: "Substitute", Width: 1.6},
	{Key: "score", Label: "Score", Width: 0.6},
	{Key: "status", Label: "Status", Width: 0.9},
	{Key: "notes", Label: "Notes", Width: 2.2},
}

var exportContentTypes = map[dto.ExportFormat]string{
	dto.ExportFormatCSV:  "text/csv; charset=utf-8",
	dto.ExportFormatPDF:  "application/pdf",
	dto.ExportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ExportService renders a leave request's suggestions for download.
type ExportService struct {
	lister    reallocationLister
	renderers map[dto.ExportFormat]tableRenderer
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService with the csv, pdf and xlsx renderers.
func NewExportService(lister reallocationLister, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		lister: lister,
		renderers: map[dto.ExportFormat]tableRenderer{
			dto.ExportFormatCSV:  export.NewCSVExporter(),
			dto.ExportFormatPDF:  export.NewPDFExporter(),
			dto.ExportFormatXLSX: export.NewXLSXExporter("Reallocations"),
		},
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Export renders the suggestions of query.LeaveRequestID in query.Format.
func (s *ExportService) Export(ctx context.Context, query dto.ExportReallocationsQuery) (*dto.ExportFile, error) {
	if err := s.validator.Struct(query); err != nil {
		if query.LeaveRequestID != "" {
			return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", query.Format))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export query")
	}
	renderer, ok := s.renderers[query.Format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", query.Format))
	}

	views, err := s.lister.ListByLeave(ctx, query.LeaveRequestID)
	if err != nil {
		return nil, err
	}

	body, err := renderer.Render(s.buildDataset(query.LeaveRequestID, views))
	if err != nil {
		s.logger.Error("render reallocation export", zap.String("format", string(query.Format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &dto.ExportFile{
		Filename:    fmt.Sprintf("reallocations_%s_%s.%s", query.LeaveRequestID, s.now().UTC().Format("20060102"), query.Format),
		ContentType: exportContentTypes[query.Format],
		Body:        body,
	}, nil
}

func (s *ExportService) buildDataset(leaveRequestID string, views []models.ReallocationSuggestionView) export.Dataset {
	rows := make([]map[string]string, 0, len(views))
	for _, v := range views {
		subject := v.SubjectName
		if v.SubjectCode != "" {
			subject = fmt.Sprintf("%s %s", v.SubjectCode, v.SubjectName)
		}
		rows = append(rows, map[string]string{
			"date":       v.ReallocationDate.Format(dateLayout),
			"day":        dayNames[v.DayOfWeek],
			"period":     strconv.Itoa(v.PeriodNumber),
			"subject":    subject,
			"section":    v.Section,
			"original":   v.OriginalFacultyName,
			"substitute": v.SubstituteFacultyName,
			"score":      strconv.Itoa(v.Score),
			"status":     string(v.Status),
			"notes":      v.Notes,
		})
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Reallocation suggestions for leave %s", leaveRequestID),
		Columns: reallocationColumns,
		Rows:    rows,
	}
}

package dto

import "github.com/noah-isme/faculty-realloc-api/internal/models"

// ReallocateRequest asks for substitute suggestions covering an absence.
type ReallocateRequest struct {
	LeaveRequestID string `json:"leaveRequestId" validate:"required"`
	FacultyID      string `json:"facultyId" validate:"required"`
	StartDate      string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate        string `json:"endDate" validate:"required,datetime=2006-01-02"`
	// DryRun computes the plan without writing or locking.
	DryRun bool `json:"dryRun"`
}

// UnassignedOccurrence is a slot occurrence no candidate could cover.
type UnassignedOccurrence struct {
	TimetableSlotID string `json:"timetableSlotId"`
	Date            string `json:"date"`
	PeriodNumber    int    `json:"periodNumber"`
	BestScore       *int   `json:"bestScore,omitempty"`
}

// ReallocateResponse summarises a run.
type ReallocateResponse struct {
	Count        int                             `json:"count"`
	Skipped      int                             `json:"skipped"`
	TeachingDays int                             `json:"teachingDays"`
	Unassigned   []UnassignedOccurrence          `json:"unassigned"`
	Message      string                          `json:"message"`
	DryRun       bool                            `json:"dryRun,omitempty"`
	Suggestions  []models.ReallocationSuggestion `json:"suggestions,omitempty"`
}

// ExportFormat enumerates supported download formats.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// ExportReallocationsQuery selects a leave's suggestions for download.
type ExportReallocationsQuery struct {
	LeaveRequestID string       `validate:"required"`
	Format         ExportFormat `validate:"required,oneof=csv pdf xlsx"`
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-realloc-api/internal/models"
)

// TimetableSlotRepository reads the weekly timetable.
type TimetableSlotRepository struct {
	db *sqlx.DB
}

// NewTimetableSlotRepository constructs a TimetableSlotRepository.
func NewTimetableSlotRepository(db *sqlx.DB) *TimetableSlotRepository {
	return &TimetableSlotRepository{db: db}
}

const slotSelect = `SELECT s.id, s.day_of_week, s.period_number, s.subject_id, s.faculty_id, s.year_section_id, s.is_lab,
COALESCE(sub.department_id::text, '') AS subject_department_id, COALESCE(sub.is_lab, FALSE) AS subject_is_lab, s.created_at
FROM timetable_slots s
LEFT JOIN subjects sub ON sub.id = s.subject_id`

const slotOrder = ` ORDER BY s.day_of_week ASC, s.period_number ASC, s.created_at ASC, s.id ASC`

// ListByFaculty returns the weekly slots taught by facultyID.
func (r *TimetableSlotRepository) ListByFaculty(ctx context.Context, facultyID string) ([]models.TimetableSlot, error) {
	query := slotSelect + ` WHERE s.faculty_id = $1` + slotOrder
	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query, facultyID); err != nil {
		return nil, fmt.Errorf("list faculty slots: %w", err)
	}
	return slots, nil
}

// ListAssigned returns every slot that has an instructor. Used to detect
// weekday/period conflicts and daily load.
func (r *TimetableSlotRepository) ListAssigned(ctx context.Context) ([]models.TimetableSlot, error) {
	query := slotSelect + ` WHERE s.faculty_id IS NOT NULL` + slotOrder
	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list timetable slots: %w", err)
	}
	return slots, nil
}

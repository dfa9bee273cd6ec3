package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-realloc-api/internal/models"
)

// insertChunkSize keeps a single statement well below the postgres bind
// parameter limit.
const insertChunkSize = 500

// ReallocationRepository persists substitute suggestions.
type ReallocationRepository struct {
	db *sqlx.DB
}

// NewReallocationRepository constructs a ReallocationRepository.
func NewReallocationRepository(db *sqlx.DB) *ReallocationRepository {
	return &ReallocationRepository{db: db}
}

func (r *ReallocationRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListBookings returns every suggestion dated within [start, end] together with
// the period of the slot it covers. All statuses are returned; callers decide
// which ones occupy the substitute.
func (r *ReallocationRepository) ListBookings(ctx context.Context, start, end time.Time) ([]models.SuggestionBooking, error) {
	const query = `SELECT r.timetable_slot_id, COALESCE(r.substitute_faculty_id::text, '') AS substitute_faculty_id, r.reallocation_date, s.period_number, r.status
FROM reallocations r
JOIN timetable_slots s ON s.id = r.timetable_slot_id
WHERE r.reallocation_date BETWEEN $1 AND $2
ORDER BY r.reallocation_date ASC, s.period_number ASC`
	var bookings []models.SuggestionBooking
	if err := r.db.SelectContext(ctx, &bookings, query, start, end); err != nil {
		return nil, fmt.Errorf("list reallocation bookings: %w", err)
	}
	return bookings, nil
}

// BulkInsert writes suggestions with multi-row inserts. A suggestion for a slot
// occurrence that already exists is skipped; the returned count covers only
// rows actually inserted.
func (r *ReallocationRepository) BulkInsert(ctx context.Context, exec sqlx.ExtContext, suggestions []models.ReallocationSuggestion) (int, error) {
	if len(suggestions) == 0 {
		return 0, nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	inserted := 0
	for start := 0; start < len(suggestions); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(suggestions) {
			end = len(suggestions)
		}
		n, err := r.insertChunk(ctx, target, suggestions[start:end], now)
		if err != nil {
			return inserted, err
		}
		inserted += n
	}
	return inserted, nil
}

func (r *ReallocationRepository) insertChunk(ctx context.Context, target sqlx.ExtContext, chunk []models.ReallocationSuggestion, now time.Time) (int, error) {
	const columns = 11
	values := make([]string, 0, len(chunk))
	args := make([]interface{}, 0, len(chunk)*columns)
	for i := range chunk {
		s := &chunk[i]
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = s.CreatedAt
		}
		if s.Status == "" {
			s.Status = models.ReallocationStatusSuggested
		}
		placeholders := make([]string, columns)
		for c := 0; c < columns; c++ {
			placeholders[c] = fmt.Sprintf("$%d", len(args)+c+1)
		}
		values = append(values, "("+strings.Join(placeholders, ", ")+")")
		args = append(args, s.ID, s.LeaveRequestID, s.TimetableSlotID, s.OriginalFacultyID, s.SubstituteFacultyID,
			s.ReallocationDate, s.Score, s.Status, s.Notes, s.CreatedAt, s.UpdatedAt)
	}

	query := `INSERT INTO reallocations (id, leave_request_id, timetable_slot_id, original_faculty_id, substitute_faculty_id, reallocation_date, score, status, notes, created_at, updated_at)
VALUES ` + strings.Join(values, ", ") + `
ON CONFLICT (timetable_slot_id, reallocation_date) DO NOTHING
RETURNING id`

	rows, err := target.QueryxContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	inserted := 0
	for rows.Next() {
		inserted++
	}
	if err := rows.Err(); err != nil {
		return inserted, err
	}
	return inserted, nil
}

// ListByLeave returns the suggestions generated for a leave request joined
// with names for review and export.
func (r *ReallocationRepository) ListByLeave(ctx context.Context, leaveRequestID string) ([]models.ReallocationSuggestionView, error) {
	const query = `SELECT r.id, r.leave_request_id, r.timetable_slot_id, r.reallocation_date, s.day_of_week, s.period_number,
COALESCE(sub.code, '') AS subject_code, COALESCE(sub.name, '') AS subject_name,
COALESCE(ys.year::text || '-' || ys.section, '') AS section,
COALESCE(r.original_faculty_id::text, '') AS original_faculty_id, COALESCE(ofac.full_name, '') AS original_faculty_name,
COALESCE(r.substitute_faculty_id::text, '') AS substitute_faculty_id, COALESCE(sfac.full_name, '') AS substitute_faculty_name,
COALESCE(r.score, 0) AS score, r.status, COALESCE(r.notes, '') AS notes
FROM reallocations r
JOIN timetable_slots s ON s.id = r.timetable_slot_id
LEFT JOIN subjects sub ON sub.id = s.subject_id
LEFT JOIN years_sections ys ON ys.id = s.year_section_id
LEFT JOIN faculty ofac ON ofac.id = r.original_faculty_id
LEFT JOIN faculty sfac ON sfac.id = r.substitute_faculty_id
WHERE r.leave_request_id = $1
ORDER BY r.reallocation_date ASC, s.period_number ASC, r.id ASC`
	var views []models.ReallocationSuggestionView
	if err := r.db.SelectContext(ctx, &views, query, leaveRequestID); err != nil {
		return nil, fmt.Errorf("list reallocations by leave: %w", err)
	}
	return views, nil
}

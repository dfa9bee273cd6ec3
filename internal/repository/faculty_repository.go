package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-realloc-api/internal/models"
)

// FacultyRepository reads the faculty roster and expertise mapping.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository constructs a FacultyRepository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

const facultyCandidateQuery = `SELECT f.id, f.department_id, f.full_name, f.employee_id, f.email, f.designation,
f.is_active, f.is_hod, f.lab_qualified, f.max_periods_per_day,
COALESCE(array_agg(fs.subject_id::text ORDER BY fs.subject_id) FILTER (WHERE fs.subject_id IS NOT NULL), '{}') AS subject_ids
FROM faculty f
LEFT JOIN faculty_subjects fs ON fs.faculty_id = f.id
WHERE f.is_active = TRUE AND f.id <> $1
GROUP BY f.id
ORDER BY f.full_name ASC, f.id ASC`

// ListActiveCandidates returns every active faculty member except excludeID,
// each with the subject ids they are qualified to teach. Order is stable
// (name, then id) so ranking ties resolve the same way on every run.
func (r *FacultyRepository) ListActiveCandidates(ctx context.Context, excludeID string) ([]models.Faculty, error) {
	var faculty []models.Faculty
	if err := r.db.SelectContext(ctx, &faculty, facultyCandidateQuery, excludeID); err != nil {
		return nil, fmt.Errorf("list candidate faculty: %w", err)
	}
	return faculty, nil
}

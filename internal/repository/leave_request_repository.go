package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-realloc-api/internal/models"
)

// LeaveRequestRepository reads leave requests.
type LeaveRequestRepository struct {
	db *sqlx.DB
}

// NewLeaveRequestRepository constructs a LeaveRequestRepository.
func NewLeaveRequestRepository(db *sqlx.DB) *LeaveRequestRepository {
	return &LeaveRequestRepository{db: db}
}

// FindByID fetches a leave request. sql.ErrNoRows is returned untouched.
func (r *LeaveRequestRepository) FindByID(ctx context.Context, id string) (*models.LeaveRequest, error) {
	const query = `SELECT id, faculty_id, leave_type, reason, start_date, end_date, status, approved_by, created_at, updated_at FROM leave_requests WHERE id = $1`
	var leave models.LeaveRequest
	if err := r.db.GetContext(ctx, &leave, query, id); err != nil {
		return nil, err
	}
	return &leave, nil
}

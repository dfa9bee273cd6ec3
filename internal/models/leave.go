package models

import "time"

// LeaveStatus enumerates the leave request workflow states.
type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusRejected LeaveStatus = "rejected"
)

// LeaveRequest records an instructor's absence over an inclusive date range.
type LeaveRequest struct {
	ID         string      `db:"id" json:"id"`
	FacultyID  string      `db:"faculty_id" json:"faculty_id"`
	LeaveType  string      `db:"leave_type" json:"leave_type"`
	Reason     *string     `db:"reason" json:"reason,omitempty"`
	StartDate  time.Time   `db:"start_date" json:"start_date"`
	EndDate    time.Time   `db:"end_date" json:"end_date"`
	Status     LeaveStatus `db:"status" json:"status"`
	ApprovedBy *string     `db:"approved_by" json:"approved_by,omitempty"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"`
}

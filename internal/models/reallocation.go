package models

import "time"

// ReallocationStatus enumerates the review states of a suggestion.
type ReallocationStatus string

const (
	ReallocationStatusSuggested ReallocationStatus = "suggested"
	ReallocationStatusApproved  ReallocationStatus = "approved"
	ReallocationStatusRejected  ReallocationStatus = "rejected"
)

// ReallocationSuggestion proposes a substitute for one concrete occurrence of a slot.
type ReallocationSuggestion struct {
	ID                  string             `db:"id" json:"id"`
	LeaveRequestID      string             `db:"leave_request_id" json:"leave_request_id"`
	TimetableSlotID     string             `db:"timetable_slot_id" json:"timetable_slot_id"`
	OriginalFacultyID   string             `db:"original_faculty_id" json:"original_faculty_id"`
	SubstituteFacultyID string             `db:"substitute_faculty_id" json:"substitute_faculty_id"`
	ReallocationDate    time.Time          `db:"reallocation_date" json:"reallocation_date"`
	Score               int                `db:"score" json:"score"`
	Status              ReallocationStatus `db:"status" json:"status"`
	Notes               string             `db:"notes" json:"notes"`
	CreatedAt           time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time          `db:"updated_at" json:"updated_at"`
}

// SuggestionBooking is the slice of an existing suggestion the engine needs:
// which occurrence it covers and who is booked for it.
type SuggestionBooking struct {
	TimetableSlotID     string             `db:"timetable_slot_id"`
	SubstituteFacultyID string             `db:"substitute_faculty_id"`
	ReallocationDate    time.Time          `db:"reallocation_date"`
	PeriodNumber        int                `db:"period_number"`
	Status              ReallocationStatus `db:"status"`
}

// ReallocationSuggestionView is a suggestion joined with the names a reviewer reads.
type ReallocationSuggestionView struct {
	ID                    string             `db:"id" json:"id"`
	LeaveRequestID        string             `db:"leave_request_id" json:"leave_request_id"`
	TimetableSlotID       string             `db:"timetable_slot_id" json:"timetable_slot_id"`
	ReallocationDate      time.Time          `db:"reallocation_date" json:"reallocation_date"`
	DayOfWeek             int                `db:"day_of_week" json:"day_of_week"`
	PeriodNumber          int                `db:"period_number" json:"period_number"`
	SubjectCode           string             `db:"subject_code" json:"subject_code"`
	SubjectName           string             `db:"subject_name" json:"subject_name"`
	Section               string             `db:"section" json:"section"`
	OriginalFacultyID     string             `db:"original_faculty_id" json:"original_faculty_id"`
	OriginalFacultyName   string             `db:"original_faculty_name" json:"original_faculty_name"`
	SubstituteFacultyID   string             `db:"substitute_faculty_id" json:"substitute_faculty_id"`
	SubstituteFacultyName string             `db:"substitute_faculty_name" json:"substitute_faculty_name"`
	Score                 int                `db:"score" json:"score"`
	Status                ReallocationStatus `db:"status" json:"status"`
	Notes                 string             `db:"notes" json:"notes"`
}

package models

import "time"

// Weekday indices used by timetable_slots.day_of_week.
const (
	DayMonday    = 1
	DaySaturday  = 6
	DaySunday    = 7
	FirstWeekday = DayMonday
	LastWeekday  = DaySaturday
)

// TimetableSlot is a weekly recurring teaching commitment. The subject's
// owning department and lab flag are joined in for scoring.
type TimetableSlot struct {
	ID                  string    `db:"id" json:"id"`
	DayOfWeek           int       `db:"day_of_week" json:"day_of_week"`
	PeriodNumber        int       `db:"period_number" json:"period_number"`
	SubjectID           *string   `db:"subject_id" json:"subject_id,omitempty"`
	FacultyID           *string   `db:"faculty_id" json:"faculty_id,omitempty"`
	YearSectionID       *string   `db:"year_section_id" json:"year_section_id,omitempty"`
	IsLab               bool      `db:"is_lab" json:"is_lab"`
	SubjectDepartmentID string    `db:"subject_department_id" json:"subject_department_id,omitempty"`
	SubjectIsLab        bool      `db:"subject_is_lab" json:"subject_is_lab"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// IsPractical reports whether the slot requires a lab-qualified instructor.
func (s TimetableSlot) IsPractical() bool {
	return s.IsLab || s.SubjectIsLab
}

// Subject returns the subject id or an empty string.
func (s TimetableSlot) Subject() string {
	if s.SubjectID == nil {
		return ""
	}
	return *s.SubjectID
}

// Faculty returns the assigned faculty id or an empty string.
func (s TimetableSlot) Faculty() string {
	if s.FacultyID == nil {
		return ""
	}
	return *s.FacultyID
}

package models

import "github.com/lib/pq"

// Faculty is an instructor considered as a substitute candidate.
type Faculty struct {
	ID               string         `db:"id" json:"id"`
	DepartmentID     *string        `db:"department_id" json:"department_id,omitempty"`
	FullName         string         `db:"full_name" json:"full_name"`
	EmployeeID       string         `db:"employee_id" json:"employee_id"`
	Email            string         `db:"email" json:"email"`
	Designation      string         `db:"designation" json:"designation"`
	IsActive         bool           `db:"is_active" json:"is_active"`
	IsHOD            bool           `db:"is_hod" json:"is_hod"`
	LabQualified     bool           `db:"lab_qualified" json:"lab_qualified"`
	MaxPeriodsPerDay int            `db:"max_periods_per_day" json:"max_periods_per_day"`
	SubjectIDs       pq.StringArray `db:"subject_ids" json:"subject_ids"`
}

// Qualifies reports whether the faculty member is mapped to subjectID.
func (f Faculty) Qualifies(subjectID string) bool {
	if subjectID == "" {
		return false
	}
	for _, id := range f.SubjectIDs {
		if id == subjectID {
			return true
		}
	}
	return false
}

// InDepartment reports whether the faculty member belongs to departmentID.
// An empty department never matches.
func (f Faculty) InDepartment(departmentID string) bool {
	return departmentID != "" && f.DepartmentID != nil && *f.DepartmentID == departmentID
}

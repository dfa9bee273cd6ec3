package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-realloc-api/internal/models"
)

func sampleSuggestions(n int) []models.ReallocationSuggestion {
	out := make([]models.ReallocationSuggestion, 0, n)
	date := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		out = append(out, models.ReallocationSuggestion{
			LeaveRequestID:      "leave-1",
			TimetableSlotID:     "slot-1",
			OriginalFacultyID:   "fac-x",
			SubstituteFacultyID: "fac-a",
			ReallocationDate:    date.AddDate(0, 0, 7*i),
			Score:               105,
			Notes:               "Score: 105. Subject match: Yes",
		})
	}
	return out
}

func TestReallocationRepositoryBulkInsertCountsReturnedRows(t *testing.T) {
	db, mock, cleanup := newReallocRepoMock(t)
	defer cleanup()
	repo := NewReallocationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reallocations") + ".*" + regexp.QuoteMeta("ON CONFLICT (timetable_slot_id, reallocation_date) DO NOTHING")).
		WithArgs(
			sqlmock.AnyArg(), "leave-1", "slot-1", "fac-x", "fac-a", sqlmock.AnyArg(), 105, "suggested", "Score: 105. Subject match: Yes", sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), "leave-1", "slot-1", "fac-x", "fac-a", sqlmock.AnyArg(), 105, "suggested", "Score: 105. Subject match: Yes", sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("r-1"))

	suggestions := sampleSuggestions(2)
	inserted, err := repo.BulkInsert(context.Background(), nil, suggestions)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.NotEmpty(t, suggestions[0].ID)
	assert.Equal(t, models.ReallocationStatusSuggested, suggestions[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReallocationRepositoryBulkInsertChunks(t *testing.T) {
	db, mock, cleanup := newReallocRepoMock(t)
	defer cleanup()
	repo := NewReallocationRepository(db)

	first := sqlmock.NewRows([]string{"id"})
	for i := 0; i < insertChunkSize; i++ {
		first.AddRow("id")
	}
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reallocations")).WillReturnRows(first)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reallocations")).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("last"))

	inserted, err := repo.BulkInsert(context.Background(), nil, sampleSuggestions(insertChunkSize+1))
	require.NoError(t, err)
	assert.Equal(t, insertChunkSize+1, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReallocationRepositoryBulkInsertUsesTransaction(t *testing.T) {
	db, mock, cleanup := newReallocRepoMock(t)
	defer cleanup()
	repo := NewReallocationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reallocations")).
		WillReturnError(errors.New(`violates foreign key constraint "reallocations_timetable_slot_id_fkey"`))
	mock.ExpectRollback()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	_, err = repo.BulkInsert(context.Background(), tx, sampleSuggestions(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "foreign key")
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReallocationRepositoryBulkInsertEmpty(t *testing.T) {
	db, mock, cleanup := newReallocRepoMock(t)
	defer cleanup()
	repo := NewReallocationRepository(db)

	inserted, err := repo.BulkInsert(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReallocationRepositoryListBookings(t *testing.T) {
	db, mock, cleanup := newReallocRepoMock(t)
	defer cleanup()
	repo := NewReallocationRepository(db)

	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 6)
	rows := sqlmock.NewRows([]string{"timetable_slot_id", "substitute_faculty_id", "reallocation_date", "period_number", "status"}).
		AddRow("slot-1", "fac-a", start, 2, "suggested").
		AddRow("slot-2", "fac-b", start, 3, "rejected")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.reallocation_date BETWEEN $1 AND $2")).
		WithArgs(start, end).
		WillReturnRows(rows)

	bookings, err := repo.ListBookings(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, models.ReallocationStatusRejected, bookings[1].Status)
	assert.Equal(t, 2, bookings[0].PeriodNumber)
	assert.Equal(t, "slot-2", bookings[1].TimetableSlotID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReallocationRepositoryListByLeave(t *testing.T) {
	db, mock, cleanup := newReallocRepoMock(t)
	defer cleanup()
	repo := NewReallocationRepository(db)

	date := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "leave_request_id", "timetable_slot_id", "reallocation_date", "day_of_week", "period_number", "subject_code", "subject_name", "section", "original_faculty_id", "original_faculty_name", "substitute_faculty_id", "substitute_faculty_name", "score", "status", "notes"}).
		AddRow("r-1", "leave-1", "slot-1", date, 1, 2, "CS101", "Programming", "2-A", "fac-x", "Xavier", "fac-a", "Ada", 105, "suggested", "Score: 105. Subject match: Yes")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.leave_request_id = $1")).
		WithArgs("leave-1").
		WillReturnRows(rows)

	views, err := repo.ListByLeave(context.Background(), "leave-1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Ada", views[0].SubstituteFacultyName)
	assert.Equal(t, "2-A", views[0].Section)
	assert.NoError(t, mock.ExpectationsWereMet())
}

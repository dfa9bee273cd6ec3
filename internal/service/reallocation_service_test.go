package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-realloc-api/internal/dto"
	"github.com/noah-isme/faculty-realloc-api/internal/models"
	appErrors "github.com/noah-isme/faculty-realloc-api/pkg/errors"
)

type candidateReaderStub struct {
	items     []models.Faculty
	err       error
	excludeID string
}

func (s *candidateReaderStub) ListActiveCandidates(ctx context.Context, excludeID string) ([]models.Faculty, error) {
	s.excludeID = excludeID
	return s.items, s.err
}

type timetableReaderStub struct {
	byFaculty map[string][]models.TimetableSlot
	all       []models.TimetableSlot
	err       error
}

func (s *timetableReaderStub) ListByFaculty(ctx context.Context, facultyID string) ([]models.TimetableSlot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byFaculty[facultyID], nil
}

func (s *timetableReaderStub) ListAssigned(ctx context.Context) ([]models.TimetableSlot, error) {
	return s.all, s.err
}

type leaveReaderStub struct {
	leave *models.LeaveRequest
	err   error
}

func (s *leaveReaderStub) FindByID(ctx context.Context, id string) (*models.LeaveRequest, error) {
	return s.leave, s.err
}

type suggestionStoreStub struct {
	bookings  []models.SuggestionBooking
	inserted  []models.ReallocationSuggestion
	insertN   int
	insertErr error
	views     []models.ReallocationSuggestionView
	listCalls int
}

func (s *suggestionStoreStub) ListBookings(ctx context.Context, start, end time.Time) ([]models.SuggestionBooking, error) {
	return s.bookings, nil
}

func (s *suggestionStoreStub) BulkInsert(ctx context.Context, exec sqlx.ExtContext, suggestions []models.ReallocationSuggestion) (int, error) {
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.inserted = append(s.inserted, suggestions...)
	if s.insertN >= 0 {
		return s.insertN, nil
	}
	return len(suggestions), nil
}

func (s *suggestionStoreStub) ListByLeave(ctx context.Context, leaveRequestID string) ([]models.ReallocationSuggestionView, error) {
	s.listCalls++
	return s.views, nil
}

type runLockerStub struct {
	held     bool
	err      error
	acquired int
	released int
}

func (s *runLockerStub) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	if s.held {
		return nil, false, nil
	}
	s.acquired++
	return func(context.Context) error {
		s.released++
		return nil
	}, true, nil
}

type reallocFixture struct {
	svc       *ReallocationService
	store     *suggestionStoreStub
	locks     *runLockerStub
	leaves    *leaveReaderStub
	cacheRepo *memoryCacheRepo
	metrics   *MetricsService
	mock      sqlmock.Sqlmock
}

func newReallocFixture(t *testing.T, cfg ReallocationConfig) *reallocFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	absentSlot := engineSlot("slot-1", "absent", models.DayMonday, 2, "math", "dept-sci", false)
	timetable := &timetableReaderStub{
		byFaculty: map[string][]models.TimetableSlot{"absent": {absentSlot}},
		all:       []models.TimetableSlot{absentSlot},
	}
	candidates := &candidateReaderStub{items: []models.Faculty{
		engineFaculty("sub-a", "dept-sci", false, "math"),
		engineFaculty("sub-b", "", false),
	}}
	store := &suggestionStoreStub{insertN: -1}
	locks := &runLockerStub{}
	leaves := &leaveReaderStub{leave: &models.LeaveRequest{ID: "leave-1", FacultyID: "absent", Status: models.LeaveStatusApproved}}
	cacheRepo := newMemoryCacheRepo()
	metrics := NewMetricsService()
	cache := NewCacheService(cacheRepo, metrics, time.Minute, nil, true)

	svc := NewReallocationService(candidates, timetable, leaves, store, locks, sqlx.NewDb(db, "sqlmock"), cache, metrics, nil, nil, cfg)
	return &reallocFixture{svc: svc, store: store, locks: locks, leaves: leaves, cacheRepo: cacheRepo, metrics: metrics, mock: mock}
}

func reallocRequest() dto.ReallocateRequest {
	// 2024-06-03 is a Monday.
	return dto.ReallocateRequest{LeaveRequestID: "leave-1", FacultyID: "absent", StartDate: "2024-06-03", EndDate: "2024-06-04"}
}

func TestReallocationServiceGenerate(t *testing.T) {
	f := newReallocFixture(t, ReallocationConfig{BookingsAsConflict: true})
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.svc.Generate(context.Background(), reallocRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, 0, resp.Skipped)
	assert.Equal(t, 2, resp.TeachingDays)
	assert.Empty(t, resp.Unassigned)
	assert.Equal(t, "Generated 1 reallocation suggestions", resp.Message)

	require.Len(t, f.store.inserted, 1)
	got := f.store.inserted[0]
	assert.Equal(t, "sub-a", got.SubstituteFacultyID)
	assert.Equal(t, "absent", got.OriginalFacultyID)
	assert.Equal(t, date("2024-06-03"), got.ReallocationDate)
	assert.Equal(t, 85, got.Score)
	assert.Equal(t, models.ReallocationStatusSuggested, got.Status)
	assert.Equal(t, "Score: 85. Subject match: Yes", got.Notes)

	assert.Equal(t, 1, f.locks.acquired)
	assert.Equal(t, 1, f.locks.released)
	assert.Equal(t, []string{"reallocations:leave:leave-1:*"}, f.cacheRepo.deleted)
	assert.Equal(t, uint64(1), f.metrics.Snapshot().SuggestionsCreated)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestReallocationServiceGenerateCountsRowsSkippedByStore(t *testing.T) {
	f := newReallocFixture(t, ReallocationConfig{})
	f.store.insertN = 0
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.svc.Generate(context.Background(), reallocRequest())
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Count)
	assert.Equal(t, 1, resp.Skipped)
	assert.Equal(t, "Generated 0 reallocation suggestions", resp.Message)
}

func TestReallocationServiceGenerateSkipsCoveredOccurrences(t *testing.T) {
	f := newReallocFixture(t, ReallocationConfig{})
	f.store.bookings = []models.SuggestionBooking{{
		TimetableSlotID:     "slot-1",
		SubstituteFacultyID: "sub-a",
		ReallocationDate:    date("2024-06-03"),
		PeriodNumber:        2,
		Status:              models.ReallocationStatusRejected,
	}}

	resp, err := f.svc.Generate(context.Background(), reallocRequest())
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Count)
	assert.Equal(t, 1, resp.Skipped)
	assert.Empty(t, f.store.inserted)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestReallocationServiceGenerateNoSlots(t *testing.T) {
	f := newReallocFixture(t, ReallocationConfig{})
	req := reallocRequest()
	req.FacultyID = "nobody"

	resp, err := f.svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Count)
	assert.Equal(t, "No slots to reallocate", resp.Message)
	assert.NotNil(t, resp.Unassigned)
}

func TestReallocationServiceGenerateDryRun(t *testing.T) {
	f := newReallocFixture(t, ReallocationConfig{})
	req := reallocRequest()
	req.DryRun = true

	resp, err := f.svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.DryRun)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Suggestions, 1)
	assert.Empty(t, f.store.inserted)
	assert.Zero(t, f.locks.acquired)
	assert.Empty(t, f.cacheRepo.deleted)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestReallocationServiceGenerateValidation(t *testing.T) {
	f := newReallocFixture(t, ReallocationConfig{})

	_, err := f.svc.Generate(context.Background(), dto.ReallocateRequest{LeaveRequestID: "leave-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	req := reallocRequest()
	req.StartDate = "03/06/2024"
	_, err = f.svc.Generate(context.Background(), req)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestReallocationServiceGenerateLocked(t *testing.T) {
	f := newReallocFixture(t, ReallocationConfig{})
	f.locks.held = true

	_, err := f.svc.Generate(context.Background(), reallocRequest())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, 409, appErr.Status)
	assert.Empty(t, f.store.inserted)
}

func TestReallocationServiceGenerateLockErrorDegrades(t *testing.T) {
	f := newReallocFixture(t, ReallocationConfig{})
	f.locks.err = errors.New("redis down")
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.svc.Generate(context.Background(), reallocRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)
}

func TestReallocationServiceGeneratePersistenceFailureRollsBack(t *testing.T) {
	f := newReallocFixture(t, ReallocationConfig{})
	f.store.insertErr = errors.New("insert or update on table \"reallocations\" violates foreign key constraint")
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.Generate(context.Background(), reallocRequest())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPersistence.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "insert or update on table \"reallocations\" violates foreign key constraint", appErr.Message)
	assert.Empty(t, f.cacheRepo.deleted)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestReallocationServiceApprovedLeaveCheck(t *testing.T) {
	f := newReallocFixture(t, ReallocationConfig{RequireApprovedLeave: true})

	f.leaves.leave = &models.LeaveRequest{ID: "leave-1", FacultyID: "absent", Status: models.LeaveStatusPending}
	_, err := f.svc.Generate(context.Background(), reallocRequest())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrPreconditionFailed))

	f.leaves.leave = &models.LeaveRequest{ID: "leave-1", FacultyID: "someone-else", Status: models.LeaveStatusApproved}
	_, err = f.svc.Generate(context.Background(), reallocRequest())
	assert.True(t, appErrors.Is(err, appErrors.ErrPreconditionFailed))

	f.leaves.leave, f.leaves.err = nil, sql.ErrNoRows
	_, err = f.svc.Generate(context.Background(), reallocRequest())
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Zero(t, f.locks.acquired)
}

func TestReallocationServiceListByLeaveUsesCache(t *testing.T) {
	f := newReallocFixture(t, ReallocationConfig{CacheTTL: time.Minute})
	f.store.views = []models.ReallocationSuggestionView{{ID: "r-1", LeaveRequestID: "leave-1", SubstituteFacultyName: "Sub A"}}

	first, err := f.svc.ListByLeave(context.Background(), "leave-1")
	require.NoError(t, err)
	second, err := f.svc.ListByLeave(context.Background(), "leave-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.store.listCalls)
	assert.Equal(t, time.Minute, f.cacheRepo.setTTL)

	_, err = f.svc.ListByLeave(context.Background(), "")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-realloc-api/internal/dto"
	"github.com/noah-isme/faculty-realloc-api/internal/models"
	appErrors "github.com/noah-isme/faculty-realloc-api/pkg/errors"
)

const (
	dateLayout       = "2006-01-02"
	noSlotsMessage   = "No slots to reallocate"
	generatedMessage = "Generated %d reallocation suggestions"
)

type candidateReader interface {
	ListActiveCandidates(ctx context.Context, excludeID string) ([]models.Faculty, error)
}

type timetableReader interface {
	ListByFaculty(ctx context.Context, facultyID string) ([]models.TimetableSlot, error)
	ListAssigned(ctx context.Context) ([]models.TimetableSlot, error)
}

type leaveReader interface {
	FindByID(ctx context.Context, id string) (*models.LeaveRequest, error)
}

type suggestionStore interface {
	ListBookings(ctx context.Context, start, end time.Time) ([]models.SuggestionBooking, error)
	BulkInsert(ctx context.Context, exec sqlx.ExtContext, suggestions []models.ReallocationSuggestion) (int, error)
	ListByLeave(ctx context.Context, leaveRequestID string) ([]models.ReallocationSuggestionView, error)
}

type runLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// ReallocationConfig governs the calling layer around the engine.
type ReallocationConfig struct {
	RequireApprovedLeave bool
	BookingsAsConflict   bool
	LockTTL              time.Duration
	CacheTTL             time.Duration
	Holidays             []time.Time
}

// ReallocationService proposes substitutes for an absent instructor's classes
// and persists the proposals as reviewable suggestions.
type ReallocationService struct {
	candidates  candidateReader
	timetable   timetableReader
	leaves      leaveReader
	suggestions suggestionStore
	locks       runLocker
	tx          txProvider
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         ReallocationConfig
	now         func() time.Time
}

// NewReallocationService wires the engine's collaborators.
func NewReallocationService(
	candidates candidateReader,
	timetable timetableReader,
	leaves leaveReader,
	suggestions suggestionStore,
	locks runLocker,
	tx txProvider,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ReallocationConfig,
) *ReallocationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	return &ReallocationService{
		candidates:  candidates,
		timetable:   timetable,
		leaves:      leaves,
		suggestions: suggestions,
		locks:       locks,
		tx:          tx,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Generate computes a substitute for every teaching-day occurrence of the
// absent instructor's slots in the window and stores the picks as
// "suggested" rows in one transaction.
func (s *ReallocationService) Generate(ctx context.Context, req dto.ReallocateRequest) (*dto.ReallocateResponse, error) {
	started := s.now()

	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordReallocationRun(RunOutcomeValidation, time.Since(started), 0, 0, 0)
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reallocation payload")
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startDate must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must be YYYY-MM-DD")
	}

	if s.cfg.RequireApprovedLeave {
		if err := s.ensureApprovedLeave(ctx, req); err != nil {
			return nil, err
		}
	}

	if !req.DryRun && s.locks != nil {
		release, ok, lockErr := s.locks.Acquire(ctx, req.LeaveRequestID, s.cfg.LockTTL)
		switch {
		case lockErr != nil:
			s.logger.Warn("reallocation lock unavailable, continuing unlocked", zap.String("leave_request_id", req.LeaveRequestID), zap.Error(lockErr))
		case !ok:
			s.metrics.RecordReallocationRun(RunOutcomeLocked, time.Since(started), 0, 0, 0)
			return nil, appErrors.Clone(appErrors.ErrConflict, "a reallocation run for this leave request is already in progress")
		default:
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					s.logger.Warn("release reallocation lock", zap.String("leave_request_id", req.LeaveRequestID), zap.Error(err))
				}
			}()
		}
	}

	absentSlots, err := s.timetable.ListByFaculty(ctx, req.FacultyID)
	if err != nil {
		return nil, s.failed(started, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable slots"))
	}
	if len(absentSlots) == 0 {
		s.metrics.RecordReallocationRun(RunOutcomeNoWork, time.Since(started), 0, 0, 0)
		return &dto.ReallocateResponse{Unassigned: []dto.UnassignedOccurrence{}, Message: noSlotsMessage, DryRun: req.DryRun}, nil
	}

	candidates, err := s.candidates.ListActiveCandidates(ctx, req.FacultyID)
	if err != nil {
		return nil, s.failed(started, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidate faculty"))
	}
	allSlots, err := s.timetable.ListAssigned(ctx)
	if err != nil {
		return nil, s.failed(started, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable"))
	}
	bookings, err := s.suggestions.ListBookings(ctx, start, end)
	if err != nil {
		return nil, s.failed(started, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing suggestions"))
	}

	dates, err := expandTeachingDates(start, end, s.cfg.Holidays)
	if err != nil {
		return nil, s.failed(started, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to expand leave window"))
	}

	plan := buildSubstitutionPlan(planInput{
		LeaveRequestID:     req.LeaveRequestID,
		AbsentID:           req.FacultyID,
		Dates:              dates,
		AbsentSlots:        absentSlots,
		Candidates:         candidates,
		AllSlots:           allSlots,
		Bookings:           bookings,
		BookingsAsConflict: s.cfg.BookingsAsConflict,
	})

	resp := &dto.ReallocateResponse{
		TeachingDays: len(dates),
		Unassigned:   toUnassignedDTO(plan.Unassigned),
		DryRun:       req.DryRun,
	}

	if req.DryRun {
		resp.Count = len(plan.Suggestions)
		resp.Skipped = plan.Covered
		resp.Suggestions = plan.Suggestions
		resp.Message = fmt.Sprintf(generatedMessage, resp.Count)
		s.metrics.RecordReallocationRun(RunOutcomeDryRun, time.Since(started), 0, 0, len(plan.Unassigned))
		return resp, nil
	}

	inserted, err := s.persist(ctx, plan.Suggestions)
	if err != nil {
		return nil, s.failed(started, err)
	}

	resp.Count = inserted
	resp.Skipped = plan.Covered + len(plan.Suggestions) - inserted
	resp.Message = fmt.Sprintf(generatedMessage, inserted)

	s.cache.Invalidate(ctx, reallocationLeavePattern(req.LeaveRequestID))
	s.metrics.RecordReallocationRun(RunOutcomeCreated, time.Since(started), inserted, resp.Skipped, len(plan.Unassigned))
	s.logger.Info("reallocation suggestions generated",
		zap.String("leave_request_id", req.LeaveRequestID),
		zap.String("faculty_id", req.FacultyID),
		zap.Int("teaching_days", len(dates)),
		zap.Int("created", inserted),
		zap.Int("skipped", resp.Skipped),
		zap.Int("unassigned", len(plan.Unassigned)),
		zap.Duration("duration", time.Since(started)),
	)
	return resp, nil
}

// persist writes every suggestion in a single transaction; any store error
// rolls the whole run back and is reported with the store's own message.
func (s *ReallocationService) persist(ctx context.Context, suggestions []models.ReallocationSuggestion) (inserted int, err error) {
	if len(suggestions) == 0 {
		return 0, nil
	}
	if s.tx == nil {
		return 0, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, err.Error())
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	inserted, err = s.suggestions.BulkInsert(ctx, tx, suggestions)
	if err != nil {
		err = appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, err.Error())
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, err.Error())
		return 0, err
	}
	return inserted, nil
}

func (s *ReallocationService) ensureApprovedLeave(ctx context.Context, req dto.ReallocateRequest) error {
	if s.leaves == nil {
		return appErrors.Clone(appErrors.ErrInternal, "leave reader missing")
	}
	leave, err := s.leaves.FindByID(ctx, req.LeaveRequestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "leave request not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave request")
	}
	if leave.FacultyID != req.FacultyID {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "leave request belongs to a different faculty member")
	}
	if leave.Status != models.LeaveStatusApproved {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("leave request is %s, not approved", leave.Status))
	}
	return nil
}

func (s *ReallocationService) failed(started time.Time, err error) error {
	s.metrics.RecordReallocationRun(RunOutcomeFailed, time.Since(started), 0, 0, 0)
	s.logger.Error("reallocation run failed", zap.Error(err))
	return err
}

// ListByLeave returns the stored suggestions for a leave request.
func (s *ReallocationService) ListByLeave(ctx context.Context, leaveRequestID string) ([]models.ReallocationSuggestionView, error) {
	if leaveRequestID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "leave request id is required")
	}

	key := reallocationListKey(leaveRequestID)
	var cached []models.ReallocationSuggestionView
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	views, err := s.suggestions.ListByLeave(ctx, leaveRequestID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reallocations")
	}
	if views == nil {
		views = []models.ReallocationSuggestionView{}
	}
	s.cache.Set(ctx, key, views, s.cfg.CacheTTL)
	return views, nil
}

func toUnassignedDTO(items []unassignedOccurrence) []dto.UnassignedOccurrence {
	out := make([]dto.UnassignedOccurrence, 0, len(items))
	for _, item := range items {
		out = append(out, dto.UnassignedOccurrence{
			TimetableSlotID: item.SlotID,
			Date:            item.Date.Format(dateLayout),
			PeriodNumber:    item.Period,
			BestScore:       item.BestScore,
		})
	}
	return out
}

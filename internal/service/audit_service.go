package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/faculty-realloc-api/internal/models"
	"github.com/noah-isme/faculty-realloc-api/pkg/jobs"
)

type auditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AuditService writes audit entries on a background worker so request
// latency does not include the insert.
type AuditService struct {
	repo   auditRepository
	queue  *jobs.Queue[*models.AuditLog]
	logger *zap.Logger
}

// NewAuditService constructs the service. Call Start before use and Stop on
// shutdown to flush pending entries.
func NewAuditService(repo auditRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuditService{repo: repo, logger: logger}
	s.queue = jobs.NewQueue[*models.AuditLog]("audit", s.write, jobs.QueueConfig{Workers: 2, BufferSize: 256, Logger: logger})
	return s
}

// Start launches the workers.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop flushes buffered entries and stops the workers.
func (s *AuditService) Stop() {
	s.queue.Stop()
}

// CreateAuditLog queues log for writing. When the queue is stopped the entry
// is written inline; when it is full the entry is dropped with a warning.
func (s *AuditService) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	err := s.queue.Enqueue(log)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jobs.ErrQueueStopped):
		return s.write(ctx, log)
	default:
		s.logger.Warn("audit entry dropped", zap.String("action", log.Action), zap.Error(err))
		return err
	}
}

func (s *AuditService) write(ctx context.Context, log *models.AuditLog) error {
	return s.repo.CreateAuditLog(ctx, log)
}

package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-realloc-api/internal/models"
)

type auditRepoStub struct {
	mu      sync.Mutex
	actions []string
}

func (r *auditRepoStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, log.Action)
	return nil
}

func TestAuditServiceFlushesOnStop(t *testing.T) {
	repo := &auditRepoStub{}
	svc := NewAuditService(repo, nil)
	svc.Start(context.Background())

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.CreateAuditLog(context.Background(), &models.AuditLog{Action: models.AuditActionReallocationGenerate}))
	}
	svc.Stop()

	assert.Len(t, repo.actions, 5)
}

func TestAuditServiceWritesInlineWhenStopped(t *testing.T) {
	repo := &auditRepoStub{}
	svc := NewAuditService(repo, nil)

	require.NoError(t, svc.CreateAuditLog(context.Background(), &models.AuditLog{Action: models.AuditActionReallocationExport}))
	assert.Equal(t, []string{models.AuditActionReallocationExport}, repo.actions)
}

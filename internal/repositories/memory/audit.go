package memory

import (
	"context"
	"sync"
	"time"

	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/anonto42/campustrack/backend/internal/repositories"
)

// AuditRepository keeps audit entries in a slice
type AuditRepository struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

var _ repositories.AuditRepository = (*AuditRepository)(nil)

func (r *AuditRepository) Record(_ context.Context, entry *models.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.ID = uint(len(r.entries) + 1)
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

// List returns the most recent entries first
func (r *AuditRepository) List(_ context.Context, limit int) ([]models.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.AuditEntry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, r.entries[i])
	}
	return out, nil
}

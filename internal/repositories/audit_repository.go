package repositories

import (
	"context"
	"time"

	"github.com/anonto42/campustrack/backend/internal/models"
	"gorm.io/gorm"
)

// AuditRepository stores the moderation audit log
type AuditRepository interface {
	Record(ctx context.Context, entry *models.AuditEntry) error
	List(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

// PostgresAuditRepository implements AuditRepository for PostgreSQL
type PostgresAuditRepository struct {
	db *gorm.DB
}

// NewPostgresAuditRepository creates a new PostgresAuditRepository
func NewPostgresAuditRepository(db *gorm.DB) *PostgresAuditRepository {
	return &PostgresAuditRepository{db: db}
}

// Migrate creates or updates the audit_entries table
func (r *PostgresAuditRepository) Migrate() error {
	return r.db.AutoMigrate(&models.AuditEntry{})
}

// Record appends an entry
func (r *PostgresAuditRepository) Record(ctx context.Context, entry *models.AuditEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// List returns the most recent entries
func (r *PostgresAuditRepository) List(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	err := r.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&entries).Error
	return entries, err
}

// NoopAuditRepository discards entries. Used when no PostgreSQL URL is configured.
type NoopAuditRepository struct{}

func (NoopAuditRepository) Record(context.Context, *models.AuditEntry) error { return nil }

func (NoopAuditRepository) List(context.Context, int) ([]models.AuditEntry, error) {
	return []models.AuditEntry{}, nil
}

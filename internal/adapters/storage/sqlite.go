// Package storage implements ports.AuditRepository with GORM over
// SQLite: a thin GORM wrapper with WAL pragmas and AutoMigrate for the
// one audit-trail table this repository persists. The GORM model stays
// in this package; domain types carry no persistence tags.
package storage

import (
	"fmt"
	"time"

	"github.com/airgapwing/hidinject/internal/core/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AuditModel is the database representation of a domain.AuditEntry.
type AuditModel struct {
	ID              uint   `gorm:"primaryKey"`
	RunID           string `gorm:"index"`
	TaskKind        string
	Summary         string
	Succeeded       bool
	RetransmitsUsed int
	StartedAt       time.Time
	FinishedAt      time.Time `gorm:"index"`
}

// TableName keeps the table named after the domain record.
func (AuditModel) TableName() string { return "audit_entries" }

// SQLiteAuditStore implements ports.AuditRepository: it persists the
// trail of completed/failed task runs. The task queue itself stays
// unpersisted — this table records only what already finished running.
type SQLiteAuditStore struct {
	db *gorm.DB
}

// NewSQLiteAuditStore opens (creating if absent) the SQLite file at
// path and migrates the audit schema.
func NewSQLiteAuditStore(path string) (*SQLiteAuditStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&AuditModel{}); err != nil {
		return nil, fmt.Errorf("storage: migrate: %w", err)
	}

	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA busy_timeout=5000;")
	db.Exec("PRAGMA synchronous=NORMAL;")

	return &SQLiteAuditStore{db: db}, nil
}

// SaveAuditEntry inserts entry as a new row.
func (s *SQLiteAuditStore) SaveAuditEntry(entry domain.AuditEntry) error {
	model := toModel(entry)
	if err := s.db.Create(&model).Error; err != nil {
		return fmt.Errorf("storage: save audit entry: %w", err)
	}
	return nil
}

// ListAuditEntries returns the most recent limit entries, newest first.
// limit <= 0 means no cap.
func (s *SQLiteAuditStore) ListAuditEntries(limit int) ([]domain.AuditEntry, error) {
	var models []AuditModel
	q := s.db.Order("finished_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("storage: list audit entries: %w", err)
	}
	entries := make([]domain.AuditEntry, 0, len(models))
	for _, m := range models {
		entries = append(entries, toDomain(m))
	}
	return entries, nil
}

package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/airgapwing/hidinject/internal/core/domain"
)

func TestSQLiteAuditStore_SaveAndListOrdersNewestFirst(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	store, err := NewSQLiteAuditStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteAuditStore: %v", err)
	}

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []domain.AuditEntry{
		{RunID: "a", TaskKind: "delay", Succeeded: true, FinishedAt: base},
		{RunID: "b", TaskKind: "string", Succeeded: false, FinishedAt: base.Add(time.Hour)},
		{RunID: "c", TaskKind: "press", Succeeded: true, FinishedAt: base.Add(2 * time.Hour)},
	}
	for _, e := range entries {
		if err := store.SaveAuditEntry(e); err != nil {
			t.Fatalf("SaveAuditEntry(%s): %v", e.RunID, err)
		}
	}

	got, err := store.ListAuditEntries(0)
	if err != nil {
		t.Fatalf("ListAuditEntries: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3", len(got))
	}
	if got[0].RunID != "c" || got[1].RunID != "b" || got[2].RunID != "a" {
		t.Fatalf("unexpected order: %v", []string{got[0].RunID, got[1].RunID, got[2].RunID})
	}
}

func TestSQLiteAuditStore_ListLimit(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	store, err := NewSQLiteAuditStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteAuditStore: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := store.SaveAuditEntry(domain.AuditEntry{RunID: "x", TaskKind: "delay"}); err != nil {
			t.Fatalf("SaveAuditEntry: %v", err)
		}
	}

	got, err := store.ListAuditEntries(2)
	if err != nil {
		t.Fatalf("ListAuditEntries: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
}

package storage

import "github.com/airgapwing/hidinject/internal/core/domain"

// toModel converts a domain audit entry to its database model.
func toModel(e domain.AuditEntry) AuditModel {
	return AuditModel{
		RunID:           e.RunID,
		TaskKind:        e.TaskKind,
		Summary:         e.Summary,
		Succeeded:       e.Succeeded,
		RetransmitsUsed: e.RetransmitsUsed,
		StartedAt:       e.StartedAt,
		FinishedAt:      e.FinishedAt,
	}
}

// toDomain converts a database model back to a domain audit entry.
func toDomain(m AuditModel) domain.AuditEntry {
	return domain.AuditEntry{
		RunID:           m.RunID,
		TaskKind:        m.TaskKind,
		Summary:         m.Summary,
		Succeeded:       m.Succeeded,
		RetransmitsUsed: m.RetransmitsUsed,
		StartedAt:       m.StartedAt,
		FinishedAt:      m.FinishedAt,
	}
}

package domain

import "time"

// AuditEntry records one completed or failed task execution. It is not
// the task queue, which is never persisted — it is a forensic record of
// what the engine already ran, written once per task at the
// Succeeded/Failed transition.
type AuditEntry struct {
	RunID           string    `json:"run_id"`
	TaskKind        string    `json:"task_kind"`
	Summary         string    `json:"summary"`
	Succeeded       bool      `json:"succeeded"`
	RetransmitsUsed int       `json:"retransmits_used"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}

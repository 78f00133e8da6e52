package domain

import "errors"

// Errors surfaced synchronously from TaskBuffer.Push. Failures past the
// enqueue boundary (framing faults, retransmit budget exhaustion,
// provider exhaustion) reduce to a task-level Failed transition instead
// of a returned error — see engine.InjectionEngine.
var (
	// ErrNoSpace is returned by Push when the buffer's available capacity
	// cannot fit the task's header plus payload.
	ErrNoSpace = errors.New("task buffer: not enough space")

	// ErrTooLarge is returned by Push when the payload exceeds
	// MaxTaskPayload.
	ErrTooLarge = errors.New("task buffer: payload exceeds maximum task size")
)

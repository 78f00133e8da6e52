// Package engine implements the injection engine's core state machine: the
// byte-granular TaskBuffer ring, the string/combo PayloadProviders, and the
// InjectionEngine state machine that ties them to a radio and a timer.
package engine

import (
	"sync"

	"github.com/airgapwing/hidinject/internal/core/domain"
	"github.com/airgapwing/hidinject/internal/telemetry"
)

// TaskBuffer is a fixed-capacity circular byte log of encoded tasks: a
// domain.TaskHeaderLen header immediately followed by DataLen payload
// bytes, wrapping at domain.RingBufferSize. It exposes a consume cursor
// (advanced by Pop) and an independent peek cursor (advanced by Peek,
// restorable to the consume cursor by RewindPeek) so that list-without-
// consuming and peek-then-execute both work off one ring.
//
// size tracks bytes queued from the consume cursor to the write cursor,
// and peeked tracks bytes already walked past by Peek (always <= size):
// tracking byte counts rather than comparing raw cursor positions avoids
// the usual full-vs-empty ambiguity of a position-only ring.
//
// Push is called from the producer context (enqueue_* calls);
// Peek/Pop/RewindPeek/Flush are called from engine callbacks and also
// from the engine's public API (List, Clear, auto-start on enqueue or
// SetExecute) and the lifecycle teardown. The mutex below serializes all
// of these cursor updates; it is never held across a radio or timer
// call.
type TaskBuffer struct {
	mu      sync.Mutex
	buf     [domain.RingBufferSize]byte
	write   int // next free byte
	consume int // next unread byte, authoritative
	peek    int // next unread byte for Peek, peeked bytes ahead of consume
	size    int // bytes queued, measured from consume to write
	peeked  int // bytes between consume and peek, 0 <= peeked <= size
}

// NewTaskBuffer returns an empty, just-constructed buffer.
func NewTaskBuffer() *TaskBuffer {
	return &TaskBuffer{}
}

// Capacity reports available space for a future Push: domain.RingBufferSize
// minus the bytes currently queued.
func (b *TaskBuffer) Capacity() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return domain.RingBufferSize - b.size
}

// Push encodes task's header and payload and appends it to the ring. It
// fails with domain.ErrTooLarge when the payload exceeds
// domain.MaxTaskPayload, or domain.ErrNoSpace when the remaining capacity
// cannot hold header+payload; in both cases the buffer is left unchanged.
func (b *TaskBuffer) Push(task domain.Task) error {
	if len(task.Data) > domain.MaxTaskPayload {
		telemetry.TasksRejectedTotal.WithLabelValues("too_large").Inc()
		return domain.ErrTooLarge
	}
	need := domain.TaskHeaderLen + len(task.Data)

	b.mu.Lock()
	defer b.mu.Unlock()

	if need > domain.RingBufferSize-b.size {
		telemetry.TasksRejectedTotal.WithLabelValues("no_space").Inc()
		return domain.ErrNoSpace
	}

	var hdr [domain.TaskHeaderLen]byte
	task.EncodeHeader(hdr[:])
	b.writeBytes(hdr[:])
	b.writeBytes(task.Data)
	b.size += need
	telemetry.TasksEnqueuedTotal.WithLabelValues(task.Kind.String()).Inc()
	return nil
}

// writeBytes copies p into the ring starting at b.write, wrapping as
// needed, and advances b.write. Caller holds b.mu.
func (b *TaskBuffer) writeBytes(p []byte) {
	n := copy(b.buf[b.write:], p)
	if n < len(p) {
		copy(b.buf[0:], p[n:])
	}
	b.write = (b.write + len(p)) % domain.RingBufferSize
}

// readBytes copies len(out) bytes starting at from into out, wrapping as
// needed. Caller holds b.mu.
func (b *TaskBuffer) readBytes(from int, out []byte) {
	n := copy(out, b.buf[from:])
	if n < len(out) {
		copy(out[n:], b.buf[0:])
	}
}

// decodeAt decodes the task starting at cursor, which has `available`
// queued bytes ahead of it, without mutating any cursor. scratch must
// have length >= domain.TaskScratchBufferSize. It returns the decoded
// task (Data aliasing scratch), the number of bytes consumed by this
// task's header+payload, and whether a framing fault was detected.
// Caller holds b.mu.
func (b *TaskBuffer) decodeAt(cursor, available int, scratch []byte) (domain.Task, int, bool) {
	if available < domain.TaskHeaderLen {
		return domain.Task{}, 0, true
	}
	var hdr [domain.TaskHeaderLen]byte
	b.readBytes(cursor, hdr[:])
	task := domain.DecodeHeader(hdr[:])

	if int(task.DataLen) > available-domain.TaskHeaderLen || int(task.DataLen) > len(scratch) {
		return domain.Task{}, 0, true
	}
	if task.DataLen > 0 {
		payloadAt := (cursor + domain.TaskHeaderLen) % domain.RingBufferSize
		b.readBytes(payloadAt, scratch[:task.DataLen])
		task.Data = scratch[:task.DataLen]
	} else {
		task.Data = nil
	}
	return task, domain.TaskHeaderLen + int(task.DataLen), false
}

// Peek copies the next task after the peek cursor into scratch without
// advancing the consume cursor, then advances the peek cursor past it.
// It returns false when the buffer (from the peek cursor onward) is
// empty, or on a framing fault — in the latter case the entire buffer is
// flushed first. scratch must have length >= domain.TaskScratchBufferSize.
func (b *TaskBuffer) Peek(scratch []byte) (domain.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	available := b.size - b.peeked
	if available == 0 {
		return domain.Task{}, false
	}
	task, consumed, fault := b.decodeAt(b.peek, available, scratch)
	if fault {
		b.flushLocked()
		return domain.Task{}, false
	}
	b.peek = (b.peek + consumed) % domain.RingBufferSize
	b.peeked += consumed
	return task, true
}

// Pop is like Peek but also advances the consume cursor, retiring the
// task from the queue. Pop always reads the oldest queued task — any
// lookahead recorded by prior Peek calls is discarded first, matching
// RewindPeek.
func (b *TaskBuffer) Pop(scratch []byte) (domain.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.peek = b.consume
	b.peeked = 0

	if b.size == 0 {
		return domain.Task{}, false
	}
	task, consumed, fault := b.decodeAt(b.consume, b.size, scratch)
	if fault {
		b.flushLocked()
		return domain.Task{}, false
	}
	b.consume = (b.consume + consumed) % domain.RingBufferSize
	b.peek = b.consume
	b.size -= consumed
	b.peeked = 0
	return task, true
}

// RewindPeek snaps the peek cursor back to the consume cursor, discarding
// any lookahead from prior Peek calls.
func (b *TaskBuffer) RewindPeek() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.peek = b.consume
	b.peeked = 0
}

// Flush resets both cursors and discards all queued tasks, returning the
// buffer to its just-constructed state.
func (b *TaskBuffer) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushLocked()
}

func (b *TaskBuffer) flushLocked() {
	b.write = 0
	b.consume = 0
	b.peek = 0
	b.size = 0
	b.peeked = 0
}

package engine

import (
	"testing"

	"github.com/airgapwing/hidinject/internal/core/domain"
)

func TestTaskBuffer_PushListOrder(t *testing.T) {
	b := NewTaskBuffer()
	want := []domain.Task{
		domain.NewDelayTask(100),
		domain.NewStringTaskFrom(domain.LangUS, "hi"),
		domain.NewComboTaskFrom(domain.LangUS, "GUI+L"),
	}
	for _, task := range want {
		if err := b.Push(task); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}

	scratch := make([]byte, domain.TaskScratchBufferSize)
	for i, w := range want {
		got, ok := b.Peek(scratch)
		if !ok {
			t.Fatalf("Peek %d: empty", i)
		}
		if got.Kind != w.Kind || got.String() != w.String() {
			t.Fatalf("Peek %d: got %+v, want %+v", i, got, w)
		}
	}
	if _, ok := b.Peek(scratch); ok {
		t.Fatal("Peek past end returned true")
	}
}

func TestTaskBuffer_NoSpaceWithinCapacity(t *testing.T) {
	b := NewTaskBuffer()
	payload := make([]byte, 200)
	task := domain.Task{Kind: domain.TaskTypeString, DataLen: uint16(len(payload)), Data: payload}
	need := domain.TaskHeaderLen + len(payload)
	max := (domain.RingBufferSize) / need

	for i := 0; i < max; i++ {
		if err := b.Push(task); err != nil {
			t.Fatalf("push %d: unexpected error %v", i, err)
		}
	}
}

func TestTaskBuffer_TooLargeLeavesBufferUnchanged(t *testing.T) {
	b := NewTaskBuffer()
	if err := b.Push(domain.NewDelayTask(5)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	before := b.Capacity()

	oversized := make([]byte, domain.MaxTaskPayload+1)
	task := domain.Task{Kind: domain.TaskTypeString, DataLen: uint16(len(oversized)), Data: oversized}
	if err := b.Push(task); err != domain.ErrTooLarge {
		t.Fatalf("Push oversized: got %v, want ErrTooLarge", err)
	}
	if after := b.Capacity(); after != before {
		t.Fatalf("capacity changed after failed push: before=%d after=%d", before, after)
	}
}

func TestTaskBuffer_ExactBoundaryPayloadSucceeds(t *testing.T) {
	b := NewTaskBuffer()
	payload := make([]byte, domain.MaxTaskPayload)
	task := domain.Task{Kind: domain.TaskTypeString, DataLen: uint16(len(payload)), Data: payload}
	if err := b.Push(task); err != nil {
		t.Fatalf("Push exactly MaxTaskPayload: %v", err)
	}
}

func TestTaskBuffer_PeekThenRewindIsIdempotent(t *testing.T) {
	b := NewTaskBuffer()
	want := domain.NewStringTaskFrom(domain.LangUS, "abc")
	if err := b.Push(want); err != nil {
		t.Fatalf("Push: %v", err)
	}

	scratch := make([]byte, domain.TaskScratchBufferSize)
	peeked, ok := b.Peek(scratch)
	if !ok {
		t.Fatal("Peek: empty")
	}
	b.RewindPeek()

	popped, ok := b.Pop(scratch)
	if !ok {
		t.Fatal("Pop: empty")
	}
	if peeked.String() != popped.String() {
		t.Fatalf("peek/pop mismatch: peek=%q pop=%q", peeked.String(), popped.String())
	}
}

func TestTaskBuffer_FlushRestoresFullCapacity(t *testing.T) {
	b := NewTaskBuffer()
	if err := b.Push(domain.NewStringTaskFrom(domain.LangUS, "hello")); err != nil {
		t.Fatalf("Push: %v", err)
	}
	b.Flush()
	if got := b.Capacity(); got != domain.RingBufferSize {
		t.Fatalf("Capacity after Flush = %d, want %d", got, domain.RingBufferSize)
	}
	scratch := make([]byte, domain.TaskScratchBufferSize)
	if _, ok := b.Pop(scratch); ok {
		t.Fatal("Pop after Flush returned a task")
	}
}

func TestTaskBuffer_WrapAroundRoundTrips(t *testing.T) {
	b := NewTaskBuffer()
	scratch := make([]byte, domain.TaskScratchBufferSize)

	// Fill close to the ring boundary with short string tasks, popping half
	// as we go, then push enough more to force the write cursor to wrap.
	var pushed []string
	body := make([]byte, 200)
	for i := range body {
		body[i] = byte('a' + i%26)
	}
	perTask := domain.TaskHeaderLen + len(body) + 2 // digit suffix + terminating NUL

	n := (31 * 1024) / perTask
	for i := 0; i < n; i++ {
		s := string(body) + string(rune('0'+i%10))
		task := domain.NewStringTaskFrom(domain.LangUS, s)
		if err := b.Push(task); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
		pushed = append(pushed, task.String())
	}

	half := n / 2
	for i := 0; i < half; i++ {
		got, ok := b.Pop(scratch)
		if !ok {
			t.Fatalf("pop %d: empty", i)
		}
		if got.String() != pushed[i] {
			t.Fatalf("pop %d: got %q, want %q", i, got.String(), pushed[i])
		}
	}
	pushed = pushed[half:]

	more := n / 2
	for i := 0; i < more; i++ {
		s := string(body) + string(rune('0'+i%10))
		task := domain.NewStringTaskFrom(domain.LangUS, s)
		if err := b.Push(task); err != nil {
			t.Fatalf("push wrap %d: %v", i, err)
		}
		pushed = append(pushed, task.String())
	}

	for i, want := range pushed {
		got, ok := b.Pop(scratch)
		if !ok {
			t.Fatalf("final pop %d: empty", i)
		}
		if got.String() != want {
			t.Fatalf("final pop %d: got %q, want %q", i, got.String(), want)
		}
	}
	if _, ok := b.Pop(scratch); ok {
		t.Fatal("pop past end returned a task")
	}
}

func TestTaskBuffer_FramingFaultFlushesAndStops(t *testing.T) {
	b := NewTaskBuffer()
	if err := b.Push(domain.NewDelayTask(1)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	// Corrupt the header's dataLen field so the decoded payload length
	// overruns what was actually written, forcing a framing fault.
	b.buf[2] = 0xFF
	b.buf[3] = 0xFF

	scratch := make([]byte, domain.TaskScratchBufferSize)
	if _, ok := b.Pop(scratch); ok {
		t.Fatal("Pop over corrupt header returned true")
	}
	if got := b.Capacity(); got != domain.RingBufferSize {
		t.Fatalf("capacity after framing fault = %d, want full flush to %d", got, domain.RingBufferSize)
	}
}

// Package lifecycle wraps the injection engine's construction and
// teardown: it builds the one process-wide InjectionEngine, configures
// the radio on Init, tears it down on Deinit, routes radio/timer/button
// callbacks to the engine, and records an audit entry of every completed
// or failed task.
package lifecycle

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/airgapwing/hidinject/internal/core/domain"
	"github.com/airgapwing/hidinject/internal/core/ports"
	"github.com/airgapwing/hidinject/internal/engine"
	"github.com/airgapwing/hidinject/internal/telemetry"
	"github.com/google/uuid"
)

// RadioEventSource is implemented by radio adapters that deliver
// asynchronous TX_SUCCESS/TX_FAILED/RX_RECEIVED notifications (e.g.
// radio.SerialRadio, radio.MockRadio). It is not part of ports.RadioDriver
// because registering a handler is a wiring concern of the adapter, not
// something the engine itself calls.
type RadioEventSource interface {
	OnEvent(func(domain.RadioEvent))
}

// constructed guards the "only one injection engine handle exists"
// invariant: there is one radio and one timer, so a second construction
// is rejected rather than silently overwriting the first.
var constructed atomic.Bool

// Handle owns the InjectionEngine and the resources it was built with.
// It is the only thing the shell/monitor layer talks to.
//
// Lock ordering: the engine invokes onTaskStart/onTransition while
// holding its own mutex, so those callbacks must never take h.mu — the
// start timestamp they share gets its own startMu instead, and Deinit
// calls into the engine before taking h.mu for the radio teardown.
type Handle struct {
	mu sync.Mutex

	engine *engine.InjectionEngine
	radio  ports.RadioDriver
	timer  ports.Timer
	buffer *engine.TaskBuffer
	audit  ports.AuditRepository

	target      domain.RFAddress
	initialized bool

	startMu     sync.Mutex
	taskStarted time.Time
}

// New builds a Handle targeting target. radio and timer are the
// hardware collaborators (a *radio.SerialRadio/*radio.MockRadio and a
// *timer.OSTimer in practice); inventory resolves target's known
// capabilities, falling back to a synthetic device when absent; audit
// may be nil to disable the audit trail. New does not touch
// the radio — call Init for that. Only one Handle may exist at a time;
// New fails if one is already live.
func New(target domain.RFAddress, radio ports.RadioDriver, tm ports.Timer, inventory ports.DeviceInventory, checksum ports.ChecksumWriter, audit ports.AuditRepository) (*Handle, error) {
	if !constructed.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("lifecycle: an injection engine handle already exists")
	}

	device, ok := inventory.GetDevice(target)
	if !ok {
		device = domain.SyntheticDevice(target)
	}

	h := &Handle{radio: radio, timer: tm, target: target, audit: audit}
	buffer := engine.NewTaskBuffer()
	h.buffer = buffer
	h.engine = engine.New(radio, tm, checksum, buffer, device, h.onTransition)
	h.engine.SetStartHook(h.onTaskStart)

	if src, ok := radio.(RadioEventSource); ok {
		src.OnEvent(h.engine.OnRadioEvent)
	} else {
		log.Printf("hidinject: lifecycle: radio driver does not implement RadioEventSource; TX_SUCCESS/TX_FAILED will never be observed")
	}

	return h, nil
}

// Engine exposes the underlying state machine for callers (the monitor
// server, a shell) that need the public engine contract directly.
func (h *Handle) Engine() *engine.InjectionEngine { return h.engine }

// Init configures the radio for single-target injection: stop RX,
// disable TX failover and all pipes, bind base address 0 / prefix 0 to
// the target, enable pipe 0, switch to PTX mode, re-enable all-channel
// TX failover with a loop count of 2, set hardware retransmit count 1
// with 250µs spacing, set TX power to +8dBm. The engine itself is
// already Idle from construction.
func (h *Handle) Init() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	steps := []struct {
		name string
		run  func() error
	}{
		{"stop rx", h.radio.StopRX},
		{"disable tx failover", func() error { return h.radio.EnableAllChannelTXFailover(false) }},
		{"disable all pipes", func() error { return h.radio.EnablePipes(0) }},
		{"set base address 0", func() error { return h.radio.SetBaseAddress0(h.target.Base()) }},
		{"update prefix 0", func() error { return h.radio.UpdatePrefix0(h.target.Prefix()) }},
		{"enable pipe 0", func() error { return h.radio.EnablePipes(1) }},
		{"set mode ptx", h.radio.SetModePTX},
		{"enable tx failover", func() error { return h.radio.EnableAllChannelTXFailover(true) }},
		{"set tx failover loop count", func() error { return h.radio.SetAllChannelTXFailoverLoopCount(2) }},
		{"set retransmit count", func() error { return h.radio.SetRetransmitCount(domain.HWRetransmitCount) }},
		{"set retransmit delay", func() error { return h.radio.SetRetransmitDelay(domain.HWRetransmitDelay) }},
		{"set tx power", func() error { return h.radio.SetTXPower(domain.TXPowerDBm) }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return fmt.Errorf("lifecycle: init: %s: %w", step.name, err)
		}
	}
	h.initialized = true
	return nil
}

// Deinit tears the engine down: forces it to Uninitialized, flushes the
// task buffer, restores a neutral radio mode, and zeros the target
// address. After Deinit, a new Handle may be constructed. The engine is
// stopped before h.mu is taken — a radio event callback may be mid-flight
// inside the engine at this point, and it must be able to finish.
func (h *Handle) Deinit() error {
	h.engine.Deinit()
	h.buffer.Flush()

	h.mu.Lock()
	defer h.mu.Unlock()

	var firstErr error
	if err := h.radio.EnablePipes(0); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("lifecycle: deinit: disable pipes: %w", err)
	}
	if err := h.radio.StopRX(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("lifecycle: deinit: stop rx: %w", err)
	}

	h.target = domain.RFAddress{}
	h.initialized = false
	constructed.Store(false)
	return firstErr
}

// OnButton routes a physical button event to the engine. Reserved: the
// injection processor has no button behavior of its own.
func (h *Handle) OnButton() { h.engine.OnButton() }

// EnqueueString pushes a TypeString task, tracing the call so the
// monitor's OTel export shows enqueue latency alongside state
// transitions.
func (h *Handle) EnqueueString(ctx context.Context, lang domain.Lang, s string) error {
	_, span := telemetry.Tracer.Start(ctx, "EnqueueString")
	defer span.End()
	err := h.engine.EnqueueString(lang, s)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// EnqueuePress pushes a PressCombo task; see EnqueueString.
func (h *Handle) EnqueuePress(ctx context.Context, lang domain.Lang, combo string) error {
	_, span := telemetry.Tracer.Start(ctx, "EnqueuePress")
	defer span.End()
	err := h.engine.EnqueuePress(lang, combo)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// EnqueueDelay pushes a Delay task; see EnqueueString.
func (h *Handle) EnqueueDelay(ctx context.Context, ms uint32) error {
	_, span := telemetry.Tracer.Start(ctx, "EnqueueDelay")
	defer span.End()
	err := h.engine.EnqueueDelay(ms)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// List delegates to the engine's script listing walk (the "script
// start"/"NNNN: inject ..."/"script end" text contract).
func (h *Handle) List(emit func(string)) { h.engine.List(emit) }

// Clear delegates to the engine's queue flush.
func (h *Handle) Clear() { h.engine.Clear() }

// SetExecute delegates to the engine's pause/play toggle.
func (h *Handle) SetExecute(on bool) { h.engine.SetExecute(on) }

// onTaskStart and onTransition run on engine callbacks, under the
// engine's mutex. They take only startMu, never h.mu.
func (h *Handle) onTaskStart(task domain.Task) {
	h.startMu.Lock()
	h.taskStarted = time.Now()
	h.startMu.Unlock()
}

func (h *Handle) onTransition(final domain.EngineState, task domain.Task, retransmits int) {
	if h.audit == nil {
		return
	}
	h.startMu.Lock()
	startedAt := h.taskStarted
	h.startMu.Unlock()
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	entry := domain.AuditEntry{
		RunID:           uuid.New().String(),
		TaskKind:        task.Kind.String(),
		Summary:         task.String(),
		Succeeded:       final == domain.Succeeded,
		RetransmitsUsed: retransmits,
		StartedAt:       startedAt,
		FinishedAt:      time.Now(),
	}
	if err := h.audit.SaveAuditEntry(entry); err != nil {
		log.Printf("hidinject: lifecycle: failed to save audit entry for run %s: %v", entry.RunID, err)
	}
}

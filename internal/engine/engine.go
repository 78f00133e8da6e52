package engine

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/airgapwing/hidinject/internal/core/domain"
	"github.com/airgapwing/hidinject/internal/core/ports"
	"github.com/airgapwing/hidinject/internal/telemetry"
)

// TransitionHook observes the engine reaching a transient Succeeded or
// Failed state for task, with the retransmit count spent on it. The hook
// passed to New is used by the lifecycle wrapper to record an audit
// entry; further hooks can be registered with AddObserver. A hook runs
// under the engine's mutex and must not block or call back into the
// engine.
type TransitionHook func(final domain.EngineState, task domain.Task, retransmits int)

// InjectionEngine is the keystroke-injection state machine: it owns a
// TaskBuffer, drives a ports.RadioDriver and ports.Timer, and exposes the
// public contract the shell/REPL and the radio/timer callbacks call into.
// There is never more than one InjectionEngine per process — it binds a
// singleton radio and timer.
type InjectionEngine struct {
	mu sync.Mutex

	state     domain.AtomicEngineState
	radio     ports.RadioDriver
	timer     ports.Timer
	checksum  ports.ChecksumWriter
	buffer    *TaskBuffer
	device    domain.Device
	hook      TransitionHook
	observers []TransitionHook
	startHook func(domain.Task)

	execute bool

	currentTask       domain.Task
	scratch           [domain.TaskScratchBufferSize]byte
	txFrame           domain.Frame
	provider          ports.PayloadProvider
	retransmitCounter int
}

// New builds an Idle-at-rest engine bound to radio, timer and checksum,
// targeting device. buffer is the queue the engine drains; hook may be
// nil. New does not touch the radio — callers configure it via the
// lifecycle wrapper's Init before enqueuing anything.
func New(radio ports.RadioDriver, timer ports.Timer, checksum ports.ChecksumWriter, buffer *TaskBuffer, device domain.Device, hook TransitionHook) *InjectionEngine {
	e := &InjectionEngine{
		radio:    radio,
		timer:    timer,
		checksum: checksum,
		buffer:   buffer,
		device:   device,
		hook:     hook,
	}
	e.state.Set(domain.Idle)
	return e
}

// State reports the engine's current state without blocking on the
// transition-handling mutex.
func (e *InjectionEngine) State() domain.EngineState {
	return e.state.Get()
}

// AddObserver registers an additional transition callback alongside the
// one passed to New — the monitor server uses this to broadcast state
// transitions over its WebSocket stream without displacing the
// lifecycle wrapper's own audit-trail hook.
func (e *InjectionEngine) AddObserver(hook TransitionHook) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, hook)
}

// SetStartHook registers a callback invoked with the task a dispatch is
// about to run, right before the engine leaves Idle for it. The
// lifecycle wrapper uses it to stamp an audit entry's StartedAt; hook
// may be nil.
func (e *InjectionEngine) SetStartHook(hook func(domain.Task)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startHook = hook
}

// Deinit forces the engine to Uninitialized immediately: stops any
// armed timer, drops the current provider, and clears execution. It is
// the engine-side half of the lifecycle wrapper's teardown; it does not
// touch the task buffer, which the caller flushes itself.
func (e *InjectionEngine) Deinit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timer.Stop()
	e.provider = nil
	e.retransmitCounter = 0
	e.execute = false
	e.state.Set(domain.Uninitialized)
}

// EnqueueString pushes a TypeString task built from s (lang selects the
// HID map it will expand against) and starts the next task if the engine
// is Idle and execution is enabled.
func (e *InjectionEngine) EnqueueString(lang domain.Lang, s string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.buffer.Push(domain.NewStringTaskFrom(lang, s)); err != nil {
		return err
	}
	e.maybeAutoStart()
	return nil
}

// EnqueuePress pushes a PressCombo task for combo (e.g. "CTRL+ALT+DEL")
// and starts the next task under the same auto-start rule as
// EnqueueString.
func (e *InjectionEngine) EnqueuePress(lang domain.Lang, combo string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.buffer.Push(domain.NewComboTaskFrom(lang, combo)); err != nil {
		return err
	}
	e.maybeAutoStart()
	return nil
}

// EnqueueDelay pushes a Delay task of ms milliseconds under the same
// auto-start rule as EnqueueString.
func (e *InjectionEngine) EnqueueDelay(ms uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.buffer.Push(domain.NewDelayTask(ms)); err != nil {
		return err
	}
	e.maybeAutoStart()
	return nil
}

func (e *InjectionEngine) maybeAutoStart() {
	if e.state.Get() == domain.Idle && e.execute {
		e.runNextTask()
	}
}

// List walks the queue with the peek cursor — without retiring any task
// — and emits the script listing: a "script start" header, one 1-based,
// zero-padded "NNNN: inject <kind> <arg>" line per task, and a "script
// end" trailer. The peek cursor is rewound
// before returning, so List never disturbs what Pop will read next.
func (e *InjectionEngine) List(emit func(line string)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	emit("script start")
	n := 1
	for {
		task, ok := e.buffer.Peek(e.scratch[:])
		if !ok {
			break
		}
		emit(fmt.Sprintf("%04d: inject %s", n, task.String()))
		n++
	}
	e.buffer.RewindPeek()
	emit("script end")
}

// Clear flushes the queue. A task already in flight keeps running to
// completion or failure; it simply finds an empty queue afterward.
func (e *InjectionEngine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buffer.Flush()
}

// SetExecute toggles script progression. Disabling it does not cancel an
// in-flight frame, only prevents the next task from starting. Enabling
// it while Idle starts the next queued task immediately.
func (e *InjectionEngine) SetExecute(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.execute = on
	if on && e.state.Get() == domain.Idle {
		e.runNextTask()
	}
}

// OnButton routes a physical button event to the engine. The injection
// processor has no button behavior of its own; the handler is reserved
// for a future physical trigger.
func (e *InjectionEngine) OnButton() {}

// runNextTask pops the next queued task and dispatches it by kind.
// Caller holds e.mu.
func (e *InjectionEngine) runNextTask() {
	if e.state.Get() != domain.Idle {
		log.Printf("hidinject: engine: runNextTask called outside Idle (state=%s)", e.state.Get())
		return
	}

	task, ok := e.buffer.Pop(e.scratch[:])
	if !ok {
		e.buffer.RewindPeek()
		e.execute = false
		return
	}
	e.currentTask = task
	e.retransmitCounter = 0
	if e.startHook != nil {
		e.startHook(task)
	}

	switch task.Kind {
	case domain.TaskDelay:
		if task.DelayMS == 0 {
			e.enterTerminal(domain.Succeeded)
			return
		}
		e.state.Set(domain.Working)
		e.timer.Start(time.Duration(task.DelayMS) * time.Millisecond)

	case domain.TaskTypeString, domain.TaskPressCombo:
		provider, ok := e.newProvider(task)
		if !ok {
			log.Printf("hidinject: engine: task %s has no resolvable frames, failing", task.String())
			e.enterTerminal(domain.Failed)
			return
		}
		e.provider = provider
		if !provider.Next(&e.txFrame) {
			log.Printf("hidinject: engine: provider exhausted before first frame for %s", task.String())
			e.provider = nil
			e.enterTerminal(domain.Failed)
			return
		}
		e.state.Set(domain.Working)
		e.timer.Start(domain.TxDelay)

	default:
		log.Printf("hidinject: engine: unknown task kind %d", task.Kind)
		e.enterTerminal(domain.Failed)
	}
}

func (e *InjectionEngine) newProvider(task domain.Task) (ports.PayloadProvider, bool) {
	payload := trimNULString(task.Data)
	switch task.Kind {
	case domain.TaskTypeString:
		return NewStringProvider(e.device, task.Lang, payload), true
	case domain.TaskPressCombo:
		p, ok := NewComboProvider(e.device, task.Lang, payload)
		if !ok {
			return nil, false
		}
		return p, true
	default:
		return nil, false
	}
}

func trimNULString(b []byte) string {
	if n := len(b); n > 0 && b[n-1] == 0 {
		b = b[:n-1]
	}
	return string(b)
}

// OnTimer handles a next-action timer expiry: it completes a running
// delay task, or transmits the pending frame of a string/combo task.
func (e *InjectionEngine) OnTimer() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Get() != domain.Working {
		return
	}

	switch e.currentTask.Kind {
	case domain.TaskDelay:
		e.enterTerminal(domain.Succeeded)

	case domain.TaskTypeString, domain.TaskPressCombo:
		e.checksum.UpdateChecksum(e.txFrame.Data[:e.txFrame.Length])
		if err := e.radio.WritePayload(&e.txFrame); err != nil {
			log.Printf("hidinject: engine: radio write error: %v", err)
		}
		telemetry.FramesTransmittedTotal.WithLabelValues(e.currentTask.Kind.String()).Inc()
	}
}

// OnRadioEvent handles an asynchronous radio notification: retry on
// TX_FAILED until the retransmit budget runs out, advance the provider
// on TX_SUCCESS.
func (e *InjectionEngine) OnRadioEvent(evt domain.RadioEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Get() != domain.Working {
		return
	}

	switch evt {
	case domain.TXFailed:
		if err := e.radio.StartTX(); err != nil {
			log.Printf("hidinject: engine: retry start-tx failed: %v", err)
		}
		e.retransmitCounter++
		telemetry.RetransmitsTotal.Inc()
		if e.retransmitCounter >= domain.RetransmitBudget {
			e.enterTerminal(domain.Failed)
		}

	case domain.TXSuccess, domain.TXSuccessAckPay:
		if evt == domain.TXSuccessAckPay {
			if err := e.radio.FlushRX(); err != nil {
				log.Printf("hidinject: engine: flush RX after ack-pay failed: %v", err)
			}
		}
		e.retransmitCounter = 0
		if e.provider == nil {
			e.state.Set(domain.Idle)
			return
		}
		if e.provider.Next(&e.txFrame) {
			e.timer.Start(domain.TxDelay)
			return
		}
		e.enterTerminal(domain.Succeeded)

	case domain.RXReceived:
		log.Printf("hidinject: engine: unexpected RX_RECEIVED while transmitting, ignoring")
	}
}

// enterTerminal implements the Succeeded/Failed transient-state handling
// common to every completion path: stop the timer, zero the retransmit
// counter, drop the provider, notify the hook, reduce to Idle, and — if
// execution is enabled — immediately try the next task. Caller holds e.mu.
func (e *InjectionEngine) enterTerminal(final domain.EngineState) {
	e.state.Set(final)
	e.timer.Stop()
	retransmits := e.retransmitCounter
	e.retransmitCounter = 0
	e.provider = nil

	if final == domain.Succeeded {
		telemetry.TaskSuccessesTotal.WithLabelValues(e.currentTask.Kind.String()).Inc()
	} else {
		telemetry.TaskFailuresTotal.WithLabelValues(e.currentTask.Kind.String()).Inc()
	}

	if e.hook != nil {
		e.hook(final, e.currentTask, retransmits)
	}
	for _, obs := range e.observers {
		obs(final, e.currentTask, retransmits)
	}

	e.state.Set(domain.Idle)
	if e.execute {
		e.runNextTask()
	}
}

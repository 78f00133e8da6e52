package domain

import "sync/atomic"

// EngineState is the InjectionEngine's lifecycle state. Succeeded and
// Failed are transient notification states: the engine reduces back to
// Idle before returning from the transition that entered them.
type EngineState int32

const (
	Uninitialized EngineState = iota
	Idle
	Working
	Succeeded
	Failed
)

func (s EngineState) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Idle:
		return "Idle"
	case Working:
		return "Working"
	case Succeeded:
		return "Succeeded"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// AtomicEngineState wraps atomic access to an EngineState so the radio
// callback, the timer callback and public API calls can all observe it
// without a shared lock with the radio driver.
type AtomicEngineState struct {
	v int32
}

func (a *AtomicEngineState) Set(s EngineState) {
	atomic.StoreInt32(&a.v, int32(s))
}

func (a *AtomicEngineState) Get() EngineState {
	return EngineState(atomic.LoadInt32(&a.v))
}

func (a *AtomicEngineState) CompareAndSwap(old, new EngineState) bool {
	return atomic.CompareAndSwapInt32(&a.v, int32(old), int32(new))
}

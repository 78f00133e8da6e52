// Package radio implements ports.RadioDriver: a serial-attached ESB
// radio bridge for real hardware, and an in-memory MockRadio for tests
// and development without a radio attached.
package radio

import (
	"sync"
	"time"

	"github.com/airgapwing/hidinject/internal/core/domain"
)

// MockRadio implements ports.RadioDriver by recording every
// configuration call and every written frame in memory, and by letting
// a test script drive TX success/failure deterministically instead of
// waiting on real hardware. It never calls a handler on its own —
// callers (typically a test) call Fire to simulate a radio event.
type MockRadio struct {
	mu sync.Mutex

	ModePTX               bool
	PipesMask             uint8
	Base0                 [4]byte
	Prefix0               uint8
	FailoverEnabled       bool
	FailoverLoopCount     int
	RetransmitCount       int
	RetransmitDelay       int64 // nanoseconds, to avoid importing time in assertions
	TXPowerDBm            int
	StopRXCalls           int
	FlushRXCalls          int
	StartTXCalls          int
	WrittenFrames         []domain.Frame
	WritePayloadErr       error
	StartTXErr            error
	handler               func(domain.RadioEvent)
}

// NewMockRadio returns a zero-value-ready MockRadio.
func NewMockRadio() *MockRadio {
	return &MockRadio{}
}

// OnEvent registers the callback the lifecycle wrapper routes radio
// events through. Not part of ports.RadioDriver: it is the radio
// adapter's own event-source capability, separate from the synchronous
// driver operations the engine calls.
func (m *MockRadio) OnEvent(handler func(domain.RadioEvent)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = handler
}

// Fire invokes the registered handler with evt, simulating an
// asynchronous radio event arriving from hardware.
func (m *MockRadio) Fire(evt domain.RadioEvent) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	if h != nil {
		h(evt)
	}
}

func (m *MockRadio) SetModePTX() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ModePTX = true
	return nil
}

func (m *MockRadio) EnablePipes(mask uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PipesMask = mask
	return nil
}

func (m *MockRadio) SetBaseAddress0(base [4]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Base0 = base
	return nil
}

func (m *MockRadio) UpdatePrefix0(prefix uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prefix0 = prefix
	return nil
}

func (m *MockRadio) EnableAllChannelTXFailover(enable bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailoverEnabled = enable
	return nil
}

func (m *MockRadio) SetAllChannelTXFailoverLoopCount(count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailoverLoopCount = count
	return nil
}

func (m *MockRadio) SetRetransmitCount(count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RetransmitCount = count
	return nil
}

func (m *MockRadio) SetRetransmitDelay(d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RetransmitDelay = int64(d)
	return nil
}

func (m *MockRadio) SetTXPower(dBm int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TXPowerDBm = dBm
	return nil
}

func (m *MockRadio) WritePayload(f *domain.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WritePayloadErr != nil {
		return m.WritePayloadErr
	}
	cp := *f
	m.WrittenFrames = append(m.WrittenFrames, cp)
	return nil
}

func (m *MockRadio) StartTX() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartTXCalls++
	return m.StartTXErr
}

func (m *MockRadio) StopRX() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StopRXCalls++
	return nil
}

func (m *MockRadio) FlushRX() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FlushRXCalls++
	return nil
}

func (m *MockRadio) ConvertPipeToAddress(pipe uint8) domain.RFAddress {
	m.mu.Lock()
	defer m.mu.Unlock()
	addr := domain.RFAddress{}
	copy(addr[:4], m.Base0[:])
	addr[4] = m.Prefix0
	return addr
}

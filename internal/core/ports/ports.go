// Package ports defines the interfaces InjectionEngine and its lifecycle
// wrapper consume. Concrete implementations live under internal/adapters.
package ports

import (
	"time"

	"github.com/airgapwing/hidinject/internal/core/domain"
)

// RadioDriver is the subset of an enhanced-ShockBurst PTX radio the
// injection engine drives. Discovery, pairing and channel-hop failover
// policy live outside this interface; the engine only ever configures a
// single pipe toward one already-identified target.
type RadioDriver interface {
	SetModePTX() error
	EnablePipes(mask uint8) error
	SetBaseAddress0(base [4]byte) error
	UpdatePrefix0(prefix uint8) error
	EnableAllChannelTXFailover(enable bool) error
	SetAllChannelTXFailoverLoopCount(count int) error
	SetRetransmitCount(count int) error
	SetRetransmitDelay(d time.Duration) error
	SetTXPower(dBm int) error
	WritePayload(f *domain.Frame) error
	StartTX() error
	StopRX() error
	FlushRX() error
	ConvertPipeToAddress(pipe uint8) domain.RFAddress
}

// Timer is a single one-shot millisecond timer. Only one timer is ever
// armed by the engine at a time; arming a running timer restarts it.
type Timer interface {
	Start(d time.Duration)
	Stop()
}

// DeviceInventory resolves a target address to its learned capabilities.
// GetDevice reports false when no record exists; the caller falls back to
// domain.SyntheticDevice.
type DeviceInventory interface {
	GetDevice(address domain.RFAddress) (domain.Device, bool)
}

// PayloadProvider lazily expands one task into a sequence of radio-ready
// frames. Implementations are finite: Next reports false once the
// sequence is exhausted. Reset rewinds to the first frame.
type PayloadProvider interface {
	Reset()
	Next(out *domain.Frame) bool
}

// ChecksumWriter rewrites the trailing Unifying checksum byte of a frame
// in place.
type ChecksumWriter interface {
	UpdateChecksum(buf []byte)
}

// AuditRepository persists the trail of completed/failed task runs.
type AuditRepository interface {
	SaveAuditEntry(entry domain.AuditEntry) error
	ListAuditEntries(limit int) ([]domain.AuditEntry, error)
}

// Package devices implements the device inventory: an
// address-to-capability lookup consulted by the lifecycle wrapper when
// binding a target to the engine.
package devices

import (
	"sync"

	"github.com/airgapwing/hidinject/internal/core/domain"
)

// InMemoryInventory is a process-local address->Device map. It carries no
// pairing or discovery logic of its own; entries are seeded by whatever
// already learned the device's capabilities (a prior pairing/recon
// session, a config file, an operator typing it in).
type InMemoryInventory struct {
	mu      sync.RWMutex
	devices map[domain.RFAddress]domain.Device
}

// NewInMemoryInventory returns an empty inventory.
func NewInMemoryInventory() *InMemoryInventory {
	return &InMemoryInventory{devices: make(map[domain.RFAddress]domain.Device)}
}

// Put records or replaces the known capabilities for a device.
func (inv *InMemoryInventory) Put(d domain.Device) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.devices[d.Address] = d
}

// GetDevice implements ports.DeviceInventory.
func (inv *InMemoryInventory) GetDevice(address domain.RFAddress) (domain.Device, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	d, ok := inv.devices[address]
	return d, ok
}

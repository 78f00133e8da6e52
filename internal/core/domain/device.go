package domain

// Device describes the receiver dongle a PayloadProvider targets. A real
// lookup (DeviceInventory) returns capabilities learned during pairing; a
// synthetic device carries only the address when no such record exists.
type Device struct {
	Address     RFAddress
	IsEncrypted bool
	DefaultLang Lang
}

// SyntheticDevice builds the fallback device used when the inventory has
// no record for address: only the address is known.
func SyntheticDevice(address RFAddress) Device {
	return Device{Address: address}
}

// Package unifying implements the Logitech Unifying frame checksum: the
// trailing byte of every frame is recomputed so the receiver dongle
// accepts it.
package unifying

// Checksum implements ports.ChecksumWriter. The zero value is ready to
// use; it carries no state of its own.
type Checksum struct{}

// UpdateChecksum rewrites buf's last byte so the sum of every byte in buf
// is zero modulo 256 — the Unifying frame checksum. buf must be at least
// one byte; a buffer of length 1 has its sole byte zeroed.
func (Checksum) UpdateChecksum(buf []byte) {
	if len(buf) == 0 {
		return
	}
	var sum byte
	for _, b := range buf[:len(buf)-1] {
		sum += b
	}
	buf[len(buf)-1] = byte(-sum)
}

//go:build !linux

package radio

import "fmt"

// SerialRadio is unavailable off Linux: the goserial transport it is
// built on is ioctl-based and Linux-only.
type SerialRadio struct{}

// Open always fails outside Linux; use MockRadio for development.
func Open(path string) (*SerialRadio, error) {
	return nil, fmt.Errorf("radio: serial bridge only supported on linux")
}

package engine

import (
	"log"

	"github.com/airgapwing/hidinject/internal/adapters/hidmap"
	"github.com/airgapwing/hidinject/internal/core/domain"
)

// reportLen is the fixed HID boot-keyboard report size this engine
// emits: report ID, modifier, reserved, six key slots.
const reportLen = 9

// KeyboardReportID tags every frame this package builds so the receiver
// dongle's HID++ demux routes it to the keyboard input pipe.
const KeyboardReportID = 0x01

func fillReport(f *domain.Frame, pipe uint8, modifier, usage byte) {
	f.Pipe = pipe
	var report [reportLen]byte
	report[0] = KeyboardReportID
	report[1] = modifier
	if usage != 0 {
		report[3] = usage
	}
	copy(f.Data[:reportLen], report[:])
	f.Length = reportLen + 1 // + trailing checksum byte, written by the engine
}

func fillRelease(f *domain.Frame, pipe uint8) {
	f.Pipe = pipe
	var report [reportLen]byte
	report[0] = KeyboardReportID
	copy(f.Data[:reportLen], report[:])
	f.Length = reportLen + 1
}

// StringProvider emits a key-down/key-release report pair for every code
// point of a NUL-terminated UTF-8 string, skipping code points outside
// the selected language map with a logged diagnostic rather than failing
// the task.
type StringProvider struct {
	device domain.Device
	layout *hidmap.Map
	runes  []rune
	index  int
	down   bool // true: next Next() emits key-down; false: emits release
}

// NewStringProvider builds a provider for s — the task payload with its
// terminating NUL already stripped by the caller — targeting device in
// lang's layout.
func NewStringProvider(device domain.Device, lang domain.Lang, s string) *StringProvider {
	p := &StringProvider{
		device: device,
		layout: hidmap.ForLang(lang),
		runes:  []rune(s),
	}
	p.Reset()
	return p
}

// Reset rewinds to the first code point.
func (p *StringProvider) Reset() {
	p.index = 0
	p.down = true
}

// Next fills out with the next frame: a key-down report, then the
// matching release, then advances past the code point. Code points with
// no mapping in the layout are skipped (logged) without failing the
// task. Returns false once every code point has been emitted.
func (p *StringProvider) Next(out *domain.Frame) bool {
	for {
		if p.index >= len(p.runes) {
			return false
		}
		if !p.down {
			fillRelease(out, 0)
			p.down = true
			p.index++
			return true
		}

		r := p.runes[p.index]
		key, ok := p.layout.Lookup(r)
		if !ok {
			log.Printf("hidinject: engine: no HID mapping for rune %q, skipping", r)
			p.index++
			continue
		}
		fillReport(out, 0, key.Modifier, key.Usage)
		p.down = false
		return true
	}
}

// ComboProvider emits exactly two frames for a parsed key combination: one
// key-down report carrying every modifier bit OR'd together plus the
// combo's single non-modifier usage code, then one all-zero release.
type ComboProvider struct {
	modifier byte
	usage    byte
	phase    int // 0: key-down pending, 1: release pending, 2: exhausted
}

// NewComboProvider parses combo (e.g. "CTRL+ALT+DEL") against lang's
// layout. ok is false when no token in combo resolves.
func NewComboProvider(device domain.Device, lang domain.Lang, combo string) (*ComboProvider, bool) {
	key, ok := hidmap.ParseCombo(hidmap.ForLang(lang), combo)
	if !ok {
		return nil, false
	}
	p := &ComboProvider{modifier: key.Modifier, usage: key.Usage}
	p.Reset()
	return p, true
}

// Reset rewinds to the key-down phase.
func (p *ComboProvider) Reset() {
	p.phase = 0
}

// Next emits the key-down report, then the release, then reports
// exhaustion.
func (p *ComboProvider) Next(out *domain.Frame) bool {
	switch p.phase {
	case 0:
		fillReport(out, 0, p.modifier, p.usage)
		p.phase = 1
		return true
	case 1:
		fillRelease(out, 0)
		p.phase = 2
		return true
	default:
		return false
	}
}

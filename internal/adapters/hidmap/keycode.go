// Package hidmap translates UTF-8 strings and combo names (e.g.
// "CTRL+ALT+DEL") into USB HID keyboard usage codes and modifier bytes,
// per domain.Lang. HID mapping itself is not the engine's concern, only
// the frames it produces; the payload providers consult this package.
package hidmap

import "github.com/airgapwing/hidinject/internal/core/domain"

// Modifier bits match the standard USB HID boot keyboard report's
// modifier byte layout.
const (
	ModLeftCtrl   byte = 1 << 0
	ModLeftShift  byte = 1 << 1
	ModLeftAlt    byte = 1 << 2
	ModLeftGUI    byte = 1 << 3
	ModRightCtrl  byte = 1 << 4
	ModRightShift byte = 1 << 5
	ModRightAlt   byte = 1 << 6
	ModRightGUI   byte = 1 << 7
)

// Key pairs a HID usage code with the modifier bits required to produce
// it (e.g. an uppercase letter requires ModLeftShift).
type Key struct {
	Usage    byte
	Modifier byte
}

// Map resolves runes and combo token names to Keys for one language
// layout. Layouts are plain data, not behavior: Lookup and LookupToken
// are the only operations a caller needs.
type Map struct {
	runes  map[rune]Key
	tokens map[string]Key
}

// Lookup resolves a single rune typed by the string-typing provider. ok
// is false for runes outside the layout; the caller skips them.
func (m *Map) Lookup(r rune) (Key, bool) {
	k, ok := m.runes[r]
	return k, ok
}

// LookupToken resolves one "+"-delimited combo token (a modifier name
// such as CTRL, or a named key such as DEL, L, ENTER).
func (m *Map) LookupToken(token string) (Key, bool) {
	k, ok := m.tokens[token]
	return k, ok
}

// ForLang returns the layout for lang. Only LangUS is currently
// populated; LangDE falls back to LangUS rather than failing, matching
// the synthetic-device fallback elsewhere in this system — an unmapped
// language degrades to US layout instead of refusing the task.
func ForLang(lang domain.Lang) *Map {
	switch lang {
	default:
		return usLayout
	}
}

package hidmap

import "strings"

// ParseCombo resolves a "+"-delimited combo string such as "CTRL+ALT+DEL"
// or "GUI+L" into the single HID report it produces: modifier bits from
// every modifier token OR'd together, and the usage code of the combo's
// one non-modifier token. ok is false if no token in combo resolves in m,
// or combo is empty.
func ParseCombo(m *Map, combo string) (Key, bool) {
	var out Key
	found := false
	for _, token := range strings.Split(combo, "+") {
		token = strings.TrimSpace(strings.ToUpper(token))
		if token == "" {
			continue
		}
		k, ok := m.LookupToken(token)
		if !ok {
			continue
		}
		found = true
		out.Modifier |= k.Modifier
		if k.Usage != 0 {
			out.Usage = k.Usage
		}
	}
	return out, found
}

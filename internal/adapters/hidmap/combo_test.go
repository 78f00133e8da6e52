package hidmap

import (
	"testing"

	"github.com/airgapwing/hidinject/internal/core/domain"
)

func TestParseCombo(t *testing.T) {
	m := ForLang(domain.LangUS)

	tests := []struct {
		combo    string
		modifier byte
		usage    byte
		ok       bool
	}{
		{"CTRL+ALT+DEL", ModLeftCtrl | ModLeftAlt, usageDelete, true},
		{"GUI+L", ModLeftGUI, usageA + ('l' - 'a'), true},
		{"ctrl+alt+del", ModLeftCtrl | ModLeftAlt, usageDelete, true},
		{" SHIFT + TAB ", ModLeftShift, usageTab, true},
		{"RALT+ENTER", ModRightAlt, usageEnter, true},
		{"CTRL", ModLeftCtrl, 0, true},
		{"NOPE", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseCombo(m, tt.combo)
		if ok != tt.ok {
			t.Errorf("ParseCombo(%q): ok = %v, want %v", tt.combo, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if got.Modifier != tt.modifier || got.Usage != tt.usage {
			t.Errorf("ParseCombo(%q) = {mod:0x%02X usage:0x%02X}, want {mod:0x%02X usage:0x%02X}",
				tt.combo, got.Modifier, got.Usage, tt.modifier, tt.usage)
		}
	}
}

func TestMap_LookupRunes(t *testing.T) {
	m := ForLang(domain.LangUS)

	tests := []struct {
		r        rune
		modifier byte
		usage    byte
		ok       bool
	}{
		{'a', 0, usageA, true},
		{'A', ModLeftShift, usageA, true},
		{'1', 0, usage1, true},
		{'!', ModLeftShift, usage1, true},
		{'0', 0, usage0, true},
		{')', ModLeftShift, usage0, true},
		{' ', 0, usageSpace, true},
		{'\n', 0, usageEnter, true},
		{'?', ModLeftShift, usageSlash, true},
		{'☃', 0, 0, false},
	}
	for _, tt := range tests {
		got, ok := m.Lookup(tt.r)
		if ok != tt.ok {
			t.Errorf("Lookup(%q): ok = %v, want %v", tt.r, ok, tt.ok)
			continue
		}
		if ok && (got.Modifier != tt.modifier || got.Usage != tt.usage) {
			t.Errorf("Lookup(%q) = {mod:0x%02X usage:0x%02X}, want {mod:0x%02X usage:0x%02X}",
				tt.r, got.Modifier, got.Usage, tt.modifier, tt.usage)
		}
	}
}

func TestForLang_UnpopulatedLangFallsBackToUS(t *testing.T) {
	if ForLang(domain.LangDE) != ForLang(domain.LangUS) {
		t.Fatal("expected LangDE to fall back to the US layout")
	}
}

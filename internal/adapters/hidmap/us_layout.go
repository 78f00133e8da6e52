package hidmap

// USB HID usage IDs for the US QWERTY keyboard page (0x07), boot
// keyboard report encoding: usage 0x04 = 'a', 0x1E = '1', etc.
const (
	usageA = 0x04
	usage0 = 0x27 // usage for '0' sits after '9' (0x26)
	usage1 = 0x1E

	usageEnter     = 0x28
	usageEscape    = 0x29
	usageBackspace = 0x2A
	usageTab       = 0x2B
	usageSpace     = 0x2C

	usageMinus  = 0x2D
	usageEqual  = 0x2E
	usageLBrkt  = 0x2F
	usageRBrkt  = 0x30
	usageBSlash = 0x31
	usageSemi   = 0x33
	usageQuote  = 0x34
	usageGrave  = 0x35
	usageComma  = 0x36
	usagePeriod = 0x37
	usageSlash  = 0x38

	usageDelete = 0x4C // forward delete
	usageF1     = 0x3A
)

var usLayout = buildUSLayout()

func buildUSLayout() *Map {
	m := &Map{
		runes:  make(map[rune]Key, 96),
		tokens: make(map[string]Key, 32),
	}

	for i := 0; i < 26; i++ {
		usage := byte(usageA + i)
		m.runes['a'+rune(i)] = Key{Usage: usage}
		m.runes['A'+rune(i)] = Key{Usage: usage, Modifier: ModLeftShift}
	}

	m.runes['0'] = Key{Usage: usage0}
	for i := 1; i <= 9; i++ {
		m.runes['0'+rune(i)] = Key{Usage: byte(usage1 + i - 1)}
	}

	shiftedDigits := map[rune]byte{
		'!': usage1, '@': usage1 + 1, '#': usage1 + 2, '$': usage1 + 3,
		'%': usage1 + 4, '^': usage1 + 5, '&': usage1 + 6, '*': usage1 + 7,
		'(': usage1 + 8, ')': usage0,
	}
	for r, usage := range shiftedDigits {
		m.runes[r] = Key{Usage: usage, Modifier: ModLeftShift}
	}

	m.runes[' '] = Key{Usage: usageSpace}
	m.runes['\t'] = Key{Usage: usageTab}
	m.runes['\n'] = Key{Usage: usageEnter}
	m.runes['\r'] = Key{Usage: usageEnter}

	unshifted := map[rune]byte{
		'-': usageMinus, '=': usageEqual, '[': usageLBrkt, ']': usageRBrkt,
		'\\': usageBSlash, ';': usageSemi, '\'': usageQuote, '`': usageGrave,
		',': usageComma, '.': usagePeriod, '/': usageSlash,
	}
	for r, usage := range unshifted {
		m.runes[r] = Key{Usage: usage}
	}

	shifted := map[rune]byte{
		'_': usageMinus, '+': usageEqual, '{': usageLBrkt, '}': usageRBrkt,
		'|': usageBSlash, ':': usageSemi, '"': usageQuote, '~': usageGrave,
		'<': usageComma, '>': usagePeriod, '?': usageSlash,
	}
	for r, usage := range shifted {
		m.runes[r] = Key{Usage: usage, Modifier: ModLeftShift}
	}

	m.tokens["CTRL"] = Key{Modifier: ModLeftCtrl}
	m.tokens["ALT"] = Key{Modifier: ModLeftAlt}
	m.tokens["SHIFT"] = Key{Modifier: ModLeftShift}
	m.tokens["GUI"] = Key{Modifier: ModLeftGUI}
	m.tokens["WIN"] = Key{Modifier: ModLeftGUI}
	m.tokens["RCTRL"] = Key{Modifier: ModRightCtrl}
	m.tokens["RALT"] = Key{Modifier: ModRightAlt}
	m.tokens["RSHIFT"] = Key{Modifier: ModRightShift}
	m.tokens["RGUI"] = Key{Modifier: ModRightGUI}

	m.tokens["DEL"] = Key{Usage: usageDelete}
	m.tokens["DELETE"] = Key{Usage: usageDelete}
	m.tokens["ENTER"] = Key{Usage: usageEnter}
	m.tokens["ESC"] = Key{Usage: usageEscape}
	m.tokens["ESCAPE"] = Key{Usage: usageEscape}
	m.tokens["TAB"] = Key{Usage: usageTab}
	m.tokens["SPACE"] = Key{Usage: usageSpace}
	m.tokens["BACKSPACE"] = Key{Usage: usageBackspace}
	m.tokens["F1"] = Key{Usage: usageF1}
	for i := 0; i < 26; i++ {
		m.tokens[string(rune('A'+i))] = Key{Usage: byte(usageA + i)}
	}
	for i := 0; i <= 9; i++ {
		usage := byte(usage0)
		if i > 0 {
			usage = byte(usage1 + i - 1)
		}
		m.tokens[string(rune('0'+i))] = Key{Usage: byte(usage)}
	}

	return m
}

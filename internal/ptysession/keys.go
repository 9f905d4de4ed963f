package ptysession

import "fmt"

// KeyCode identifies a logical key, independent of any particular keyboard
// layout encoding.
type KeyCode struct {
	Char  byte   `json:"char,omitempty"`  // valid when Named == ""; the literal character typed
	Named string `json:"named,omitempty"`
}

// Named key constants, matching the rows of §4.9's table.
const (
	KeyEnter     = "Enter"
	KeyTab       = "Tab"
	KeyBackspace = "Backspace"
	KeyDelete    = "Delete"
	KeyInsert    = "Insert"
	KeyHome      = "Home"
	KeyEnd       = "End"
	KeyPageUp    = "PageUp"
	KeyPageDown  = "PageDown"
	KeyUp        = "Up"
	KeyDown      = "Down"
	KeyRight     = "Right"
	KeyLeft      = "Left"
	KeyEsc       = "Esc"
	KeyF1        = "F1"
	KeyF2        = "F2"
	KeyF3        = "F3"
	KeyF4        = "F4"
	KeyF5        = "F5"
	KeyF6        = "F6"
	KeyF7        = "F7"
	KeyF8        = "F8"
	KeyF9        = "F9"
	KeyF10       = "F10"
	KeyF11       = "F11"
	KeyF12       = "F12"
)

// Modifiers is the modifier set carried by a KeyEvent.
type Modifiers struct {
	Shift bool `json:"shift,omitempty"`
	Ctrl  bool `json:"ctrl,omitempty"`
	Alt   bool `json:"alt,omitempty"`
	Meta  bool `json:"meta,omitempty"`
}

// KeyEvent is the structured input message encoded by EncodeKey, per §4.9.
type KeyEvent struct {
	Code      KeyCode   `json:"code"`
	Modifiers Modifiers `json:"modifiers"`
}

// CharKey builds a KeyCode for a literal character.
func CharKey(c byte) KeyCode { return KeyCode{Char: c} }

// NamedKey builds a KeyCode for a named key.
func NamedKey(name string) KeyCode { return KeyCode{Named: name} }

// modParam returns the CSI modifier parameter (2=shift,3=alt,5=ctrl,
// combinations per the xterm convention: 1+shift(1)+alt(2)+ctrl(4)) used in
// sequences like `ESC [ 1 ; m A`.
func modParam(m Modifiers) int {
	n := 1
	if m.Shift {
		n += 1
	}
	if m.Alt {
		n += 2
	}
	if m.Ctrl {
		n += 4
	}
	return n
}

func hasModifier(m Modifiers) bool {
	return m.Shift || m.Ctrl || m.Alt || m.Meta
}

// EncodeKey is the pure Key Encoder of §4.9: it maps a KeyEvent to the
// deterministic byte sequence a real terminal would send for it. Equal
// inputs always produce equal outputs (invariant 6 in spec §8).
func EncodeKey(e KeyEvent) []byte {
	if e.Code.Named == "" {
		return encodeChar(e.Code.Char, e.Modifiers)
	}
	switch e.Code.Named {
	case KeyEnter:
		return []byte{'\r'}
	case KeyTab:
		if e.Modifiers.Shift {
			return []byte{0x1B, '[', 'Z'}
		}
		return []byte{'\t'}
	case KeyBackspace:
		if e.Modifiers.Alt {
			return []byte{0x1B, 0x7F}
		}
		if e.Modifiers.Ctrl {
			return []byte{0x15}
		}
		return []byte{0x7F}
	case KeyDelete:
		return []byte{0x1B, '[', '3', '~'}
	case KeyInsert:
		return []byte{0x1B, '[', '2', '~'}
	case KeyHome:
		return encodeHomeEnd('H', e.Modifiers)
	case KeyEnd:
		return encodeHomeEnd('F', e.Modifiers)
	case KeyPageUp:
		return encodeTilde(5, e.Modifiers)
	case KeyPageDown:
		return encodeTilde(6, e.Modifiers)
	case KeyUp:
		return encodeArrow('A', e.Modifiers)
	case KeyDown:
		return encodeArrow('B', e.Modifiers)
	case KeyRight:
		return encodeArrow('C', e.Modifiers)
	case KeyLeft:
		return encodeArrow('D', e.Modifiers)
	case KeyEsc:
		return []byte{0x1B}
	case KeyF1:
		return []byte{0x1B, 'O', 'P'}
	case KeyF2:
		return []byte{0x1B, 'O', 'Q'}
	case KeyF3:
		return []byte{0x1B, 'O', 'R'}
	case KeyF4:
		return []byte{0x1B, 'O', 'S'}
	case KeyF5:
		return encodeTilde(15, e.Modifiers)
	case KeyF6:
		return encodeTilde(17, e.Modifiers)
	case KeyF7:
		return encodeTilde(18, e.Modifiers)
	case KeyF8:
		return encodeTilde(19, e.Modifiers)
	case KeyF9:
		return encodeTilde(20, e.Modifiers)
	case KeyF10:
		return encodeTilde(21, e.Modifiers)
	case KeyF11:
		return encodeTilde(23, e.Modifiers)
	case KeyF12:
		return encodeTilde(24, e.Modifiers)
	}
	return nil
}

func encodeChar(c byte, m Modifiers) []byte {
	if m.Ctrl {
		switch c {
		case ' ':
			return []byte{0x00}
		case '[':
			return []byte{0x1B}
		case '\\':
			return []byte{0x1C}
		case ']':
			return []byte{0x1D}
		case '^':
			return []byte{0x1E}
		case '_':
			return []byte{0x1F}
		}
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c >= '@' && c <= '_' {
			return []byte{c & 0x1F}
		}
	}
	if m.Alt {
		return append([]byte{0x1B}, []byte(string(rune(c)))...)
	}
	return []byte(string(rune(c)))
}

func encodeHomeEnd(final byte, m Modifiers) []byte {
	if !hasModifier(m) {
		return []byte{0x1B, '[', final}
	}
	return []byte(fmt.Sprintf("\x1b[1;%d%c", modParam(m), final))
}

func encodeArrow(final byte, m Modifiers) []byte {
	if !hasModifier(m) {
		return []byte{0x1B, '[', final}
	}
	return []byte(fmt.Sprintf("\x1b[1;%d%c", modParam(m), final))
}

func encodeTilde(n int, m Modifiers) []byte {
	if !hasModifier(m) {
		return []byte(fmt.Sprintf("\x1b[%d~", n))
	}
	return []byte(fmt.Sprintf("\x1b[%d;%d~", n, modParam(m)))
}

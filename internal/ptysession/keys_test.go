package ptysession

import (
	"bytes"
	"testing"
)

func TestEncodeKeyDeterministic(t *testing.T) {
	e := KeyEvent{Code: CharKey('a'), Modifiers: Modifiers{Ctrl: true}}
	a := EncodeKey(e)
	b := EncodeKey(e)
	if !bytes.Equal(a, b) {
		t.Fatalf("encoding not deterministic: %v vs %v", a, b)
	}
}

func TestEncodeKeyTable(t *testing.T) {
	cases := []struct {
		name string
		ev   KeyEvent
		want []byte
	}{
		{"char", KeyEvent{Code: CharKey('x')}, []byte("x")},
		{"ctrl-a", KeyEvent{Code: CharKey('a'), Modifiers: Modifiers{Ctrl: true}}, []byte{0x01}},
		{"ctrl-space", KeyEvent{Code: CharKey(' '), Modifiers: Modifiers{Ctrl: true}}, []byte{0x00}},
		{"alt-c", KeyEvent{Code: CharKey('c'), Modifiers: Modifiers{Alt: true}}, []byte{0x1B, 'c'}},
		{"enter", KeyEvent{Code: NamedKey(KeyEnter)}, []byte{'\r'}},
		{"tab", KeyEvent{Code: NamedKey(KeyTab)}, []byte{'\t'}},
		{"shift-tab", KeyEvent{Code: NamedKey(KeyTab), Modifiers: Modifiers{Shift: true}}, []byte{0x1B, '[', 'Z'}},
		{"backspace", KeyEvent{Code: NamedKey(KeyBackspace)}, []byte{0x7F}},
		{"ctrl-backspace", KeyEvent{Code: NamedKey(KeyBackspace), Modifiers: Modifiers{Ctrl: true}}, []byte{0x15}},
		{"alt-backspace", KeyEvent{Code: NamedKey(KeyBackspace), Modifiers: Modifiers{Alt: true}}, []byte{0x1B, 0x7F}},
		{"delete", KeyEvent{Code: NamedKey(KeyDelete)}, []byte("\x1b[3~")},
		{"insert", KeyEvent{Code: NamedKey(KeyInsert)}, []byte("\x1b[2~")},
		{"home", KeyEvent{Code: NamedKey(KeyHome)}, []byte("\x1b[H")},
		{"end", KeyEvent{Code: NamedKey(KeyEnd)}, []byte("\x1b[F")},
		{"shift-home", KeyEvent{Code: NamedKey(KeyHome), Modifiers: Modifiers{Shift: true}}, []byte("\x1b[1;2H")},
		{"pageup", KeyEvent{Code: NamedKey(KeyPageUp)}, []byte("\x1b[5~")},
		{"pagedown", KeyEvent{Code: NamedKey(KeyPageDown)}, []byte("\x1b[6~")},
		{"up", KeyEvent{Code: NamedKey(KeyUp)}, []byte("\x1b[A")},
		{"ctrl-up", KeyEvent{Code: NamedKey(KeyUp), Modifiers: Modifiers{Ctrl: true}}, []byte("\x1b[1;5A")},
		{"esc", KeyEvent{Code: NamedKey(KeyEsc)}, []byte{0x1B}},
		{"f1", KeyEvent{Code: NamedKey(KeyF1)}, []byte("\x1bOP")},
		{"f5", KeyEvent{Code: NamedKey(KeyF5)}, []byte("\x1b[15~")},
		{"f12", KeyEvent{Code: NamedKey(KeyF12)}, []byte("\x1b[24~")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EncodeKey(tc.ev)
			if !bytes.Equal(got, tc.want) {
				t.Fatalf("EncodeKey(%+v) = %q, want %q", tc.ev, got, tc.want)
			}
		})
	}
}

package main

import (
	"testing"

	"agentmux/internal/ptysession"
)

func TestDecodeRawByteControlChars(t *testing.T) {
	ev := decodeRawByte('\r')
	if ev.Code.Named != ptysession.KeyEnter {
		t.Fatalf("decodeRawByte('\\r') = %+v, want Enter", ev)
	}

	ev = decodeRawByte(0x7F)
	if ev.Code.Named != ptysession.KeyBackspace {
		t.Fatalf("decodeRawByte(0x7F) = %+v, want Backspace", ev)
	}

	ev = decodeRawByte(0x03) // Ctrl-C
	if ev.Code.Char != 'c' || !ev.Modifiers.Ctrl {
		t.Fatalf("decodeRawByte(0x03) = %+v, want Ctrl-c", ev)
	}
}

func TestDecodeRawBytePlainChar(t *testing.T) {
	ev := decodeRawByte('a')
	if ev.Code.Char != 'a' || ev.Modifiers.Ctrl {
		t.Fatalf("decodeRawByte('a') = %+v, want plain 'a'", ev)
	}
}

func TestHostPart(t *testing.T) {
	if got := hostPart(":7890"); got != "127.0.0.1:7890" {
		t.Fatalf("hostPart(:7890) = %q", got)
	}
	if got := hostPart("example.com:7890"); got != "example.com:7890" {
		t.Fatalf("hostPart(example.com:7890) = %q", got)
	}
}

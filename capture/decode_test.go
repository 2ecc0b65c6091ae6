package capture_test

import (
	"strings"
	"testing"
	"unicode/utf16"

	"clipnote/capture"
)

func utf16leBytes(s string) []byte {
	units := utf16.Encode([]rune(s))
	buf := make([]byte, 0, 2*len(units))
	for _, u := range units {
		buf = append(buf, byte(u), byte(u>>8))
	}
	return buf
}

func utf16beBytes(s string) []byte {
	units := utf16.Encode([]rune(s))
	buf := make([]byte, 0, 2*len(units))
	for _, u := range units {
		buf = append(buf, byte(u>>8), byte(u))
	}
	return buf
}

func TestDecode_UTF16WithoutBOM(t *testing.T) {
	const text = "Hello, wide world!"

	if got := capture.DecodeBytes(utf16leBytes(text)); got != text {
		t.Errorf("LE decode: got %q, want %q", got, text)
	}
	if got := capture.DecodeBytes(utf16beBytes(text)); got != text {
		t.Errorf("BE decode: got %q, want %q", got, text)
	}
}

func TestDecode_UTF16ByteOrderMark(t *testing.T) {
	const text = "marked"

	le := append([]byte{0xff, 0xfe}, utf16leBytes(text)...)
	if got := capture.DecodeBytes(le); got != text {
		t.Errorf("LE BOM decode: got %q, want %q", got, text)
	}

	be := append([]byte{0xfe, 0xff}, utf16beBytes(text)...)
	if got := capture.DecodeBytes(be); got != text {
		t.Errorf("BE BOM decode: got %q, want %q", got, text)
	}
}

func TestDecode_NoResidualNULs(t *testing.T) {
	payload := append(utf16leBytes("pad\x00ded"), 0, 0, 0, 0)
	got := capture.DecodeBytes(payload)

	if strings.ContainsRune(got, 0) {
		t.Errorf("NUL characters left in %q", got)
	}
	if got != "padded" {
		t.Errorf("got %q, want %q", got, "padded")
	}
}

func TestDecode_UTF16OddTrailingByte(t *testing.T) {
	payload := append(utf16leBytes("truncated payload"), 0x41)
	if got := capture.DecodeBytes(payload); got != "truncated payloadA" && got != "truncated payload" {
		t.Errorf("stray trailing byte mishandled: %q", got)
	}
}

func TestDecode_NULPaddedUTF8(t *testing.T) {
	if got := capture.DecodeBytes([]byte("abc\x00\x00\x00")); got != "abc" {
		t.Errorf("got %q, want %q", got, "abc")
	}
}

func TestDecode_Windows1252(t *testing.T) {
	// curly quotes, invalid as UTF-8
	payload := []byte{0x93, 'h', 'i', 0x94}
	if got := capture.DecodeBytes(payload); got != "“hi”" {
		t.Errorf("got %q, want %q", got, "“hi”")
	}
}

func TestDecode_Latin1IsTotal(t *testing.T) {
	// 0x81 is undefined in Windows-1252, Latin-1 still maps it
	payload := []byte{'A', 0x81, 'B'}
	if got := capture.DecodeBytes(payload); got != "A\u0081B" {
		t.Errorf("got %q, want %q", got, "A\u0081B")
	}
}

func TestDecode_Empty(t *testing.T) {
	if got := capture.DecodeBytes(nil); got != "" {
		t.Errorf("got %q for empty input", got)
	}
	if got := capture.DecodeBytes([]byte{0, 0, 0}); got != "" {
		t.Errorf("got %q for all-NUL input", got)
	}
}

package clipboard_test

import (
	"reflect"
	"testing"
	"time"

	"clipnote/clipboard"
)

func TestReader_ReadFormatFirstAlias(t *testing.T) {
	board := clipboard.NewMemBoard()
	board.Put("text/html", []byte("second choice"))
	board.Put("HTML Format", []byte("first choice"))

	got := clipboard.NewReader(board, nil).ReadFormat(clipboard.HTMLFormatNames, "")
	if string(got) != "first choice" {
		t.Errorf("alias precedence broken: %q", got)
	}
}

func TestReader_ReadFormatKeywordFallback(t *testing.T) {
	board := clipboard.NewMemBoard()
	board.Put("Vendor HTML Payload", []byte("vendor data"))

	got := clipboard.NewReader(board, nil).ReadFormat(clipboard.HTMLFormatNames, "html")
	if string(got) != "vendor data" {
		t.Errorf("keyword fallback failed: %q", got)
	}
}

func TestReader_ReadFormatAbsent(t *testing.T) {
	reader := clipboard.NewReader(clipboard.NewMemBoard(), nil)
	if got := reader.ReadFormat(clipboard.RTFFormatNames, "rtf"); got != nil {
		t.Errorf("expected nil for absent format, got %q", got)
	}
}

func TestReader_ReadFirst(t *testing.T) {
	board := clipboard.NewMemBoard()
	board.PutID(1, []byte("ansi"))
	board.PutID(13, []byte("wide"))

	reader := clipboard.NewReader(board, nil)
	if got := reader.ReadFirst([]uint32{13, 1}); string(got) != "wide" {
		t.Errorf("identifier precedence broken: %q", got)
	}
	if got := reader.ReadFirst([]uint32{99}); got != nil {
		t.Errorf("expected nil for unavailable identifier, got %q", got)
	}
}

func TestReader_AvailableFormatNames(t *testing.T) {
	board := clipboard.NewMemBoard()
	board.PutID(13, []byte("x"))
	board.Put("HTML Format", []byte("y"))
	board.PutID(0xD000, []byte("z"))

	got := clipboard.NewReader(board, nil).AvailableFormatNames()
	want := []string{"CF_UNICODETEXT", "HTML Format", "FORMAT_53248"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestReader_BoundedOpenRetry(t *testing.T) {
	board := clipboard.NewMemBoard()
	board.PutID(13, []byte("payload"))

	board.FailOpens = 2
	reader := clipboard.NewReader(board, nil)
	if got := reader.ReadFirst([]uint32{13}); string(got) != "payload" {
		t.Errorf("transient contention should be retried, got %q", got)
	}

	board.FailOpens = 100
	start := time.Now()
	if got := reader.ReadFirst([]uint32{13}); got != nil {
		t.Errorf("retry budget must be bounded, got %q", got)
	}
	// five attempts sleep only between them, four delays at 30ms each
	if elapsed := time.Since(start); elapsed >= 150*time.Millisecond {
		t.Errorf("no delay expected after the final attempt, took %v", elapsed)
	}
}

func TestKindOfName(t *testing.T) {
	cases := map[string]clipboard.Kind{
		"HTML Format":      clipboard.KindHTML,
		"text/html":        clipboard.KindHTML,
		"Rich Text Format": clipboard.KindRTF,
		"CF_UNICODETEXT":   clipboard.KindText,
		"CF_BITMAP":        clipboard.KindUnknown,
		// decorated and vendor names resolve through the substring fallback
		"text/html; charset=utf-8": clipboard.KindHTML,
		"Vendor RTF Payload":       clipboard.KindRTF,
		"text/plain;charset=utf-8": clipboard.KindText,
		"Shell IDList Array":       clipboard.KindUnknown,
	}
	for name, want := range cases {
		if got := clipboard.KindOfName(name); got != want {
			t.Errorf("KindOfName(%q) = %v, want %v", name, got, want)
		}
	}
}

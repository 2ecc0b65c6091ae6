package watch

import (
	"os"
	"path/filepath"
	"testing"

	"clipnote/capture"
	"clipnote/clipboard"
	"clipnote/config"
	"clipnote/history"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Capture: config.CaptureConfig{
			PollIntervalMS:  100,
			MaxPayloadBytes: 1 << 20,
		},
		Session: config.SessionConfig{
			Path:           filepath.Join(dir, "session.json"),
			AttachmentsDir: filepath.Join(dir, "attachments"),
			Backups:        config.BackupsConfig{Keep: 1},
		},
	}
}

func putNote(board *clipboard.MemBoard, text, html string) {
	board.Clear()
	board.PutID(13, []byte(text))
	if html != "" {
		board.Put("HTML Format", []byte(html))
	}
}

func TestService_TickAppendsAndDedupes(t *testing.T) {
	board := clipboard.NewMemBoard()
	putNote(board, "Hello world", "<html><body><b>Hello</b> world</body></html>")

	svc, err := NewService(board, testConfig(t), nil, "run-1", false, nil)
	if err != nil {
		t.Fatal(err)
	}

	e, err := svc.Tick()
	if err != nil {
		t.Fatal(err)
	}
	if e == nil {
		t.Fatal("expected capture to be appended")
	}
	if e.Source != capture.SourceHTML.String() || e.Text != "Hello world" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.RunID != "run-1" {
		t.Errorf("unexpected run id: %q", e.RunID)
	}

	// unchanged clipboard must not produce a second entry
	if e, err = svc.Tick(); err != nil || e != nil {
		t.Fatalf("expected dedupe, got %+v, %v", e, err)
	}

	putNote(board, "Another note", "")
	if e, err = svc.Tick(); err != nil || e == nil {
		t.Fatalf("expected new capture, got %v", err)
	}
	if e.Source != capture.SourceText.String() {
		t.Errorf("unexpected source: %q", e.Source)
	}

	if got := svc.Session().Len(); got != 2 {
		t.Errorf("expected 2 session entries, got %d", got)
	}
}

func TestService_KeepDuplicates(t *testing.T) {
	board := clipboard.NewMemBoard()
	putNote(board, "same text", "")

	cfg := testConfig(t)
	cfg.Capture.KeepDuplicates = true

	svc, err := NewService(board, cfg, nil, "", false, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if e, err := svc.Tick(); err != nil || e == nil {
			t.Fatalf("tick %d: expected capture, got %v", i, err)
		}
	}
	if got := svc.Session().Len(); got != 3 {
		t.Errorf("expected 3 session entries, got %d", got)
	}
}

func TestService_EmptyClipboard(t *testing.T) {
	cfg := testConfig(t)
	svc, err := NewService(clipboard.NewMemBoard(), cfg, nil, "", false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if e, err := svc.Tick(); err != nil || e != nil {
		t.Fatalf("expected nothing, got %+v, %v", e, err)
	}
	// nothing was accepted, nothing should have been written
	if _, err := os.Stat(cfg.Session.Path); !os.IsNotExist(err) {
		t.Errorf("unexpected session file: %v", err)
	}
}

func TestService_RecordsHistoryAndPrunes(t *testing.T) {
	cfg := testConfig(t)
	cfg.History.Enable = true
	cfg.History.MaxEntries = 2

	hist, err := history.Open(filepath.Join(t.TempDir(), "history.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer hist.Close()

	board := clipboard.NewMemBoard()
	svc, err := NewService(board, cfg, hist, "", false, nil)
	if err != nil {
		t.Fatal(err)
	}

	for _, text := range []string{"first", "second", "third"} {
		putNote(board, text, "")
		if e, err := svc.Tick(); err != nil || e == nil {
			t.Fatalf("%s: expected capture, got %v", text, err)
		}
	}

	count, err := hist.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("expected history pruned to 2 entries, got %d", count)
	}
}

func TestService_SavesAttachment(t *testing.T) {
	cfg := testConfig(t)
	board := clipboard.NewMemBoard()
	putNote(board, "Hello world", "<html><body><b>Hello</b> world</body></html>")

	svc, err := NewService(board, cfg, nil, "", true, nil)
	if err != nil {
		t.Fatal(err)
	}

	e, err := svc.Tick()
	if err != nil {
		t.Fatal(err)
	}
	if e == nil || e.Attachment == "" {
		t.Fatalf("expected attachment, got %+v", e)
	}

	data, err := os.ReadFile(filepath.Join(cfg.Session.AttachmentsDir, e.Attachment))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<html><body><b>Hello</b> world</body></html>" {
		t.Errorf("unexpected attachment content: %q", data)
	}
}

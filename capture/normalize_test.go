package capture_test

import (
	"reflect"
	"testing"

	"clipnote/capture"
)

func TestNormalizeRuns_Idempotent(t *testing.T) {
	raw := capture.Runs{
		{Text: "  Hello "},
		{Text: " world", Bold: true},
		{Text: ""},
		{Text: "\n\n\n\nnext  line\t\t"},
	}

	once := capture.NormalizeRuns(raw)
	twice := capture.NormalizeRuns(append(capture.Runs{}, once...))

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("normalization is not idempotent:\n once: %#v\ntwice: %#v", once, twice)
	}
}

func TestNormalizeRuns_MergesAdjacentEqualBold(t *testing.T) {
	runs := capture.NormalizeRuns(capture.Runs{
		{Text: "a", Bold: true},
		{Text: "b", Bold: true},
		{Text: "c"},
	})

	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %#v", runs)
	}
	if runs[0].Text != "ab" || !runs[0].Bold {
		t.Errorf("adjacent bold runs not merged: %#v", runs)
	}
}

func TestNormalizeRuns_DropsEmptyAndTrims(t *testing.T) {
	runs := capture.NormalizeRuns(capture.Runs{
		{Text: "   "},
		{Text: "  text  "},
		{Text: "   "},
	})

	if len(runs) != 1 || runs[0].Text != "text" {
		t.Errorf("expected single trimmed run, got %#v", runs)
	}
}

func TestNormalizeRuns_BulletArtifacts(t *testing.T) {
	runs := capture.NormalizeRuns(capture.Runs{
		{Text: "x\n• item\n -\ny"},
	})

	text := runs.Text()
	if want := "x\n- item\n- y"; text != want {
		t.Errorf("bullet artifacts not collapsed: got %q, want %q", text, want)
	}
}

func TestNormalizeRuns_SpaceJoin(t *testing.T) {
	runs := capture.NormalizeRuns(capture.Runs{
		{Text: "bold ", Bold: true},
		{Text: " plain"},
	})

	if got := runs.Text(); got != "bold plain" {
		t.Errorf("duplicate join space kept: %q", got)
	}
}

func TestCanonicalText(t *testing.T) {
	got := capture.CanonicalText("  Hello\r\n• World\tAGAIN  ")
	if want := "hello world again"; got != want {
		t.Errorf("canonicalization mismatch: got %q, want %q", got, want)
	}
}

package capture_test

import (
	"testing"

	"clipnote/capture"
)

func parseHTML(t *testing.T, maps *capture.StyleMaps, fragment string) capture.Runs {
	t.Helper()
	return capture.NewHTMLRunParser(maps, nil).Parse(fragment)
}

func TestHTML_NestedBoldMergesIntoOneRun(t *testing.T) {
	runs := parseHTML(t, nil, "<b>a<b>b</b>c</b>")

	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d: %#v", len(runs), runs)
	}
	if runs[0].Text != "abc" || !runs[0].Bold {
		t.Errorf("unexpected run: %#v", runs[0])
	}
}

func TestHTML_BoldImplyingTags(t *testing.T) {
	for _, tag := range []string{"b", "strong", "th", "h1", "h3", "h6"} {
		runs := parseHTML(t, nil, "<"+tag+">x</"+tag+">")
		if len(runs) == 0 || !runs[0].Bold {
			t.Errorf("tag %s should imply bold, got %#v", tag, runs)
		}
	}
}

func TestHTML_UnbalancedCloseTags(t *testing.T) {
	// close tags pop the nearest matching open tag even out of order
	runs := parseHTML(t, nil, "<b><i>a</b>b</i>c")

	if runs.Text() != "abc" {
		t.Fatalf("unexpected text: %q", runs.Text())
	}
	if runs[0].Text != "a" || !runs[0].Bold {
		t.Errorf("expected leading bold run: %#v", runs)
	}
	if runs[len(runs)-1].Bold {
		t.Errorf("bold state leaked past close: %#v", runs)
	}
}

func TestHTML_InlineStyleWeight(t *testing.T) {
	cases := []struct {
		style string
		bold  bool
	}{
		{"font-weight: bold", true},
		{"font-weight: 700", true},
		{"font-weight: 400", false},
		{"font-weight: bolder !important", true},
		{"font: italic bold 12px serif", true},
		{"font: 600 14px sans-serif", true},
		{"font-variation-settings: 'wght' 650", true},
		{"font-family: Arial Black", true},
		{"color: red", false},
	}
	for _, tc := range cases {
		runs := parseHTML(t, nil, `<span style="`+tc.style+`">x</span>`)
		if len(runs) != 1 || runs[0].Bold != tc.bold {
			t.Errorf("style %q: expected bold=%v, got %#v", tc.style, tc.bold, runs)
		}
	}
}

func TestHTML_FaceAttribute(t *testing.T) {
	runs := parseHTML(t, nil, `<font face="Helvetica SemiBold">x</font>`)
	if len(runs) != 1 || !runs[0].Bold {
		t.Errorf("semibold face should imply bold: %#v", runs)
	}
}

func TestHTML_ClassMembership(t *testing.T) {
	maps := &capture.StyleMaps{
		ClassBold: map[string]bool{"title": true},
		Vars:      map[string]string{},
	}
	runs := parseHTML(t, maps, `<span class="lead title">x</span> tail`)

	if len(runs) != 2 || !runs[0].Bold {
		t.Fatalf("class membership should imply bold: %#v", runs)
	}
	if runs[1].Bold {
		t.Errorf("bold leaked past span close: %#v", runs)
	}
}

func TestHTML_ListMarkers(t *testing.T) {
	runs := parseHTML(t, nil, "<ul><li>one</li><li>two</li></ul>")

	if got := runs.Text(); got != "- one\n- two" {
		t.Errorf("unexpected list rendering: %q", got)
	}
}

func TestHTML_BlockBreaksAndBr(t *testing.T) {
	runs := parseHTML(t, nil, "<p>first</p><p>second<br>third</p>")

	if got := runs.Text(); got != "first\nsecond\nthird" {
		t.Errorf("unexpected paragraph layout: %q", got)
	}
}

func TestHTML_ScriptAndStyleBodiesSkipped(t *testing.T) {
	runs := parseHTML(t, nil, "a<script>var x = '<b>no</b>';</script>b<style>p{}</style>c")

	if got := runs.Text(); got != "abc" {
		t.Errorf("script/style content leaked: %q", got)
	}
}

func TestHTML_EntitiesDecoded(t *testing.T) {
	runs := parseHTML(t, nil, "fish &amp; chips")

	if got := runs.Text(); got != "fish & chips" {
		t.Errorf("entity not decoded: %q", got)
	}
}

package export

import (
	"reflect"
	"testing"

	"clipnote/capture"
)

func TestBlocks_Bullets(t *testing.T) {
	runs := capture.Runs{{Text: "• item one\n    - nested\nplain", Bold: false}}

	blocks := Blocks(runs)
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d: %+v", len(blocks), blocks)
	}

	b := blocks[0]
	if b.Kind != BlockBullet || b.Level != 0 || b.Marker != "•" {
		t.Errorf("unexpected first bullet: %+v", b)
	}
	if got := b.Runs.Text(); got != "item one" {
		t.Errorf("unexpected first bullet text: %q", got)
	}

	b = blocks[1]
	if b.Kind != BlockBullet || b.Level != 1 || b.Marker != "-" {
		t.Errorf("unexpected nested bullet: %+v", b)
	}
	if got := b.Runs.Text(); got != "nested" {
		t.Errorf("unexpected nested bullet text: %q", got)
	}

	if blocks[2].Kind != BlockParagraph {
		t.Errorf("expected paragraph, got %+v", blocks[2])
	}
}

func TestBlocks_BulletKeepsBoldRuns(t *testing.T) {
	runs := capture.Runs{{Text: "• ", Bold: false}, {Text: "bold item", Bold: true}}

	blocks := Blocks(runs)
	if len(blocks) != 1 || blocks[0].Kind != BlockBullet {
		t.Fatalf("expected single bullet, got %+v", blocks)
	}
	want := capture.Runs{{Text: "bold item", Bold: true}}
	if !reflect.DeepEqual(blocks[0].Runs, want) {
		t.Errorf("unexpected bullet runs: %+v", blocks[0].Runs)
	}
}

func TestBlocks_NumberedHeadings(t *testing.T) {
	cases := []struct {
		text  string
		level int
	}{
		{"3 Overview", 1},
		{"2.1 Results", 2},
		{"1.2.3.4 Deep section", 3},
	}
	for _, c := range cases {
		blocks := Blocks(capture.Runs{{Text: c.text}})
		if len(blocks) != 1 {
			t.Fatalf("%q: expected single block, got %+v", c.text, blocks)
		}
		if blocks[0].Kind != BlockHeading || blocks[0].Level != c.level {
			t.Errorf("%q: expected heading level %d, got %+v", c.text, c.level, blocks[0])
		}
	}
}

func TestBlocks_BoldLineIsHeading(t *testing.T) {
	blocks := Blocks(capture.Runs{{Text: "IMPORTANT", Bold: true}})
	if len(blocks) != 1 || blocks[0].Kind != BlockHeading || blocks[0].Level != 1 {
		t.Fatalf("expected level 1 heading, got %+v", blocks)
	}

	// mostly plain text never promotes to a heading
	blocks = Blocks(capture.Runs{{Text: "bold", Bold: true}, {Text: " but the rest of the line stays plain", Bold: false}})
	if len(blocks) != 1 || blocks[0].Kind != BlockParagraph {
		t.Fatalf("expected paragraph, got %+v", blocks)
	}
}

func TestBlocks_SmoothsShortBoldPrefix(t *testing.T) {
	runs := capture.Runs{
		{Text: "xx", Bold: false},
		{Text: "yzab", Bold: true},
		{Text: " rest of the line stays plain", Bold: false},
	}

	blocks := Blocks(runs)
	if len(blocks) != 1 || blocks[0].Kind != BlockParagraph {
		t.Fatalf("expected single paragraph, got %+v", blocks)
	}
	want := capture.Runs{
		{Text: "xxyzab", Bold: true},
		{Text: " rest of the line stays plain", Bold: false},
	}
	if !reflect.DeepEqual(blocks[0].Runs, want) {
		t.Errorf("unexpected runs after smoothing: %+v", blocks[0].Runs)
	}
}

func TestBlocks_LongPrefixLeftAlone(t *testing.T) {
	runs := capture.Runs{
		{Text: "abc", Bold: false},
		{Text: "def", Bold: true},
		{Text: " tail words here", Bold: false},
	}

	blocks := Blocks(runs)
	if len(blocks) != 1 {
		t.Fatalf("expected single block, got %+v", blocks)
	}
	if !reflect.DeepEqual(blocks[0].Runs, runs) {
		t.Errorf("three character prefix must not be promoted: %+v", blocks[0].Runs)
	}
}

func TestBlocks_Empty(t *testing.T) {
	blocks := Blocks(nil)
	if len(blocks) != 1 || blocks[0].Kind != BlockBlank {
		t.Fatalf("expected single blank block, got %+v", blocks)
	}
}

func TestDumpBlocks(t *testing.T) {
	runs := capture.Runs{{Text: "HEAD", Bold: true}, {Text: "\n• item", Bold: false}}

	got := DumpBlocks(Blocks(runs))
	want := "blocks: 2\n" +
		"  [0] heading level=1\n" +
		"    bold: \"HEAD\"\n" +
		"  [1] bullet level=0 marker=•\n" +
		"    text: \"item\"\n"
	if got != want {
		t.Errorf("unexpected dump:\n%s\nwant:\n%s", got, want)
	}
}

func TestDumpBlocks_QuotesControlCharacters(t *testing.T) {
	got := DumpBlocks([]Block{{
		Kind: BlockParagraph,
		Runs: capture.Runs{{Text: "tab\there"}},
	}})
	want := "blocks: 1\n" +
		"  [0] paragraph\n" +
		"    text: \"tab\\there\"\n"
	if got != want {
		t.Errorf("unexpected dump:\n%s\nwant:\n%s", got, want)
	}
}

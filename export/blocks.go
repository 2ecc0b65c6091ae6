// Package export renders captured notes into documents: standalone HTML or
// Markdown files, or a single zip bundle with attachments.
package export

import (
	"regexp"
	"strings"
	"unicode"

	"clipnote/capture"
)

// BlockKind classifies one paragraph of a note for rendering.
type BlockKind int

const (
	BlockBlank BlockKind = iota
	BlockHeading
	BlockBullet
	BlockParagraph
)

// Block is one renderable paragraph.
type Block struct {
	Kind   BlockKind
	Level  int // heading level 1..3, bullet nesting depth from 0
	Marker string
	Runs   capture.Runs
}

const (
	bulletIndentWidth = 4
	headingMaxLen     = 110
	headingBoldRatio  = 0.8
)

var (
	reBulletPrefix    = regexp.MustCompile("^([ \t]*)([-*+•◦▪▫])\\s")
	reNumberedHeading = regexp.MustCompile(`^\s*(\d+(?:\.\d+)*)[.)]?\s+\S`)
	reLetterWord      = regexp.MustCompile("[A-Za-zÀ-ɏ]+")
)

// Blocks turns a note's run sequence into renderable paragraphs.
func Blocks(runs capture.Runs) []Block {
	var out []Block
	for _, p := range paragraphs(runs) {
		out = append(out, classify(smoothBoldPrefixes(p)))
	}
	if len(out) == 0 {
		out = append(out, Block{Kind: BlockBlank})
	}
	return out
}

// paragraphs splits runs on newlines keeping bold attribution of every span.
func paragraphs(runs capture.Runs) []capture.Runs {
	out := []capture.Runs{nil}
	for _, r := range runs {
		parts := strings.Split(r.Text, "\n")
		for i, part := range parts {
			if part != "" {
				last := len(out) - 1
				out[last] = out[last].Append(part, r.Bold)
			}
			if i < len(parts)-1 {
				out = append(out, nil)
			}
		}
	}
	return out
}

type styledChar struct {
	r    rune
	bold bool
}

// smoothBoldPrefixes repairs a frequent producer artifact: the first one or
// two characters of an otherwise bold word arriving as a non-bold run. Such
// prefixes are promoted to bold so the word renders uniformly.
func smoothBoldPrefixes(runs capture.Runs) capture.Runs {
	if len(runs) == 0 {
		return runs
	}

	var chars []styledChar
	for _, r := range runs {
		for _, c := range r.Text {
			chars = append(chars, styledChar{r: c, bold: r.Bold})
		}
	}
	if len(chars) == 0 {
		return runs
	}

	plain := make([]rune, len(chars))
	for i, c := range chars {
		plain[i] = c.r
	}
	text := string(plain)

	for _, span := range reLetterWord.FindAllStringIndex(text, -1) {
		// byte offsets to rune offsets
		start := len([]rune(text[:span[0]]))
		end := start + len([]rune(text[span[0]:span[1]]))

		var anyBold, allBold = false, true
		for i := start; i < end; i++ {
			if chars[i].bold {
				anyBold = true
			} else {
				allBold = false
			}
		}
		if !anyBold || allBold {
			continue
		}

		prefix := 0
		for prefix < end-start && !chars[start+prefix].bold {
			prefix++
		}
		rest := true
		for i := start + prefix; i < end; i++ {
			if !chars[i].bold {
				rest = false
				break
			}
		}
		if prefix > 0 && prefix <= 2 && rest {
			for i := start; i < start+prefix; i++ {
				chars[i].bold = true
			}
		}
	}

	var out capture.Runs
	for _, c := range chars {
		out = out.Append(string(c.r), c.bold)
	}
	return out
}

func classify(runs capture.Runs) Block {
	text := runs.Text()
	if strings.TrimSpace(text) == "" {
		return Block{Kind: BlockBlank}
	}

	if m := reBulletPrefix.FindStringSubmatch(text); m != nil {
		prefixLen := len(m[0])
		return Block{
			Kind:   BlockBullet,
			Level:  bulletLevel(m[1]),
			Marker: m[2],
			Runs:   trimRunPrefix(runs, prefixLen),
		}
	}

	if level := headingLevel(runs, text); level > 0 {
		return Block{Kind: BlockHeading, Level: level, Runs: runs}
	}
	return Block{Kind: BlockParagraph, Runs: runs}
}

// bulletLevel derives nesting depth from leading whitespace, expanding tabs
// to the indent width.
func bulletLevel(indent string) int {
	width := 0
	for _, c := range indent {
		if c == '\t' {
			width += bulletIndentWidth - width%bulletIndentWidth
		} else {
			width++
		}
	}
	return width / bulletIndentWidth
}

// headingLevel recognizes numbered headings ("2.1 Results") by their dotted
// depth and short fully bold lines as level one.
func headingLevel(runs capture.Runs, text string) int {
	if m := reNumberedHeading.FindStringSubmatch(text); m != nil {
		level := strings.Count(m[1], ".") + 1
		if level > 3 {
			level = 3
		}
		return level
	}

	if len(strings.TrimSpace(text)) > headingMaxLen {
		return 0
	}

	var total, bold int
	for _, r := range runs {
		for _, c := range r.Text {
			if !unicode.IsLetter(c) {
				continue
			}
			total++
			if r.Bold {
				bold++
			}
		}
	}
	if total >= 3 && float64(bold)/float64(total) >= headingBoldRatio {
		return 1
	}
	return 0
}

// trimRunPrefix drops the first n bytes of the sequence, splitting a run if
// the cut lands inside it.
func trimRunPrefix(runs capture.Runs, n int) capture.Runs {
	var out capture.Runs
	remaining := n
	for _, r := range runs {
		if remaining >= len(r.Text) {
			remaining -= len(r.Text)
			continue
		}
		text := r.Text[remaining:]
		remaining = 0
		if text != "" {
			out = out.Append(text, r.Bold)
		}
	}
	return out
}

// Package capture reconciles clipboard rich-text representations (CF_HTML
// markup, RTF and plain text) into a single ordered sequence of bold /
// not-bold text runs.
package capture

import (
	"fmt"
	"hash/fnv"
)

// Source identifies which clipboard representation a capture was built from.
type Source int

const (
	SourceText Source = iota
	SourceHTML
	SourceRTF
)

func (s Source) String() string {
	switch s {
	case SourceHTML:
		return "html"
	case SourceRTF:
		return "rtf"
	case SourceText:
		return "text"
	default:
		// this should never happen
		panic("unsupported capture source")
	}
}

// Run is a maximal span of text sharing one bold state. Text is never empty
// in a normalized sequence and no two adjacent runs share the same bold
// value.
type Run struct {
	Text string
	Bold bool
}

// Runs is an ordered run sequence.
type Runs []Run

// Text returns the concatenation of all run texts.
func (rs Runs) Text() string {
	var size int
	for _, r := range rs {
		size += len(r.Text)
	}
	buf := make([]byte, 0, size)
	for _, r := range rs {
		buf = append(buf, r.Text...)
	}
	return string(buf)
}

// HasBold reports whether any run in the sequence is bold.
func (rs Runs) HasBold() bool {
	for _, r := range rs {
		if r.Bold {
			return true
		}
	}
	return false
}

// BoldCount returns the number of bold runs.
func (rs Runs) BoldCount() int {
	var n int
	for _, r := range rs {
		if r.Bold {
			n++
		}
	}
	return n
}

// Append adds text with the given bold state merging into the previous run
// when the state matches. Parsers use it to keep sequences merged as they are
// produced.
func (rs Runs) Append(text string, bold bool) Runs {
	if text == "" {
		return rs
	}
	if n := len(rs); n > 0 && rs[n-1].Bold == bold {
		rs[n-1].Text += text
		return rs
	}
	return append(rs, Run{Text: text, Bold: bold})
}

// Capture is the reconciled result of one clipboard read attempt. It is
// constructed fresh per read and never persisted by this package, the caller
// keeps Signature of the last accepted capture to detect content changes
// between polls.
type Capture struct {
	Text      string
	Runs      Runs
	Source    Source
	Signature string
	// Detail carries a diagnostic for plain-text-only fallbacks, naming the
	// raw format names seen on the clipboard.
	Detail string
}

// newCapture builds a capture over normalized runs computing its signature.
func newCapture(source Source, runs Runs) *Capture {
	return &Capture{
		Text:      runs.Text(),
		Runs:      runs,
		Source:    source,
		Signature: signature(source, runs),
	}
}

func signature(source Source, runs Runs) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s\x00", source)
	for _, r := range runs {
		fmt.Fprintf(h, "%s\x00%t\x00", r.Text, r.Bold)
	}
	return fmt.Sprintf("%s:%016x", source, h.Sum64())
}

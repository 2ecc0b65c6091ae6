package capture

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"clipnote/clipboard"
)

// similarityThreshold is the minimum alignment ratio between a markup
// candidate and the plain text for the candidate to be trusted. Below it the
// markup likely describes different content (stale fragment, surrounding
// chrome) and plain text wins.
const similarityThreshold = 0.28

// similarityCap bounds the quadratic alignment computation.
const similarityCap = 4096

// Candidates are the independently parsed representations of one clipboard
// read. HTML holds zero or more normalized run-sequence candidates in
// precedence order (fragment, alternate fragment, whole markup), RTF the
// single legacy candidate.
type Candidates struct {
	PlainText string
	HTML      []Runs
	RTF       Runs
	// FormatNames lists raw format names seen on the clipboard for
	// diagnostics. Called only when the plain-text fallback is taken, so an
	// implementation may enumerate the clipboard lazily.
	FormatNames func() []string
}

// Reconciler selects the best capture among disagreeing representations.
type Reconciler struct {
	log *zap.Logger
}

func NewReconciler(log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{log: log.Named("reconcile")}
}

type score struct {
	hasBold    int
	similarity float64
	lengthPen  int // negative absolute canonical length delta
	length     int
}

func (s score) better(than score) bool {
	if s.hasBold != than.hasBold {
		return s.hasBold > than.hasBold
	}
	if s.similarity != than.similarity {
		return s.similarity > than.similarity
	}
	if s.lengthPen != than.lengthPen {
		return s.lengthPen > than.lengthPen
	}
	return s.length > than.length
}

// Reconcile picks the best capture or returns nil when the clipboard holds
// nothing usable.
func (r *Reconciler) Reconcile(c Candidates) *Capture {
	canonicalPlain := CanonicalText(c.PlainText)

	var (
		htmlCapture *Capture
		best        score
		haveBest    bool
	)
	for _, runs := range c.HTML {
		if len(runs) == 0 {
			continue
		}
		text := runs.Text()
		if text == "" {
			continue
		}
		canonical := CanonicalText(text)
		sc := score{
			similarity: Similarity(canonical, canonicalPlain),
			lengthPen:  -abs(len(canonical) - len(canonicalPlain)),
			length:     len(text),
		}
		if runs.HasBold() {
			sc.hasBold = 1
		}
		if !haveBest || sc.better(best) {
			best = sc
			haveBest = true
			if canonicalPlain == "" || sc.similarity >= similarityThreshold {
				htmlCapture = newCapture(SourceHTML, runs)
			} else {
				htmlCapture = nil
			}
		}
	}

	var rtfCapture *Capture
	if len(c.RTF) > 0 && c.RTF.Text() != "" {
		rtfCapture = newCapture(SourceRTF, c.RTF)
	}

	switch {
	case htmlCapture != nil && htmlCapture.Runs.HasBold():
		return htmlCapture
	case rtfCapture != nil && rtfCapture.Runs.HasBold():
		return rtfCapture
	case htmlCapture != nil:
		return htmlCapture
	case rtfCapture != nil:
		return rtfCapture
	}

	text := strings.TrimSpace(NormalizeText(c.PlainText))
	if text == "" {
		return nil
	}

	capture := newCapture(SourceText, Runs{{Text: text}})
	var names []string
	if c.FormatNames != nil {
		names = c.FormatNames()
	}
	capture.Detail = r.plainDetail(names)
	r.log.Debug("Falling back to plain text", zap.String("detail", capture.Detail))
	return capture
}

// plainDetail names the formats that were visible when rich text recovery
// failed, to aid triage of misbehaving producers.
func (r *Reconciler) plainDetail(names []string) string {
	var richSeen bool
	for _, name := range names {
		switch clipboard.KindOfName(name) {
		case clipboard.KindHTML, clipboard.KindRTF:
			richSeen = true
		}
		if richSeen {
			break
		}
	}

	visible := "none"
	if len(names) > 0 {
		shown := names
		if len(shown) > 6 {
			shown = shown[:6]
		}
		visible = strings.Join(shown, ", ")
	}
	if richSeen {
		return fmt.Sprintf("html/rtf format present but bold runs were not recovered. formats: %s", visible)
	}
	return fmt.Sprintf("no html/rtf format on clipboard. formats: %s", visible)
}

// Similarity is a normalized alignment ratio between two canonicalized
// texts: twice the length of their longest common subsequence over the total
// length. Inputs are truncated to a fixed cap to bound the quadratic
// alignment.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if len(a) > similarityCap {
		a = a[:similarityCap]
	}
	if len(b) > similarityCap {
		b = b[:similarityCap]
	}
	if a == b {
		return 1
	}

	// classic two-row LCS over bytes
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			if a[i] == b[j] {
				curr[j+1] = prev[j] + 1
			} else if prev[j+1] >= curr[j] {
				curr[j+1] = prev[j+1]
			} else {
				curr[j+1] = curr[j]
			}
		}
		prev, curr = curr, prev
	}
	matched := prev[len(b)]
	return 2 * float64(matched) / float64(len(a)+len(b))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package capture

import (
	"strings"

	"go.uber.org/zap"

	"clipnote/clipboard"
)

// Predefined text format identifiers, tried in order.
var plainTextFormatIDs = []uint32{13 /* CF_UNICODETEXT */, 1 /* CF_TEXT */}

// Engine runs one complete capture attempt: read every clipboard
// representation, parse each into run-sequence candidates and reconcile them
// into a single capture. Everything it builds lives for one attempt only -
// callers keep the signature of the last accepted capture to detect change.
type Engine struct {
	reader *clipboard.Reader
	styles *StyleMapBuilder
	rec    *Reconciler
	log    *zap.Logger
}

func NewEngine(board clipboard.Board, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		reader: clipboard.NewReader(board, log),
		styles: NewStyleMapBuilder(log),
		rec:    NewReconciler(log),
		log:    log.Named("capture"),
	}
}

// Capture reads the clipboard once and returns the reconciled result, or nil
// when the clipboard holds nothing usable. Never returns an error: parser
// failures discard that candidate and format absence falls through to the
// remaining representations.
func (e *Engine) Capture() *Capture {
	plain := e.readPlainText()

	return e.rec.Reconcile(Candidates{
		PlainText:   plain,
		HTML:        e.htmlCandidates(),
		RTF:         e.rtfRuns(),
		FormatNames: e.reader.AvailableFormatNames,
	})
}

func (e *Engine) readPlainText() string {
	raw := e.reader.ReadFirst(plainTextFormatIDs)
	if raw == nil {
		return ""
	}
	return strings.TrimSpace(NormalizeText(DecodeBytes(raw)))
}

// htmlCandidates parses up to three independently extracted fragments of the
// markup payload: the header-located fragment, the marker-located fragment
// of the decoded document and the whole document. They frequently disagree -
// reconciliation picks the best one.
func (e *Engine) htmlCandidates() []Runs {
	raw := e.reader.ReadFormat(clipboard.HTMLFormatNames, "html")
	if raw == nil {
		return nil
	}

	frag := ExtractFragment(raw)
	wholeText := DecodeBytes(frag.Whole)
	fragText := DecodeBytes(frag.Bytes)
	if fragText == "" {
		// payload without CF_HTML headers, extract from decoded text
		wholeText = DecodeBytes(raw)
		fragText = ExtractFragmentText(wholeText)
	}

	maps := e.styles.Build(wholeText)

	var texts []string
	seen := make(map[string]bool)
	for _, t := range []string{fragText, ExtractFragmentText(wholeText), wholeText} {
		if t != "" && !seen[t] {
			seen[t] = true
			texts = append(texts, t)
		}
	}

	var out []Runs
	for _, t := range texts {
		if runs := e.parseHTML(t, maps); len(runs) > 0 {
			out = append(out, runs)
		}
	}
	return out
}

// parseHTML isolates a single candidate parse - a panicking parser discards
// only its own candidate.
func (e *Engine) parseHTML(text string, maps *StyleMaps) (runs Runs) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Debug("Markup candidate discarded", zap.Any("panic", r))
			runs = nil
		}
	}()
	return NewHTMLRunParser(maps, e.log).Parse(text)
}

func (e *Engine) rtfRuns() (runs Runs) {
	raw := e.reader.ReadFormat(clipboard.RTFFormatNames, "rtf")
	if raw == nil {
		return nil
	}
	text := StripRTFPreamble(DecodeBytes(raw))
	if text == "" {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			e.log.Debug("RTF candidate discarded", zap.Any("panic", r))
			runs = nil
		}
	}()
	return NewRTFRunParser(e.log).Parse(text)
}

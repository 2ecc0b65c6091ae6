package capture

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// blockTags close with a paragraph break unless we are inside a list item.
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"header": true, "footer": true, "aside": true, "blockquote": true,
	"pre": true, "ul": true, "ol": true, "table": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// HTMLRunParser walks markup tags and produces an ordered run sequence,
// resolving bold state from tag identity, inline styles, legacy attributes
// and class membership.
//
// Markup from the clipboard is routinely unbalanced, so close tags pop the
// nearest matching open tag scanning outward through an explicit stack
// instead of assuming proper nesting.
type HTMLRunParser struct {
	maps *StyleMaps
	log  *zap.Logger

	runs      Runs
	stack     []tagFrame
	boldDepth int
	skipDepth int
	liDepth   int
}

type tagFrame struct {
	name       string
	pushesBold bool
}

func NewHTMLRunParser(maps *StyleMaps, log *zap.Logger) *HTMLRunParser {
	if log == nil {
		log = zap.NewNop()
	}
	if maps == nil {
		maps = &StyleMaps{ClassBold: map[string]bool{}, Vars: map[string]string{}}
	}
	return &HTMLRunParser{maps: maps, log: log.Named("html-runs")}
}

// Parse tokenizes the markup fragment and returns the normalized run
// sequence.
func (p *HTMLRunParser) Parse(fragment string) Runs {
	p.runs = nil
	p.stack = p.stack[:0]
	p.boldDepth, p.skipDepth, p.liDepth = 0, 0, 0

	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return NormalizeRuns(p.runs)
		case html.StartTagToken:
			name, attrs := tagNameAndAttrs(z)
			p.openTag(name, attrs)
		case html.SelfClosingTagToken:
			name, attrs := tagNameAndAttrs(z)
			p.openTag(name, attrs)
			p.closeTag(name)
		case html.EndTagToken:
			name, _ := z.TagName()
			p.closeTag(strings.ToLower(string(name)))
		case html.TextToken:
			if p.skipDepth == 0 {
				p.append(string(z.Text()), p.boldDepth > 0)
			}
		}
	}
}

func tagNameAndAttrs(z *html.Tokenizer) (string, map[string]string) {
	name, hasAttr := z.TagName()
	var attrs map[string]string
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		if attrs == nil {
			attrs = make(map[string]string)
		}
		attrs[strings.ToLower(string(key))] = string(val)
	}
	return strings.ToLower(string(name)), attrs
}

func (p *HTMLRunParser) openTag(name string, attrs map[string]string) {
	if name == "script" || name == "style" {
		p.skipDepth++
		return
	}
	if p.skipDepth > 0 {
		return
	}

	if name == "br" {
		p.append("\n", false)
		return
	}

	if name == "li" {
		p.appendNewline()
		p.append("- ", false)
		p.liDepth++
	}

	pushesBold := name == "b" || name == "strong" || name == "th" || isHeading(name)
	if !pushesBold && p.attrsImplyBold(attrs) {
		pushesBold = true
	}
	if pushesBold {
		p.boldDepth++
	}
	p.stack = append(p.stack, tagFrame{name: name, pushesBold: pushesBold})
}

func (p *HTMLRunParser) closeTag(name string) {
	if name == "script" || name == "style" {
		if p.skipDepth > 0 {
			p.skipDepth--
		}
		return
	}
	if p.skipDepth > 0 {
		return
	}

	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].name != name {
			continue
		}
		if p.stack[i].pushesBold && p.boldDepth > 0 {
			p.boldDepth--
		}
		p.stack = append(p.stack[:i], p.stack[i+1:]...)
		break
	}

	switch {
	case name == "li":
		if p.liDepth > 0 {
			p.liDepth--
		}
		p.appendNewline()
	case blockTags[name]:
		if p.liDepth == 0 {
			p.appendNewline()
		}
	}
}

func isHeading(name string) bool {
	return len(name) == 2 && name[0] == 'h' && name[1] >= '0' && name[1] <= '9'
}

func (p *HTMLRunParser) attrsImplyBold(attrs map[string]string) bool {
	if len(attrs) == 0 {
		return false
	}
	if StyleTextImpliesBold(attrs["style"], p.maps.Vars) {
		return true
	}

	if face := strings.ToLower(attrs["face"]); face != "" {
		for _, key := range []string{"bold", "black", "semibold", "demibold"} {
			if strings.Contains(face, key) {
				return true
			}
		}
	}

	if classes := attrs["class"]; classes != "" {
		for name := range strings.FieldsSeq(classes) {
			if p.maps.ClassBold[name] {
				return true
			}
		}
	}
	return false
}

func (p *HTMLRunParser) append(text string, bold bool) {
	p.runs = p.runs.Append(text, bold)
}

// appendNewline adds a paragraph break unless output is empty or already
// ends with one.
func (p *HTMLRunParser) appendNewline() {
	if len(p.runs) == 0 {
		return
	}
	if strings.HasSuffix(p.runs[len(p.runs)-1].Text, "\n") {
		return
	}
	p.append("\n", false)
}

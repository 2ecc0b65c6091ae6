package capture

import (
	"regexp"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// StyleMaps hold what the run parser needs from embedded stylesheets: which
// class names imply bold text and the values of CSS custom properties for
// var() resolution. Built once per markup payload.
type StyleMaps struct {
	ClassBold map[string]bool
	Vars      map[string]string // lowercased variable name (with --) to raw value
}

// varResolveDepth bounds recursive var() resolution against cyclic
// definitions.
const varResolveDepth = 6

var (
	reStyleBlock  = regexp.MustCompile(`(?is)<style[^>]*>(.*?)</style>`)
	reClassToken  = regexp.MustCompile(`\.([A-Za-z0-9_-]+)`)
	reVarRef      = regexp.MustCompile(`^var\(\s*(--[A-Za-z0-9_-]+)\s*(?:,\s*([^)]+))?\)`)
	reImportant   = regexp.MustCompile(`(?i)\s*!\s*important\s*$`)
	reBoldKeyword = regexp.MustCompile(`\b(bold|bolder|semibold|demibold|black)\b`)
	reBoldWeight  = regexp.MustCompile(`\b([5-9]00)\b`)
	reLeadingNum  = regexp.MustCompile(`^([0-9]{3,4})`)
	reWghtAxis    = regexp.MustCompile(`['"]?wght['"]?\s*([0-9]{2,4})`)
)

// StyleMapBuilder scans style blocks of a markup payload.
type StyleMapBuilder struct {
	log *zap.Logger
}

func NewStyleMapBuilder(log *zap.Logger) *StyleMapBuilder {
	if log == nil {
		log = zap.NewNop()
	}
	return &StyleMapBuilder{log: log.Named("stylemap")}
}

// Build collects variable declarations and bold-implying class names from
// every style block of the markup. Variables are collected from all blocks
// first so that a rule may reference a variable declared later.
func (b *StyleMapBuilder) Build(markup string) *StyleMaps {
	maps := &StyleMaps{
		ClassBold: make(map[string]bool),
		Vars:      make(map[string]string),
	}
	if markup == "" {
		return maps
	}

	blocks := reStyleBlock.FindAllStringSubmatch(markup, -1)
	if len(blocks) == 0 {
		return maps
	}

	type ruleset struct {
		selectors    []string
		declarations map[string]string
	}
	var rules []ruleset

	for _, m := range blocks {
		input := parse.NewInput(strings.NewReader(m[1]))
		parser := css.NewParser(input, false)

		var (
			pending []string
			decls   map[string]string
		)
		for {
			gt, _, data := parser.Next()
			if gt == css.ErrorGrammar {
				break
			}
			switch gt {
			case css.QualifiedRuleGrammar:
				// one selector of a comma separated group
				pending = append(pending, selectorStrings(data, parser.Values())...)
			case css.BeginRulesetGrammar:
				pending = append(pending, selectorStrings(data, parser.Values())...)
				decls = make(map[string]string)
			case css.EndRulesetGrammar:
				if decls != nil {
					rules = append(rules, ruleset{selectors: pending, declarations: decls})
				}
				pending, decls = nil, nil
			case css.CustomPropertyGrammar:
				name := strings.ToLower(string(data))
				value := strings.TrimSpace(tokensString(parser.Values()))
				if name != "" && value != "" {
					maps.Vars[name] = value
				}
			case css.DeclarationGrammar:
				if decls != nil {
					decls[strings.ToLower(string(data))] = strings.ToLower(strings.TrimSpace(tokensString(parser.Values())))
				}
			}
		}
	}

	for _, r := range rules {
		if !declarationsImplyBold(r.declarations, maps.Vars) {
			continue
		}
		for _, sel := range r.selectors {
			for _, cm := range reClassToken.FindAllStringSubmatch(sel, -1) {
				maps.ClassBold[cm[1]] = true
			}
		}
	}

	b.log.Debug("Built style maps",
		zap.Int("style blocks", len(blocks)),
		zap.Int("bold classes", len(maps.ClassBold)),
		zap.Int("variables", len(maps.Vars)))
	return maps
}

func selectorStrings(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}
	var out []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func tokensString(tokens []css.Token) string {
	var parts []string
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			parts = append(parts, string(t.Data))
		} else if len(parts) > 0 {
			parts = append(parts, " ")
		}
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}

// resolveValue strips !important and chases var() references against the
// variable table, following fallbacks, down to a fixed depth.
func resolveValue(value string, vars map[string]string, depth int) string {
	text := strings.TrimSpace(value)
	if depth > varResolveDepth || text == "" {
		return text
	}
	text = strings.TrimSpace(reImportant.ReplaceAllString(text, ""))

	if m := reVarRef.FindStringSubmatch(text); m != nil {
		name := strings.ToLower(m[1])
		resolved := ""
		if vars != nil {
			resolved = vars[name]
		}
		if resolved == "" {
			resolved = strings.TrimSpace(m[2])
		}
		return resolveValue(resolved, vars, depth+1)
	}
	return text
}

// declarationsImplyBold is the style predicate. Properties are inspected in
// priority order: the font shorthand, font-weight, a wght axis in
// font-variation-settings and finally the font-family name.
func declarationsImplyBold(decls map[string]string, vars map[string]string) bool {
	if v, ok := decls["font"]; ok {
		value := resolveValue(v, vars, 0)
		if reBoldKeyword.MatchString(value) || reBoldWeight.MatchString(value) {
			return true
		}
	}

	if v, ok := decls["font-weight"]; ok {
		value := strings.TrimSpace(resolveValue(v, vars, 0))
		switch value {
		case "bold", "bolder", "semibold", "demibold", "medium", "black":
			return true
		}
		if m := reLeadingNum.FindStringSubmatch(value); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n >= 500 {
				return true
			}
		}
	}

	if v, ok := decls["font-variation-settings"]; ok {
		value := resolveValue(v, vars, 0)
		if m := reWghtAxis.FindStringSubmatch(value); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n >= 500 {
				return true
			}
		}
	}

	if v, ok := decls["font-family"]; ok {
		value := resolveValue(v, vars, 0)
		for _, key := range []string{"bold", "black", "semibold", "demibold"} {
			if strings.Contains(value, key) {
				return true
			}
		}
	}
	return false
}

// StyleTextImpliesBold evaluates an inline style attribute value.
func StyleTextImpliesBold(styleText string, vars map[string]string) bool {
	if styleText == "" {
		return false
	}

	decls := make(map[string]string)
	input := parse.NewInput(strings.NewReader(strings.ToLower(styleText)))
	parser := css.NewParser(input, true)
	for {
		gt, _, data := parser.Next()
		if gt == css.ErrorGrammar {
			break
		}
		if gt == css.DeclarationGrammar || gt == css.CustomPropertyGrammar {
			decls[strings.ToLower(string(data))] = strings.TrimSpace(tokensString(parser.Values()))
		}
	}
	return declarationsImplyBold(decls, vars)
}

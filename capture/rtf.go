package capture

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// RTFRunParser tokenizes the legacy rich-text clipboard format character by
// character. Group braces push and pop the current bold state on an explicit
// stack, recognized control words mutate state or emit text and everything
// else is silently ignored - clipboard RTF is full of destinations we do not
// care about.
type RTFRunParser struct {
	log *zap.Logger

	runs        Runs
	bold        bool
	boldStack   []bool
	ucSkip      int // \ucN - fallback characters following each \uN escape
	pendingSkip int
}

func NewRTFRunParser(log *zap.Logger) *RTFRunParser {
	if log == nil {
		log = zap.NewNop()
	}
	return &RTFRunParser{log: log.Named("rtf-runs")}
}

// Parse converts RTF text to a normalized run sequence. A malformed document
// yields whatever was recovered up to that point - never an error.
func (p *RTFRunParser) Parse(text string) Runs {
	p.runs = nil
	p.bold = false
	p.boldStack = p.boldStack[:0]
	p.ucSkip = 1
	p.pendingSkip = 0

	i, n := 0, len(text)
	for i < n {
		ch := text[i]

		// \uN escapes arm a counter suppressing the legacy fallback
		// representation that follows them.
		if p.pendingSkip > 0 && ch != '\\' && ch != '{' && ch != '}' {
			p.pendingSkip--
			i++
			continue
		}

		switch ch {
		case '{':
			p.boldStack = append(p.boldStack, p.bold)
			i++
			continue
		case '}':
			if len(p.boldStack) > 0 {
				p.bold = p.boldStack[len(p.boldStack)-1]
				p.boldStack = p.boldStack[:len(p.boldStack)-1]
			}
			i++
			continue
		}

		if ch != '\\' {
			p.append(string(ch), p.bold)
			i++
			continue
		}

		i++
		if i >= n {
			break
		}

		sym := text[i]
		switch sym {
		case '\\', '{', '}':
			p.append(string(sym), p.bold)
			i++
			continue
		case '\'':
			if i+2 < n {
				p.appendHexByte(text[i+1 : i+3])
				i += 3
			} else {
				i++
			}
			continue
		}

		if !isASCIILetter(sym) {
			switch sym {
			case '~':
				p.append(" ", p.bold)
			case '_', '-':
				p.append("-", p.bold)
			case '*':
				// marks an ignorable destination, nothing to do here
			}
			i++
			continue
		}

		var (
			word   string
			number int
			hasNum bool
		)
		word, number, hasNum, i = readControlWord(text, i)
		p.control(word, number, hasNum)
	}

	return NormalizeRuns(p.runs)
}

func (p *RTFRunParser) control(word string, number int, hasNum bool) {
	switch word {
	case "b":
		p.bold = !(hasNum && number == 0)
	case "par", "line":
		p.append("\n", false)
	case "tab":
		p.append("\t", p.bold)
	case "emdash", "endash":
		p.append("-", p.bold)
	case "bullet":
		p.append("- ", false)
	case "u":
		if hasNum {
			cp := number
			if cp < 0 {
				cp += 65536
			}
			p.append(string(rune(cp)), p.bold)
			p.pendingSkip = max(0, p.ucSkip)
		}
	case "uc":
		if hasNum && number >= 0 {
			p.ucSkip = number
		}
	}
}

// readControlWord consumes letters, an optional signed numeric parameter and
// the single space delimiter that may follow a control word.
func readControlWord(text string, i int) (string, int, bool, int) {
	n := len(text)
	start := i
	for i < n && isASCIILetter(text[i]) {
		i++
	}
	word := text[start:i]

	sign := 1
	if i < n && (text[i] == '-' || text[i] == '+') {
		if text[i] == '-' {
			sign = -1
		}
		i++
	}

	numStart := i
	var number int
	for i < n && text[i] >= '0' && text[i] <= '9' {
		number = number*10 + int(text[i]-'0')
		i++
	}
	hasNum := i > numStart
	number *= sign

	if i < n && text[i] == ' ' {
		i++
	}
	return word, number, hasNum, i
}

func (p *RTFRunParser) appendHexByte(hex string) {
	var b byte
	for k := 0; k < 2; k++ {
		var v byte
		switch c := hex[k]; {
		case c >= '0' && c <= '9':
			v = c - '0'
		case c >= 'a' && c <= 'f':
			v = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			v = c - 'A' + 10
		default:
			return
		}
		b = b<<4 | v
	}
	r := charmap.Windows1252.DecodeByte(b)
	if r == 0 || r == utf8.RuneError {
		return
	}
	p.append(string(r), p.bold)
}

func (p *RTFRunParser) append(text string, bold bool) {
	p.runs = p.runs.Append(text, bold)
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// StripRTFPreamble drops any garbage before the opening {\rtf group.
func StripRTFPreamble(text string) string {
	if idx := strings.Index(text, `{\rtf`); idx > 0 {
		return text[idx:]
	}
	return text
}

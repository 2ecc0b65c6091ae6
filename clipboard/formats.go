// Package clipboard gives raw access to OS clipboard formats: registration
// and lookup of format identifiers by name, enumeration of what is currently
// available and retrieval of raw payload bytes. It never interprets payload
// content.
package clipboard

import "strings"

// Kind classifies a clipboard format by its registered name. Producers
// register rich text under different names, so classification goes through
// explicit alias tables rather than string matching at call sites.
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindHTML
	KindRTF
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindHTML:
		return "html"
	case KindRTF:
		return "rtf"
	default:
		return "unknown"
	}
}

// Format name aliases tried in order when requesting a representation.
var (
	HTMLFormatNames = []string{"HTML Format", "text/html", "CF_HTML", "HTML"}
	RTFFormatNames  = []string{"Rich Text Format", "text/rtf", "application/rtf", "RTF"}
)

var nameToKind = func() map[string]Kind {
	m := map[string]Kind{
		"cf_text":        KindText,
		"cf_unicodetext": KindText,
		"cf_oemtext":     KindText,
		"text":           KindText,
		"text/plain":     KindText,
	}
	for _, n := range HTMLFormatNames {
		m[strings.ToLower(n)] = KindHTML
	}
	for _, n := range RTFFormatNames {
		m[strings.ToLower(n)] = KindRTF
	}
	return m
}()

// KindOfName classifies a format name via the alias table, falling back to
// substring matching for decorated names such as "text/html; charset=utf-8"
// or vendor variants. The fallback checks rtf before html before text
// because "Rich Text Format" contains "text".
func KindOfName(name string) Kind {
	lowered := strings.ToLower(strings.TrimSpace(name))
	if k, ok := nameToKind[lowered]; ok {
		return k
	}
	switch {
	case strings.Contains(lowered, "rtf"):
		return KindRTF
	case strings.Contains(lowered, "html"):
		return KindHTML
	case strings.Contains(lowered, "unicodetext"), strings.Contains(lowered, "text/plain"):
		return KindText
	}
	return KindUnknown
}

// Well known predefined format identifiers, used only for diagnostics - the
// OS has no names for them.
var standardFormatNames = map[uint32]string{
	1:  "CF_TEXT",
	2:  "CF_BITMAP",
	3:  "CF_METAFILEPICT",
	4:  "CF_SYLK",
	5:  "CF_DIF",
	6:  "CF_TIFF",
	7:  "CF_OEMTEXT",
	8:  "CF_DIB",
	9:  "CF_PALETTE",
	10: "CF_PENDATA",
	11: "CF_RIFF",
	12: "CF_WAVE",
	13: "CF_UNICODETEXT",
	14: "CF_ENHMETAFILE",
	15: "CF_HDROP",
	16: "CF_LOCALE",
	17: "CF_DIBV5",
}

// StandardFormatName returns the display name of a predefined format
// identifier, or "" when the identifier is not predefined.
func StandardFormatName(id uint32) string {
	return standardFormatNames[id]
}

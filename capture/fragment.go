package capture

import (
	"bytes"
	"regexp"
	"strconv"
)

// CF_HTML payloads carry a descriptive header with byte offsets into the
// payload itself, see
// https://learn.microsoft.com/en-us/windows/win32/dataxchg/html-clipboard-format
// Offsets must be applied to the raw bytes BEFORE decoding - the header
// counts bytes, not characters.

var (
	reStartHTML     = regexp.MustCompile(`StartHTML:(\d+)`)
	reEndHTML       = regexp.MustCompile(`EndHTML:(\d+)`)
	reStartFragment = regexp.MustCompile(`StartFragment:(\d+)`)
	reEndFragment   = regexp.MustCompile(`EndFragment:(\d+)`)

	fragmentStartMarker = []byte("<!--StartFragment-->")
	fragmentEndMarker   = []byte("<!--EndFragment-->")

	reMarkerPair  = regexp.MustCompile(`(?is)<!--\s*StartFragment\s*-->(.*?)<!--\s*EndFragment\s*-->`)
	reTextOffsets = regexp.MustCompile(`(?is)StartFragment:(\d+).*?EndFragment:(\d+)`)
	reBody        = regexp.MustCompile(`(?is)<body[^>]*>(.*?)</body>`)
)

// Fragment is the part of a markup payload the producer intended to be
// pasted, together with the full markup it was cut from.
type Fragment struct {
	Bytes []byte // fragment slice
	Whole []byte // complete markup document
}

// ExtractFragment slices the pasteable fragment out of a raw CF_HTML
// payload. Invalid or absent header offsets degrade to comment-marker
// search, then to the whole payload.
func ExtractFragment(payload []byte) Fragment {
	compact := bytes.TrimRight(payload, "\x00")

	whole := compact
	if start, end, ok := offsetPair(compact, reStartHTML, reEndHTML); ok {
		whole = compact[start:end]
	}

	if start, end, ok := offsetPair(compact, reStartFragment, reEndFragment); ok {
		return Fragment{Bytes: compact[start:end], Whole: whole}
	}

	// No usable offsets - look for literal markers inside the document part.
	start := bytes.Index(whole, fragmentStartMarker)
	end := bytes.Index(whole, fragmentEndMarker)
	if start != -1 && end != -1 && end > start {
		return Fragment{Bytes: whole[start+len(fragmentStartMarker) : end], Whole: whole}
	}
	return Fragment{Bytes: whole, Whole: whole}
}

func offsetPair(data []byte, reStart, reEnd *regexp.Regexp) (int, int, bool) {
	ms := reStart.FindSubmatch(data)
	me := reEnd.FindSubmatch(data)
	if ms == nil || me == nil {
		return 0, 0, false
	}
	start, err := strconv.Atoi(string(ms[1]))
	if err != nil {
		return 0, 0, false
	}
	end, err := strconv.Atoi(string(me[1]))
	if err != nil {
		return 0, 0, false
	}
	if start < 0 || start >= end || end > len(data) {
		return 0, 0, false
	}
	return start, end, true
}

// ExtractFragmentText locates the pasteable fragment in already decoded
// markup - used when the payload arrived without CF_HTML headers. Tries the
// comment-marker pair, then numeric offsets embedded as text, then a body
// element, else returns the whole text.
func ExtractFragmentText(text string) string {
	if text == "" {
		return ""
	}
	if m := reMarkerPair.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := reTextOffsets.FindStringSubmatch(text); m != nil {
		start, err1 := strconv.Atoi(m[1])
		end, err2 := strconv.Atoi(m[2])
		if err1 == nil && err2 == nil && start >= 0 && start < end && end <= len(text) {
			return text[start:end]
		}
	}
	if m := reBody.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

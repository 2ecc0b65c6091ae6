package capture

import (
	"regexp"
	"strings"
)

var (
	reMultiSpace    = regexp.MustCompile(`[ \t]{2,}`)
	reBulletLine    = regexp.MustCompile(`\n[ \t]*-\s*\n`)
	reManyBlank     = regexp.MustCompile(`\n{3,}`)
	reCanonBullet   = regexp.MustCompile(`\n[ \t]*-\s*`)
	reAnyWhitespace = regexp.MustCompile(`\s+`)
)

// NormalizeText canonicalizes line endings and collapses repeated spaces
// within each line. Non-breaking space variants are turned into plain
// spaces.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = strings.ReplaceAll(text, "\u202f", " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = reMultiSpace.ReplaceAllString(line, " ")
	}
	return strings.Join(lines, "\n")
}

// NormalizeRuns cleans a raw run sequence for use: representation artifacts
// are collapsed, empty runs dropped, adjacent equal-bold runs merged and the
// sequence trimmed at both ends. Normalizing an already normalized sequence
// is a no-op.
func NormalizeRuns(runs Runs) Runs {
	var normalized Runs
	for _, r := range runs {
		cleaned := NormalizeText(r.Text)
		cleaned = strings.ReplaceAll(cleaned, "\u2022", "-")
		cleaned = reBulletLine.ReplaceAllString(cleaned, "\n- ")
		cleaned = reManyBlank.ReplaceAllString(cleaned, "\n\n")
		cleaned = strings.ReplaceAll(cleaned, "\n\n- ", "\n- ")
		cleaned = strings.ReplaceAll(cleaned, "\n-  ", "\n- ")
		if cleaned == "" {
			continue
		}
		normalized = normalized.Append(cleaned, r.Bold)
	}
	if len(normalized) == 0 {
		return nil
	}

	// collapse a leading space on a run following a run ending in a space
	for i := 1; i < len(normalized); i++ {
		if strings.HasSuffix(normalized[i-1].Text, " ") {
			normalized[i].Text = strings.TrimLeft(normalized[i].Text, " ")
		}
	}
	normalized = dropEmpty(normalized)
	if len(normalized) == 0 {
		return nil
	}

	normalized[0].Text = strings.TrimLeft(normalized[0].Text, " \t\n")
	normalized[len(normalized)-1].Text = strings.TrimRight(normalized[len(normalized)-1].Text, " \t\n")
	normalized = dropEmpty(normalized)
	if len(normalized) == 0 {
		return nil
	}
	return normalized
}

func dropEmpty(runs Runs) Runs {
	out := runs[:0]
	for _, r := range runs {
		if r.Text != "" {
			out = out.Append(r.Text, r.Bold)
		}
	}
	return out
}

// CanonicalText normalizes text solely for similarity comparison between
// representations: bullets become hyphens and vanish with their markers, all
// whitespace collapses to single spaces and the result is case folded. Never
// used for final output.
func CanonicalText(text string) string {
	if text == "" {
		return ""
	}
	canonical := NormalizeText(text)
	canonical = strings.ReplaceAll(canonical, "\u2022", "-")
	canonical = reCanonBullet.ReplaceAllString(canonical, "\n")
	canonical = reAnyWhitespace.ReplaceAllString(canonical, " ")
	return strings.ToLower(strings.TrimSpace(canonical))
}

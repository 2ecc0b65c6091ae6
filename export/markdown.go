package export

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"clipnote/capture"
)

// WriteMarkdown renders blocks as Markdown.
func WriteMarkdown(w io.Writer, title string, blocks []Block) error {
	var sb strings.Builder
	if title != "" {
		sb.WriteString("# ")
		sb.WriteString(title)
		sb.WriteString("\n\n")
	}

	for _, b := range blocks {
		switch b.Kind {
		case BlockBlank:
			sb.WriteString("\n")
		case BlockHeading:
			level := b.Level
			if level < 1 {
				level = 1
			}
			if level > 3 {
				level = 3
			}
			// exported note headings sit one level below the title
			sb.WriteString(strings.Repeat("#", level+1))
			sb.WriteString(" ")
			sb.WriteString(markdownRuns(b.Runs))
			sb.WriteString("\n\n")
		case BlockBullet:
			sb.WriteString(strings.Repeat("  ", b.Level))
			sb.WriteString("- ")
			sb.WriteString(markdownRuns(b.Runs))
			sb.WriteString("\n")
		default:
			sb.WriteString(markdownRuns(b.Runs))
			sb.WriteString("\n\n")
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// markdownRuns emits bold spans as strong emphasis, keeping whitespace
// outside the markers so they stay valid.
func markdownRuns(runs capture.Runs) string {
	var sb strings.Builder
	for _, r := range runs {
		if !r.Bold {
			sb.WriteString(r.Text)
			continue
		}
		core := strings.TrimSpace(r.Text)
		if core == "" {
			sb.WriteString(r.Text)
			continue
		}
		// the same whitespace predicate as TrimSpace, so lead+core+trail
		// reassembles the run exactly
		lead := r.Text[:len(r.Text)-len(strings.TrimLeftFunc(r.Text, unicode.IsSpace))]
		trail := r.Text[len(lead)+len(core):]
		fmt.Fprintf(&sb, "%s**%s**%s", lead, core, trail)
	}
	return sb.String()
}

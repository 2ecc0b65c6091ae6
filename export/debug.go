package export

import (
	"fmt"
	"strconv"
	"strings"
)

// treeWriter builds an indented diagnostic tree, two spaces per depth level.
// Text values are quoted so control characters and odd whitespace survive
// terminal output.
type treeWriter struct {
	sb strings.Builder
}

func (tw *treeWriter) line(depth int, format string, args ...any) {
	for range depth {
		tw.sb.WriteString("  ")
	}
	fmt.Fprintf(&tw.sb, format, args...)
	tw.sb.WriteByte('\n')
}

func (tw *treeWriter) text(depth int, label, value string) {
	for range depth {
		tw.sb.WriteString("  ")
	}
	tw.sb.WriteString(label)
	tw.sb.WriteString(": ")
	if value != "" {
		value = strconv.Quote(value)
	}
	tw.sb.WriteString(value)
	tw.sb.WriteByte('\n')
}

// DumpBlocks renders the classified block structure of a note as an indented
// tree, for diagnostics.
func DumpBlocks(blocks []Block) string {
	var tw treeWriter
	tw.line(0, "blocks: %d", len(blocks))
	for i, b := range blocks {
		switch b.Kind {
		case BlockBlank:
			tw.line(1, "[%d] blank", i)
		case BlockHeading:
			tw.line(1, "[%d] heading level=%d", i, b.Level)
		case BlockBullet:
			tw.line(1, "[%d] bullet level=%d marker=%s", i, b.Level, b.Marker)
		default:
			tw.line(1, "[%d] paragraph", i)
		}
		for _, r := range b.Runs {
			label := "text"
			if r.Bold {
				label = "bold"
			}
			tw.text(2, label, r.Text)
		}
	}
	return tw.sb.String()
}

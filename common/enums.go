// Enums shared between subcommands live here so that export related
// configuration does not have to import the heavier packages using it.
package common

import "fmt"

// Specification of requested export output type.
type ExportFmt int

const (
	ExportFmtHTML ExportFmt = iota
	ExportFmtMarkdown
	ExportFmtBundle
)

func (o ExportFmt) String() string {
	switch o {
	case ExportFmtHTML:
		return "html"
	case ExportFmtMarkdown:
		return "markdown"
	case ExportFmtBundle:
		return "bundle"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

func (o ExportFmt) Ext() string {
	switch o {
	case ExportFmtHTML:
		return ".html"
	case ExportFmtMarkdown:
		return ".md"
	case ExportFmtBundle:
		return ".zip"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

// ExportFmtNames lists valid command line values for the export format flag.
func ExportFmtNames() []string {
	return []string{ExportFmtHTML.String(), ExportFmtMarkdown.String(), ExportFmtBundle.String()}
}

// ParseExportFmt resolves a command line value to an ExportFmt.
func ParseExportFmt(name string) (ExportFmt, error) {
	for _, o := range []ExportFmt{ExportFmtHTML, ExportFmtMarkdown, ExportFmtBundle} {
		if o.String() == name {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unsupported export format %q", name)
}

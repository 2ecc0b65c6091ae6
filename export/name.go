package export

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"

	"clipnote/config"
	"clipnote/session"
)

const (
	defaultNameTemplate = "{{ .Stamp }}-{{ .Slug }}"
	slugSourceLen       = 48
	stampLayout         = "20060102-150405"
)

// nameData is what the configured name template can reference.
type nameData struct {
	Slug   string
	Stamp  string
	Source string
	Index  int
}

// FileName expands the configured name template for one entry and appends
// ext. The slug comes from the first words of the note text.
func FileName(cfg config.ExportConfig, e session.Entry, index int, ext string) (string, error) {
	text := defaultNameTemplate
	if strings.TrimSpace(cfg.NameTemplate) != "" {
		text = cfg.NameTemplate
	}

	tmpl, err := template.New(string(config.ExportNameTemplateFieldName)).Funcs(sprig.FuncMap()).Parse(text)
	if err != nil {
		return "", fmt.Errorf("invalid export name template: %w", err)
	}

	buf := new(bytes.Buffer)
	err = tmpl.Execute(buf, nameData{
		Slug:   entrySlug(e, cfg.Transliterate),
		Stamp:  e.CreatedAt.Format(stampLayout),
		Source: e.Source,
		Index:  index,
	})
	if err != nil {
		return "", fmt.Errorf("unable to expand export name template: %w", err)
	}

	name := config.CleanFileName(buf.String())
	return name + ext, nil
}

func entrySlug(e session.Entry, transliterate bool) string {
	text := strings.TrimSpace(e.Text)
	if runes := []rune(text); len(runes) > slugSourceLen {
		text = string(runes[:slugSourceLen])
		if i := strings.LastIndexByte(text, ' '); i > 0 {
			text = text[:i]
		}
	}
	if text == "" {
		return "note"
	}

	if transliterate {
		if s := slug.Make(text); s != "" {
			return s
		}
		return "note"
	}
	s := strings.ToLower(strings.Join(strings.Fields(text), "-"))
	if s = config.CleanFileName(s); s == "" || s == "_bad_file_name_" {
		return "note"
	}
	return s
}

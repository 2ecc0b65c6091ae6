package export

import (
	"fmt"
	"io"

	"github.com/beevik/etree"
)

// HTMLDocument renders blocks into a standalone XHTML document.
func HTMLDocument(title string, blocks []Block) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	html := doc.CreateElement("html")
	html.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")

	head := html.CreateElement("head")
	meta := head.CreateElement("meta")
	meta.CreateAttr("charset", "utf-8")
	head.CreateElement("title").CreateText(title)

	body := html.CreateElement("body")

	// open nested lists as bullet depth grows, close as it shrinks
	var lists []*etree.Element
	closeLists := func(depth int) {
		if len(lists) > depth {
			lists = lists[:depth]
		}
	}
	listAt := func(depth int) *etree.Element {
		for len(lists) <= depth {
			parent := body
			if len(lists) > 0 {
				parent = lists[len(lists)-1]
			}
			lists = append(lists, parent.CreateElement("ul"))
		}
		return lists[depth]
	}

	for _, b := range blocks {
		switch b.Kind {
		case BlockBlank:
			closeLists(0)
		case BlockHeading:
			closeLists(0)
			level := b.Level
			if level < 1 {
				level = 1
			}
			if level > 3 {
				level = 3
			}
			appendRuns(body.CreateElement(fmt.Sprintf("h%d", level)), b)
		case BlockBullet:
			closeLists(b.Level + 1)
			appendRuns(listAt(b.Level).CreateElement("li"), b)
		default:
			closeLists(0)
			appendRuns(body.CreateElement("p"), b)
		}
	}
	return doc
}

func appendRuns(e *etree.Element, b Block) {
	for _, r := range b.Runs {
		if r.Bold {
			e.CreateElement("b").CreateText(r.Text)
		} else {
			e.CreateText(r.Text)
		}
	}
}

// WriteHTML writes the rendered document.
func WriteHTML(w io.Writer, title string, blocks []Block) error {
	doc := HTMLDocument(title, blocks)
	doc.Indent(2)
	_, err := doc.WriteTo(w)
	return err
}

package transform

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/beevik/etree"

	"github.com/conduit-lang/recordtree/internal/apperror"
	"github.com/conduit-lang/recordtree/internal/document"
)

// Page is the value the stylesheet template executes against
type Page struct {
	Lang       string
	Root       *etree.Element
	Components []*etree.Element
	Errors     []*etree.Element
}

// DefaultStylesheet renders components as tables of their records
const DefaultStylesheet = `<!DOCTYPE html>
<html lang="{{.Lang}}">
<head><meta charset="utf-8"><title>{{attr .Root "title"}}</title></head>
<body>
{{- range .Errors}}
<p class="error" data-code="{{attr . "code"}}">{{text .}}</p>
{{- end}}
{{- range .Components}}
<section id="{{attr . "name"}}">
{{- range children . "recordset"}}
<table>
{{- range children . "record"}}
<tr class="{{if attr . "empty"}}empty{{end}}">
{{- range children . "field"}}<td data-name="{{attr . "name"}}">{{text .}}</td>{{end}}
</tr>
{{- end}}
</table>
{{- end}}
</section>
{{- end}}
</body>
</html>
`

var funcs = template.FuncMap{
	"attr": func(el *etree.Element, name string) string {
		if el == nil {
			return ""
		}
		return el.SelectAttrValue(name, "")
	},
	"children": func(el *etree.Element, tag string) []*etree.Element {
		if el == nil {
			return nil
		}
		return el.SelectElements(tag)
	},
	"text": func(el *etree.Element) string {
		if el == nil {
			return ""
		}
		return el.Text()
	},
}

// HTMLTransformer renders the document through an html/template stylesheet
type HTMLTransformer struct {
	tmpl *template.Template
}

// NewHTML parses a stylesheet. An empty source uses DefaultStylesheet.
func NewHTML(source string) (*HTMLTransformer, error) {
	if source == "" {
		source = DefaultStylesheet
	}
	tmpl, err := template.New("document").Funcs(funcs).Parse(source)
	if err != nil {
		return nil, apperror.Developer(CodeTemplate, "failed to parse stylesheet").Wrap(err)
	}
	return &HTMLTransformer{tmpl: tmpl}, nil
}

// LoadHTML parses the stylesheet at path
func LoadHTML(path string) (*HTMLTransformer, error) {
	tmpl, err := template.New(filepath.Base(path)).Funcs(funcs).ParseFiles(path)
	if err != nil {
		return nil, apperror.Developer(CodeTemplate, "failed to load stylesheet %s", path).Wrap(err)
	}
	return &HTMLTransformer{tmpl: tmpl}, nil
}

// Transform executes the stylesheet
func (h *HTMLTransformer) Transform(doc *document.Document) (*Output, error) {
	root := doc.Root()
	page := Page{
		Lang:       doc.Language().String(),
		Root:       root,
		Components: root.SelectElements(document.NodeComponent),
	}
	if errs := root.SelectElement(document.NodeErrors); errs != nil {
		page.Errors = errs.SelectElements(document.NodeError)
	}

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, page); err != nil {
		return nil, apperror.Critical(CodeTemplate, "failed to render stylesheet").
			Wrap(fmt.Errorf("execute %s: %w", h.tmpl.Name(), err))
	}
	return &Output{ContentType: ContentTypeHTML, Body: buf.Bytes()}, nil
}

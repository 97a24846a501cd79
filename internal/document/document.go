// Package document assembles the page tree of one request: components
// claim path segments and contribute nodes, and the result is handed to a
// transformer for serialization.
package document

import (
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/language"

	"github.com/conduit-lang/recordtree/internal/apperror"
	"github.com/conduit-lang/recordtree/internal/data"
	"github.com/conduit-lang/recordtree/internal/i18n"
)

// Node names of the document tree
const (
	NodeDocument  = "document"
	NodeComponent = "component"
	NodeLayout    = "layout"
	NodeContent   = "content"
	NodeErrors    = "errors"
	NodeError     = "error"
	NodeJSON      = "json"
)

const cdataEnd = "]]>"

// JSONNodeID identifies the node that carries a pre-encoded JSON payload
const JSONNodeID = "json-payload"

// Document is the assembled page tree
type Document struct {
	tree       *etree.Document
	root       *etree.Element
	lang       language.Tag
	props      *data.Properties
	translator i18n.Translator
}

// New creates an empty document for lang
func New(lang language.Tag) *Document {
	tree := etree.NewDocument()
	tree.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := tree.CreateElement(NodeDocument)
	return &Document{
		tree:       tree,
		root:       root,
		lang:       lang,
		props:      data.NewProperties(),
		translator: i18n.Identity,
	}
}

// Tree returns the underlying node tree
func (d *Document) Tree() *etree.Document { return d.tree }

// Root returns the <document> node
func (d *Document) Root() *etree.Element { return d.root }

// Language returns the document language
func (d *Document) Language() language.Tag { return d.lang }

// SetLanguage changes the document language
func (d *Document) SetLanguage(lang language.Tag) { d.lang = lang }

// Translator returns the translator for the document language
func (d *Document) Translator() i18n.Translator { return d.translator }

// SetTranslator sets the translator for the document language
func (d *Document) SetTranslator(tr i18n.Translator) {
	if tr == nil {
		tr = i18n.Identity
	}
	d.translator = tr
}

// Properties returns the document properties written onto the root node
func (d *Document) Properties() *data.Properties { return d.props }

// AddComponent appends a component node named name
func (d *Document) AddComponent(name string, content *etree.Element) *etree.Element {
	el := d.root.CreateElement(NodeComponent)
	el.CreateAttr("name", name)
	if content != nil {
		el.AddChild(content)
	}
	return el
}

// SetJSON places a pre-encoded JSON payload at the reserved node, replacing
// any previous payload
func (d *Document) SetJSON(payload string) {
	if el := d.jsonNode(); el != nil {
		el.Parent().RemoveChild(el)
	}
	el := d.root.CreateElement(NodeJSON)
	el.CreateAttr("id", JSONNodeID)
	// "]]>" cannot appear inside a CDATA section, so it is split across two
	parts := strings.Split(payload, cdataEnd)
	for i, part := range parts {
		if i > 0 {
			part = ">" + part
		}
		if i < len(parts)-1 {
			part += "]]"
		}
		el.CreateCData(part)
	}
}

// JSON returns the payload of the reserved node
func (d *Document) JSON() (string, error) {
	el := d.jsonNode()
	if el == nil {
		return "", apperror.Critical(CodeNoJSONNode, "document has no JSON payload")
	}
	return el.Text(), nil
}

func (d *Document) jsonNode() *etree.Element {
	return d.root.FindElement("//*[@id='" + JSONNodeID + "']")
}

// Finalize writes the language and properties onto the root node
func (d *Document) Finalize() {
	d.root.CreateAttr("lang", d.lang.String())
	d.props.Each(func(k, v string) { d.root.CreateAttr(k, v) })
}

// ApplyStructure replaces the document body with the layout of a short
// circuit. The content goes into the layout's <content> placeholder when it
// has one and is appended otherwise.
func (d *Document) ApplyStructure(sc ShortCircuit) {
	for _, child := range d.root.ChildElements() {
		d.root.RemoveChild(child)
	}

	var shell *etree.Element
	if sc.Layout != nil {
		shell = sc.Layout.Copy()
	} else {
		shell = etree.NewElement(NodeLayout)
	}
	if sc.Content != nil {
		content := sc.Content.Copy()
		if placeholder := shell.FindElement(".//" + NodeContent); placeholder != nil {
			parent := placeholder.Parent()
			parent.InsertChildAt(placeholder.Index(), content)
			parent.RemoveChild(placeholder)
		} else {
			shell.AddChild(content)
		}
	}
	d.root.AddChild(shell)
}

// Package control implements the toolbar component tree: a closed set of UI
// elements loaded from markup, resolved against the rights of the current
// document and serialized back into <control> nodes.
package control

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/conduit-lang/recordtree/internal/apperror"
	"github.com/conduit-lang/recordtree/internal/data"
	"github.com/conduit-lang/recordtree/internal/i18n"
	"github.com/conduit-lang/recordtree/internal/rights"
)

// Type tags of the built-in variants
const (
	TypeButton    = "button"
	TypeLink      = "link"
	TypeSelect    = "select"
	TypeSeparator = "separator"
	TypeSwitcher  = "switcher"
	TypeContainer = "container"
)

// NodeControl is the node name of a serialized control
const NodeControl = "control"

// Markup attributes with special handling
const (
	AttrID       = "id"
	AttrType     = "type"
	AttrMode     = "mode"
	AttrDisabled = "disabled"
	AttrTitle    = "title"
	AttrTooltip  = "tooltip"
	AttrRORights = "ro_rights"
	AttrFCRights = "fc_rights"
)

// DefaultTranslatable are the attributes Translate rewrites when the caller
// names none
var DefaultTranslatable = []string{AttrTitle, AttrTooltip}

var disabledTokens = map[string]bool{"1": true, "true": true, "yes": true, "disabled": true}

// Control is one element of a toolbar. The set of implementations is closed:
// new variants are added to this package and registered in a Registry.
type Control interface {
	ID() string
	Type() string
	// Index returns the position assigned when the control was attached
	Index() (int, error)
	Mode() rights.Level
	Attr(name string) string
	SetAttr(name, value string)
	Disabled() bool
	Disable()
	Enable()
	Toolbar() *Toolbar
	LoadMarkup(el *etree.Element) error
	Build() *etree.Element
	// Translate replaces the named attributes with their translations. With
	// no names the variant's default set is used.
	Translate(tr i18n.Translator, attrs ...string)

	base() *element
}

// element is the state shared by every variant
type element struct {
	id       string
	typ      string
	mode     rights.Level
	disabled bool
	attrs    *data.Properties
	index    int
	attached bool
	toolbar  *Toolbar
}

func newElement(typ, id string) element {
	return element{id: id, typ: typ, mode: rights.Full, attrs: data.NewProperties()}
}

func (e *element) base() *element { return e }

// ID returns the control id
func (e *element) ID() string { return e.id }

// Type returns the type tag
func (e *element) Type() string { return e.typ }

// Index returns the 0-based position within the owning toolbar or container
func (e *element) Index() (int, error) {
	if !e.attached {
		return 0, apperror.Developer(CodeNoIndex, "control %q has no index before it is attached", e.id)
	}
	return e.index, nil
}

// Mode returns the effective rights of the control
func (e *element) Mode() rights.Level { return e.mode }

// Attr returns an attribute value
func (e *element) Attr(name string) string { return e.attrs.Value(name) }

// SetAttr sets an attribute
func (e *element) SetAttr(name, value string) { e.attrs.Set(name, value) }

// Disabled reports whether the control is disabled
func (e *element) Disabled() bool { return e.disabled }

// Disable disables the control
func (e *element) Disable() { e.disabled = true }

// Enable enables the control
func (e *element) Enable() { e.disabled = false }

// Toolbar returns the owning toolbar, nil before attachment
func (e *element) Toolbar() *Toolbar { return e.toolbar }

func (e *element) attach(tb *Toolbar, index int) {
	e.toolbar = tb
	e.index = index
	e.attached = true
}

func (e *element) detach() {
	e.toolbar = nil
	e.index = 0
	e.attached = false
}

func (e *element) documentRights() rights.Level {
	if e.toolbar == nil {
		return rights.Full
	}
	return e.toolbar.Rights()
}

func (e *element) translator() i18n.Translator {
	if e.toolbar == nil || e.toolbar.translator == nil {
		return i18n.Identity
	}
	return e.toolbar.translator
}

// LoadMarkup reads the control declaration
func (e *element) LoadMarkup(el *etree.Element) error {
	typ := el.SelectAttrValue(AttrType, "")
	if typ == "" {
		return apperror.Developer(CodeNoType, "control %q declares no type", el.SelectAttrValue(AttrID, e.id))
	}
	e.typ = typ

	readOnly, err := optionalRights(el, AttrRORights)
	if err != nil {
		return err
	}
	fullControl, err := optionalRights(el, AttrFCRights)
	if err != nil {
		return err
	}
	e.mode = rights.Default.Compute(e.documentRights(), readOnly, fullControl)

	for _, a := range el.Attr {
		switch a.Key {
		case AttrType, AttrRORights, AttrFCRights, AttrMode:
		case AttrID:
			e.id = a.Value
		case AttrDisabled:
			e.disabled = disabledTokens[strings.ToLower(strings.TrimSpace(a.Value))]
		default:
			e.attrs.Set(a.Key, a.Value)
		}
	}
	return nil
}

func optionalRights(el *etree.Element, attr string) (*rights.Level, error) {
	a := el.SelectAttr(attr)
	if a == nil {
		return nil, nil
	}
	l, err := rights.Parse(a.Value)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Build serializes the control
func (e *element) Build() *etree.Element {
	el := etree.NewElement(NodeControl)
	if e.id != "" {
		el.CreateAttr(AttrID, e.id)
	}
	el.CreateAttr(AttrType, e.typ)
	el.CreateAttr(AttrMode, e.mode.String())
	if e.disabled {
		el.CreateAttr(AttrDisabled, AttrDisabled)
	}
	e.attrs.Each(func(k, v string) { el.CreateAttr(k, v) })
	return el
}

// Translate replaces the named attributes with their translations
func (e *element) Translate(tr i18n.Translator, attrs ...string) {
	if len(attrs) == 0 {
		attrs = DefaultTranslatable
	}
	e.translate(tr, attrs)
}

func (e *element) translate(tr i18n.Translator, attrs []string) {
	if tr == nil {
		return
	}
	for _, name := range attrs {
		if v, ok := e.attrs.Get(name); ok {
			e.attrs.Set(name, tr.Translate(v))
		}
	}
}

package control

import (
	"github.com/beevik/etree"

	"github.com/conduit-lang/recordtree/internal/apperror"
	"github.com/conduit-lang/recordtree/internal/data"
	"github.com/conduit-lang/recordtree/internal/i18n"
	"github.com/conduit-lang/recordtree/internal/rights"
)

// NodeToolbar is the node name of a serialized toolbar
const NodeToolbar = "toolbar"

// Toolbar is the root of a control tree. It owns the document rights every
// control resolves its mode against.
type Toolbar struct {
	name       string
	rights     rights.Level
	props      *data.Properties
	controls   []Control
	reg        *Registry
	translator i18n.Translator
}

// NewToolbar creates a toolbar with full document rights
func NewToolbar(name string) *Toolbar {
	return &Toolbar{name: name, rights: rights.Full, props: data.NewProperties()}
}

// Name returns the toolbar name
func (t *Toolbar) Name() string { return t.name }

// Rights returns the document rights
func (t *Toolbar) Rights() rights.Level { return t.rights }

// SetRights sets the document rights. Controls loaded afterwards resolve
// their mode against the new value.
func (t *Toolbar) SetRights(l rights.Level) { t.rights = l }

// Properties returns the toolbar properties
func (t *Toolbar) Properties() *data.Properties { return t.props }

// SetProperty sets a toolbar property
func (t *Toolbar) SetProperty(key, value string) { t.props.Set(key, value) }

// SetRegistry replaces the registry used to create controls from markup
func (t *Toolbar) SetRegistry(r *Registry) { t.reg = r }

// SetTranslator sets the translator used for select items at load time
func (t *Toolbar) SetTranslator(tr i18n.Translator) { t.translator = tr }

func (t *Toolbar) registry() *Registry {
	if t.reg == nil {
		return DefaultRegistry
	}
	return t.reg
}

// Attach appends a control, assigning its index and this toolbar
func (t *Toolbar) Attach(c Control) error {
	if c.ID() != "" {
		if _, ok := t.topLevel(c.ID()); ok {
			return apperror.Developer(CodeDuplicateID, "toolbar %q already holds control %q", t.name, c.ID())
		}
	}
	c.base().attach(t, len(t.controls))
	adopt(c, t)
	t.controls = append(t.controls, c)
	return nil
}

// adopt points every descendant of a container at the toolbar
func adopt(c Control, t *Toolbar) {
	container, ok := c.(*Container)
	if !ok {
		return
	}
	for _, child := range container.children {
		child.base().toolbar = t
		adopt(child, t)
	}
}

// Detach removes a top-level control and renumbers the rest
func (t *Toolbar) Detach(id string) error {
	for i, c := range t.controls {
		if c.ID() != id {
			continue
		}
		c.base().detach()
		t.controls = append(t.controls[:i], t.controls[i+1:]...)
		for j := i; j < len(t.controls); j++ {
			t.controls[j].base().index = j
		}
		return nil
	}
	return apperror.Developer(CodeNoSuchControl, "toolbar %q has no control %q", t.name, id)
}

// Control finds a control by id, searching containers
func (t *Toolbar) Control(id string) (Control, bool) {
	return findControl(t.controls, id)
}

func (t *Toolbar) topLevel(id string) (Control, bool) {
	for _, c := range t.controls {
		if c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

// Controls returns the top-level controls in order
func (t *Toolbar) Controls() []Control {
	return append([]Control(nil), t.controls...)
}

// LoadMarkup reads a <toolbar> declaration: its attributes become toolbar
// properties and every <control> child is created, attached and loaded.
func (t *Toolbar) LoadMarkup(el *etree.Element) error {
	if el.Tag != NodeToolbar {
		return apperror.Developer(CodeNotToolbar, "expected <%s>, got <%s>", NodeToolbar, el.Tag)
	}
	for _, a := range el.Attr {
		if a.Key == "name" {
			if t.name == "" {
				t.name = a.Value
			}
			continue
		}
		t.props.Set(a.Key, a.Value)
	}
	return loadChildren(el, t.name, t.registry(), t.Attach)
}

// ParseMarkup reads a toolbar from markup text
func (t *Toolbar) ParseMarkup(markup string) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(markup); err != nil {
		return apperror.Developer(CodeNotToolbar, "toolbar markup is not well-formed").Wrap(err)
	}
	if doc.Root() == nil {
		return apperror.Developer(CodeNotToolbar, "toolbar markup is empty")
	}
	return t.LoadMarkup(doc.Root())
}

// Build serializes the toolbar. Controls without read access are omitted.
func (t *Toolbar) Build() *etree.Element {
	el := etree.NewElement(NodeToolbar)
	el.CreateAttr("name", t.name)
	t.props.Each(func(k, v string) { el.CreateAttr(k, v) })
	for _, c := range t.controls {
		if c.Mode() == rights.None {
			continue
		}
		el.AddChild(c.Build())
	}
	return el
}

// Translate translates every control with its default attribute set
func (t *Toolbar) Translate(tr i18n.Translator) {
	for _, c := range t.controls {
		c.Translate(tr)
	}
}

// DisableAll disables every control
func (t *Toolbar) DisableAll() {
	for _, c := range t.controls {
		c.Disable()
	}
}

// EnableAll enables every control
func (t *Toolbar) EnableAll() {
	for _, c := range t.controls {
		c.Enable()
	}
}

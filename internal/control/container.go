package control

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/conduit-lang/recordtree/internal/apperror"
	"github.com/conduit-lang/recordtree/internal/i18n"
	"github.com/conduit-lang/recordtree/internal/rights"
)

// Container groups child controls. It is the only composite variant.
type Container struct {
	element
	children []Control
}

// NewContainer creates an empty container
func NewContainer(id string) *Container {
	return &Container{element: newElement(TypeContainer, id)}
}

// Attach appends a child, assigning its index and the container's toolbar
func (c *Container) Attach(child Control) error {
	if child.ID() != "" {
		if _, ok := c.Control(child.ID()); ok {
			return apperror.Developer(CodeDuplicateID, "container %q already holds control %q", c.id, child.ID())
		}
	}
	child.base().attach(c.toolbar, len(c.children))
	c.children = append(c.children, child)
	return nil
}

// Controls returns the direct children in order
func (c *Container) Controls() []Control {
	return append([]Control(nil), c.children...)
}

// Control finds a child by id, searching nested containers
func (c *Container) Control(id string) (Control, bool) {
	return findControl(c.children, id)
}

// LoadMarkup reads the container declaration and every <control> child
func (c *Container) LoadMarkup(el *etree.Element) error {
	if err := c.element.LoadMarkup(el); err != nil {
		return err
	}
	return loadChildren(el, c.id, c.registry(), c.Attach)
}

func (c *Container) registry() *Registry {
	if c.toolbar != nil {
		return c.toolbar.registry()
	}
	return DefaultRegistry
}

// Build serializes the container with its children as a subtree
func (c *Container) Build() *etree.Element {
	el := c.element.Build()
	for _, child := range c.children {
		if child.Mode() == rights.None {
			continue
		}
		el.AddChild(child.Build())
	}
	return el
}

// Translate translates the container and every child
func (c *Container) Translate(tr i18n.Translator, attrs ...string) {
	c.element.Translate(tr, attrs...)
	for _, child := range c.children {
		child.Translate(tr, attrs...)
	}
}

// Disable disables the container and every child
func (c *Container) Disable() {
	c.element.Disable()
	for _, child := range c.children {
		child.Disable()
	}
}

// Enable enables the container and every child
func (c *Container) Enable() {
	c.element.Enable()
	for _, child := range c.children {
		child.Enable()
	}
}

// loadChildren creates, attaches and loads every <control> element under el.
// Children without an id get <parentID>_<type>_<ordinal>, ordinal counting
// from 1 in declaration order.
func loadChildren(el *etree.Element, parentID string, reg *Registry, attach func(Control) error) error {
	for i, sub := range el.SelectElements(NodeControl) {
		typ := sub.SelectAttrValue(AttrType, "")
		if typ == "" {
			return apperror.Developer(CodeNoType, "child %d of %q declares no type", i+1, parentID)
		}
		id := sub.SelectAttrValue(AttrID, "")
		if id == "" {
			id = parentID + "_" + strings.ToLower(typ) + "_" + strconv.Itoa(i+1)
		}
		child, err := reg.New(typ, id)
		if err != nil {
			return err
		}
		if err := attach(child); err != nil {
			return err
		}
		if err := child.LoadMarkup(sub); err != nil {
			return err
		}
	}
	return nil
}

func findControl(controls []Control, id string) (Control, bool) {
	for _, c := range controls {
		if c.ID() == id {
			return c, true
		}
		if container, ok := c.(*Container); ok {
			if found, ok := container.Control(id); ok {
				return found, true
			}
		}
	}
	return nil, false
}

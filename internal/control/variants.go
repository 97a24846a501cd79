package control

import (
	"sort"
	"strings"

	"github.com/beevik/etree"

	"github.com/conduit-lang/recordtree/internal/data"
	"github.com/conduit-lang/recordtree/internal/i18n"
)

// Button triggers an action
type Button struct {
	element
}

// NewButton creates a button
func NewButton(id string) *Button {
	return &Button{newElement(TypeButton, id)}
}

// Link navigates to another location
type Link struct {
	element
}

// NewLink creates a link
func NewLink(id string) *Link {
	return &Link{newElement(TypeLink, id)}
}

// Separator splits groups of controls
type Separator struct {
	element
}

// NewSeparator creates a separator
func NewSeparator(id string) *Separator {
	return &Separator{newElement(TypeSeparator, id)}
}

// AttrFilter marks a select used as a listing filter. Filters only translate
// their title.
const AttrFilter = "filter"

// Select offers a choice from an ordered option list
type Select struct {
	element
	options *data.Options
}

// NewSelect creates a select
func NewSelect(id string) *Select {
	return &Select{element: newElement(TypeSelect, id), options: data.NewOptions()}
}

// AddItem appends an option
func (s *Select) AddItem(id, label string, attrs map[string]string) {
	s.options.AddWithAttrs(id, label, attrs)
}

// Items returns the option list
func (s *Select) Items() *data.Options { return s.options }

// LoadMarkup reads the declaration and its <option> items. Labels are
// translated as they are loaded.
func (s *Select) LoadMarkup(el *etree.Element) error {
	if err := s.element.LoadMarkup(el); err != nil {
		return err
	}
	tr := s.translator()
	items := append(el.FindElements("./options/option"), el.SelectElements("option")...)
	for _, item := range items {
		attrs := make(map[string]string)
		for _, a := range item.Attr {
			if a.Key != AttrID {
				attrs[a.Key] = a.Value
			}
		}
		s.options.AddWithAttrs(item.SelectAttrValue(AttrID, ""), tr.Translate(item.Text()), attrs)
	}
	return nil
}

// Build serializes the select with its options
func (s *Select) Build() *etree.Element {
	el := s.element.Build()
	if s.options.Len() == 0 {
		return el
	}
	options := el.CreateElement("options")
	for _, o := range s.options.Items() {
		option := options.CreateElement("option")
		option.CreateAttr(AttrID, o.Value)
		keys := make([]string, 0, len(o.Attrs))
		for k := range o.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			option.CreateAttr(k, o.Attrs[k])
		}
		option.SetText(o.Label)
	}
	return el
}

// Translate translates the named attributes. Filters default to the title only.
func (s *Select) Translate(tr i18n.Translator, attrs ...string) {
	if len(attrs) == 0 && s.attrs.Bool(AttrFilter) {
		attrs = []string{AttrTitle}
	}
	s.element.Translate(tr, attrs...)
}

// AttrState carries the switcher state in markup and output
const AttrState = "state"

var truthyTokens = map[string]bool{"1": true, "true": true, "yes": true, "on": true, "y": true}

// Switcher is a button with a two-valued state
type Switcher struct {
	element
	state bool
}

// NewSwitcher creates a switcher in the off state
func NewSwitcher(id string) *Switcher {
	return &Switcher{element: newElement(TypeSwitcher, id)}
}

// State returns the current state
func (s *Switcher) State() bool { return s.state }

// SetState accepts a bool, an integer (non-zero is on) or a string from the
// truthy token set. Any other value switches it off.
func (s *Switcher) SetState(v interface{}) {
	switch x := v.(type) {
	case bool:
		s.state = x
	case int:
		s.state = x != 0
	case int64:
		s.state = x != 0
	case string:
		s.state = truthyTokens[strings.ToLower(strings.TrimSpace(x))]
	default:
		s.state = false
	}
}

// LoadMarkup reads the declaration; a state attribute sets the initial state
func (s *Switcher) LoadMarkup(el *etree.Element) error {
	if err := s.element.LoadMarkup(el); err != nil {
		return err
	}
	if v, ok := s.attrs.Get(AttrState); ok {
		s.attrs.Delete(AttrState)
		s.SetState(v)
	}
	return nil
}

// Build serializes the switcher with its state
func (s *Switcher) Build() *etree.Element {
	el := s.element.Build()
	state := "0"
	if s.state {
		state = "1"
	}
	el.CreateAttr(AttrState, state)
	return el
}

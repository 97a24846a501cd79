package data

// Option is one entry of a select field's option list
type Option struct {
	Value string
	Label string
	Attrs map[string]string
}

// Options is an ordered option list keyed by value
type Options struct {
	items []Option
	index map[string]int
}

// NewOptions creates an empty option list
func NewOptions() *Options {
	return &Options{index: make(map[string]int)}
}

// Add appends an option or replaces the label of an existing value
func (o *Options) Add(value, label string) *Options {
	return o.AddWithAttrs(value, label, nil)
}

// AddWithAttrs appends an option carrying extra attributes
func (o *Options) AddWithAttrs(value, label string, attrs map[string]string) *Options {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[value]; ok {
		o.items[i].Label = label
		o.items[i].Attrs = attrs
		return o
	}
	o.index[value] = len(o.items)
	o.items = append(o.items, Option{Value: value, Label: label, Attrs: attrs})
	return o
}

// Label returns the label for value
func (o *Options) Label(value string) (string, bool) {
	if o == nil {
		return "", false
	}
	i, ok := o.index[value]
	if !ok {
		return "", false
	}
	return o.items[i].Label, true
}

// Len returns the number of options
func (o *Options) Len() int {
	if o == nil {
		return 0
	}
	return len(o.items)
}

// Items returns the options in order
func (o *Options) Items() []Option {
	if o == nil {
		return nil
	}
	out := make([]Option, len(o.items))
	copy(out, o.items)
	return out
}

// Clone returns an independent copy
func (o *Options) Clone() *Options {
	if o == nil {
		return nil
	}
	out := NewOptions()
	for _, item := range o.items {
		out.AddWithAttrs(item.Value, item.Label, item.Attrs)
	}
	return out
}

package data

import "strconv"

// Properties is an insertion-ordered string map. Order matters because
// properties become node attributes in the rendered output.
type Properties struct {
	keys   []string
	values map[string]string
}

// NewProperties creates an empty property set
func NewProperties() *Properties {
	return &Properties{values: make(map[string]string)}
}

// Set stores a value, keeping the original position of an existing key
func (p *Properties) Set(key, value string) {
	if p.values == nil {
		p.values = make(map[string]string)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns the value for key
func (p *Properties) Get(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p.values[key]
	return v, ok
}

// Value returns the value for key or an empty string
func (p *Properties) Value(key string) string {
	v, _ := p.Get(key)
	return v
}

// Bool interprets the value for key as a flag
func (p *Properties) Bool(key string) bool {
	v, ok := p.Get(key)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return v == "yes" || v == "on"
	}
	return b
}

// Has reports whether key is present
func (p *Properties) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Delete removes key
func (p *Properties) Delete(key string) {
	if p == nil {
		return
	}
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i:i], p.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of properties
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Keys returns the keys in insertion order
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Each calls fn for every property in insertion order
func (p *Properties) Each(fn func(key, value string)) {
	if p == nil {
		return
	}
	for _, k := range p.keys {
		fn(k, p.values[k])
	}
}

// Clone returns an independent copy
func (p *Properties) Clone() *Properties {
	out := NewProperties()
	p.Each(out.Set)
	return out
}

// Merge copies every property of other into p, overriding existing values
func (p *Properties) Merge(other *Properties) {
	other.Each(p.Set)
}

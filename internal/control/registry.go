package control

import (
	"strings"
	"sync"

	"github.com/conduit-lang/recordtree/internal/apperror"
)

// Factory creates an empty control with the given id
type Factory func(id string) Control

// Registry maps type tags to control factories
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a registry holding the built-in variants
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.factories[TypeButton] = func(id string) Control { return NewButton(id) }
	r.factories[TypeLink] = func(id string) Control { return NewLink(id) }
	r.factories[TypeSelect] = func(id string) Control { return NewSelect(id) }
	r.factories[TypeSeparator] = func(id string) Control { return NewSeparator(id) }
	r.factories[TypeSwitcher] = func(id string) Control { return NewSwitcher(id) }
	r.factories[TypeContainer] = func(id string) Control { return NewContainer(id) }
	return r
}

// DefaultRegistry is used by toolbars that have no registry of their own
var DefaultRegistry = NewRegistry()

// Register adds a factory under tag. Empty or already registered tags are
// rejected.
func (r *Registry) Register(tag string, f Factory) error {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" || f == nil {
		return apperror.Developer(CodeBadRegistration, "control registration needs a tag and a factory")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[tag]; ok {
		return apperror.Developer(CodeBadRegistration, "control type %q is already registered", tag)
	}
	r.factories[tag] = f
	return nil
}

// New creates a control of the given type
func (r *Registry) New(tag, id string) (Control, error) {
	r.mu.RLock()
	f, ok := r.factories[strings.ToLower(tag)]
	r.mu.RUnlock()

	if !ok {
		return nil, apperror.Developer(CodeNoClass, "no control class for type %q", tag)
	}
	return f(id), nil
}

// Types returns the registered tags
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.factories))
	for tag := range r.factories {
		tags = append(tags, tag)
	}
	return tags
}

package builder

import (
	"encoding/json"
	"regexp"

	"github.com/conduit-lang/recordtree/internal/apperror"
	"github.com/conduit-lang/recordtree/internal/data"
)

// JSONDivBuilder is the JSON builder of division editors. It reports which
// document is currently open.
type JSONDivBuilder struct {
	JSONBuilder
	current string
}

// NewJSONDiv creates a division editor builder
func NewJSONDiv() *JSONDivBuilder {
	b := &JSONDivBuilder{JSONBuilder: *NewJSON()}
	b.extend = func(envelope *object) {
		if b.current != "" {
			envelope.set("current", b.current)
		}
	}
	return b
}

// SetCurrent sets the id of the open document
func (b *JSONDivBuilder) SetCurrent(id string) { b.current = id }

// Breadcrumb is one step of a repository path
type Breadcrumb struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path,omitempty"`
}

// JSONRepoBuilder renders repository listings: it adds the breadcrumb trail
// and forces selected datetime fields to a date-only rendering.
type JSONRepoBuilder struct {
	JSONBuilder
	breadcrumbs []Breadcrumb
	dateOnly    map[string]bool
}

// NewJSONRepo creates a repository listing builder. dateOnly names the
// fields rendered without a time part.
func NewJSONRepo(dateOnly ...string) *JSONRepoBuilder {
	b := &JSONRepoBuilder{
		JSONBuilder: *NewJSON(),
		dateOnly:    make(map[string]bool, len(dateOnly)),
	}
	for _, name := range dateOnly {
		b.dateOnly[name] = true
	}
	b.extend = func(envelope *object) {
		crumbs := b.breadcrumbs
		if crumbs == nil {
			crumbs = []Breadcrumb{}
		}
		envelope.set("breadcrumbs", crumbs)
	}
	b.override = func(f *data.FieldMetadata, value interface{}) (interface{}, bool) {
		if !b.dateOnly[f.Name()] {
			return nil, false
		}
		ts, ok := asTime(value)
		if !ok {
			return "", true
		}
		return b.formatter.FormatDate(ts, data.TypeDate), true
	}
	return b
}

// AddBreadcrumb appends a step to the trail
func (b *JSONRepoBuilder) AddBreadcrumb(c Breadcrumb) { b.breadcrumbs = append(b.breadcrumbs, c) }

// JSONCustomBuilder encodes a free-form property bag without any schema
type JSONCustomBuilder struct {
	props  *object
	built  bool
	result string
}

// NewJSONCustom creates a property bag builder
func NewJSONCustom() *JSONCustomBuilder {
	return &JSONCustomBuilder{props: newObject()}
}

// SetProperty adds or replaces a member of the payload
func (b *JSONCustomBuilder) SetProperty(key string, value interface{}) *JSONCustomBuilder {
	b.props.set(key, value)
	return b
}

// Property returns a member of the payload
func (b *JSONCustomBuilder) Property(key string) (interface{}, bool) {
	return b.props.get(key)
}

// Build encodes the bag. result defaults to true.
func (b *JSONCustomBuilder) Build() error {
	if b.built {
		return apperror.Developer(CodeAlreadyBuilt, "builder already ran")
	}
	b.built = true

	if _, ok := b.props.get("result"); !ok {
		b.props.set("result", true)
	}
	encoded, err := json.Marshal(b.props)
	if err != nil {
		return apperror.Critical(CodeJSONEncode, "cannot encode payload").Wrap(err)
	}
	b.result = string(encoded)
	return nil
}

// Result returns the encoded payload
func (b *JSONCustomBuilder) Result() string {
	return b.result
}

// DefaultCallback is used when the requested callback name sanitizes to nothing
const DefaultCallback = "callback"

var callbackUnsafe = regexp.MustCompile(`[^A-Za-z0-9_.$\[\]]`)

// SanitizeCallback keeps only characters valid in a dotted or indexed
// JavaScript reference
func SanitizeCallback(name string) string {
	clean := callbackUnsafe.ReplaceAllString(name, "")
	if clean == "" {
		return DefaultCallback
	}
	return clean
}

// JSONPBuilder wraps a property bag in a callback invocation
type JSONPBuilder struct {
	JSONCustomBuilder
	callback string
}

// NewJSONP creates a JSONP builder for the requested callback
func NewJSONP(callback string) *JSONPBuilder {
	return &JSONPBuilder{
		JSONCustomBuilder: *NewJSONCustom(),
		callback:          SanitizeCallback(callback),
	}
}

// Callback returns the sanitized callback name
func (b *JSONPBuilder) Callback() string { return b.callback }

// Build encodes the bag and wraps it
func (b *JSONPBuilder) Build() error {
	if err := b.JSONCustomBuilder.Build(); err != nil {
		return err
	}
	b.result = b.callback + "(" + b.result + ");"
	return nil
}

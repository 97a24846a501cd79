package builder

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/conduit-lang/recordtree/internal/apperror"
	"github.com/conduit-lang/recordtree/internal/data"
)

// DateFormatter renders a non-empty temporal value for JSON output
type DateFormatter interface {
	FormatDate(value interface{}, t data.FieldType) string
}

// DateFormatterFunc adapts a function to the DateFormatter interface
type DateFormatterFunc func(value interface{}, t data.FieldType) string

// FormatDate calls f
func (f DateFormatterFunc) FormatDate(value interface{}, t data.FieldType) string {
	return f(value, t)
}

// DefaultDateFormatter formats with the default layouts of each type
var DefaultDateFormatter DateFormatter = DateFormatterFunc(func(value interface{}, t data.FieldType) string {
	return formatValue(t, value, "")
})

// JSONBuilder renders {meta, data, result, mode} payloads
type JSONBuilder struct {
	base
	pager     *Pager
	formatter DateFormatter
	// extend lets variants add members to the envelope before encoding
	extend func(envelope *object)
	// override lets variants replace the rendering of individual fields
	override func(f *data.FieldMetadata, value interface{}) (interface{}, bool)
	result   string
}

// NewJSON creates a JSON builder
func NewJSON() *JSONBuilder {
	return &JSONBuilder{formatter: DefaultDateFormatter}
}

// SetPager attaches pagination metadata to the output
func (b *JSONBuilder) SetPager(p Pager) { b.pager = &p }

// SetDateFormatter replaces the formatter used for temporal values
func (b *JSONBuilder) SetDateFormatter(f DateFormatter) { b.formatter = f }

// Build renders the payload
func (b *JSONBuilder) Build() error {
	if err := b.begin(true); err != nil {
		return err
	}

	envelope := newObject()
	envelope.set("meta", b.buildMeta())
	envelope.set("data", b.buildData())
	envelope.set("result", true)
	envelope.set("mode", "select")

	if b.pager != nil {
		envelope.set("pager", newObject().
			set("current", b.pager.Current).
			set("count", b.pager.Count()).
			set("records", b.translate(TxtTotal)+": "+strconv.Itoa(b.pager.Total)))
	}
	if b.extend != nil {
		b.extend(envelope)
	}

	encoded, err := json.Marshal(envelope)
	if err != nil {
		return apperror.Critical(CodeJSONEncode, "cannot encode payload").Wrap(err)
	}
	b.result = string(encoded)
	return nil
}

func (b *JSONBuilder) buildMeta() *object {
	meta := newObject()
	for _, f := range b.meta.Fields() {
		name := f.Name()
		if table := f.Property(data.PropTableName); table != "" {
			name = table + "[" + f.Name() + "]"
		}
		meta.set(f.Name(), newObject().
			set("title", b.translate(f.Title())).
			set("type", string(f.Type())).
			set("key", f.IsKey()).
			set("visible", f.IsVisible()).
			set("name", name).
			set("rights", int(f.Rights())).
			set("field", f.Name()).
			set("sort", f.Properties().Bool(data.PropSort)))
	}
	return meta
}

func (b *JSONBuilder) buildData() []*object {
	rowCount := b.rowCount()
	rows := make([]*object, 0, rowCount)
	for i := 0; i < rowCount; i++ {
		row := newObject()
		for _, f := range b.meta.Fields() {
			value, _, _ := b.cell(f.Name(), i)
			row.set(f.Name(), b.renderValue(f, value))
		}
		rows = append(rows, row)
	}
	return rows
}

func (b *JSONBuilder) renderValue(f *data.FieldMetadata, value interface{}) interface{} {
	if value == nil {
		return ""
	}
	if b.override != nil {
		if v, ok := b.override(f, value); ok {
			return v
		}
	}
	return RenderJSONValue(f, value, b.formatter)
}

// RenderJSONValue renders one cell for JSON output. Temporal values go
// through formatter, select values become their label (or stay raw when the
// option list has no such value), multi-select values become the
// comma-joined labels of the known values. Everything else passes through.
func RenderJSONValue(f *data.FieldMetadata, value interface{}, formatter DateFormatter) interface{} {
	if value == nil {
		return ""
	}

	switch t := f.Type(); {
	case t.IsTemporal():
		if stringify(value) == "" {
			return ""
		}
		if formatter == nil {
			formatter = DefaultDateFormatter
		}
		return formatter.FormatDate(value, t)

	case t == data.TypeSelect:
		if label, ok := f.Options().Label(stringify(value)); ok {
			return label
		}
		return value

	case t == data.TypeMulti:
		var labels []string
		for _, v := range selectedValues(value) {
			if label, ok := f.Options().Label(v); ok {
				labels = append(labels, label)
			}
		}
		return strings.Join(labels, ", ")
	}

	if b, ok := value.([]byte); ok {
		return string(b)
	}
	return value
}

// Result returns the encoded payload
func (b *JSONBuilder) Result() string {
	return b.result
}

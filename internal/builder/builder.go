// Package builder turns a record set and its field metadata into output: a
// canonical <recordset>/<record>/<field> node tree under one of several
// rendering policies, or a JSON payload for asynchronous clients.
//
// Builders never mutate the metadata they are given. Per-render changes such
// as default tab names or stripped properties are applied to a copy of each
// field's properties.
package builder

import (
	"sort"
	"strconv"

	"github.com/beevik/etree"

	"github.com/conduit-lang/recordtree/internal/apperror"
	"github.com/conduit-lang/recordtree/internal/data"
	"github.com/conduit-lang/recordtree/internal/i18n"
)

// Message constants translated into the output
const (
	MsgEmptyRecordSet = "MSG_EMPTY_RECORDSET"
	TxtTotal          = "TXT_TOTAL"
)

// Node names of the canonical tree
const (
	NodeRecordSet = "recordset"
	NodeRecord    = "record"
	NodeField     = "field"
	NodeOptions   = "options"
	NodeOption    = "option"
)

// NodeBuilder produces the canonical node tree
type NodeBuilder interface {
	// Build renders the output. It may be called once.
	Build() error
	// Result returns the <recordset> node produced by Build
	Result() *etree.Element
}

// TextBuilder produces a pre-encoded text payload
type TextBuilder interface {
	// Build renders the output. It may be called once.
	Build() error
	// Result returns the encoded payload produced by Build
	Result() string
}

// base carries the state every builder shares
type base struct {
	meta       *data.FieldMetadataSet
	rows       *data.RecordSet
	title      string
	translator i18n.Translator
	built      bool
}

// SetMetadata sets the field metadata. It is required.
func (b *base) SetMetadata(meta *data.FieldMetadataSet) { b.meta = meta }

// SetData sets the rows. A nil record set renders as "no data".
func (b *base) SetData(rows *data.RecordSet) { b.rows = rows }

// SetTitle sets the default tab name applied to fields that declare none
func (b *base) SetTitle(title string) { b.title = title }

// SetTranslator sets the translator used for messages in the output
func (b *base) SetTranslator(t i18n.Translator) { b.translator = t }

func (b *base) translate(constant string) string {
	if b.translator == nil {
		return constant
	}
	return b.translator.Translate(constant)
}

// begin enforces the single-shot contract and the metadata requirement
func (b *base) begin(requireMeta bool) error {
	if b.built {
		return apperror.Developer(CodeAlreadyBuilt, "builder already ran")
	}
	if requireMeta && b.meta.IsEmpty() {
		return apperror.Developer(CodeNoDataDescription, "no field metadata to build from")
	}
	b.built = true
	return nil
}

func (b *base) rowCount() int {
	return b.rows.RowCount()
}

// cell returns the value and per-row properties of field in row i. ok is
// false when the record set has no such column or row.
func (b *base) cell(field string, i int) (value interface{}, props *data.Properties, ok bool) {
	col, found := b.rows.Column(field)
	if !found {
		return nil, nil, false
	}
	value, ok = col.Value(i)
	return value, col.RowProperties(i), ok
}

// renderProperties returns the per-render copy of a field's properties
func (b *base) renderProperties(f *data.FieldMetadata, strip []string) *data.Properties {
	props := f.Properties().Clone()
	if b.title != "" && !props.Has(data.PropTabName) {
		props.Set(data.PropTabName, b.title)
	}
	for _, key := range strip {
		props.Delete(key)
	}
	return props
}

// createField renders one <field> node
func createField(f *data.FieldMetadata, props, rowProps *data.Properties, value interface{}, present bool) *etree.Element {
	el := etree.NewElement(NodeField)
	el.CreateAttr("name", f.Name())
	el.CreateAttr("type", string(f.Type()))
	el.CreateAttr("mode", f.Rights().String())
	props.Each(func(k, v string) { el.CreateAttr(k, v) })
	rowProps.Each(func(k, v string) { el.CreateAttr(k, v) })

	if f.Type().IsOptionList() {
		var selected []string
		if present {
			selected = selectedValues(value)
		}
		el.AddChild(createOptions(f.Options(), selected))
		return el
	}

	if present && value != nil {
		el.SetText(formatValue(f.Type(), value, props.Value(data.PropOutputFormat)))
	}
	return el
}

// createOptions renders an option list marking the selected values
func createOptions(opts *data.Options, selected []string) *etree.Element {
	isSelected := make(map[string]bool, len(selected))
	for _, v := range selected {
		isSelected[v] = true
	}

	el := etree.NewElement(NodeOptions)
	for _, o := range opts.Items() {
		option := el.CreateElement(NodeOption)
		option.CreateAttr("id", o.Value)
		keys := make([]string, 0, len(o.Attrs))
		for k := range o.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			option.CreateAttr(k, o.Attrs[k])
		}
		if isSelected[o.Value] {
			option.CreateAttr("selected", "selected")
		}
		option.SetText(o.Label)
	}
	return el
}

func newRecordSet(rows int) *etree.Element {
	el := etree.NewElement(NodeRecordSet)
	el.CreateAttr("rows", strconv.Itoa(rows))
	return el
}

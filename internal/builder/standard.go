package builder

import (
	"github.com/beevik/etree"

	"github.com/conduit-lang/recordtree/internal/data"
)

// simpleStripped are the form-editing properties dropped from listing and
// tree output. nullable is kept on purpose.
var simpleStripped = []string{
	data.PropPattern,
	data.PropMessage,
	data.PropTabName,
	data.PropTableName,
	data.PropSort,
	data.PropCustomField,
	data.PropDefault,
}

// Builder renders every field with its full attribute set
type Builder struct {
	base
	strip  []string
	result *etree.Element
}

// New creates the standard builder
func New() *Builder {
	return &Builder{}
}

// NewSimple creates a builder for plain listings, which omits the
// form-editing properties of each field
func NewSimple() *SimpleBuilder {
	return &SimpleBuilder{Builder{strip: simpleStripped}}
}

// SimpleBuilder is a Builder that strips form-editing properties
type SimpleBuilder struct {
	Builder
}

// Build renders the record set
func (b *Builder) Build() error {
	if err := b.begin(true); err != nil {
		return err
	}

	rowCount := b.rowCount()
	b.result = newRecordSet(rowCount)

	if rowCount == 0 {
		// Consumers always get one well-formed record to render an empty state
		msg := b.translate(MsgEmptyRecordSet)
		b.result.CreateAttr("empty", msg)
		record := b.buildRecord(-1)
		record.CreateAttr("empty", msg)
		b.result.AddChild(record)
		return nil
	}

	for i := 0; i < rowCount; i++ {
		b.result.AddChild(b.buildRecord(i))
	}
	return nil
}

// buildRecord renders row i; a negative index renders the placeholder
func (b *Builder) buildRecord(i int) *etree.Element {
	record := etree.NewElement(NodeRecord)
	for _, f := range b.meta.Fields() {
		record.AddChild(b.buildField(f, i))
	}
	return record
}

func (b *Builder) buildField(f *data.FieldMetadata, i int) *etree.Element {
	var (
		value    interface{}
		rowProps *data.Properties
		present  bool
	)
	if i >= 0 {
		value, rowProps, present = b.cell(f.Name(), i)
	}
	return createField(f, b.renderProperties(f, b.strip), rowProps, value, present)
}

// Result returns the <recordset> node
func (b *Builder) Result() *etree.Element {
	return b.result
}

// EmptyBuilder renders a record set without records. It is used when a view
// loads all of its data through a follow-up request.
type EmptyBuilder struct {
	base
	result *etree.Element
}

// NewEmpty creates an empty builder
func NewEmpty() *EmptyBuilder {
	return &EmptyBuilder{}
}

// Build renders the empty record set. It never needs metadata.
func (b *EmptyBuilder) Build() error {
	if err := b.begin(false); err != nil {
		return err
	}
	b.result = newRecordSet(0)
	return nil
}

// Result returns the <recordset> node
func (b *EmptyBuilder) Result() *etree.Element {
	return b.result
}

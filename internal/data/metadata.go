package data

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/conduit-lang/recordtree/internal/apperror"
	"github.com/conduit-lang/recordtree/internal/rights"
)

// FieldMetadata describes one logical column: its semantic type, display
// properties, access rights and, for select types, its option list.
// The name never changes after construction.
type FieldMetadata struct {
	name      string
	fieldType FieldType
	props     *Properties
	rights    rights.Level
	rightsSet bool
	options   *Options
}

// NewFieldMetadata creates metadata for the named column
func NewFieldMetadata(name string, fieldType FieldType) *FieldMetadata {
	return &FieldMetadata{
		name:      name,
		fieldType: fieldType,
		props:     NewProperties(),
		rights:    rights.Full,
	}
}

// Name returns the column name
func (f *FieldMetadata) Name() string { return f.name }

// Type returns the semantic type
func (f *FieldMetadata) Type() FieldType { return f.fieldType }

// SetType changes the semantic type
func (f *FieldMetadata) SetType(t FieldType) *FieldMetadata {
	f.fieldType = t
	return f
}

// Properties returns the live property set. Renderers must Clone it before
// changing anything.
func (f *FieldMetadata) Properties() *Properties { return f.props }

// Property returns a single property value
func (f *FieldMetadata) Property(key string) string { return f.props.Value(key) }

// SetProperty sets a single property
func (f *FieldMetadata) SetProperty(key, value string) *FieldMetadata {
	f.props.Set(key, value)
	return f
}

// Rights returns the access level of the field
func (f *FieldMetadata) Rights() rights.Level { return f.rights }

// SetRights sets the access level of the field
func (f *FieldMetadata) SetRights(l rights.Level) *FieldMetadata {
	f.rights = l
	f.rightsSet = true
	return f
}

// Options returns the option list, nil for fields without one
func (f *FieldMetadata) Options() *Options { return f.options }

// SetOptions attaches an option list
func (f *FieldMetadata) SetOptions(o *Options) *FieldMetadata {
	f.options = o
	return f
}

// IsKey reports whether the field identifies rows
func (f *FieldMetadata) IsKey() bool { return f.props.Bool(PropKey) }

// IsCustom reports whether the field has no backing storage column
func (f *FieldMetadata) IsCustom() bool { return f.props.Bool(PropCustomField) }

// IsVisible reports whether the field is shown in listings
func (f *FieldMetadata) IsVisible() bool {
	if v, ok := f.props.Get(PropVisible); ok {
		b, err := strconv.ParseBool(v)
		return err != nil || b
	}
	return f.fieldType != TypeHidden
}

// Title returns the display title, falling back to the name
func (f *FieldMetadata) Title() string {
	if t := f.props.Value(PropTitle); t != "" {
		return t
	}
	return f.name
}

// Clone returns a deep copy
func (f *FieldMetadata) Clone() *FieldMetadata {
	return &FieldMetadata{
		name:      f.name,
		fieldType: f.fieldType,
		props:     f.props.Clone(),
		rights:    f.rights,
		rightsSet: f.rightsSet,
		options:   f.options.Clone(),
	}
}

// merge combines configured metadata f with queried metadata from storage.
// Storage facts (type, table, length, key, nullability) come from queried;
// every other declared property, the rights and the option list come from f
// when f declares them.
func (f *FieldMetadata) merge(queried *FieldMetadata) *FieldMetadata {
	out := queried.Clone()
	if out.fieldType == "" {
		out.fieldType = f.fieldType
	}

	f.props.Each(func(key, value string) {
		switch key {
		case PropTableName, PropLength, PropKey:
			if !out.props.Has(key) {
				out.props.Set(key, value)
			}
		default:
			out.props.Set(key, value)
		}
	})

	if f.rightsSet {
		out.rights = f.rights
		out.rightsSet = true
	}
	if f.options.Len() > 0 {
		out.options = f.options.Clone()
	}
	return out
}

// ColumnInfo is the storage view of a column, as reported by introspection
type ColumnInfo struct {
	Name         string
	Table        string
	DatabaseType string
	Nullable     bool
	Length       int64
	Key          bool
	Default      string
}

// FromColumn builds metadata from a storage column description
func FromColumn(col ColumnInfo) *FieldMetadata {
	f := NewFieldMetadata(col.Name, typeFromColumn(col))
	if col.Table != "" {
		f.SetProperty(PropTableName, col.Table)
	}
	f.SetProperty(PropNullable, strconv.FormatBool(col.Nullable))
	if col.Length > 0 {
		f.SetProperty(PropLength, strconv.FormatInt(col.Length, 10))
	}
	if col.Key {
		f.SetProperty(PropKey, "true")
	}
	if col.Default != "" {
		f.SetProperty(PropDefault, col.Default)
	}
	return f
}

var nameSuffixTypes = []struct {
	suffix string
	t      FieldType
}{
	{"_email", TypeEmail},
	{"_phone", TypePhone},
	{"_password", TypePassword},
	{"_rtf", TypeHTML},
	{"_img", TypeImage},
	{"_file", TypeFile},
}

func typeFromColumn(col ColumnInfo) FieldType {
	dbType := strings.ToUpper(strings.TrimSpace(col.DatabaseType))
	if i := strings.IndexByte(dbType, '('); i >= 0 {
		dbType = dbType[:i]
	}

	switch dbType {
	case "INT", "INTEGER", "INT2", "INT4", "INT8", "SMALLINT", "MEDIUMINT", "BIGINT", "SERIAL", "BIGSERIAL":
		return TypeInt
	case "FLOAT", "FLOAT4", "FLOAT8", "DOUBLE", "REAL", "DECIMAL", "NUMERIC":
		return TypeFloat
	case "BOOL", "BOOLEAN", "TINYINT":
		return TypeBool
	case "DATE":
		return TypeDate
	case "TIME", "TIMETZ":
		return TypeTime
	case "DATETIME", "TIMESTAMP", "TIMESTAMPTZ":
		return TypeDateTime
	case "TEXT", "MEDIUMTEXT", "LONGTEXT", "CLOB":
		if strings.HasSuffix(strings.ToLower(col.Name), "_rtf") {
			return TypeHTML
		}
		return TypeText
	}

	name := strings.ToLower(col.Name)
	for _, s := range nameSuffixTypes {
		if strings.HasSuffix(name, s.suffix) {
			return s.t
		}
	}
	return TypeString
}

// FromMarkup builds metadata from a field declaration of the form
//
//	<field name="status" type="select" title="Status" mode="2">
//	  <options><option id="1">Open</option></options>
//	</field>
func FromMarkup(el *etree.Element) (*FieldMetadata, error) {
	name := el.SelectAttrValue("name", "")
	if name == "" {
		return nil, apperror.Developer(CodeNoFieldName, "field declaration has no name")
	}

	var fieldType FieldType
	if raw := el.SelectAttrValue("type", ""); raw != "" {
		t, ok := ParseFieldType(raw)
		if !ok {
			return nil, apperror.Developer(CodeBadFieldType, "field %s declares unknown type %q", name, raw)
		}
		fieldType = t
	}

	f := NewFieldMetadata(name, fieldType)
	for _, attr := range el.Attr {
		switch attr.Key {
		case "name", "type":
		case "mode":
			l, err := rights.Parse(attr.Value)
			if err != nil {
				return nil, err
			}
			f.SetRights(l)
		default:
			f.SetProperty(attr.Key, attr.Value)
		}
	}

	if optionsEl := el.SelectElement("options"); optionsEl != nil {
		opts := NewOptions()
		for _, o := range optionsEl.SelectElements("option") {
			attrs := make(map[string]string)
			for _, a := range o.Attr {
				if a.Key != "id" {
					attrs[a.Key] = a.Value
				}
			}
			if len(attrs) == 0 {
				attrs = nil
			}
			opts.AddWithAttrs(o.SelectAttrValue("id", ""), strings.TrimSpace(o.Text()), attrs)
		}
		f.SetOptions(opts)
	}
	return f, nil
}

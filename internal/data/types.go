// Package data holds the tabular model rendered by the builders: field
// metadata describing each logical column, the ordered metadata set, per-column
// row storage and the record set tying the columns together.
package data

import "strings"

// FieldType is the semantic type of a logical column
type FieldType string

const (
	TypeString   FieldType = "string"
	TypeText     FieldType = "text"
	TypeHTML     FieldType = "htmlblock"
	TypeInt      FieldType = "integer"
	TypeFloat    FieldType = "float"
	TypeBool     FieldType = "boolean"
	TypeDate     FieldType = "date"
	TypeTime     FieldType = "time"
	TypeDateTime FieldType = "datetime"
	TypeSelect   FieldType = "select"
	TypeMulti    FieldType = "multi"
	TypeHidden   FieldType = "hidden"
	TypeEmail    FieldType = "email"
	TypePhone    FieldType = "phone"
	TypePassword FieldType = "password"
	TypeFile     FieldType = "file"
	TypeImage    FieldType = "image"
	TypeCustom   FieldType = "custom"
)

var knownTypes = map[FieldType]bool{
	TypeString: true, TypeText: true, TypeHTML: true, TypeInt: true,
	TypeFloat: true, TypeBool: true, TypeDate: true, TypeTime: true,
	TypeDateTime: true, TypeSelect: true, TypeMulti: true, TypeHidden: true,
	TypeEmail: true, TypePhone: true, TypePassword: true, TypeFile: true,
	TypeImage: true, TypeCustom: true,
}

// Valid reports whether the type is one of the known constants
func (t FieldType) Valid() bool {
	return knownTypes[t]
}

// IsOptionList reports whether values of this type resolve against an option list
func (t FieldType) IsOptionList() bool {
	return t == TypeSelect || t == TypeMulti
}

// IsTemporal reports whether the type carries a date, a time or both
func (t FieldType) IsTemporal() bool {
	return t == TypeDate || t == TypeTime || t == TypeDateTime
}

// ParseFieldType converts a markup type name into a FieldType
func ParseFieldType(s string) (FieldType, bool) {
	t := FieldType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case "int":
		t = TypeInt
	case "bool":
		t = TypeBool
	case "multi-select", "multiselect":
		t = TypeMulti
	}
	return t, t.Valid()
}

// Well-known property names
const (
	PropTitle        = "title"
	PropTableName    = "tableName"
	PropTabName      = "tabName"
	PropSort         = "sort"
	PropPattern      = "pattern"
	PropMessage      = "message"
	PropNullable     = "nullable"
	PropDefault      = "default"
	PropCustomField  = "customField"
	PropOutputFormat = "outputFormat"
	PropLength       = "length"
	PropKey          = "key"
	PropVisible      = "visible"
)


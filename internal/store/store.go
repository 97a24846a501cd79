// Package store executes the queries behind rendered data: row selection,
// modification, column introspection and table lookups over database/sql.
package store

import (
	"context"
	"regexp"

	"github.com/conduit-lang/recordtree/internal/apperror"
	"github.com/conduit-lang/recordtree/internal/data"
)

// Op is a modification kind
type Op int

const (
	OpInsert Op = iota
	OpUpdate
	OpDelete
)

// String returns the SQL verb of the operation
func (o Op) String() string {
	switch o {
	case OpInsert:
		return "INSERT"
	case OpUpdate:
		return "UPDATE"
	case OpDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// Criteria is an equality filter, column to value. A nil value matches NULL.
type Criteria map[string]interface{}

// Result reports the effect of a modification
type Result struct {
	// ID is the generated key of an insert, 0 when the driver reports none
	ID int64
	// Affected is the number of rows changed
	Affected int64
}

// SelectOptions narrows a selection
type SelectOptions struct {
	OrderBy []string
	Limit   uint64
	Offset  uint64
}

// QueryExecutor runs queries against one database
type QueryExecutor interface {
	Select(ctx context.Context, table string, columns []string, criteria Criteria, opts *SelectOptions) ([]map[string]interface{}, error)
	Count(ctx context.Context, table string, criteria Criteria) (int, error)
	Modify(ctx context.Context, op Op, table string, values map[string]interface{}, criteria Criteria) (Result, error)
	Columns(ctx context.Context, table string) ([]data.ColumnInfo, error)
	TableExists(ctx context.Context, table string) (bool, error)
}

// TableLister is implemented by executors that can enumerate their tables
type TableLister interface {
	Tables(ctx context.Context) ([]string, error)
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// checkIdentifiers rejects table and column names that are not plain
// identifiers, since they are interpolated into the statement
func checkIdentifiers(names ...string) error {
	for _, n := range names {
		if !identifier.MatchString(n) {
			return apperror.Developer(CodeBadIdentifier, "%q is not a valid identifier", n)
		}
	}
	return nil
}

// Describe introspects table into field metadata in column order
func Describe(ctx context.Context, q QueryExecutor, table string) (*data.FieldMetadataSet, error) {
	cols, err := q.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, apperror.Developer(CodeNoTable, "table %s has no columns or does not exist", table)
	}
	set := data.NewFieldMetadataSet()
	for _, c := range cols {
		if err := set.Add(data.FromColumn(c)); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// Load selects the columns of meta that exist in storage and returns them as
// a record set in metadata order. Custom fields are not selected and render
// without values.
func Load(ctx context.Context, q QueryExecutor, table string, meta *data.FieldMetadataSet, criteria Criteria, opts *SelectOptions) (*data.RecordSet, error) {
	var columns []string
	for _, f := range meta.Fields() {
		if !f.IsCustom() {
			columns = append(columns, f.Name())
		}
	}
	rows, err := q.Select(ctx, table, columns, criteria, opts)
	if err != nil {
		return nil, err
	}
	return data.FromRows(columns, rows), nil
}

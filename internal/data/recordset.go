package data

import "github.com/conduit-lang/recordtree/internal/apperror"

// RecordSet is the tabular payload of one render: an ordered set of columns
// that all hold the same number of rows.
type RecordSet struct {
	columns []*RowColumn
	index   map[string]int
}

// NewRecordSet creates an empty record set
func NewRecordSet() *RecordSet {
	return &RecordSet{index: make(map[string]int)}
}

// FromRows builds a record set from row maps, producing one column per name
// in columns. Missing keys become nil values.
func FromRows(columns []string, rows []map[string]interface{}) *RecordSet {
	rs := NewRecordSet()
	for _, name := range columns {
		col := NewRowColumn(name)
		for _, row := range rows {
			col.Append(row[name])
		}
		rs.columns = append(rs.columns, col)
		rs.index[name] = len(rs.columns) - 1
	}
	return rs
}

// Add appends a column. Its length must match the existing row count.
func (rs *RecordSet) Add(col *RowColumn) error {
	if rs.index == nil {
		rs.index = make(map[string]int)
	}
	if _, ok := rs.index[col.Name()]; ok {
		return apperror.Developer(CodeDuplicateField, "column %s already present", col.Name())
	}
	if len(rs.columns) > 0 && col.Len() != rs.RowCount() {
		return apperror.Developer(CodeRowCount, "column %s has %d rows, record set has %d",
			col.Name(), col.Len(), rs.RowCount())
	}
	rs.index[col.Name()] = len(rs.columns)
	rs.columns = append(rs.columns, col)
	return nil
}

// Column returns the named column
func (rs *RecordSet) Column(name string) (*RowColumn, bool) {
	if rs == nil {
		return nil, false
	}
	i, ok := rs.index[name]
	if !ok {
		return nil, false
	}
	return rs.columns[i], true
}

// Has reports whether the named column is present
func (rs *RecordSet) Has(name string) bool {
	_, ok := rs.Column(name)
	return ok
}

// Columns returns the columns in order
func (rs *RecordSet) Columns() []*RowColumn {
	if rs == nil {
		return nil
	}
	out := make([]*RowColumn, len(rs.columns))
	copy(out, rs.columns)
	return out
}

// RowCount returns the shared row count, 0 for a nil or column-less set
func (rs *RecordSet) RowCount() int {
	if rs == nil || len(rs.columns) == 0 {
		return 0
	}
	return rs.columns[0].Len()
}

// IsEmpty reports whether there are no rows
func (rs *RecordSet) IsEmpty() bool {
	return rs.RowCount() == 0
}

// Row returns row i as a name to value map
func (rs *RecordSet) Row(i int) (map[string]interface{}, bool) {
	if i < 0 || i >= rs.RowCount() {
		return nil, false
	}
	row := make(map[string]interface{}, len(rs.columns))
	for _, col := range rs.columns {
		row[col.Name()], _ = col.Value(i)
	}
	return row, true
}

// RemoveRow deletes row i from every column
func (rs *RecordSet) RemoveRow(i int) error {
	if i < 0 || i >= rs.RowCount() {
		return apperror.Developer(CodeRowOutOfRange, "row %d out of range", i)
	}
	for _, col := range rs.columns {
		if err := col.RemoveRow(i); err != nil {
			return err
		}
	}
	return nil
}

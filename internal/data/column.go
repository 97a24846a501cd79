package data

import (
	"sort"

	"github.com/conduit-lang/recordtree/internal/apperror"
)

// RowColumn stores the values of one column for every row, plus optional
// per-row properties such as rights overrides or formatting hints.
type RowColumn struct {
	name   string
	values []interface{}
	props  map[int]*Properties
}

// NewRowColumn creates a column holding the given values
func NewRowColumn(name string, values ...interface{}) *RowColumn {
	return &RowColumn{
		name:   name,
		values: append([]interface{}(nil), values...),
		props:  make(map[int]*Properties),
	}
}

// Name returns the column name
func (c *RowColumn) Name() string { return c.name }

// Len returns the number of rows
func (c *RowColumn) Len() int { return len(c.values) }

// Append adds a value for the next row
func (c *RowColumn) Append(v interface{}) *RowColumn {
	c.values = append(c.values, v)
	return c
}

// Value returns the value of row i
func (c *RowColumn) Value(i int) (interface{}, bool) {
	if i < 0 || i >= len(c.values) {
		return nil, false
	}
	return c.values[i], true
}

// Set replaces the value of row i
func (c *RowColumn) Set(i int, v interface{}) error {
	if i < 0 || i >= len(c.values) {
		return apperror.Developer(CodeRowOutOfRange, "row %d out of range for column %s", i, c.name)
	}
	c.values[i] = v
	return nil
}

// Values returns a copy of all row values
func (c *RowColumn) Values() []interface{} {
	out := make([]interface{}, len(c.values))
	copy(out, c.values)
	return out
}

// SetRowProperty records an extra property for row i
func (c *RowColumn) SetRowProperty(i int, key, value string) error {
	if i < 0 || i >= len(c.values) {
		return apperror.Developer(CodeRowOutOfRange, "row %d out of range for column %s", i, c.name)
	}
	if c.props == nil {
		c.props = make(map[int]*Properties)
	}
	p, ok := c.props[i]
	if !ok {
		p = NewProperties()
		c.props[i] = p
	}
	p.Set(key, value)
	return nil
}

// RowProperties returns the extra properties of row i, nil when there are none
func (c *RowColumn) RowProperties(i int) *Properties {
	return c.props[i]
}

// RemoveRow deletes row i and shifts later rows and their properties down
// so that values and properties stay dense and aligned.
func (c *RowColumn) RemoveRow(i int) error {
	if i < 0 || i >= len(c.values) {
		return apperror.Developer(CodeRowOutOfRange, "row %d out of range for column %s", i, c.name)
	}
	c.values = append(c.values[:i], c.values[i+1:]...)

	rows := make([]int, 0, len(c.props))
	for row := range c.props {
		rows = append(rows, row)
	}
	sort.Ints(rows)

	shifted := make(map[int]*Properties, len(c.props))
	for _, row := range rows {
		switch {
		case row < i:
			shifted[row] = c.props[row]
		case row > i:
			shifted[row-1] = c.props[row]
		}
	}
	c.props = shifted
	return nil
}

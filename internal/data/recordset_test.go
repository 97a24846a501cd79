package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/recordtree/internal/apperror"
)

func TestRowColumn_RemoveRowKeepsPropertiesAligned(t *testing.T) {
	col := NewRowColumn("name", "a", "b", "c", "d")
	require.NoError(t, col.SetRowProperty(0, "class", "first"))
	require.NoError(t, col.SetRowProperty(2, "class", "third"))
	require.NoError(t, col.SetRowProperty(3, "mode", "1"))

	require.NoError(t, col.RemoveRow(1))

	assert.Equal(t, []interface{}{"a", "c", "d"}, col.Values())
	assert.Equal(t, "first", col.RowProperties(0).Value("class"))
	assert.Equal(t, "third", col.RowProperties(1).Value("class"))
	assert.Equal(t, "1", col.RowProperties(2).Value("mode"))
	assert.Nil(t, col.RowProperties(3))

	assert.Error(t, col.RemoveRow(5))
	assert.Error(t, col.SetRowProperty(-1, "x", "y"))
}

func TestRecordSet(t *testing.T) {
	rs := NewRecordSet()
	assert.True(t, rs.IsEmpty())

	require.NoError(t, rs.Add(NewRowColumn("id", 1, 2)))
	require.NoError(t, rs.Add(NewRowColumn("name", "x", "y")))

	err := rs.Add(NewRowColumn("short", 1))
	assert.Equal(t, CodeRowCount, apperror.CodeOf(err))
	err = rs.Add(NewRowColumn("id", 1, 2))
	assert.Equal(t, CodeDuplicateField, apperror.CodeOf(err))

	assert.Equal(t, 2, rs.RowCount())
	row, ok := rs.Row(1)
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"id": 2, "name": "y"}, row)

	require.NoError(t, rs.RemoveRow(0))
	assert.Equal(t, 1, rs.RowCount())
	col, _ := rs.Column("name")
	v, _ := col.Value(0)
	assert.Equal(t, "y", v)
}

func TestFromRows(t *testing.T) {
	rs := FromRows([]string{"id", "title"}, []map[string]interface{}{
		{"id": 1, "title": "first"},
		{"id": 2},
	})
	assert.Equal(t, 2, rs.RowCount())
	col, ok := rs.Column("title")
	require.True(t, ok)
	v, _ := col.Value(1)
	assert.Nil(t, v)

	var nilSet *RecordSet
	assert.Equal(t, 0, nilSet.RowCount())
	assert.False(t, nilSet.Has("id"))
}

func TestProperties(t *testing.T) {
	p := NewProperties()
	p.Set("b", "1")
	p.Set("a", "yes")
	p.Set("b", "2")
	assert.Equal(t, []string{"b", "a"}, p.Keys())
	assert.True(t, p.Bool("a"))
	assert.False(t, p.Bool("missing"))

	c := p.Clone()
	c.Delete("b")
	assert.Equal(t, []string{"a"}, c.Keys())
	assert.Equal(t, "2", p.Value("b"))
}

package builder

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/conduit-lang/recordtree/internal/apperror"
	"github.com/conduit-lang/recordtree/internal/data"
	"github.com/conduit-lang/recordtree/internal/tree"
)

// TreeBuilder renders rows nested along a tree index. Tree ids without a
// matching row are skipped together with their subtree.
type TreeBuilder struct {
	Builder
	index *tree.TreeNodeList
}

// NewTree creates a tree builder over index
func NewTree(index *tree.TreeNodeList) *TreeBuilder {
	return &TreeBuilder{
		Builder: Builder{strip: simpleStripped},
		index:   index,
	}
}

// SetTree replaces the tree index
func (b *TreeBuilder) SetTree(index *tree.TreeNodeList) { b.index = index }

// Build renders the nested record sets
func (b *TreeBuilder) Build() error {
	if err := b.begin(true); err != nil {
		return err
	}

	key, err := b.keyField()
	if err != nil {
		return err
	}

	if b.rowCount() == 0 {
		msg := b.translate(MsgEmptyRecordSet)
		b.result = newRecordSet(0)
		b.result.CreateAttr("empty", msg)
		record := b.buildRecord(-1)
		record.CreateAttr("empty", msg)
		b.result.AddChild(record)
		return nil
	}

	rowsByID := make(map[string]int, b.rowCount())
	if col, ok := b.rows.Column(key.Name()); ok {
		for i, v := range col.Values() {
			rowsByID[stringify(v)] = i
		}
	}

	b.result = b.buildLevel(b.index, rowsByID)
	return nil
}

func (b *TreeBuilder) keyField() (*data.FieldMetadata, error) {
	keys := b.meta.Keys()
	switch len(keys) {
	case 0:
		return nil, apperror.Developer(CodeNoKeyField, "tree rendering needs a key field")
	case 1:
		return keys[0], nil
	default:
		return nil, apperror.Developer(CodeManyKeyFields, "tree rendering needs exactly one key field, got %d", len(keys))
	}
}

func (b *TreeBuilder) buildLevel(level *tree.TreeNodeList, rowsByID map[string]int) *etree.Element {
	recordSet := etree.NewElement(NodeRecordSet)
	count := 0
	for _, node := range level.Nodes() {
		row, ok := rowsByID[node.ID]
		if !ok {
			continue
		}
		record := b.buildRecord(row)
		if node.HasChildren() {
			if nested := b.buildLevel(node.Children(), rowsByID); len(nested.ChildElements()) > 0 {
				record.AddChild(nested)
			}
		}
		recordSet.AddChild(record)
		count++
	}
	recordSet.CreateAttr("rows", strconv.Itoa(count))
	return recordSet
}

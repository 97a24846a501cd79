// Package tree turns flat parent-pointer lists into a validated hierarchy
// used for nested record rendering.
package tree

import (
	"fmt"

	"github.com/conduit-lang/recordtree/internal/apperror"
)

// Error codes returned by this package
const (
	CodeDuplicateID = "ERR_DEV_TREE_DUPLICATE_ID"
	CodeSelfParent  = "ERR_DEV_TREE_SELF_PARENT"
	CodeCycle       = "ERR_DEV_TREE_CYCLE"
	CodeEmptyID     = "ERR_DEV_TREE_EMPTY_ID"
)

// TreeNode is an id with an ordered list of children
type TreeNode struct {
	ID       string
	children *TreeNodeList
}

// Children returns the child list, never nil
func (n *TreeNode) Children() *TreeNodeList {
	if n.children == nil {
		n.children = &TreeNodeList{}
	}
	return n.children
}

// HasChildren reports whether the node has at least one child
func (n *TreeNode) HasChildren() bool {
	return n.children != nil && n.children.Len() > 0
}

// TreeNodeList is an ordered sequence of sibling nodes
type TreeNodeList struct {
	nodes []*TreeNode
}

// Len returns the number of nodes at this level
func (l *TreeNodeList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.nodes)
}

// Nodes returns the nodes at this level in order
func (l *TreeNodeList) Nodes() []*TreeNode {
	if l == nil {
		return nil
	}
	out := make([]*TreeNode, len(l.nodes))
	copy(out, l.nodes)
	return out
}

func (l *TreeNodeList) add(n *TreeNode) {
	l.nodes = append(l.nodes, n)
}

// Find searches the whole subtree for id
func (l *TreeNodeList) Find(id string) (*TreeNode, bool) {
	var found *TreeNode
	l.Walk(func(n *TreeNode, _ int) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// Walk visits every node depth-first with its depth. Returning false from
// fn stops the walk.
func (l *TreeNodeList) Walk(fn func(n *TreeNode, depth int) bool) {
	l.walk(fn, 0)
}

func (l *TreeNodeList) walk(fn func(n *TreeNode, depth int) bool, depth int) bool {
	for _, n := range l.Nodes() {
		if !fn(n, depth) {
			return false
		}
		if n.children != nil && !n.children.walk(fn, depth+1) {
			return false
		}
	}
	return true
}

// IDs returns every id in depth-first order
func (l *TreeNodeList) IDs() []string {
	var ids []string
	l.Walk(func(n *TreeNode, _ int) bool {
		ids = append(ids, n.ID)
		return true
	})
	return ids
}

// Item is one flat entry: an id and the id of its parent. An empty ParentID
// marks a root.
type Item struct {
	ID       string
	ParentID string
}

// Convert builds the hierarchy. Ids must be unique and no item may be its
// own parent. An item whose parent id is unknown becomes a root. Input order
// is kept among siblings.
func Convert(items []Item) (*TreeNodeList, error) {
	nodes := make(map[string]*TreeNode, len(items))
	for _, item := range items {
		if item.ID == "" {
			return nil, apperror.Developer(CodeEmptyID, "tree item without id")
		}
		if _, dup := nodes[item.ID]; dup {
			return nil, apperror.Developer(CodeDuplicateID, "id %s appears twice", item.ID)
		}
		if item.ParentID == item.ID {
			return nil, apperror.Developer(CodeSelfParent, "id %s is its own parent", item.ID)
		}
		nodes[item.ID] = &TreeNode{ID: item.ID}
	}

	roots := &TreeNodeList{}
	for _, item := range items {
		node := nodes[item.ID]
		parent, ok := nodes[item.ParentID]
		if item.ParentID == "" || !ok {
			roots.add(node)
			continue
		}
		parent.Children().add(node)
	}

	// Every node must hang off a root, otherwise the parents form a loop
	if reached := len(roots.IDs()); reached != len(nodes) {
		return nil, apperror.Developer(CodeCycle, "%d ids are part of a parent cycle", len(nodes)-reached)
	}
	return roots, nil
}

// ConvertRows builds the hierarchy from row maps using the named id and
// parent columns. Nil parents mark roots.
func ConvertRows(rows []map[string]interface{}, idField, parentField string) (*TreeNodeList, error) {
	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		item := Item{ID: stringify(row[idField])}
		if p, ok := row[parentField]; ok && p != nil {
			item.ParentID = stringify(p)
		}
		items = append(items, item)
	}
	return Convert(items)
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

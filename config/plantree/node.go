// Package plantree holds the plan tree: nodes with a back-link to their parent
// and a single cursor that only ever moves down.
package plantree

import "github.com/google/uuid"

// RootContent is the content of every tree's root node.
const RootContent = "Root"

// Node is a single plan in the tree. The parent link is set at creation and
// never changes; children are append-only.
type Node struct {
	id       string
	content  string
	parent   *Node
	children []*Node
}

// NewNode creates a node with a fresh id and no children. A nil parent makes
// a root.
func NewNode(content string, parent *Node) *Node {
	return &Node{
		id:      uuid.NewString(),
		content: content,
		parent:  parent,
	}
}

// AddChild appends child to n's children.
func (n *Node) AddChild(child *Node) {
	n.children = append(n.children, child)
}

func (n *Node) ID() string      { return n.id }
func (n *Node) Content() string { return n.content }

// Parent returns the parent node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int { return len(n.children) }

// Depth is the number of parent links between n and the root.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

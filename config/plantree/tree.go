package plantree

import (
	"errors"
	"fmt"
)

// ErrInvalidIndex is returned when a child index is outside the cursor's
// children. The tree is left untouched.
var ErrInvalidIndex = errors.New("invalid plan index")

// Child is a read-only view of one of the cursor's children.
type Child struct {
	Index   int    `json:"index"`
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Tree owns the root node and the cursor. The cursor starts at the root and
// only moves to a child of its current node.
type Tree struct {
	root   *Node
	cursor *Node
}

// New returns a tree holding only the root node.
func New() *Tree {
	root := NewNode(RootContent, nil)
	return &Tree{root: root, cursor: root}
}

func (t *Tree) Root() *Node   { return t.root }
func (t *Tree) Cursor() *Node { return t.cursor }

// CurrentPath returns the contents from the root down to the cursor.
func (t *Tree) CurrentPath() []string {
	var path []string
	for n := t.cursor; n != nil; n = n.parent {
		path = append(path, n.content)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// AddPlans attaches one child per content under the cursor, in order, and
// returns the new nodes. The cursor does not move.
func (t *Tree) AddPlans(contents []string) []*Node {
	added := make([]*Node, 0, len(contents))
	for _, c := range contents {
		n := NewNode(c, t.cursor)
		t.cursor.AddChild(n)
		added = append(added, n)
	}
	return added
}

// SelectPlan moves the cursor to the child at index.
func (t *Tree) SelectPlan(index int) (*Node, error) {
	child, err := t.child(index)
	if err != nil {
		return nil, err
	}
	t.cursor = child
	return child, nil
}

// EditPlan replaces the content of the child at index in place. The node keeps
// its id and position.
func (t *Tree) EditPlan(index int, content string) (*Node, error) {
	child, err := t.child(index)
	if err != nil {
		return nil, err
	}
	child.content = content
	return child, nil
}

// CurrentChildren lists the cursor's children for display.
func (t *Tree) CurrentChildren() []Child {
	out := make([]Child, len(t.cursor.children))
	for i, c := range t.cursor.children {
		out[i] = Child{Index: i, ID: c.id, Content: c.content}
	}
	return out
}

// CurrentPlans returns just the contents of the cursor's children.
func (t *Tree) CurrentPlans() []string {
	out := make([]string, len(t.cursor.children))
	for i, c := range t.cursor.children {
		out[i] = c.content
	}
	return out
}

func (t *Tree) child(index int) (*Node, error) {
	if index < 0 || index >= len(t.cursor.children) {
		return nil, fmt.Errorf("%w: %d (have %d)", ErrInvalidIndex, index, len(t.cursor.children))
	}
	return t.cursor.children[index], nil
}

package hardware

import (
	"fmt"
	"sync"

	"github.com/dd0wney/ramstk-analysis/pkg/validation"
)

// Tree is a rooted hardware assembly tree keyed by hardware ID. Children
// keep their insertion order. Nodes are handed out by value; changes go
// through Update.
type Tree struct {
	mu       sync.RWMutex
	root     int
	nodes    map[int]*Node
	children map[int][]int
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{
		nodes:    make(map[int]*Node),
		children: make(map[int][]int),
	}
}

// Insert adds n under n.ParentID, or as the root when ParentID is 0. The
// parent must already be present.
func (t *Tree) Insert(n Node) error {
	if err := validation.Struct(&n); err != nil {
		return treeError("Insert", n.ID, fmt.Errorf("%w: %v", ErrInvalidNode, err))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.nodes[n.ID]; ok {
		return treeError("Insert", n.ID, ErrDuplicateNode)
	}
	if n.IsRoot() {
		if t.root != 0 {
			return treeError("Insert", n.ID, ErrRootExists)
		}
		t.root = n.ID
	} else {
		if _, ok := t.nodes[n.ParentID]; !ok {
			return treeError("Insert", n.ID, fmt.Errorf("%w: %d", ErrParentNotFound, n.ParentID))
		}
		t.children[n.ParentID] = append(t.children[n.ParentID], n.ID)
	}

	t.nodes[n.ID] = &n
	return nil
}

// Get returns a copy of the node.
func (t *Tree) Get(id int) (Node, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.nodes[id]
	if !ok {
		return Node{}, treeError("Get", id, ErrNodeNotFound)
	}
	return *n, nil
}

// Children returns copies of the direct children of id in tree order.
func (t *Tree) Children(id int) ([]Node, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if _, ok := t.nodes[id]; !ok {
		return nil, treeError("Children", id, ErrNodeNotFound)
	}
	ids := t.children[id]
	out := make([]Node, len(ids))
	for i, cid := range ids {
		out[i] = *t.nodes[cid]
	}
	return out, nil
}

// HasChildren reports whether id has at least one child.
func (t *Tree) HasChildren(id int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.children[id]) > 0
}

// Parent returns a copy of the parent of id.
func (t *Tree) Parent(id int) (Node, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.nodes[id]
	if !ok {
		return Node{}, treeError("Parent", id, ErrNodeNotFound)
	}
	p, ok := t.nodes[n.ParentID]
	if !ok {
		return Node{}, treeError("Parent", id, ErrParentNotFound)
	}
	return *p, nil
}

// Root returns a copy of the root node.
func (t *Tree) Root() (Node, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.nodes[t.root]
	if !ok {
		return Node{}, treeError("Root", 0, ErrNodeNotFound)
	}
	return *n, nil
}

// Update applies fn to the stored node. The ID and parent cannot be
// changed.
func (t *Tree) Update(id int, fn func(*Node)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[id]
	if !ok {
		return treeError("Update", id, ErrNodeNotFound)
	}
	updated := *n
	fn(&updated)
	updated.ID, updated.ParentID = n.ID, n.ParentID
	*n = updated
	return nil
}

// Walk visits every node breadth-first from the root, children in tree
// order. Returning false from fn stops the walk.
func (t *Tree) Walk(fn func(Node) bool) {
	t.mu.RLock()
	if t.root == 0 {
		t.mu.RUnlock()
		return
	}
	order := make([]Node, 0, len(t.nodes))
	queue := []int{t.root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, *t.nodes[id])
		queue = append(queue, t.children[id]...)
	}
	t.mu.RUnlock()

	for _, n := range order {
		if !fn(n) {
			return
		}
	}
}

// Nodes returns copies of every node in breadth-first order.
func (t *Tree) Nodes() []Node {
	var out []Node
	t.Walk(func(n Node) bool {
		out = append(out, n)
		return true
	})
	return out
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.nodes)
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	t.mu.RLock()
	defer t.mu.RUnlock()

	c := NewTree()
	c.root = t.root
	for id, n := range t.nodes {
		cp := *n
		c.nodes[id] = &cp
	}
	for id, kids := range t.children {
		c.children[id] = append([]int(nil), kids...)
	}
	return c
}

// BuildTree assembles nodes into a tree regardless of the order they are
// listed in. Siblings keep their relative order from nodes.
func BuildTree(nodes []Node) (*Tree, error) {
	t := NewTree()
	pending := nodes
	for len(pending) > 0 {
		var next []Node
		for _, n := range pending {
			if !n.IsRoot() && !t.has(n.ParentID) {
				next = append(next, n)
				continue
			}
			if err := t.Insert(n); err != nil {
				return nil, err
			}
		}
		if len(next) == len(pending) {
			// nothing placed this pass: the remaining parents do not exist
			return nil, treeError("BuildTree", next[0].ID, fmt.Errorf("%w: %d", ErrParentNotFound, next[0].ParentID))
		}
		pending = next
	}
	return t, nil
}

func (t *Tree) has(id int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.nodes[id]
	return ok
}

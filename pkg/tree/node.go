package tree

import (
	"errors"
	"slices"
)

// ErrDeleted is returned when a node is used after it was deleted
var ErrDeleted = errors.New("node has been deleted")

// Expansion is the outcome of computing the children of a node
type Expansion int

const (
	// Expanded means the node has at least one child
	Expanded Expansion = iota
	// Leaf means the content has no legal continuation
	Leaf
)

func (e Expansion) String() string {
	if e == Leaf {
		return "leaf"
	}
	return "expanded"
}

// Expander computes the follow-up contents of a content.
// An empty result with a nil error marks a natural leaf, any error is fatal.
type Expander[T any] interface {
	Expand(content T) ([]T, error)
}

// ExpanderFunc adapts a plain function to an Expander
type ExpanderFunc[T any] func(content T) ([]T, error)

// Expand calls f(content)
func (f ExpanderFunc[T]) Expand(content T) ([]T, error) {
	return f(content)
}

// Node is a node in a lazily expanded tree. A node owns its content and its children,
// the parent reference never implies ownership.
type Node[T any] struct {
	content  T
	children []*Node[T]
	parent   *Node[T]
	expander Expander[T]
	expanded bool
	terminal bool // the expander found no continuation
	deleted  bool
}

// NewRoot returns a fresh root node wrapping content
func NewRoot[T any](content T, expander Expander[T]) *Node[T] {
	return &Node[T]{content: content, expander: expander}
}

// NewChild creates a node wrapping content and attaches it to parent
func NewChild[T any](parent *Node[T], content T) *Node[T] {
	child := &Node[T]{content: content, expander: parent.expander}
	parent.children = append(parent.children, child)
	child.parent = parent
	return child
}

// Content returns the content of the node
func (n *Node[T]) Content() T {
	return n.content
}

// Children returns the computed children, or nil if the node was never expanded
func (n *Node[T]) Children() []*Node[T] {
	return n.children
}

// QueryChildren returns the children of the node and computes them if they dont exist yet.
// A node whose children were all deleted is expanded again, Leaf is only reported for
// contents without any continuation.
func (n *Node[T]) QueryChildren() ([]*Node[T], Expansion, error) {
	if n.deleted {
		return nil, Leaf, ErrDeleted
	}
	if n.terminal {
		return nil, Leaf, nil
	}
	if n.expanded && len(n.children) > 0 {
		return n.children, Expanded, nil
	}
	contents, err := n.expander.Expand(n.content)
	if err != nil {
		return nil, Leaf, err
	}
	n.expanded = true
	if len(contents) == 0 {
		n.terminal = true
		return nil, Leaf, nil
	}
	n.children = make([]*Node[T], 0, len(contents))
	for _, c := range contents {
		NewChild(n, c)
	}
	return n.children, Expanded, nil
}

// HasChildren is true if the children were computed and there is at least one.
// It is false for unexpanded nodes as well as for natural leaves.
func (n *Node[T]) HasChildren() bool {
	return n.expanded && len(n.children) > 0
}

// IsExpanded reports whether the children have been computed
func (n *Node[T]) IsExpanded() bool {
	return n.expanded
}

// IsTerminal reports whether the expander found no continuation for the content
func (n *Node[T]) IsTerminal() bool {
	return n.terminal
}

// IsRoot reports whether the node has no parent
func (n *Node[T]) IsRoot() bool {
	return n.parent == nil
}

// IsDeleted reports whether the node was deleted
func (n *Node[T]) IsDeleted() bool {
	return n.deleted
}

// Parent returns the parent or nil for a root
func (n *Node[T]) Parent() *Node[T] {
	return n.parent
}

// SetParent sets the parent reference without touching either child list
func (n *Node[T]) SetParent(parent *Node[T]) {
	n.parent = parent
}

// UnsetParent clears the parent reference
func (n *Node[T]) UnsetParent() {
	n.parent = nil
}

// DeleteSelf detaches the node from its parent and releases its whole subtree.
// The node must not be used afterwards.
func (n *Node[T]) DeleteSelf() {
	if n.parent != nil {
		n.parent.removeChild(n)
	}
	n.release()
}

// DeleteChild deletes target if it is a child of n, siblings are left untouched.
// Deleting a node that is not a child of n does nothing.
func (n *Node[T]) DeleteChild(target *Node[T]) {
	if target == nil || target.parent != n || !slices.Contains(n.children, target) {
		return
	}
	target.DeleteSelf()
}

// removeChild removes target from the children and keeps the order of the rest
func (n *Node[T]) removeChild(target *Node[T]) {
	idx := slices.Index(n.children, target)
	if idx < 0 {
		return
	}
	// Build a new slice so callers iterating a previous snapshot are not disturbed
	remaining := make([]*Node[T], 0, len(n.children)-1)
	remaining = append(remaining, n.children[:idx]...)
	remaining = append(remaining, n.children[idx+1:]...)
	n.children = remaining
}

// release clears the node and its subtree without touching the former parent
func (n *Node[T]) release() {
	for _, child := range n.children {
		child.release()
	}
	var zero T
	n.content = zero
	n.children = nil
	n.parent = nil
	n.expander = nil
	n.deleted = true
}

// Walk visits the node and its computed descendants depth-first, parents before children.
// Returning false from fn skips the subtree below that node.
func (n *Node[T]) Walk(fn func(*Node[T]) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.children {
		child.Walk(fn)
	}
}

// Size returns the number of nodes in the computed subtree including n
func (n *Node[T]) Size() int {
	size := 0
	n.Walk(func(*Node[T]) bool {
		size++
		return true
	})
	return size
}

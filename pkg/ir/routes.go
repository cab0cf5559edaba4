package ir

import "strings"

// RouteNode groups operations that share a path prefix.
type RouteNode struct {
	// Label is the literal segment text or a placeholder form (see RouteLabel).
	Label string
	// Segment is the representative segment; for placeholder nodes it carries
	// the lexicographically smallest parameter name seen at this position.
	Segment  Segment
	Children []*RouteNode `json:",omitempty" yaml:",omitempty"`
	// Ops indexes IR.Operations attached exactly at this node.
	Ops []int `json:",omitempty" yaml:",omitempty"`

	parent *RouteNode
}

// NewRouteNode creates a child-less node under parent.
func NewRouteNode(parent *RouteNode, seg Segment) *RouteNode {
	return &RouteNode{Label: seg.RouteLabel(), Segment: seg, parent: parent}
}

// Parent returns the enclosing node, nil at the root.
func (n *RouteNode) Parent() *RouteNode { return n.parent }

// Child finds the direct child with label.
func (n *RouteNode) Child(label string) *RouteNode {
	for _, c := range n.Children {
		if c.Label == label {
			return c
		}
	}
	return nil
}

// Path returns the chain of segments from the root to n.
func (n *RouteNode) Path() []Segment {
	var rev []Segment
	for cur := n; cur != nil && cur.parent != nil; cur = cur.parent {
		rev = append(rev, cur.Segment)
	}
	out := make([]Segment, len(rev))
	for i := range rev {
		out[i] = rev[len(rev)-1-i]
	}
	return out
}

// Prefix renders the node's path in OpenAPI template form.
func (n *RouteNode) Prefix() string {
	segs := n.Path()
	if len(segs) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range segs {
		b.WriteByte('/')
		b.WriteString(s.Render(func(name string) string { return "{" + name + "}" }))
	}
	return b.String()
}

// Pattern renders the node's path in ":name" form. It doubles as the
// invalidation prefix shared by every operation below the node.
func (n *RouteNode) Pattern() string {
	return RoutePattern(n.Path())
}

// AllOperations returns the operations at n and below, depth first.
func (n *RouteNode) AllOperations() []int {
	out := append([]int(nil), n.Ops...)
	for _, c := range n.Children {
		out = append(out, c.AllOperations()...)
	}
	return out
}

// Walk visits n and its descendants depth first, stopping a branch when fn returns false.
func (n *RouteNode) Walk(fn func(*RouteNode) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// RouteTree is the prefix hierarchy over every operation's path template.
type RouteTree struct {
	Root *RouteNode
}

// Lookup finds the node for a path template. Parameter names are ignored, so
// "/a/{x}" and "/a/{y}" resolve to the same node.
func (t *RouteTree) Lookup(path string) (*RouteNode, bool) {
	if t == nil || t.Root == nil {
		return nil, false
	}
	segs, err := ParseTemplate(path)
	if err != nil {
		return nil, false
	}
	cur := t.Root
	for _, s := range segs {
		cur = cur.Child(s.RouteLabel())
		if cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// Groups returns every node that holds operations in its subtree and has at
// least one literal segment, in depth-first order. Emitters use them as
// invalidation groups.
func (t *RouteTree) Groups() []*RouteNode {
	if t == nil || t.Root == nil {
		return nil
	}
	var out []*RouteNode
	t.Root.Walk(func(n *RouteNode) bool {
		if n.parent != nil && !n.Segment.IsParam() && len(n.AllOperations()) > 0 {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Package routetree arranges operations into a prefix tree over their path
// templates. It mints no identifiers; emitters use the tree to group
// operations that share a prefix, e.g. for cache invalidation.
package routetree

import (
	"sort"
	"strings"

	"github.com/blimu-dev/hookgen/pkg/ir"
)

// Build returns the route tree of ops. Operation indices in the tree refer to
// positions in ops. Children are ordered with literal labels first, in byte
// order, then labels holding parameters, with the bare placeholder last.
func Build(ops []ir.Operation) *ir.RouteTree {
	root := ir.NewRouteNode(nil, ir.Segment{})
	for i, op := range ops {
		cur := root
		for _, seg := range op.Segments {
			next := cur.Child(seg.RouteLabel())
			if next == nil {
				next = ir.NewRouteNode(cur, seg)
				cur.Children = append(cur.Children, next)
			} else if paramKey(seg) < paramKey(next.Segment) {
				next.Segment = seg
			}
			cur = next
		}
		cur.Ops = append(cur.Ops, i)
	}
	root.Walk(func(n *ir.RouteNode) bool {
		sort.SliceStable(n.Children, func(a, b int) bool {
			return lessLabel(n.Children[a].Label, n.Children[b].Label)
		})
		return true
	})
	return &ir.RouteTree{Root: root}
}

func paramKey(s ir.Segment) string {
	return strings.Join(s.Params(), "\x00")
}

func lessLabel(a, b string) bool {
	ra, rb := labelRank(a), labelRank(b)
	if ra != rb {
		return ra < rb
	}
	return a < b
}

func labelRank(label string) int {
	switch {
	case label == ir.ParamPlaceholder:
		return 2
	case strings.Contains(label, ir.ParamPlaceholder):
		return 1
	}
	return 0
}

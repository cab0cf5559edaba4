// Package ir holds the intermediate representation handed from the core to
// every emitter: the schema graph, the operation models, the identifier table
// and the route tree. An IR is built once per generation run and is read-only
// afterwards, so any number of emitters may share it concurrently.
package ir

import (
	"github.com/blimu-dev/hookgen/pkg/generrors"
)

// IR is the complete intermediate representation of an OpenAPI document.
type IR struct {
	Title   string `json:",omitempty" yaml:",omitempty"`
	Version string `json:",omitempty" yaml:",omitempty"`

	Graph *Graph
	// Operations are ordered by path, then by MethodRank.
	Operations []Operation
	// Names is parallel to Operations.
	Names []OperationNames
	// TypeNames maps named schema nodes to their type identifier.
	TypeNames map[NodeRef]Identifier `json:"-" yaml:"-"`
	// Identifiers is the flattened table, grouped by kind in IdentifierKinds order.
	Identifiers []Identifier
	Routes      *RouteTree

	SecuritySchemes []SecurityScheme `json:",omitempty" yaml:",omitempty"`
	Tags            []string         `json:",omitempty" yaml:",omitempty"`

	// Warnings lists recoverable conditions met while building.
	Warnings []*generrors.UnsupportedFeatureError `json:",omitempty" yaml:",omitempty"`
}

// SecurityScheme is a simplified view of an OpenAPI security scheme.
type SecurityScheme struct {
	// Key is the name in components.securitySchemes
	Key string
	// Type is one of: http, apiKey, oauth2, openIdConnect
	Type string
	// Scheme is used when Type is http (e.g., "basic", "bearer")
	Scheme string `json:",omitempty" yaml:",omitempty"`
	// In is used when Type is apiKey (e.g., "header", "query", "cookie")
	In string `json:",omitempty" yaml:",omitempty"`
	// Name is the header/query/cookie name when Type is apiKey
	Name         string `json:",omitempty" yaml:",omitempty"`
	BearerFormat string `json:",omitempty" yaml:",omitempty"`
}

// TypeName returns the type identifier of a named schema node.
func (in *IR) TypeName(ref NodeRef) (string, bool) {
	id, ok := in.TypeNames[ref]
	if !ok {
		return "", false
	}
	return id.Value, true
}

// NamedSchemas returns the named nodes in graph order.
func (in *IR) NamedSchemas() []NodeRef {
	var out []NodeRef
	for i, n := range in.Graph.Nodes() {
		if n.Name != "" {
			out = append(out, NodeRef(i))
		}
	}
	return out
}

// OperationView pairs an operation with its names for emitters and templates.
type OperationView struct {
	Index int
	Op    Operation
	Names OperationNames
}

// Views returns every operation with its names, in IR order.
func (in *IR) Views() []OperationView {
	out := make([]OperationView, len(in.Operations))
	for i := range in.Operations {
		out[i] = OperationView{Index: i, Op: in.Operations[i], Names: in.Names[i]}
	}
	return out
}

// Filter returns a view holding only the operations keep accepts. Operation
// indices are renumbered but every identifier keeps its value, so filtered
// clients agree with unfiltered ones on every name. The graph is shared.
func (in *IR) Filter(keep func(Operation) bool) *IR {
	out := &IR{
		Title:           in.Title,
		Version:         in.Version,
		Graph:           in.Graph,
		TypeNames:       in.TypeNames,
		SecuritySchemes: in.SecuritySchemes,
		Warnings:        in.Warnings,
	}
	remap := make(map[int]int)
	tagSeen := make(map[string]bool)
	for i, op := range in.Operations {
		if !keep(op) {
			continue
		}
		remap[i] = len(out.Operations)
		out.Operations = append(out.Operations, op)
		out.Names = append(out.Names, renumber(in.Names[i], len(out.Operations)-1))
		for _, t := range op.EffectiveTags() {
			tagSeen[t] = true
		}
	}
	for _, t := range in.Tags {
		if tagSeen[t] {
			out.Tags = append(out.Tags, t)
		}
	}
	for _, id := range in.Identifiers {
		if id.Operation < 0 {
			out.Identifiers = append(out.Identifiers, id)
			continue
		}
		if j, ok := remap[id.Operation]; ok {
			id.Operation = j
			out.Identifiers = append(out.Identifiers, id)
		}
	}
	out.Routes = in.Routes.filter(remap)
	return out
}

func renumber(n OperationNames, idx int) OperationNames {
	n.Function.Operation = idx
	n.TypeName.Operation = idx
	n.Hook.Operation = idx
	for _, id := range []**Identifier{&n.QueryType, &n.VariablesType, &n.QueryKey, &n.MutationKey} {
		if *id != nil {
			c := **id
			c.Operation = idx
			*id = &c
		}
	}
	return n
}

func (t *RouteTree) filter(remap map[int]int) *RouteTree {
	if t == nil || t.Root == nil {
		return t
	}
	var copyNode func(n, parent *RouteNode) *RouteNode
	copyNode = func(n, parent *RouteNode) *RouteNode {
		c := &RouteNode{Label: n.Label, Segment: n.Segment, parent: parent}
		for _, op := range n.Ops {
			if j, ok := remap[op]; ok {
				c.Ops = append(c.Ops, j)
			}
		}
		for _, child := range n.Children {
			cc := copyNode(child, c)
			if len(cc.Ops) > 0 || len(cc.Children) > 0 {
				c.Children = append(c.Children, cc)
			}
		}
		return c
	}
	return &RouteTree{Root: copyNode(t.Root, nil)}
}

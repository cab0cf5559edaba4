package ir

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// NodeRef addresses a SchemaNode inside a Graph.
type NodeRef int

// NoNode marks the absence of a schema, e.g. a body-less 204 response.
const NoNode NodeRef = -1

// Valid reports whether r points at a node.
func (r NodeRef) Valid() bool { return r >= 0 }

// SchemaID is the stable identity of a node. Named definitions use their
// canonical reference ("#/components/schemas/Session"); inline shapes use
// "anon:" followed by their structural hash.
type SchemaID string

// IsNamed reports whether the id belongs to a named definition.
func (id SchemaID) IsNamed() bool {
	return id != "" && !strings.HasPrefix(string(id), anonPrefix)
}

const anonPrefix = "anon:"

// AnonID builds the identity of an inline shape from its structural hash.
func AnonID(hash string) SchemaID {
	return SchemaID(anonPrefix + hash)
}

// SchemaKind is the closed set of node shapes.
type SchemaKind int

const (
	KindUnknown SchemaKind = iota
	KindScalar
	KindObject
	KindArray
	KindUnion
	KindEnum
	KindMap
	// KindNullable wraps Inner with an optional marker.
	KindNullable
	// KindIntersection holds allOf members in Variants.
	KindIntersection
)

var kindNames = [...]string{
	KindUnknown:      "unknown",
	KindScalar:       "scalar",
	KindObject:       "object",
	KindArray:        "array",
	KindUnion:        "union",
	KindEnum:         "enum",
	KindMap:          "map",
	KindNullable:     "nullable",
	KindIntersection: "intersection",
}

func (k SchemaKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText renders the kind by name in IR dumps.
func (k SchemaKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ScalarType is the primitive type of a KindScalar node or the base of an enum.
type ScalarType string

const (
	ScalarNone    ScalarType = ""
	ScalarString  ScalarType = "string"
	ScalarInteger ScalarType = "integer"
	ScalarNumber  ScalarType = "number"
	ScalarBoolean ScalarType = "boolean"
	ScalarNull    ScalarType = "null"
)

// UnionMode records which composition keyword produced a union.
type UnionMode string

const (
	UnionOneOf UnionMode = "oneOf"
	UnionAnyOf UnionMode = "anyOf"
)

// Field is one named property of an object node.
type Field struct {
	Name     string
	Type     NodeRef
	Required bool
}

// Discriminator carries polymorphism hints for unions.
type Discriminator struct {
	PropertyName string
	Mapping      map[string]string
}

// Annotations is pass-through documentation. It never takes part in structural identity.
type Annotations struct {
	Title       string `json:",omitempty" yaml:",omitempty"`
	Description string `json:",omitempty" yaml:",omitempty"`
	Deprecated  bool   `json:",omitempty" yaml:",omitempty"`
	ReadOnly    bool   `json:",omitempty" yaml:",omitempty"`
	WriteOnly   bool   `json:",omitempty" yaml:",omitempty"`
}

// SchemaNode is one canonical type shape. Which attributes are meaningful
// depends on Kind; consumers switch on Kind exhaustively.
type SchemaNode struct {
	ID   SchemaID
	Kind SchemaKind
	// Name is the component name for named definitions.
	Name string `json:",omitempty" yaml:",omitempty"`

	Scalar ScalarType `json:",omitempty" yaml:",omitempty"`
	Format string     `json:",omitempty" yaml:",omitempty"`

	Fields []Field `json:",omitempty" yaml:",omitempty"`
	// Extra is the additionalProperties schema of an object with named fields.
	Extra NodeRef

	Variants      []NodeRef      `json:",omitempty" yaml:",omitempty"`
	UnionMode     UnionMode      `json:",omitempty" yaml:",omitempty"`
	Discriminator *Discriminator `json:",omitempty" yaml:",omitempty"`

	Items    NodeRef
	MapValue NodeRef
	Inner    NodeRef

	Values   []any      `json:",omitempty" yaml:",omitempty"`
	EnumBase ScalarType `json:",omitempty" yaml:",omitempty"`

	Annotations Annotations
}

// NewNode returns a node of the given kind with every reference slot empty.
func NewNode(id SchemaID, kind SchemaKind) SchemaNode {
	return SchemaNode{ID: id, Kind: kind, Extra: NoNode, Items: NoNode, MapValue: NoNode, Inner: NoNode}
}

// Graph is the arena of canonical schema nodes for one generation run.
// Nodes reference each other by NodeRef, so cycles are plain lookups.
// A Graph is read-only once built.
type Graph struct {
	nodes []SchemaNode
	byID  map[SchemaID]NodeRef
	named map[string]NodeRef
}

// NewGraph indexes nodes. The slice is owned by the graph afterwards.
func NewGraph(nodes []SchemaNode) (*Graph, error) {
	g := &Graph{
		nodes: nodes,
		byID:  make(map[SchemaID]NodeRef, len(nodes)),
		named: make(map[string]NodeRef),
	}
	for i, n := range nodes {
		if _, dup := g.byID[n.ID]; dup {
			return nil, fmt.Errorf("duplicate schema id %s", n.ID)
		}
		g.byID[n.ID] = NodeRef(i)
		if _, taken := g.named[n.Name]; n.Name != "" && !taken {
			g.named[n.Name] = NodeRef(i)
		}
	}
	for i := range nodes {
		for _, ref := range nodes[i].Refs() {
			if int(ref) >= len(nodes) {
				return nil, fmt.Errorf("schema %s references missing node %d", nodes[i].ID, ref)
			}
		}
	}
	return g, nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Node returns the node at ref. It panics on an invalid ref.
func (g *Graph) Node(ref NodeRef) SchemaNode {
	return g.nodes[ref]
}

// Nodes returns the node table in canonical order. Callers must not modify it.
func (g *Graph) Nodes() []SchemaNode { return g.nodes }

// Lookup finds a node by identity.
func (g *Graph) Lookup(id SchemaID) (NodeRef, bool) {
	ref, ok := g.byID[id]
	return ref, ok
}

// Named finds a named definition by component name.
func (g *Graph) Named(name string) (NodeRef, bool) {
	ref, ok := g.named[name]
	return ref, ok
}

// Refs lists every node the receiver points at, in attribute order.
func (n SchemaNode) Refs() []NodeRef {
	var out []NodeRef
	add := func(r NodeRef) {
		if r.Valid() {
			out = append(out, r)
		}
	}
	switch n.Kind {
	case KindObject:
		for _, f := range n.Fields {
			add(f.Type)
		}
		add(n.Extra)
	case KindArray:
		add(n.Items)
	case KindMap:
		add(n.MapValue)
	case KindNullable:
		add(n.Inner)
	case KindUnion, KindIntersection:
		for _, v := range n.Variants {
			add(v)
		}
	case KindScalar, KindEnum, KindUnknown:
	}
	return out
}

// MarshalJSON dumps the node table.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.nodes)
}

// MarshalYAML dumps the node table.
func (g *Graph) MarshalYAML() (any, error) {
	return g.nodes, nil
}

// Reachable returns every node reachable from roots, in first-visit order.
func (g *Graph) Reachable(roots ...NodeRef) []NodeRef {
	seen := make(map[NodeRef]bool)
	var out []NodeRef
	var walk func(NodeRef)
	walk = func(r NodeRef) {
		if !r.Valid() || seen[r] {
			return
		}
		seen[r] = true
		out = append(out, r)
		for _, c := range g.nodes[r].Refs() {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return out
}

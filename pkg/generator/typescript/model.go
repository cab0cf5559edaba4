package typescript

import (
	"sort"
	"strings"

	"github.com/blimu-dev/hookgen/pkg/config"
	"github.com/blimu-dev/hookgen/pkg/ir"
	"github.com/blimu-dev/hookgen/pkg/naming"
)

// Model is the view of an IR the TypeScript templates render. Emitters
// building on the TypeScript client share it.
type Model struct {
	Client config.Client
	IR     *ir.IR
	// ClassName is the client name as a TypeScript identifier.
	ClassName string

	Ops    []Op
	Decls  []Decl
	Groups []Group

	// Dependencies and PeerDependencies end up in package.json.
	Dependencies     map[string]string
	PeerDependencies map[string]string
	// Exports lists extra modules re-exported from index.ts, e.g. "./hooks".
	Exports []string
}

// Arg is one parameter of a generated function.
type Arg struct {
	Name     string
	Type     string
	Optional bool
}

// Signature renders "name?: Type".
func (a Arg) Signature() string {
	if a.Optional {
		return a.Name + "?: " + a.Type
	}
	return a.Name + ": " + a.Type
}

// Prop is a property of a generated interface.
type Prop struct {
	Name        string
	Type        string
	Optional    bool
	Description string
	Deprecated  bool
}

// Op carries everything the templates print for one operation. Every name
// comes from the IR identifier table.
type Op struct {
	ir.OperationView

	Function string
	TypeName string
	Hook     string
	Pattern  string

	Args     []Arg
	ArgNames []string
	// PathExpr builds the request path with encoded parameters;
	// KeyPathExpr is the same path unencoded, for flattened keys.
	PathExpr    string
	KeyPathExpr string

	QueryType   string
	QueryProps  []Prop
	BodyType    string
	ContentType string
	// VariablesType names the argument object of a mutation hook.
	VariablesType string
	// ResponseType is the union of success payload types, "void" when none.
	ResponseType string

	StructuredKey string
	FlattenedKey  string
	MutationKey   string
	// Invalidates is the route pattern whose queries a successful mutation
	// marks stale.
	Invalidates string
}

// Variables renders the argument object a mutation hook is called with,
// or "void" when the operation takes no arguments.
func (o Op) Variables() string {
	if len(o.Args) == 0 {
		return "void"
	}
	parts := make([]string, len(o.Args))
	for i, a := range o.Args {
		parts[i] = a.Signature()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// Decl is one named schema declaration in schema.ts.
type Decl struct {
	Name        string
	Interface   bool
	Props       []Prop
	Body        string
	Description string
	Deprecated  bool
}

// Group lists the functions below one route-tree prefix.
type Group struct {
	Pattern   string
	Functions []string
}

// NewModel prepares the view of in for client.
func NewModel(client config.Client, in *ir.IR) *Model {
	m := &Model{
		Client:           client,
		IR:               in,
		ClassName:        naming.TypeBase(client.Name),
		Dependencies:     map[string]string{},
		PeerDependencies: map[string]string{},
	}
	for _, v := range in.Views() {
		m.Ops = append(m.Ops, newOp(in, v))
	}
	for _, ref := range in.NamedSchemas() {
		m.Decls = append(m.Decls, newDecl(in, ref))
	}
	if in.Routes != nil {
		for _, g := range in.Routes.Groups() {
			grp := Group{Pattern: g.Pattern()}
			ops := g.AllOperations()
			sort.Ints(ops)
			for _, i := range ops {
				grp.Functions = append(grp.Functions, in.Names[i].Function.Value)
			}
			m.Groups = append(m.Groups, grp)
		}
	}
	return m
}

func newOp(in *ir.IR, v ir.OperationView) Op {
	names := v.Names
	op := Op{
		OperationView: v,
		Function:      names.Function.Value,
		TypeName:      names.TypeName.Value,
		Hook:          names.Hook.Value,
		Pattern:       names.RoutePattern,
		ArgNames:      names.KeyArgs,
		ResponseType:  responseType(in, v.Op),
		Invalidates:   invalidationPattern(in, v.Op),
	}

	for _, p := range v.Op.OrderedPathParams() {
		op.Args = append(op.Args, Arg{Name: naming.ArgName(p.Name), Type: pathParamType(in, p.Schema)})
	}
	if len(v.Op.QueryParams) > 0 {
		op.QueryType = names.QueryType.Value
		optional := true
		for _, p := range v.Op.QueryParams {
			if p.Required {
				optional = false
			}
			op.QueryProps = append(op.QueryProps, Prop{
				Name:        quoteTSPropertyName(p.Name),
				Type:        TypeOf(in, p.Schema, ""),
				Optional:    !p.Required,
				Description: p.Description,
				Deprecated:  p.Deprecated,
			})
		}
		op.Args = append(op.Args, Arg{Name: "query", Type: SchemaNamespace + op.QueryType, Optional: optional})
	}
	if len(v.Op.RequestBodies) > 0 {
		body := v.Op.RequestBodies[0]
		if jb, ok := v.Op.JSONBody(); ok {
			body = jb
		}
		op.ContentType = body.ContentType
		op.BodyType = "Blob | ArrayBuffer | string | FormData"
		if body.Typed {
			op.BodyType = TypeOf(in, body.Schema, SchemaNamespace)
		}
		op.Args = append(op.Args, Arg{Name: "body", Type: op.BodyType, Optional: !body.Required})
	}
	// A required argument may not follow an optional one.
	for i := len(op.Args) - 2; i >= 0; i-- {
		if op.Args[i].Optional && !op.Args[i+1].Optional {
			op.Args[i].Optional = false
			op.Args[i].Type += " | undefined"
		}
	}

	op.PathExpr = pathExpr(v.Op, true)
	op.KeyPathExpr = pathExpr(v.Op, false)
	op.StructuredKey = keyLiteral(names.StructuredKey, v.Op)
	op.FlattenedKey = keyLiteral(names.FlattenedKey, v.Op)
	if names.MutationKey != nil {
		op.MutationKey = names.MutationKey.Value
	}
	if names.VariablesType != nil {
		op.VariablesType = names.VariablesType.Value
	}
	return op
}

func pathParamType(in *ir.IR, ref ir.NodeRef) string {
	t := TypeOf(in, ref, SchemaNamespace)
	if t == "unknown" {
		return "string"
	}
	return t
}

// pathExpr renders the operation path as a template literal.
func pathExpr(op ir.Operation, encode bool) string {
	path := op.RenderPath(func(name string) string {
		arg := naming.ArgName(name)
		if encode {
			return "${encodeURIComponent(String(" + arg + "))}"
		}
		return "${" + arg + "}"
	})
	path = strings.ReplaceAll(path, "`", "\\`")
	return "`" + path + "`"
}

// keyLiteral renders a cache key as a readonly tuple.
func keyLiteral(k ir.CacheKey, op ir.Operation) string {
	parts := make([]string, 0, len(k.Head)+len(k.Args)+1)
	for _, h := range k.Head {
		parts = append(parts, quote(h))
	}
	if k.Style == ir.KeyFlattened {
		parts = append(parts, pathExpr(op, false))
		// Path parameters already live in the literal path.
		for _, a := range k.Args {
			if a == "query" || a == "body" {
				parts = append(parts, a)
			}
		}
	} else {
		parts = append(parts, k.Args...)
	}
	return "[" + strings.Join(parts, ", ") + "] as const"
}

func responseType(in *ir.IR, op ir.Operation) string {
	seen := map[string]bool{}
	var types []string
	for _, r := range op.SuccessResponses() {
		t := "void"
		switch {
		case r.Typed:
			t = TypeOf(in, r.Schema, SchemaNamespace)
		case r.HasBody():
			t = "Blob"
		}
		if !seen[t] {
			seen[t] = true
			types = append(types, wrap(t))
		}
	}
	if len(types) == 0 {
		return "void"
	}
	return strings.Join(types, " | ")
}

// invalidationPattern finds the nearest route-tree ancestor that ends in a
// literal segment, e.g. "/sessions/trusted-devices" for
// DELETE /sessions/trusted-devices/{deviceId}.
func invalidationPattern(in *ir.IR, op ir.Operation) string {
	if in.Routes == nil {
		return ir.RoutePattern(op.Segments)
	}
	node, ok := in.Routes.Lookup(op.Path)
	if !ok {
		return ir.RoutePattern(op.Segments)
	}
	for node.Parent() != nil && node.Segment.IsParam() {
		node = node.Parent()
	}
	return node.Pattern()
}

func newDecl(in *ir.IR, ref ir.NodeRef) Decl {
	n := in.Graph.Node(ref)
	name, _ := in.TypeName(ref)
	d := Decl{Name: name, Description: n.Annotations.Description, Deprecated: n.Annotations.Deprecated}
	if n.Kind == ir.KindObject && !n.Extra.Valid() && len(n.Fields) > 0 {
		d.Interface = true
		for _, f := range n.Fields {
			fa := in.Graph.Node(f.Type).Annotations
			d.Props = append(d.Props, Prop{
				Name:        quoteTSPropertyName(f.Name),
				Type:        TypeOf(in, f.Type, ""),
				Optional:    !f.Required,
				Description: fa.Description,
				Deprecated:  fa.Deprecated,
			})
		}
		return d
	}
	d.Body = expand(in, ref, "")
	return d
}

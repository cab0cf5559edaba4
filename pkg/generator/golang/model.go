package golang

import (
	"fmt"
	"strings"

	"github.com/blimu-dev/hookgen/pkg/config"
	"github.com/blimu-dev/hookgen/pkg/ir"
	"github.com/blimu-dev/hookgen/pkg/naming"
)

// Model is the view of an IR the Go templates render.
type Model struct {
	Client      config.Client
	IR          *ir.IR
	PackageName string
	ModuleName  string
	ClientType  string

	Types []TypeDecl
	Ops   []Op
	Auth  []AuthOption
}

// TypeDecl is one named schema.
type TypeDecl struct {
	Name    string
	Comment string
	// Fields is set for structs; otherwise Underlying holds the type.
	Fields     []Field
	Underlying string
	Consts     []EnumConst
}

// EnumConst is one value of a string enum.
type EnumConst struct {
	Name  string
	Value string
}

// Param is one method parameter.
type Param struct {
	Name string
	Type string
}

// QueryField is one field of a query struct and how it is encoded.
type QueryField struct {
	Field
	Key string
	// Mode is "ptr", "slice" or "value".
	Mode string
}

// Op is one generated method.
type Op struct {
	ir.OperationView

	Method      string
	Comment     string
	PathParams  []Param
	PathFormat  string
	PathArgs    []string
	QueryType   string
	QueryFields []QueryField
	BodyType    string
	ContentType string
	// Result is empty when the operation returns no payload.
	Result string
	Raw    bool
}

// Signature renders the parameter list.
func (o Op) Signature() string {
	parts := []string{"ctx context.Context"}
	for _, p := range o.PathParams {
		parts = append(parts, p.Name+" "+p.Type)
	}
	if o.QueryType != "" {
		parts = append(parts, "query *"+o.QueryType)
	}
	if o.BodyType != "" {
		parts = append(parts, "body "+o.BodyType)
	}
	return strings.Join(parts, ", ")
}

// Returns renders the result list.
func (o Op) Returns() string {
	if o.Result == "" {
		return "error"
	}
	return "(" + o.Result + ", error)"
}

// AuthOption configures one security scheme on the client.
type AuthOption struct {
	Key    string
	Field  string
	Option string
	Type   string
	Scheme string
	In     string
	Name   string
}

// NewModel prepares the view of in for client.
func NewModel(client config.Client, in *ir.IR) *Model {
	m := &Model{
		Client:      client,
		IR:          in,
		PackageName: sanitizePackageName(client.PackageName),
		ModuleName:  client.ModuleName,
		ClientType:  exportedName(client.Name),
	}
	if m.ModuleName == "" {
		m.ModuleName = m.PackageName
	}
	for _, ref := range in.NamedSchemas() {
		m.Types = append(m.Types, newTypeDecl(in, ref))
	}
	for _, v := range in.Views() {
		m.Ops = append(m.Ops, newOp(in, v))
	}
	for _, s := range in.SecuritySchemes {
		a := AuthOption{
			Key:    s.Key,
			Field:  naming.ArgName(s.Key),
			Option: "With" + exportedName(s.Key),
			Type:   s.Type,
			Scheme: strings.ToLower(s.Scheme),
			In:     s.In,
			Name:   s.Name,
		}
		if a.Type == "http" && a.Scheme != "bearer" && a.Scheme != "basic" {
			continue
		}
		if a.Type != "http" && a.Type != "apiKey" {
			continue
		}
		m.Auth = append(m.Auth, a)
	}
	return m
}

func newTypeDecl(in *ir.IR, ref ir.NodeRef) TypeDecl {
	n := in.Graph.Node(ref)
	name, _ := in.TypeName(ref)
	d := TypeDecl{Name: name, Comment: formatGoComment(n.Annotations.Description)}
	if n.Kind == ir.KindObject && len(n.Fields) > 0 {
		d.Fields = structFields(in, n, name)
		return d
	}
	d.Underlying = expandGoType(in, ref)
	if n.Kind == ir.KindEnum && d.Underlying == "string" {
		used := map[string]int{}
		for _, v := range n.Values {
			s, ok := v.(string)
			if !ok {
				continue
			}
			d.Consts = append(d.Consts, EnumConst{Name: uniqueName(name+exportedName(s), used), Value: s})
		}
	}
	return d
}

func newOp(in *ir.IR, v ir.OperationView) Op {
	op := Op{
		OperationView: v,
		Method:        v.Names.TypeName.Value,
		Comment:       opComment(v),
	}

	args := map[string]string{}
	for _, p := range v.Op.OrderedPathParams() {
		name := argName(p.Name)
		args[p.Name] = name
		t := goType(in, p.Schema)
		if t == "any" {
			t = "string"
		}
		op.PathParams = append(op.PathParams, Param{Name: name, Type: t})
	}
	// Literal percent signs survive fmt.Sprintf.
	const mark = "\x00"
	var order []string
	path := v.Op.RenderPath(func(name string) string {
		order = append(order, args[name])
		return mark
	})
	op.PathFormat = strings.ReplaceAll(strings.ReplaceAll(path, "%", "%%"), mark, "%s")
	for _, a := range order {
		op.PathArgs = append(op.PathArgs, fmt.Sprintf("url.PathEscape(fmt.Sprint(%s))", a))
	}

	if len(v.Op.QueryParams) > 0 {
		op.QueryType = v.Names.QueryType.Value
		used := map[string]int{}
		for _, p := range v.Op.QueryParams {
			t := goType(in, p.Schema)
			mode := "value"
			switch {
			case strings.HasPrefix(t, "[]") && t != "[]byte":
				mode = "slice"
			case !p.Required && !strings.HasPrefix(t, "map[") && t != "any":
				t = pointerTo(t)
				mode = "ptr"
			}
			op.QueryFields = append(op.QueryFields, QueryField{
				Field: Field{
					Name:    uniqueName(exportedName(p.Name), used),
					Type:    t,
					Tag:     "`url:\"" + p.Name + "\"`",
					Comment: formatGoComment(p.Description),
				},
				Key:  p.Name,
				Mode: mode,
			})
		}
	}

	if len(v.Op.RequestBodies) > 0 {
		body := v.Op.RequestBodies[0]
		if jb, ok := v.Op.JSONBody(); ok {
			body = jb
		}
		op.ContentType = body.ContentType
		op.BodyType = "io.Reader"
		if body.Typed {
			op.BodyType = goType(in, body.Schema)
		}
	}

	op.Result, op.Raw = resultType(in, v.Op)
	return op
}

// resultType picks the return type from the success responses. Several
// distinct payload types decode into json.RawMessage.
func resultType(in *ir.IR, op ir.Operation) (string, bool) {
	var types []string
	seen := map[string]bool{}
	raw := false
	for _, r := range op.SuccessResponses() {
		var t string
		switch {
		case r.Typed:
			t = goType(in, r.Schema)
		case r.HasBody():
			t = "[]byte"
			raw = true
		default:
			continue
		}
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	switch len(types) {
	case 0:
		return "", false
	case 1:
		return types[0], raw
	}
	if raw {
		return "[]byte", true
	}
	return "json.RawMessage", false
}

func opComment(v ir.OperationView) string {
	text := v.Names.TypeName.Value + " calls " + v.Op.Method + " " + v.Op.Path + "."
	if v.Op.Summary != "" {
		text += "\n\n" + v.Op.Summary
	}
	if v.Op.Deprecated {
		text += "\n\nDeprecated: the operation is marked deprecated."
	}
	return formatGoComment(text)
}

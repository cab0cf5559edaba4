package typescript

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/blimu-dev/hookgen/pkg/ir"
)

// SchemaNamespace prefixes named types outside schema.ts.
const SchemaNamespace = "Schema."

// TypeOf renders the TypeScript type of a graph node. Named nodes print as
// their type name behind ns; anonymous nodes are expanded in place.
func TypeOf(in *ir.IR, ref ir.NodeRef, ns string) string {
	if !ref.Valid() {
		return "unknown"
	}
	if name, ok := in.TypeName(ref); ok {
		return ns + name
	}
	return expand(in, ref, ns)
}

// expand renders the body of a node, even a named one.
func expand(in *ir.IR, ref ir.NodeRef, ns string) string {
	n := in.Graph.Node(ref)
	switch n.Kind {
	case ir.KindScalar:
		return scalarType(n)
	case ir.KindObject:
		obj := objectLiteral(in, n.Fields, ns)
		if n.Extra.Valid() {
			return obj + " & Record<string, " + TypeOf(in, n.Extra, ns) + ">"
		}
		return obj
	case ir.KindArray:
		return "Array<" + TypeOf(in, n.Items, ns) + ">"
	case ir.KindMap:
		return "Record<string, " + TypeOf(in, n.MapValue, ns) + ">"
	case ir.KindUnion:
		return joinTypes(in, n.Variants, ns, " | ")
	case ir.KindIntersection:
		return joinTypes(in, n.Variants, ns, " & ")
	case ir.KindEnum:
		return enumLiterals(n.Values)
	case ir.KindNullable:
		return wrap(TypeOf(in, n.Inner, ns)) + " | null"
	case ir.KindUnknown:
		return "unknown"
	}
	return "unknown"
}

func scalarType(n ir.SchemaNode) string {
	switch n.Scalar {
	case ir.ScalarString:
		if n.Format == "binary" {
			return "Blob"
		}
		return "string"
	case ir.ScalarInteger, ir.ScalarNumber:
		return "number"
	case ir.ScalarBoolean:
		return "boolean"
	case ir.ScalarNull:
		return "null"
	}
	return "unknown"
}

func objectLiteral(in *ir.IR, fields []ir.Field, ns string) string {
	if len(fields) == 0 {
		return "Record<string, never>"
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		opt := "?"
		if f.Required {
			opt = ""
		}
		parts = append(parts, fmt.Sprintf("%s%s: %s", quoteTSPropertyName(f.Name), opt, TypeOf(in, f.Type, ns)))
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

func joinTypes(in *ir.IR, refs []ir.NodeRef, ns, sep string) string {
	if len(refs) == 0 {
		return "unknown"
	}
	seen := map[string]bool{}
	parts := make([]string, 0, len(refs))
	for _, r := range refs {
		t := wrap(TypeOf(in, r, ns))
		if !seen[t] {
			seen[t] = true
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, sep)
}

// wrap parenthesizes composite types so they can be combined safely.
func wrap(t string) string {
	if strings.Contains(t, " | ") || strings.Contains(t, " & ") {
		return "(" + t + ")"
	}
	return t
}

func enumLiterals(values []any) string {
	if len(values) == 0 {
		return "never"
	}
	parts := make([]string, 0, len(values))
	for _, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			continue
		}
		parts = append(parts, string(raw))
	}
	return strings.Join(parts, " | ")
}

// quoteTSPropertyName quotes TypeScript property names that contain special characters
func quoteTSPropertyName(name string) string {
	needsQuoting := name == ""
	for _, char := range name {
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '_' || char == '$') {
			needsQuoting = true
			break
		}
	}
	if len(name) > 0 && name[0] >= '0' && name[0] <= '9' {
		needsQuoting = true
	}
	if needsQuoting {
		raw, _ := json.Marshal(name)
		return string(raw)
	}
	return name
}

// quote renders s as a single-quoted TypeScript string literal.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

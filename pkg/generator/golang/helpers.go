package golang

import (
	"go/token"
	"regexp"
	"strings"

	"github.com/blimu-dev/hookgen/pkg/ir"
	"github.com/blimu-dev/hookgen/pkg/naming"
)

// goType renders the Go type of a graph node. Named nodes print as their
// type name; anonymous ones are expanded in place.
func goType(in *ir.IR, ref ir.NodeRef) string {
	if !ref.Valid() {
		return "any"
	}
	if name, ok := in.TypeName(ref); ok {
		return name
	}
	return expandGoType(in, ref)
}

// expandGoType renders the body of a node, even a named one.
func expandGoType(in *ir.IR, ref ir.NodeRef) string {
	n := in.Graph.Node(ref)
	switch n.Kind {
	case ir.KindScalar:
		return scalarGoType(n.Scalar, n.Format)
	case ir.KindObject:
		if len(n.Fields) == 0 {
			return "map[string]any"
		}
		var b strings.Builder
		b.WriteString("struct {\n")
		for _, f := range structFields(in, n, "") {
			b.WriteString(f.Name + " " + f.Type + " " + f.Tag + "\n")
		}
		b.WriteString("}")
		return b.String()
	case ir.KindArray:
		return "[]" + goType(in, n.Items)
	case ir.KindMap:
		return "map[string]" + goType(in, n.MapValue)
	case ir.KindIntersection:
		if len(n.Variants) == 1 {
			return goType(in, n.Variants[0])
		}
		return "map[string]any"
	case ir.KindEnum:
		return scalarGoType(n.EnumBase, "")
	case ir.KindNullable:
		return pointerTo(goType(in, n.Inner))
	case ir.KindUnion, ir.KindUnknown:
		return "any"
	}
	return "any"
}

func scalarGoType(s ir.ScalarType, format string) string {
	switch s {
	case ir.ScalarString:
		if format == "binary" || format == "byte" {
			return "[]byte"
		}
		return "string"
	case ir.ScalarInteger:
		if format == "int32" {
			return "int32"
		}
		return "int64"
	case ir.ScalarNumber:
		if format == "float" {
			return "float32"
		}
		return "float64"
	case ir.ScalarBoolean:
		return "bool"
	}
	return "any"
}

// pointerTo makes t nullable unless it already is.
func pointerTo(t string) string {
	if t == "any" || strings.HasPrefix(t, "*") || strings.HasPrefix(t, "[]") || strings.HasPrefix(t, "map[") {
		return t
	}
	return "*" + t
}

// isStructNode reports whether ref renders as a Go struct.
func isStructNode(in *ir.IR, ref ir.NodeRef) bool {
	if !ref.Valid() {
		return false
	}
	n := in.Graph.Node(ref)
	return n.Kind == ir.KindObject && len(n.Fields) > 0
}

// Field is one struct field.
type Field struct {
	Name    string
	Type    string
	Tag     string
	Comment string
}

// structFields renders the fields of an object node. Optional struct-typed
// fields and fields of the enclosing type become pointers.
func structFields(in *ir.IR, n ir.SchemaNode, self string) []Field {
	used := map[string]int{}
	out := make([]Field, 0, len(n.Fields))
	for _, f := range n.Fields {
		t := goType(in, f.Type)
		if (!f.Required && isStructNode(in, f.Type)) || (self != "" && t == self) {
			t = pointerTo(t)
		}
		tag := f.Name
		if !f.Required {
			tag += ",omitempty"
		}
		out = append(out, Field{
			Name:    uniqueName(exportedName(f.Name), used),
			Type:    t,
			Tag:     "`json:\"" + tag + "\"`",
			Comment: formatGoComment(in.Graph.Node(f.Type).Annotations.Description),
		})
	}
	return out
}

// exportedName turns a property name into an exported Go identifier.
func exportedName(name string) string {
	s := naming.ToPascalCase(name)
	if s == "" {
		return "Field"
	}
	if s[0] >= '0' && s[0] <= '9' {
		return "F" + s
	}
	return s
}

// uniqueName appends a counter to repeated names.
func uniqueName(name string, used map[string]int) string {
	used[name]++
	if n := used[name]; n > 1 {
		return name + strings.Repeat("_", n-1)
	}
	return name
}

// reservedArgs are the parameter names generated methods already use.
var reservedArgs = map[string]bool{"ctx": true, "query": true, "body": true, "c": true, "path": true, "out": true, "err": true}

// argName turns a path parameter name into an unexported Go identifier.
func argName(name string) string {
	s := naming.ArgName(name)
	if token.IsKeyword(s) || reservedArgs[s] {
		return s + "Param"
	}
	return s
}

// formatGoComment formats a string as a proper Go comment, handling multiline descriptions
func formatGoComment(s string) string {
	if s == "" {
		return ""
	}

	// Split into lines and prefix each with //
	lines := strings.Split(s, "\n")
	var result []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			result = append(result, "//")
		} else {
			result = append(result, "// "+line)
		}
	}

	return strings.Join(result, "\n")
}

// sanitizePackageName ensures the package name is valid for Go
func sanitizePackageName(name string) string {
	// Extract the last part of the package name if it looks like a module path
	parts := strings.Split(name, "/")
	if len(parts) > 0 {
		name = parts[len(parts)-1]
	}

	// Convert to lowercase and replace invalid characters
	name = strings.ToLower(name)
	name = regexp.MustCompile(`[^a-z0-9_]`).ReplaceAllString(name, "")

	// Ensure it doesn't start with a number
	if len(name) > 0 && name[0] >= '0' && name[0] <= '9' {
		name = "pkg" + name
	}

	// Ensure it's not empty
	if name == "" {
		name = "client"
	}

	return name
}

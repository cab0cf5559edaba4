package typescript

import (
	"embed"
	"strings"
	"text/template"

	"github.com/blimu-dev/hookgen/pkg/config"
	"github.com/blimu-dev/hookgen/pkg/generator/emit"
	"github.com/blimu-dev/hookgen/pkg/ir"
	"github.com/blimu-dev/hookgen/pkg/naming"
)

//go:embed templates/*
var templatesFS embed.FS

// TypeScriptGenerator emits a fetch-based TypeScript client: route helpers,
// schema types, a core client and one request function per operation.
type TypeScriptGenerator struct{}

// NewTypeScriptGenerator creates a new TypeScript generator
func NewTypeScriptGenerator() *TypeScriptGenerator {
	return &TypeScriptGenerator{}
}

// GetType returns the generator type identifier
func (g *TypeScriptGenerator) GetType() string {
	return "typescript"
}

// Capabilities reports plain request functions and key literals.
func (g *TypeScriptGenerator) Capabilities() emit.Capability {
	return emit.CapRawCall | emit.CapKeyLiteral
}

// Emit renders the client files for in.
func (g *TypeScriptGenerator) Emit(client config.Client, in *ir.IR) ([]emit.File, error) {
	return BaseFiles(NewModel(client, in))
}

// Funcs are the template helpers shared by every TypeScript-based emitter.
func Funcs() template.FuncMap {
	return emit.Funcs(template.FuncMap{
		"quote":     quote,
		"camel":     naming.ToCamelCase,
		"pascal":    naming.ToPascalCase,
		"kebab":     naming.ToKebabCase,
		"docLines":  docLines,
		"signature": signature,
		"joinArgs":  func(args []string) string { return strings.Join(args, ", ") },
	})
}

// NewRenderer returns a renderer over the embedded TypeScript templates.
func NewRenderer() *emit.Renderer {
	return emit.NewRenderer(templatesFS, "templates", Funcs())
}

// BaseFiles renders the files every TypeScript-based client contains.
func BaseFiles(m *Model) ([]emit.File, error) {
	return NewRenderer().RenderAll([]emit.Job{
		{Template: "routes.ts.gotmpl", Path: "src/routes.ts"},
		{Template: "schema.ts.gotmpl", Path: "src/schema.ts"},
		{Template: "client.ts.gotmpl", Path: "src/client.ts"},
		{Template: "rpc.ts.gotmpl", Path: "src/rpc.ts"},
		{Template: "index.ts.gotmpl", Path: "src/index.ts"},
		{Template: "package.json.gotmpl", Path: "package.json"},
	}, m)
}

// ContextJob renders the React client context shared by the hook emitters.
var ContextJob = emit.Job{Template: "context.ts.gotmpl", Path: "src/context.ts"}

// signature renders a parameter list, optionally followed by extra parameters.
func signature(args []Arg, extra ...string) string {
	parts := make([]string, 0, len(args)+len(extra))
	for _, a := range args {
		parts = append(parts, a.Signature())
	}
	parts = append(parts, extra...)
	return strings.Join(parts, ", ")
}

// docLines turns text into the lines of a JSDoc comment body.
func docLines(s string) []string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "*/", "*\\/"))
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

package golang

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"

	"github.com/blimu-dev/hookgen/pkg/config"
	"github.com/blimu-dev/hookgen/pkg/generator/emit"
	"github.com/blimu-dev/hookgen/pkg/ir"
	"github.com/blimu-dev/hookgen/pkg/naming"
)

//go:embed templates/*
var templatesFS embed.FS

// GoGenerator emits a net/http client with one method per operation.
type GoGenerator struct{}

// NewGoGenerator creates a new Go generator
func NewGoGenerator() *GoGenerator {
	return &GoGenerator{}
}

// GetType returns the generator type identifier
func (g *GoGenerator) GetType() string {
	return "go"
}

// Capabilities reports plain request methods.
func (g *GoGenerator) Capabilities() emit.Capability {
	return emit.CapRawCall
}

// Emit renders the client package for in. Go sources are run through
// goimports before they are returned.
func (g *GoGenerator) Emit(client config.Client, in *ir.IR) ([]emit.File, error) {
	funcMap := emit.Funcs(template.FuncMap{
		"pascal":          naming.ToPascalCase,
		"camel":           naming.ToCamelCase,
		"snake":           naming.ToSnakeCase,
		"formatGoComment": formatGoComment,
	})
	files, err := emit.NewRenderer(templatesFS, "templates", funcMap).RenderAll([]emit.Job{
		{Template: "client.go.gotmpl", Path: "client.go"},
		{Template: "models.go.gotmpl", Path: "models.go"},
		{Template: "operations.go.gotmpl", Path: "operations.go"},
		{Template: "go.mod.gotmpl", Path: "go.mod"},
		{Template: "README.md.gotmpl", Path: "README.md"},
	}, NewModel(client, in))
	if err != nil {
		return nil, err
	}
	for i, f := range files {
		if !strings.HasSuffix(f.Path, ".go") {
			continue
		}
		formatted, err := imports.Process(f.Path, f.Content, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to format %s: %w", f.Path, err)
		}
		files[i].Content = formatted
	}
	return files, nil
}

// Package reactquery emits TanStack Query hooks on top of the TypeScript
// client: one useQuery hook per GET operation and one useMutation hook per
// POST, PUT, PATCH and DELETE, keyed by structured route-pattern keys.
package reactquery

import (
	"embed"

	"github.com/blimu-dev/hookgen/pkg/config"
	"github.com/blimu-dev/hookgen/pkg/generator/emit"
	"github.com/blimu-dev/hookgen/pkg/generator/typescript"
	"github.com/blimu-dev/hookgen/pkg/ir"
)

//go:embed templates/*
var templatesFS embed.FS

// Package versions written into package.json.
const (
	reactQueryVersion = "^5.59.0"
	reactVersion      = ">=18"
)

// ReactQueryGenerator emits the TypeScript client plus React Query hooks.
type ReactQueryGenerator struct{}

// NewReactQueryGenerator creates a new React Query generator
func NewReactQueryGenerator() *ReactQueryGenerator {
	return &ReactQueryGenerator{}
}

// GetType returns the generator type identifier
func (g *ReactQueryGenerator) GetType() string {
	return "react-query"
}

// Capabilities reports query and mutation hooks with key literals. The
// bundled request functions are exported too.
func (g *ReactQueryGenerator) Capabilities() emit.Capability {
	return emit.CapQueryHook | emit.CapMutationHook | emit.CapKeyLiteral | emit.CapRawCall
}

// Emit renders the base client, the client context, keys.ts and hooks.ts.
func (g *ReactQueryGenerator) Emit(client config.Client, in *ir.IR) ([]emit.File, error) {
	m := typescript.NewModel(client, in)
	m.Dependencies["@tanstack/react-query"] = reactQueryVersion
	m.PeerDependencies["react"] = reactVersion
	m.Exports = []string{"./context", "./keys", "./hooks"}

	files, err := typescript.BaseFiles(m)
	if err != nil {
		return nil, err
	}
	ctx, err := typescript.NewRenderer().RenderAll([]emit.Job{typescript.ContextJob}, m)
	if err != nil {
		return nil, err
	}
	hooks, err := emit.NewRenderer(templatesFS, "templates", typescript.Funcs()).RenderAll([]emit.Job{
		{Template: "keys.ts.gotmpl", Path: "src/keys.ts"},
		{Template: "hooks.ts.gotmpl", Path: "src/hooks.ts"},
	}, m)
	if err != nil {
		return nil, err
	}
	files = append(files, ctx...)
	return append(files, hooks...), nil
}

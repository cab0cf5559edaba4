// Package swr emits SWR hooks on top of the TypeScript client. Query keys are
// flattened: [METHOD, literal path, ...args].
package swr

import (
	"embed"

	"github.com/blimu-dev/hookgen/pkg/config"
	"github.com/blimu-dev/hookgen/pkg/generator/emit"
	"github.com/blimu-dev/hookgen/pkg/generator/typescript"
	"github.com/blimu-dev/hookgen/pkg/ir"
)

//go:embed templates/*
var templatesFS embed.FS

const (
	swrVersion   = "^2.2.5"
	reactVersion = ">=18"
)

// SWRGenerator emits the TypeScript client plus SWR hooks.
type SWRGenerator struct{}

// NewSWRGenerator creates a new SWR generator
func NewSWRGenerator() *SWRGenerator {
	return &SWRGenerator{}
}

// GetType returns the generator type identifier
func (g *SWRGenerator) GetType() string {
	return "swr"
}

// Capabilities reports query and mutation hooks with key literals.
func (g *SWRGenerator) Capabilities() emit.Capability {
	return emit.CapQueryHook | emit.CapMutationHook | emit.CapKeyLiteral | emit.CapRawCall
}

// Emit renders the base client, the client context and swr.ts.
func (g *SWRGenerator) Emit(client config.Client, in *ir.IR) ([]emit.File, error) {
	m := typescript.NewModel(client, in)
	m.Dependencies["swr"] = swrVersion
	m.PeerDependencies["react"] = reactVersion
	m.Exports = []string{"./context", "./swr"}

	files, err := typescript.BaseFiles(m)
	if err != nil {
		return nil, err
	}
	ctx, err := typescript.NewRenderer().RenderAll([]emit.Job{typescript.ContextJob}, m)
	if err != nil {
		return nil, err
	}
	hooks, err := emit.NewRenderer(templatesFS, "templates", typescript.Funcs()).RenderAll([]emit.Job{
		{Template: "swr.ts.gotmpl", Path: "src/swr.ts"},
	}, m)
	if err != nil {
		return nil, err
	}
	files = append(files, ctx...)
	return append(files, hooks...), nil
}

// Package hookgen generates typed clients and data-fetching hooks from
// OpenAPI documents.
//
// Every emitter renders the same intermediate representation, so the
// function, hook and key names for one operation agree across targets:
//
//	err := hookgen.Generate(hookgen.GenerateOptions{
//		Spec:        "./openapi.yaml",
//		Type:        "react-query",
//		OutDir:      "./web-client",
//		PackageName: "@acme/api",
//		Name:        "AcmeClient",
//	})
//
// For lower-level access, BuildIR returns the intermediate representation
// itself, and the generator package exposes the emitter registry.
package hookgen

import (
	"github.com/blimu-dev/hookgen/pkg/generator"
	"github.com/blimu-dev/hookgen/pkg/ir"
	"github.com/blimu-dev/hookgen/pkg/openapi"
)

// Generate generates a client with full configuration options.
//
// Example:
//
//	err := hookgen.Generate(hookgen.GenerateOptions{
//		Spec:        "./openapi.yaml",
//		Type:        "swr",
//		OutDir:      "./my-client",
//		PackageName: "my-api-client",
//		Name:        "MyAPIClient",
//		IncludeTags: []string{"users", "orders"},
//		ExcludeTags: []string{"internal"},
//	})
func Generate(opts GenerateOptions) error {
	return generator.GenerateClient(generator.GenerateClientOptions(opts))
}

// GenerateFromConfig generates clients from a YAML configuration file.
// Optionally, you can specify a single client name to generate only that client.
//
// Example:
//
//	// Generate all clients from config
//	err := hookgen.GenerateFromConfig("./hookgen.yaml")
//
//	// Generate only a specific client
//	err := hookgen.GenerateFromConfig("./hookgen.yaml", "web")
func GenerateFromConfig(configPath string, singleClient ...string) error {
	return generator.GenerateFromConfig(configPath, singleClient...)
}

// ValidateSpec validates an OpenAPI specification file.
func ValidateSpec(specPath string) error {
	return generator.ValidateSpec(specPath)
}

// BuildIR loads the document at specPath (a file path or HTTP(S) URL) and
// returns its intermediate representation.
func BuildIR(specPath string) (*ir.IR, error) {
	doc, err := openapi.LoadDocument(specPath)
	if err != nil {
		return nil, err
	}
	return generator.BuildIR(doc)
}

// GenerateOptions contains options for client generation
type GenerateOptions struct {
	// ConfigPath is the path to the configuration file (optional)
	ConfigPath string

	// SingleClient generates only the named client from config (optional)
	SingleClient string

	// Fallback options when no config file is provided
	Spec        string   // OpenAPI spec file or URL
	Type        string   // Emitter type: typescript, react-query, swr or go
	OutDir      string   // Output directory
	PackageName string   // Package name for the generated client
	Name        string   // Client class name
	Version     string   // Package version, defaults to 0.1.0
	IncludeTags []string // Regex patterns for tags to include
	ExcludeTags []string // Regex patterns for tags to exclude
}

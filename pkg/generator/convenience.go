package generator

import (
	"path/filepath"

	"github.com/blimu-dev/hookgen/pkg/config"
	"github.com/blimu-dev/hookgen/pkg/openapi"
)

// GenerateClient is a convenience function for generating clients with minimal configuration
func GenerateClient(opts GenerateClientOptions) error {
	service := NewService()

	genOpts := GenerateOptions{
		ConfigPath:   opts.ConfigPath,
		SingleClient: opts.SingleClient,
		Fallback: FallbackOptions{
			Spec:        opts.Spec,
			Type:        opts.Type,
			OutDir:      opts.OutDir,
			PackageName: opts.PackageName,
			Name:        opts.Name,
			Version:     opts.Version,
			IncludeTags: opts.IncludeTags,
			ExcludeTags: opts.ExcludeTags,
		},
	}

	return service.Generate(genOpts)
}

// GenerateClientOptions contains options for the convenience GenerateClient function
type GenerateClientOptions struct {
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

// GenerateReactQueryHooks generates a React Query hook package with the default options.
func GenerateReactQueryHooks(spec, outDir, packageName, clientName string) error {
	// Ensure absolute path for outDir
	absOutDir, err := filepath.Abs(outDir)
	if err != nil {
		return err
	}

	return GenerateClient(GenerateClientOptions{
		Spec:        spec,
		Type:        "react-query",
		OutDir:      absOutDir,
		PackageName: packageName,
		Name:        clientName,
	})
}

// GenerateFromConfig is a convenience function for generating from a config file
func GenerateFromConfig(configPath string, singleClient ...string) error {
	service := NewService()
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	onlyClient := ""
	if len(singleClient) > 0 {
		onlyClient = singleClient[0]
	}

	return service.GenerateFromConfig(cfg, onlyClient)
}

// ValidateSpec validates an OpenAPI specification
func ValidateSpec(specPath string) error {
	return openapi.ValidateDocument(specPath)
}

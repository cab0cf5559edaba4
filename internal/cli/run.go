package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/blimu-dev/hookgen/pkg/generator"
	"github.com/blimu-dev/hookgen/pkg/openapi"
)

type FallbackParams struct {
	Spec        string
	Type        string
	OutDir      string
	PackageName string
	Name        string
	Version     string
	IncludeTags []string
	ExcludeTags []string
}

type RunGenerateParams struct {
	ConfigPath   string
	SingleClient string
	Fallback     FallbackParams
}

// NewLogger returns the CLI logger: text on w, debug level when verbose.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func RunValidate(input string) error {
	return openapi.ValidateDocument(input)
}

func RunGenerate(logger *slog.Logger, p RunGenerateParams) error {
	if p.ConfigPath == "" {
		if p.Fallback.Spec == "" || p.Fallback.Type == "" || p.Fallback.OutDir == "" || p.Fallback.PackageName == "" || p.Fallback.Name == "" {
			return errors.New("either --config or all of --input, --type, --out, --package-name, --client-name must be provided")
		}
	}
	service := generator.NewService(generator.WithLogger(logger))
	return service.Generate(generator.GenerateOptions{
		ConfigPath:   p.ConfigPath,
		SingleClient: p.SingleClient,
		Fallback:     generator.FallbackOptions(p.Fallback),
	})
}

// RunInspect writes the IR of input to w as "json" or "yaml".
func RunInspect(logger *slog.Logger, w io.Writer, input, format string) error {
	doc, err := openapi.LoadDocument(input)
	if err != nil {
		return err
	}
	in, err := generator.BuildIR(doc, generator.WithBuildLogger(logger))
	if err != nil {
		return err
	}
	switch format {
	case "json", "":
		data, err := json.MarshalIndent(in, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode IR: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(in); err != nil {
			return fmt.Errorf("failed to encode IR: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q (want json or yaml)", format)
}

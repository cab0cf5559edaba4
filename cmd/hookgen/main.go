package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/blimu-dev/hookgen/internal/cli"
)

func main() {
	var verbose bool
	root := &cobra.Command{
		Use:           "hookgen",
		Short:         "Generate typed clients and data-fetching hooks from OpenAPI specs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")

	root.AddCommand(newGenerateCmd(&verbose))
	root.AddCommand(newValidateCmd())
	root.AddCommand(newInspectCmd(&verbose))

	if err := root.Execute(); err != nil {
		cli.NewLogger(os.Stderr, false).Error("hookgen failed", "error", err)
		os.Exit(1)
	}
}

func newGenerateCmd(verbose *bool) *cobra.Command {
	var p cli.RunGenerateParams

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunGenerate(cli.NewLogger(cmd.ErrOrStderr(), *verbose), p)
		},
	}

	cmd.Flags().StringVarP(&p.ConfigPath, "config", "c", "", "Path to hookgen.yaml config")
	cmd.Flags().StringVar(&p.SingleClient, "client", "", "Generate only the named client from config")
	// Fallback single-client flags
	cmd.Flags().StringVar(&p.Fallback.Spec, "input", "", "OpenAPI spec file (yaml/json) or URL")
	cmd.Flags().StringVar(&p.Fallback.Type, "type", "", "Client type: typescript, react-query, swr or go")
	cmd.Flags().StringVar(&p.Fallback.OutDir, "out", "", "Output directory")
	cmd.Flags().StringVar(&p.Fallback.PackageName, "package-name", "", "Package name")
	cmd.Flags().StringVar(&p.Fallback.Name, "client-name", "", "Client class name")
	cmd.Flags().StringVar(&p.Fallback.Version, "version", "", "Package version (semver)")
	cmd.Flags().StringArrayVar(&p.Fallback.IncludeTags, "include-tags", nil, "Regex patterns for tags to include")
	cmd.Flags().StringArrayVar(&p.Fallback.ExcludeTags, "exclude-tags", nil, "Regex patterns for tags to exclude")

	return cmd
}

func newValidateCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an OpenAPI spec",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunValidate(input)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "OpenAPI spec file (yaml/json)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newInspectCmd(verbose *bool) *cobra.Command {
	var input, format string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the intermediate representation of an OpenAPI spec",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunInspect(cli.NewLogger(cmd.ErrOrStderr(), *verbose), cmd.OutOrStdout(), input, format)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "OpenAPI spec file (yaml/json)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"
	"github.com/specialistvlad/buildgen/internal/app"
	"github.com/specialistvlad/buildgen/internal/generator"
	"github.com/specialistvlad/buildgen/internal/pkgregistry"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

type globalFlags struct {
	logLevel  string
	logFormat string
}

// NewRootCommand builds the buildgen command tree. Output of every command
// goes to outW.
func NewRootCommand(outW io.Writer) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "buildgen",
		Short: "Build-system generator core",
		Long: `buildgen - configure a project, run its build and test commands and
write the build-tree export files other projects import.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(outW)

	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")

	root.AddCommand(newConfigureCommand(flags))
	root.AddCommand(newGeneratorsCommand())
	root.AddCommand(newRegistryCommand())
	return root
}

// Execute runs the command tree with args. Usage problems are reported as an
// ExitError with code 2.
func Execute(ctx context.Context, args []string, outW io.Writer) error {
	slog.Debug("CLI parser started.")
	root := NewRootCommand(outW)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	var exitErr *ExitError
	if err == nil || errors.As(err, &exitErr) {
		return err
	}
	return &ExitError{Code: 1, Message: err.Error()}
}

func newConfigureCommand(flags *globalFlags) *cobra.Command {
	var binaryDir, format, registry string

	cmd := &cobra.Command{
		Use:   "configure [PROJECT_PATH]",
		Short: "Run the configure pass of a project",
		Long: `Load the project files (.hcl, .yaml, .yml) found at PROJECT_PATH, run their
commands in order and write the export files they bind.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			env, err := app.LoadEnv()
			if err != nil {
				return &ExitError{Code: 2, Message: err.Error()}
			}
			cfg, err := app.NewConfig(app.Config{
				ProjectPath: path,
				BinaryDir:   binaryDir,
				Format:      format,
				Registry:    registry,
				LogLevel:    flags.logLevel,
				LogFormat:   flags.logFormat,
				Env:         env,
			})
			if err != nil {
				return &ExitError{Code: 2, Message: err.Error()}
			}
			slog.Debug("CLI parameter validation complete.")

			loader, err := app.NewLoader(cfg.Format)
			if err != nil {
				return &ExitError{Code: 2, Message: err.Error()}
			}
			a, err := app.NewApp(cmd.OutOrStdout(), cfg, loader)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&binaryDir, "binary-dir", "B", "", "Override the binary directory of the project.")
	cmd.Flags().StringVar(&format, "format", app.FormatAuto, "Project file format. Options: 'auto', 'hcl' or 'yaml'.")
	cmd.Flags().StringVar(&registry, "registry", "", "Package registry backend. Options: 'auto', 'file', 'registry', 'sqlite', 'memory'.")
	return cmd
}

func newGeneratorsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generators",
		Short: "List the available generators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Generators")
			for _, doc := range generator.NewCatalog().Describe() {
				fmt.Fprintf(out, "  %-22s = %s\n", doc.Name, doc.Brief)
			}
			return nil
		},
	}
}

func newRegistryCommand() *cobra.Command {
	var backendKind, dbPath string

	registry := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the user package registry",
	}
	list := &cobra.Command{
		Use:   "list PACKAGE",
		Short: "List the build directories registered for a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.LoadEnv()
			if err != nil {
				return &ExitError{Code: 2, Message: err.Error()}
			}
			kind := env.PackageRegistry
			if backendKind != "" {
				kind = backendKind
			}
			path := env.PackageRegistryPath
			if dbPath != "" {
				path = dbPath
			}

			backend, err := pkgregistry.Open(pkgregistry.Kind(kind), path, env.Home)
			if err != nil {
				return &ExitError{Code: 2, Message: err.Error()}
			}
			reg := pkgregistry.New(backend)
			defer reg.Close()

			entries, err := reg.Entries(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			hashes := make([]string, 0, len(entries))
			for h := range entries {
				hashes = append(hashes, h)
			}
			sort.Strings(hashes)
			for _, h := range hashes {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", h, entries[h])
			}
			return nil
		},
	}
	list.Flags().StringVar(&backendKind, "backend", "", "Package registry backend, defaults to BUILDGEN_PACKAGE_REGISTRY.")
	list.Flags().StringVar(&dbPath, "path", "", "SQLite database path, defaults to BUILDGEN_PACKAGE_REGISTRY_PATH.")
	registry.AddCommand(list)
	return registry
}

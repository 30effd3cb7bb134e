// Package cmd implements the stt CLI commands.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eykd/storytest-go/internal/engine"
	"github.com/eykd/storytest-go/internal/handler"
	"github.com/eykd/storytest-go/internal/zoo"
)

// CatalogSource supplies the target types commands run stories against.
type CatalogSource func() (*handler.Catalog, error)

// NewRootCmd creates the root stt command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "stt",
		Short:             "stt - run Given/When/Then stories against Go types",
		Args:              cobra.NoArgs,
		SilenceErrors:     true,
		PersistentPreRunE: initLogger,
		RunE:              syncAfter(rootRunE),
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging on stderr")

	addCommands(root,
		NewRunCmd(newDefaultStoryReader(), zoo.NewCatalog),
		NewParseCmd(newDefaultStoryReader()),
		NewSuiteCmd(newDefaultSuiteIO(), zoo.NewCatalog),
		NewTypesCmd(zoo.NewCatalog),
		NewWatchCmd(newDefaultStoryReader(), zoo.NewCatalog),
	)
	return root
}

// addCommands registers subcommands whose logger is synced however RunE
// returns. Cobra skips post-run hooks after a RunE error.
func addCommands(root *cobra.Command, cmds ...*cobra.Command) {
	for _, c := range cmds {
		if c.RunE != nil {
			c.RunE = syncAfter(c.RunE)
		}
		root.AddCommand(c)
	}
}

func syncAfter(run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer syncLogger(cmd)
		return run(cmd, args)
	}
}

func rootRunE(cmd *cobra.Command, _ []string) error {
	return cmd.Help()
}

type loggerKey struct{}

// buildLogger is replaced in tests.
var buildLogger = func(config zap.Config) (*zap.Logger, error) {
	return config.Build()
}

// initLogger builds the zap logger for the command being run.
func initLogger(cmd *cobra.Command, _ []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := buildLogger(config)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, logger))
	return nil
}

func syncLogger(cmd *cobra.Command) {
	_ = loggerFrom(cmd).Sync()
}

// loggerFrom returns the command's logger, or a no-op logger when the command
// runs outside the root command.
func loggerFrom(cmd *cobra.Command) *zap.Logger {
	if ctx := cmd.Context(); ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}

func newEngine(cmd *cobra.Command) *engine.Engine {
	return engine.New(
		engine.WithLogger(loggerFrom(cmd)),
		engine.WithCopiers(zoo.Copiers()),
	)
}

// lookupType resolves a target type name against the catalog.
func lookupType(source CatalogSource, name string) (*handler.Type, error) {
	catalog, err := source()
	if err != nil {
		return nil, fmt.Errorf("loading types: %w", err)
	}
	typ, ok := catalog.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown target type %q (see stt types)", name)
	}
	return typ, nil
}

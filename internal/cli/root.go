package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/termstore/internal/config"
	"github.com/roach88/termstore/internal/schema"
	"github.com/roach88/termstore/internal/store"
)

// RootOptions holds global flags for all commands. PersistentPreRunE
// replaces them with the resolved configuration.
type RootOptions struct {
	ConfigFile string
	DB         string
	Verbose    bool
	Format     string // "json" | "text"
	Cache      config.CacheConfig
	Logger     *slog.Logger
}

// NewRootCommand creates the root command for the termstore CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "termstore",
		Short: "termstore - terminology component store",
		Long: `Store and inspect terminology components: dynamic assemblage
definitions, their usage descriptions, and stated logic graphs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigFile, cmd.Flags())
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			opts.apply(cfg, cmd.ErrOrStderr())
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (YAML or TOML)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "termstore.db", "path to the SQLite store")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", config.FormatText, "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewDefineCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewGraphCommand(opts))

	return cmd
}

func (o *RootOptions) apply(cfg *config.Config, logOut io.Writer) {
	o.DB = cfg.DB
	o.Format = cfg.Format
	o.Verbose = cfg.Verbose
	o.Cache = cfg.Cache

	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.Logger = slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))
}

// logger returns the configured logger, or one that discards everything
// when the options were built without the root command.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

func (o *RootOptions) openStore() (*store.Store, error) {
	return store.Open(o.DB, store.WithLogger(o.logger()))
}

func (o *RootOptions) newCache(src schema.Source) (*schema.Cache, error) {
	dynamic, static := o.Cache.Dynamic, o.Cache.Static
	if dynamic <= 0 {
		dynamic = schema.DefaultDynamicCapacity
	}
	if static <= 0 {
		static = schema.DefaultStaticCapacity
	}
	return schema.NewCache(src, schema.WithCapacity(dynamic, static), schema.WithLogger(o.logger()))
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

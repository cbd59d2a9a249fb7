// Package commands implements the convex-typegen command line.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/convex-typegen/config"
	"github.com/teranos/convex-typegen/errors"
	"github.com/teranos/convex-typegen/logger"
	"github.com/teranos/convex-typegen/typegen"
)

// options holds the persistent flags shared by every command
type options struct {
	configPath string
	schemaPath string
	outFile    string
	functions  []string
	debugDir   string
	parser     string
	logJSON    bool
	verbosity  int

	// loaded by PersistentPreRunE for commands that need it
	cfg *config.Config
}

// NewRootCmd builds the command tree. The root command generates.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	var toStdout bool

	root := &cobra.Command{
		Use:   "convex-typegen",
		Short: "Generate Rust types from a Convex schema and functions",
		Long: `Generate Rust types from a Convex backend.

convex-typegen reads convex/schema.ts and the configured function files,
interprets their v.* validators and writes one Rust file with a struct per
table and per function's arguments. Nothing is written when any input fails.

Settings come from convex-typegen.toml (searched upwards from the working
directory), CONVEX_TYPEGEN_* environment variables and the flags below, in
increasing order of precedence.

Examples:
  convex-typegen                                  # Generate src/convex_types.rs
  convex-typegen -f convex/users.ts -f convex/tasks.ts
  convex-typegen --out crates/api/src/types.rs    # Custom output file
  convex-typegen --stdout                         # Print instead of writing
  convex-typegen check                            # Exit 1 when out of date
  convex-typegen watch                            # Regenerate on save`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if toStdout {
				res, err := typegen.Render(cmd.Context(), opts.cfg)
				if err != nil {
					return err
				}
				printUnresolved(cmd.ErrOrStderr(), res)
				_, err = cmd.OutOrStdout().Write(res.Output)
				return err
			}

			res, err := typegen.Generate(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			printUnresolved(cmd.ErrOrStderr(), res)
			printGenerated(cmd.OutOrStdout(), res)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Config file (default: nearest "+config.ConfigFileName+")")
	flags.StringVarP(&opts.schemaPath, "schema", "s", "", "Convex schema file (default: "+config.DefaultSchemaPath+")")
	flags.StringVarP(&opts.outFile, "out", "o", "", "Generated Rust file (default: "+config.DefaultOutFile+")")
	flags.StringSliceVarP(&opts.functions, "functions", "f", nil, "Convex function files whose args get types (repeatable)")
	flags.StringVar(&opts.debugDir, "debug-dir", "", "Dump syntax trees and parsed models into this directory")
	flags.StringVar(&opts.parser, "parser", "", "External ESTree parser command (default: built-in parser)")
	flags.BoolVar(&opts.logJSON, "log-json", false, "Write logs as JSON")
	flags.CountVarP(&opts.verbosity, "verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")

	root.Flags().BoolVar(&toStdout, "stdout", false, "Print the generated Rust to stdout instead of writing the file")

	root.AddCommand(newCheckCmd(opts))
	root.AddCommand(newWatchCmd(opts))
	root.AddCommand(newInitCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// setup loads the configuration and initializes the global logger.
// init and version run without a project config.
func (o *options) setup(cmd *cobra.Command) error {
	if cmd.Name() == "init" || cmd.Name() == "version" {
		return logger.InitializeWithWriter(cmd.ErrOrStderr(), o.logJSON, o.verbosity)
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	o.apply(cmd, cfg)

	if err := logger.InitializeWithWriter(cmd.ErrOrStderr(), cfg.Log.JSON, o.verbosity); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	logger.Named("cli").Infow("Configuration loaded",
		"schema", cfg.SchemaPath,
		"out", cfg.OutFile,
		"functions", len(cfg.FunctionPaths),
		"verbosity", logger.LevelName(o.verbosity),
	)
	o.cfg = cfg
	return nil
}

// apply overrides cfg with the flags that were set explicitly
func (o *options) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("schema") {
		cfg.SchemaPath = o.schemaPath
	}
	if flags.Changed("out") {
		cfg.OutFile = o.outFile
	}
	if flags.Changed("functions") {
		cfg.FunctionPaths = o.functions
	}
	if flags.Changed("debug-dir") {
		cfg.DebugDir = o.debugDir
	}
	if flags.Changed("parser") {
		cfg.Parser.Command = o.parser
	}
	if flags.Changed("log-json") {
		cfg.Log.JSON = o.logJSON
	}
}

package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/convex-typegen/typegen"
)

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever the schema or a function file changes",
		Long: `Generate once, then again every time one of the inputs is saved.

A failed run is reported and the previous output stays in place; watching
continues until interrupted.

Examples:
  convex-typegen watch
  convex-typegen watch -f convex/users.ts -vv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			pterm.Info.WithWriter(out).Printfln("Watching %s and %s (Ctrl+C to stop)",
				opts.cfg.SchemaPath, plural(len(opts.cfg.FunctionPaths), "function file"))

			err := typegen.Watch(ctx, opts.cfg, func(res *typegen.Result, err error) {
				if err != nil {
					PrintError(errOut, err, opts.verbosity)
					return
				}
				printUnresolved(errOut, res)
				printGenerated(out, res)
			})
			if err != nil {
				return err
			}
			pterm.Info.WithWriter(out).Println("Stopped watching")
			return nil
		},
	}
}

package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/convex-typegen/errors"
	"github.com/teranos/convex-typegen/typegen"
)

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the generated Rust file is up to date",
		Long: `Check that the generated Rust file matches the current Convex sources.

The types are rendered in memory and compared with the existing file,
ignoring the header lines that only name the schema path. Nothing is
written.

Exit codes:
  0 - Types are up to date
  1 - Types are out of date, missing, or the sources failed to generate

Examples:
  convex-typegen check                # Check the configured output
  convex-typegen check -o types.rs    # Check another file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := typegen.Check(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			printUnresolved(cmd.ErrOrStderr(), res.Result)

			out := cmd.OutOrStdout()
			switch {
			case res.UpToDate:
				pterm.Success.WithWriter(out).Println("✓ Types are up to date")
				return nil
			case res.Missing:
				pterm.Error.WithWriter(out).Printfln("✗ %s does not exist.", opts.cfg.OutFile)
				return errors.WithHint(
					errors.Newf("%s is missing", opts.cfg.OutFile),
					"run convex-typegen to generate it")
			default:
				pterm.Error.WithWriter(out).Printfln("✗ Types are out of date (%s:%d).",
					res.FirstDifference.File, res.FirstDifference.Line)
				return errors.WithHint(
					errors.Newf("%s is out of date", opts.cfg.OutFile),
					"run convex-typegen to regenerate it")
			}
		},
	}
}

package commands

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/convex-typegen/config"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default " + config.ConfigFileName,
		Long: `Write a configuration file holding every default, ready to edit.

Examples:
  convex-typegen init                   # ./convex-typegen.toml
  convex-typegen init backend/          # backend/convex-typegen.toml
  convex-typegen init --force           # Overwrite an existing file`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ConfigFileName
			if len(args) == 1 {
				path = configFilePath(args[0])
			}
			if err := config.WriteDefault(path, force); err != nil {
				return err
			}
			pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Wrote %s", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

// configFilePath names the config file for arg, which may be a directory.
func configFilePath(arg string) string {
	if strings.HasSuffix(arg, "/") || strings.HasSuffix(arg, string(filepath.Separator)) {
		return filepath.Join(arg, config.ConfigFileName)
	}
	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		return filepath.Join(arg, config.ConfigFileName)
	}
	return arg
}

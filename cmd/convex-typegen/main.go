package main

import (
	"os"

	"github.com/teranos/convex-typegen/cmd/convex-typegen/commands"
	"github.com/teranos/convex-typegen/logger"
)

func main() {
	root := commands.NewRootCmd()
	err := root.Execute()
	logger.Cleanup()
	if err != nil {
		verbosity, _ := root.PersistentFlags().GetCount("verbose")
		commands.PrintError(root.ErrOrStderr(), err, verbosity)
		os.Exit(1)
	}
}

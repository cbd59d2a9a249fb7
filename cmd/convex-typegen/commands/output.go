package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/convex-typegen/errors"
	"github.com/teranos/convex-typegen/logger"
	"github.com/teranos/convex-typegen/typegen"
)

// PrintError renders err with its details and hints. At -vvv failures
// that are not input problems also print their stack trace.
func PrintError(w io.Writer, err error, verbosity int) {
	pterm.Error.WithWriter(w).Println(err.Error())
	for _, detail := range errors.GetAllDetails(err) {
		fmt.Fprintln(w, "  "+strings.TrimSpace(detail))
	}
	for _, hint := range errors.GetAllHints(err) {
		pterm.Info.WithWriter(w).Println(strings.TrimSpace(hint))
	}
	if !errors.IsUserError(err) && logger.ShouldLogTrace(verbosity) {
		fmt.Fprintf(w, "%+v\n", err)
	}
}

func printGenerated(w io.Writer, res *typegen.Result) {
	pterm.Success.WithWriter(w).Printfln("Generated %s (%s, %s) in %dms",
		res.OutFile,
		plural(res.Tables, "table"),
		plural(res.Functions, "function"),
		res.Elapsed.Milliseconds())
}

// printUnresolved warns about v.id references to undeclared tables. They
// still render, against an empty marker type.
func printUnresolved(w io.Writer, res *typegen.Result) {
	for _, table := range res.Unresolved {
		pterm.Warning.WithWriter(w).Printfln("v.id(%q) refers to a table the schema does not declare", table)
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

package typegen

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/teranos/convex-typegen/config"
	"github.com/teranos/convex-typegen/errors"
)

// CheckResult holds the result of a types check
type CheckResult struct {
	UpToDate bool
	// Missing is set when the output file does not exist yet
	Missing bool
	// FirstDifference locates the first differing line of the existing file
	FirstDifference Position
	// Result is the in-memory rendering the file was compared with
	Result *Result
}

// Check renders the configured sources in memory and compares them with
// the existing output file. Header lines that only name the source are
// ignored.
func Check(ctx context.Context, cfg *config.Config) (*CheckResult, error) {
	res, err := Render(ctx, cfg)
	if err != nil {
		return nil, err
	}
	check := &CheckResult{Result: res}

	existing, err := os.ReadFile(cfg.OutFile)
	if err != nil {
		if os.IsNotExist(err) {
			check.Missing = true
			check.FirstDifference = Position{File: cfg.OutFile}
			return check, nil
		}
		return nil, errors.NewIOError(cfg.OutFile, err)
	}

	line := firstDifferentLine(filterMetadataLines(res.Output), filterMetadataLines(existing))
	check.UpToDate = line == 0
	if !check.UpToDate {
		check.FirstDifference = Position{File: cfg.OutFile, Line: line}
	}
	return check, nil
}

// filterMetadataLines blanks the generated-file banner lines of content,
// keeping line numbers. The banner names the schema path, which may be
// spelled differently between runs without the types changing.
// Returns nil if scanner encounters an error.
func filterMetadataLines(content []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		// Blank metadata comment lines
		if strings.HasPrefix(trimmed, "// Code generated by convex-typegen") ||
			strings.HasPrefix(trimmed, "// Regenerate with:") {
			line = ""
		}
		lines = append(lines, line)
	}

	// Check for scanner errors (e.g., lines too long)
	if err := scanner.Err(); err != nil {
		// nil never equals a non-empty rendering, so the check fails
		return nil
	}
	return lines
}

// firstDifferentLine returns the 1-based number of the first line that
// differs, or 0 when they are equal.
func firstDifferentLine(want, got []string) int {
	n := len(want)
	if len(got) < n {
		n = len(got)
	}
	for i := 0; i < n; i++ {
		if want[i] != got[i] {
			return i + 1
		}
	}
	if len(want) != len(got) {
		return n + 1
	}
	return 0
}

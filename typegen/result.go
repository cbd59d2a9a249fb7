package typegen

import (
	"time"
)

// Result describes one generation run.
// Output is what was (or, for Check, would be) written to OutFile.
type Result struct {
	// Output is the rendered Rust source
	Output []byte

	// OutFile is the destination path as configured
	OutFile string

	// SchemaPath is the canonical path of the schema file that was read
	SchemaPath string

	// FunctionPaths are the canonical paths of the function files, in
	// configuration order
	FunctionPaths []string

	// Tables is the number of tables declared by the schema
	Tables int

	// Functions is the number of functions whose arguments were extracted
	Functions int

	// Unresolved lists tables referenced through v.id(...) that the schema
	// does not declare, in first-seen order
	Unresolved []string

	// Elapsed covers reading through rendering (and writing, for Generate)
	Elapsed time.Duration
}

// Position represents a source code location
type Position struct {
	// File is the path as given in the configuration
	File string
	// Line is 1-based; 0 when unknown
	Line int
}

package syntax

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SourceKind is the hint handed to a parser about the source dialect.
type SourceKind int

const (
	SourceTS SourceKind = iota
	SourceTSX
	SourceJS
	SourceJSX
)

func (k SourceKind) String() string {
	switch k {
	case SourceTSX:
		return "tsx"
	case SourceJS:
		return "js"
	case SourceJSX:
		return "jsx"
	default:
		return "ts"
	}
}

// SourceKindFromPath derives the dialect from a file extension.
// Unknown extensions are treated as TypeScript.
func SourceKindFromPath(path string) SourceKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx":
		return SourceTSX
	case ".js", ".mjs", ".cjs":
		return SourceJS
	case ".jsx":
		return SourceJSX
	default:
		return SourceTS
	}
}

// Parser turns source text into a syntax tree.
// A rejected file yields a SyntaxErrors value with at least one entry.
type Parser interface {
	Parse(path string, src []byte, kind SourceKind) (*File, error)
}

// Diagnostic is a single parser complaint.
type Diagnostic struct {
	Pos     Position
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s", d.Pos.Line, d.Pos.Column, d.Message)
}

// SyntaxErrors is the non-empty list of diagnostics for a rejected file.
type SyntaxErrors []Diagnostic

func (e SyntaxErrors) Error() string {
	switch len(e) {
	case 0:
		return "syntax error"
	case 1:
		return e[0].String()
	default:
		return fmt.Sprintf("%s (and %d more)", e[0].String(), len(e)-1)
	}
}

// First returns the diagnostic reported first.
func (e SyntaxErrors) First() Diagnostic {
	if len(e) == 0 {
		return Diagnostic{Message: "syntax error"}
	}
	return e[0]
}

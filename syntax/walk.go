package syntax

import "strings"

// DottedPath renders an identifier or member chain as "a.b.c".
// Any other node yields "".
func DottedPath(n Node) string {
	switch n := n.(type) {
	case *Identifier:
		return n.Name
	case *Member:
		if obj := DottedPath(n.Object); obj != "" {
			return obj + "." + n.Property
		}
	}
	return ""
}

// CalleeName returns the dotted callee of a call, e.g. "v.object".
func CalleeName(c *Call) string {
	return DottedPath(c.Callee)
}

// Bindings maps every top-level variable name to its initializer.
// Later declarations of the same name win, as in sloppy-mode scripts.
func Bindings(f *File) map[string]Node {
	out := make(map[string]Node)
	for _, stmt := range f.Body {
		decl, ok := stmt.(*VarDecl)
		if !ok {
			continue
		}
		for _, d := range decl.Declarations {
			if d.Init != nil {
				out[d.Name] = d.Init
			}
		}
	}
	return out
}

// Export is a value exported from a file under Name.
type Export struct {
	Name  string
	Local string
	Init  Node
	At    Position
}

// Exports lists a file's value exports in source order: exported
// declarations, `export { local as name }` lists and `export default`
// (named "default", following a bare identifier to its binding).
// Re-exports from other modules are not followed.
func Exports(f *File) []Export {
	bindings := Bindings(f)
	var out []Export
	for _, stmt := range f.Body {
		switch s := stmt.(type) {
		case *VarDecl:
			if !s.Exported {
				continue
			}
			for _, d := range s.Declarations {
				out = append(out, Export{Name: d.Name, Local: d.Name, Init: d.Init, At: s.At})
			}
		case *ExportNames:
			if s.Source != "" {
				continue
			}
			for _, spec := range s.Specifiers {
				if init, ok := bindings[spec.Local]; ok {
					out = append(out, Export{Name: spec.Exported, Local: spec.Local, Init: init, At: s.At})
				}
			}
		case *ExportDefault:
			exp := Export{Name: "default", Init: s.Expr, At: s.At}
			if id, ok := s.Expr.(*Identifier); ok {
				if init, bound := bindings[id.Name]; bound {
					exp.Local, exp.Init = id.Name, init
				}
			}
			out = append(out, exp)
		}
	}
	return out
}

// DefaultExport returns the expression of `export default`, or nil.
func DefaultExport(f *File) Node {
	for _, stmt := range f.Body {
		if d, ok := stmt.(*ExportDefault); ok {
			return d.Expr
		}
	}
	return nil
}

// ImportedName returns the local binding for the export `name` of module
// source, and whether such an import exists.
func ImportedName(f *File, source, name string) (string, bool) {
	for _, stmt := range f.Body {
		imp, ok := stmt.(*ImportDecl)
		if !ok || imp.Source != source {
			continue
		}
		for _, spec := range imp.Specifiers {
			if spec.Imported == name {
				return spec.Local, true
			}
		}
	}
	return "", false
}

// ImportsFrom reports whether f imports anything from a module whose
// specifier ends with suffix (e.g. "/server" for "./_generated/server").
func ImportsFrom(f *File, suffix string) bool {
	for _, stmt := range f.Body {
		if imp, ok := stmt.(*ImportDecl); ok && strings.HasSuffix(imp.Source, suffix) {
			return true
		}
	}
	return false
}

// ToTree converts a syntax tree into plain maps and slices for debug dumps.
// Every node becomes a map with a "type" key.
func ToTree(n Node) any {
	if n == nil {
		return nil
	}
	pos := func(p Position) map[string]any {
		return map[string]any{"line": p.Line, "column": p.Column}
	}
	switch n := n.(type) {
	case *ImportDecl:
		specs := make([]any, 0, len(n.Specifiers))
		for _, s := range n.Specifiers {
			specs = append(specs, map[string]any{"imported": s.Imported, "local": s.Local})
		}
		return map[string]any{"type": "ImportDeclaration", "pos": pos(n.At), "source": n.Source, "specifiers": specs}
	case *VarDecl:
		decls := make([]any, 0, len(n.Declarations))
		for _, d := range n.Declarations {
			decls = append(decls, map[string]any{"name": d.Name, "init": ToTree(d.Init)})
		}
		return map[string]any{"type": "VariableDeclaration", "pos": pos(n.At), "kind": n.Kind, "exported": n.Exported, "declarations": decls}
	case *ExportDefault:
		return map[string]any{"type": "ExportDefaultDeclaration", "pos": pos(n.At), "declaration": ToTree(n.Expr)}
	case *ExportNames:
		specs := make([]any, 0, len(n.Specifiers))
		for _, s := range n.Specifiers {
			specs = append(specs, map[string]any{"local": s.Local, "exported": s.Exported})
		}
		m := map[string]any{"type": "ExportNamedDeclaration", "pos": pos(n.At), "specifiers": specs}
		if n.Source != "" {
			m["source"] = n.Source
		}
		return m
	case *OtherStatement:
		return map[string]any{"type": "Statement", "pos": pos(n.At)}
	case *Identifier:
		return map[string]any{"type": "Identifier", "name": n.Name}
	case *StringLit:
		return map[string]any{"type": "StringLiteral", "value": n.Value}
	case *NumberLit:
		m := map[string]any{"type": "NumericLiteral", "value": n.Value, "raw": n.Raw}
		if n.BigInt {
			m["type"] = "BigIntLiteral"
		}
		return m
	case *BooleanLit:
		return map[string]any{"type": "BooleanLiteral", "value": n.Value}
	case *NullLit:
		return map[string]any{"type": "NullLiteral"}
	case *Unary:
		return map[string]any{"type": "UnaryExpression", "operator": n.Op, "argument": ToTree(n.Operand)}
	case *Call:
		args := make([]any, 0, len(n.Args))
		for _, a := range n.Args {
			args = append(args, ToTree(a))
		}
		return map[string]any{"type": "CallExpression", "pos": pos(n.At), "callee": ToTree(n.Callee), "arguments": args}
	case *Member:
		return map[string]any{"type": "MemberExpression", "object": ToTree(n.Object), "property": n.Property}
	case *Property:
		m := map[string]any{"type": "Property", "key": n.Key, "value": ToTree(n.Value)}
		switch {
		case n.Spread:
			m["type"] = "SpreadElement"
			delete(m, "key")
		case n.Computed:
			m["computed"] = true
		}
		if n.Shorthand {
			m["shorthand"] = true
		}
		if n.Method {
			m["method"] = true
		}
		return m
	case *ObjectLit:
		props := make([]any, 0, len(n.Properties))
		for _, p := range n.Properties {
			props = append(props, ToTree(p))
		}
		return map[string]any{"type": "ObjectExpression", "pos": pos(n.At), "properties": props}
	case *ArrayLit:
		els := make([]any, 0, len(n.Elements))
		for _, e := range n.Elements {
			els = append(els, ToTree(e))
		}
		return map[string]any{"type": "ArrayExpression", "elements": els}
	case *Opaque:
		return map[string]any{"type": "Opaque", "pos": pos(n.At), "what": n.What}
	}
	return nil
}

// FileTree converts a parsed file for debug dumps.
func FileTree(f *File) map[string]any {
	body := make([]any, 0, len(f.Body))
	for _, stmt := range f.Body {
		body = append(body, ToTree(stmt))
	}
	return map[string]any{"type": "Program", "path": f.Path, "sourceType": f.Kind.String(), "body": body}
}

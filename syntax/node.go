// Package syntax is the boundary to the source parser.
//
// Convex schema and function files are TypeScript. The generator only needs a
// handful of node shapes out of them, so the tree here is a small closed set:
// statements (imports, declarations, exports) and expressions (calls, member
// chains, object and array literals, scalar literals). Everything else a real
// parser would produce collapses into Opaque, which callers treat as "not part
// of the validator vocabulary".
//
// Two producers build this tree: Builtin, a hand-written TypeScript-subset
// parser, and Command, which runs an external ESTree parser and decodes its
// JSON output.
package syntax

// Position is a location in source text.
// Line and Column are 1-based, Offset is a 0-based byte offset.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

// Node is any syntax tree node.
type Node interface {
	Pos() Position
	node()
}

// File is a parsed source file.
type File struct {
	Path string
	Kind SourceKind
	Body []Node
}

// ImportSpecifier binds Local to the Imported export of a module.
// Imported is "default" for default imports and "*" for namespace imports.
type ImportSpecifier struct {
	Imported string
	Local    string
}

// ImportDecl is `import ... from "source"`.
type ImportDecl struct {
	At         Position
	Source     string
	Specifiers []ImportSpecifier
}

// Declarator is one `name = init` entry of a variable declaration.
// Init is nil for declarations without an initializer.
type Declarator struct {
	Name string
	Init Node
}

// VarDecl is a const/let/var declaration, optionally exported.
type VarDecl struct {
	At           Position
	Kind         string
	Exported     bool
	Declarations []Declarator
}

// ExportDefault is `export default <expr>`.
type ExportDefault struct {
	At   Position
	Expr Node
}

// ExportSpecifier exports the local binding Local under the name Exported.
type ExportSpecifier struct {
	Local    string
	Exported string
}

// ExportNames is `export { a, b as c }`. Source is set for re-exports.
type ExportNames struct {
	At         Position
	Specifiers []ExportSpecifier
	Source     string
}

// OtherStatement is any statement the generator does not inspect.
type OtherStatement struct {
	At Position
}

// Identifier is a name reference.
type Identifier struct {
	At   Position
	Name string
}

// StringLit is a string literal (or a template literal without substitutions).
type StringLit struct {
	At    Position
	Value string
}

// NumberLit is a numeric literal. BigInt is set for `123n` literals.
type NumberLit struct {
	At     Position
	Value  float64
	Raw    string
	BigInt bool
}

// BooleanLit is true or false.
type BooleanLit struct {
	At    Position
	Value bool
}

// NullLit is null.
type NullLit struct {
	At Position
}

// Unary is a prefix operator applied to an operand (`-1`, `await x`).
type Unary struct {
	At      Position
	Op      string
	Operand Node
}

// Call is callee(args...).
type Call struct {
	At     Position
	Callee Node
	Args   []Node
}

// Member is object.property. Computed string-literal access (`a["b"]`) is
// also represented as a Member.
type Member struct {
	At       Position
	Object   Node
	Property string
}

// Property is one entry of an object literal.
// Spread properties have an empty Key and carry the spread argument in Value.
// Computed keys that are not string literals are marked Computed.
type Property struct {
	At        Position
	Key       string
	Value     Node
	Shorthand bool
	Spread    bool
	Computed  bool
	Method    bool
}

// ObjectLit is an object literal.
type ObjectLit struct {
	At         Position
	Properties []*Property
}

// ArrayLit is an array literal. Holes are nil elements.
type ArrayLit struct {
	At       Position
	Elements []Node
}

// Opaque stands for any construct outside the recognized shapes: functions,
// arrow functions, binary expressions, template literals with substitutions.
type Opaque struct {
	At   Position
	What string
}

func (n *ImportDecl) Pos() Position     { return n.At }
func (n *VarDecl) Pos() Position        { return n.At }
func (n *ExportDefault) Pos() Position  { return n.At }
func (n *ExportNames) Pos() Position    { return n.At }
func (n *OtherStatement) Pos() Position { return n.At }
func (n *Identifier) Pos() Position     { return n.At }
func (n *StringLit) Pos() Position      { return n.At }
func (n *NumberLit) Pos() Position      { return n.At }
func (n *BooleanLit) Pos() Position     { return n.At }
func (n *NullLit) Pos() Position        { return n.At }
func (n *Unary) Pos() Position          { return n.At }
func (n *Call) Pos() Position           { return n.At }
func (n *Member) Pos() Position         { return n.At }
func (n *Property) Pos() Position       { return n.At }
func (n *ObjectLit) Pos() Position      { return n.At }
func (n *ArrayLit) Pos() Position       { return n.At }
func (n *Opaque) Pos() Position         { return n.At }

func (*ImportDecl) node()     {}
func (*VarDecl) node()        {}
func (*ExportDefault) node()  {}
func (*ExportNames) node()    {}
func (*OtherStatement) node() {}
func (*Identifier) node()     {}
func (*StringLit) node()      {}
func (*NumberLit) node()      {}
func (*BooleanLit) node()     {}
func (*NullLit) node()        {}
func (*Unary) node()          {}
func (*Call) node()           {}
func (*Member) node()         {}
func (*Property) node()       {}
func (*ObjectLit) node()      {}
func (*ArrayLit) node()       {}
func (*Opaque) node()         {}

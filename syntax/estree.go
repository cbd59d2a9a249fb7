package syntax

import (
	"math/big"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/teranos/convex-typegen/errors"
)

// estreeOutput is the document an external parser writes to stdout.
type estreeOutput struct {
	Program map[string]any `json:"program"`
	Errors  []estreeError  `json:"errors"`
}

// estreeError covers the oxc diagnostic shape (labels with byte spans) and
// the acorn shape (line and column).
type estreeError struct {
	Message string `json:"message"`
	Start   *int   `json:"start"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Labels  []struct {
		Start int `json:"start"`
	} `json:"labels"`
}

// DecodeESTree converts an ESTree (or oxc) JSON program into a File.
// Positions are taken from `loc` when present, otherwise from the `start`
// byte offset resolved against src.
func DecodeESTree(path string, src []byte, kind SourceKind, data []byte) (*File, error) {
	var out estreeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, "failed to decode parser output")
	}
	d := &estreeDecoder{lines: newLineIndex(src)}
	if len(out.Errors) > 0 {
		errs := make(SyntaxErrors, 0, len(out.Errors))
		for _, e := range out.Errors {
			errs = append(errs, Diagnostic{Pos: d.errorPos(e), Message: e.Message})
		}
		return nil, errs
	}
	if out.Program == nil {
		return nil, errors.New("parser output has no program")
	}
	file := &File{Path: path, Kind: kind}
	for _, stmt := range nodeList(out.Program["body"]) {
		file.Body = append(file.Body, d.statement(stmt))
	}
	return file, nil
}

type estreeDecoder struct {
	lines lineIndex
}

func (d *estreeDecoder) errorPos(e estreeError) Position {
	switch {
	case len(e.Labels) > 0:
		return d.lines.position(e.Labels[0].Start)
	case e.Start != nil:
		return d.lines.position(*e.Start)
	case e.Line > 0:
		return Position{Line: e.Line, Column: e.Column + 1}
	}
	return Position{Line: 1, Column: 1}
}

func (d *estreeDecoder) pos(n map[string]any) Position {
	start := intField(n, "start")
	if r, ok := n["range"].([]any); ok && len(r) > 0 {
		if f, ok := r[0].(float64); ok {
			start = int(f)
		}
	}
	if loc, ok := n["loc"].(map[string]any); ok {
		if s, ok := loc["start"].(map[string]any); ok {
			return Position{Line: intField(s, "line"), Column: intField(s, "column") + 1, Offset: start}
		}
	}
	return d.lines.position(start)
}

func (d *estreeDecoder) statement(n map[string]any) Node {
	at := d.pos(n)
	switch typeOf(n) {
	case "ImportDeclaration":
		if stringField(n, "importKind") == "type" {
			return &OtherStatement{At: at}
		}
		decl := &ImportDecl{At: at, Source: literalString(n["source"])}
		for _, s := range nodeList(n["specifiers"]) {
			if stringField(s, "importKind") == "type" {
				continue
			}
			local := nodeName(s["local"])
			switch typeOf(s) {
			case "ImportDefaultSpecifier":
				decl.Specifiers = append(decl.Specifiers, ImportSpecifier{Imported: "default", Local: local})
			case "ImportNamespaceSpecifier":
				decl.Specifiers = append(decl.Specifiers, ImportSpecifier{Imported: "*", Local: local})
			default:
				decl.Specifiers = append(decl.Specifiers, ImportSpecifier{Imported: nodeName(s["imported"]), Local: local})
			}
		}
		return decl
	case "ExportDefaultDeclaration":
		decl, _ := n["declaration"].(map[string]any)
		return &ExportDefault{At: at, Expr: d.expression(decl)}
	case "ExportNamedDeclaration":
		if stringField(n, "exportKind") == "type" {
			return &OtherStatement{At: at}
		}
		if decl, ok := n["declaration"].(map[string]any); ok {
			if typeOf(decl) == "VariableDeclaration" {
				v := d.varDecl(decl)
				v.At = at
				v.Exported = true
				return v
			}
			return &OtherStatement{At: at}
		}
		names := &ExportNames{At: at, Source: literalString(n["source"])}
		for _, s := range nodeList(n["specifiers"]) {
			if stringField(s, "exportKind") == "type" {
				continue
			}
			names.Specifiers = append(names.Specifiers, ExportSpecifier{Local: nodeName(s["local"]), Exported: nodeName(s["exported"])})
		}
		return names
	case "VariableDeclaration":
		return d.varDecl(n)
	}
	return &OtherStatement{At: at}
}

func (d *estreeDecoder) varDecl(n map[string]any) *VarDecl {
	decl := &VarDecl{At: d.pos(n), Kind: stringField(n, "kind")}
	for _, dn := range nodeList(n["declarations"]) {
		id, _ := dn["id"].(map[string]any)
		if id == nil || (typeOf(id) != "Identifier" && typeOf(id) != "BindingIdentifier") {
			continue
		}
		var init Node
		if in, ok := dn["init"].(map[string]any); ok {
			init = d.expression(in)
		}
		decl.Declarations = append(decl.Declarations, Declarator{Name: stringField(id, "name"), Init: init})
	}
	return decl
}

func (d *estreeDecoder) expression(n map[string]any) Node {
	if n == nil {
		return &Opaque{What: "missing expression"}
	}
	at := d.pos(n)
	switch t := typeOf(n); t {
	case "Identifier", "IdentifierReference":
		return &Identifier{At: at, Name: stringField(n, "name")}
	case "Literal":
		return d.literal(n, at)
	case "StringLiteral":
		return &StringLit{At: at, Value: stringField(n, "value")}
	case "NumericLiteral":
		v, _ := n["value"].(float64)
		return &NumberLit{At: at, Value: v, Raw: stringField(n, "raw")}
	case "BigIntLiteral":
		return bigIntLit(at, stringField(n, "value"), stringField(n, "raw"))
	case "BooleanLiteral":
		v, _ := n["value"].(bool)
		return &BooleanLit{At: at, Value: v}
	case "NullLiteral":
		return &NullLit{At: at}
	case "TemplateLiteral":
		quasis := nodeList(n["quasis"])
		if len(nodeList(n["expressions"])) == 0 && len(quasis) == 1 {
			value, _ := quasis[0]["value"].(map[string]any)
			return &StringLit{At: at, Value: stringField(value, "cooked")}
		}
		return &Opaque{At: at, What: "template literal"}
	case "CallExpression":
		callee, _ := n["callee"].(map[string]any)
		call := &Call{At: at, Callee: d.expression(callee)}
		for _, a := range nodeList(n["arguments"]) {
			call.Args = append(call.Args, d.argument(a))
		}
		return call
	case "MemberExpression", "StaticMemberExpression", "ComputedMemberExpression":
		object, _ := n["object"].(map[string]any)
		obj := d.expression(object)
		computed, _ := n["computed"].(bool)
		if t == "ComputedMemberExpression" {
			computed = true
		}
		prop, _ := n["property"].(map[string]any)
		if t == "ComputedMemberExpression" {
			prop, _ = n["expression"].(map[string]any)
		}
		if !computed {
			return &Member{At: at, Object: obj, Property: nodeName(prop)}
		}
		if key, ok := d.expression(prop).(*StringLit); ok {
			return &Member{At: at, Object: obj, Property: key.Value}
		}
		return &Opaque{At: at, What: "computed member"}
	case "ObjectExpression":
		obj := &ObjectLit{At: at}
		for _, p := range nodeList(n["properties"]) {
			obj.Properties = append(obj.Properties, d.property(p))
		}
		return obj
	case "ArrayExpression":
		arr := &ArrayLit{At: at}
		for _, el := range nodeOrNilList(n["elements"]) {
			if el == nil {
				arr.Elements = append(arr.Elements, nil)
				continue
			}
			arr.Elements = append(arr.Elements, d.argument(el))
		}
		return arr
	case "UnaryExpression":
		arg, _ := n["argument"].(map[string]any)
		return &Unary{At: at, Op: stringField(n, "operator"), Operand: d.expression(arg)}
	case "AwaitExpression":
		arg, _ := n["argument"].(map[string]any)
		return &Unary{At: at, Op: "await", Operand: d.expression(arg)}
	case "TSAsExpression", "TSSatisfiesExpression", "TSNonNullExpression", "TSTypeAssertion",
		"TSInstantiationExpression", "ParenthesizedExpression", "ChainExpression":
		inner, _ := n["expression"].(map[string]any)
		return d.expression(inner)
	case "ArrowFunctionExpression":
		return &Opaque{At: at, What: "arrow function"}
	case "FunctionExpression", "FunctionDeclaration":
		return &Opaque{At: at, What: "function"}
	case "ClassExpression", "ClassDeclaration":
		return &Opaque{At: at, What: "class"}
	default:
		return &Opaque{At: at, What: t}
	}
}

func (d *estreeDecoder) argument(n map[string]any) Node {
	if typeOf(n) == "SpreadElement" {
		arg, _ := n["argument"].(map[string]any)
		return &Unary{At: d.pos(n), Op: "...", Operand: d.expression(arg)}
	}
	return d.expression(n)
}

func (d *estreeDecoder) property(n map[string]any) *Property {
	prop := &Property{At: d.pos(n)}
	if typeOf(n) == "SpreadElement" {
		arg, _ := n["argument"].(map[string]any)
		prop.Spread = true
		prop.Value = d.expression(arg)
		return prop
	}
	key, _ := n["key"].(map[string]any)
	computed, _ := n["computed"].(bool)
	prop.Shorthand, _ = n["shorthand"].(bool)
	prop.Method, _ = n["method"].(bool)
	if k := stringField(n, "kind"); k == "get" || k == "set" {
		prop.Method = true
	}

	switch keyNode := d.expression(key); {
	case !computed && (typeOf(key) == "Identifier" || typeOf(key) == "IdentifierName" || typeOf(key) == "PrivateIdentifier"):
		prop.Key = stringField(key, "name")
	case isStringLit(keyNode):
		prop.Key = keyNode.(*StringLit).Value
	case !computed && isNumberLit(keyNode):
		prop.Key = strconv.FormatFloat(keyNode.(*NumberLit).Value, 'f', -1, 64)
	default:
		prop.Computed = true
	}

	if prop.Method {
		prop.Value = &Opaque{At: prop.At, What: "method"}
		return prop
	}
	value, _ := n["value"].(map[string]any)
	prop.Value = d.expression(value)
	return prop
}

func (d *estreeDecoder) literal(n map[string]any, at Position) Node {
	raw := stringField(n, "raw")
	switch v := n["value"].(type) {
	case string:
		return &StringLit{At: at, Value: v}
	case bool:
		return &BooleanLit{At: at, Value: v}
	case float64:
		return &NumberLit{At: at, Value: v, Raw: raw}
	}
	if _, ok := n["regex"]; ok {
		return &Opaque{At: at, What: "regular expression"}
	}
	if b, ok := n["bigint"].(string); ok {
		return bigIntLit(at, b, raw)
	}
	return &NullLit{At: at}
}

func bigIntLit(at Position, digits, raw string) Node {
	lit := &NumberLit{At: at, Raw: raw, BigInt: true}
	if n, ok := new(big.Int).SetString(digits, 0); ok {
		lit.Value, _ = new(big.Float).SetInt(n).Float64()
	}
	return lit
}

func isStringLit(n Node) bool {
	_, ok := n.(*StringLit)
	return ok
}

func isNumberLit(n Node) bool {
	_, ok := n.(*NumberLit)
	return ok
}

func typeOf(n map[string]any) string {
	return stringField(n, "type")
}

func stringField(n map[string]any, key string) string {
	s, _ := n[key].(string)
	return s
}

func intField(n map[string]any, key string) int {
	f, _ := n[key].(float64)
	return int(f)
}

// nodeName returns the name of an identifier node or the value of a string
// literal used as a module export name.
func nodeName(v any) string {
	n, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	if s := stringField(n, "name"); s != "" {
		return s
	}
	return stringField(n, "value")
}

func literalString(v any) string {
	n, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	return stringField(n, "value")
}

func nodeList(v any) []map[string]any {
	items, _ := v.([]any)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func nodeOrNilList(v any) []map[string]any {
	items, _ := v.([]any)
	out := make([]map[string]any, len(items))
	for i, item := range items {
		out[i], _ = item.(map[string]any)
	}
	return out
}

// lineIndex maps byte offsets to 1-based line and column numbers.
type lineIndex []int

func newLineIndex(src []byte) lineIndex {
	idx := lineIndex{0}
	for i, b := range src {
		if b == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

func (idx lineIndex) position(offset int) Position {
	line := sort.Search(len(idx), func(i int) bool { return idx[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return Position{Line: line + 1, Column: offset - idx[line] + 1, Offset: offset}
}

// Package convex interprets Convex schema and function source files into
// the type model.
//
// Only the builder vocabulary is understood: `v.*` validators,
// defineSchema/defineTable chains and query/mutation/action builders.
// Anything else in a validator position is an UnrecognizedValidatorError.
package convex

import (
	"github.com/teranos/convex-typegen/syntax"
	"github.com/teranos/convex-typegen/typegen/model"
)

// ValuesModule is the module validators are imported from.
const ValuesModule = "convex/values"

// DefaultNamespace is the conventional validator namespace identifier.
const DefaultNamespace = "v"

var scalarValidators = map[string]model.Scalar{
	"string":  model.String,
	"number":  model.Number,
	"float64": model.Number,
	"boolean": model.Boolean,
	"bytes":   model.Bytes,
	"null":    model.Null,
	"any":     model.Any,
	"int64":   model.Int64,
	"bigint":  model.Int64,
}

// Interpreter turns validator expressions into type nodes. It resolves
// identifiers through the top-level bindings of the file being read.
type Interpreter struct {
	namespace string
	bindings  map[string]syntax.Node
	resolving map[string]bool
}

// NewInterpreter creates an interpreter for validators rooted at namespace.
// bindings may be nil.
func NewInterpreter(namespace string, bindings map[string]syntax.Node) *Interpreter {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if bindings == nil {
		bindings = map[string]syntax.Node{}
	}
	return &Interpreter{
		namespace: namespace,
		bindings:  bindings,
		resolving: make(map[string]bool),
	}
}

// InterpreterFor creates an interpreter for f. The namespace is the local
// name `v` is imported under from convex/values, falling back to fallback.
func InterpreterFor(f *syntax.File, fallback string) *Interpreter {
	namespace := fallback
	if local, ok := syntax.ImportedName(f, ValuesModule, DefaultNamespace); ok {
		namespace = local
	}
	return NewInterpreter(namespace, syntax.Bindings(f))
}

// Namespace returns the validator namespace identifier in use.
func (in *Interpreter) Namespace() string {
	return in.namespace
}

// Interpret converts one validator expression.
func (in *Interpreter) Interpret(node syntax.Node) (model.TypeNode, error) {
	switch n := node.(type) {
	case *syntax.Identifier:
		return in.resolve(n, in.Interpret)
	case *syntax.ObjectLit:
		// Convex accepts a bare object where v.object is expected
		return in.interpretObject(n)
	case *syntax.Call:
		return in.interpretCall(n)
	case nil:
		return nil, unrecognized(syntax.Position{}, "<missing>", "expected a validator")
	}
	return nil, unrecognized(node.Pos(), describeNode(node), "expected a validator")
}

// resolve follows an identifier to its top-level initializer and applies fn.
func (in *Interpreter) resolve(id *syntax.Identifier, fn func(syntax.Node) (model.TypeNode, error)) (model.TypeNode, error) {
	init, ok := in.bindings[id.Name]
	if !ok {
		return nil, unrecognized(id.Pos(), id.Name, "not bound to a validator in this file")
	}
	if in.resolving[id.Name] {
		return nil, unrecognized(id.Pos(), id.Name, "circular reference")
	}
	in.resolving[id.Name] = true
	defer delete(in.resolving, id.Name)
	return fn(init)
}

func (in *Interpreter) interpretCall(call *syntax.Call) (model.TypeNode, error) {
	path := syntax.CalleeName(call)
	member, ok := call.Callee.(*syntax.Member)
	if !ok || syntax.DottedPath(member.Object) != in.namespace {
		if path == "" {
			path = describeNode(call.Callee) + "(...)"
		}
		return nil, unrecognized(call.Pos(), path, "")
	}

	method := member.Property
	if scalar, ok := scalarValidators[method]; ok {
		if len(call.Args) != 0 {
			return nil, unrecognized(call.Pos(), path, "takes no arguments")
		}
		return scalar, nil
	}

	switch method {
	case "literal":
		if len(call.Args) != 1 {
			return nil, unrecognized(call.Pos(), path, "takes exactly one argument")
		}
		value, ok := literalValue(call.Args[0])
		if !ok {
			return nil, unrecognized(call.Args[0].Pos(), path, "argument must be a string, number or boolean literal")
		}
		return model.Literal{Value: value}, nil

	case "id":
		if len(call.Args) != 1 {
			return nil, unrecognized(call.Pos(), path, "takes exactly one argument")
		}
		table, ok := call.Args[0].(*syntax.StringLit)
		if !ok {
			return nil, unrecognized(call.Args[0].Pos(), path, "argument must be a table name string")
		}
		return model.Id{Table: table.Value}, nil

	case "optional":
		inner, err := in.single(call, path)
		if err != nil {
			return nil, err
		}
		return model.Optional{Inner: inner}, nil

	case "array":
		element, err := in.single(call, path)
		if err != nil {
			return nil, err
		}
		return model.Array{Element: element}, nil

	case "object":
		if len(call.Args) != 1 {
			return nil, unrecognized(call.Pos(), path, "takes exactly one argument")
		}
		obj, ok := in.objectLiteral(call.Args[0])
		if !ok {
			return nil, unrecognized(call.Args[0].Pos(), path, "argument must be an object literal")
		}
		return in.interpretObject(obj)

	case "union":
		if len(call.Args) == 0 {
			return nil, unrecognized(call.Pos(), path, "needs at least one variant")
		}
		variants := make([]model.TypeNode, 0, len(call.Args))
		for _, arg := range call.Args {
			v, err := in.Interpret(arg)
			if err != nil {
				return nil, err
			}
			variants = append(variants, v)
		}
		return model.Union{Variants: variants}, nil

	case "record":
		if len(call.Args) != 2 {
			return nil, unrecognized(call.Pos(), path, "takes exactly two arguments")
		}
		key, err := in.Interpret(call.Args[0])
		if err != nil {
			return nil, err
		}
		if !validRecordKey(key) {
			return nil, invalidRecordKey(call.Args[0].Pos(), model.Describe(key))
		}
		value, err := in.Interpret(call.Args[1])
		if err != nil {
			return nil, err
		}
		return model.Record{Key: key, Value: value}, nil
	}

	return nil, unrecognized(call.Pos(), path, "")
}

func (in *Interpreter) single(call *syntax.Call, path string) (model.TypeNode, error) {
	if len(call.Args) != 1 {
		return nil, unrecognized(call.Pos(), path, "takes exactly one argument")
	}
	return in.Interpret(call.Args[0])
}

func validRecordKey(key model.TypeNode) bool {
	switch k := key.(type) {
	case model.Scalar:
		return k.Type == model.ScalarString || k.Type == model.ScalarNumber || k.Type == model.ScalarInt64
	case model.Id:
		return true
	}
	return false
}

// objectLiteral follows identifiers until it reaches an object literal.
func (in *Interpreter) objectLiteral(node syntax.Node) (*syntax.ObjectLit, bool) {
	seen := map[string]bool{}
	for {
		switch n := node.(type) {
		case *syntax.ObjectLit:
			return n, true
		case *syntax.Identifier:
			init, ok := in.bindings[n.Name]
			if !ok || seen[n.Name] {
				return nil, false
			}
			seen[n.Name] = true
			node = init
		default:
			return nil, false
		}
	}
}

// InterpretObject converts an object literal of validators into an Object.
func (in *Interpreter) InterpretObject(obj *syntax.ObjectLit) (model.Object, error) {
	t, err := in.interpretObject(obj)
	if err != nil {
		return model.Object{}, err
	}
	return t.(model.Object), nil
}

func (in *Interpreter) interpretObject(obj *syntax.ObjectLit) (model.TypeNode, error) {
	var fields []model.Field
	index := make(map[string]int)
	fromSpread := make(map[string]bool)

	var add func(obj *syntax.ObjectLit, spread bool) error
	add = func(obj *syntax.ObjectLit, spread bool) error {
		for _, prop := range obj.Properties {
			switch {
			case prop.Spread:
				id, isIdent := prop.Value.(*syntax.Identifier)
				inner, ok := in.objectLiteral(prop.Value)
				if !ok {
					return unrecognized(prop.Pos(), "..."+describeNode(prop.Value), "spread must name an object literal in this file")
				}
				if isIdent {
					if in.resolving[id.Name] {
						return unrecognized(prop.Pos(), id.Name, "circular reference")
					}
					in.resolving[id.Name] = true
					err := add(inner, true)
					delete(in.resolving, id.Name)
					if err != nil {
						return err
					}
					continue
				}
				if err := add(inner, true); err != nil {
					return err
				}
				continue
			case prop.Computed:
				return unrecognized(prop.Pos(), "[computed]", "object keys must be static")
			case prop.Method:
				return unrecognized(prop.Pos(), prop.Key, "methods are not validators")
			}

			t, err := in.Interpret(prop.Value)
			if err != nil {
				return err
			}
			field := model.Field{Name: prop.Key, Type: t}
			if opt, ok := t.(model.Optional); ok {
				field.Type = opt.Inner
				field.Optional = true
			}

			if i, exists := index[prop.Key]; exists {
				// a later key overrides a spread one in place, as in JavaScript
				if !spread && !fromSpread[prop.Key] {
					return duplicateName(prop.Pos(), "field", prop.Key)
				}
				fields[i] = field
				fromSpread[prop.Key] = spread
				continue
			}
			index[prop.Key] = len(fields)
			fromSpread[prop.Key] = spread
			fields = append(fields, field)
		}
		return nil
	}

	if err := add(obj, false); err != nil {
		return nil, err
	}
	return model.Object{Fields: fields}, nil
}

// literalValue extracts the constant of a v.literal argument.
func literalValue(node syntax.Node) (any, bool) {
	switch n := node.(type) {
	case *syntax.StringLit:
		return n.Value, true
	case *syntax.NumberLit:
		if n.BigInt {
			return nil, false
		}
		return n.Value, true
	case *syntax.BooleanLit:
		return n.Value, true
	case *syntax.Unary:
		num, ok := n.Operand.(*syntax.NumberLit)
		if !ok || num.BigInt {
			return nil, false
		}
		switch n.Op {
		case "-":
			return -num.Value, true
		case "+":
			return num.Value, true
		}
	}
	return nil, false
}

// describeNode names an expression for diagnostics.
func describeNode(node syntax.Node) string {
	if path := syntax.DottedPath(node); path != "" {
		return path
	}
	switch n := node.(type) {
	case *syntax.Call:
		if path := syntax.CalleeName(n); path != "" {
			return path
		}
		return "call"
	case *syntax.Member:
		return describeNode(n.Object) + "." + n.Property
	case *syntax.StringLit:
		return "string literal"
	case *syntax.NumberLit:
		return "number literal"
	case *syntax.BooleanLit:
		return "boolean literal"
	case *syntax.NullLit:
		return "null"
	case *syntax.ArrayLit:
		return "array literal"
	case *syntax.ObjectLit:
		return "object literal"
	case *syntax.Unary:
		return n.Op + describeNode(n.Operand)
	case *syntax.Opaque:
		return n.What
	}
	return "expression"
}

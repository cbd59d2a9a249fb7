// Package model is the language-neutral type model produced from Convex
// validators and consumed by code generators.
//
// TypeNode is a closed set of variants. Every node is immutable once the
// interpreter returns it; generators build new nodes (Ref) instead of
// mutating the tree.
package model

import (
	"fmt"
	"strconv"
)

// NodeKind identifies a TypeNode variant.
type NodeKind int

const (
	KindScalar NodeKind = iota
	KindId
	KindOptional
	KindArray
	KindObject
	KindUnion
	KindLiteral
	KindRecord
	KindRef
)

var kindNames = [...]string{
	KindScalar:   "scalar",
	KindId:       "id",
	KindOptional: "optional",
	KindArray:    "array",
	KindObject:   "object",
	KindUnion:    "union",
	KindLiteral:  "literal",
	KindRecord:   "record",
	KindRef:      "ref",
}

func (k NodeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "NodeKind(" + strconv.Itoa(int(k)) + ")"
}

// TypeNode is one node of the type model.
type TypeNode interface {
	Kind() NodeKind
}

// ScalarKind enumerates the primitive Convex value types.
type ScalarKind int

const (
	ScalarString ScalarKind = iota
	ScalarNumber
	ScalarBoolean
	ScalarBytes
	ScalarNull
	ScalarAny
	ScalarInt64
)

// ScalarKinds lists every scalar kind in declaration order.
var ScalarKinds = []ScalarKind{
	ScalarString, ScalarNumber, ScalarBoolean, ScalarBytes, ScalarNull, ScalarAny, ScalarInt64,
}

var scalarNames = [...]string{
	ScalarString:  "string",
	ScalarNumber:  "number",
	ScalarBoolean: "boolean",
	ScalarBytes:   "bytes",
	ScalarNull:    "null",
	ScalarAny:     "any",
	ScalarInt64:   "int64",
}

func (k ScalarKind) String() string {
	if int(k) < len(scalarNames) {
		return scalarNames[k]
	}
	return "ScalarKind(" + strconv.Itoa(int(k)) + ")"
}

// Scalar is a primitive value type.
type Scalar struct {
	Type ScalarKind
}

// Id references the primary key of Table. The name is kept verbatim.
type Id struct {
	Table string
}

// Optional marks a value that may be absent.
type Optional struct {
	Inner TypeNode
}

// Array is a homogeneous list.
type Array struct {
	Element TypeNode
}

// Field is a named member of an object. When the source validator was
// v.optional(x), Type holds x and Optional is set.
type Field struct {
	Name     string
	Type     TypeNode
	Optional bool
}

// Object is a record type with fields in source order.
type Object struct {
	Fields []Field
}

// Union is a choice between variants, kept in source order.
type Union struct {
	Variants []TypeNode
}

// Literal is a single constant: string, float64 or bool.
type Literal struct {
	Value any
}

// Record is a map from Key to Value. Key is a string, number or int64
// Scalar, or an Id.
type Record struct {
	Key   TypeNode
	Value TypeNode
}

// Ref points at a NamedType produced by hoisting.
type Ref struct {
	Name string
}

func (Scalar) Kind() NodeKind   { return KindScalar }
func (Id) Kind() NodeKind       { return KindId }
func (Optional) Kind() NodeKind { return KindOptional }
func (Array) Kind() NodeKind    { return KindArray }
func (Object) Kind() NodeKind   { return KindObject }
func (Union) Kind() NodeKind    { return KindUnion }
func (Literal) Kind() NodeKind  { return KindLiteral }
func (Record) Kind() NodeKind   { return KindRecord }
func (Ref) Kind() NodeKind      { return KindRef }

// Scalar constructors
var (
	String  = Scalar{Type: ScalarString}
	Number  = Scalar{Type: ScalarNumber}
	Boolean = Scalar{Type: ScalarBoolean}
	Bytes   = Scalar{Type: ScalarBytes}
	Null    = Scalar{Type: ScalarNull}
	Any     = Scalar{Type: ScalarAny}
	Int64   = Scalar{Type: ScalarInt64}
)

// LiteralKind describes the Go type of a literal's value.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBoolean
)

// LiteralKind reports which of string, number or boolean the literal holds.
func (l Literal) LiteralKind() LiteralKind {
	switch l.Value.(type) {
	case float64:
		return LiteralNumber
	case bool:
		return LiteralBoolean
	default:
		return LiteralString
	}
}

// String renders a literal the way it appears in TypeScript source.
func (l Literal) String() string {
	switch v := l.Value.(type) {
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Describe renders a node as a short human-readable type expression,
// used in diagnostics and logs.
func Describe(n TypeNode) string {
	switch n := n.(type) {
	case Scalar:
		return n.Type.String()
	case Id:
		return "id<" + n.Table + ">"
	case Optional:
		return "optional<" + Describe(n.Inner) + ">"
	case Array:
		return "array<" + Describe(n.Element) + ">"
	case Object:
		return "object{" + strconv.Itoa(len(n.Fields)) + " fields}"
	case Union:
		return "union{" + strconv.Itoa(len(n.Variants)) + " variants}"
	case Literal:
		return n.String()
	case Record:
		return "record<" + Describe(n.Key) + ", " + Describe(n.Value) + ">"
	case Ref:
		return n.Name
	case nil:
		return "<nil>"
	}
	return fmt.Sprintf("%T", n)
}

package model

// System field names Convex adds to every document.
const (
	SystemFieldID           = "_id"
	SystemFieldCreationTime = "_creationTime"
)

// SystemFields returns the fields Convex injects into documents of table,
// in the order they are declared.
func SystemFields(table string) []Field {
	return []Field{
		{Name: SystemFieldID, Type: Id{Table: table}},
		{Name: SystemFieldCreationTime, Type: Number},
	}
}

// Index is a table index declared with .index, .searchIndex or .vectorIndex.
type Index struct {
	Kind   string // "index", "searchIndex" or "vectorIndex"
	Name   string
	Fields []string
}

// Table is one defineTable entry. When HasSystemFields is set, Fields
// starts with the system fields.
type Table struct {
	Name            string
	Fields          []Field
	HasSystemFields bool
	Indexes         []Index
}

// Object returns the table's document shape.
func (t *Table) Object() Object {
	return Object{Fields: t.Fields}
}

// Schema is the interpreted defineSchema call.
type Schema struct {
	Tables []*Table
	// Unresolved lists table names referenced by Id nodes but never declared.
	Unresolved []string
}

// Table looks a table up by name.
func (s *Schema) Table(name string) (*Table, bool) {
	if s == nil {
		return nil, false
	}
	for _, t := range s.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// TableNames returns declared table names in source order.
func (s *Schema) TableNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Tables))
	for _, t := range s.Tables {
		names = append(names, t.Name)
	}
	return names
}

// IsUnresolved reports whether table was referenced but not declared.
func (s *Schema) IsUnresolved(table string) bool {
	if s == nil {
		return false
	}
	for _, u := range s.Unresolved {
		if u == table {
			return true
		}
	}
	return false
}

// FunctionKind is the Convex builder a function was declared with.
type FunctionKind string

const (
	FunctionQuery            FunctionKind = "query"
	FunctionMutation         FunctionKind = "mutation"
	FunctionAction           FunctionKind = "action"
	FunctionInternalQuery    FunctionKind = "internalQuery"
	FunctionInternalMutation FunctionKind = "internalMutation"
	FunctionInternalAction   FunctionKind = "internalAction"
)

// FunctionArgSet is the argument shape of one exported Convex function.
type FunctionArgSet struct {
	// Module is the source file stem, so functions are addressed as module:name.
	Module       string
	FunctionName string
	Kind         FunctionKind
	// ArgsType is an Object or an Optional wrapping an Object.
	ArgsType TypeNode
}

// Path returns the Convex function path "module:name".
func (f FunctionArgSet) Path() string {
	if f.Module == "" {
		return f.FunctionName
	}
	return f.Module + ":" + f.FunctionName
}

// Fields returns the argument object's fields whether or not it is optional.
func (f FunctionArgSet) Fields() []Field {
	switch t := f.ArgsType.(type) {
	case Object:
		return t.Fields
	case Optional:
		if obj, ok := t.Inner.(Object); ok {
			return obj.Fields
		}
	}
	return nil
}

// NamedType is a declaration produced by hoisting: Name is final and
// unique within one generated file, Body contains Refs to other named types.
type NamedType struct {
	Name string
	Body TypeNode
	// Origin is the dotted path the type was hoisted from, e.g. "users.address".
	Origin string
}

// Walk visits n and its descendants depth-first in source order. Returning
// false from fn skips the node's children.
func Walk(n TypeNode, fn func(TypeNode) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch n := n.(type) {
	case Optional:
		Walk(n.Inner, fn)
	case Array:
		Walk(n.Element, fn)
	case Object:
		for _, f := range n.Fields {
			Walk(f.Type, fn)
		}
	case Union:
		for _, v := range n.Variants {
			Walk(v, fn)
		}
	case Record:
		Walk(n.Key, fn)
		Walk(n.Value, fn)
	}
}

// ReferencedTables returns the distinct tables referenced by Id nodes
// under n, in first-seen order.
func ReferencedTables(n TypeNode) []string {
	var out []string
	seen := make(map[string]bool)
	Walk(n, func(n TypeNode) bool {
		if id, ok := n.(Id); ok && !seen[id.Table] {
			seen[id.Table] = true
			out = append(out, id.Table)
		}
		return true
	})
	return out
}

package convex

import (
	"strings"

	"github.com/teranos/convex-typegen/errors"
	"github.com/teranos/convex-typegen/logger"
	"github.com/teranos/convex-typegen/syntax"
	"github.com/teranos/convex-typegen/typegen/model"
	"go.uber.org/zap"
)

// ServerModule is the module defineSchema and defineTable come from.
const ServerModule = "convex/server"

// Table chain members.
const (
	methodIndex               = "index"
	methodSearchIndex         = "searchIndex"
	methodVectorIndex         = "vectorIndex"
	methodWithoutSystemFields = "withoutSystemFields"
)

// SchemaOptions controls schema interpretation.
type SchemaOptions struct {
	// SystemFields injects _id and _creationTime into every table unless the
	// table opts out with .withoutSystemFields().
	SystemFields bool
	// Namespace is the validator identifier used when the file does not
	// import `v` from convex/values.
	Namespace string
	Logger    *zap.SugaredLogger
}

// DefaultSchemaOptions returns the options used when none are configured.
func DefaultSchemaOptions() SchemaOptions {
	return SchemaOptions{SystemFields: true, Namespace: DefaultNamespace}
}

type schemaBuilder struct {
	file        *syntax.File
	opts        SchemaOptions
	interp      *Interpreter
	bindings    map[string]syntax.Node
	defineTable string
	log         *zap.SugaredLogger
}

// BuildSchema interprets the default-exported defineSchema call of file.
func BuildSchema(file *syntax.File, opts SchemaOptions) (*model.Schema, error) {
	if len(file.Body) == 0 {
		return nil, errors.Wrap(errors.ErrEmptySchemaFile, file.Path)
	}
	log := opts.Logger
	if log == nil {
		log = logger.Named("typegen.schema")
	}

	b := &schemaBuilder{
		file:        file,
		opts:        opts,
		interp:      InterpreterFor(file, opts.Namespace),
		bindings:    syntax.Bindings(file),
		defineTable: importedOr(file, "defineTable"),
		log:         log,
	}

	call, ok := b.schemaCall()
	if !ok {
		return nil, errors.WithHint(
			errors.Wrap(errors.ErrMissingSchemaDefinition, file.Path),
			"The schema file must `export default defineSchema({ ... })`",
		)
	}
	if len(call.Args) == 0 {
		return nil, unrecognized(call.Pos(), "defineSchema", "expected an object of tables")
	}
	tables, ok := b.interp.objectLiteral(call.Args[0])
	if !ok {
		return nil, unrecognized(call.Args[0].Pos(), "defineSchema", "expected an object of tables")
	}

	schema := &model.Schema{}
	seen := make(map[string]bool)
	if err := b.addTables(schema, tables, seen, map[string]bool{}); err != nil {
		return nil, err
	}
	b.resolve(schema)

	b.log.Debugw("Schema interpreted",
		"file", file.Path,
		"tables", len(schema.Tables),
		"unresolved", len(schema.Unresolved),
	)
	return schema, nil
}

// importedOr returns the local name of a convex/server export, or name
// itself when it is not imported explicitly.
func importedOr(file *syntax.File, name string) string {
	if local, ok := syntax.ImportedName(file, ServerModule, name); ok {
		return local
	}
	return name
}

// isCallTo reports whether call invokes local, directly or through a
// namespace import (server.defineSchema).
func isCallTo(call *syntax.Call, local, export string) bool {
	path := syntax.CalleeName(call)
	return path == local || strings.HasSuffix(path, "."+export)
}

// schemaCall finds the defineSchema call behind `export default`.
func (b *schemaBuilder) schemaCall() (*syntax.Call, bool) {
	expr := syntax.DefaultExport(b.file)
	defineSchema := importedOr(b.file, "defineSchema")
	seen := map[string]bool{}
	for expr != nil {
		switch n := expr.(type) {
		case *syntax.Call:
			if isCallTo(n, defineSchema, "defineSchema") {
				return n, true
			}
			return nil, false
		case *syntax.Identifier:
			if seen[n.Name] {
				return nil, false
			}
			seen[n.Name] = true
			expr = b.bindings[n.Name]
		default:
			return nil, false
		}
	}
	return nil, false
}

func (b *schemaBuilder) addTables(schema *model.Schema, obj *syntax.ObjectLit, seen, spreading map[string]bool) error {
	for _, prop := range obj.Properties {
		switch {
		case prop.Spread:
			id, _ := prop.Value.(*syntax.Identifier)
			inner, ok := b.interp.objectLiteral(prop.Value)
			if !ok {
				// typically tables imported from a library, e.g. ...authTables
				b.log.Warnw("Skipping spread of tables not defined in the schema file",
					"file", b.file.Path,
					"spread", describeNode(prop.Value),
					"line", prop.Pos().Line,
				)
				continue
			}
			if id != nil {
				if spreading[id.Name] {
					return unrecognized(prop.Pos(), id.Name, "circular reference")
				}
				spreading[id.Name] = true
			}
			err := b.addTables(schema, inner, seen, spreading)
			if id != nil {
				delete(spreading, id.Name)
			}
			if err != nil {
				return err
			}
			continue
		case prop.Computed, prop.Method:
			return unrecognized(prop.Pos(), "defineSchema", "table names must be static keys")
		}

		if seen[prop.Key] {
			return duplicateName(prop.Pos(), "table", prop.Key)
		}
		seen[prop.Key] = true

		table, err := b.buildTable(prop.Key, prop.Value)
		if err != nil {
			return errors.Wrapf(err, "table %q", prop.Key)
		}
		schema.Tables = append(schema.Tables, table)
	}
	return nil
}

// buildTable interprets `defineTable(shape).index(...)...` for one table.
func (b *schemaBuilder) buildTable(name string, node syntax.Node) (*model.Table, error) {
	table := &model.Table{Name: name, HasSystemFields: b.opts.SystemFields}

	var chain []*syntax.Call
	var define *syntax.Call
	seen := map[string]bool{}
	for define == nil {
		switch n := node.(type) {
		case *syntax.Identifier:
			init, ok := b.bindings[n.Name]
			if !ok || seen[n.Name] {
				return nil, unrecognized(n.Pos(), n.Name, "expected defineTable(...)")
			}
			seen[n.Name] = true
			node = init
		case *syntax.Call:
			if isCallTo(n, b.defineTable, "defineTable") {
				define = n
				continue
			}
			member, ok := n.Callee.(*syntax.Member)
			if !ok {
				return nil, unrecognized(n.Pos(), describeNode(n), "expected defineTable(...)")
			}
			chain = append(chain, n)
			node = member.Object
		default:
			return nil, unrecognized(node.Pos(), describeNode(node), "expected defineTable(...)")
		}
	}

	if len(define.Args) != 1 {
		return nil, unrecognized(define.Pos(), "defineTable", "takes exactly one argument")
	}
	shape, err := b.interp.Interpret(define.Args[0])
	if err != nil {
		return nil, err
	}
	obj, ok := shape.(model.Object)
	if !ok {
		return nil, unrecognized(define.Args[0].Pos(), "defineTable", "document shape must be an object, got "+model.Describe(shape))
	}

	// chain was collected outermost first; apply in source order
	for i := len(chain) - 1; i >= 0; i-- {
		call := chain[i]
		method := call.Callee.(*syntax.Member).Property
		switch method {
		case methodIndex, methodSearchIndex, methodVectorIndex:
			table.Indexes = append(table.Indexes, indexOf(method, call))
		case methodWithoutSystemFields:
			table.HasSystemFields = false
		default:
			return nil, unrecognized(call.Pos(), "defineTable(...)."+method, "")
		}
	}

	if table.HasSystemFields {
		table.Fields = model.SystemFields(name)
	}
	names := make(map[string]bool, len(table.Fields)+len(obj.Fields))
	for _, f := range table.Fields {
		names[f.Name] = true
	}
	for _, f := range obj.Fields {
		if names[f.Name] {
			return nil, duplicateName(define.Pos(), "field", f.Name)
		}
		names[f.Name] = true
		table.Fields = append(table.Fields, f)
	}
	return table, nil
}

// indexOf reads an index declaration. Unreadable arguments leave the
// corresponding parts empty; indexes only feed debug output.
func indexOf(kind string, call *syntax.Call) model.Index {
	idx := model.Index{Kind: kind}
	if len(call.Args) > 0 {
		if s, ok := call.Args[0].(*syntax.StringLit); ok {
			idx.Name = s.Value
		}
	}
	if len(call.Args) < 2 {
		return idx
	}
	switch cfg := call.Args[1].(type) {
	case *syntax.ArrayLit:
		idx.Fields = stringElements(cfg)
	case *syntax.ObjectLit:
		for _, key := range []string{"fields", "searchField", "vectorField", "filterFields"} {
			for _, p := range cfg.Properties {
				if p.Key != key {
					continue
				}
				switch v := p.Value.(type) {
				case *syntax.StringLit:
					idx.Fields = append(idx.Fields, v.Value)
				case *syntax.ArrayLit:
					idx.Fields = append(idx.Fields, stringElements(v)...)
				}
			}
		}
	}
	return idx
}

func stringElements(arr *syntax.ArrayLit) []string {
	var out []string
	for _, el := range arr.Elements {
		if s, ok := el.(*syntax.StringLit); ok {
			out = append(out, s.Value)
		}
	}
	return out
}

// resolve records Id targets that name no declared table.
func (b *schemaBuilder) resolve(schema *model.Schema) {
	declared := make(map[string]bool, len(schema.Tables))
	for _, t := range schema.Tables {
		declared[t.Name] = true
	}
	reported := make(map[string]bool)
	for _, t := range schema.Tables {
		for _, name := range model.ReferencedTables(t.Object()) {
			if declared[name] || reported[name] {
				continue
			}
			reported[name] = true
			schema.Unresolved = append(schema.Unresolved, name)
			b.log.Warnw("Id references an undeclared table",
				"file", b.file.Path,
				"table", t.Name,
				"references", name,
			)
		}
	}
}

// ResolveFunctionIds adds tables referenced from function arguments but
// missing from the schema to schema.Unresolved.
func ResolveFunctionIds(schema *model.Schema, fns []model.FunctionArgSet, log *zap.SugaredLogger) {
	if log == nil {
		log = logger.Named("typegen.schema")
	}
	for _, fn := range fns {
		for _, name := range model.ReferencedTables(fn.ArgsType) {
			if _, ok := schema.Table(name); ok || schema.IsUnresolved(name) {
				continue
			}
			schema.Unresolved = append(schema.Unresolved, name)
			log.Warnw("Id references an undeclared table",
				"function", fn.Path(),
				"references", name,
			)
		}
	}
}

package model

// Tree converts a type node into plain maps for JSON or YAML dumps.
// The shape mirrors Convex's own validator JSON: every node carries a
// "type" key, and object fields keep their source order in a list.
func Tree(n TypeNode) map[string]any {
	switch n := n.(type) {
	case Scalar:
		return map[string]any{"type": n.Type.String()}
	case Id:
		return map[string]any{"type": "id", "tableName": n.Table}
	case Optional:
		return map[string]any{"type": "optional", "value": Tree(n.Inner)}
	case Array:
		return map[string]any{"type": "array", "value": Tree(n.Element)}
	case Object:
		return map[string]any{"type": "object", "fields": fieldTrees(n.Fields)}
	case Union:
		variants := make([]any, 0, len(n.Variants))
		for _, v := range n.Variants {
			variants = append(variants, Tree(v))
		}
		return map[string]any{"type": "union", "value": variants}
	case Literal:
		return map[string]any{"type": "literal", "value": n.Value}
	case Record:
		return map[string]any{"type": "record", "keys": Tree(n.Key), "values": Tree(n.Value)}
	case Ref:
		return map[string]any{"type": "ref", "name": n.Name}
	}
	return nil
}

func fieldTrees(fields []Field) []any {
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		out = append(out, map[string]any{
			"fieldName": f.Name,
			"optional":  f.Optional,
			"fieldType": Tree(f.Type),
		})
	}
	return out
}

// SchemaTree converts a schema for dumps.
func SchemaTree(s *Schema) map[string]any {
	tables := make([]any, 0, len(s.Tables))
	for _, t := range s.Tables {
		indexes := make([]any, 0, len(t.Indexes))
		for _, idx := range t.Indexes {
			indexes = append(indexes, map[string]any{"kind": idx.Kind, "indexDescriptor": idx.Name, "fields": idx.Fields})
		}
		tables = append(tables, map[string]any{
			"tableName":    t.Name,
			"systemFields": t.HasSystemFields,
			"fields":       fieldTrees(t.Fields),
			"indexes":      indexes,
		})
	}
	unresolved := s.Unresolved
	if unresolved == nil {
		unresolved = []string{}
	}
	return map[string]any{"tables": tables, "unresolved": unresolved}
}

// FunctionsTree converts extracted function argument sets for dumps.
func FunctionsTree(fns []FunctionArgSet) []any {
	out := make([]any, 0, len(fns))
	for _, f := range fns {
		out = append(out, map[string]any{
			"path":         f.Path(),
			"module":       f.Module,
			"functionName": f.FunctionName,
			"kind":         string(f.Kind),
			"args":         Tree(f.ArgsType),
		})
	}
	return out
}

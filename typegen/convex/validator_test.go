package convex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/convex-typegen/errors"
	"github.com/teranos/convex-typegen/syntax"
	"github.com/teranos/convex-typegen/typegen/model"
)

func parseFile(t *testing.T, path, src string) *syntax.File {
	t.Helper()
	f, err := syntax.NewBuiltin().Parse(path, []byte(src), syntax.SourceKindFromPath(path))
	require.NoError(t, err)
	return f
}

// interpret parses `const x = <expr>` and interprets the initializer.
func interpret(t *testing.T, expr string) (model.TypeNode, error) {
	t.Helper()
	f := parseFile(t, "x.ts", "const x = "+expr)
	return InterpreterFor(f, DefaultNamespace).Interpret(syntax.Bindings(f)["x"])
}

func TestInterpretScalars(t *testing.T) {
	tests := []struct {
		expr string
		want model.TypeNode
	}{
		{"v.string()", model.String},
		{"v.number()", model.Number},
		{"v.float64()", model.Number},
		{"v.boolean()", model.Boolean},
		{"v.bytes()", model.Bytes},
		{"v.null()", model.Null},
		{"v.any()", model.Any},
		{"v.int64()", model.Int64},
		{"v.bigint()", model.Int64},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := interpret(t, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInterpretLiterals(t *testing.T) {
	tests := []struct {
		expr string
		want any
	}{
		{`v.literal("admin")`, "admin"},
		{`v.literal(42)`, 42.0},
		{`v.literal(-1.5)`, -1.5},
		{`v.literal(true)`, true},
		{"v.literal(`tpl`)", "tpl"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := interpret(t, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, model.Literal{Value: tt.want}, got)
		})
	}
}

func TestInterpretComposites(t *testing.T) {
	got, err := interpret(t, `v.object({
		id: v.id("users"),
		tags: v.array(v.string()),
		nick: v.optional(v.string()),
		maybe: v.optional(v.optional(v.number())),
		kind: v.union(v.literal("a"), v.literal("b")),
		scores: v.record(v.string(), v.number()),
		byUser: v.record(v.id("users"), v.boolean()),
		nested: { deep: v.null() },
	})`)
	require.NoError(t, err)

	assert.Equal(t, model.Object{Fields: []model.Field{
		{Name: "id", Type: model.Id{Table: "users"}},
		{Name: "tags", Type: model.Array{Element: model.String}},
		{Name: "nick", Type: model.String, Optional: true},
		{Name: "maybe", Type: model.Optional{Inner: model.Number}, Optional: true},
		{Name: "kind", Type: model.Union{Variants: []model.TypeNode{
			model.Literal{Value: "a"}, model.Literal{Value: "b"},
		}}},
		{Name: "scores", Type: model.Record{Key: model.String, Value: model.Number}},
		{Name: "byUser", Type: model.Record{Key: model.Id{Table: "users"}, Value: model.Boolean}},
		{Name: "nested", Type: model.Object{Fields: []model.Field{{Name: "deep", Type: model.Null}}}},
	}}, got)
}

func TestInterpretSingleVariantUnion(t *testing.T) {
	got, err := interpret(t, `v.union(v.string())`)
	require.NoError(t, err)
	assert.Equal(t, model.Union{Variants: []model.TypeNode{model.String}}, got)
}

func TestInterpretUnrecognized(t *testing.T) {
	tests := []struct {
		expr string
		path string
	}{
		{"v.email()", "v.email"},
		{"z.string()", "z.string"},
		{"v.string(1)", "v.string"},
		{"v.literal(x)", "v.literal"},
		{"v.literal(1n)", "v.literal"},
		{"v.id(tableName)", "v.id"},
		{"v.union()", "v.union"},
		{"v.array()", "v.array"},
		{"v.object(v.string())", "v.object"},
		{"v.record(v.string())", "v.record"},
		{`"plain string"`, "string literal"},
		{"undefinedName", "undefinedName"},
		{"() => v.string()", "arrow function"},
		{"v.object({ [key]: v.string() })", "[computed]"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := interpret(t, tt.expr)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrUnrecognizedValidator), err.Error())

			var uv *UnrecognizedValidatorError
			require.True(t, errors.As(err, &uv))
			assert.Equal(t, tt.path, uv.Path)
		})
	}
}

func TestInterpretInvalidRecordKey(t *testing.T) {
	tests := []struct {
		expr  string
		found string
	}{
		{`v.record(v.object({ a: v.string() }), v.number())`, "object{1 fields}"},
		{`v.record(v.boolean(), v.number())`, "boolean"},
		{`v.record(v.literal("a"), v.number())`, `"a"`},
		{`v.record(v.optional(v.string()), v.number())`, "optional<string>"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := interpret(t, tt.expr)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidRecordKey))

			var rk *InvalidRecordKeyError
			require.True(t, errors.As(err, &rk))
			assert.Equal(t, tt.found, rk.Found)
			assert.NotEmpty(t, errors.GetAllHints(err))
		})
	}
}

func TestInterpretResolvesBindings(t *testing.T) {
	f := parseFile(t, "x.ts", `
import { v as val } from "convex/values";
const status = val.union(val.literal("on"), val.literal("off"));
const base = { createdBy: val.id("users"), note: val.string() };
const x = val.object({ ...base, status, note: val.optional(val.string()) });
`)
	in := InterpreterFor(f, DefaultNamespace)
	assert.Equal(t, "val", in.Namespace())

	got, err := in.Interpret(syntax.Bindings(f)["x"])
	require.NoError(t, err)

	obj := got.(model.Object)
	require.Len(t, obj.Fields, 3)
	assert.Equal(t, "createdBy", obj.Fields[0].Name)
	// spread field overridden in place
	assert.Equal(t, model.Field{Name: "note", Type: model.String, Optional: true}, obj.Fields[1])
	assert.Equal(t, "status", obj.Fields[2].Name)
	assert.IsType(t, model.Union{}, obj.Fields[2].Type)
}

func TestInterpretCycle(t *testing.T) {
	f := parseFile(t, "x.ts", `
const a = v.array(b);
const b = v.optional(a);
const c = { ...c };
`)
	in := InterpreterFor(f, DefaultNamespace)
	bindings := syntax.Bindings(f)

	_, err := in.Interpret(bindings["a"])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular reference")

	_, err = in.Interpret(&syntax.Identifier{Name: "c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular reference")
}

func TestInterpretDuplicateField(t *testing.T) {
	_, err := interpret(t, `v.object({ a: v.string(), a: v.number() })`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDuplicateName))

	var dn *DuplicateNameError
	require.True(t, errors.As(err, &dn))
	assert.Equal(t, "field", dn.Kind)
	assert.Equal(t, "a", dn.Name)
}

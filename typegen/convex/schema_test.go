package convex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/convex-typegen/errors"
	"github.com/teranos/convex-typegen/syntax"
	"github.com/teranos/convex-typegen/typegen/model"
)

func buildSchema(t *testing.T, src string) (*model.Schema, error) {
	t.Helper()
	return BuildSchema(parseFile(t, "convex/schema.ts", src), DefaultSchemaOptions())
}

func TestBuildSchemaUsers(t *testing.T) {
	schema, err := buildSchema(t, `
import { defineSchema, defineTable } from "convex/server";
import { v } from "convex/values";

export default defineSchema({
  users: defineTable({
    name: v.string(),
    age: v.number(),
    status: v.union(v.literal("active"), v.literal("inactive"), v.literal("banned")),
  }),
});
`)
	require.NoError(t, err)
	require.Len(t, schema.Tables, 1)

	users := schema.Tables[0]
	assert.Equal(t, "users", users.Name)
	assert.True(t, users.HasSystemFields)
	// three source fields plus _id and _creationTime
	require.Len(t, users.Fields, 5)
	assert.Equal(t, model.Field{Name: "_id", Type: model.Id{Table: "users"}}, users.Fields[0])
	assert.Equal(t, model.Field{Name: "_creationTime", Type: model.Number}, users.Fields[1])
	assert.Equal(t, "name", users.Fields[2].Name)
	assert.Equal(t, "age", users.Fields[3].Name)

	status := users.Fields[4].Type.(model.Union)
	assert.Equal(t, []model.TypeNode{
		model.Literal{Value: "active"},
		model.Literal{Value: "inactive"},
		model.Literal{Value: "banned"},
	}, status.Variants)
	assert.Empty(t, schema.Unresolved)
}

func TestBuildSchemaTableForms(t *testing.T) {
	schema, err := buildSchema(t, `
import { defineSchema, defineTable as table } from "convex/server";
import { v } from "convex/values";

const messages = table(v.object({ body: v.string(), author: v.id("users") }))
  .index("by_author", ["author"])
  .searchIndex("search_body", { searchField: "body", filterFields: ["author"] });

const shared = {
  audit: table({ at: v.number() }).withoutSystemFields(),
};

const schema = defineSchema({
  messages,
  ...shared,
  embeddings: table({ vector: v.array(v.float64()) })
    .vectorIndex("by_vector", { vectorField: "vector", dimensions: 1536 }),
});
export default schema;
`)
	require.NoError(t, err)
	assert.Equal(t, []string{"messages", "audit", "embeddings"}, schema.TableNames())

	messages, _ := schema.Table("messages")
	require.Len(t, messages.Fields, 4)
	assert.Equal(t, []model.Index{
		{Kind: "index", Name: "by_author", Fields: []string{"author"}},
		{Kind: "searchIndex", Name: "search_body", Fields: []string{"body", "author"}},
	}, messages.Indexes)

	audit, _ := schema.Table("audit")
	assert.False(t, audit.HasSystemFields)
	assert.Equal(t, []model.Field{{Name: "at", Type: model.Number}}, audit.Fields)

	embeddings, _ := schema.Table("embeddings")
	assert.Equal(t, []model.Index{{Kind: "vectorIndex", Name: "by_vector", Fields: []string{"vector"}}}, embeddings.Indexes)

	// messages.author references users, which is not declared
	assert.Equal(t, []string{"users"}, schema.Unresolved)
}

func TestBuildSchemaSystemFieldsDisabled(t *testing.T) {
	f := parseFile(t, "convex/schema.ts", `export default defineSchema({ t: defineTable({ a: v.string() }) })`)
	opts := DefaultSchemaOptions()
	opts.SystemFields = false

	schema, err := BuildSchema(f, opts)
	require.NoError(t, err)
	assert.Equal(t, []model.Field{{Name: "a", Type: model.String}}, schema.Tables[0].Fields)
}

func TestBuildSchemaSkipsUnresolvableSpread(t *testing.T) {
	schema, err := buildSchema(t, `
import { authTables } from "@convex-dev/auth/server";
export default defineSchema({ ...authTables, notes: defineTable({ text: v.string() }) });
`)
	require.NoError(t, err)
	assert.Equal(t, []string{"notes"}, schema.TableNames())
}

func TestBuildSchemaErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		sentinel error
	}{
		{"empty file", "", errors.ErrEmptySchemaFile},
		{"comments only", "// nothing here\n/* at all */", errors.ErrEmptySchemaFile},
		{"no default export", `export const x = defineSchema({})`, errors.ErrMissingSchemaDefinition},
		{"default export of something else", `export default { users: 1 }`, errors.ErrMissingSchemaDefinition},
		{"duplicate table", `export default defineSchema({ a: defineTable({}), a: defineTable({}) })`, errors.ErrDuplicateName},
		{"system field clash", `export default defineSchema({ a: defineTable({ _id: v.string() }) })`, errors.ErrDuplicateName},
		{"unknown chain member", `export default defineSchema({ a: defineTable({}).unique("x") })`, errors.ErrUnrecognizedValidator},
		{"not a table", `export default defineSchema({ a: v.string() })`, errors.ErrUnrecognizedValidator},
		{"non-object document", `export default defineSchema({ a: defineTable(v.string()) })`, errors.ErrUnrecognizedValidator},
		{"bad validator", `export default defineSchema({ a: defineTable({ e: v.email() }) })`, errors.ErrUnrecognizedValidator},
		{"bad record key", `export default defineSchema({ a: defineTable({ r: v.record(v.boolean(), v.any()) }) })`, errors.ErrInvalidRecordKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildSchema(t, tt.src)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
		})
	}
}

func TestBuildSchemaDuplicateTableDetail(t *testing.T) {
	_, err := buildSchema(t, `export default defineSchema({ a: defineTable({}), a: defineTable({}) })`)
	var dn *DuplicateNameError
	require.True(t, errors.As(err, &dn))
	assert.Equal(t, "table", dn.Kind)
	assert.Equal(t, "a", dn.Name)
}

func TestResolveFunctionIds(t *testing.T) {
	schema := &model.Schema{Tables: []*model.Table{{Name: "users"}}, Unresolved: []string{"ghosts"}}
	fns := []model.FunctionArgSet{{
		FunctionName: "f",
		ArgsType: model.Object{Fields: []model.Field{
			{Name: "a", Type: model.Id{Table: "users"}},
			{Name: "b", Type: model.Id{Table: "ghosts"}},
			{Name: "c", Type: model.Id{Table: "teams"}},
		}},
	}}

	ResolveFunctionIds(schema, fns, nil)
	assert.Equal(t, []string{"ghosts", "teams"}, schema.Unresolved)
}

func TestBuildSchemaFromESTree(t *testing.T) {
	data := `{"program": {"type": "Program", "body": [
	  {"type": "ExportDefaultDeclaration", "declaration":
	    {"type": "CallExpression", "callee": {"type": "Identifier", "name": "defineSchema"}, "arguments": [
	      {"type": "ObjectExpression", "properties": [
	        {"type": "Property", "key": {"type": "Identifier", "name": "t"}, "value":
	          {"type": "CallExpression", "callee": {"type": "Identifier", "name": "defineTable"}, "arguments": [
	            {"type": "ObjectExpression", "properties": []}
	          ]}
	        }
	      ]}
	    ]}
	  }
	]}}`
	f, err := syntax.DecodeESTree("schema.ts", nil, syntax.SourceTS, []byte(data))
	require.NoError(t, err)

	schema, err := BuildSchema(f, DefaultSchemaOptions())
	require.NoError(t, err)
	assert.Len(t, schema.Tables[0].Fields, 2)
}

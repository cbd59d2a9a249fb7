package rust

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/convex-typegen/typegen/model"
)

func table(name string, fields ...model.Field) *model.Table {
	return &model.Table{Name: name, Fields: fields}
}

func field(name string, t model.TypeNode) model.Field {
	return model.Field{Name: name, Type: t}
}

func lits(values ...any) model.Union {
	u := model.Union{}
	for _, v := range values {
		u.Variants = append(u.Variants, model.Literal{Value: v})
	}
	return u
}

func generate(t *testing.T, schema *model.Schema, fns ...model.FunctionArgSet) string {
	t.Helper()
	out, err := Generate(schema, fns, Options{Source: "convex/schema.ts"})
	require.NoError(t, err)
	return string(out)
}

func TestGenerateUsersAndGetUser(t *testing.T) {
	users := &model.Table{Name: "users", HasSystemFields: true}
	users.Fields = append(model.SystemFields("users"),
		field("name", model.String),
		model.Field{Name: "age", Type: model.Number, Optional: true},
	)
	schema := &model.Schema{Tables: []*model.Table{users}}
	getUser := model.FunctionArgSet{
		Module:       "users",
		FunctionName: "getUser",
		Kind:         model.FunctionQuery,
		ArgsType:     model.Object{Fields: []model.Field{field("id", model.Id{Table: "users"})}},
	}

	out := generate(t, schema, getUser)

	assert.True(t, strings.HasPrefix(out, "// Code generated by convex-typegen from convex/schema.ts. DO NOT EDIT.\n"))
	assert.Contains(t, out, "pub struct Id<T> {")
	assert.Contains(t, out, `/// Document of table `+"`users`"+`.
#[derive(Debug, Clone, PartialEq, serde::Serialize, serde::Deserialize)]
pub struct Users {
    #[serde(rename = "_id")]
    pub id: Id<Users>,
    #[serde(rename = "_creationTime")]
    pub creation_time: f64,
    pub name: String,
    #[serde(default, skip_serializing_if = "Option::is_none")]
    pub age: Option<f64>,
}
`)
	assert.Contains(t, out, `/// Arguments of query `+"`users:getUser`"+`.
#[derive(Debug, Clone, PartialEq, serde::Serialize, serde::Deserialize)]
pub struct GetUserArgs {
    pub id: Id<Users>,
}
`)
	// two system fields plus the two declared ones
	assert.Equal(t, 4, strings.Count(sectionOf(out, "pub struct Users {"), "    pub "))
}

// sectionOf returns the body of the item starting at header.
func sectionOf(out, header string) string {
	i := strings.Index(out, header)
	if i < 0 {
		return ""
	}
	rest := out[i:]
	if j := strings.Index(rest, "\n}\n"); j >= 0 {
		return rest[:j]
	}
	return rest
}

func TestGenerateIsIdempotent(t *testing.T) {
	schema := &model.Schema{Tables: []*model.Table{
		table("tasks",
			field("status", lits("todo", "doing", "done")),
			field("meta", model.Object{Fields: []model.Field{field("tags", model.Array{Element: model.String})}}),
			field("owner", model.Id{Table: "users"}),
		),
	}}
	fns := []model.FunctionArgSet{{FunctionName: "list", Kind: model.FunctionQuery, ArgsType: model.Object{}}}

	first, err := Generate(schema, fns, Options{})
	require.NoError(t, err)
	second, err := Generate(schema, fns, Options{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestScalarMappingRoundTrip(t *testing.T) {
	seen := map[string]model.ScalarKind{}
	for _, k := range model.ScalarKinds {
		ty := ScalarType(k)
		require.NotEmpty(t, ty, k.String())

		prev, dup := seen[ty]
		assert.False(t, dup, "%s and %s both render as %s", prev, k, ty)
		seen[ty] = k

		back, ok := ScalarFromRust(ty)
		require.True(t, ok)
		assert.Equal(t, k, back)
	}
	_, ok := ScalarFromRust("u32")
	assert.False(t, ok)
}

func TestGenerateStringLiteralEnum(t *testing.T) {
	out := generate(t, &model.Schema{Tables: []*model.Table{
		table("tasks", field("status", lits("a", "b", "c"))),
	}})

	assert.Contains(t, out, `/// Hoisted from `+"`tasks.status`"+`.
#[derive(Debug, Clone, Copy, PartialEq, Eq, Hash, serde::Serialize, serde::Deserialize)]
pub enum TasksStatus {
    #[serde(rename = "a")]
    A,
    #[serde(rename = "b")]
    B,
    #[serde(rename = "c")]
    C,
}
`)
	assert.Contains(t, out, "    pub status: TasksStatus,\n")
	assert.NotContains(t, out, "untagged")
	assert.NotContains(t, out, "pub struct Id<T>")
}

func TestGenerateNumberAndBooleanLiteralEnums(t *testing.T) {
	out := generate(t, &model.Schema{Tables: []*model.Table{
		table("jobs",
			field("priority", lits(1.0, 2.5, -1.0)),
			field("flag", lits(true)),
		),
	}})

	prio := sectionOf(out, "pub enum JobsPriority {")
	assert.Contains(t, prio, "    V1,\n    V2_5,\n    VNeg1,")
	assert.Contains(t, out, "#[serde(try_from = \"f64\", into = \"f64\")]\npub enum JobsPriority {")
	assert.Contains(t, out, "            v if v == 2.5 => Ok(Self::V2_5),\n")
	assert.Contains(t, out, "            JobsPriority::VNeg1 => -1.0,\n")

	// single-variant unions collapse to the variant itself
	assert.Contains(t, out, "    pub flag: bool,\n")
}

func TestGenerateRecord(t *testing.T) {
	out := generate(t, &model.Schema{Tables: []*model.Table{
		table("stats",
			field("scores", model.Record{Key: model.String, Value: model.Number}),
			field("byRank", model.Record{Key: model.Number, Value: model.Object{Fields: []model.Field{field("n", model.Int64)}}}),
			field("byUser", model.Record{Key: model.Id{Table: "users"}, Value: model.Boolean}),
		),
	}})

	assert.Contains(t, out, "pub type StatsScores = std::collections::HashMap<String, f64>;\n")
	assert.Contains(t, out, "    pub scores: StatsScores,\n")
	assert.Contains(t, out, "pub type StatsByRank = std::collections::HashMap<i64, StatsByRankValue>;\n")
	assert.Contains(t, out, "pub struct StatsByRankValue {\n    pub n: i64,\n}\n")
	assert.Contains(t, out, "pub type StatsByUser = std::collections::HashMap<Id<Users>, bool>;\n")
	assert.Contains(t, out, "pub enum Users {}\n")
}

func TestGenerateHoistingCollisions(t *testing.T) {
	address := model.Object{Fields: []model.Field{field("city", model.String)}}
	out := generate(t, &model.Schema{Tables: []*model.Table{
		table("userProfile", field("address", address)),
		table("user", field("profileAddress", address)),
		table("usersAddress", field("line", model.String)),
		table("users", field("address", address)),
	}})

	for _, name := range []string{"UserProfileAddress", "UserProfileAddress2", "UsersAddress", "UsersAddress2"} {
		assert.Equal(t, 1, strings.Count(out, "pub struct "+name+" {"), name)
	}
	assert.Contains(t, sectionOf(out, "pub struct UserProfile {"), "pub address: UserProfileAddress,")
	assert.Contains(t, sectionOf(out, "pub struct User {"), "pub profile_address: UserProfileAddress2,")
	// table names are reserved before hoisting
	assert.Contains(t, sectionOf(out, "pub struct Users {"), "pub address: UsersAddress2,")
}

func TestGenerateNestedPaths(t *testing.T) {
	out := generate(t, &model.Schema{Tables: []*model.Table{
		table("tasks",
			field("tags", model.Array{Element: model.Object{Fields: []model.Field{field("label", model.String)}}}),
			field("geo", model.Object{Fields: []model.Field{
				field("point", model.Object{Fields: []model.Field{field("lat", model.Number)}}),
			}}),
		),
	}})

	assert.Contains(t, out, "    pub tags: Vec<TasksTagsItem>,\n")
	assert.Contains(t, out, "pub struct TasksTagsItem {")
	assert.Contains(t, out, "    pub point: TasksGeoPoint,\n")
	assert.Contains(t, out, "/// Hoisted from `tasks.geo.point`.")

	// declarations follow their enclosing type depth-first
	assert.Less(t, strings.Index(out, "pub struct Tasks {"), strings.Index(out, "pub struct TasksTagsItem {"))
	assert.Less(t, strings.Index(out, "pub struct TasksGeo {"), strings.Index(out, "pub struct TasksGeoPoint {"))
}

func TestGenerateTaggedUnion(t *testing.T) {
	content := model.Union{Variants: []model.TypeNode{
		model.Object{Fields: []model.Field{field("kind", model.Literal{Value: "text"}), field("body", model.String)}},
		model.Object{Fields: []model.Field{field("kind", model.Literal{Value: "ping"})}},
	}}
	out := generate(t, &model.Schema{Tables: []*model.Table{table("messages", field("content", content))}})

	assert.Contains(t, out, `#[serde(tag = "kind")]
pub enum MessagesContent {
    #[serde(rename = "text")]
    Text(MessagesContentVariant1),
    #[serde(rename = "ping")]
    Ping,
}
`)
	assert.Contains(t, out, "pub struct MessagesContentVariant1 {\n    pub body: String,\n}\n")
}

func TestGenerateUntaggedUnion(t *testing.T) {
	width := model.Union{Variants: []model.TypeNode{
		model.Number,
		model.Literal{Value: "auto"},
		model.Object{Fields: []model.Field{field("min", model.Number)}},
		model.Literal{Value: "fill"},
	}}
	out := generate(t, &model.Schema{Tables: []*model.Table{table("settings", field("width", width))}})

	assert.Contains(t, out, `#[serde(untagged)]
pub enum SettingsWidth {
    Number(f64),
    Literal(SettingsWidthLiteral),
    Object(SettingsWidthVariant3),
}
`)
	assert.Contains(t, out, "pub enum SettingsWidthLiteral {\n    #[serde(rename = \"auto\")]\n    Auto,\n    #[serde(rename = \"fill\")]\n    Fill,\n}\n")
	assert.Contains(t, out, "pub struct SettingsWidthVariant3 {")
}

func TestGenerateNullableUnion(t *testing.T) {
	out := generate(t, &model.Schema{Tables: []*model.Table{
		table("users",
			field("nick", model.Union{Variants: []model.TypeNode{model.String, model.Null}}),
			field("either", model.Union{Variants: []model.TypeNode{model.String, model.Number, model.Null}}),
		),
	}})

	users := sectionOf(out, "pub struct Users {")
	assert.Contains(t, users, "    pub nick: Option<String>,")
	assert.NotContains(t, users, "skip_serializing_if")
	assert.Contains(t, out, "    Null(()),\n")
}

func TestGenerateIdentifiers(t *testing.T) {
	out := generate(t, &model.Schema{Tables: []*model.Table{
		table("things",
			field("type", model.String),
			field("self", model.String),
			field("fooBar", model.String),
			field("foo_bar", model.String),
			field("2fa", model.Boolean),
		),
		table("string", field("x", model.String)),
	}})

	things := sectionOf(out, "pub struct Things {")
	assert.Contains(t, things, "    pub r#type: String,")
	assert.NotContains(t, things, `rename = "type"`)
	assert.Contains(t, things, "    #[serde(rename = \"self\")]\n    pub self_: String,")
	assert.Contains(t, things, "    #[serde(rename = \"fooBar\")]\n    pub foo_bar: String,")
	assert.Contains(t, things, "    #[serde(rename = \"foo_bar\")]\n    pub foo_bar_2: String,")
	assert.Contains(t, things, "    #[serde(rename = \"2fa\")]\n    pub _2fa: bool,")

	// a table may not shadow std types the file uses
	assert.Contains(t, out, "pub struct String2 {")
}

func TestGenerateFunctionArgs(t *testing.T) {
	fns := []model.FunctionArgSet{
		{Module: "users", FunctionName: "get", Kind: model.FunctionQuery, ArgsType: model.Object{}},
		{Module: "posts", FunctionName: "get", Kind: model.FunctionQuery, ArgsType: model.Object{}},
		{Module: "posts", FunctionName: "search", Kind: model.FunctionAction, ArgsType: model.Optional{
			Inner: model.Object{Fields: []model.Field{field("filter", model.Object{Fields: []model.Field{field("q", model.String)}})}},
		}},
	}
	out := generate(t, &model.Schema{}, fns...)

	assert.Contains(t, out, "pub struct GetArgs {}\n")
	assert.Contains(t, out, "pub struct GetArgs2 {}\n")
	assert.Contains(t, out, "/// Arguments of action `posts:search`.")
	assert.Contains(t, out, "    pub filter: SearchArgsFilter,\n")
	assert.NotContains(t, out, "pub struct Id<T>")
}

func TestGenerateDefaultExportArgs(t *testing.T) {
	fns := []model.FunctionArgSet{
		{Module: "tasks", FunctionName: "default", Kind: model.FunctionMutation, ArgsType: model.Object{
			Fields: []model.Field{field("title", model.String)},
		}},
		{Module: "users", FunctionName: "default", Kind: model.FunctionQuery, ArgsType: model.Object{}},
	}
	out := generate(t, &model.Schema{}, fns...)

	assert.Contains(t, out, "/// Arguments of mutation `tasks:default`.\n")
	assert.Contains(t, out, "pub struct TasksDefaultArgs {\n    pub title: String,\n}\n")
	assert.Contains(t, out, "pub struct UsersDefaultArgs {}\n")
}

func TestGenerateRejectsNonObjectArgs(t *testing.T) {
	_, err := Generate(&model.Schema{}, []model.FunctionArgSet{
		{Module: "m", FunctionName: "f", ArgsType: model.String},
	}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "m:f")
}

func TestNamerUnique(t *testing.T) {
	n := NewNamer()
	assert.Equal(t, "Address", n.Unique("Address"))
	assert.Equal(t, "Address2", n.Unique("Address"))
	assert.Equal(t, "Address3", n.Unique("Address"))
	assert.Equal(t, "Id2", n.Unique("Id"))
	assert.True(t, n.Taken("Address2"))
	assert.False(t, n.Taken("Other"))
}

func TestRustString(t *testing.T) {
	assert.Equal(t, `"plain"`, rustString("plain"))
	assert.Equal(t, `"a\"b\\c\n"`, rustString("a\"b\\c\n"))
	assert.Equal(t, `"\u{1}é"`, rustString("\x01é"))
}

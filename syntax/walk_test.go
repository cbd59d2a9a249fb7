package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDottedPath(t *testing.T) {
	f := parse(t, `const a = v.object; const b = x.y.z; const c = f().g; const d = "s"`)
	b := Bindings(f)

	assert.Equal(t, "v.object", DottedPath(b["a"]))
	assert.Equal(t, "x.y.z", DottedPath(b["b"]))
	assert.Equal(t, "", DottedPath(b["c"]))
	assert.Equal(t, "", DottedPath(b["d"]))
}

func TestExports(t *testing.T) {
	f := parse(t, `
const hidden = query({})
const renamed = mutation({})
export const direct = action({})
export { renamed as visible }
export { other } from "./other"
export { missing }
`)
	exports := Exports(f)
	require.Len(t, exports, 2)

	assert.Equal(t, "direct", exports[0].Name)
	assert.Equal(t, "visible", exports[1].Name)
	assert.Equal(t, "renamed", exports[1].Local)
	assert.Equal(t, "mutation", CalleeName(exports[1].Init.(*Call)))
}

func TestExportsDefault(t *testing.T) {
	inline := Exports(parse(t, `export const a = query({}); export default mutation({})`))
	require.Len(t, inline, 2)
	assert.Equal(t, "default", inline[1].Name)
	assert.Empty(t, inline[1].Local)
	assert.Equal(t, "mutation", CalleeName(inline[1].Init.(*Call)))

	bound := Exports(parse(t, `const handler = action({}); export default handler`))
	require.Len(t, bound, 1)
	assert.Equal(t, "default", bound[0].Name)
	assert.Equal(t, "handler", bound[0].Local)
	assert.Equal(t, "action", CalleeName(bound[0].Init.(*Call)))
}

func TestImportedName(t *testing.T) {
	f := parse(t, `import { v as validators } from "convex/values"; import * as server from "./_generated/server"`)

	local, ok := ImportedName(f, "convex/values", "v")
	assert.True(t, ok)
	assert.Equal(t, "validators", local)

	_, ok = ImportedName(f, "convex/values", "defineSchema")
	assert.False(t, ok)

	assert.True(t, ImportsFrom(f, "/server"))
	assert.False(t, ImportsFrom(f, "/api"))
}

func TestDefaultExport(t *testing.T) {
	assert.Nil(t, DefaultExport(parse(t, `export const a = 1`)))
	assert.IsType(t, &Call{}, DefaultExport(parse(t, `export default defineSchema({})`)))
}

func TestFileTree(t *testing.T) {
	f := parse(t, `import { v } from "convex/values"
export const x = v.optional(v.string())
`)
	tree := FileTree(f)
	assert.Equal(t, "Program", tree["type"])
	body := tree["body"].([]any)
	require.Len(t, body, 2)

	decl := body[1].(map[string]any)
	assert.Equal(t, "VariableDeclaration", decl["type"])
	assert.Equal(t, true, decl["exported"])

	init := decl["declarations"].([]any)[0].(map[string]any)["init"].(map[string]any)
	assert.Equal(t, "CallExpression", init["type"])
	callee := init["callee"].(map[string]any)
	assert.Equal(t, "optional", callee["property"])
}

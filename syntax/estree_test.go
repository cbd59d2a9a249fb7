package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ESTree for:
//
//	import { v } from "convex/values";
//	export const get = query({ args: { id: v.id("users"), n: -1 } });
const estreeSource = "import { v } from \"convex/values\";\nexport const get = query({ args: { id: v.id(\"users\"), n: -1 } });\n"

const estreeJSON = `{
  "program": {
    "type": "Program",
    "start": 0,
    "body": [
      {
        "type": "ImportDeclaration",
        "start": 0,
        "importKind": "value",
        "source": {"type": "Literal", "value": "convex/values", "raw": "\"convex/values\""},
        "specifiers": [
          {"type": "ImportSpecifier", "imported": {"type": "Identifier", "name": "v"}, "local": {"type": "Identifier", "name": "v"}}
        ]
      },
      {
        "type": "ExportNamedDeclaration",
        "start": 35,
        "declaration": {
          "type": "VariableDeclaration",
          "start": 42,
          "kind": "const",
          "declarations": [
            {
              "type": "VariableDeclarator",
              "id": {"type": "Identifier", "name": "get"},
              "init": {
                "type": "CallExpression",
                "start": 54,
                "callee": {"type": "Identifier", "name": "query", "start": 54},
                "arguments": [
                  {
                    "type": "ObjectExpression",
                    "start": 60,
                    "properties": [
                      {
                        "type": "Property",
                        "key": {"type": "Identifier", "name": "args"},
                        "computed": false,
                        "shorthand": false,
                        "method": false,
                        "kind": "init",
                        "value": {
                          "type": "ObjectExpression",
                          "properties": [
                            {
                              "type": "Property",
                              "key": {"type": "Identifier", "name": "id"},
                              "kind": "init",
                              "value": {
                                "type": "CallExpression",
                                "callee": {
                                  "type": "MemberExpression",
                                  "computed": false,
                                  "object": {"type": "Identifier", "name": "v"},
                                  "property": {"type": "Identifier", "name": "id"}
                                },
                                "arguments": [{"type": "Literal", "value": "users", "raw": "\"users\""}]
                              }
                            },
                            {
                              "type": "Property",
                              "key": {"type": "Literal", "value": "n"},
                              "kind": "init",
                              "value": {
                                "type": "UnaryExpression",
                                "operator": "-",
                                "argument": {"type": "Literal", "value": 1, "raw": "1"}
                              }
                            }
                          ]
                        }
                      }
                    ]
                  }
                ]
              }
            }
          ]
        }
      }
    ]
  },
  "errors": []
}`

func TestDecodeESTree(t *testing.T) {
	f, err := DecodeESTree("get.ts", []byte(estreeSource), SourceTS, []byte(estreeJSON))
	require.NoError(t, err)
	require.Len(t, f.Body, 2)

	imp := f.Body[0].(*ImportDecl)
	assert.Equal(t, "convex/values", imp.Source)
	assert.Equal(t, []ImportSpecifier{{Imported: "v", Local: "v"}}, imp.Specifiers)

	decl := f.Body[1].(*VarDecl)
	assert.True(t, decl.Exported)
	assert.Equal(t, Position{Line: 2, Column: 1, Offset: 35}, decl.At)

	call := decl.Declarations[0].Init.(*Call)
	assert.Equal(t, "query", CalleeName(call))
	assert.Equal(t, 2, call.At.Line)
	assert.Equal(t, 20, call.At.Column)

	args := call.Args[0].(*ObjectLit).Properties[0]
	assert.Equal(t, "args", args.Key)
	fields := args.Value.(*ObjectLit).Properties
	require.Len(t, fields, 2)

	id := fields[0].Value.(*Call)
	assert.Equal(t, "v.id", CalleeName(id))
	assert.Equal(t, "users", id.Args[0].(*StringLit).Value)

	assert.Equal(t, "n", fields[1].Key)
	neg := fields[1].Value.(*Unary)
	assert.Equal(t, "-", neg.Op)
	assert.Equal(t, 1.0, neg.Operand.(*NumberLit).Value)
}

func TestDecodeESTreeUnwrapsTypeScriptWrappers(t *testing.T) {
	data := `{"program": {"type": "Program", "body": [
	  {"type": "ExportDefaultDeclaration", "declaration":
	    {"type": "TSSatisfiesExpression", "expression":
	      {"type": "ParenthesizedExpression", "expression":
	        {"type": "CallExpression", "callee": {"type": "IdentifierReference", "name": "defineSchema"}, "arguments": [
	          {"type": "ObjectExpression", "properties": [
	            {"type": "SpreadElement", "argument": {"type": "Identifier", "name": "base"}},
	            {"type": "ObjectProperty", "key": {"type": "StringLiteral", "value": "k"}, "value": {"type": "NullLiteral"}}
	          ]}
	        ]}
	      }
	    }
	  },
	  {"type": "ExpressionStatement"}
	]}}`

	f, err := DecodeESTree("schema.ts", nil, SourceTS, []byte(data))
	require.NoError(t, err)
	require.Len(t, f.Body, 2)
	assert.IsType(t, &OtherStatement{}, f.Body[1])

	call := DefaultExport(f).(*Call)
	assert.Equal(t, "defineSchema", CalleeName(call))
	props := call.Args[0].(*ObjectLit).Properties
	require.Len(t, props, 2)
	assert.True(t, props[0].Spread)
	assert.Equal(t, "k", props[1].Key)
	assert.IsType(t, &NullLit{}, props[1].Value)
}

func TestDecodeESTreeErrors(t *testing.T) {
	src := []byte("const a = ;\n")

	t.Run("oxc labels", func(t *testing.T) {
		data := `{"program": {"type": "Program", "body": []}, "errors": [{"message": "Unexpected token", "labels": [{"start": 10, "end": 11}]}]}`
		_, err := DecodeESTree("a.ts", src, SourceTS, []byte(data))

		var errs SyntaxErrors
		require.ErrorAs(t, err, &errs)
		assert.Equal(t, Diagnostic{Pos: Position{Line: 1, Column: 11, Offset: 10}, Message: "Unexpected token"}, errs.First())
	})

	t.Run("acorn line and column", func(t *testing.T) {
		data := `{"errors": [{"message": "Unexpected token (1:10)", "line": 1, "column": 10}]}`
		_, err := DecodeESTree("a.ts", src, SourceTS, []byte(data))

		var errs SyntaxErrors
		require.ErrorAs(t, err, &errs)
		assert.Equal(t, 1, errs.First().Pos.Line)
		assert.Equal(t, 11, errs.First().Pos.Column)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := DecodeESTree("a.ts", src, SourceTS, []byte(`{"program":`))
		require.Error(t, err)
		var errs SyntaxErrors
		assert.False(t, asSyntaxErrors(err, &errs))
	})

	t.Run("missing program", func(t *testing.T) {
		_, err := DecodeESTree("a.ts", src, SourceTS, []byte(`{}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no program")
	})
}

func asSyntaxErrors(err error, target *SyntaxErrors) bool {
	se, ok := err.(SyntaxErrors)
	if ok {
		*target = se
	}
	return ok
}

func TestLineIndex(t *testing.T) {
	idx := newLineIndex([]byte("ab\ncd\n\nef"))
	assert.Equal(t, Position{Line: 1, Column: 1, Offset: 0}, idx.position(0))
	assert.Equal(t, Position{Line: 2, Column: 2, Offset: 4}, idx.position(4))
	assert.Equal(t, Position{Line: 3, Column: 1, Offset: 6}, idx.position(6))
	assert.Equal(t, Position{Line: 4, Column: 2, Offset: 8}, idx.position(8))
}

package rust

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/teranos/convex-typegen/typegen/util"
)

// Rust keywords that need raw identifier prefix (r#)
var rustKeywords = map[string]bool{
	"as": true, "async": true, "await": true, "break": true, "const": true,
	"continue": true, "dyn": true, "else": true, "enum": true, "extern": true,
	"false": true, "fn": true, "for": true, "if": true, "impl": true,
	"in": true, "let": true, "loop": true, "match": true, "mod": true,
	"move": true, "mut": true, "pub": true, "ref": true, "return": true,
	"static": true, "struct": true, "trait": true, "true": true, "type": true,
	"unsafe": true, "use": true, "where": true, "while": true, "yield": true,
	"abstract": true, "become": true, "box": true, "do": true, "final": true,
	"gen": true, "macro": true, "override": true, "priv": true, "try": true,
	"typeof": true, "unsized": true, "virtual": true,
}

// Keywords that cannot be raw identifiers.
var rustPathKeywords = map[string]bool{
	"self": true, "Self": true, "super": true, "crate": true,
}

// Type names the generated file relies on. Declarations never take them.
var reservedTypeNames = []string{
	"Id", "Option", "Some", "None", "Result", "Ok", "Err", "String", "Vec", "Box", "Self",
}

// toRustIdent converts an identifier to a valid Rust identifier
// Adds r# prefix for Rust keywords
func toRustIdent(s string) string {
	switch {
	case rustPathKeywords[s]:
		return s + "_"
	case rustKeywords[s]:
		return "r#" + s
	}
	return s
}

// fieldIdent returns the snake_case member name for a Convex field.
func fieldIdent(name string) string {
	ident := util.ToSnakeCase(name)
	if ident == "" {
		ident = "field"
	}
	if unicode.IsDigit([]rune(ident)[0]) {
		ident = "_" + ident
	}
	return toRustIdent(ident)
}

// serdeName is the name serde derives for ident: raw identifiers lose r#.
func serdeName(ident string) string {
	return strings.TrimPrefix(ident, "r#")
}

// typeIdent returns the PascalCase form of s, or fallback when s has no
// usable characters.
func typeIdent(s, fallback string) string {
	ident := util.ToPascalCase(s)
	if ident == "" {
		return fallback
	}
	if unicode.IsDigit([]rune(ident)[0]) {
		ident = "T" + ident
	}
	if rustPathKeywords[ident] {
		ident += "_"
	}
	return ident
}

// variantIdent names an enum variant for a literal value.
func variantIdent(value any, fallback string) string {
	switch v := value.(type) {
	case string:
		ident := util.ToPascalCase(v)
		if ident == "" {
			return fallback
		}
		if unicode.IsDigit([]rune(ident)[0]) {
			ident = "V" + ident
		}
		if rustPathKeywords[ident] {
			ident += "_"
		}
		return ident
	case float64:
		s := strconv.FormatFloat(v, 'g', -1, 64)
		s = strings.NewReplacer("-", "Neg", ".", "_", "+", "", "e", "E").Replace(s)
		return "V" + s
	case bool:
		if v {
			return "True"
		}
		return "False"
	}
	return fallback
}

// Namer hands out unique type names within one generated file. Collisions
// get a numeric suffix in first-seen order: Address, Address2, Address3.
type Namer struct {
	used map[string]bool
}

// NewNamer returns a namer with the names the file prelude depends on
// already taken.
func NewNamer() *Namer {
	n := &Namer{used: make(map[string]bool)}
	for _, name := range reservedTypeNames {
		n.used[name] = true
	}
	return n
}

// Unique returns base, or base with the smallest suffix >= 2 that is free,
// and marks the result as taken.
func (n *Namer) Unique(base string) string {
	name := base
	for i := 2; n.used[name]; i++ {
		name = fmt.Sprintf("%s%d", base, i)
	}
	n.used[name] = true
	return name
}

// Taken reports whether name has been handed out or reserved.
func (n *Namer) Taken(name string) bool {
	return n.used[name]
}

// memberNames dedupes identifiers inside one struct or enum body.
type memberNames map[string]bool

func (m memberNames) unique(ident string) string {
	name := ident
	for i := 2; m[name]; i++ {
		if strings.HasPrefix(ident, "r#") {
			// r#type_2 is an ordinary identifier again
			name = fmt.Sprintf("%s_%d", serdeName(ident), i)
			continue
		}
		if isSnake(ident) {
			name = fmt.Sprintf("%s_%d", ident, i)
		} else {
			name = fmt.Sprintf("%s%d", ident, i)
		}
	}
	m[name] = true
	return name
}

func isSnake(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// rustString renders s as a Rust string literal.
func rustString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case 0:
			sb.WriteString(`\0`)
		default:
			if unicode.IsControl(r) {
				fmt.Fprintf(&sb, `\u{%x}`, r)
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// rustFloat renders v as an f64 literal.
func rustFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

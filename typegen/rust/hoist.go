package rust

import (
	"fmt"

	"github.com/teranos/convex-typegen/errors"
	"github.com/teranos/convex-typegen/typegen/model"
)

type declKind int

const (
	declStruct declKind = iota
	declLiteralEnum
	declTaggedEnum
	declUntaggedEnum
	declRecord
	declMarker
)

// decl is one top-level item of the generated file. Nested Objects, Unions
// and Records in Body and in variant payloads have been replaced by Refs.
type decl struct {
	model.NamedType
	kind declKind
	doc  string

	// declTaggedEnum: the discriminator field
	tag string
	// enums
	variants []variant
}

type variant struct {
	ident   string
	literal model.Literal
	// payload is nil for unit variants
	payload model.TypeNode
}

// plan is the result of pass one: every declaration named, in emission
// order.
type plan struct {
	decls []*decl
	// tables maps a Convex table name to its struct name, declared or marker
	tables map[string]string
	usesID bool
}

type hoister struct {
	namer *Namer
	plan  *plan
}

// buildPlan names every declaration. Table and argument struct names are
// reserved before any nested type is named, so hoisted types never take
// them.
func buildPlan(schema *model.Schema, fns []model.FunctionArgSet) (*plan, error) {
	h := &hoister{
		namer: NewNamer(),
		plan:  &plan{tables: make(map[string]string)},
	}
	if schema == nil {
		schema = &model.Schema{}
	}

	tableNames := make([]string, len(schema.Tables))
	for i, t := range schema.Tables {
		tableNames[i] = h.namer.Unique(typeIdent(t.Name, "Table"))
		h.plan.tables[t.Name] = tableNames[i]
	}
	argNames := make([]string, len(fns))
	for i, fn := range fns {
		argNames[i] = h.namer.Unique(argsName(fn))
	}

	// marker types for Id targets outside the schema
	var markers []*decl
	visit := func(n model.TypeNode) {
		for _, table := range model.ReferencedTables(n) {
			if _, ok := h.plan.tables[table]; ok {
				continue
			}
			name := h.namer.Unique(typeIdent(table, "Table"))
			h.plan.tables[table] = name
			markers = append(markers, &decl{
				NamedType: model.NamedType{Name: name, Origin: table},
				kind:      declMarker,
				doc:       fmt.Sprintf("Table `%s`, referenced but not declared in the schema.", table),
			})
		}
	}
	for _, t := range schema.Tables {
		visit(t.Object())
	}
	for _, fn := range fns {
		visit(fn.ArgsType)
	}

	for i, t := range schema.Tables {
		d := &decl{
			NamedType: model.NamedType{Name: tableNames[i], Origin: t.Name},
			kind:      declStruct,
			doc:       fmt.Sprintf("Document of table `%s`.", t.Name),
		}
		h.add(d)
		body, err := h.object(d.Name, t.Name, t.Object())
		if err != nil {
			return nil, errors.Wrapf(err, "table %q", t.Name)
		}
		d.Body = body
	}

	for i, fn := range fns {
		d := &decl{
			NamedType: model.NamedType{Name: argNames[i], Origin: fn.Path()},
			kind:      declStruct,
			doc:       fmt.Sprintf("Arguments of %s `%s`.", fn.Kind, fn.Path()),
		}
		h.add(d)

		var obj model.Object
		switch a := fn.ArgsType.(type) {
		case model.Object:
			obj = a
		case model.Optional:
			// optional args: the struct is the same, callers pass Option<...>
			inner, ok := a.Inner.(model.Object)
			if !ok {
				return nil, errors.Newf("function %s: args must be an object, got %s", fn.Path(), model.Describe(a))
			}
			obj = inner
		default:
			return nil, errors.Newf("function %s: args must be an object, got %s", fn.Path(), model.Describe(fn.ArgsType))
		}
		body, err := h.object(d.Name, fn.Path(), obj)
		if err != nil {
			return nil, errors.Wrapf(err, "function %s", fn.Path())
		}
		d.Body = body
	}

	h.plan.decls = append(h.plan.decls, markers...)
	return h.plan, nil
}

// argsName names the argument struct of fn. A default export is named
// after its module, since every module may have one.
func argsName(fn model.FunctionArgSet) string {
	if fn.FunctionName == "default" && fn.Module != "" {
		return typeIdent(fn.Module, "Module") + "DefaultArgs"
	}
	return typeIdent(fn.FunctionName, "Function") + "Args"
}

func (h *hoister) add(d *decl) {
	h.plan.decls = append(h.plan.decls, d)
}

// object substitutes the fields of obj, hoisting nested declarations under
// the enclosing name.
func (h *hoister) object(enclosing, origin string, obj model.Object) (model.Object, error) {
	out := model.Object{Fields: make([]model.Field, len(obj.Fields))}
	for i, f := range obj.Fields {
		t, err := h.field(enclosing+typeIdent(f.Name, "Field"), origin+"."+f.Name, f.Type)
		if err != nil {
			return model.Object{}, errors.Wrapf(err, "field %q", f.Name)
		}
		out.Fields[i] = model.Field{Name: f.Name, Type: t, Optional: f.Optional}
	}
	return out, nil
}

// field returns the substituted form of n. base is the name a hoisted
// declaration for n would take.
func (h *hoister) field(base, origin string, n model.TypeNode) (model.TypeNode, error) {
	switch t := n.(type) {
	case nil:
		return nil, errors.Newf("%s: missing type", origin)
	case model.Scalar, model.Literal, model.Ref:
		return t, nil
	case model.Id:
		h.plan.usesID = true
		return t, nil
	case model.Optional:
		inner, err := h.field(base, origin, t.Inner)
		if err != nil {
			return nil, err
		}
		return model.Optional{Inner: inner}, nil
	case model.Array:
		elem, err := h.field(base+"Item", origin+"[]", t.Element)
		if err != nil {
			return nil, err
		}
		return model.Array{Element: elem}, nil
	case model.Object:
		name := h.namer.Unique(base)
		d := &decl{NamedType: model.NamedType{Name: name, Origin: origin}, kind: declStruct}
		h.add(d)
		body, err := h.object(name, origin, t)
		if err != nil {
			return nil, err
		}
		d.Body = body
		return model.Ref{Name: name}, nil
	case model.Record:
		name := h.namer.Unique(base)
		d := &decl{NamedType: model.NamedType{Name: name, Origin: origin}, kind: declRecord}
		h.add(d)
		key, err := h.field(name+"Key", origin, t.Key)
		if err != nil {
			return nil, err
		}
		value, err := h.field(name+"Value", origin+"{}", t.Value)
		if err != nil {
			return nil, err
		}
		d.Body = model.Record{Key: key, Value: value}
		return model.Ref{Name: name}, nil
	case model.Union:
		return h.union(base, origin, t)
	}
	return nil, errors.Newf("%s: unsupported type %s", origin, model.Describe(n))
}

// flatten inlines nested unions and drops repeated literals.
func flatten(u model.Union) []model.TypeNode {
	var out []model.TypeNode
	seen := make(map[model.Literal]bool)
	var walk func(vs []model.TypeNode)
	walk = func(vs []model.TypeNode) {
		for _, v := range vs {
			switch t := v.(type) {
			case model.Union:
				walk(t.Variants)
			case model.Literal:
				if seen[t] {
					continue
				}
				seen[t] = true
				out = append(out, t)
			default:
				out = append(out, v)
			}
		}
	}
	walk(u.Variants)
	return out
}

func isNull(n model.TypeNode) bool {
	s, ok := n.(model.Scalar)
	return ok && s.Type == model.ScalarNull
}

func (h *hoister) union(base, origin string, u model.Union) (model.TypeNode, error) {
	variants := flatten(u)
	switch {
	case len(variants) == 0:
		return nil, errors.Newf("%s: union without variants", origin)
	case len(variants) == 1:
		return h.field(base, origin, variants[0])
	case len(variants) == 2 && (isNull(variants[0]) || isNull(variants[1])):
		// T | null keeps the null explicit: Option<T> without skipping
		other := variants[0]
		if isNull(other) {
			other = variants[1]
		}
		inner, err := h.field(base, origin, other)
		if err != nil {
			return nil, err
		}
		return model.Union{Variants: []model.TypeNode{inner, model.Null}}, nil
	}

	if kind, ok := sameKindLiterals(variants); ok {
		name := h.namer.Unique(base)
		h.add(literalEnum(name, origin, kind, variants))
		return model.Ref{Name: name}, nil
	}
	if tag, ok := discriminator(variants); ok {
		return h.taggedUnion(base, origin, tag, variants)
	}
	return h.untaggedUnion(base, origin, variants)
}

// sameKindLiterals reports whether every variant is a literal of one kind.
func sameKindLiterals(variants []model.TypeNode) (model.LiteralKind, bool) {
	var kind model.LiteralKind
	for i, v := range variants {
		lit, ok := v.(model.Literal)
		if !ok {
			return 0, false
		}
		if i == 0 {
			kind = lit.LiteralKind()
		} else if lit.LiteralKind() != kind {
			return 0, false
		}
	}
	return kind, true
}

func literalEnum(name, origin string, kind model.LiteralKind, literals []model.TypeNode) *decl {
	d := &decl{
		NamedType: model.NamedType{Name: name, Body: model.Union{Variants: literals}, Origin: origin},
		kind:      declLiteralEnum,
	}
	members := memberNames{}
	for i, v := range literals {
		lit := v.(model.Literal)
		d.variants = append(d.variants, variant{
			ident:   members.unique(variantIdent(lit.Value, fmt.Sprintf("Variant%d", i+1))),
			literal: lit,
		})
	}
	return d
}

// discriminator finds the first field of the first variant that every
// variant declares as a required string literal with a distinct value.
func discriminator(variants []model.TypeNode) (string, bool) {
	objects := make([]model.Object, len(variants))
	for i, v := range variants {
		obj, ok := v.(model.Object)
		if !ok {
			return "", false
		}
		objects[i] = obj
	}

candidates:
	for _, f := range objects[0].Fields {
		values := make(map[string]bool, len(objects))
		for _, obj := range objects {
			lit, ok := tagValue(obj, f.Name)
			if !ok || values[lit] {
				continue candidates
			}
			values[lit] = true
		}
		return f.Name, true
	}
	return "", false
}

func tagValue(obj model.Object, name string) (string, bool) {
	for _, f := range obj.Fields {
		if f.Name != name {
			continue
		}
		if f.Optional {
			return "", false
		}
		lit, ok := f.Type.(model.Literal)
		if !ok {
			return "", false
		}
		s, ok := lit.Value.(string)
		return s, ok
	}
	return "", false
}

func (h *hoister) taggedUnion(base, origin, tag string, variants []model.TypeNode) (model.TypeNode, error) {
	name := h.namer.Unique(base)
	d := &decl{
		NamedType: model.NamedType{Name: name, Body: model.Union{Variants: variants}, Origin: origin},
		kind:      declTaggedEnum,
		tag:       tag,
	}
	h.add(d)

	members := memberNames{}
	for i, v := range variants {
		obj := v.(model.Object)
		value, _ := tagValue(obj, tag)
		vr := variant{
			ident:   members.unique(variantIdent(value, fmt.Sprintf("Variant%d", i+1))),
			literal: model.Literal{Value: value},
		}

		rest := model.Object{}
		for _, f := range obj.Fields {
			if f.Name != tag {
				rest.Fields = append(rest.Fields, f)
			}
		}
		if len(rest.Fields) > 0 {
			payload, err := h.field(fmt.Sprintf("%sVariant%d", name, i+1), fmt.Sprintf("%s|%d", origin, i+1), rest)
			if err != nil {
				return nil, err
			}
			vr.payload = payload
		}
		d.variants = append(d.variants, vr)
	}
	return model.Ref{Name: name}, nil
}

func (h *hoister) untaggedUnion(base, origin string, variants []model.TypeNode) (model.TypeNode, error) {
	name := h.namer.Unique(base)
	d := &decl{
		NamedType: model.NamedType{Name: name, Body: model.Union{Variants: variants}, Origin: origin},
		kind:      declUntaggedEnum,
	}
	h.add(d)

	// literals move into nested enums, one per literal kind, placed where
	// the first literal of that kind appeared
	groups := make(map[model.LiteralKind][]model.TypeNode)
	var order []model.LiteralKind
	for _, v := range variants {
		if lit, ok := v.(model.Literal); ok {
			k := lit.LiteralKind()
			if _, seen := groups[k]; !seen {
				order = append(order, k)
			}
			groups[k] = append(groups[k], v)
		}
	}

	members := memberNames{}
	emitted := make(map[model.LiteralKind]bool)
	for i, v := range variants {
		if lit, ok := v.(model.Literal); ok {
			k := lit.LiteralKind()
			if emitted[k] {
				continue
			}
			emitted[k] = true
			suffix := "Literal"
			if len(order) > 1 {
				suffix = literalKindName(k) + "Literal"
			}
			nested := h.namer.Unique(name + suffix)
			h.add(literalEnum(nested, origin, k, groups[k]))
			d.variants = append(d.variants, variant{
				ident:   members.unique(suffix),
				payload: model.Ref{Name: nested},
			})
			continue
		}

		payload, err := h.field(fmt.Sprintf("%sVariant%d", name, i+1), fmt.Sprintf("%s|%d", origin, i+1), v)
		if err != nil {
			return nil, err
		}
		d.variants = append(d.variants, variant{
			ident:   members.unique(untaggedIdent(v)),
			payload: payload,
		})
	}
	return model.Ref{Name: name}, nil
}

func literalKindName(k model.LiteralKind) string {
	switch k {
	case model.LiteralNumber:
		return "Number"
	case model.LiteralBoolean:
		return "Boolean"
	}
	return "String"
}

// untaggedIdent names an untagged enum variant after its payload's kind.
func untaggedIdent(n model.TypeNode) string {
	switch t := n.(type) {
	case model.Scalar:
		return typeIdent(t.Type.String(), "Scalar")
	case model.Id:
		return typeIdent(t.Table, "Table") + "Id"
	case model.Optional:
		return "Optional"
	case model.Array:
		return "Array"
	case model.Object:
		return "Object"
	case model.Record:
		return "Record"
	}
	return "Variant"
}

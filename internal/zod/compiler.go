package zod

import (
	"strconv"
	"strings"

	"github.com/zodwire/zodwire/internal/spec"
)

// Compile converts one schema node into a validator expression, recording
// every named reference it depends on into refs. It is a pure transform: no
// I/O, no retained state, and it never fails. Malformed or unrecognized
// shapes degrade to the accept-anything fallback so one bad corner of a
// document cannot abort a generation run.
//
// Dispatch order is a correctness requirement, not style: $ref short-circuits
// everything, the bare type array is handled before combinators, and
// oneOf/anyOf win over allOf.
func Compile(node *spec.SchemaNode, refs *ReferenceSet) Expr {
	if node == nil {
		return Any()
	}

	// References always compile to the named symbol, never to the inlined
	// body. That keeps self-referential and mutually-referential schemas
	// terminating and the generated modules composable.
	if node.Ref != "" {
		name := refName(node.Ref)
		if name == "" {
			return Fallback()
		}
		refs.Add(name)
		return Ref(name)
	}

	if len(node.Type) > 1 {
		return compileTypeArray(node, refs)
	}

	if len(node.OneOf) > 0 {
		return wrapNullable(compileVariants(node.OneOf, refs), node.Nullable)
	}
	if len(node.AnyOf) > 0 {
		return wrapNullable(compileVariants(node.AnyOf, refs), node.Nullable)
	}
	if len(node.AllOf) > 0 {
		return Compile(mergeAllOf(node.AllOf), refs)
	}

	return compileByType(node, refs)
}

// refName extracts the schema name from a JSON pointer like
// "#/components/schemas/User": the segment after the last slash.
func refName(ref string) string {
	idx := strings.LastIndexByte(ref, '/')
	if idx < 0 {
		return strings.TrimPrefix(ref, "#")
	}
	return ref[idx+1:]
}

// compileTypeArray handles the bare type array form: ["string","null"] and
// friends. Null splits off as a nullable wrap; multiple non-null members
// compile independently (the member type substituted in, every other
// constraint kept) and join as a union.
func compileTypeArray(node *spec.SchemaNode, refs *ReferenceSet) Expr {
	var nonNull []string
	hasNull := false
	for _, t := range node.Type {
		if t == "null" {
			hasNull = true
			continue
		}
		nonNull = append(nonNull, t)
	}

	if len(nonNull) == 0 {
		if hasNull {
			return Null()
		}
		return Fallback()
	}

	variants := make([]Expr, 0, len(nonNull))
	for _, t := range nonNull {
		variant := *node
		variant.Type = []string{t}
		variant.Nullable = false
		variants = append(variants, Compile(&variant, refs))
	}
	return wrapNullable(Union(variants), hasNull || node.Nullable)
}

func wrapNullable(e Expr, nullable bool) Expr {
	if !nullable {
		return e
	}
	return e.Nullable()
}

// compileVariants compiles each branch independently and joins them as a
// union, first branch first. oneOf and anyOf collapse to the same output on
// purpose: the "exactly one" versus "at least one" distinction is left
// un-tightened.
func compileVariants(branches []*spec.SchemaNode, refs *ReferenceSet) Expr {
	variants := make([]Expr, 0, len(branches))
	for _, b := range branches {
		variants = append(variants, Compile(b, refs))
	}
	if len(variants) == 0 {
		return Fallback()
	}
	return Union(variants)
}

// mergeAllOf structurally merges all branches into one synthetic node which
// is then compiled in a single pass, not as a union. Later branches win on
// property name collisions and on scalar facets; required names union as a
// set. Branches that carry nothing mergeable (a bare $ref, a nil entry)
// contribute nothing.
func mergeAllOf(branches []*spec.SchemaNode) *spec.SchemaNode {
	merged := &spec.SchemaNode{}
	seenRequired := make(map[string]struct{})
	propIndex := make(map[string]int)

	for _, b := range branches {
		if b == nil {
			continue
		}
		if len(b.Type) > 0 {
			merged.Type = b.Type
		}
		if b.Format != "" {
			merged.Format = b.Format
		}
		if b.Nullable {
			merged.Nullable = true
		}
		if len(b.Enum) > 0 {
			merged.Enum = b.Enum
		}
		if b.Minimum != nil {
			merged.Minimum = b.Minimum
			merged.ExclusiveMin = b.ExclusiveMin
		}
		if b.Maximum != nil {
			merged.Maximum = b.Maximum
			merged.ExclusiveMax = b.ExclusiveMax
		}
		if b.MultipleOf != nil {
			merged.MultipleOf = b.MultipleOf
		}
		if b.MinLength != nil {
			merged.MinLength = b.MinLength
		}
		if b.MaxLength != nil {
			merged.MaxLength = b.MaxLength
		}
		if b.Pattern != "" {
			merged.Pattern = b.Pattern
		}
		if b.MinItems != nil {
			merged.MinItems = b.MinItems
		}
		if b.MaxItems != nil {
			merged.MaxItems = b.MaxItems
		}
		if b.UniqueItems {
			merged.UniqueItems = true
		}
		if b.Items != nil {
			merged.Items = b.Items
		}
		if b.Additional != nil {
			merged.Additional = b.Additional
		}
		for _, p := range b.Properties {
			if i, ok := propIndex[p.Name]; ok {
				merged.Properties[i] = p
				continue
			}
			propIndex[p.Name] = len(merged.Properties)
			merged.Properties = append(merged.Properties, p)
		}
		for _, name := range b.Required {
			if _, ok := seenRequired[name]; ok {
				continue
			}
			seenRequired[name] = struct{}{}
			merged.Required = append(merged.Required, name)
		}
	}
	return merged
}

// compileByType is the scalar dispatch. A node with properties but no
// declared type still compiles as an object, which is what allOf merges of
// typeless property branches produce.
func compileByType(node *spec.SchemaNode, refs *ReferenceSet) Expr {
	typ := ""
	if len(node.Type) == 1 {
		typ = node.Type[0]
	} else if len(node.Properties) > 0 {
		typ = "object"
	}

	var e Expr
	switch typ {
	case "string":
		e = compileString(node)
	case "number":
		e = compileNumber(node, false)
	case "integer":
		e = compileNumber(node, true)
	case "boolean":
		e = Expr{Kind: KindPrimitive, Code: "z.boolean()"}
	case "array":
		e = compileArray(node, refs)
	case "object":
		e = compileObject(node, refs)
	case "null":
		e = Null()
	case "":
		return Any()
	default:
		return Fallback()
	}

	if node.Nullable && e.Kind != KindNull {
		e = e.Nullable()
	}
	return e
}

// stringFormats maps recognized format names to their chained validators.
// Unknown formats add nothing.
var stringFormats = map[string]string{
	"email":     ".email()",
	"date-time": ".datetime()",
	"uri":       ".url()",
	"url":       ".url()",
	"uuid":      ".uuid()",
	"date":      ".date()",
}

func compileString(node *spec.SchemaNode) Expr {
	// Enum wins outright: format, pattern and length checks are ignored
	// when an enumeration is declared.
	if len(node.Enum) > 0 {
		literals := make([]string, 0, len(node.Enum))
		for _, v := range node.Enum {
			if s, ok := v.(string); ok {
				literals = append(literals, QuoteString(s))
			}
		}
		if len(literals) == 0 {
			return Fallback()
		}
		return Expr{Kind: KindEnum, Code: "z.enum([" + strings.Join(literals, ", ") + "])"}
	}

	var b strings.Builder
	b.WriteString("z.string()")
	if mod, ok := stringFormats[node.Format]; ok {
		b.WriteString(mod)
	}
	if node.Pattern != "" {
		b.WriteString(".regex(new RegExp(")
		b.WriteString(QuoteString(node.Pattern))
		b.WriteString("))")
	}
	if node.MinLength != nil {
		b.WriteString(".min(" + strconv.Itoa(*node.MinLength) + ")")
	}
	if node.MaxLength != nil {
		b.WriteString(".max(" + strconv.Itoa(*node.MaxLength) + ")")
	}
	return Expr{Kind: KindPrimitive, Code: b.String()}
}

func compileNumber(node *spec.SchemaNode, integer bool) Expr {
	// A numeric enum becomes a membership refinement; bounds and the
	// integer check never combine with it.
	if len(node.Enum) > 0 {
		literals := make([]string, 0, len(node.Enum))
		for _, v := range node.Enum {
			if f, ok := numericValue(v); ok {
				literals = append(literals, formatNumber(f))
			}
		}
		if len(literals) > 0 {
			code := "z.number().refine((value) => [" + strings.Join(literals, ", ") + "].includes(value))"
			return Expr{Kind: KindEnum, Code: code}
		}
	}

	var b strings.Builder
	b.WriteString("z.number()")
	if integer {
		b.WriteString(".int()")
	}
	if node.Minimum != nil {
		if node.ExclusiveMin {
			b.WriteString(".gt(" + formatNumber(*node.Minimum) + ")")
		} else {
			b.WriteString(".gte(" + formatNumber(*node.Minimum) + ")")
		}
	}
	if node.Maximum != nil {
		if node.ExclusiveMax {
			b.WriteString(".lt(" + formatNumber(*node.Maximum) + ")")
		} else {
			b.WriteString(".lte(" + formatNumber(*node.Maximum) + ")")
		}
	}
	if node.MultipleOf != nil {
		b.WriteString(".refine((value) => value % " + formatNumber(*node.MultipleOf) + " === 0)")
	}
	return Expr{Kind: KindPrimitive, Code: b.String()}
}

func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func compileArray(node *spec.SchemaNode, refs *ReferenceSet) Expr {
	elem := Compile(node.Items, refs)

	var b strings.Builder
	b.WriteString("z.array(")
	b.WriteString(elem.Code)
	b.WriteString(")")
	if node.MinItems != nil {
		b.WriteString(".min(" + strconv.Itoa(*node.MinItems) + ")")
	}
	if node.MaxItems != nil {
		b.WriteString(".max(" + strconv.Itoa(*node.MaxItems) + ")")
	}
	if node.UniqueItems {
		b.WriteString(".refine((items) => new Set(items).size === items.length)")
	}
	return Expr{Kind: KindArray, Code: b.String()}
}

func compileObject(node *spec.SchemaNode, refs *ReferenceSet) Expr {
	var b strings.Builder
	if len(node.Properties) == 0 {
		b.WriteString("z.object({})")
	} else {
		required := make(map[string]struct{}, len(node.Required))
		for _, name := range node.Required {
			required[name] = struct{}{}
		}
		fields := make([]string, 0, len(node.Properties))
		for _, p := range node.Properties {
			e := Compile(p.Schema, refs)
			if _, ok := required[p.Name]; !ok {
				e = e.Optional()
			}
			fields = append(fields, PropKey(p.Name)+": "+e.Code)
		}
		b.WriteString("z.object({ ")
		b.WriteString(strings.Join(fields, ", "))
		b.WriteString(" })")
	}

	if node.Additional != nil {
		switch {
		case node.Additional.Schema != nil:
			extra := Compile(node.Additional.Schema, refs)
			b.WriteString(".catchall(" + extra.Code + ")")
		case node.Additional.Allowed != nil && *node.Additional.Allowed:
			b.WriteString(".passthrough()")
		case node.Additional.Allowed != nil:
			b.WriteString(".strict()")
		}
	}
	return Expr{Kind: KindObject, Code: b.String()}
}

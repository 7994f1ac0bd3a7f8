// Package zod compiles JSON-Schema fragments into Zod validator expressions.
//
// Expressions are plain TypeScript source text tagged with the kind of
// validator they carry, so callers can branch on what was produced (a
// reference symbol, a degraded accept-anything fallback, a never) without
// parsing the text back.
package zod

import (
	"strconv"
	"strings"
)

// Kind classifies a compiled validator expression.
type Kind int

const (
	// KindAny accepts anything; produced for absent or empty schemas.
	KindAny Kind = iota
	// KindFallback also accepts anything, but marks a malformed or
	// unrecognized shape the compiler degraded instead of failing on.
	KindFallback
	// KindNever rejects everything.
	KindNever
	// KindNull accepts only null.
	KindNull
	// KindPrimitive is a string/number/boolean spine with chained checks.
	KindPrimitive
	// KindEnum is an enumerated-literal or literal-membership expression.
	KindEnum
	// KindArray is an array-of expression.
	KindArray
	// KindObject is an object shape expression.
	KindObject
	// KindUnion joins two or more variants.
	KindUnion
	// KindRef is a named validator symbol, never an inlined body.
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindFallback:
		return "fallback"
	case KindNever:
		return "never"
	case KindNull:
		return "null"
	case KindPrimitive:
		return "primitive"
	case KindEnum:
		return "enum"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindUnion:
		return "union"
	case KindRef:
		return "ref"
	}
	return "unknown"
}

// Expr is one compiled validator expression.
type Expr struct {
	Kind Kind
	Code string
}

func (e Expr) String() string { return e.Code }

// IsNever reports whether the expression rejects all input.
func (e Expr) IsNever() bool { return e.Kind == KindNever }

// IsFallback reports whether the expression is a degraded accept-anything
// produced from a malformed shape.
func (e Expr) IsFallback() bool { return e.Kind == KindFallback }

// Nullable wraps the expression so it additionally accepts null. The kind is
// preserved; nullability is a modifier, not a reclassification.
func (e Expr) Nullable() Expr {
	return Expr{Kind: e.Kind, Code: e.Code + ".nullable()"}
}

// Optional wraps the expression so the surrounding object may omit it.
func (e Expr) Optional() Expr {
	return Expr{Kind: e.Kind, Code: e.Code + ".optional()"}
}

// Any returns the accept-anything expression.
func Any() Expr { return Expr{Kind: KindAny, Code: "z.any()"} }

// Fallback returns the accept-anything expression tagged as a degrade from
// malformed input.
func Fallback() Expr { return Expr{Kind: KindFallback, Code: "z.any()"} }

// Never returns the reject-everything expression.
func Never() Expr { return Expr{Kind: KindNever, Code: "z.never()"} }

// Null returns the literal-null expression.
func Null() Expr { return Expr{Kind: KindNull, Code: "z.null()"} }

// Ref returns the symbol expression for a named schema.
func Ref(name string) Expr {
	return Expr{Kind: KindRef, Code: ValidatorSymbol(name)}
}

// Union joins the variants into one union expression. A single variant is
// returned as-is since a one-member union adds nothing.
func Union(variants []Expr) Expr {
	if len(variants) == 1 {
		return variants[0]
	}
	parts := make([]string, 0, len(variants))
	for _, v := range variants {
		parts = append(parts, v.Code)
	}
	return Expr{Kind: KindUnion, Code: "z.union([" + strings.Join(parts, ", ") + "])"}
}

// ValidatorSymbol returns the exported binding name for a named schema.
func ValidatorSymbol(name string) string { return name + "Validator" }

// QuoteString renders s as a double-quoted TypeScript string literal,
// escaping backslash and double-quote (plus control characters) so the value
// embeds safely.
func QuoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// PropKey renders an object-literal key: bare when the name is a valid
// identifier, quoted otherwise.
func PropKey(name string) string {
	if isBareIdent(name) {
		return name
	}
	return QuoteString(name)
}

// isBareIdent reports whether s can stand unquoted as a TypeScript property
// name. Reserved words are fine in object-literal position, so only the
// character classes matter.
func isBareIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isLetter := (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || r == '_' || r == '$'
		isDigit := r >= '0' && r <= '9'
		if i == 0 {
			if !isLetter {
				return false
			}
		} else if !isLetter && !isDigit {
			return false
		}
	}
	return true
}

// formatNumber renders a float as a TypeScript numeric literal without an
// exponent, dropping the fraction for whole values.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

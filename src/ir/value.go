package ir

import "math/big"

// Value is a compile-time-known value attached to a Constant wire source or produced by
// generative evaluation (spec.md §3). No third-party arbitrary-precision integer library
// appears anywhere in the retrieval pack, so this one component is built on the standard
// library's math/big (justified in DESIGN.md); everything else in this package avoids stdlib
// equivalents in favor of pack-grounded libraries.
type Value struct {
	Kind  ValueKind
	Int   *big.Int
	Bool  bool
	Array []Value
}

// ValueKind discriminates the Value union.
type ValueKind int

const (
	ValueInt ValueKind = iota
	ValueBool
	ValueArray
	// ValueError marks a value that could not be computed because of an earlier diagnostic.
	ValueError
)

// IntValue wraps an arbitrary-precision integer literal, grounded on original_source's
// BigInteger::from_decimal parsing of integer literal text.
func IntValue(text string) Value {
	n := new(big.Int)
	n.SetString(text, 10)
	return Value{Kind: ValueInt, Int: n}
}

// BoolValue wraps a boolean literal.
func BoolValue(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// ErrorValue marks a value that could not be determined.
func ErrorValue() Value { return Value{Kind: ValueError} }

// AbstractType reports the abstract type a literal value of this shape carries, used to type a
// NamedConstantRoot without re-running the typechecker's own inference.
func (v Value) AbstractType() AbstractType {
	switch v.Kind {
	case ValueInt:
		return Int
	case ValueBool:
		return Bool
	case ValueArray:
		if len(v.Array) == 0 {
			return Error
		}
		return ArrayOf(v.Array[0].AbstractType())
	default:
		return Error
	}
}

// String renders the value for diagnostics and debug-print output.
func (v Value) String() string {
	switch v.Kind {
	case ValueInt:
		return v.Int.String()
	case ValueBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case ValueArray:
		s := "["
		for i, e := range v.Array {
			if i > 0 {
				s += ", "
			}
			s += e.String()
		}
		return s + "]"
	default:
		return "<error>"
	}
}

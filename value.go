package fpe

import "strconv"

// Kind discriminates the native type of a Value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

// A Value is one field value moving through a Transformer. Values carry
// their native type so that transformed records keep their schema: strings
// stay strings, ints stay ints, floats stay floats.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
}

// StringValue wraps s.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// IntValue wraps v.
func IntValue(v int64) Value { return Value{Kind: KindInt, Int: v} }

// FloatValue wraps v.
func FloatValue(v float64) Value { return Value{Kind: KindFloat, Float: v} }

// String renders the value the way the transformers see it.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	default:
		return v.Str
	}
}

// revertValue parses s back into the native type of original. A transformed
// value that no longer fits the native type keeps its string form instead;
// encrypting the digits of a large integer can overflow int64.
func revertValue(original Value, s string) Value {
	switch original.Kind {
	case KindInt:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return IntValue(n)
		}
	case KindFloat:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return FloatValue(f)
		}
	}
	return StringValue(s)
}

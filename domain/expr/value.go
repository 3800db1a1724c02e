// Package expr implements the embedded expression language: lexer, parser,
// AST, tree-walking evaluator, and the operator registry that calculation
// formulas, rule conditions, and stage trigger rules all share.
package expr

import "fmt"

// Kind tags the variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindTimeSeries
	KindThreshold
)

// TimeSeries is a value-level time series: parallel timestamp and value
// slices, each value itself a scalar or a list.
type TimeSeries struct {
	Timestamps []int64
	Values     []Value
}

// Threshold is the value produced by the built-in Threshold(min, max, ...)
// constructor, consumed by the comparison operators.
type Threshold struct {
	Min, Max           float64
	HasMin, HasMax     bool
	LeftOpen, RightOpen bool
}

// Value is the tagged union every expression evaluates to: null, bool,
// integer, float, string, list, TimeSeries, or Threshold.
type Value struct {
	Kind   Kind
	Bool   bool
	Int    int64
	Float  float64
	Str    string
	List   []Value
	Series *TimeSeries
	Thresh *Threshold
}

// Null is the canonical null value.
var Null = Value{Kind: KindNull}

func NewBool(b bool) Value    { return Value{Kind: KindBool, Bool: b} }
func NewInt(i int64) Value    { return Value{Kind: KindInt, Int: i} }
func NewFloat(f float64) Value { return Value{Kind: KindFloat, Float: f} }
func NewString(s string) Value { return Value{Kind: KindString, Str: s} }
func NewList(vs []Value) Value { return Value{Kind: KindList, List: vs} }
func NewSeries(ts *TimeSeries) Value { return Value{Kind: KindTimeSeries, Series: ts} }
func NewThreshold(t *Threshold) Value { return Value{Kind: KindThreshold, Thresh: t} }

// IsNumeric reports whether the value is an int or float scalar.
func (v Value) IsNumeric() bool {
	return v.Kind == KindInt || v.Kind == KindFloat
}

// IsList reports whether the value is a list (the engine's "array" kind).
func (v Value) IsList() bool {
	return v.Kind == KindList
}

// IsBool reports whether the value is a scalar boolean.
func (v Value) IsBool() bool {
	return v.Kind == KindBool
}

// AsFloat converts a numeric scalar to float64. Panics on non-numeric input;
// callers must guard with IsNumeric first.
func (v Value) AsFloat() float64 {
	switch v.Kind {
	case KindInt:
		return float64(v.Int)
	case KindFloat:
		return v.Float
	}
	panic(fmt.Sprintf("expr: AsFloat on non-numeric value kind %d", v.Kind))
}

// Truthy applies the engine's truthiness rule: null and false-bool are
// falsy, zero numerics are falsy, empty strings/lists are falsy, everything
// else is truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNull:
		return false
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int != 0
	case KindFloat:
		return v.Float != 0
	case KindString:
		return v.Str != ""
	case KindList:
		return len(v.List) > 0
	case KindTimeSeries:
		return v.Series != nil && len(v.Series.Values) > 0
	default:
		return true
	}
}

// String renders the value for error messages and the rule message format.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%v", v.Bool)
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindString:
		return v.Str
	case KindList:
		out := "["
		for i, e := range v.List {
			if i > 0 {
				out += ", "
			}
			out += e.String()
		}
		return out + "]"
	case KindTimeSeries:
		return fmt.Sprintf("TimeSeries(len=%d)", len(v.Series.Values))
	case KindThreshold:
		return fmt.Sprintf("Threshold(min=%v, max=%v)", v.Thresh.Min, v.Thresh.Max)
	default:
		return "<unknown>"
	}
}

// Flatten strips a TimeSeries down to its list of inner values (the
// environment's convention when a variable name resolves to a TimeSeries:
// accessing it yields the timestamp-stripped value list).
func (v Value) Flatten() Value {
	if v.Kind == KindTimeSeries {
		return NewList(v.Series.Values)
	}
	return v
}

// Native converts a Value into the plain Go value callers outside the
// expression engine (rule results, reports) should carry: bool, int64,
// float64, string, []interface{}, or nil. TimeSeries and Threshold values
// have no native counterpart and render through String instead.
func (v Value) Native() interface{} {
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindString:
		return v.Str
	case KindList:
		out := make([]interface{}, len(v.List))
		for i, e := range v.List {
			out[i] = e.Native()
		}
		return out
	default:
		return v.String()
	}
}

package expr

import "fmt"

func registerLogicalOperators(r *Registry) {
	r.Register("AND", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 2 {
			return Null, fmt.Errorf("AND expects 2 arguments, got %d", len(args))
		}
		return logicalBinary(args[0], args[1], func(x, y bool) bool { return x && y })
	})
	r.Register("OR", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 2 {
			return Null, fmt.Errorf("OR expects 2 arguments, got %d", len(args))
		}
		return logicalBinary(args[0], args[1], func(x, y bool) bool { return x || y })
	})
	r.Register("NOT", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 1 {
			return Null, fmt.Errorf("NOT expects 1 argument, got %d", len(args))
		}
		v := args[0].Flatten()
		if v.IsList() {
			out := make([]Value, len(v.List))
			for i, e := range v.List {
				e = e.Flatten()
				if !e.IsBool() {
					return Null, fmt.Errorf("NOT requires boolean operands, got %v", e)
				}
				out[i] = NewBool(!e.Bool)
			}
			return NewList(out), nil
		}
		if !v.IsBool() {
			return Null, fmt.Errorf("NOT requires a boolean operand, got %v", v)
		}
		return NewBool(!v.Bool), nil
	})
}

// logicalBinary implements the engine's logical-operator shape rule: scalar
// operands combine directly; list operands combine elementwise and must
// match shape; mixed scalar/list broadcasts the scalar, matching the
// arithmetic broadcast rule, not the stricter shape-match rule, since
// spec.md only requires shape-matching "when both operands are lists."
func logicalBinary(a, b Value, fn func(x, y bool) bool) (Value, error) {
	a, b = a.Flatten(), b.Flatten()

	if a.IsList() && b.IsList() {
		if len(a.List) != len(b.List) {
			return Null, fmt.Errorf("shape mismatch: %d vs %d", len(a.List), len(b.List))
		}
		out := make([]Value, len(a.List))
		for i := range a.List {
			r, err := logicalBinary(a.List[i], b.List[i], fn)
			if err != nil {
				return Null, err
			}
			out[i] = r
		}
		return NewList(out), nil
	}
	if a.IsList() {
		out := make([]Value, len(a.List))
		for i := range a.List {
			r, err := logicalBinary(a.List[i], b, fn)
			if err != nil {
				return Null, err
			}
			out[i] = r
		}
		return NewList(out), nil
	}
	if b.IsList() {
		out := make([]Value, len(b.List))
		for i := range b.List {
			r, err := logicalBinary(a, b.List[i], fn)
			if err != nil {
				return Null, err
			}
			out[i] = r
		}
		return NewList(out), nil
	}
	if !a.IsBool() || !b.IsBool() {
		return Null, fmt.Errorf("logical operator requires boolean operands, got %v and %v", a, b)
	}
	return NewBool(fn(a.Bool, b.Bool)), nil
}

func registerVectorOperators(r *Registry) {
	r.Register("ALL", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 1 {
			return Null, fmt.Errorf("ALL expects 1 argument, got %d", len(args))
		}
		bools, err := asBoolSlice(args[0])
		if err != nil {
			return Null, err
		}
		for _, b := range bools {
			if !b {
				return NewBool(false), nil
			}
		}
		return NewBool(true), nil
	})
	r.Register("ANY", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 1 {
			return Null, fmt.Errorf("ANY expects 1 argument, got %d", len(args))
		}
		bools, err := asBoolSlice(args[0])
		if err != nil {
			return Null, err
		}
		for _, b := range bools {
			if b {
				return NewBool(true), nil
			}
		}
		return NewBool(false), nil
	})
}

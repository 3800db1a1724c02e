package expr

import "fmt"

// broadcastNumeric applies fn elementwise across two operands that may each
// be a scalar or a list, per spec.md's broadcasting rules: scalar-on-scalar
// yields a scalar, scalar-on-list and list-on-scalar broadcast the scalar,
// list-on-list requires matching shape and is elementwise.
func broadcastNumeric(a, b Value, fn func(x, y float64) (float64, error)) (Value, error) {
	a, b = a.Flatten(), b.Flatten()

	if a.IsList() && b.IsList() {
		if len(a.List) != len(b.List) {
			return Null, fmt.Errorf("shape mismatch: %d vs %d", len(a.List), len(b.List))
		}
		out := make([]Value, len(a.List))
		for i := range a.List {
			r, err := broadcastNumeric(a.List[i], b.List[i], fn)
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
			r, err := broadcastNumeric(a.List[i], b, fn)
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
			r, err := broadcastNumeric(a, b.List[i], fn)
			if err != nil {
				return Null, err
			}
			out[i] = r
		}
		return NewList(out), nil
	}

	if !a.IsNumeric() || !b.IsNumeric() {
		return Null, fmt.Errorf("arithmetic requires numeric operands, got %v and %v", a, b)
	}
	f, err := fn(a.AsFloat(), b.AsFloat())
	if err != nil {
		return Null, err
	}
	if a.Kind == KindInt && b.Kind == KindInt && f == float64(int64(f)) {
		return NewInt(int64(f)), nil
	}
	return NewFloat(f), nil
}

// broadcastCompare applies fn elementwise across two operands, always
// producing bool or []bool-as-Value regardless of the operand's numeric
// subtype.
func broadcastCompare(a, b Value, fn func(x, y float64) bool) (Value, error) {
	a, b = a.Flatten(), b.Flatten()

	if a.IsList() && b.IsList() {
		if len(a.List) != len(b.List) {
			return Null, fmt.Errorf("shape mismatch: %d vs %d", len(a.List), len(b.List))
		}
		out := make([]Value, len(a.List))
		for i := range a.List {
			r, err := broadcastCompare(a.List[i], b.List[i], fn)
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
			r, err := broadcastCompare(a.List[i], b, fn)
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
			r, err := broadcastCompare(a, b.List[i], fn)
			if err != nil {
				return Null, err
			}
			out[i] = r
		}
		return NewList(out), nil
	}
	if !a.IsNumeric() || !b.IsNumeric() {
		return Null, fmt.Errorf("comparison requires numeric operands, got %v and %v", a, b)
	}
	return NewBool(fn(a.AsFloat(), b.AsFloat())), nil
}

// flattenNumeric recursively flattens a scalar-or-nested-list Value into a
// flat []float64, used by the aggregate operators.
func flattenNumeric(v Value) ([]float64, error) {
	v = v.Flatten()
	if v.IsNumeric() {
		return []float64{v.AsFloat()}, nil
	}
	if v.IsList() {
		var out []float64
		for _, e := range v.List {
			sub, err := flattenNumeric(e)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected numeric or list, got %v", v)
}

// asBoolSlice converts a Value that must be a scalar bool or a list of
// bools into a []bool, erroring otherwise.
func asBoolSlice(v Value) ([]bool, error) {
	v = v.Flatten()
	if v.IsBool() {
		return []bool{v.Bool}, nil
	}
	if v.IsList() {
		out := make([]bool, len(v.List))
		for i, e := range v.List {
			e = e.Flatten()
			if !e.IsBool() {
				return nil, fmt.Errorf("expected boolean list element, got %v", e)
			}
			out[i] = e.Bool
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected boolean or boolean list, got %v", v)
}

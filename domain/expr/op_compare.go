package expr

import "fmt"

func registerCompareOperators(r *Registry) {
	for _, name := range []string{"EQ", "NE", "GT", "GE", "LT", "LE"} {
		opName := name
		r.Register(opName, func(args []Value, kwargs map[string]Value) (Value, error) {
			if len(args) != 2 {
				return Null, fmt.Errorf("%s expects 2 arguments, got %d", opName, len(args))
			}
			// Comparison synonyms are translated into (data, operator_name,
			// threshold) invocations of the shared comparator, keeping the
			// two-argument call shape observable to callers unchanged.
			return compare(args[0], opName, args[1])
		})
	}
	r.Register("IN_RANGE", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) < 3 {
			return Null, fmt.Errorf("IN_RANGE expects at least 3 arguments, got %d", len(args))
		}
		lower, upper := args[1], args[2]
		leftOpen, rightOpen := false, false
		if v, ok := kwargs["left_open"]; ok {
			leftOpen = v.Truthy()
		} else if len(args) > 3 {
			leftOpen = args[3].Truthy()
		}
		if v, ok := kwargs["right_open"]; ok {
			rightOpen = v.Truthy()
		} else if len(args) > 4 {
			rightOpen = args[4].Truthy()
		}
		t := &Threshold{
			Min: lower.AsFloat(), HasMin: true,
			Max: upper.AsFloat(), HasMax: true,
			LeftOpen: leftOpen, RightOpen: rightOpen,
		}
		return compare(args[0], "IN_RANGE", NewThreshold(t))
	})
}

// compare is the shared comparator every comparison operator and synonym
// funnels through: (data, operator_name, threshold). threshold may be a
// numeric scalar (for EQ/NE/GT/GE/LT/LE) or a Threshold value (for IN_RANGE,
// or for any comparison called with an explicit range).
func compare(data Value, operatorName string, threshold Value) (Value, error) {
	data = data.Flatten()

	if data.IsList() {
		out := make([]Value, len(data.List))
		for i, e := range data.List {
			r, err := compare(e, operatorName, threshold)
			if err != nil {
				return Null, err
			}
			out[i] = r
		}
		return NewList(out), nil
	}

	if !data.IsNumeric() {
		return Null, fmt.Errorf("%s requires a numeric operand, got %v", operatorName, data)
	}
	x := data.AsFloat()

	if threshold.Kind == KindThreshold {
		return NewBool(withinThreshold(x, threshold.Thresh)), nil
	}
	if !threshold.IsNumeric() {
		return Null, fmt.Errorf("%s requires a numeric or Threshold operand, got %v", operatorName, threshold)
	}
	y := threshold.AsFloat()

	switch operatorName {
	case "EQ":
		return NewBool(x == y), nil
	case "NE":
		return NewBool(x != y), nil
	case "GT":
		return NewBool(x > y), nil
	case "GE":
		return NewBool(x >= y), nil
	case "LT":
		return NewBool(x < y), nil
	case "LE":
		return NewBool(x <= y), nil
	default:
		return Null, fmt.Errorf("unknown comparison operator %q", operatorName)
	}
}

func withinThreshold(x float64, t *Threshold) bool {
	if t.HasMin {
		if t.LeftOpen {
			if x <= t.Min {
				return false
			}
		} else if x < t.Min {
			return false
		}
	}
	if t.HasMax {
		if t.RightOpen {
			if x >= t.Max {
				return false
			}
		} else if x > t.Max {
			return false
		}
	}
	return true
}

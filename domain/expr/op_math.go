package expr

import "fmt"

func registerMathOperators(r *Registry) {
	r.Register("ADD", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 2 {
			return Null, fmt.Errorf("ADD expects 2 arguments, got %d", len(args))
		}
		return broadcastNumeric(args[0], args[1], func(x, y float64) (float64, error) { return x + y, nil })
	})
	r.Register("SUB", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 2 {
			return Null, fmt.Errorf("SUB expects 2 arguments, got %d", len(args))
		}
		return broadcastNumeric(args[0], args[1], func(x, y float64) (float64, error) { return x - y, nil })
	})
	r.Register("MUL", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 2 {
			return Null, fmt.Errorf("MUL expects 2 arguments, got %d", len(args))
		}
		return broadcastNumeric(args[0], args[1], func(x, y float64) (float64, error) { return x * y, nil })
	})
	r.Register("DIV", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 2 {
			return Null, fmt.Errorf("DIV expects 2 arguments, got %d", len(args))
		}
		return broadcastNumeric(args[0], args[1], func(x, y float64) (float64, error) {
			if y == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return x / y, nil
		})
	})
	r.Register("MOD", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 2 {
			return Null, fmt.Errorf("MOD expects 2 arguments, got %d", len(args))
		}
		return broadcastNumeric(args[0], args[1], func(x, y float64) (float64, error) {
			if y == 0 {
				return 0, fmt.Errorf("modulo by zero")
			}
			xi, yi := int64(x), int64(y)
			return float64(xi % yi), nil
		})
	})
	r.Register("NEG", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 1 {
			return Null, fmt.Errorf("NEG expects 1 argument, got %d", len(args))
		}
		return broadcastNumeric(NewInt(0), args[0], func(x, y float64) (float64, error) { return x - y, nil })
	})
	r.Register("ABS", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 1 {
			return Null, fmt.Errorf("ABS expects 1 argument, got %d", len(args))
		}
		v := args[0].Flatten()
		if v.IsList() {
			out := make([]Value, len(v.List))
			for i, e := range v.List {
				r, err := absScalar(e)
				if err != nil {
					return Null, err
				}
				out[i] = r
			}
			return NewList(out), nil
		}
		return absScalar(v)
	})
	r.Register("LEN", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 1 {
			return Null, fmt.Errorf("LEN expects 1 argument, got %d", len(args))
		}
		v := args[0].Flatten()
		switch {
		case v.IsList():
			return NewInt(int64(len(v.List))), nil
		case v.Kind == KindString:
			return NewInt(int64(len(v.Str))), nil
		default:
			return Null, fmt.Errorf("LEN requires a list or string, got %v", v)
		}
	})
	r.Register("THRESHOLD", func(args []Value, kwargs map[string]Value) (Value, error) {
		return buildThreshold(args, kwargs)
	})
}

func absScalar(v Value) (Value, error) {
	if !v.IsNumeric() {
		return Null, fmt.Errorf("ABS requires a numeric value, got %v", v)
	}
	f := v.AsFloat()
	if f < 0 {
		f = -f
	}
	if v.Kind == KindInt {
		return NewInt(int64(f)), nil
	}
	return NewFloat(f), nil
}

// buildThreshold implements the built-in Threshold(min, max, left_open?,
// right_open?) constructor. min/max may each be omitted (open-ended range)
// and are accepted positionally or by keyword.
func buildThreshold(args []Value, kwargs map[string]Value) (Value, error) {
	t := &Threshold{}
	if v, ok := kwargs["min"]; ok {
		t.Min, t.HasMin = v.AsFloat(), true
	} else if len(args) > 0 {
		t.Min, t.HasMin = args[0].AsFloat(), true
	}
	if v, ok := kwargs["max"]; ok {
		t.Max, t.HasMax = v.AsFloat(), true
	} else if len(args) > 1 {
		t.Max, t.HasMax = args[1].AsFloat(), true
	}
	if v, ok := kwargs["left_open"]; ok {
		t.LeftOpen = v.Truthy()
	} else if len(args) > 2 {
		t.LeftOpen = args[2].Truthy()
	}
	if v, ok := kwargs["right_open"]; ok {
		t.RightOpen = v.Truthy()
	} else if len(args) > 3 {
		t.RightOpen = args[3].Truthy()
	}
	return NewThreshold(t), nil
}

package expr

import "fmt"

func registerAggregateOperators(r *Registry) {
	reduce := func(name string, fn func([]float64) float64) Operator {
		return func(args []Value, kwargs map[string]Value) (Value, error) {
			if len(args) != 1 {
				return Null, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
			}
			flat, err := flattenNumeric(args[0])
			if err != nil {
				return Null, fmt.Errorf("%s: %w", name, err)
			}
			if len(flat) == 0 {
				return Null, fmt.Errorf("%s: empty input", name)
			}
			return NewFloat(fn(flat)), nil
		}
	}
	r.Register("MAX", reduce("MAX", func(xs []float64) float64 {
		m := xs[0]
		for _, x := range xs[1:] {
			if x > m {
				m = x
			}
		}
		return m
	}))
	r.Register("MIN", reduce("MIN", func(xs []float64) float64 {
		m := xs[0]
		for _, x := range xs[1:] {
			if x < m {
				m = x
			}
		}
		return m
	}))
	r.Register("SUM", reduce("SUM", func(xs []float64) float64 {
		s := 0.0
		for _, x := range xs {
			s += x
		}
		return s
	}))
	r.Register("AVG", reduce("AVG", avg))
	r.Register("MEAN", reduce("MEAN", avg))
	r.Register("FIRST", reduce("FIRST", func(xs []float64) float64 { return xs[0] }))
	r.Register("LAST", reduce("LAST", func(xs []float64) float64 { return xs[len(xs)-1] }))
}

func avg(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

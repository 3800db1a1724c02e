package expr

import "fmt"

func registerSeriesOperators(r *Registry) {
	r.Register("RATE", rateOperator)
	r.Register("DURATION_SEGMENTS", durationSegmentsOperator)
}

// rateOperator computes per-interval elementwise rates over a series:
// values[i+step] - values[i], divided by the elapsed time between the two
// samples when timestamps are available (either passed explicitly via the
// `timestamps` keyword or carried on a TimeSeries argument), otherwise
// divided by `step` sample-intervals.
func rateOperator(args []Value, kwargs map[string]Value) (Value, error) {
	if len(args) < 1 {
		return Null, fmt.Errorf("RATE expects at least 1 argument")
	}

	step := int64(1)
	if v, ok := kwargs["step"]; ok {
		step = v.Int
	} else if len(args) > 1 {
		step = args[1].Int
	}
	if step <= 0 {
		return Null, fmt.Errorf("RATE: step must be positive, got %d", step)
	}

	var values []Value
	var timestamps []int64

	input := args[0]
	if input.Kind == KindTimeSeries {
		values = input.Series.Values
		timestamps = input.Series.Timestamps
	} else {
		flat := input.Flatten()
		if !flat.IsList() {
			return Null, fmt.Errorf("RATE requires a list or TimeSeries input, got %v", flat)
		}
		values = flat.List
	}
	if v, ok := kwargs["timestamps"]; ok {
		ts, err := toInt64Slice(v)
		if err != nil {
			return Null, fmt.Errorf("RATE: %w", err)
		}
		timestamps = ts
	}

	n := len(values)
	if n <= int(step) {
		return NewList(nil), nil
	}

	out := make([]Value, 0, n-int(step))
	for i := 0; i+int(step) < n; i++ {
		dt := float64(step)
		if timestamps != nil {
			elapsed := float64(timestamps[i+int(step)] - timestamps[i])
			if elapsed == 0 {
				return Null, fmt.Errorf("RATE: zero elapsed time between samples %d and %d", i, i+int(step))
			}
			dt = elapsed
		}
		diff, err := broadcastNumeric(values[i+int(step)], values[i], func(x, y float64) (float64, error) { return x - y, nil })
		if err != nil {
			return Null, fmt.Errorf("RATE: %w", err)
		}
		rate, err := broadcastNumeric(diff, NewFloat(dt), func(x, y float64) (float64, error) { return x / y, nil })
		if err != nil {
			return Null, fmt.Errorf("RATE: %w", err)
		}
		out = append(out, rate)
	}
	return NewList(out), nil
}

// durationSegmentsOperator identifies every maximal run of `true` in a
// boolean list and reports it as {start, end, duration}. duration is the
// elapsed time between the run's first and last true sample (using
// `timestamps` if given, else the sample count) times the optional
// `interval` scale factor (default 1).
func durationSegmentsOperator(args []Value, kwargs map[string]Value) (Value, error) {
	if len(args) < 1 {
		return Null, fmt.Errorf("DURATION_SEGMENTS expects at least 1 argument")
	}
	bools, err := asBoolSlice(args[0])
	if err != nil {
		return Null, fmt.Errorf("DURATION_SEGMENTS: %w", err)
	}

	var timestamps []int64
	if v, ok := kwargs["timestamps"]; ok {
		timestamps, err = toInt64Slice(v)
		if err != nil {
			return Null, fmt.Errorf("DURATION_SEGMENTS: %w", err)
		}
	}
	interval := 1.0
	if v, ok := kwargs["interval"]; ok {
		interval = v.AsFloat()
	}

	var segments []Value
	inRun := false
	start := 0
	flush := func(end int) {
		var duration float64
		if timestamps != nil {
			duration = float64(timestamps[end]-timestamps[start]) * interval
		} else {
			duration = float64(end-start+1) * interval
		}
		segments = append(segments, NewList([]Value{
			NewInt(int64(start)),
			NewInt(int64(end)),
			NewFloat(duration),
		}))
	}
	for i, b := range bools {
		if b && !inRun {
			inRun = true
			start = i
		} else if !b && inRun {
			inRun = false
			flush(i - 1)
		}
	}
	if inRun {
		flush(len(bools) - 1)
	}
	return NewList(segments), nil
}

func toInt64Slice(v Value) ([]int64, error) {
	v = v.Flatten()
	if !v.IsList() {
		return nil, fmt.Errorf("expected a list of timestamps, got %v", v)
	}
	out := make([]int64, len(v.List))
	for i, e := range v.List {
		if !e.IsNumeric() {
			return nil, fmt.Errorf("expected numeric timestamp, got %v", e)
		}
		out[i] = int64(e.AsFloat())
	}
	return out, nil
}

// Package calc implements the calculation engine: given a bound
// specification's calculation definitions and the run's raw data, it
// produces a {calculation_id -> value} map for the rule-evaluation
// environment.
package calc

import (
	"fmt"
	"sort"

	"github.com/curetrace/engine/domain/expr"
	"github.com/curetrace/engine/domain/specmodel"
	engineerrors "github.com/curetrace/engine/infrastructure/errors"
)

// Engine evaluates a BoundSpecification's calculations against RawData and a
// SensorGrouping.
type Engine struct {
	evaluator *expr.Evaluator
}

// NewEngine constructs a calculation Engine bound to the given evaluator.
func NewEngine(evaluator *expr.Evaluator) *Engine {
	return &Engine{evaluator: evaluator}
}

// Calculate evaluates every calculation definition in order, returning the
// combined environment (raw channels untouched plus every calculation's
// value and any {id}_max/{id}_min companion entries).
func (e *Engine) Calculate(raw *specmodel.RawData, grouping specmodel.SensorGrouping, calculations []specmodel.CalculationDef) (expr.Environment, error) {
	env := baseEnvironment(raw)

	for _, calc := range calculations {
		value, err := e.evaluateOne(calc, raw, grouping, env)
		if err != nil {
			return nil, engineerrors.CalcError(calc.ID, err)
		}
		env[calc.ID] = value
		addCompanionStats(env, calc.ID, value)
	}
	return env, nil
}

func (e *Engine) evaluateOne(calc specmodel.CalculationDef, raw *specmodel.RawData, grouping specmodel.SensorGrouping, env expr.Environment) (expr.Value, error) {
	switch calc.Type {
	case "sensor_group":
		return sensorGroupSeries(raw, grouping, calc.Sensors)
	case "calculated":
		if calc.Formula == "" {
			return expr.Null, fmt.Errorf("calculation %s has no formula", calc.ID)
		}
		// Ensure every sensor group this calculation names is already bound
		// in the environment before the formula evaluates it.
		for _, group := range calc.Sensors {
			if _, ok := env[group]; ok {
				continue
			}
			series, err := sensorGroupSeries(raw, grouping, []string{group})
			if err != nil {
				return expr.Null, err
			}
			env[group] = series
		}
		value, _, err := e.evaluator.Evaluate(calc.Formula, env, "")
		if err != nil {
			return expr.Null, err
		}
		return value, nil
	default:
		return expr.Null, fmt.Errorf("calculation %s has unknown type %q", calc.ID, calc.Type)
	}
}

// sensorGroupSeries zips the named raw channels with the timestamp channel
// into a TimeSeries of {timestamp, value=[ch1, ch2, ...]} per spec.md §4.4's
// direct-reference calculation contract. A single-channel group yields a
// TimeSeries of scalars instead of one-element lists.
func sensorGroupSeries(raw *specmodel.RawData, grouping specmodel.SensorGrouping, sensors []string) (expr.Value, error) {
	var channels []string
	if len(sensors) == 1 {
		if group, ok := grouping[sensors[0]]; ok {
			channels = group
		} else {
			channels = sensors
		}
	} else {
		channels = sensors
	}
	if len(channels) == 0 {
		return expr.Null, fmt.Errorf("undefined sensor group reference")
	}

	samples := make([][]float64, len(channels))
	for i, ch := range channels {
		col, ok := raw.Channel(ch)
		if !ok {
			return expr.Null, fmt.Errorf("undefined sensor channel %q", ch)
		}
		samples[i] = col
	}

	n := raw.Length
	values := make([]expr.Value, n)
	for t := 0; t < n; t++ {
		if len(channels) == 1 {
			values[t] = expr.NewFloat(samples[0][t])
			continue
		}
		row := make([]expr.Value, len(channels))
		for c := range channels {
			row[c] = expr.NewFloat(samples[c][t])
		}
		values[t] = expr.NewList(row)
	}

	return expr.NewSeries(&expr.TimeSeries{Timestamps: raw.Timestamps, Values: values}), nil
}

func baseEnvironment(raw *specmodel.RawData) expr.Environment {
	env := make(expr.Environment, len(raw.Channels))
	for name, samples := range raw.Channels {
		values := make([]expr.Value, len(samples))
		for i, s := range samples {
			values[i] = expr.NewFloat(s)
		}
		env[name] = expr.NewSeries(&expr.TimeSeries{Timestamps: raw.Timestamps, Values: values})
	}
	return env
}

// addCompanionStats publishes {id}_max/{id}_min when the calculation's value
// is a list or series with numeric content anywhere inside it. A
// multi-channel sensor_group row ([ch1, ch2, ...] per timestamp) is
// pre-flattened into one flat numeric population before the stats are taken,
// the same way the original's _add_statistics flattens sensor_group data
// before computing max/min — there is no separate per-channel-indexed form.
// A missing companion (empty list) is not an error — it is simply absent.
func addCompanionStats(env expr.Environment, id string, value expr.Value) {
	flat := value.Flatten()
	if !flat.IsList() || len(flat.List) == 0 {
		return
	}

	var flatNums []float64
	collectNumeric(flat, &flatNums)
	if len(flatNums) == 0 {
		return
	}
	env[id+"_max"] = expr.NewFloat(maxOf(flatNums))
	env[id+"_min"] = expr.NewFloat(minOf(flatNums))
}

// collectNumeric walks v (flattening any TimeSeries it encounters) and
// appends every numeric leaf it finds, recursing into nested lists.
func collectNumeric(v expr.Value, out *[]float64) {
	v = v.Flatten()
	if v.IsNumeric() {
		*out = append(*out, v.AsFloat())
		return
	}
	if v.IsList() {
		for _, e := range v.List {
			collectNumeric(e, out)
		}
	}
}

func maxOf(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	return sorted[len(sorted)-1]
}

func minOf(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	return sorted[0]
}

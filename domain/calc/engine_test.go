package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curetrace/engine/domain/expr"
	"github.com/curetrace/engine/domain/specmodel"
)

func newTestRaw() *specmodel.RawData {
	return &specmodel.RawData{
		Channels: map[string][]float64{
			"tc1":       {100, 150, 180, 182, 179},
			"tc2":       {98, 148, 181, 183, 178},
			"timestamp": {0, 1, 2, 3, 4},
		},
		TimestampChannel: "timestamp",
		Timestamps:       []int64{0, 1, 2, 3, 4},
		Length:           5,
	}
}

func TestCalculateSensorGroupSeries(t *testing.T) {
	raw := newTestRaw()
	grouping := specmodel.SensorGrouping{"chamber_temp": {"tc1", "tc2"}}
	eng := NewEngine(expr.NewEvaluator(expr.NewRegistry(), nil))

	env, err := eng.Calculate(raw, grouping, []specmodel.CalculationDef{
		{ID: "chamber_avg", Type: "sensor_group", Sensors: []string{"chamber_temp"}},
	})
	require.NoError(t, err)

	v, ok := env["chamber_avg"]
	require.True(t, ok)
	assert.Equal(t, expr.KindTimeSeries, v.Kind)
	assert.Contains(t, env, "chamber_avg_max")
	assert.Contains(t, env, "chamber_avg_min")
}

func TestCalculateFormulaReferencesSensorGroup(t *testing.T) {
	raw := newTestRaw()
	grouping := specmodel.SensorGrouping{"chamber_temp": {"tc1"}}
	eng := NewEngine(expr.NewEvaluator(expr.NewRegistry(), nil))

	env, err := eng.Calculate(raw, grouping, []specmodel.CalculationDef{
		{ID: "peak_temp", Type: "calculated", Sensors: []string{"chamber_temp"}, Formula: "MAX(chamber_temp)"},
	})
	require.NoError(t, err)

	v, ok := env["peak_temp"]
	require.True(t, ok)
	assert.Equal(t, 182.0, v.AsFloat())
}

func TestCalculateUnknownChannelErrors(t *testing.T) {
	raw := newTestRaw()
	grouping := specmodel.SensorGrouping{}
	eng := NewEngine(expr.NewEvaluator(expr.NewRegistry(), nil))

	_, err := eng.Calculate(raw, grouping, []specmodel.CalculationDef{
		{ID: "bad", Type: "sensor_group", Sensors: []string{"does_not_exist"}},
	})
	assert.Error(t, err)
}

package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolValues(bs ...bool) []Value {
	out := make([]Value, len(bs))
	for i, b := range bs {
		out[i] = NewBool(b)
	}
	return out
}

func TestDurationSegmentsFindsMaximalTrueRuns(t *testing.T) {
	bools := NewList(boolValues(false, true, true, false, true, false, false, true, true, true))

	got, err := durationSegmentsOperator([]Value{bools}, nil)
	require.NoError(t, err)
	require.True(t, got.IsList())
	require.Len(t, got.List, 3)

	seg := got.List[0].List
	assert.Equal(t, int64(1), seg[0].Int)
	assert.Equal(t, int64(2), seg[1].Int)
	assert.Equal(t, 2.0, seg[2].Float)

	seg = got.List[1].List
	assert.Equal(t, int64(4), seg[0].Int)
	assert.Equal(t, int64(4), seg[1].Int)
	assert.Equal(t, 1.0, seg[2].Float)

	seg = got.List[2].List
	assert.Equal(t, int64(7), seg[0].Int)
	assert.Equal(t, int64(9), seg[1].Int)
	assert.Equal(t, 3.0, seg[2].Float)
}

func TestDurationSegmentsUsesTimestampsAndIntervalScale(t *testing.T) {
	bools := NewList(boolValues(true, true, false, true))
	kwargs := map[string]Value{
		"timestamps": NewList([]Value{NewInt(0), NewInt(10), NewInt(20), NewInt(30)}),
		"interval":   NewFloat(2.0),
	}

	got, err := durationSegmentsOperator([]Value{bools}, kwargs)
	require.NoError(t, err)
	require.Len(t, got.List, 2)

	first := got.List[0].List
	assert.Equal(t, int64(0), first[0].Int)
	assert.Equal(t, int64(1), first[1].Int)
	assert.Equal(t, 20.0, first[2].Float)

	second := got.List[1].List
	assert.Equal(t, int64(3), second[0].Int)
	assert.Equal(t, int64(3), second[1].Int)
	assert.Equal(t, 0.0, second[2].Float)
}

func TestDurationSegmentsAllFalseYieldsNoSegments(t *testing.T) {
	bools := NewList(boolValues(false, false, false))
	got, err := durationSegmentsOperator([]Value{bools}, nil)
	require.NoError(t, err)
	assert.Empty(t, got.List)
}

func TestDurationSegmentsTrailingRunExtendsToLastSample(t *testing.T) {
	bools := NewList(boolValues(false, true, true))
	got, err := durationSegmentsOperator([]Value{bools}, nil)
	require.NoError(t, err)
	require.Len(t, got.List, 1)
	seg := got.List[0].List
	assert.Equal(t, int64(1), seg[0].Int)
	assert.Equal(t, int64(2), seg[1].Int)
}

func TestDurationSegmentsRejectsNonBooleanInput(t *testing.T) {
	_, err := durationSegmentsOperator([]Value{NewList([]Value{NewInt(1), NewInt(0)})}, nil)
	assert.Error(t, err)
}

func TestDurationSegmentsRequiresAnArgument(t *testing.T) {
	_, err := durationSegmentsOperator(nil, nil)
	assert.Error(t, err)
}

func TestRateComputesElementwiseDifferencePerStep(t *testing.T) {
	values := NewList([]Value{NewFloat(10), NewFloat(20), NewFloat(40)})
	got, err := rateOperator([]Value{values}, nil)
	require.NoError(t, err)
	require.Len(t, got.List, 2)
	assert.Equal(t, 10.0, got.List[0].Float)
	assert.Equal(t, 20.0, got.List[1].Float)
}

func TestRateDividesByElapsedTimeWhenTimestampsGiven(t *testing.T) {
	values := NewList([]Value{NewFloat(10), NewFloat(20), NewFloat(40)})
	kwargs := map[string]Value{
		"timestamps": NewList([]Value{NewInt(0), NewInt(1), NewInt(3)}),
	}
	got, err := rateOperator([]Value{values}, kwargs)
	require.NoError(t, err)
	require.Len(t, got.List, 2)
	assert.Equal(t, 10.0, got.List[0].Float)
	assert.Equal(t, 10.0, got.List[1].Float)
}

func TestRateZeroElapsedTimeErrors(t *testing.T) {
	values := NewList([]Value{NewFloat(10), NewFloat(20)})
	kwargs := map[string]Value{
		"timestamps": NewList([]Value{NewInt(5), NewInt(5)}),
	}
	_, err := rateOperator([]Value{values}, kwargs)
	assert.Error(t, err)
}

func TestRateShortInputYieldsEmptyList(t *testing.T) {
	values := NewList([]Value{NewFloat(10)})
	got, err := rateOperator([]Value{values}, nil)
	require.NoError(t, err)
	assert.Empty(t, got.List)
}

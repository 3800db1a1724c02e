// Package stage detects stage windows within a run's raw data using one of
// three modes: by-time, by-trigger-rule, or by-temperature-range.
package stage

import (
	"fmt"
	"sort"
	"time"

	"github.com/curetrace/engine/domain/expr"
	"github.com/curetrace/engine/domain/specmodel"
)

// Detector resolves a specification's stage definitions into a StageTimeline.
type Detector struct {
	evaluator        *expr.Evaluator
	samplingInterval float64 // minutes per sample, for duration_minutes
}

// NewDetector constructs a Detector. samplingInterval is expressed in minutes
// per sample and feeds the duration_minutes feature.
func NewDetector(evaluator *expr.Evaluator, samplingInterval float64) *Detector {
	return &Detector{evaluator: evaluator, samplingInterval: samplingInterval}
}

// Detect resolves every stage definition against raw and env (the
// calculation-engine environment, for trigger-rule and temperature-range
// modes), returning a StageTimeline and any non-fatal warnings.
func (d *Detector) Detect(raw *specmodel.RawData, env expr.Environment, stages []specmodel.StageDef) (specmodel.StageTimeline, []string, error) {
	timeline := make(specmodel.StageTimeline, len(stages))
	var warnings []string

	ordered := make([]specmodel.StageDef, len(stages))
	copy(ordered, stages)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].DisplayOrder < ordered[j].DisplayOrder })

	windows := make([]specmodel.StageWindow, len(ordered))
	for i, def := range ordered {
		w, err := d.detectOne(raw, env, def)
		if err != nil {
			return nil, nil, err
		}
		windows[i] = w
	}

	for i := range windows {
		end := windows[i].End
		if end > raw.Length {
			if i < len(windows)-1 {
				end = windows[i+1].Start
			} else {
				end = raw.Length
			}
		}
		if end <= windows[i].Start {
			end = windows[i].Start + 1
			msg := fmt.Sprintf("stage %s: end clamped to start+1", windows[i].StageID)
			windows[i].Warnings = append(windows[i].Warnings, msg)
			warnings = append(warnings, msg)
		}
		windows[i].End = end
		windows[i].Features = stageFeatures(windows[i].Start, end, ordered[i], d.samplingInterval)
		timeline[windows[i].StageID] = windows[i]
	}

	return timeline, warnings, nil
}

func (d *Detector) detectOne(raw *specmodel.RawData, env expr.Environment, def specmodel.StageDef) (specmodel.StageWindow, error) {
	switch def.Type {
	case "time_range", "":
		return d.byTime(raw, def)
	case "trigger_rule":
		return d.byTriggerRule(raw, env, def)
	case "temperature_range":
		return d.byTemperatureRange(raw, env, def)
	default:
		return specmodel.StageWindow{}, fmt.Errorf("stage %s: unknown type %q", def.ID, def.Type)
	}
}

// byTime converts the stage's configured time range into a half-open index
// window [start, end) via binary search into the timestamp channel: each
// endpoint maps to the first sample at or after it, clamped to [0, N].
func (d *Detector) byTime(raw *specmodel.RawData, def specmodel.StageDef) (specmodel.StageWindow, error) {
	if def.TimeRange == nil {
		return specmodel.StageWindow{}, fmt.Errorf("stage %s: by_time requires a time_range", def.ID)
	}
	startTS, err := resolveTimestamp(def.TimeRange.Start, def.TimeRange.Unit, raw)
	if err != nil {
		return specmodel.StageWindow{}, fmt.Errorf("stage %s: %w", def.ID, err)
	}
	endTS, err := resolveTimestamp(def.TimeRange.End, def.TimeRange.Unit, raw)
	if err != nil {
		return specmodel.StageWindow{}, fmt.Errorf("stage %s: %w", def.ID, err)
	}

	start := clampIndex(searchTimestamp(raw.Timestamps, startTS), raw.Length)
	end := clampIndex(searchTimestamp(raw.Timestamps, endTS), raw.Length)
	return specmodel.StageWindow{StageID: def.ID, Start: start, End: end}, nil
}

// byTriggerRule evaluates the stage's trigger_rule string itself as a
// condition over the environment (it is not looked up as a rule id) and
// locates the first-true, first-false-after-start transition.
func (d *Detector) byTriggerRule(raw *specmodel.RawData, env expr.Environment, def specmodel.StageDef) (specmodel.StageWindow, error) {
	if def.TriggerRule == "" {
		return specmodel.StageWindow{}, fmt.Errorf("stage %s: trigger_rule type requires trigger_rule condition", def.ID)
	}
	value, _, err := d.evaluator.Evaluate(def.TriggerRule, env, "")
	if err != nil {
		return specmodel.StageWindow{}, fmt.Errorf("stage %s: %w", def.ID, err)
	}
	flat := value.Flatten()
	if !flat.IsList() {
		// A scalar boolean applies to the whole series.
		if flat.Truthy() {
			return specmodel.StageWindow{StageID: def.ID, Start: 0, End: raw.Length}, nil
		}
		return specmodel.StageWindow{StageID: def.ID, Start: 0, End: 0}, nil
	}

	start := -1
	end := len(flat.List)
	for i, v := range flat.List {
		if v.Truthy() {
			start = i
			break
		}
	}
	if start == -1 {
		return specmodel.StageWindow{StageID: def.ID, Start: 0, End: 0}, nil
	}
	for i := start; i < len(flat.List); i++ {
		if !flat.List[i].Truthy() {
			end = i
			break
		}
	}
	return specmodel.StageWindow{StageID: def.ID, Start: start, End: end}, nil
}

// byTemperatureRange is a convenience form equivalent to an internal
// IN_RANGE over a named sensor group.
func (d *Detector) byTemperatureRange(raw *specmodel.RawData, env expr.Environment, def specmodel.StageDef) (specmodel.StageWindow, error) {
	if def.TemperatureRange == nil {
		return specmodel.StageWindow{}, fmt.Errorf("stage %s: temperature_range type requires temperature_range", def.ID)
	}
	tr := def.TemperatureRange
	series, ok := env[tr.SensorGroup]
	if !ok {
		return specmodel.StageWindow{}, fmt.Errorf("stage %s: undefined sensor group %q", def.ID, tr.SensorGroup)
	}
	flat := series.Flatten()
	if !flat.IsList() {
		return specmodel.StageWindow{}, fmt.Errorf("stage %s: sensor group %q is not a series", def.ID, tr.SensorGroup)
	}

	start, end := -1, 0
	for i, v := range flat.List {
		v = v.Flatten()
		if !v.IsNumeric() {
			continue
		}
		within := withinBounds(v.AsFloat(), tr)
		if within && start == -1 {
			start = i
		}
		if within {
			end = i + 1
		}
	}
	if start == -1 {
		return specmodel.StageWindow{StageID: def.ID, Start: 0, End: 0}, nil
	}
	return specmodel.StageWindow{StageID: def.ID, Start: start, End: end}, nil
}

func withinBounds(v float64, tr *specmodel.TemperatureRange) bool {
	if tr.LeftOpen {
		if v <= tr.Lower {
			return false
		}
	} else if v < tr.Lower {
		return false
	}
	if tr.RightOpen {
		if v >= tr.Upper {
			return false
		}
	} else if v > tr.Upper {
		return false
	}
	return true
}

// searchTimestamp returns the index of the first timestamp >= target via
// binary search (sort.Search), unclamped.
func searchTimestamp(timestamps []int64, target int64) int {
	return sort.Search(len(timestamps), func(i int) bool { return timestamps[i] >= target })
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

// resolveTimestamp converts a time_range endpoint expressed in the
// configured unit into a Unix-seconds timestamp.
func resolveTimestamp(value string, unit string, raw *specmodel.RawData) (int64, error) {
	switch unit {
	case "datetime":
		t, err := parseDatetime(value)
		if err != nil {
			return 0, fmt.Errorf("invalid datetime %q: %w", value, err)
		}
		return t.Unix(), nil
	case "unix_seconds":
		var ts int64
		if _, err := fmt.Sscanf(value, "%d", &ts); err != nil {
			return 0, fmt.Errorf("invalid unix timestamp %q: %w", value, err)
		}
		return ts, nil
	case "minutes_relative", "":
		var minutes float64
		if _, err := fmt.Sscanf(value, "%g", &minutes); err != nil {
			return 0, fmt.Errorf("invalid minute offset %q: %w", value, err)
		}
		if len(raw.Timestamps) == 0 {
			return 0, nil
		}
		return raw.Timestamps[0] + int64(minutes*60), nil
	default:
		return 0, fmt.Errorf("unknown time_range unit %q", unit)
	}
}

// datetimeLayouts are tried in order against a "datetime"-unit time_range
// endpoint. RFC3339 covers offset-bearing timestamps; the two naive layouts
// cover timezone-less ISO datetimes like "2024-01-01T00:10:00", which
// time.Parse(time.RFC3339, ...) alone rejects for lack of an offset/"Z".
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func parseDatetime(value string) (time.Time, error) {
	var firstErr error
	for _, layout := range datetimeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

func stageFeatures(start, end int, def specmodel.StageDef, samplingInterval float64) map[string]interface{} {
	dataPoints := end - start
	features := map[string]interface{}{
		"duration_minutes": float64(dataPoints) * samplingInterval,
		"data_points":      dataPoints,
	}
	if def.TimeRange != nil {
		features["unit"] = def.TimeRange.Unit
	}
	return features
}

package specmodel

// RawData is the run's ingested sensor data: channel name to ordered sample
// sequence, plus the designated timestamp channel. All channels share the
// same length; the timestamp channel is monotone non-decreasing.
type RawData struct {
	Channels         map[string][]float64
	TimestampChannel string
	Timestamps       []int64 // unix seconds, parallel to every channel slice
	Length           int
}

// Channel returns the named channel's samples and whether it exists.
func (r *RawData) Channel(name string) ([]float64, bool) {
	v, ok := r.Channels[name]
	return v, ok
}

// Slice returns a RawData restricted to the half-open index range [start, end).
func (r *RawData) Slice(start, end int) *RawData {
	out := &RawData{
		Channels:         make(map[string][]float64, len(r.Channels)),
		TimestampChannel: r.TimestampChannel,
		Length:           end - start,
	}
	for name, samples := range r.Channels {
		out.Channels[name] = samples[start:end]
	}
	if r.Timestamps != nil {
		out.Timestamps = r.Timestamps[start:end]
	}
	return out
}

// TimeSeries is a derived per-timestamp value bundle: an ordered sequence of
// {timestamp, value} records where value is itself a scalar or a list.
type TimeSeries struct {
	Timestamps []int64
	Values     []interface{}
}

// Len returns the number of records in the series.
func (t *TimeSeries) Len() int {
	return len(t.Values)
}

// Slice returns a TimeSeries restricted to the half-open index range [start, end).
func (t *TimeSeries) Slice(start, end int) *TimeSeries {
	return &TimeSeries{
		Timestamps: t.Timestamps[start:end],
		Values:     t.Values[start:end],
	}
}

// StageWindow is the resolved {start_index, end_index} interval for one
// stage, plus advisory features.
type StageWindow struct {
	StageID  string
	Start    int
	End      int
	Features map[string]interface{}
	Warnings []string
}

// StageTimeline maps stage id to its resolved window.
type StageTimeline map[string]StageWindow

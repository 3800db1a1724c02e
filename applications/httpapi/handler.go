// Package httpapi is a minimal net/http surface demonstrating the engine as
// a runnable service: one endpoint, POST /v1/runs, accepting the
// conceptual request shape of spec.md §6.2 and returning its response
// shape. Per spec.md §1 this is explicitly out of scope for the hard
// engineering the rest of the module implements; it exists only so the
// library has a runnable demonstration surface.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/curetrace/engine/applications/runner"
	"github.com/curetrace/engine/domain/specmodel"
)

// handler bundles the HTTP endpoints for the analytics runner.
type handler struct {
	runner *runner.Runner
}

// runRequest is the wire shape POST /v1/runs accepts.
type runRequest struct {
	WorkflowID       string                   `json:"workflow_id"`
	SpecificationID  string                   `json:"specification_id"`
	SensorGrouping   specmodel.SensorGrouping `json:"sensor_grouping"`
	ProcessID        string                   `json:"process_id"`
	SeriesID         string                   `json:"series_id"`
	CalculationDate  string                   `json:"calculation_date"`
	SamplingInterval float64                  `json:"sampling_interval"`
	RawData          runRequestRawData        `json:"raw_data"`
}

// runRequestRawData is the wire shape of specmodel.RawData.
type runRequestRawData struct {
	Channels         map[string][]float64 `json:"channels"`
	TimestampChannel string               `json:"timestamp_channel"`
	Timestamps       []int64              `json:"timestamps"`
}

func (h *handler) postRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	raw := &specmodel.RawData{
		Channels:         req.RawData.Channels,
		TimestampChannel: req.RawData.TimestampChannel,
		Timestamps:       req.RawData.Timestamps,
		Length:           len(req.RawData.Timestamps),
	}

	resp := h.runner.Run(r.Context(), runner.Request{
		WorkflowID:       req.WorkflowID,
		SpecificationID:  req.SpecificationID,
		SensorGrouping:   req.SensorGrouping,
		ProcessID:        req.ProcessID,
		SeriesID:         req.SeriesID,
		CalculationDate:  req.CalculationDate,
		RawData:          raw,
		SamplingInterval: req.SamplingInterval,
	})

	status := http.StatusOK
	if resp.Status != "completed" {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

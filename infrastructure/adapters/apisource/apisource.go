// Package apisource implements a generic HTTP+JSON API Source using gjson
// to pull {data, metadata} out of an arbitrary response body without
// requiring the upstream API to match a fixed Go struct.
package apisource

import (
	"context"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/curetrace/engine/infrastructure/adapters"
	engineerrors "github.com/curetrace/engine/infrastructure/errors"
)

// Source fetches a JSON document from URL and extracts data/metadata per the
// adapter contract's loose {data, metadata} shape.
type Source struct {
	URL             string
	Client          *http.Client
	TimestampColumn string
}

// New constructs an apisource.Source with a default http.Client.
func New(url, timestampColumn string) *Source {
	return &Source{URL: url, Client: http.DefaultClient, TimestampColumn: timestampColumn}
}

// Read performs the HTTP GET and parses the response with gjson.
func (s *Source) Read(ctx context.Context) (adapters.ReadResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return adapters.ReadResult{}, engineerrors.AdapterError("apisource", "request", err)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return adapters.ReadResult{}, engineerrors.AdapterError("apisource", "fetch", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return adapters.ReadResult{}, engineerrors.AdapterError("apisource", "read_body", err)
	}
	if !gjson.ValidBytes(body) {
		return adapters.ReadResult{}, engineerrors.AdapterError("apisource", "parse", errInvalidJSON)
	}

	root := gjson.ParseBytes(body)
	dataNode := root.Get("data")

	data := map[string][]float64{}
	dataNode.ForEach(func(key, value gjson.Result) bool {
		channel := key.String()
		samples := make([]float64, 0, len(value.Array()))
		for _, v := range value.Array() {
			samples = append(samples, v.Float())
		}
		data[channel] = samples
		return true
	})

	columns := make([]string, 0, len(data))
	for c := range data {
		columns = append(columns, c)
	}

	rowCount := 0
	if ts, ok := data[s.TimestampColumn]; ok {
		rowCount = len(ts)
	}

	metadataNode := root.Get("metadata")
	timestampColumn := s.TimestampColumn
	if v := metadataNode.Get("timestamp_column"); v.Exists() {
		timestampColumn = v.String()
	}

	return adapters.ReadResult{
		Data: data,
		Metadata: adapters.Metadata{
			RowCount:        rowCount,
			ColumnCount:     len(columns),
			Columns:         columns,
			TimestampColumn: timestampColumn,
		},
	}, nil
}

var errInvalidJSON = engineerrors.New(engineerrors.ErrCodeAdapterError, "response body is not valid JSON", 502)

// Package adapters defines the Source/Sink contracts external
// collaborators implement, plus concrete implementations over a local CSV
// file, Postgres, Redis pub/sub, a generic JSON API, and an HTTP webhook.
package adapters

import (
	"context"
	"strings"
)

// Metadata describes the shape of data a Source produced, independent of
// its transport.
type Metadata struct {
	RowCount         int
	ColumnCount      int
	Columns          []string
	TimestampColumn  string
}

// ReadResult is a Source's output: named channels of equal-length samples,
// plus descriptive metadata.
type ReadResult struct {
	Data     map[string][]float64
	Metadata Metadata
}

// Source reads sensor data from some external collaborator. Implementations
// must validate their own configuration and produce channels of equal
// length sharing a monotone timestamp channel.
type Source interface {
	Read(ctx context.Context) (ReadResult, error)
}

// Sink writes a formatted result somewhere external, returning the
// resolved path or destination identifier.
type Sink interface {
	Write(ctx context.Context, formatted interface{}, pathTemplate string) (string, error)
}

// PathContext carries the substitution values a Sink's path template may
// reference: {process_id}, {series_id}, {calculation_date}.
type PathContext struct {
	ProcessID       string
	SeriesID        string
	CalculationDate string
}

// ResolvePath substitutes PathContext's fields into a path template.
func ResolvePath(template string, pc PathContext) string {
	replacer := strings.NewReplacer(
		"{process_id}", pc.ProcessID,
		"{series_id}", pc.SeriesID,
		"{calculation_date}", pc.CalculationDate,
	)
	return replacer.Replace(template)
}

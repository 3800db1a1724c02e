// Package csvsource implements a local-file CSV Source.
package csvsource

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/curetrace/engine/infrastructure/adapters"
	engineerrors "github.com/curetrace/engine/infrastructure/errors"
)

// Source reads sensor channels from a local CSV file. The first row is
// treated as the header; TimestampColumn names the column holding the
// monotone timestamp series.
type Source struct {
	Path            string
	TimestampColumn string
}

// New constructs a csvsource.Source.
func New(path, timestampColumn string) *Source {
	return &Source{Path: path, TimestampColumn: timestampColumn}
}

// Read parses the CSV file into equal-length float64 channels.
func (s *Source) Read(ctx context.Context) (adapters.ReadResult, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return adapters.ReadResult{}, engineerrors.AdapterError("csvsource", "open", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return adapters.ReadResult{}, engineerrors.AdapterError("csvsource", "read", err)
	}
	if len(rows) < 1 {
		return adapters.ReadResult{}, engineerrors.AdapterError("csvsource", "read", fmt.Errorf("empty csv file"))
	}

	header := rows[0]
	data := make(map[string][]float64, len(header))
	for _, col := range header {
		data[col] = make([]float64, 0, len(rows)-1)
	}

	for _, row := range rows[1:] {
		select {
		case <-ctx.Done():
			return adapters.ReadResult{}, ctx.Err()
		default:
		}
		for i, col := range header {
			if i >= len(row) {
				continue
			}
			v, err := strconv.ParseFloat(row[i], 64)
			if err != nil {
				return adapters.ReadResult{}, engineerrors.AdapterError("csvsource", "parse", fmt.Errorf("column %s row value %q: %w", col, row[i], err))
			}
			data[col] = append(data[col], v)
		}
	}

	if _, ok := data[s.TimestampColumn]; !ok {
		return adapters.ReadResult{}, engineerrors.AdapterError("csvsource", "validate", fmt.Errorf("timestamp column %q not present", s.TimestampColumn))
	}

	return adapters.ReadResult{
		Data: data,
		Metadata: adapters.Metadata{
			RowCount:        len(rows) - 1,
			ColumnCount:     len(header),
			Columns:         header,
			TimestampColumn: s.TimestampColumn,
		},
	}, nil
}

// Package dbadapter implements a Postgres-backed Source/Sink pair using
// sqlx and the lib/pq driver.
package dbadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/curetrace/engine/infrastructure/adapters"
	engineerrors "github.com/curetrace/engine/infrastructure/errors"
)

// Adapter is both a Source and a Sink against a Postgres database reachable
// via dsn.
type Adapter struct {
	db *sqlx.DB

	// ReadQuery must return rows with a "channel" text column, a "sample"
	// float column, and a "ts" bigint column (unix seconds); rows are
	// pivoted into {channel: []sample} ordered by ts.
	ReadQuery string

	// WriteTable receives the resolved result path, formatted result (as a
	// jsonb column), and a written_at timestamp.
	WriteTable string
}

// Open connects to Postgres and constructs an Adapter.
func Open(dsn, readQuery, writeTable string) (*Adapter, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, engineerrors.AdapterError("dbadapter", "connect", err)
	}
	return &Adapter{db: db, ReadQuery: readQuery, WriteTable: writeTable}, nil
}

// Close releases the underlying connection pool.
func (a *Adapter) Close() error {
	return a.db.Close()
}

type sampleRow struct {
	Channel string  `db:"channel"`
	Sample  float64 `db:"sample"`
	TS      int64   `db:"ts"`
}

// Read runs ReadQuery and pivots the result rows into channel series,
// ordered by timestamp.
func (a *Adapter) Read(ctx context.Context) (adapters.ReadResult, error) {
	var rows []sampleRow
	if err := a.db.SelectContext(ctx, &rows, a.ReadQuery); err != nil {
		return adapters.ReadResult{}, engineerrors.AdapterError("dbadapter", "read", err)
	}

	data := map[string][]float64{}
	var timestamps []float64
	seenTS := map[int64]bool{}
	for _, r := range rows {
		data[r.Channel] = append(data[r.Channel], r.Sample)
		if !seenTS[r.TS] {
			seenTS[r.TS] = true
			timestamps = append(timestamps, float64(r.TS))
		}
	}
	data["timestamp"] = timestamps

	columns := make([]string, 0, len(data))
	for c := range data {
		columns = append(columns, c)
	}

	return adapters.ReadResult{
		Data: data,
		Metadata: adapters.Metadata{
			RowCount:        len(timestamps),
			ColumnCount:     len(columns),
			Columns:         columns,
			TimestampColumn: "timestamp",
		},
	}, nil
}

// Write inserts the formatted result as a jsonb column into WriteTable. It
// is a fire-and-forget append; the core never reads this row back.
func (a *Adapter) Write(ctx context.Context, formatted interface{}, pathTemplate string) (string, error) {
	payload, err := json.Marshal(formatted)
	if err != nil {
		return "", engineerrors.AdapterError("dbadapter", "marshal", err)
	}

	path := adapters.ResolvePath(pathTemplate, adapters.PathContext{})
	query := fmt.Sprintf("INSERT INTO %s (path, result, written_at) VALUES ($1, $2, $3)", a.WriteTable)
	if _, err := a.db.ExecContext(ctx, query, path, payload, time.Now().UTC()); err != nil {
		return "", engineerrors.AdapterError("dbadapter", "write", err)
	}
	return path, nil
}

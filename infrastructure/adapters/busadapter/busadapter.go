// Package busadapter implements a Redis pub/sub Source/Sink pair, plus a
// websocket push-sink variant for streaming the formatted result to a
// connected preview client.
package busadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v8"

	"github.com/curetrace/engine/infrastructure/adapters"
	engineerrors "github.com/curetrace/engine/infrastructure/errors"
)

// sample is the wire shape published onto the bus: one timestamped
// multi-channel reading.
type sample struct {
	Timestamp int64              `json:"timestamp"`
	Values    map[string]float64 `json:"values"`
}

// Source subscribes to a Redis channel and collects published samples until
// ctx is cancelled or the configured sample count is reached.
type Source struct {
	client  *redis.Client
	channel string
	want    int
}

// NewSource constructs a busadapter Source against an already-connected
// Redis client.
func NewSource(client *redis.Client, channel string, wantSamples int) *Source {
	return &Source{client: client, channel: channel, want: wantSamples}
}

// Read subscribes and collects samples until want is reached or ctx ends.
func (s *Source) Read(ctx context.Context) (adapters.ReadResult, error) {
	sub := s.client.Subscribe(ctx, s.channel)
	defer sub.Close()

	data := map[string][]float64{}
	var timestamps []float64

	ch := sub.Channel()
	for len(timestamps) < s.want {
		select {
		case <-ctx.Done():
			return s.finish(data, timestamps), nil
		case msg, ok := <-ch:
			if !ok {
				return s.finish(data, timestamps), nil
			}
			var smp sample
			if err := json.Unmarshal([]byte(msg.Payload), &smp); err != nil {
				return adapters.ReadResult{}, engineerrors.AdapterError("busadapter", "decode", err)
			}
			for channel, v := range smp.Values {
				data[channel] = append(data[channel], v)
			}
			timestamps = append(timestamps, float64(smp.Timestamp))
		}
	}
	return s.finish(data, timestamps), nil
}

func (s *Source) finish(data map[string][]float64, timestamps []float64) adapters.ReadResult {
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
	}
}

// Sink publishes the formatted result onto a Redis channel, derived from
// the resolved path template.
type Sink struct {
	client *redis.Client
}

// NewSink constructs a busadapter Sink.
func NewSink(client *redis.Client) *Sink {
	return &Sink{client: client}
}

// Write publishes formatted onto the channel resolved from pathTemplate.
func (s *Sink) Write(ctx context.Context, formatted interface{}, pathTemplate string) (string, error) {
	channel := adapters.ResolvePath(pathTemplate, adapters.PathContext{})
	payload, err := json.Marshal(formatted)
	if err != nil {
		return "", engineerrors.AdapterError("busadapter", "marshal", err)
	}
	if err := s.client.Publish(ctx, channel, payload).Err(); err != nil {
		return "", engineerrors.AdapterError("busadapter", "publish", err)
	}
	return channel, nil
}

// StreamingSink pushes a formatted result to connected websocket clients
// (long-poll preview consumers of a ComplianceReport).
type StreamingSink struct {
	hub *Hub
}

// NewStreamingSink constructs a StreamingSink backed by hub.
func NewStreamingSink(hub *Hub) *StreamingSink {
	return &StreamingSink{hub: hub}
}

// Write broadcasts formatted to every connection subscribed under the
// resolved path, returning that path as the destination identifier.
func (s *StreamingSink) Write(ctx context.Context, formatted interface{}, pathTemplate string) (string, error) {
	path := adapters.ResolvePath(pathTemplate, adapters.PathContext{})
	payload, err := json.Marshal(formatted)
	if err != nil {
		return "", engineerrors.AdapterError("busadapter", "marshal", err)
	}
	if err := s.hub.Broadcast(path, payload); err != nil {
		return "", engineerrors.AdapterError("busadapter", "broadcast", err)
	}
	return path, nil
}

var errNoSubscribers = fmt.Errorf("no subscribers for path")

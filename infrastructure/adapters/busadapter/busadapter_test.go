package busadapter

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v8"
	"github.com/stretchr/testify/require"
)

// TestSourceSinkIntegration exercises Source and Sink against a live Redis
// instance. It is skipped unless TEST_REDIS_ADDR points at one; unlike the
// Postgres adapter's tests, which run against go-sqlmock, there is no
// in-process stand-in for Redis here.
func TestSourceSinkIntegration(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set; skipping redis integration test")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx).Err())

	channel := "curetrace:test:run"
	sink := NewSink(client)
	src := NewSource(client, channel, 1)

	resultCh := make(chan struct {
		result interface{}
		err    error
	}, 1)
	go func() {
		r, err := src.Read(ctx)
		resultCh <- struct {
			result interface{}
			err    error
		}{r, err}
	}()

	time.Sleep(100 * time.Millisecond)
	payload, err := json.Marshal(sample{Timestamp: 1, Values: map[string]float64{"tc1": 182}})
	require.NoError(t, err)
	require.NoError(t, client.Publish(ctx, channel, payload).Err())

	out := <-resultCh
	require.NoError(t, out.err)

	published, err := sink.Write(ctx, map[string]interface{}{"status": "completed"}, channel)
	require.NoError(t, err)
	require.Equal(t, channel, published)
}

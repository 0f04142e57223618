//go:build influxdbintegration

package influxdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// requires a local influxdb listening on localhost:8086
func TestStoreRoundTrip(t *testing.T) {
	store, err := NewStore(WithDatabase("blogpub_test"))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, store.Close())
	}()

	require.NoError(t, store.Ping(context.Background(), time.Second))

	require.NoError(t, store.WriteBatch(context.Background(), []MetricPoint{
		{
			Measurement: "testview",
			Tags:        map[string]string{"mytag": "myvalue"},
			Fields:      map[string]interface{}{"counter": int64(34)},
			Timestamp:   time.Now(),
		},
	}))
}

package influxdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

type fakeStore struct {
	batches [][]MetricPoint
	err     error
}

func (f *fakeStore) Database() string { return "fake" }

func (f *fakeStore) Ping(_ context.Context, _ time.Duration) error { return nil }

func (f *fakeStore) WriteBatch(_ context.Context, points []MetricPoint) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, points)
	return nil
}

func (f *fakeStore) Close() error { return nil }

func countFixture() *view.Data {
	measure := stats.Int64("influxdb.test.calls", "number of calls", stats.UnitDimensionless)
	return &view.Data{
		View: &view.View{
			Name:        "influxdb.test.calls",
			Description: "number of calls",
			Measure:     measure,
			Aggregation: view.Count(),
		},
		End: time.Date(2024, 4, 2, 12, 0, 0, 0, time.UTC),
		Rows: []*view.Row{
			{
				Tags: []tag.Tag{{Key: tag.MustNewKey("method"), Value: "publish"}},
				Data: &view.CountData{Value: 3},
			},
		},
	}
}

func TestExportViewCount(t *testing.T) {
	sink := &fakeStore{}
	e := NewExporter(
		WithStore(sink),
		WithTags(map[string]string{"service": "blogpub"}),
	)

	e.ExportView(countFixture())

	require.Len(t, sink.batches, 1)
	require.Len(t, sink.batches[0], 1)

	pt := sink.batches[0][0]
	assert.Equal(t, "influxdb.test.calls", pt.Measurement)
	assert.Equal(t, "count", pt.Tags[aggregationTag])
	assert.Equal(t, "number of calls", pt.Tags[descriptionTag])
	assert.Equal(t, "blogpub", pt.Tags["service"])
	assert.Equal(t, "publish", pt.Tags["method"])
	assert.Equal(t, float64(3), pt.Fields[valueField])
	assert.Equal(t, time.Date(2024, 4, 2, 12, 0, 0, 0, time.UTC), pt.Timestamp)
}

func TestExportViewDistribution(t *testing.T) {
	sink := &fakeStore{}
	e := NewExporter(WithStore(sink))

	measure := stats.Float64("influxdb.test.timing", "duration of a call in milliseconds", stats.UnitMilliseconds)
	e.ExportView(&view.Data{
		View: &view.View{
			Name:        "influxdb.test.timing",
			Measure:     measure,
			Aggregation: view.Distribution(10, 100, 1000),
		},
		End: time.Now(),
		Rows: []*view.Row{
			{Data: &view.DistributionData{Count: 4, Min: 12, Max: 340, Mean: 120}},
		},
	})

	require.Len(t, sink.batches, 1)
	pt := sink.batches[0][0]
	assert.Equal(t, "distribution", pt.Tags[aggregationTag])
	assert.Equal(t, stats.UnitMilliseconds, pt.Tags[unitTag])
	assert.Equal(t, float64(12), pt.Fields[minField])
	assert.Equal(t, float64(340), pt.Fields[maxField])
	assert.Equal(t, float64(120), pt.Fields[meanField])
	assert.Equal(t, int64(4), pt.Fields[countField])
}

func TestExportViewStoreFailure(t *testing.T) {
	var handled error
	sink := &fakeStore{err: assert.AnError}
	e := NewExporter(
		WithStore(sink),
		WithErrorHandler(func(err error) { handled = err }),
	)

	e.ExportView(countFixture())

	require.Error(t, handled)
	assert.Equal(t, assert.AnError, handled)
}

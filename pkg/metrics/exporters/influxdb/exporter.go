package influxdb

import (
	"context"
	"fmt"

	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var _ view.Exporter = &Exporter{}

const (
	// opencensus view metadata represented as influxdb tags
	descriptionTag = "description"
	unitTag        = "unit"
	aggregationTag = "aggregation"

	// opencensus aggregated data represented as influxdb fields
	valueField = "value"
	minField   = "min"
	maxField   = "max"
	meanField  = "mean"
	countField = "count"
)

// Exporter is an opencensus view exporter for influxdb
type Exporter struct {
	store        Store
	errorHandler func(error)
	customTags   map[string]string
}

// NewExporter creates a new influxdb exporter.
//
// Use options to configure:
//   - an influxdb Store instance, configured with the desired settings
//   - an error handler. If set to nil, a no-op handler is set by default
//   - a map of custom tags added to every written record (may be nil)
func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{
		errorHandler: func(_ error) {},
	}
	for _, apply := range opts {
		apply(e)
	}
	if e.store == nil {
		sink, _ := NewStore()
		e.store = sink
	}
	return e
}

// ExportView sends collected metrics to the backend sink
func (e *Exporter) ExportView(viewData *view.Data) {
	points := make([]MetricPoint, 0, len(viewData.Rows))
	for _, row := range viewData.Rows {
		fields := make(map[string]interface{}, 5)
		tags := make(map[string]string, len(e.customTags)+len(row.Tags)+3)

		if viewData.View.Description != "" {
			tags[descriptionTag] = viewData.View.Description
		}
		tags[unitTag] = viewData.View.Measure.Unit()

		switch d := row.Data.(type) {
		case *view.CountData:
			fields[valueField] = float64(d.Value)
			tags[aggregationTag] = "count"
		case *view.SumData:
			fields[valueField] = d.Value
			tags[aggregationTag] = "sum"
		case *view.LastValueData:
			fields[valueField] = d.Value
			tags[aggregationTag] = "last"
		case *view.DistributionData:
			fields[minField] = d.Min
			fields[maxField] = d.Max
			fields[meanField] = d.Mean
			fields[countField] = d.Count
			tags[aggregationTag] = "distribution"
		default:
			e.errorHandler(fmt.Errorf("unknown AggregationData type: %T", row.Data))
			return
		}

		mergeInto(tags, e.customTags)
		mergeInto(tags, convertTags(row.Tags))

		points = append(points, MetricPoint{
			Measurement: viewData.View.Name,
			Tags:        tags,
			Fields:      fields,
			Timestamp:   viewData.End,
		})
	}

	if err := e.store.WriteBatch(context.Background(), points); err != nil {
		e.errorHandler(err)
	}
}

// mergeInto copies src entries into dst, src winning on key clashes.
func mergeInto(dst, src map[string]string) {
	for k, v := range src {
		dst[k] = v
	}
}

func convertTags(tags []tag.Tag) map[string]string {
	res := make(map[string]string, len(tags))
	for _, t := range tags {
		res[t.Key.Name()] = t.Value
	}
	return res
}

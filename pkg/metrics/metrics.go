package metrics

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/docker/go-units"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"

	"github.com/xsymphony/blogpub/pkg/metrics/exporters/influxdb"
)

const (
	// KB stands for kilo bytes (1024 bytes)
	KB = units.KiB

	// MB stands for mega bytes (1024 kilo bytes)
	MB = units.MiB

	// GB stands for giga bytes (1024 mega bytes)
	GB = units.GiB
)

var (
	// global settings for metrics
	mp       *settings
	initOnce sync.Once
)

type settings struct {
	basePath  string
	contexter func() context.Context
	exporter  view.Exporter

	allViews []*view.View

	// registered metric groups, keyed by location
	modules   map[string]interface{}
	exclusive sync.Mutex

	d time.Duration
}

// Init global settings for metrics collection, such as the exporter and
// the reporting period.
//
// Init may be called multiple times: only the first time matters. Metric
// groups may be registered at init time or later on.
func Init(opts ...Option) {
	initOnce.Do(func() {
		mp = newSettings(opts...)
	})
}

// Flush all collected metrics to the backend.
func Flush() {
	active().Flush()
}

// active returns the global settings, initializing defaults when Init
// was never called.
func active() *settings {
	Init()
	return mp
}

func defaultSettings() *settings {
	return &settings{
		modules:   make(map[string]interface{}),
		contexter: context.Background,
		// the reporting period is left to the opencensus default (10s)
	}
}

// DefaultExporter returns an exporter posting to a local influxdb, with
// database "blogpub" and a single "metrics" time series.
func DefaultExporter(opts ...influxdb.Option) view.Exporter {
	sink, _ := influxdb.NewStore(
		influxdb.WithDatabase("blogpub"),
		influxdb.WithNameAsTag("metrics"),
	)
	return influxdb.NewExporter(
		append([]influxdb.Option{
			influxdb.WithStore(sink),
			influxdb.WithTags(map[string]string{"service": "blogpub"}),
		}, opts...)...,
	)
}

func newSettings(opts ...Option) *settings {
	s := defaultSettings()
	for _, apply := range opts {
		apply(s)
	}

	if s.exporter == nil {
		s.exporter = DefaultExporter()
	}

	view.RegisterExporter(s.exporter)
	if s.d >= time.Second {
		view.SetReportingPeriod(s.d)
	}
	return s
}

// ensure registers the group built by construct under location, once.
// Subsequent calls for the same location return the first registration.
func (s *settings) ensure(location string, construct func(name string) interface{}) interface{} {
	s.exclusive.Lock()
	defer s.exclusive.Unlock()
	location = path.Join(s.basePath, location)

	if existing, ok := s.modules[location]; ok {
		return existing
	}
	m := construct(location)
	s.modules[location] = m
	return m
}

func (s *settings) register(views ...*view.View) {
	s.allViews = append(s.allViews, views...)
	_ = view.Register(views...)
}

// Flush collects all remaining data for registered views and exports them.
func (s *settings) Flush() {
	for _, v := range s.allViews {
		rows, err := view.RetrieveData(v.Name)
		if err != nil {
			continue // ignore errors when pushing metrics
		}
		data := &view.Data{
			View:  v,
			Start: time.Now(), // the background worker does not expose its last snapshot time
			End:   time.Now(),
			Rows:  rows,
		}
		s.exporter.ExportView(data)
	}
}

func durationDistribution() *view.Aggregation {
	// buckets in milliseconds
	return view.Distribution(
		10, 50,
		100, 300, 500, 700, 900,
		1000, 3000, 5000, 7000, 9000,
		10000, 30000, 60000, 120000,
	)
}

func bytesDistribution() *view.Aggregation {
	// buckets in bytes
	return view.Distribution(
		500,
		1*KB, 5*KB, 10*KB, 50*KB,
		100*KB, 500*KB,
		1*MB, 5*MB, 10*MB, 50*MB,
		100*MB, 500*MB, 1*GB,
	)
}

func tagKeys(names ...string) []tag.Key {
	keys := make([]tag.Key, 0, len(names))
	for _, n := range names {
		keys = append(keys, tag.MustNewKey(n))
	}
	return keys
}

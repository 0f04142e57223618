package cmd

import (
	"time"

	"github.com/xsymphony/blogpub/pkg/metrics"
	"github.com/xsymphony/blogpub/pkg/metrics/exporters/influxdb"
)

type metricsFlags struct {
	Enabled  *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"` // pointer because we want to distinguish unset from false
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	User     string `json:"user,omitempty" yaml:"user,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	m        *M
}

func (m metricsFlags) IsEnabled() bool {
	return m.Enabled != nil && *m.Enabled
}

// M describes metrics for the cmd package
type M struct {
	Usage *metrics.UsageMetrics

	// more metrics here
}

// initMetrics wires the telemetry sink according to the metrics flags.
// When telemetry is disabled or the sink cannot be built, commands run
// without it.
func initMetrics() {
	flags := &blogpubFlags.root.metrics
	if !flags.IsEnabled() {
		return
	}
	storeOpts := []influxdb.StoreOption{
		influxdb.WithDatabase("blogpub"),
		influxdb.WithNameAsTag("metrics"),
	}
	if flags.URL != "" {
		storeOpts = append(storeOpts, influxdb.WithURL(flags.URL))
	}
	if flags.User != "" {
		storeOpts = append(storeOpts, influxdb.WithUser(flags.User))
	}
	if flags.Password != "" {
		storeOpts = append(storeOpts, influxdb.WithPassword(flags.Password))
	}
	sink, err := influxdb.NewStore(storeOpts...)
	if err != nil {
		infoLogger.Printf("telemetry disabled: %v", err)
		return
	}
	metrics.Init(metrics.WithExporter(
		influxdb.NewExporter(
			influxdb.WithStore(sink),
			influxdb.WithTags(map[string]string{"service": "blogpub"}),
		),
	))
	flags.m = &M{Usage: metrics.EnsureUsage("cli")}
}

// cliUsage records a usage metric in the CLI context in a single go.
// This is intended to be used in some defer statement.
//
// Metrics are flushed as soon as the command is done.
func cliUsage(t0 time.Time, command string, err error) {
	if blogpubFlags.root.metrics.IsEnabled() && blogpubFlags.root.metrics.m != nil {
		blogpubFlags.root.metrics.m.Usage.UsedAll(t0, command)(err)
		metrics.Flush()
	}
}

// Package metrics collects usage telemetry with opencensus and ships it
// to an influxdb backend.
//
// Collection is opt-in: the CLI initializes the package only when
// telemetry is enabled in the configuration, and instrumented types
// embed Enable so recording can be toggled per instance. Metric groups
// are registered once by location with the Ensure helpers; a short-lived
// process calls Flush before exiting to push whatever the background
// exporter has not reported yet.
package metrics

package metrics

import (
	"path"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
)

// UsageMetrics is a common set of metrics reporting about usage
type UsageMetrics struct {
	Count    *stats.Int64Measure
	Failures *stats.Int64Measure
	Timing   *stats.Float64Measure
}

// EnsureUsage registers a usage metrics group under some location, once.
// Subsequent calls for the same location return the first registration.
func EnsureUsage(location string) *UsageMetrics {
	s := active()
	return s.ensure(location, func(name string) interface{} {
		return newUsageMetrics(name, s)
	}).(*UsageMetrics)
}

func newUsageMetrics(location string, s *settings) *UsageMetrics {
	u := &UsageMetrics{
		Count:    stats.Int64(path.Join(location, "usageCount"), "number of calls", stats.UnitDimensionless),
		Failures: stats.Int64(path.Join(location, "usageFailures"), "number of failed calls", stats.UnitDimensionless),
		Timing:   stats.Float64(path.Join(location, "timing"), "duration of a call in milliseconds", stats.UnitMilliseconds),
	}
	keys := tagKeys("kind", "method")
	s.register(
		&view.View{
			Name:        u.Count.Name(),
			Description: u.Count.Description(),
			Measure:     u.Count,
			Aggregation: view.Count(),
			TagKeys:     keys,
		},
		&view.View{
			Name:        u.Failures.Name(),
			Description: u.Failures.Description(),
			Measure:     u.Failures,
			Aggregation: view.Count(),
			TagKeys:     keys,
		},
		&view.View{
			Name:        u.Timing.Name(),
			Description: u.Timing.Description(),
			Measure:     u.Timing,
			Aggregation: durationDistribution(),
			TagKeys:     keys,
		},
	)
	return u
}

func (u *UsageMetrics) tags(method string) map[string]string {
	return map[string]string{"kind": "usage", "method": method}
}

// Inc records the usage of some method, without timings or failure reporting
func (u *UsageMetrics) Inc(method string) {
	Inc(u.Count, u.tags(method))
}

// Used records usage of some instrumented entry point.
func (u *UsageMetrics) Used(start time.Time, method string) {
	Since(start, u.Timing, u.tags(method))
	Inc(u.Count, u.tags(method))
}

// UsedAll records usage of some instrumented entry point with failures,
// in one go.
//
// Example:
//
//	defer func(t0 time.Time) {
//	  usage.UsedAll(t0, "publish")(err)
//	}(time.Now())
func (u *UsageMetrics) UsedAll(start time.Time, method string) func(error) {
	return func(err error) {
		Since(start, u.Timing, u.tags(method))
		Inc(u.Count, u.tags(method))
		if err != nil {
			Inc(u.Failures, u.tags(method))
		}
	}
}

// Failed records a failure on some instrumented entry point
func (u *UsageMetrics) Failed(method string) {
	Inc(u.Failures, u.tags(method))
}

// FilesMetrics is a common set of metrics reporting about file activity
type FilesMetrics struct {
	FileCount *stats.Int64Measure
	FileSize  *stats.Int64Measure
}

// EnsureFiles registers a file metrics group under some location, once.
func EnsureFiles(location string) *FilesMetrics {
	s := active()
	return s.ensure(location, func(name string) interface{} {
		return newFilesMetrics(name, s)
	}).(*FilesMetrics)
}

func newFilesMetrics(location string, s *settings) *FilesMetrics {
	f := &FilesMetrics{
		FileCount: stats.Int64(path.Join(location, "fileCount"), "number of files", stats.UnitDimensionless),
		FileSize:  stats.Int64(path.Join(location, "fileSize"), "size of files in bytes", stats.UnitBytes),
	}
	keys := tagKeys("kind", "operation")
	s.register(
		&view.View{
			Name:        f.FileCount.Name(),
			Description: f.FileCount.Description(),
			Measure:     f.FileCount,
			Aggregation: view.Count(),
			TagKeys:     keys,
		},
		&view.View{
			Name:        f.FileCount.Name() + ".sum",
			Description: f.FileCount.Description() + " (cumulated)",
			Measure:     f.FileCount,
			Aggregation: view.Sum(),
			TagKeys:     keys,
		},
		&view.View{
			Name:        f.FileSize.Name(),
			Description: f.FileSize.Description(),
			Measure:     f.FileSize,
			Aggregation: bytesDistribution(),
			TagKeys:     keys,
		},
		&view.View{
			Name:        f.FileSize.Name() + ".sum",
			Description: f.FileSize.Description() + " (cumulated)",
			Measure:     f.FileSize,
			Aggregation: view.Sum(),
			TagKeys:     keys,
		},
	)
	return f
}

func (f *FilesMetrics) tags(operation string) map[string]string {
	return map[string]string{"kind": "files", "operation": operation}
}

// Inc increments the counter for files
func (f *FilesMetrics) Inc(operation string) {
	Inc(f.FileCount, f.tags(operation))
}

// Size measures the size of a file. Zero sizes are not recorded.
func (f *FilesMetrics) Size(size int64, operation string) {
	if size == 0 {
		return
	}
	Int64(f.FileSize, size, f.tags(operation))
}

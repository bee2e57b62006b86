// Package telemetry reads basic host health metrics for the server report.
package telemetry

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"go.uber.org/zap"

	"homereport/logger"
	"homereport/models"
)

// Metric names, in the order they appear in the report.
const (
	MetricDiskUsed   = "disk_used"
	MetricDiskFree   = "disk_free"
	MetricMemoryUsed = "memory_used"
	MetricUptime     = "uptime"
	MetricLoad1      = "load_1m"
)

// Probe abstracts the OS metric sources so tests can substitute fixed
// readings.
type Probe interface {
	DiskUsage(ctx context.Context, path string) (usedPercent float64, freeBytes uint64, err error)
	MemoryUsedPercent(ctx context.Context) (float64, error)
	UptimeSeconds(ctx context.Context) (uint64, error)
	LoadAverage(ctx context.Context) (float64, error)
}

// HostProbe reads metrics from the local host via gopsutil.
type HostProbe struct{}

func (HostProbe) DiskUsage(ctx context.Context, path string) (float64, uint64, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, 0, err
	}
	return usage.UsedPercent, usage.Free, nil
}

func (HostProbe) MemoryUsedPercent(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}

func (HostProbe) UptimeSeconds(ctx context.Context) (uint64, error) {
	return host.UptimeWithContext(ctx)
}

func (HostProbe) LoadAverage(ctx context.Context) (float64, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return avg.Load1, nil
}

// Collector gathers TelemetrySamples in a fixed declared order.
type Collector struct {
	probe Probe
	path  string
	now   func() time.Time
}

// NewCollector creates a collector that reports disk usage for path
// (normally "/") alongside memory, uptime, and load.
func NewCollector(probe Probe, path string) *Collector {
	return &Collector{probe: probe, path: path, now: time.Now}
}

// Collect reads every metric. A metric whose source fails is skipped
// with a warning; the remaining metrics are still reported.
func (c *Collector) Collect(ctx context.Context) ([]models.TelemetrySample, error) {
	now := c.now()
	var samples []models.TelemetrySample

	diskUsed, diskFree, err := c.probe.DiskUsage(ctx, c.path)
	if err != nil {
		logger.Warn("Skipping disk metrics", zap.String("path", c.path), zap.Error(err))
	} else {
		samples = append(samples,
			models.TelemetrySample{Name: MetricDiskUsed, Value: diskUsed, Unit: "%", Timestamp: now},
			models.TelemetrySample{Name: MetricDiskFree, Value: float64(diskFree), Unit: "bytes", Timestamp: now},
		)
	}

	memUsed, err := c.probe.MemoryUsedPercent(ctx)
	if err != nil {
		logger.Warn("Skipping memory metric", zap.Error(err))
	} else {
		samples = append(samples,
			models.TelemetrySample{Name: MetricMemoryUsed, Value: memUsed, Unit: "%", Timestamp: now})
	}

	uptime, err := c.probe.UptimeSeconds(ctx)
	if err != nil {
		logger.Warn("Skipping uptime metric", zap.Error(err))
	} else {
		samples = append(samples,
			models.TelemetrySample{Name: MetricUptime, Value: float64(uptime), Unit: "seconds", Timestamp: now})
	}

	loadAvg, err := c.probe.LoadAverage(ctx)
	if err != nil {
		logger.Warn("Skipping load metric", zap.Error(err))
	} else {
		samples = append(samples,
			models.TelemetrySample{Name: MetricLoad1, Value: loadAvg, Unit: "", Timestamp: now})
	}

	logger.Info("Telemetry collection complete", zap.Int("samples", len(samples)))
	return samples, nil
}

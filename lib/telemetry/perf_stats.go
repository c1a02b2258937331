package telemetry

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
)

var meter = otel.Meter("go.perf_stats")
var cpuGauge, _ = meter.Float64Gauge("cpu_usage")
var memoryGauge, _ = meter.Int64Gauge("allocated_mb")
var liveObjectsGauge, _ = meter.Int64Gauge("live_objects")
var goroutineGauge, _ = meter.Int64Gauge("goroutine_count")

// PerfSnapshot is a point-in-time reading of process health, persisted
// alongside orders as the performance-metrics blob.
type PerfSnapshot struct {
	CpuPercent  float64 `json:"cpu_percent"`
	AllocatedMb int64   `json:"allocated_mb"`
	LiveObjects int64   `json:"live_objects"`
	Goroutines  int64   `json:"goroutines"`
}

func ReadPerfSnapshot() PerfSnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	snap := PerfSnapshot{
		AllocatedMb: int64(memStats.Alloc / 1_000_000),
		LiveObjects: int64(memStats.Mallocs) - int64(memStats.Frees),
		Goroutines:  int64(runtime.NumGoroutine()),
	}
	// interval 0 compares against the previous call instead of blocking
	cpuUsage, err := cpu.Percent(0, false)
	if err == nil && len(cpuUsage) > 0 {
		snap.CpuPercent = cpuUsage[0]
	}
	return snap
}

func InstrumentPerfStats(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Second * 30)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				snap := ReadPerfSnapshot()

				cpuGauge.Record(ctx, snap.CpuPercent)
				memoryGauge.Record(ctx, snap.AllocatedMb)
				liveObjectsGauge.Record(ctx, snap.LiveObjects)
				goroutineGauge.Record(ctx, snap.Goroutines)
			case <-ctx.Done():
				return
			}
		}
	}()
}

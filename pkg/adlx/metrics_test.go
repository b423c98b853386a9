package adlx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/epinter/adlxwrapper/pkg/adlx/mockadlx"
)

func metricsFixture(t *testing.T) (*testSystem, *GPU, *PerformanceMonitoring, *mockadlx.Object, *mockadlx.Object) {
	t.Helper()
	ts := newTestSystem(t, 0)

	spec := mockadlx.MetricsSpec{
		Timestamp:   1700000000,
		Usage:       mockadlx.Float(37.5),
		Temperature: mockadlx.Float(61.0),
		Power:       mockadlx.Float(212.4),
		ClockSpeed:  mockadlx.Int(2480),
		VRAMUsed:    mockadlx.Int(8123),
		// Fan speed, hotspot, board power, VRAM clock and voltage stay
		// unsupported on this hardware.
	}
	metrics := ts.back.NewGPUMetrics(spec)
	support := ts.back.NewGPUMetricsSupport(spec)
	ts.perf.RegisterGPU(ts.gpus[0], metrics, support)

	list, err := ts.adlx.GPUs()
	require.NoError(t, err)
	defer list.Release()
	gpu, err := list.AtGPU(0)
	require.NoError(t, err)
	t.Cleanup(gpu.Release)

	perf, err := ts.adlx.PerformanceMonitoring()
	require.NoError(t, err)
	t.Cleanup(perf.Release)

	return ts, gpu, perf, metrics, support
}

func TestCollectGPUMetricsTagsUnsupportedFields(t *testing.T) {
	_, gpu, perf, metrics, support := metricsFixture(t)

	snap, err := perf.CollectGPUMetrics(gpu)
	require.NoError(t, err)

	require.Equal(t, int64(1700000000), snap.Timestamp)
	require.True(t, snap.Usage.Supported)
	require.InDelta(t, 37.5, snap.Usage.Value, 0.001)
	require.True(t, snap.ClockSpeedMHz.Supported)
	require.Equal(t, int32(2480), snap.ClockSpeedMHz.Value)
	require.True(t, snap.VRAMUsedMB.Supported)

	// Unsupported fields are tagged, not zeroed into ambiguity.
	require.False(t, snap.FanSpeedRPM.Supported)
	require.Zero(t, snap.FanSpeedRPM.Value)
	require.False(t, snap.HotspotTemperatureC.Supported)
	require.False(t, snap.VoltageMV.Supported)

	// Both derived handles went back on the success path.
	require.Equal(t, metrics.Acquires(), metrics.Releases())
	require.Equal(t, support.Acquires(), support.Releases())
	require.Equal(t, 1, metrics.Acquires())
}

func TestWaitCollectGPUMetricsRetriesWarmup(t *testing.T) {
	ts, gpu, perf, metrics, support := metricsFixture(t)

	// The first samples after initialization report a pending operation
	// until the sampling window fills.
	ts.perf.SetPending(ts.gpus[0], 2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snap, err := perf.WaitCollectGPUMetrics(ctx, gpu)
	require.NoError(t, err)
	require.True(t, snap.Usage.Supported)

	// No handle leaked across the failed attempts.
	require.Equal(t, metrics.Acquires(), metrics.Releases())
	require.Equal(t, support.Acquires(), support.Releases())
}

func TestWaitCollectGPUMetricsPermanentFailure(t *testing.T) {
	ts := newTestSystem(t, 0)

	list, err := ts.adlx.GPUs()
	require.NoError(t, err)
	defer list.Release()
	gpu, err := list.AtGPU(1)
	require.NoError(t, err)
	defer gpu.Release()

	perf, err := ts.adlx.PerformanceMonitoring()
	require.NoError(t, err)
	defer perf.Release()

	// GPU 1 has no registered metrics, which surfaces as invalid args and
	// must not be retried.
	start := time.Now()
	_, err = perf.WaitCollectGPUMetrics(context.Background(), gpu)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrPending)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestCollectMetricsSupportRanges(t *testing.T) {
	_, gpu, perf, _, support := metricsFixture(t)

	info, err := perf.CollectMetricsSupport(gpu)
	require.NoError(t, err)

	require.True(t, info.Usage.Supported)
	require.Equal(t, IntRange{Min: 0, Max: 100, Step: 1}, info.Usage.Range)
	require.True(t, info.ClockSpeed.Supported)
	require.True(t, info.Temperature.Supported)
	require.True(t, info.Power.Supported)

	require.False(t, info.FanSpeed.Supported)
	require.Zero(t, info.FanSpeed.Range)

	require.Equal(t, support.Acquires(), support.Releases())
}

func TestSamplingInterval(t *testing.T) {
	ts := newTestSystem(t, 0)

	perf, err := ts.adlx.PerformanceMonitoring()
	if err != nil {
		t.Fatalf("PerformanceMonitoring: %v", err)
	}
	defer perf.Release()

	r, err := perf.SamplingIntervalRange()
	if err != nil {
		t.Fatalf("SamplingIntervalRange: %v", err)
	}
	if r.Min != 1 || r.Max != 1000 {
		t.Fatalf("range = %+v", r)
	}

	if err := perf.SetSamplingInterval(250); err != nil {
		t.Fatalf("SetSamplingInterval: %v", err)
	}
	ms, err := perf.SamplingInterval()
	if err != nil || ms != 250 {
		t.Fatalf("SamplingInterval = %d, %v", ms, err)
	}

	err = perf.SetSamplingInterval(0)
	var ce *CallError
	if !errors.As(err, &ce) || ce.Code != ResultInvalidArgs {
		t.Fatalf("SetSamplingInterval(0) err = %v, want invalid args", err)
	}
}

package adlx

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/epinter/adlxwrapper/internal/bindings"
)

// Sample tags a value with whether the native library actually supports
// reporting it on this hardware. An unsupported field keeps its zero value
// but is distinguishable from a real zero reading.
type Sample[T any] struct {
	Value     T
	Supported bool
}

// IntRange is a numeric range value struct crossing the boundary by value.
type IntRange struct {
	Min  int32
	Max  int32
	Step int32
}

func rangeFromNative(r bindings.IntRange) IntRange {
	return IntRange{Min: r.Min, Max: r.Max, Step: r.Step}
}

// PerformanceMonitoring wraps the native performance monitoring services.
type PerformanceMonitoring struct {
	iface *Interface
}

// Release disposes the services handle.
func (p *PerformanceMonitoring) Release() { p.iface.Release() }

// SamplingInterval returns the current sampling interval in milliseconds.
func (p *PerformanceMonitoring) SamplingInterval() (int32, error) {
	return p.iface.getInt("GetSamplingInterval")
}

// SetSamplingInterval sets the sampling interval in milliseconds.
func (p *PerformanceMonitoring) SetSamplingInterval(ms int32) error {
	return p.iface.setInt("SetSamplingInterval", ms)
}

// SamplingIntervalRange returns the legal sampling interval range.
func (p *PerformanceMonitoring) SamplingIntervalRange() (IntRange, error) {
	return p.getRange("GetSamplingIntervalRange")
}

func (p *PerformanceMonitoring) getRange(method string) (IntRange, error) {
	if !p.iface.Valid() {
		return IntRange{}, ErrReleased
	}
	var r bindings.IntRange
	st := p.iface.call(method, bindings.Ref(&r))
	runtime.KeepAlive(&r)
	if !st.Succeeded() {
		return IntRange{}, p.iface.callErr(method, st)
	}
	return rangeFromNative(r), nil
}

// CurrentGPUMetrics returns the live metric set for gpu as a freshly owned
// handle. Callers normally go through CollectGPUMetrics instead.
func (p *PerformanceMonitoring) CurrentGPUMetrics(gpu *GPU) (*GPUMetrics, error) {
	if gpu == nil || !gpu.Valid() {
		return nil, ErrNilInterface
	}
	iface, err := p.iface.getInterface("GetCurrentGPUMetrics", bindings.ShapeGPUMetrics, gpu.iface.Ptr())
	if err != nil {
		return nil, err
	}
	return &GPUMetrics{iface: iface}, nil
}

// MetricsSupport returns the per-hardware support descriptor for gpu as a
// freshly owned handle.
func (p *PerformanceMonitoring) MetricsSupport(gpu *GPU) (*GPUMetricsSupport, error) {
	if gpu == nil || !gpu.Valid() {
		return nil, ErrNilInterface
	}
	iface, err := p.iface.getInterface("GetGPUMetricsSupport", bindings.ShapeGPUMetricsSupport, gpu.iface.Ptr())
	if err != nil {
		return nil, err
	}
	return &GPUMetricsSupport{iface: iface}, nil
}

// GPUMetrics wraps one native metric sample set.
type GPUMetrics struct {
	iface *Interface
}

func (m *GPUMetrics) Release() { m.iface.Release() }

func (m *GPUMetrics) Timestamp() (int64, error)           { return m.iface.getInt64("TimeStamp") }
func (m *GPUMetrics) Usage() (float64, error)             { return m.iface.getDouble("GPUUsage") }
func (m *GPUMetrics) ClockSpeed() (int32, error)          { return m.iface.getInt("GPUClockSpeed") }
func (m *GPUMetrics) VRAMClockSpeed() (int32, error)      { return m.iface.getInt("GPUVRAMClockSpeed") }
func (m *GPUMetrics) Temperature() (float64, error)       { return m.iface.getDouble("GPUTemperature") }
func (m *GPUMetrics) HotspotTemperature() (float64, error) {
	return m.iface.getDouble("GPUHotspotTemperature")
}
func (m *GPUMetrics) Power() (float64, error)           { return m.iface.getDouble("GPUPower") }
func (m *GPUMetrics) TotalBoardPower() (float64, error) { return m.iface.getDouble("GPUTotalBoardPower") }
func (m *GPUMetrics) FanSpeed() (int32, error)          { return m.iface.getInt("GPUFanSpeed") }
func (m *GPUMetrics) VRAM() (int32, error)              { return m.iface.getInt("GPUVRAM") }
func (m *GPUMetrics) Voltage() (int32, error)           { return m.iface.getInt("GPUVoltage") }

// GPUMetricsSupport wraps the native support descriptor.
type GPUMetricsSupport struct {
	iface *Interface
}

func (s *GPUMetricsSupport) Release() { s.iface.Release() }

func (s *GPUMetricsSupport) IsSupportedUsage() (bool, error) {
	return s.iface.getBool("IsSupportedGPUUsage")
}
func (s *GPUMetricsSupport) IsSupportedClockSpeed() (bool, error) {
	return s.iface.getBool("IsSupportedGPUClockSpeed")
}
func (s *GPUMetricsSupport) IsSupportedVRAMClockSpeed() (bool, error) {
	return s.iface.getBool("IsSupportedGPUVRAMClockSpeed")
}
func (s *GPUMetricsSupport) IsSupportedTemperature() (bool, error) {
	return s.iface.getBool("IsSupportedGPUTemperature")
}
func (s *GPUMetricsSupport) IsSupportedHotspotTemperature() (bool, error) {
	return s.iface.getBool("IsSupportedGPUHotspotTemperature")
}
func (s *GPUMetricsSupport) IsSupportedPower() (bool, error) {
	return s.iface.getBool("IsSupportedGPUPower")
}
func (s *GPUMetricsSupport) IsSupportedTotalBoardPower() (bool, error) {
	return s.iface.getBool("IsSupportedGPUTotalBoardPower")
}
func (s *GPUMetricsSupport) IsSupportedFanSpeed() (bool, error) {
	return s.iface.getBool("IsSupportedGPUFanSpeed")
}
func (s *GPUMetricsSupport) IsSupportedVRAM() (bool, error) {
	return s.iface.getBool("IsSupportedGPUVRAM")
}
func (s *GPUMetricsSupport) IsSupportedVoltage() (bool, error) {
	return s.iface.getBool("IsSupportedGPUVoltage")
}

func (s *GPUMetricsSupport) getRange(method string) (IntRange, error) {
	if !s.iface.Valid() {
		return IntRange{}, ErrReleased
	}
	var r bindings.IntRange
	st := s.iface.call(method, bindings.Ref(&r))
	runtime.KeepAlive(&r)
	if !st.Succeeded() {
		return IntRange{}, s.iface.callErr(method, st)
	}
	return rangeFromNative(r), nil
}

func (s *GPUMetricsSupport) UsageRange() (IntRange, error) {
	return s.getRange("GetGPUUsageRange")
}
func (s *GPUMetricsSupport) ClockSpeedRange() (IntRange, error) {
	return s.getRange("GetGPUClockSpeedRange")
}
func (s *GPUMetricsSupport) TemperatureRange() (IntRange, error) {
	return s.getRange("GetGPUTemperatureRange")
}
func (s *GPUMetricsSupport) PowerRange() (IntRange, error) {
	return s.getRange("GetGPUPowerRange")
}
func (s *GPUMetricsSupport) FanSpeedRange() (IntRange, error) {
	return s.getRange("GetGPUFanSpeedRange")
}

// GPUMetricsSnapshot is an immutable metric value set. Fields whose
// companion is-supported getter reports false are tagged unsupported
// rather than carrying a zero indistinguishable from a real reading.
type GPUMetricsSnapshot struct {
	Timestamp           int64
	Usage               Sample[float64]
	ClockSpeedMHz       Sample[int32]
	VRAMClockSpeedMHz   Sample[int32]
	TemperatureC        Sample[float64]
	HotspotTemperatureC Sample[float64]
	PowerW              Sample[float64]
	TotalBoardPowerW    Sample[float64]
	FanSpeedRPM         Sample[int32]
	VRAMUsedMB          Sample[int32]
	VoltageMV           Sample[int32]
}

// CollectGPUMetrics assembles a metrics snapshot for gpu. It derives the
// support descriptor and the current metric set, reads every supported
// field, and releases both derived handles on every path before returning.
func (p *PerformanceMonitoring) CollectGPUMetrics(gpu *GPU) (GPUMetricsSnapshot, error) {
	support, err := p.MetricsSupport(gpu)
	if err != nil {
		return GPUMetricsSnapshot{}, err
	}
	defer support.Release()

	metrics, err := p.CurrentGPUMetrics(gpu)
	if err != nil {
		return GPUMetricsSnapshot{}, err
	}
	defer metrics.Release()

	var snap GPUMetricsSnapshot
	if snap.Timestamp, err = metrics.Timestamp(); err != nil {
		return GPUMetricsSnapshot{}, err
	}

	if err := collect(&snap.Usage, support.IsSupportedUsage, metrics.Usage); err != nil {
		return GPUMetricsSnapshot{}, err
	}
	if err := collect(&snap.ClockSpeedMHz, support.IsSupportedClockSpeed, metrics.ClockSpeed); err != nil {
		return GPUMetricsSnapshot{}, err
	}
	if err := collect(&snap.VRAMClockSpeedMHz, support.IsSupportedVRAMClockSpeed, metrics.VRAMClockSpeed); err != nil {
		return GPUMetricsSnapshot{}, err
	}
	if err := collect(&snap.TemperatureC, support.IsSupportedTemperature, metrics.Temperature); err != nil {
		return GPUMetricsSnapshot{}, err
	}
	if err := collect(&snap.HotspotTemperatureC, support.IsSupportedHotspotTemperature, metrics.HotspotTemperature); err != nil {
		return GPUMetricsSnapshot{}, err
	}
	if err := collect(&snap.PowerW, support.IsSupportedPower, metrics.Power); err != nil {
		return GPUMetricsSnapshot{}, err
	}
	if err := collect(&snap.TotalBoardPowerW, support.IsSupportedTotalBoardPower, metrics.TotalBoardPower); err != nil {
		return GPUMetricsSnapshot{}, err
	}
	if err := collect(&snap.FanSpeedRPM, support.IsSupportedFanSpeed, metrics.FanSpeed); err != nil {
		return GPUMetricsSnapshot{}, err
	}
	if err := collect(&snap.VRAMUsedMB, support.IsSupportedVRAM, metrics.VRAM); err != nil {
		return GPUMetricsSnapshot{}, err
	}
	if err := collect(&snap.VoltageMV, support.IsSupportedVoltage, metrics.Voltage); err != nil {
		return GPUMetricsSnapshot{}, err
	}
	return snap, nil
}

// collect fills one snapshot field from its is-supported companion and
// value getter. Unsupported fields stay zero-valued and untagged.
func collect[T any](dst *Sample[T], supported func() (bool, error), read func() (T, error)) error {
	ok, err := supported()
	if err != nil {
		return err
	}
	if !ok {
		*dst = Sample[T]{}
		return nil
	}
	v, err := read()
	if err != nil {
		return err
	}
	*dst = Sample[T]{Value: v, Supported: true}
	return nil
}

// MetricRange pairs a support flag with the reporting range of one metric.
type MetricRange struct {
	Supported bool
	Range     IntRange
}

// GPUMetricsSupportInfo is an immutable support descriptor record.
type GPUMetricsSupportInfo struct {
	Usage       MetricRange
	ClockSpeed  MetricRange
	Temperature MetricRange
	Power       MetricRange
	FanSpeed    MetricRange
}

// CollectMetricsSupport assembles the support record for gpu, releasing
// the derived descriptor handle on every path.
func (p *PerformanceMonitoring) CollectMetricsSupport(gpu *GPU) (GPUMetricsSupportInfo, error) {
	support, err := p.MetricsSupport(gpu)
	if err != nil {
		return GPUMetricsSupportInfo{}, err
	}
	defer support.Release()

	var info GPUMetricsSupportInfo
	for _, f := range []struct {
		dst       *MetricRange
		supported func() (bool, error)
		rng       func() (IntRange, error)
	}{
		{&info.Usage, support.IsSupportedUsage, support.UsageRange},
		{&info.ClockSpeed, support.IsSupportedClockSpeed, support.ClockSpeedRange},
		{&info.Temperature, support.IsSupportedTemperature, support.TemperatureRange},
		{&info.Power, support.IsSupportedPower, support.PowerRange},
		{&info.FanSpeed, support.IsSupportedFanSpeed, support.FanSpeedRange},
	} {
		ok, err := f.supported()
		if err != nil {
			return GPUMetricsSupportInfo{}, err
		}
		if !ok {
			continue
		}
		r, err := f.rng()
		if err != nil {
			return GPUMetricsSupportInfo{}, err
		}
		*f.dst = MetricRange{Supported: true, Range: r}
	}
	return info, nil
}

// WaitCollectGPUMetrics retries CollectGPUMetrics while the native library
// reports a transient pending or GPU-in-use status, which happens right
// after initialization before the first sampling window fills. The retry
// schedule is exponential and bounded by ctx.
func (p *PerformanceMonitoring) WaitCollectGPUMetrics(ctx context.Context, gpu *GPU) (GPUMetricsSnapshot, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = 10 * time.Second

	var snap GPUMetricsSnapshot
	operation := func() error {
		var err error
		snap, err = p.CollectGPUMetrics(gpu)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrPending) || errors.Is(err, ErrGPUInUse) {
			return err
		}
		return backoff.Permanent(err)
	}
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return GPUMetricsSnapshot{}, err
	}
	return snap, nil
}

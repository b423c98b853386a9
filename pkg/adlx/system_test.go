package adlx

import (
	"errors"
	"testing"
)

func TestTotalSystemRAM(t *testing.T) {
	ts := newTestSystem(t, 0)

	ram, err := ts.adlx.TotalSystemRAM()
	if err != nil {
		t.Fatalf("TotalSystemRAM: %v", err)
	}
	if ram != 32768 {
		t.Fatalf("ram = %d", ram)
	}
}

func TestTerminateIsIdempotent(t *testing.T) {
	ts := newTestSystem(t, 0)

	if err := ts.adlx.Terminate(); err != nil {
		t.Fatalf("first Terminate: %v", err)
	}
	if err := ts.adlx.Terminate(); !errors.Is(err, ErrTerminated) {
		t.Fatalf("second Terminate err = %v, want ErrTerminated", err)
	}
}

func TestUseAfterTerminate(t *testing.T) {
	ts := newTestSystem(t, 0)

	// A handle derived before teardown outlives it; calls through it must
	// surface the terminated result, not garbage.
	list, err := ts.adlx.GPUs()
	if err != nil {
		t.Fatalf("GPUs: %v", err)
	}

	if err := ts.adlx.Terminate(); err != nil {
		t.Fatalf("Terminate: %v", err)
	}

	if _, err := ts.adlx.GPUs(); !errors.Is(err, ErrTerminated) {
		t.Fatalf("GPUs after terminate err = %v, want ErrTerminated", err)
	}
	if _, err := list.Size(); !errors.Is(err, ErrTerminatedCall) {
		t.Fatalf("stale handle err = %v, want terminated call", err)
	}
	list.Release()
}

func TestServicesAreIndependentHandles(t *testing.T) {
	ts := newTestSystem(t, 0)

	perf, err := ts.adlx.PerformanceMonitoring()
	if err != nil {
		t.Fatalf("PerformanceMonitoring: %v", err)
	}
	tuning, err := ts.adlx.GPUTuning()
	if err != nil {
		t.Fatalf("GPUTuning: %v", err)
	}

	perf.Release()
	// The tuning handle stays valid after the sibling service is gone.
	gpus, err := ts.adlx.GPUs()
	if err != nil {
		t.Fatalf("GPUs: %v", err)
	}
	defer gpus.Release()
	gpu, err := gpus.AtGPU(0)
	if err != nil {
		t.Fatalf("AtGPU: %v", err)
	}
	defer gpu.Release()

	if _, err := tuning.IsSupportedManualFanTuning(gpu); err != nil {
		t.Fatalf("tuning call after perf release: %v", err)
	}
	tuning.Release()

	if ts.perf.Releases() != 1 || ts.tuning.Releases() != 1 {
		t.Fatalf("service releases = %d/%d, want 1/1", ts.perf.Releases(), ts.tuning.Releases())
	}
}

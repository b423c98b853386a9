package adlx

import (
	"context"
	"fmt"

	"github.com/epinter/adlxwrapper/internal/bindings"
	"github.com/epinter/adlxwrapper/pkg/adlx/logging"
)

// ADLX is an initialized binding to the native library: the loaded module,
// the root system object, and the dispatcher every derived handle calls
// through. There is no package-level state; callers thread the context
// through explicitly and its lifetime bounds the native init/terminate
// cycle. The binding layer assumes one such cycle per process, which is the
// only guarantee the native library gives.
type ADLX struct {
	lib           *bindings.Library
	disp          bindings.Dispatcher
	system        *Interface
	log           logging.Logger
	nativeVersion string
	terminated    bool
}

// Init loads the native ADLX module, initializes it against the pinned ABI
// version, and wraps the root system object. A version the library refuses
// surfaces as a typed ResultBadVersion failure.
func Init(cfg Config) (*ADLX, error) {
	log := cfg.logger()

	lib, err := bindings.Load(cfg.LibraryPath)
	if err != nil {
		return nil, fmt.Errorf("adlx: %w", err)
	}

	sysPtr, st := lib.Initialize()
	if !st.Succeeded() {
		_ = lib.Unload()
		return nil, &CallError{Op: "ADLXInitialize", Code: resultFromStatus(st)}
	}

	version, vst := lib.QueryVersion()
	if !vst.Succeeded() {
		version = ""
	}

	a := &ADLX{
		lib:           lib,
		disp:          lib.Dispatcher(),
		log:           log,
		nativeVersion: version,
	}
	a.system = wrap(a.disp, bindings.ShapeSystem, sysPtr)
	log.Info(context.Background(), "adlx initialized", "native_version", version)
	return a, nil
}

// newContext binds an already-initialized backend. It exists for the fake
// native model used by tests, which has no module to load.
func newContext(disp bindings.Dispatcher, system uintptr, cfg Config) *ADLX {
	a := &ADLX{disp: disp, log: cfg.logger()}
	a.system = wrap(disp, bindings.ShapeSystem, system)
	return a
}

// terminator is implemented by backends that model the native teardown
// themselves (the fake). The real path goes through the loaded module.
type terminator interface {
	Terminate() bindings.Status
}

// Terminate tears the native library down and unloads the module. Every
// native pointer, including ones still held by live wrappers, is dead
// afterwards; further calls through them report ADLX_TERMINATED. The method
// is idempotent, returning ErrTerminated when called twice.
func (a *ADLX) Terminate() error {
	if a == nil || a.terminated {
		return ErrTerminated
	}
	a.terminated = true
	a.system.Release()

	st := bindings.StatusOK
	switch {
	case a.lib != nil:
		st = a.lib.Terminate()
		if uerr := a.lib.Unload(); uerr != nil {
			a.log.Warn(context.Background(), "adlx module unload failed", "error", uerr)
		}
	default:
		if t, ok := a.disp.(terminator); ok {
			st = t.Terminate()
		}
	}
	if !st.Succeeded() {
		return &CallError{Op: "ADLXTerminate", Code: resultFromStatus(st)}
	}
	a.log.Info(context.Background(), "adlx terminated")
	return nil
}

// NativeVersion returns the version string reported by the loaded module,
// or the empty string when running on a fake backend.
func (a *ADLX) NativeVersion() string { return a.nativeVersion }

func (a *ADLX) checkLive() error {
	if a == nil || a.system == nil {
		return ErrNilInterface
	}
	if a.terminated {
		return ErrTerminated
	}
	return nil
}

// GPUs returns the system's GPU collection as a freshly owned list handle.
func (a *ADLX) GPUs() (*GPUList, error) {
	if err := a.checkLive(); err != nil {
		return nil, err
	}
	iface, err := a.system.getInterface("GetGPUs", bindings.ShapeGPUList)
	if err != nil {
		return nil, err
	}
	return newGPUList(iface), nil
}

// TotalSystemRAM returns the installed system memory in megabytes.
func (a *ADLX) TotalSystemRAM() (uint32, error) {
	if err := a.checkLive(); err != nil {
		return 0, err
	}
	return a.system.getUint("TotalSystemRAM")
}

// PerformanceMonitoring returns the performance monitoring services as an
// independently owned handle.
func (a *ADLX) PerformanceMonitoring() (*PerformanceMonitoring, error) {
	if err := a.checkLive(); err != nil {
		return nil, err
	}
	iface, err := a.system.getInterface("GetPerformanceMonitoringServices", bindings.ShapePerformanceMonitoringServices)
	if err != nil {
		return nil, err
	}
	return &PerformanceMonitoring{iface: iface}, nil
}

// GPUTuning returns the GPU tuning services as an independently owned
// handle.
func (a *ADLX) GPUTuning() (*GPUTuning, error) {
	if err := a.checkLive(); err != nil {
		return nil, err
	}
	iface, err := a.system.getInterface("GetGPUTuningServices", bindings.ShapeGPUTuningServices)
	if err != nil {
		return nil, err
	}
	return &GPUTuning{iface: iface}, nil
}

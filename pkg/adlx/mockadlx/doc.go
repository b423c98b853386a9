// Package mockadlx provides an in-memory fake of the native ADLX object
// model for testing and examples.
//
// Mockadlx implements the bindings dispatcher over a registry of fake
// objects keyed by synthetic pointers, allowing wrapper tests to run on
// any platform without the AMD driver stack or the native library. Every
// object tracks its reference count and how often it was acquired and
// released, so tests can assert the exact handle discipline of a code
// path.
//
// # Features
//
//   - Slot-level dispatch against the real shape tables
//   - Working Acquire, Release and QueryInterface semantics
//   - Canned builders for GPUs, lists, metrics and fan tuning rigs
//   - Terminated mode modeling calls after native teardown
//   - No external dependencies (pure Go)
//
// # Usage
//
// Build a backend, wire a system, and hand the backend to the wrapper as
// its dispatcher:
//
//	back := mockadlx.New()
//	gpu := back.NewGPU(mockadlx.GPUSpec{Name: "Radeon RX 7900 XTX", UniqueID: 7})
//	list := back.NewGPUList(0, gpu)
//	sys := back.NewSystem(mockadlx.SystemSpec{GPUs: list, TotalRAMMB: 32768})
//
// Handlers for methods a canned builder does not cover can be installed
// per object with On.
package mockadlx

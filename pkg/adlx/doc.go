// Package adlx exposes a Go API over the AMD ADLX native library without
// generated stubs or an interface definition language. Native objects are
// COM-like: an object pointer whose first slot points at a table of
// function pointers. The wrapper resolves those tables from versioned
// contract declarations at runtime and drives them through a single
// dispatch chokepoint in internal/bindings.
//
// Handles returned by this package own exactly one native reference each
// and must be released explicitly; disposal is caller driven, never
// finalizer driven, because the native side frees memory only on release.
// Capability widening (IADLXGPU to IADLXGPU1, fan tuning negotiation) goes
// through QueryInterface and yields independently owned handles.
//
// Everything is synchronous: each call blocks until the native method
// returns, and no handle is safe for concurrent use from multiple
// goroutines without external serialization.
package adlx

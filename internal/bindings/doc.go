// Package bindings contains all raw-memory access to the native ADLX
// library. It is the only package in the module (besides the pure-Go fake
// backend used by tests) that interprets foreign pointers.
//
// # Design Principles
//
// 1. Isolation: ALL vtable interpretation and unsafe pointer arithmetic
//    lives in this package. No other production package imports "unsafe".
//
// 2. Contract tables, not generated stubs: each native interface is
//    described by a Shape, an ordered list of method names whose position
//    is the vtable slot index. The tables must match the binary layout of
//    the exact ADLX version the process loads. There is no runtime check
//    possible; a wrong table corrupts memory or crashes. Shapes are
//    therefore versioned against the ADLX full-version constant and
//    verified at integration time, never at run time.
//
// 3. Status codes cross the boundary as small integers. Mapping raw values
//    to the closed Status set (with an Unknown fallback) happens here, at
//    the point of the call.
//
// 4. Memory Management: the native object model is reference counted in
//    the IUnknown style. This package never calls Acquire; ownership of
//    every pointer it returns is exactly one reference, and the owner must
//    issue exactly one Release through the vtable.
//
// # Threading
//
// The native library makes no thread-safety promises per object. Callers
// must serialize access to a given object externally.
package bindings

package bindings

import "unsafe"

// Dispatcher issues calls through native vtables. The production
// implementation reads real function pointers out of process memory; the
// fake backend used by tests dispatches to Go functions registered under
// synthetic object pointers. Everything above this interface is pure Go.
type Dispatcher interface {
	// Invoke calls the method at the given vtable slot of obj. The object
	// pointer itself is always the implicit first argument; args carry the
	// remaining parameters, with out-parameters passed via Ref. The raw
	// native return value is decoded into the closed Status set.
	Invoke(obj uintptr, slot int, args ...uintptr) Status

	// GoString copies the NUL-terminated native string at ptr into a Go
	// string. The native side retains ownership of the buffer.
	GoString(ptr uintptr) string

	// NewInterfaceID materializes the platform wide-character encoding of a
	// QueryInterface identifier. The pointer stays valid until release is
	// called.
	NewInterfaceID(id string) (ptr uintptr, release func())
}

// Ref converts the address of an out-parameter for use in Invoke args.
// The caller must keep v reachable across the call, normally with
// runtime.KeepAlive immediately after Invoke returns.
func Ref[T any](v *T) uintptr {
	return uintptr(unsafe.Pointer(v))
}

// Bool is the boolean representation crossing the boundary (adlx_bool).
type Bool uint8

// IntRange mirrors ADLX_IntRange, passed by pointer to range getters.
// Field order and widths are part of the ABI contract.
type IntRange struct {
	Min  int32
	Max  int32
	Step int32
}

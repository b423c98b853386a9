package adlx

import (
	"runtime"

	"github.com/epinter/adlxwrapper/internal/bindings"
)

// Interface wraps one native object pointer together with the method table
// resolved from it at wrap time. The wrapper owns exactly one native
// reference. Ownership never duplicates implicitly: the wrapper never calls
// the native Acquire, so code that needs a second reference to the same
// logical object must re-derive one through a native accessor (re-query by
// identifier, re-index the list, or negotiate a capability).
//
// Disposal is caller driven. Release gives the reference back exactly once;
// later calls are no-ops. Nothing in this module registers finalizers, so a
// wrapper that goes out of scope without Release leaks the native object.
type Interface struct {
	disp     bindings.Dispatcher
	shape    *bindings.Shape
	ptr      uintptr
	released bool
}

// wrap binds a native pointer to its resolved shape. The single native
// reference carried by ptr transfers to the returned wrapper.
func wrap(disp bindings.Dispatcher, shape *bindings.Shape, ptr uintptr) *Interface {
	return &Interface{disp: disp, shape: shape, ptr: ptr}
}

// Ptr exposes the raw native pointer for callers that need to hand the
// object back to another native method. The reference still belongs to the
// wrapper.
func (i *Interface) Ptr() uintptr {
	if i == nil || i.released {
		return 0
	}
	return i.ptr
}

// Valid reports whether the wrapper still owns a live reference.
func (i *Interface) Valid() bool {
	return i != nil && !i.released && i.ptr != 0
}

// Release gives the owned reference back to the native side. The first call
// invokes the native decrement exactly once; every later call is a no-op.
// Non-reference-counted shapes (the root system object) never call through.
func (i *Interface) Release() {
	if i == nil || i.released || i.ptr == 0 {
		return
	}
	i.released = true
	if i.shape.RefCounted {
		// The native Release returns the remaining count, not a status;
		// there is nothing actionable in it for a single-owner wrapper.
		i.disp.Invoke(i.ptr, i.shape.Slot("Release"))
	}
	i.ptr = 0
}

// QueryInterface negotiates a different capability set on the same logical
// object. On success it returns a new, independently owned handle bound to
// the shape registered under id; the receiver is left untouched and both
// handles release independently. Identifiers outside the known closed set
// fail with ErrUnknownInterface without issuing a native call.
func (i *Interface) QueryInterface(id string) (*Interface, error) {
	if !i.Valid() {
		return nil, ErrReleased
	}
	target := bindings.ShapeByID(id)
	if target == nil {
		return nil, &CallError{Op: i.shape.ID + ".QueryInterface", Code: ResultUnknownInterface}
	}

	idPtr, done := i.disp.NewInterfaceID(id)
	defer done()

	var out uintptr
	st := i.disp.Invoke(i.ptr, i.shape.Slot("QueryInterface"), idPtr, bindings.Ref(&out))
	runtime.KeepAlive(&out)
	if !st.Succeeded() {
		return nil, i.callErr("QueryInterface", st)
	}
	return wrap(i.disp, target, out), nil
}

// call invokes a method on the wrapped object and decodes its status.
func (i *Interface) call(method string, args ...uintptr) bindings.Status {
	return i.disp.Invoke(i.ptr, i.shape.Slot(method), args...)
}

func (i *Interface) callErr(method string, st bindings.Status) error {
	return &CallError{Op: i.shape.ID + "." + method, Code: resultFromStatus(st)}
}

// Typed property getters. Each issues one native call with an
// out-parameter and classifies the status before touching the output.

func (i *Interface) getString(method string) (string, error) {
	if !i.Valid() {
		return "", ErrReleased
	}
	var p uintptr
	st := i.call(method, bindings.Ref(&p))
	runtime.KeepAlive(&p)
	if !st.Succeeded() {
		return "", i.callErr(method, st)
	}
	return i.disp.GoString(p), nil
}

func (i *Interface) getInt(method string) (int32, error) {
	if !i.Valid() {
		return 0, ErrReleased
	}
	var v int32
	st := i.call(method, bindings.Ref(&v))
	runtime.KeepAlive(&v)
	if !st.Succeeded() {
		return 0, i.callErr(method, st)
	}
	return v, nil
}

func (i *Interface) getUint(method string) (uint32, error) {
	if !i.Valid() {
		return 0, ErrReleased
	}
	var v uint32
	st := i.call(method, bindings.Ref(&v))
	runtime.KeepAlive(&v)
	if !st.Succeeded() {
		return 0, i.callErr(method, st)
	}
	return v, nil
}

func (i *Interface) getInt64(method string) (int64, error) {
	if !i.Valid() {
		return 0, ErrReleased
	}
	var v int64
	st := i.call(method, bindings.Ref(&v))
	runtime.KeepAlive(&v)
	if !st.Succeeded() {
		return 0, i.callErr(method, st)
	}
	return v, nil
}

func (i *Interface) getDouble(method string) (float64, error) {
	if !i.Valid() {
		return 0, ErrReleased
	}
	var v float64
	st := i.call(method, bindings.Ref(&v))
	runtime.KeepAlive(&v)
	if !st.Succeeded() {
		return 0, i.callErr(method, st)
	}
	return v, nil
}

func (i *Interface) getBool(method string) (bool, error) {
	if !i.Valid() {
		return false, ErrReleased
	}
	var v bindings.Bool
	st := i.call(method, bindings.Ref(&v))
	runtime.KeepAlive(&v)
	if !st.Succeeded() {
		return false, i.callErr(method, st)
	}
	return v != 0, nil
}

// getInterface calls a method whose out-parameter is a new native object
// reference and wraps it under the given shape. Ownership of the returned
// reference transfers to the new wrapper.
func (i *Interface) getInterface(method string, shape *bindings.Shape, args ...uintptr) (*Interface, error) {
	if !i.Valid() {
		return nil, ErrReleased
	}
	var out uintptr
	callArgs := append(append([]uintptr{}, args...), bindings.Ref(&out))
	st := i.call(method, callArgs...)
	runtime.KeepAlive(&out)
	if !st.Succeeded() {
		return nil, i.callErr(method, st)
	}
	return wrap(i.disp, shape, out), nil
}

func (i *Interface) setInt(method string, v int32) error {
	if !i.Valid() {
		return ErrReleased
	}
	st := i.call(method, uintptr(uint32(v)))
	if !st.Succeeded() {
		return i.callErr(method, st)
	}
	return nil
}

func (i *Interface) setBool(method string, v bool) error {
	if !i.Valid() {
		return ErrReleased
	}
	var raw uintptr
	if v {
		raw = 1
	}
	st := i.call(method, raw)
	if !st.Succeeded() {
		return i.callErr(method, st)
	}
	return nil
}

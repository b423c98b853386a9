package mockadlx

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/epinter/adlxwrapper/internal/bindings"
)

// Handler implements one vtable slot of a fake object. args carries the
// call arguments after the implicit object pointer.
type Handler func(args []uintptr) bindings.Status

// Backend is an in-memory native object model implementing the bindings
// dispatcher. Objects live in a registry keyed by synthetic pointers that
// are never dereferenced, so the fake runs on any platform without the
// native library.
type Backend struct {
	mu         sync.Mutex
	nextPtr    uintptr
	objects    map[uintptr]*Object
	strings    map[uintptr]string
	stringPtrs map[string]uintptr
	terminated bool
}

// New creates an empty backend.
func New() *Backend {
	return &Backend{
		nextPtr:    0x1000,
		objects:    make(map[uintptr]*Object),
		strings:    make(map[uintptr]string),
		stringPtrs: make(map[string]uintptr),
	}
}

// Invoke dispatches a vtable call to the registered handler. Calls after
// Terminate fail with the terminated status, mirroring the native library.
func (b *Backend) Invoke(obj uintptr, slot int, args ...uintptr) bindings.Status {
	b.mu.Lock()
	if b.terminated {
		b.mu.Unlock()
		return bindings.StatusTerminated
	}
	o, ok := b.objects[obj]
	b.mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("mockadlx: call through unknown object %#x", obj))
	}
	return o.dispatch(slot, args)
}

// GoString resolves an interned fake string pointer.
func (b *Backend) GoString(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.strings[ptr]
}

// NewInterfaceID interns id; release is a no-op because interned strings
// live as long as the backend.
func (b *Backend) NewInterfaceID(id string) (uintptr, func()) {
	return b.Intern(id), func() {}
}

// Intern returns a stable fake pointer for s.
func (b *Backend) Intern(s string) uintptr {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.stringPtrs[s]; ok {
		return p
	}
	p := b.alloc()
	b.strings[p] = s
	b.stringPtrs[s] = p
	return p
}

// Terminate flips the backend into the post-teardown state: every further
// call reports the terminated status.
func (b *Backend) Terminate() bindings.Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.terminated = true
	return bindings.StatusOK
}

// LiveObjects returns the number of objects whose reference count is still
// positive, for leak assertions.
func (b *Backend) LiveObjects() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, o := range b.objects {
		if o.shape.RefCounted && o.Refs() > 0 {
			n++
		}
	}
	return n
}

// caller must hold b.mu
func (b *Backend) alloc() uintptr {
	p := b.nextPtr
	b.nextPtr += 16
	return p
}

// Object is one fake native object: a shape, a reference count, and a
// handler per implemented slot.
type Object struct {
	backend *Backend
	shape   *bindings.Shape
	ptr     uintptr

	mu           sync.Mutex
	refs         int
	acquires     int
	releases     int
	handlers     map[int]Handler
	queryTargets map[string]*Object
}

// NewObject registers a fake object under shape. Reference-counted shapes
// start with one outstanding reference and get working Acquire, Release
// and QueryInterface slots.
func (b *Backend) NewObject(shape *bindings.Shape) *Object {
	b.mu.Lock()
	o := &Object{
		backend:      b,
		shape:        shape,
		ptr:          b.alloc(),
		handlers:     make(map[int]Handler),
		queryTargets: make(map[string]*Object),
	}
	b.objects[o.ptr] = o
	b.mu.Unlock()

	if shape.RefCounted {
		o.refs = 1
		o.handlers[shape.Slot("Acquire")] = func([]uintptr) bindings.Status {
			o.acquire()
			return bindings.StatusOK
		}
		o.handlers[shape.Slot("Release")] = func([]uintptr) bindings.Status {
			o.mu.Lock()
			o.refs--
			o.releases++
			o.mu.Unlock()
			return bindings.StatusOK
		}
	}
	if shape.Has("QueryInterface") {
		o.handlers[shape.Slot("QueryInterface")] = o.queryInterface
	}
	return o
}

// Ptr returns the synthetic native pointer.
func (o *Object) Ptr() uintptr { return o.ptr }

// On installs a handler for the named method of the object's shape.
func (o *Object) On(method string, h Handler) *Object {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.handlers[o.shape.Slot(method)] = h
	return o
}

// QueryTarget registers the object returned when id is negotiated on this
// object. Negotiation acquires a fresh reference on the target and leaves
// the source's reference state untouched.
func (o *Object) QueryTarget(id string, target *Object) *Object {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.queryTargets[id] = target
	return o
}

// Refs returns the current outstanding reference count.
func (o *Object) Refs() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.refs
}

// Acquires returns how many references were handed out beyond the initial
// one, i.e. how many times the object was freshly derived.
func (o *Object) Acquires() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.acquires
}

// Releases returns how many times the native release slot ran.
func (o *Object) Releases() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.releases
}

func (o *Object) acquire() {
	o.mu.Lock()
	o.refs++
	o.acquires++
	o.mu.Unlock()
}

func (o *Object) dispatch(slot int, args []uintptr) bindings.Status {
	o.mu.Lock()
	h, ok := o.handlers[slot]
	o.mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("mockadlx: %s slot %d has no handler", o.shape.ID, slot))
	}
	return h(args)
}

func (o *Object) queryInterface(args []uintptr) bindings.Status {
	id := o.backend.GoString(args[0])
	o.mu.Lock()
	target, ok := o.queryTargets[id]
	o.mu.Unlock()
	if !ok {
		return bindings.StatusUnknownInterface
	}
	target.acquire()
	PutUintptr(args[1], target.ptr)
	return bindings.StatusOK
}

// AcquireFor hands out a fresh reference on o and writes its pointer to
// the out-parameter, the way native accessors return derived objects.
func (o *Object) AcquireFor(out uintptr) bindings.Status {
	o.acquire()
	PutUintptr(out, o.ptr)
	return bindings.StatusOK
}

// Out-parameter writers. The fake receives out-parameters as raw
// addresses exactly like the native side would; these helpers are its
// only unsafe code.

func PutUintptr(p, v uintptr) { *(*uintptr)(unsafe.Pointer(p)) = v }

func PutUint32(p uintptr, v uint32) { *(*uint32)(unsafe.Pointer(p)) = v }

func PutInt32(p uintptr, v int32) { *(*int32)(unsafe.Pointer(p)) = v }

func PutUint64(p uintptr, v uint64) { *(*uint64)(unsafe.Pointer(p)) = v }

func PutInt64(p uintptr, v int64) { *(*int64)(unsafe.Pointer(p)) = v }

func PutFloat64(p uintptr, v float64) { *(*float64)(unsafe.Pointer(p)) = v }

func PutBool(p uintptr, v bool) {
	var b bindings.Bool
	if v {
		b = 1
	}
	*(*bindings.Bool)(unsafe.Pointer(p)) = b
}

func PutIntRange(p uintptr, r bindings.IntRange) {
	*(*bindings.IntRange)(unsafe.Pointer(p)) = r
}

// Argument readers for setter handlers.

func Int32Arg(a uintptr) int32 { return int32(uint32(a)) }
func BoolArg(a uintptr) bool   { return a != 0 }

package bindings

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
)

// ADLX version the shape tables were transcribed against. Initialize hands
// this to the native library, which refuses to bind (ADLX_BAD_VER) when the
// installed driver component is older.
const (
	VersionMajor   = 1
	VersionMinor   = 0
	VersionRelease = 5

	// FullVersion packs the version triple the way the native
	// ADLX_FULL_VERSION macro does.
	FullVersion = uint64(VersionMajor)<<48 | uint64(VersionMinor)<<32 | uint64(VersionRelease)<<16
)

// Native entry point names exported by the ADLX module.
const (
	symInitialize       = "ADLXInitialize"
	symTerminate        = "ADLXTerminate"
	symQueryVersion     = "ADLXQueryVersion"
	symQueryFullVersion = "ADLXQueryFullVersion"
)

// Library is a loaded ADLX module with its flat entry points resolved.
// Everything else the library exposes is reached through object vtables via
// the Dispatcher.
type Library struct {
	handle           uintptr
	initialize       uintptr
	terminate        uintptr
	queryVersion     uintptr
	queryFullVersion uintptr
	disp             *nativeDispatcher
}

// Load opens the native ADLX module and resolves its entry points. An empty
// path loads the platform default name from the system search path.
func Load(path string) (*Library, error) {
	if path == "" {
		path = defaultLibraryName
	}
	h, err := openLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("bindings: load %s: %w", path, err)
	}

	l := &Library{handle: h, disp: &nativeDispatcher{}}
	for _, sym := range []struct {
		name string
		dst  *uintptr
	}{
		{symInitialize, &l.initialize},
		{symTerminate, &l.terminate},
		{symQueryVersion, &l.queryVersion},
		{symQueryFullVersion, &l.queryFullVersion},
	} {
		p, err := resolveSymbol(h, sym.name)
		if err != nil {
			_ = closeLibrary(h)
			return nil, fmt.Errorf("bindings: resolve %s: %w", sym.name, err)
		}
		*sym.dst = p
	}
	return l, nil
}

// Unload closes the module handle. Callers must have terminated the library
// first; no object pointer obtained from it stays valid afterwards.
func (l *Library) Unload() error {
	if l.handle == 0 {
		return nil
	}
	err := closeLibrary(l.handle)
	l.handle = 0
	return err
}

// Dispatcher returns the vtable dispatcher bound to this module.
func (l *Library) Dispatcher() Dispatcher { return l.disp }

// Initialize calls ADLXInitialize and returns the root system object
// pointer. The system object is owned by the library until Terminate.
func (l *Library) Initialize() (uintptr, Status) {
	var system uintptr
	raw, _, _ := purego.SyscallN(l.initialize, uintptr(FullVersion), Ref(&system))
	return system, DecodeStatus(uint32(raw))
}

// Terminate calls ADLXTerminate. Every native pointer is dead afterwards.
func (l *Library) Terminate() Status {
	raw, _, _ := purego.SyscallN(l.terminate)
	return DecodeStatus(uint32(raw))
}

// QueryVersion returns the version string reported by the module.
func (l *Library) QueryVersion() (string, Status) {
	var p uintptr
	raw, _, _ := purego.SyscallN(l.queryVersion, Ref(&p))
	st := DecodeStatus(uint32(raw))
	if !st.Succeeded() {
		return "", st
	}
	return l.disp.GoString(p), st
}

// QueryFullVersion returns the packed numeric version of the module.
func (l *Library) QueryFullVersion() (uint64, Status) {
	var v uint64
	raw, _, _ := purego.SyscallN(l.queryFullVersion, Ref(&v))
	return v, DecodeStatus(uint32(raw))
}

const ptrSize = unsafe.Sizeof(uintptr(0))

// nativeDispatcher issues calls through real vtables. The first
// pointer-sized slot of every native object is the vtable pointer; the
// vtable is a contiguous array of function pointers in Shape order. This is
// the undefined-behavior boundary: a shape that disagrees with the loaded
// binary dereferences the wrong slot with no possible runtime check.
type nativeDispatcher struct{}

func (d *nativeDispatcher) Invoke(obj uintptr, slot int, args ...uintptr) Status {
	vtbl := *(*uintptr)(unsafe.Pointer(obj))
	fn := *(*uintptr)(unsafe.Pointer(vtbl + uintptr(slot)*ptrSize))

	call := make([]uintptr, 0, len(args)+1)
	call = append(call, obj)
	call = append(call, args...)
	raw, _, _ := purego.SyscallN(fn, call...)
	return DecodeStatus(uint32(raw))
}

func (d *nativeDispatcher) GoString(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Pointer(ptr + uintptr(n))) != 0 {
		n++
	}
	if n == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(unsafe.Pointer(ptr)), n))
}

func (d *nativeDispatcher) NewInterfaceID(id string) (uintptr, func()) {
	buf := encodeWide(id)
	return uintptr(unsafe.Pointer(&buf[0])), func() { runtime.KeepAlive(buf) }
}

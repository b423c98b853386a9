package bindings

// Status is a raw ADLX_RESULT value as returned by the native library.
// The set is closed; values outside it decode to StatusUnknown.
type Status uint32

const (
	StatusOK Status = iota
	StatusAlreadyEnabled
	StatusAlreadyInitialized
	StatusFail
	StatusInvalidArgs
	StatusBadVersion
	StatusUnknownInterface
	StatusTerminated
	StatusADLInitError
	StatusNotFound
	StatusInvalidObject
	StatusOrphanObjects
	StatusNotSupported
	StatusPendingOperation
	StatusGPUInUse

	// StatusUnknown is the fallback for values the table does not know.
	// It never goes back across the boundary.
	StatusUnknown Status = 0xffffffff
)

var statusNames = map[Status]string{
	StatusOK:                 "ADLX_OK",
	StatusAlreadyEnabled:     "ADLX_ALREADY_ENABLED",
	StatusAlreadyInitialized: "ADLX_ALREADY_INITIALIZED",
	StatusFail:               "ADLX_FAIL",
	StatusInvalidArgs:        "ADLX_INVALID_ARGS",
	StatusBadVersion:         "ADLX_BAD_VER",
	StatusUnknownInterface:   "ADLX_UNKNOWN_INTERFACE",
	StatusTerminated:         "ADLX_TERMINATED",
	StatusADLInitError:       "ADLX_ADL_INIT_ERROR",
	StatusNotFound:           "ADLX_NOT_FOUND",
	StatusInvalidObject:      "ADLX_INVALID_OBJECT",
	StatusOrphanObjects:      "ADLX_ORPHAN_OBJECTS",
	StatusNotSupported:       "ADLX_NOT_SUPPORTED",
	StatusPendingOperation:   "ADLX_PENDING_OPERATION",
	StatusGPUInUse:           "ADLX_GPU_INUSE",
}

// DecodeStatus maps a raw native return value into the closed Status set.
func DecodeStatus(raw uint32) Status {
	s := Status(raw)
	if _, ok := statusNames[s]; !ok {
		return StatusUnknown
	}
	return s
}

// Succeeded reports whether s belongs to the success-like subset. The
// native library treats already-enabled and already-initialized as the
// requested state being in effect, so they classify as success.
func (s Status) Succeeded() bool {
	switch s {
	case StatusOK, StatusAlreadyEnabled, StatusAlreadyInitialized:
		return true
	}
	return false
}

// String returns the native enumerator name, or a hex rendering for
// values outside the known set.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "ADLX_RESULT(unknown)"
}

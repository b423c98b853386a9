package adlx

import "github.com/epinter/adlxwrapper/internal/bindings"

// Result is the public view of a native ADLX_RESULT value. The set is
// closed; native values outside it surface as ResultUnknown rather than
// leaking through an unchecked cast.
type Result int

const (
	ResultOK Result = iota
	ResultAlreadyEnabled
	ResultAlreadyInitialized
	ResultFail
	ResultInvalidArgs
	ResultBadVersion
	ResultUnknownInterface
	ResultTerminated
	ResultADLInitError
	ResultNotFound
	ResultInvalidObject
	ResultOrphanObjects
	ResultNotSupported
	ResultPendingOperation
	ResultGPUInUse
	ResultUnknown
)

// The two tables below are the explicit bidirectional mapping between the
// raw boundary values and the public enum. Keeping them side by side makes
// a missing entry visible at review time.
var statusToResult = map[bindings.Status]Result{
	bindings.StatusOK:                 ResultOK,
	bindings.StatusAlreadyEnabled:     ResultAlreadyEnabled,
	bindings.StatusAlreadyInitialized: ResultAlreadyInitialized,
	bindings.StatusFail:               ResultFail,
	bindings.StatusInvalidArgs:        ResultInvalidArgs,
	bindings.StatusBadVersion:         ResultBadVersion,
	bindings.StatusUnknownInterface:   ResultUnknownInterface,
	bindings.StatusTerminated:         ResultTerminated,
	bindings.StatusADLInitError:       ResultADLInitError,
	bindings.StatusNotFound:           ResultNotFound,
	bindings.StatusInvalidObject:      ResultInvalidObject,
	bindings.StatusOrphanObjects:      ResultOrphanObjects,
	bindings.StatusNotSupported:       ResultNotSupported,
	bindings.StatusPendingOperation:   ResultPendingOperation,
	bindings.StatusGPUInUse:           ResultGPUInUse,
}

var resultToStatus = map[Result]bindings.Status{
	ResultOK:                 bindings.StatusOK,
	ResultAlreadyEnabled:     bindings.StatusAlreadyEnabled,
	ResultAlreadyInitialized: bindings.StatusAlreadyInitialized,
	ResultFail:               bindings.StatusFail,
	ResultInvalidArgs:        bindings.StatusInvalidArgs,
	ResultBadVersion:         bindings.StatusBadVersion,
	ResultUnknownInterface:   bindings.StatusUnknownInterface,
	ResultTerminated:         bindings.StatusTerminated,
	ResultADLInitError:       bindings.StatusADLInitError,
	ResultNotFound:           bindings.StatusNotFound,
	ResultInvalidObject:      bindings.StatusInvalidObject,
	ResultOrphanObjects:      bindings.StatusOrphanObjects,
	ResultNotSupported:       bindings.StatusNotSupported,
	ResultPendingOperation:   bindings.StatusPendingOperation,
	ResultGPUInUse:           bindings.StatusGPUInUse,
}

func resultFromStatus(st bindings.Status) Result {
	if r, ok := statusToResult[st]; ok {
		return r
	}
	return ResultUnknown
}

// IsSuccess reports whether r belongs to the success-like subset of the
// result set: the operation either completed or was already in the
// requested state. Every other value, including ResultUnknown, is failure.
func (r Result) IsSuccess() bool {
	st, ok := resultToStatus[r]
	return ok && st.Succeeded()
}

func (r Result) String() string {
	if st, ok := resultToStatus[r]; ok {
		return st.String()
	}
	return "ADLX_RESULT(unknown)"
}

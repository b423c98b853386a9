package adlx

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that a lookup over a native collection exhausted
	// the valid index range without a match.
	ErrNotFound = errors.New("adlx: not found")

	// ErrReleased reports a call through a handle after its reference was
	// already given back to the native side.
	ErrReleased = errors.New("adlx: interface already released")

	// ErrNilInterface reports a nil or empty required handle argument,
	// caught before the native call is issued.
	ErrNilInterface = errors.New("adlx: nil interface")

	// ErrTerminated reports use of the context after Terminate. Calling
	// Terminate twice returns this error rather than touching the native
	// side again.
	ErrTerminated = errors.New("adlx: library already terminated")
)

// Typed native failures for errors.Is matching. Each carries only a code,
// so it matches any CallError with that code regardless of operation.
var (
	ErrNotSupported     = &CallError{Code: ResultNotSupported}
	ErrUnknownInterface = &CallError{Code: ResultUnknownInterface}
	ErrTerminatedCall   = &CallError{Code: ResultTerminated}
	ErrPending          = &CallError{Code: ResultPendingOperation}
	ErrGPUInUse         = &CallError{Code: ResultGPUInUse}
)

// CallError is the typed failure for a native call: the method that failed
// and the decoded result code. Success-like codes never become a CallError;
// classification happens at the call site via Result.IsSuccess.
type CallError struct {
	Op   string
	Code Result
}

func (e *CallError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("adlx: native call failed: %s", e.Code)
	}
	return fmt.Sprintf("adlx: %s: %s", e.Op, e.Code)
}

// Is matches another CallError by code. A target with an empty Op acts as
// a code-level sentinel.
func (e *CallError) Is(target error) bool {
	t, ok := target.(*CallError)
	if !ok {
		return false
	}
	if t.Op != "" && t.Op != e.Op {
		return false
	}
	return t.Code == e.Code
}

// ResultOf extracts the result code from an error chain. The second return
// is false when the chain holds no CallError.
func ResultOf(err error) (Result, bool) {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Code, true
	}
	return ResultUnknown, false
}

package adlx

import (
	"errors"
	"fmt"
	"testing"
)

func TestResultSuccessSubset(t *testing.T) {
	success := map[Result]bool{
		ResultOK:                 true,
		ResultAlreadyEnabled:     true,
		ResultAlreadyInitialized: true,
	}
	for r := ResultOK; r <= ResultUnknown; r++ {
		if got := r.IsSuccess(); got != success[r] {
			t.Fatalf("%v.IsSuccess() = %v, want %v", r, got, success[r])
		}
	}
}

func TestResultMappingIsBidirectional(t *testing.T) {
	for st, r := range statusToResult {
		back, ok := resultToStatus[r]
		if !ok || back != st {
			t.Fatalf("status %v maps to %v which maps back to %v", st, r, back)
		}
	}
	if len(statusToResult) != len(resultToStatus) {
		t.Fatalf("table sizes differ: %d vs %d", len(statusToResult), len(resultToStatus))
	}
}

func TestCallErrorSentinelMatching(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &CallError{Op: "IADLXGPU.Name", Code: ResultNotSupported})

	if !errors.Is(err, ErrNotSupported) {
		t.Fatal("code sentinel did not match")
	}
	if errors.Is(err, ErrGPUInUse) {
		t.Fatal("matched the wrong code")
	}
	if !errors.Is(err, &CallError{Op: "IADLXGPU.Name", Code: ResultNotSupported}) {
		t.Fatal("full target did not match")
	}
	if errors.Is(err, &CallError{Op: "IADLXGPU.VendorId", Code: ResultNotSupported}) {
		t.Fatal("matched a different operation")
	}

	code, ok := ResultOf(err)
	if !ok || code != ResultNotSupported {
		t.Fatalf("ResultOf = %v, %v", code, ok)
	}
	if _, ok := ResultOf(errors.New("plain")); ok {
		t.Fatal("ResultOf matched a non-call error")
	}
}

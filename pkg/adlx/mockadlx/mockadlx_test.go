package mockadlx

import (
	"runtime"
	"testing"

	"github.com/epinter/adlxwrapper/internal/bindings"
)

func TestDispatchThroughShapeSlots(t *testing.T) {
	back := New()
	gpu := back.NewGPU(GPUSpec{Name: "Radeon RX 7900 XTX", UniqueID: 7})

	var p uintptr
	st := back.Invoke(gpu.Ptr(), bindings.ShapeGPU.Slot("Name"), bindings.Ref(&p))
	runtime.KeepAlive(&p)
	if st != bindings.StatusOK {
		t.Fatalf("Name status = %v, want OK", st)
	}
	if got := back.GoString(p); got != "Radeon RX 7900 XTX" {
		t.Fatalf("Name = %q", got)
	}
}

func TestReferenceCounting(t *testing.T) {
	back := New()
	gpu := back.NewGPU(GPUSpec{UniqueID: 1})

	if gpu.Refs() != 1 {
		t.Fatalf("initial refs = %d, want 1", gpu.Refs())
	}
	back.Invoke(gpu.Ptr(), bindings.ShapeGPU.Slot("Acquire"))
	if gpu.Refs() != 2 || gpu.Acquires() != 1 {
		t.Fatalf("after acquire: refs=%d acquires=%d", gpu.Refs(), gpu.Acquires())
	}
	back.Invoke(gpu.Ptr(), bindings.ShapeGPU.Slot("Release"))
	back.Invoke(gpu.Ptr(), bindings.ShapeGPU.Slot("Release"))
	if gpu.Refs() != 0 || gpu.Releases() != 2 {
		t.Fatalf("after releases: refs=%d releases=%d", gpu.Refs(), gpu.Releases())
	}
	if back.LiveObjects() != 0 {
		t.Fatalf("live objects = %d, want 0", back.LiveObjects())
	}
}

func TestQueryInterfaceAcquiresTarget(t *testing.T) {
	back := New()
	gpu := back.NewGPU(GPUSpec{
		UniqueID: 3,
		Extended: &GPU1Spec{ProductName: "Sapphire Nitro+"},
	})

	idPtr, done := back.NewInterfaceID("IADLXGPU1")
	defer done()

	var out uintptr
	st := back.Invoke(gpu.Ptr(), bindings.ShapeGPU.Slot("QueryInterface"), idPtr, bindings.Ref(&out))
	runtime.KeepAlive(&out)
	if st != bindings.StatusOK {
		t.Fatalf("QueryInterface status = %v", st)
	}
	if out == gpu.Ptr() || out == 0 {
		t.Fatalf("widened pointer %#x not distinct from source %#x", out, gpu.Ptr())
	}
	if gpu.Refs() != 1 {
		t.Fatalf("source refs changed to %d", gpu.Refs())
	}

	unknown, undone := back.NewInterfaceID("IADLXNoSuchThing")
	defer undone()
	st = back.Invoke(gpu.Ptr(), bindings.ShapeGPU.Slot("QueryInterface"), unknown, bindings.Ref(&out))
	if st != bindings.StatusUnknownInterface {
		t.Fatalf("unknown id status = %v", st)
	}
}

func TestTerminatedMode(t *testing.T) {
	back := New()
	gpu := back.NewGPU(GPUSpec{UniqueID: 9})

	if st := back.Terminate(); st != bindings.StatusOK {
		t.Fatalf("Terminate status = %v", st)
	}
	var v int32
	st := back.Invoke(gpu.Ptr(), bindings.ShapeGPU.Slot("UniqueId"), bindings.Ref(&v))
	runtime.KeepAlive(&v)
	if st != bindings.StatusTerminated {
		t.Fatalf("post-terminate status = %v, want terminated", st)
	}
}

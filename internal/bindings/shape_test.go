package bindings

import "testing"

// Slot positions are the ABI contract. These anchors were checked against
// the SDK headers for the pinned version; if one moves, every call through
// the affected shape is undefined behavior, so the test pins them.
func TestShapeSlotAnchors(t *testing.T) {
	anchors := []struct {
		shape *Shape
		name  string
		slot  int
	}{
		{ShapeInterface, "Acquire", 0},
		{ShapeInterface, "Release", 1},
		{ShapeInterface, "QueryInterface", 2},
		{ShapeList, "Size", 3},
		{ShapeList, "At", 7},
		{ShapeList, "Add_Back", 10},
		{ShapeGPUList, "At_GPUList", 11},
		{ShapeGPU, "Name", 7},
		{ShapeGPU, "UniqueId", 18},
		{ShapeGPU1, "UniqueId", 18},
		{ShapeGPU1, "ProductName", 22},
		{ShapeSystem, "GetGPUs", 1},
		{ShapeSystem, "QueryInterface", 2},
		{ShapeFanTuningStateList, "At_ManualFanTuningStateList", 11},
	}
	for _, a := range anchors {
		if got := a.shape.Slot(a.name); got != a.slot {
			t.Errorf("%s.%s: slot %d, want %d", a.shape.ID, a.name, got, a.slot)
		}
	}
}

func TestShapeDeriveRepeatsParentSlots(t *testing.T) {
	for _, name := range []string{"Acquire", "Release", "QueryInterface", "Size", "At"} {
		if ShapeGPUList.Slot(name) != ShapeList.Slot(name) {
			t.Fatalf("derived shape moved inherited method %s", name)
		}
	}
}

func TestShapeUnknownMethodPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown method")
		}
	}()
	ShapeGPU.Slot("NoSuchMethod")
}

func TestShapeRegistryIsClosed(t *testing.T) {
	if ShapeByID("IADLXGPU1") != ShapeGPU1 {
		t.Fatal("IADLXGPU1 not resolvable")
	}
	if ShapeByID("IADLXFrobnicator") != nil {
		t.Fatal("unknown identifier must resolve to nil")
	}
	// The root system shape is reachable only through Initialize, never
	// through QueryInterface.
	if ShapeByID("IADLXSystem") != nil {
		t.Fatal("system shape must not be negotiable")
	}
}

// Like slot positions, the numeric status values are the ABI contract.
// These anchors pin the full ADLX_RESULT enum from the SDK headers for the
// pinned version so a reordered constant block cannot silently remap a
// native return code.
func TestStatusValueAnchors(t *testing.T) {
	anchors := []struct {
		raw  uint32
		want Status
	}{
		{0, StatusOK},
		{1, StatusAlreadyEnabled},
		{2, StatusAlreadyInitialized},
		{3, StatusFail},
		{4, StatusInvalidArgs},
		{5, StatusBadVersion},
		{6, StatusUnknownInterface},
		{7, StatusTerminated},
		{8, StatusADLInitError},
		{9, StatusNotFound},
		{10, StatusInvalidObject},
		{11, StatusOrphanObjects},
		{12, StatusNotSupported},
		{13, StatusPendingOperation},
		{14, StatusGPUInUse},
	}
	for _, a := range anchors {
		if got := DecodeStatus(a.raw); got != a.want {
			t.Errorf("DecodeStatus(%d) = %v, want %v", a.raw, got, a.want)
		}
	}
	if len(anchors) != len(statusNames) {
		t.Errorf("status table has %d entries, anchors pin %d", len(statusNames), len(anchors))
	}
}

func TestDecodeStatusFallback(t *testing.T) {
	if got := DecodeStatus(4); got != StatusInvalidArgs {
		t.Fatalf("DecodeStatus(4) = %v", got)
	}
	if got := DecodeStatus(0xdeadbeef); got != StatusUnknown {
		t.Fatalf("DecodeStatus(0xdeadbeef) = %v, want StatusUnknown", got)
	}
}

func TestStatusSucceededSubset(t *testing.T) {
	want := map[Status]bool{
		StatusOK:                 true,
		StatusAlreadyEnabled:     true,
		StatusAlreadyInitialized: true,
	}
	for s := range statusNames {
		if s.Succeeded() != want[s] {
			t.Errorf("%v: Succeeded() = %v", s, s.Succeeded())
		}
	}
	if StatusUnknown.Succeeded() {
		t.Error("StatusUnknown must classify as failure")
	}
}

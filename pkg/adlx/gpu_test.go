package adlx

import (
	"errors"
	"testing"

	"github.com/epinter/adlxwrapper/internal/bindings"
	"github.com/epinter/adlxwrapper/pkg/adlx/mockadlx"
)

func TestFindByUniqueIDReleasesEveryNonMatch(t *testing.T) {
	ts := newTestSystem(t, 5)

	list, err := ts.adlx.GPUs()
	if err != nil {
		t.Fatalf("GPUs: %v", err)
	}
	defer list.Release()

	match, err := list.FindByUniqueID(7)
	if err != nil {
		t.Fatalf("FindByUniqueID: %v", err)
	}
	uid, err := match.UniqueID()
	if err != nil || uid != 7 {
		t.Fatalf("match uid = %d, %v", uid, err)
	}

	// The whole range was examined: three handles obtained, the two
	// non-matches given back, the match still owned by the caller.
	for i, g := range ts.gpus {
		if g.Acquires() != 1 {
			t.Fatalf("gpu %d acquires = %d, want 1", i, g.Acquires())
		}
	}
	if ts.gpus[0].Releases() != 1 || ts.gpus[2].Releases() != 1 {
		t.Fatalf("non-matches released %d/%d times, want 1/1",
			ts.gpus[0].Releases(), ts.gpus[2].Releases())
	}
	if ts.gpus[1].Releases() != 0 {
		t.Fatalf("match released %d times before caller disposal", ts.gpus[1].Releases())
	}

	match.Release()
	if ts.gpus[1].Releases() != 1 {
		t.Fatalf("match released %d times, want 1", ts.gpus[1].Releases())
	}
}

func TestFindByUniqueIDMissReleasesEverything(t *testing.T) {
	ts := newTestSystem(t, 5)

	list, err := ts.adlx.GPUs()
	if err != nil {
		t.Fatalf("GPUs: %v", err)
	}
	defer list.Release()

	_, err = list.FindByUniqueID(42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	for i, g := range ts.gpus {
		if g.Acquires() != 1 || g.Releases() != 1 {
			t.Fatalf("gpu %d: acquires=%d releases=%d, want 1/1", i, g.Acquires(), g.Releases())
		}
	}
}

func TestGPUInfoRecord(t *testing.T) {
	back := mockadlx.New()
	obj := back.NewGPU(mockadlx.GPUSpec{
		Name:           "Radeon RX 7900 XTX",
		VendorID:       "1002",
		DeviceID:       "744C",
		RevisionID:     "C8",
		VRAMType:       "GDDR6",
		DriverPath:     `\Registry\Machine\System\...\0000`,
		PNPString:      `PCI\VEN_1002&DEV_744C`,
		UniqueID:       7,
		Type:           2,
		TotalVRAMMB:    24560,
		HasDesktops:    true,
		BIOSPartNumber: "113-D7040100-102",
		BIOSVersion:    "022.001.002.901",
		BIOSDate:       "2023/10/12",
	})

	gpu := &GPU{iface: wrap(back, bindings.ShapeGPU, obj.Ptr())}
	defer gpu.Release()

	info, err := gpu.Info()
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Name != "Radeon RX 7900 XTX" || info.UniqueID != 7 {
		t.Fatalf("info = %+v", info)
	}
	if info.Type != GPUTypeDiscrete || info.IsExternal {
		t.Fatalf("type/external = %v/%v", info.Type, info.IsExternal)
	}
	if info.TotalVRAMMB != 24560 || info.VRAMType != "GDDR6" {
		t.Fatalf("vram = %d %q", info.TotalVRAMMB, info.VRAMType)
	}
	if info.BIOS.PartNumber != "113-D7040100-102" || info.BIOS.Date != "2023/10/12" {
		t.Fatalf("bios = %+v", info.BIOS)
	}
	// Building the record releases nothing the caller owns.
	if obj.Releases() != 0 {
		t.Fatalf("gpu released %d times while assembling record", obj.Releases())
	}
}

func TestExtendedInfoWithCapability(t *testing.T) {
	back := mockadlx.New()
	obj := back.NewGPU(mockadlx.GPUSpec{
		Name:     "Radeon RX 7900 XTX",
		UniqueID: 7,
		Extended: &mockadlx.GPU1Spec{
			ProductName:     "Nitro+ RX 7900 XTX Vapor-X",
			PCIBusType:      3,
			PCIBusLaneWidth: 16,
		},
	})

	gpu := &GPU{iface: wrap(back, bindings.ShapeGPU, obj.Ptr())}
	defer gpu.Release()

	info, err := gpu.ExtendedInfo()
	if err != nil {
		t.Fatalf("ExtendedInfo: %v", err)
	}
	if !info.ProductName.Supported || info.ProductName.Value != "Nitro+ RX 7900 XTX Vapor-X" {
		t.Fatalf("product name = %+v", info.ProductName)
	}
	if !info.PCIBus.Supported || info.PCIBus.Value != PCIBusPCIE {
		t.Fatalf("pci bus = %+v", info.PCIBus)
	}
	if !info.PCIBusLaneWidth.Supported || info.PCIBusLaneWidth.Value != 16 {
		t.Fatalf("lane width = %+v", info.PCIBusLaneWidth)
	}
}

func TestExtendedInfoWithoutCapability(t *testing.T) {
	back := mockadlx.New()
	obj := back.NewGPU(mockadlx.GPUSpec{Name: "Radeon 780M", UniqueID: 9, Type: 1})

	gpu := &GPU{iface: wrap(back, bindings.ShapeGPU, obj.Ptr())}
	defer gpu.Release()

	// An older driver refuses the widened contract; the base record still
	// comes back with the extended fields tagged unsupported.
	info, err := gpu.ExtendedInfo()
	if err != nil {
		t.Fatalf("ExtendedInfo: %v", err)
	}
	if info.Name != "Radeon 780M" {
		t.Fatalf("base record missing: %+v", info.GPUInfo)
	}
	if info.ProductName.Supported || info.PCIBus.Supported || info.PCIBusLaneWidth.Supported {
		t.Fatalf("extended fields tagged supported: %+v", info)
	}
}

package adlx

import (
	"runtime"

	"github.com/epinter/adlxwrapper/internal/bindings"
)

// GPUType is the kind of a GPU as reported across the boundary.
type GPUType int32

const (
	GPUTypeUndefined GPUType = iota
	GPUTypeIntegrated
	GPUTypeDiscrete

	// GPUTypeUnknown is the fallback for native values outside the known
	// set, kept distinct from GPUTypeUndefined which the native library
	// reports itself.
	GPUTypeUnknown GPUType = -1
)

func gpuTypeFromNative(v int32) GPUType {
	switch GPUType(v) {
	case GPUTypeUndefined, GPUTypeIntegrated, GPUTypeDiscrete:
		return GPUType(v)
	}
	return GPUTypeUnknown
}

func (t GPUType) String() string {
	switch t {
	case GPUTypeUndefined:
		return "undefined"
	case GPUTypeIntegrated:
		return "integrated"
	case GPUTypeDiscrete:
		return "discrete"
	}
	return "unknown"
}

// PCIBusType is the bus kind reported by the widened IADLXGPU1 capability.
type PCIBusType int32

const (
	PCIBusUndefined PCIBusType = iota
	PCIBusPCI
	PCIBusAGP
	PCIBusPCIE

	PCIBusUnknown PCIBusType = -1
)

func pciBusFromNative(v int32) PCIBusType {
	switch PCIBusType(v) {
	case PCIBusUndefined, PCIBusPCI, PCIBusAGP, PCIBusPCIE:
		return PCIBusType(v)
	}
	return PCIBusUnknown
}

func (t PCIBusType) String() string {
	switch t {
	case PCIBusUndefined:
		return "undefined"
	case PCIBusPCI:
		return "pci"
	case PCIBusAGP:
		return "agp"
	case PCIBusPCIE:
		return "pcie"
	}
	return "unknown"
}

// GPU wraps a native IADLXGPU object.
type GPU struct {
	iface *Interface
}

// Release disposes the GPU handle.
func (g *GPU) Release() { g.iface.Release() }

// Valid reports whether the handle still owns its reference.
func (g *GPU) Valid() bool { return g.iface.Valid() }

func (g *GPU) Name() (string, error)       { return g.iface.getString("Name") }
func (g *GPU) VendorID() (string, error)   { return g.iface.getString("VendorId") }
func (g *GPU) DeviceID() (string, error)   { return g.iface.getString("DeviceId") }
func (g *GPU) RevisionID() (string, error) { return g.iface.getString("RevisionId") }
func (g *GPU) VRAMType() (string, error)   { return g.iface.getString("VRAMType") }
func (g *GPU) DriverPath() (string, error) { return g.iface.getString("DriverPath") }
func (g *GPU) PNPString() (string, error)  { return g.iface.getString("PNPString") }

// UniqueID returns the stable identifier the native library assigns to the
// GPU. It is the key the lookup scan compares.
func (g *GPU) UniqueID() (int32, error) { return g.iface.getInt("UniqueId") }

// TotalVRAM returns the VRAM size in megabytes.
func (g *GPU) TotalVRAM() (uint32, error) { return g.iface.getUint("TotalVRAM") }

func (g *GPU) IsExternal() (bool, error)  { return g.iface.getBool("IsExternal") }
func (g *GPU) HasDesktops() (bool, error) { return g.iface.getBool("HasDesktops") }

func (g *GPU) Type() (GPUType, error) {
	v, err := g.iface.getInt("Type")
	if err != nil {
		return GPUTypeUnknown, err
	}
	return gpuTypeFromNative(v), nil
}

// BIOSInfo is the VBIOS identification triple.
type BIOSInfo struct {
	PartNumber string
	Version    string
	Date       string
}

// BIOS reads the VBIOS triple in one native call with three out-strings.
func (g *GPU) BIOS() (BIOSInfo, error) {
	if !g.iface.Valid() {
		return BIOSInfo{}, ErrReleased
	}
	var part, ver, date uintptr
	st := g.iface.call("BIOSInfo", bindings.Ref(&part), bindings.Ref(&ver), bindings.Ref(&date))
	runtime.KeepAlive(&part)
	runtime.KeepAlive(&ver)
	runtime.KeepAlive(&date)
	if !st.Succeeded() {
		return BIOSInfo{}, g.iface.callErr("BIOSInfo", st)
	}
	return BIOSInfo{
		PartNumber: g.iface.disp.GoString(part),
		Version:    g.iface.disp.GoString(ver),
		Date:       g.iface.disp.GoString(date),
	}, nil
}

// Extended negotiates the widened IADLXGPU1 capability on the same GPU. On
// success both handles coexist and release independently; GPUs driven by
// older drivers fail with ResultUnknownInterface and the receiver stays
// fully usable.
func (g *GPU) Extended() (*GPU1, error) {
	iface, err := g.iface.QueryInterface("IADLXGPU1")
	if err != nil {
		return nil, err
	}
	return &GPU1{GPU{iface: iface}}, nil
}

// GPU1 is the widened GPU capability set.
type GPU1 struct {
	GPU
}

func (g *GPU1) ProductName() (string, error) { return g.iface.getString("ProductName") }

func (g *GPU1) PCIBusType() (PCIBusType, error) {
	v, err := g.iface.getInt("PCIBusType")
	if err != nil {
		return PCIBusUnknown, err
	}
	return pciBusFromNative(v), nil
}

func (g *GPU1) PCIBusLaneWidth() (uint32, error) { return g.iface.getUint("PCIBusLaneWidth") }

// GPUInfo is an immutable snapshot of a GPU's static properties. It holds
// no native handle; building it releases nothing the caller owns.
type GPUInfo struct {
	Name        string
	VendorID    string
	DeviceID    string
	RevisionID  string
	UniqueID    int32
	Type        GPUType
	IsExternal  bool
	TotalVRAMMB uint32
	VRAMType    string
	BIOS        BIOSInfo
	DriverPath  string
	PNPString   string
}

// Info assembles the snapshot record from the GPU's typed getters. The
// handle still belongs to the caller afterwards.
func (g *GPU) Info() (GPUInfo, error) {
	var (
		info GPUInfo
		err  error
	)
	if info.Name, err = g.Name(); err != nil {
		return GPUInfo{}, err
	}
	if info.VendorID, err = g.VendorID(); err != nil {
		return GPUInfo{}, err
	}
	if info.DeviceID, err = g.DeviceID(); err != nil {
		return GPUInfo{}, err
	}
	if info.RevisionID, err = g.RevisionID(); err != nil {
		return GPUInfo{}, err
	}
	if info.UniqueID, err = g.UniqueID(); err != nil {
		return GPUInfo{}, err
	}
	if info.Type, err = g.Type(); err != nil {
		return GPUInfo{}, err
	}
	if info.IsExternal, err = g.IsExternal(); err != nil {
		return GPUInfo{}, err
	}
	if info.TotalVRAMMB, err = g.TotalVRAM(); err != nil {
		return GPUInfo{}, err
	}
	if info.VRAMType, err = g.VRAMType(); err != nil {
		return GPUInfo{}, err
	}
	if info.BIOS, err = g.BIOS(); err != nil {
		return GPUInfo{}, err
	}
	if info.DriverPath, err = g.DriverPath(); err != nil {
		return GPUInfo{}, err
	}
	if info.PNPString, err = g.PNPString(); err != nil {
		return GPUInfo{}, err
	}
	return info, nil
}

// ExtendedGPUInfo augments GPUInfo with the IADLXGPU1 properties. Fields
// are tagged rather than zeroed when the capability is unavailable.
type ExtendedGPUInfo struct {
	GPUInfo
	ProductName     Sample[string]
	PCIBus          Sample[PCIBusType]
	PCIBusLaneWidth Sample[uint32]
}

// ExtendedInfo assembles the widened snapshot. When the IADLXGPU1
// capability is not negotiable the base record is still returned with the
// extended fields tagged unsupported.
func (g *GPU) ExtendedInfo() (ExtendedGPUInfo, error) {
	base, err := g.Info()
	if err != nil {
		return ExtendedGPUInfo{}, err
	}
	out := ExtendedGPUInfo{GPUInfo: base}

	ext, err := g.Extended()
	if err != nil {
		if _, ok := ResultOf(err); ok {
			return out, nil
		}
		return ExtendedGPUInfo{}, err
	}
	defer ext.Release()

	if name, err := ext.ProductName(); err == nil {
		out.ProductName = Sample[string]{Value: name, Supported: true}
	}
	if bus, err := ext.PCIBusType(); err == nil {
		out.PCIBus = Sample[PCIBusType]{Value: bus, Supported: true}
	}
	if width, err := ext.PCIBusLaneWidth(); err == nil {
		out.PCIBusLaneWidth = Sample[uint32]{Value: width, Supported: true}
	}
	return out, nil
}

// GPUList is the typed sequence container over native GPU collections.
type GPUList struct {
	List
}

func newGPUList(iface *Interface) *GPUList {
	l := &GPUList{List: *newList(iface)}
	l.elemShape = bindings.ShapeGPU
	l.atMethod = "At_GPUList"
	l.addMethod = "Add_Back_GPUList"
	return l
}

// AtGPU returns the element at index as a freshly owned GPU handle.
func (l *GPUList) AtGPU(index uint32) (*GPU, error) {
	iface, err := l.At(index)
	if err != nil {
		return nil, err
	}
	return &GPU{iface: iface}, nil
}

// EachGPU visits every GPU in [Begin, End) in order, handing ownership of
// each freshly derived handle to fn under the list's element ownership
// rules.
func (l *GPUList) EachGPU(fn func(index uint32, gpu *GPU) error) error {
	return l.Each(func(i uint32, el *Interface) error {
		return fn(i, &GPU{iface: el})
	})
}

// FindByUniqueID scans [Begin, End) for the GPU whose unique identifier
// matches key. Every examined handle except the returned match is released
// before the scan moves on; the whole range is examined so duplicate keys
// deterministically yield the first. On a miss all obtained handles have
// been released and ErrNotFound is returned. Ownership of the match
// transfers to the caller.
func (l *GPUList) FindByUniqueID(key int32) (*GPU, error) {
	var match *GPU
	err := l.Each(func(_ uint32, el *Interface) error {
		gpu := &GPU{iface: el}
		if match != nil {
			gpu.Release()
			return nil
		}
		uid, err := gpu.UniqueID()
		if err != nil {
			gpu.Release()
			return err
		}
		if uid == key {
			match = gpu
			return nil
		}
		gpu.Release()
		return nil
	})
	if err != nil {
		if match != nil {
			match.Release()
		}
		return nil, err
	}
	if match == nil {
		return nil, ErrNotFound
	}
	return match, nil
}

package bindings

import "fmt"

// Shape describes the vtable contract of one native interface: the ordered
// list of method names whose index is the slot number, including every
// method inherited from the base interface. Shapes are immutable after
// registration.
//
// The order below is the ABI. It was transcribed from the ADLX SDK headers
// for the version pinned in RequiredVersion and must be re-verified against
// the headers whenever that constant moves.
type Shape struct {
	// ID is the string identifier the native QueryInterface method accepts
	// for this interface, e.g. "IADLXGPU1".
	ID string

	// RefCounted reports whether slots 0 and 1 are Acquire/Release. The
	// root system interface is the one exception: its lifetime is owned by
	// the library between initialize and terminate.
	RefCounted bool

	methods []string
	slots   map[string]int
}

// NewShape builds a Shape from an ordered method list.
func NewShape(id string, refCounted bool, methods ...string) *Shape {
	s := &Shape{ID: id, RefCounted: refCounted, methods: methods, slots: make(map[string]int, len(methods))}
	for i, name := range methods {
		if _, dup := s.slots[name]; dup {
			panic(fmt.Sprintf("bindings: duplicate method %q in shape %s", name, id))
		}
		s.slots[name] = i
	}
	return s
}

// Slot returns the vtable index of the named method. Asking for a method
// the shape does not declare is a programming error, not a native failure,
// so it panics rather than returning a Status.
func (s *Shape) Slot(name string) int {
	i, ok := s.slots[name]
	if !ok {
		panic(fmt.Sprintf("bindings: method %q not in shape %s", name, s.ID))
	}
	return i
}

// Has reports whether the shape declares the named method.
func (s *Shape) Has(name string) bool {
	_, ok := s.slots[name]
	return ok
}

// NumMethods returns the number of slots the shape declares.
func (s *Shape) NumMethods() int { return len(s.methods) }

// Derive builds a new shape that extends s with additional methods in
// declared order, under a new interface identifier.
func (s *Shape) Derive(id string, methods ...string) *Shape {
	all := make([]string, 0, len(s.methods)+len(methods))
	all = append(all, s.methods...)
	all = append(all, methods...)
	return NewShape(id, s.RefCounted, all...)
}

// refCountedBase is the IADLXInterface contract every reference-counted
// ADLX interface starts with.
var refCountedBase = []string{"Acquire", "Release", "QueryInterface"}

// Interface shapes for the supported ADLX surface. Each derived shape
// repeats its parent's slots so that the slot index of a method is simply
// its position in the table.
var (
	// ShapeInterface is the IADLXInterface base contract.
	ShapeInterface = NewShape("IADLXInterface", true, refCountedBase...)

	// ShapeSystem is the root object returned by ADLXInitialize. It is not
	// reference counted; the library owns it until terminate.
	ShapeSystem = NewShape("IADLXSystem", false,
		"GetHybridGraphicsType",
		"GetGPUs",
		"QueryInterface",
		"GetDisplaysServices",
		"GetDesktopsServices",
		"GetGPUsChangedHandling",
		"EnableLog",
		"Get3DSettingsServices",
		"GetGPUTuningServices",
		"GetPerformanceMonitoringServices",
		"TotalSystemRAM",
		"GetI2C",
	)

	// ShapeList is the generic IADLXList contract. At yields a new
	// reference the caller owns; the mutators are only documented for the
	// list kinds the native library calls out as editable.
	ShapeList = ShapeInterface.Derive("IADLXList",
		"Size",
		"Empty",
		"Begin",
		"End",
		"At",
		"Clear",
		"Remove_Back",
		"Add_Back",
	)

	// ShapeGPUList narrows element types but keeps the generic layout; the
	// typed accessors sit after the generic ones.
	ShapeGPUList = ShapeList.Derive("IADLXGPUList",
		"At_GPUList",
		"Add_Back_GPUList",
	)

	ShapeGPU = ShapeInterface.Derive("IADLXGPU",
		"VendorId",
		"ASICFamilyType",
		"Type",
		"IsExternal",
		"Name",
		"DriverPath",
		"PNPString",
		"HasDesktops",
		"TotalVRAM",
		"VRAMType",
		"BIOSInfo",
		"DeviceId",
		"RevisionId",
		"SubSystemId",
		"SubSystemVendorId",
		"UniqueId",
	)

	// ShapeGPU1 is the widened GPU capability set negotiated through
	// QueryInterface("IADLXGPU1").
	ShapeGPU1 = ShapeGPU.Derive("IADLXGPU1",
		"PCIBusType",
		"PCIBusLaneWidth",
		"MultiGPUMode",
		"ProductName",
	)

	ShapePerformanceMonitoringServices = ShapeInterface.Derive("IADLXPerformanceMonitoringServices",
		"GetSamplingIntervalRange",
		"SetSamplingInterval",
		"GetSamplingInterval",
		"GetMaxPerformanceMetricsHistorySizeRange",
		"SetMaxPerformanceMetricsHistorySize",
		"GetMaxPerformanceMetricsHistorySize",
		"ClearPerformanceMetricsHistory",
		"GetCurrentPerformanceMetricsHistorySize",
		"StartPerformanceMetricsTracking",
		"StopPerformanceMetricsTracking",
		"GetAllMetricsHistory",
		"GetGPUMetricsHistory",
		"GetSystemMetricsHistory",
		"GetFPSHistory",
		"GetCurrentAllMetrics",
		"GetCurrentGPUMetrics",
		"GetCurrentSystemMetrics",
		"GetCurrentFPS",
		"GetGPUMetricsSupport",
		"GetSystemMetricsSupport",
	)

	ShapeGPUMetrics = ShapeInterface.Derive("IADLXGPUMetrics",
		"TimeStamp",
		"GPUUsage",
		"GPUClockSpeed",
		"GPUVRAMClockSpeed",
		"GPUTemperature",
		"GPUHotspotTemperature",
		"GPUPower",
		"GPUTotalBoardPower",
		"GPUFanSpeed",
		"GPUVRAM",
		"GPUVoltage",
	)

	ShapeGPUMetricsSupport = ShapeInterface.Derive("IADLXGPUMetricsSupport",
		"IsSupportedGPUUsage",
		"IsSupportedGPUClockSpeed",
		"IsSupportedGPUVRAMClockSpeed",
		"IsSupportedGPUTemperature",
		"IsSupportedGPUHotspotTemperature",
		"IsSupportedGPUPower",
		"IsSupportedGPUTotalBoardPower",
		"IsSupportedGPUFanSpeed",
		"IsSupportedGPUVRAM",
		"IsSupportedGPUVoltage",
		"GetGPUUsageRange",
		"GetGPUClockSpeedRange",
		"GetGPUVRAMClockSpeedRange",
		"GetGPUTemperatureRange",
		"GetGPUHotspotTemperatureRange",
		"GetGPUPowerRange",
		"GetGPUFanSpeedRange",
		"GetGPUVRAMRange",
		"GetGPUVoltageRange",
		"GetGPUTotalBoardPowerRange",
	)

	ShapeGPUTuningServices = ShapeInterface.Derive("IADLXGPUTuningServices",
		"GetGPUTuningChangedHandling",
		"IsAtFactory",
		"ResetToFactory",
		"IsSupportedAutoTuning",
		"IsSupportedPresetTuning",
		"IsSupportedManualGFXTuning",
		"IsSupportedManualVRAMTuning",
		"IsSupportedManualFanTuning",
		"IsSupportedManualPowerTuning",
		"GetAutoTuning",
		"GetPresetTuning",
		"GetManualGFXTuning",
		"GetManualVRAMTuning",
		"GetManualFanTuning",
		"GetManualPowerTuning",
	)

	ShapeManualFanTuning = ShapeInterface.Derive("IADLXManualFanTuning",
		"GetFanTuningRanges",
		"GetFanTuningStates",
		"GetEmptyFanTuningStates",
		"IsValidFanTuningStates",
		"SetFanTuningStates",
		"IsSupportedZeroRPM",
		"GetZeroRPMState",
		"SetZeroRPMState",
	)

	ShapeManualFanTuningState = ShapeInterface.Derive("IADLXManualFanTuningState",
		"GetFanSpeed",
		"SetFanSpeed",
		"GetTemperature",
		"SetTemperature",
	)

	// ShapeFanTuningStateList is the one list kind the native library
	// documents as editable.
	ShapeFanTuningStateList = ShapeList.Derive("IADLXManualFanTuningStateList",
		"At_ManualFanTuningStateList",
		"Add_Back_ManualFanTuningStateList",
	)
)

// ShapeByID resolves a shape from its QueryInterface identifier. The set is
// closed; unknown identifiers return nil.
func ShapeByID(id string) *Shape {
	return shapeRegistry[id]
}

var shapeRegistry = map[string]*Shape{}

func init() {
	for _, s := range []*Shape{
		ShapeInterface,
		ShapeList,
		ShapeGPUList,
		ShapeGPU,
		ShapeGPU1,
		ShapePerformanceMonitoringServices,
		ShapeGPUMetrics,
		ShapeGPUMetricsSupport,
		ShapeGPUTuningServices,
		ShapeManualFanTuning,
		ShapeManualFanTuningState,
		ShapeFanTuningStateList,
	} {
		shapeRegistry[s.ID] = s
	}
}

package mockadlx

import (
	"sync"

	"github.com/epinter/adlxwrapper/internal/bindings"
)

// GPUSpec describes one fake GPU. Extended, when set, makes the widened
// IADLXGPU1 capability negotiable on the object.
type GPUSpec struct {
	Name       string
	VendorID   string
	DeviceID   string
	RevisionID string
	VRAMType   string
	DriverPath string
	PNPString  string

	UniqueID    int32
	Type        int32
	External    bool
	HasDesktops bool
	TotalVRAMMB uint32

	BIOSPartNumber string
	BIOSVersion    string
	BIOSDate       string

	Extended *GPU1Spec
}

// GPU1Spec holds the properties only reachable through the widened
// capability.
type GPU1Spec struct {
	ProductName     string
	PCIBusType      int32
	PCIBusLaneWidth uint32
}

// NewGPU builds a fake GPU object. When spec.Extended is set a second
// object with the IADLXGPU1 shape is registered as its negotiation target;
// the widened object answers the base getters too.
func (b *Backend) NewGPU(spec GPUSpec) *Object {
	gpu := b.NewObject(bindings.ShapeGPU)
	installGPUGetters(b, gpu, spec)

	if spec.Extended != nil {
		ext := b.NewObject(bindings.ShapeGPU1)
		installGPUGetters(b, ext, spec)
		e := *spec.Extended
		ext.On("ProductName", b.stringGetter(e.ProductName))
		ext.On("PCIBusType", func(args []uintptr) bindings.Status {
			PutInt32(args[0], e.PCIBusType)
			return bindings.StatusOK
		})
		ext.On("PCIBusLaneWidth", func(args []uintptr) bindings.Status {
			PutUint32(args[0], e.PCIBusLaneWidth)
			return bindings.StatusOK
		})
		// The widened object starts unowned; the first negotiation hands
		// out its first reference.
		ext.mu.Lock()
		ext.refs = 0
		ext.mu.Unlock()
		gpu.QueryTarget("IADLXGPU1", ext)
	}
	return gpu
}

func (b *Backend) stringGetter(s string) Handler {
	return func(args []uintptr) bindings.Status {
		PutUintptr(args[0], b.Intern(s))
		return bindings.StatusOK
	}
}

func installGPUGetters(b *Backend, o *Object, spec GPUSpec) {
	o.On("Name", b.stringGetter(spec.Name))
	o.On("VendorId", b.stringGetter(spec.VendorID))
	o.On("DeviceId", b.stringGetter(spec.DeviceID))
	o.On("RevisionId", b.stringGetter(spec.RevisionID))
	o.On("VRAMType", b.stringGetter(spec.VRAMType))
	o.On("DriverPath", b.stringGetter(spec.DriverPath))
	o.On("PNPString", b.stringGetter(spec.PNPString))
	o.On("UniqueId", func(args []uintptr) bindings.Status {
		PutInt32(args[0], spec.UniqueID)
		return bindings.StatusOK
	})
	o.On("Type", func(args []uintptr) bindings.Status {
		PutInt32(args[0], spec.Type)
		return bindings.StatusOK
	})
	o.On("TotalVRAM", func(args []uintptr) bindings.Status {
		PutUint32(args[0], spec.TotalVRAMMB)
		return bindings.StatusOK
	})
	o.On("IsExternal", func(args []uintptr) bindings.Status {
		PutBool(args[0], spec.External)
		return bindings.StatusOK
	})
	o.On("HasDesktops", func(args []uintptr) bindings.Status {
		PutBool(args[0], spec.HasDesktops)
		return bindings.StatusOK
	})
	o.On("BIOSInfo", func(args []uintptr) bindings.Status {
		PutUintptr(args[0], b.Intern(spec.BIOSPartNumber))
		PutUintptr(args[1], b.Intern(spec.BIOSVersion))
		PutUintptr(args[2], b.Intern(spec.BIOSDate))
		return bindings.StatusOK
	})
}

// NewGPUList builds a fake snapshot GPU list over the given elements. The
// first valid index is first, which need not be zero. Indexing acquires a
// fresh reference on the element, out-of-range indices fail with invalid
// args, and the mutator slots stay unimplemented because the native GPU
// list is a snapshot.
func (b *Backend) NewGPUList(first uint32, gpus ...*Object) *Object {
	list := b.NewObject(bindings.ShapeGPUList)
	installIndexing(list, first, gpus, "At", "At_GPUList")
	return list
}

func installIndexing(list *Object, first uint32, elems []*Object, atMethods ...string) {
	size := uint32(len(elems))
	list.On("Size", func(args []uintptr) bindings.Status {
		PutUint32(args[0], size)
		return bindings.StatusOK
	})
	list.On("Empty", func(args []uintptr) bindings.Status {
		PutBool(args[0], size == 0)
		return bindings.StatusOK
	})
	list.On("Begin", func(args []uintptr) bindings.Status {
		PutUint32(args[0], first)
		return bindings.StatusOK
	})
	list.On("End", func(args []uintptr) bindings.Status {
		PutUint32(args[0], first+size)
		return bindings.StatusOK
	})
	at := func(args []uintptr) bindings.Status {
		idx := uint32(args[0])
		if idx < first || idx >= first+size {
			return bindings.StatusInvalidArgs
		}
		return elems[idx-first].AcquireFor(args[1])
	}
	for _, m := range atMethods {
		list.On(m, at)
	}
}

// MetricsSpec describes one fake metric sample set. A nil field means the
// hardware does not support that metric: the metrics object answers its
// getter with not-supported and the support descriptor reports false.
type MetricsSpec struct {
	Timestamp int64

	Usage       *float64
	Temperature *float64
	Hotspot     *float64
	Power       *float64
	BoardPower  *float64

	ClockSpeed     *int32
	VRAMClockSpeed *int32
	FanSpeed       *int32
	VRAMUsed       *int32
	Voltage        *int32
}

// Float returns a pointer to v for MetricsSpec fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v for MetricsSpec fields.
func Int(v int32) *int32 { return &v }

// NewGPUMetrics builds a fake metric sample set from spec.
func (b *Backend) NewGPUMetrics(spec MetricsSpec) *Object {
	m := b.NewObject(bindings.ShapeGPUMetrics)
	m.On("TimeStamp", func(args []uintptr) bindings.Status {
		PutInt64(args[0], spec.Timestamp)
		return bindings.StatusOK
	})
	double := func(method string, v *float64) {
		m.On(method, func(args []uintptr) bindings.Status {
			if v == nil {
				return bindings.StatusNotSupported
			}
			PutFloat64(args[0], *v)
			return bindings.StatusOK
		})
	}
	integer := func(method string, v *int32) {
		m.On(method, func(args []uintptr) bindings.Status {
			if v == nil {
				return bindings.StatusNotSupported
			}
			PutInt32(args[0], *v)
			return bindings.StatusOK
		})
	}
	double("GPUUsage", spec.Usage)
	double("GPUTemperature", spec.Temperature)
	double("GPUHotspotTemperature", spec.Hotspot)
	double("GPUPower", spec.Power)
	double("GPUTotalBoardPower", spec.BoardPower)
	integer("GPUClockSpeed", spec.ClockSpeed)
	integer("GPUVRAMClockSpeed", spec.VRAMClockSpeed)
	integer("GPUFanSpeed", spec.FanSpeed)
	integer("GPUVRAM", spec.VRAMUsed)
	integer("GPUVoltage", spec.Voltage)
	return m
}

// NewGPUMetricsSupport builds the support descriptor matching spec: each
// is-supported flag mirrors whether the corresponding field is set, and
// every range getter answers with a fixed plausible range.
func (b *Backend) NewGPUMetricsSupport(spec MetricsSpec) *Object {
	s := b.NewObject(bindings.ShapeGPUMetricsSupport)
	flag := func(method string, supported bool) {
		s.On(method, func(args []uintptr) bindings.Status {
			PutBool(args[0], supported)
			return bindings.StatusOK
		})
	}
	flag("IsSupportedGPUUsage", spec.Usage != nil)
	flag("IsSupportedGPUClockSpeed", spec.ClockSpeed != nil)
	flag("IsSupportedGPUVRAMClockSpeed", spec.VRAMClockSpeed != nil)
	flag("IsSupportedGPUTemperature", spec.Temperature != nil)
	flag("IsSupportedGPUHotspotTemperature", spec.Hotspot != nil)
	flag("IsSupportedGPUPower", spec.Power != nil)
	flag("IsSupportedGPUTotalBoardPower", spec.BoardPower != nil)
	flag("IsSupportedGPUFanSpeed", spec.FanSpeed != nil)
	flag("IsSupportedGPUVRAM", spec.VRAMUsed != nil)
	flag("IsSupportedGPUVoltage", spec.Voltage != nil)

	ranges := map[string]bindings.IntRange{
		"GetGPUUsageRange":              {Min: 0, Max: 100, Step: 1},
		"GetGPUClockSpeedRange":         {Min: 500, Max: 3000, Step: 1},
		"GetGPUVRAMClockSpeedRange":     {Min: 97, Max: 1250, Step: 1},
		"GetGPUTemperatureRange":        {Min: 0, Max: 110, Step: 1},
		"GetGPUHotspotTemperatureRange": {Min: 0, Max: 110, Step: 1},
		"GetGPUPowerRange":              {Min: 0, Max: 500, Step: 1},
		"GetGPUTotalBoardPowerRange":    {Min: 0, Max: 600, Step: 1},
		"GetGPUFanSpeedRange":           {Min: 0, Max: 3300, Step: 1},
		"GetGPUVRAMRange":               {Min: 0, Max: 16384, Step: 1},
		"GetGPUVoltageRange":            {Min: 0, Max: 1200, Step: 1},
	}
	for method, r := range ranges {
		s.On(method, func(args []uintptr) bindings.Status {
			PutIntRange(args[0], r)
			return bindings.StatusOK
		})
	}
	return s
}

// PerfServices is the fake performance monitoring services object. Metric
// and support objects are registered per GPU; indexing them acquires a
// fresh reference each call, matching the native accessors.
type PerfServices struct {
	*Object

	mu       sync.Mutex
	interval int32
	metrics  map[uintptr]*Object
	support  map[uintptr]*Object
	pending  map[uintptr]int
}

// NewPerfServices builds the fake services object with a 1000ms default
// sampling interval.
func (b *Backend) NewPerfServices() *PerfServices {
	p := &PerfServices{
		Object:   b.NewObject(bindings.ShapePerformanceMonitoringServices),
		interval: 1000,
		metrics:  make(map[uintptr]*Object),
		support:  make(map[uintptr]*Object),
		pending:  make(map[uintptr]int),
	}
	p.On("GetSamplingInterval", func(args []uintptr) bindings.Status {
		p.mu.Lock()
		defer p.mu.Unlock()
		PutInt32(args[0], p.interval)
		return bindings.StatusOK
	})
	p.On("SetSamplingInterval", func(args []uintptr) bindings.Status {
		ms := Int32Arg(args[0])
		if ms < 1 {
			return bindings.StatusInvalidArgs
		}
		p.mu.Lock()
		p.interval = ms
		p.mu.Unlock()
		return bindings.StatusOK
	})
	p.On("GetSamplingIntervalRange", func(args []uintptr) bindings.Status {
		PutIntRange(args[0], bindings.IntRange{Min: 1, Max: 1000, Step: 1})
		return bindings.StatusOK
	})
	p.On("GetCurrentGPUMetrics", func(args []uintptr) bindings.Status {
		return p.derive(p.metrics, args, true)
	})
	p.On("GetGPUMetricsSupport", func(args []uintptr) bindings.Status {
		return p.derive(p.support, args, false)
	})
	return p
}

// RegisterGPU binds the metric and support objects returned for gpu.
func (p *PerfServices) RegisterGPU(gpu, metrics, support *Object) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.metrics[gpu.ptr] = metrics
	p.support[gpu.ptr] = support
}

// SetPending makes the next n metric derivations for gpu fail with the
// pending status, modeling the warm-up window after initialization.
func (p *PerfServices) SetPending(gpu *Object, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending[gpu.ptr] = n
}

func (p *PerfServices) derive(table map[uintptr]*Object, args []uintptr, consumesPending bool) bindings.Status {
	gpu := args[0]
	p.mu.Lock()
	if consumesPending && p.pending[gpu] > 0 {
		p.pending[gpu]--
		p.mu.Unlock()
		return bindings.StatusPendingOperation
	}
	target, ok := table[gpu]
	p.mu.Unlock()
	if !ok {
		return bindings.StatusInvalidArgs
	}
	return target.AcquireFor(args[1])
}

// NewFanState builds one fake editable fan curve point.
func (b *Backend) NewFanState(speedRPM, temperatureC int32) *Object {
	var mu sync.Mutex
	speed, temp := speedRPM, temperatureC

	s := b.NewObject(bindings.ShapeManualFanTuningState)
	s.On("GetFanSpeed", func(args []uintptr) bindings.Status {
		mu.Lock()
		defer mu.Unlock()
		PutInt32(args[0], speed)
		return bindings.StatusOK
	})
	s.On("SetFanSpeed", func(args []uintptr) bindings.Status {
		mu.Lock()
		defer mu.Unlock()
		speed = Int32Arg(args[0])
		return bindings.StatusOK
	})
	s.On("GetTemperature", func(args []uintptr) bindings.Status {
		mu.Lock()
		defer mu.Unlock()
		PutInt32(args[0], temp)
		return bindings.StatusOK
	})
	s.On("SetTemperature", func(args []uintptr) bindings.Status {
		mu.Lock()
		defer mu.Unlock()
		temp = Int32Arg(args[0])
		return bindings.StatusOK
	})
	return s
}

// NewFanStateList builds the fake fan tuning state list, the one editable
// list kind. Besides indexing it implements the mutators: append, clear
// and remove-back all work.
func (b *Backend) NewFanStateList(first uint32, states ...*Object) *Object {
	list := b.NewObject(bindings.ShapeFanTuningStateList)

	var mu sync.Mutex
	elems := append([]*Object{}, states...)

	list.On("Size", func(args []uintptr) bindings.Status {
		mu.Lock()
		defer mu.Unlock()
		PutUint32(args[0], uint32(len(elems)))
		return bindings.StatusOK
	})
	list.On("Empty", func(args []uintptr) bindings.Status {
		mu.Lock()
		defer mu.Unlock()
		PutBool(args[0], len(elems) == 0)
		return bindings.StatusOK
	})
	list.On("Begin", func(args []uintptr) bindings.Status {
		PutUint32(args[0], first)
		return bindings.StatusOK
	})
	list.On("End", func(args []uintptr) bindings.Status {
		mu.Lock()
		defer mu.Unlock()
		PutUint32(args[0], first+uint32(len(elems)))
		return bindings.StatusOK
	})
	at := func(args []uintptr) bindings.Status {
		idx := uint32(args[0])
		mu.Lock()
		if idx < first || idx >= first+uint32(len(elems)) {
			mu.Unlock()
			return bindings.StatusInvalidArgs
		}
		el := elems[idx-first]
		mu.Unlock()
		return el.AcquireFor(args[1])
	}
	list.On("At", at)
	list.On("At_ManualFanTuningStateList", at)

	add := func(args []uintptr) bindings.Status {
		el, ok := b.object(args[0])
		if !ok {
			return bindings.StatusInvalidArgs
		}
		el.acquire()
		mu.Lock()
		elems = append(elems, el)
		mu.Unlock()
		return bindings.StatusOK
	}
	list.On("Add_Back", add)
	list.On("Add_Back_ManualFanTuningStateList", add)
	list.On("Clear", func(args []uintptr) bindings.Status {
		mu.Lock()
		dropped := elems
		elems = nil
		mu.Unlock()
		for _, el := range dropped {
			el.dispatch(el.shape.Slot("Release"), nil)
		}
		return bindings.StatusOK
	})
	list.On("Remove_Back", func(args []uintptr) bindings.Status {
		mu.Lock()
		if len(elems) == 0 {
			mu.Unlock()
			return bindings.StatusInvalidArgs
		}
		el := elems[len(elems)-1]
		elems = elems[:len(elems)-1]
		mu.Unlock()
		el.dispatch(el.shape.Slot("Release"), nil)
		return bindings.StatusOK
	})
	return list
}

func (b *Backend) object(ptr uintptr) (*Object, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.objects[ptr]
	return o, ok
}

// FanRig is the fake manual fan tuning capability for one GPU. Base is the
// plain interface handle the tuning services hand out; Tuning is the
// negotiation target answering the capability methods.
type FanRig struct {
	Base   *Object
	Tuning *Object

	mu         sync.Mutex
	current    *Object
	emptySize  int
	lastEmpty  *Object
	applied    uintptr
	invalidAt  int32
	zeroRPM    bool
	zeroRPMSet bool
}

// NewFanRig builds a fan tuning rig whose active curve is current and
// whose empty-states factory produces lists of emptySize zeroed points.
func (b *Backend) NewFanRig(current *Object, emptySize int) *FanRig {
	r := &FanRig{
		Base:      b.NewObject(bindings.ShapeInterface),
		Tuning:    b.NewObject(bindings.ShapeManualFanTuning),
		current:   current,
		emptySize: emptySize,
		invalidAt: -1,
	}
	// The tuning object starts unowned; negotiation hands out its first
	// reference.
	r.Tuning.mu.Lock()
	r.Tuning.refs = 0
	r.Tuning.mu.Unlock()
	r.Base.QueryTarget("IADLXManualFanTuning", r.Tuning)

	r.Tuning.On("GetFanTuningRanges", func(args []uintptr) bindings.Status {
		PutIntRange(args[0], bindings.IntRange{Min: 0, Max: 3300, Step: 1})
		PutIntRange(args[1], bindings.IntRange{Min: 25, Max: 100, Step: 1})
		return bindings.StatusOK
	})
	r.Tuning.On("GetFanTuningStates", func(args []uintptr) bindings.Status {
		r.mu.Lock()
		cur := r.current
		r.mu.Unlock()
		if cur == nil {
			return bindings.StatusNotSupported
		}
		return cur.AcquireFor(args[0])
	})
	r.Tuning.On("GetEmptyFanTuningStates", func(args []uintptr) bindings.Status {
		// Each call produces a fresh list; its initial reference transfers
		// to the caller. The element references stay owned by the list.
		states := make([]*Object, r.emptySize)
		for i := range states {
			states[i] = b.NewFanState(0, 0)
		}
		list := b.NewFanStateList(0, states...)
		r.mu.Lock()
		r.lastEmpty = list
		r.mu.Unlock()
		PutUintptr(args[0], list.ptr)
		return bindings.StatusOK
	})
	r.Tuning.On("IsValidFanTuningStates", func(args []uintptr) bindings.Status {
		r.mu.Lock()
		bad := r.invalidAt
		r.mu.Unlock()
		if bad >= 0 {
			PutInt32(args[1], bad)
			return bindings.StatusInvalidArgs
		}
		PutInt32(args[1], -1)
		return bindings.StatusOK
	})
	r.Tuning.On("SetFanTuningStates", func(args []uintptr) bindings.Status {
		r.mu.Lock()
		r.applied = args[0]
		r.mu.Unlock()
		return bindings.StatusOK
	})
	r.Tuning.On("IsSupportedZeroRPM", func(args []uintptr) bindings.Status {
		PutBool(args[0], true)
		return bindings.StatusOK
	})
	r.Tuning.On("GetZeroRPMState", func(args []uintptr) bindings.Status {
		r.mu.Lock()
		defer r.mu.Unlock()
		PutBool(args[0], r.zeroRPM)
		return bindings.StatusOK
	})
	r.Tuning.On("SetZeroRPMState", func(args []uintptr) bindings.Status {
		r.mu.Lock()
		r.zeroRPM = BoolArg(args[0])
		r.zeroRPMSet = true
		r.mu.Unlock()
		return bindings.StatusOK
	})
	return r
}

// RejectStatesAt makes validation fail pointing at index until cleared
// with a negative value.
func (r *FanRig) RejectStatesAt(index int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidAt = index
}

// Applied returns the native pointer of the last committed state list, or
// zero when nothing was committed.
func (r *FanRig) Applied() uintptr {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applied
}

// LastEmpty returns the list produced by the most recent empty-states
// call.
func (r *FanRig) LastEmpty() *Object {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastEmpty
}

// ZeroRPM reports the current zero-RPM toggle and whether a setter ran.
func (r *FanRig) ZeroRPM() (value, wasSet bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zeroRPM, r.zeroRPMSet
}

// TuningServices is the fake GPU tuning services object. Fan rigs are
// registered per GPU.
type TuningServices struct {
	*Object

	mu        sync.Mutex
	rigs      map[uintptr]*FanRig
	atFactory map[uintptr]bool
}

// NewTuningServices builds the fake tuning services object.
func (b *Backend) NewTuningServices() *TuningServices {
	t := &TuningServices{
		Object:    b.NewObject(bindings.ShapeGPUTuningServices),
		rigs:      make(map[uintptr]*FanRig),
		atFactory: make(map[uintptr]bool),
	}
	t.On("IsAtFactory", func(args []uintptr) bindings.Status {
		t.mu.Lock()
		defer t.mu.Unlock()
		PutBool(args[1], t.atFactory[args[0]])
		return bindings.StatusOK
	})
	t.On("ResetToFactory", func(args []uintptr) bindings.Status {
		t.mu.Lock()
		t.atFactory[args[0]] = true
		t.mu.Unlock()
		return bindings.StatusOK
	})
	t.On("IsSupportedManualFanTuning", func(args []uintptr) bindings.Status {
		t.mu.Lock()
		_, ok := t.rigs[args[0]]
		t.mu.Unlock()
		PutBool(args[1], ok)
		return bindings.StatusOK
	})
	t.On("GetManualFanTuning", func(args []uintptr) bindings.Status {
		t.mu.Lock()
		rig, ok := t.rigs[args[0]]
		t.mu.Unlock()
		if !ok {
			return bindings.StatusNotSupported
		}
		return rig.Base.AcquireFor(args[1])
	})
	return t
}

// RegisterGPU makes fan tuning negotiable for gpu through rig.
func (t *TuningServices) RegisterGPU(gpu *Object, rig *FanRig) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rigs[gpu.ptr] = rig
	t.atFactory[gpu.ptr] = true
}

// SystemSpec wires the fake root system object. Nil services stay
// uninstalled and calling their accessor panics, which is fine for tests
// that never touch them.
type SystemSpec struct {
	GPUs       *Object
	Perf       *PerfServices
	Tuning     *TuningServices
	TotalRAMMB uint32
}

// NewSystem builds the fake root system object. It is not reference
// counted, matching the native root whose lifetime is owned by the
// library.
func (b *Backend) NewSystem(spec SystemSpec) *Object {
	sys := b.NewObject(bindings.ShapeSystem)
	if spec.GPUs != nil {
		sys.On("GetGPUs", func(args []uintptr) bindings.Status {
			return spec.GPUs.AcquireFor(args[0])
		})
	}
	if spec.Perf != nil {
		sys.On("GetPerformanceMonitoringServices", func(args []uintptr) bindings.Status {
			return spec.Perf.AcquireFor(args[0])
		})
	}
	if spec.Tuning != nil {
		sys.On("GetGPUTuningServices", func(args []uintptr) bindings.Status {
			return spec.Tuning.AcquireFor(args[0])
		})
	}
	sys.On("TotalSystemRAM", func(args []uintptr) bindings.Status {
		PutUint32(args[0], spec.TotalRAMMB)
		return bindings.StatusOK
	})
	return sys
}

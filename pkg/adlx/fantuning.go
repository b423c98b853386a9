package adlx

import (
	"fmt"
	"runtime"

	"github.com/epinter/adlxwrapper/internal/bindings"
)

// GPUTuning wraps the native GPU tuning services.
type GPUTuning struct {
	iface *Interface
}

// Release disposes the services handle.
func (t *GPUTuning) Release() { t.iface.Release() }

// IsAtFactory reports whether gpu runs with factory tuning.
func (t *GPUTuning) IsAtFactory(gpu *GPU) (bool, error) {
	return t.gpuFlag("IsAtFactory", gpu)
}

// IsSupportedManualFanTuning reports whether gpu supports the manual fan
// tuning capability.
func (t *GPUTuning) IsSupportedManualFanTuning(gpu *GPU) (bool, error) {
	return t.gpuFlag("IsSupportedManualFanTuning", gpu)
}

func (t *GPUTuning) gpuFlag(method string, gpu *GPU) (bool, error) {
	if gpu == nil || !gpu.Valid() {
		return false, ErrNilInterface
	}
	if !t.iface.Valid() {
		return false, ErrReleased
	}
	var v bindings.Bool
	st := t.iface.call(method, gpu.iface.Ptr(), bindings.Ref(&v))
	runtime.KeepAlive(&v)
	if !st.Succeeded() {
		return false, t.iface.callErr(method, st)
	}
	return v != 0, nil
}

// ResetToFactory restores factory tuning on gpu.
func (t *GPUTuning) ResetToFactory(gpu *GPU) error {
	if gpu == nil || !gpu.Valid() {
		return ErrNilInterface
	}
	if !t.iface.Valid() {
		return ErrReleased
	}
	st := t.iface.call("ResetToFactory", gpu.iface.Ptr())
	if !st.Succeeded() {
		return t.iface.callErr("ResetToFactory", st)
	}
	return nil
}

// ManualFanTuning negotiates the manual fan tuning capability for gpu. The
// native accessor hands back a base interface; the versioned capability is
// then negotiated on it, so GPUs without fan control fail here with a
// typed result rather than at the first setter.
func (t *GPUTuning) ManualFanTuning(gpu *GPU) (*ManualFanTuning, error) {
	if gpu == nil || !gpu.Valid() {
		return nil, ErrNilInterface
	}
	base, err := t.iface.getInterface("GetManualFanTuning", bindings.ShapeInterface, gpu.iface.Ptr())
	if err != nil {
		return nil, err
	}
	defer base.Release()

	iface, err := base.QueryInterface("IADLXManualFanTuning")
	if err != nil {
		return nil, err
	}
	return &ManualFanTuning{iface: iface}, nil
}

// ManualFanTuning wraps the negotiated fan tuning capability of one GPU.
type ManualFanTuning struct {
	iface *Interface
}

func (f *ManualFanTuning) Release() { f.iface.Release() }

// FanTuningRanges bounds the legal fan curve points.
type FanTuningRanges struct {
	SpeedRPM     IntRange
	TemperatureC IntRange
}

// Ranges reads both tuning ranges in one native call.
func (f *ManualFanTuning) Ranges() (FanTuningRanges, error) {
	if !f.iface.Valid() {
		return FanTuningRanges{}, ErrReleased
	}
	var speed, temp bindings.IntRange
	st := f.iface.call("GetFanTuningRanges", bindings.Ref(&speed), bindings.Ref(&temp))
	runtime.KeepAlive(&speed)
	runtime.KeepAlive(&temp)
	if !st.Succeeded() {
		return FanTuningRanges{}, f.iface.callErr("GetFanTuningRanges", st)
	}
	return FanTuningRanges{
		SpeedRPM:     rangeFromNative(speed),
		TemperatureC: rangeFromNative(temp),
	}, nil
}

// States returns the active fan curve as a freshly owned editable list.
func (f *ManualFanTuning) States() (*FanTuningStateList, error) {
	iface, err := f.iface.getInterface("GetFanTuningStates", bindings.ShapeFanTuningStateList)
	if err != nil {
		return nil, err
	}
	return newFanTuningStateList(iface), nil
}

// EmptyStates returns a fresh editable list for building a new fan curve.
func (f *ManualFanTuning) EmptyStates() (*FanTuningStateList, error) {
	iface, err := f.iface.getInterface("GetEmptyFanTuningStates", bindings.ShapeFanTuningStateList)
	if err != nil {
		return nil, err
	}
	return newFanTuningStateList(iface), nil
}

// ValidateStates checks a candidate fan curve. On rejection the returned
// index points at the offending state.
func (f *ManualFanTuning) ValidateStates(states *FanTuningStateList) (bool, int32, error) {
	if states == nil || !states.iface.Valid() {
		return false, 0, ErrNilInterface
	}
	if !f.iface.Valid() {
		return false, 0, ErrReleased
	}
	var errIndex int32 = -1
	st := f.iface.call("IsValidFanTuningStates", states.iface.Ptr(), bindings.Ref(&errIndex))
	runtime.KeepAlive(&errIndex)
	if st == bindings.StatusInvalidArgs {
		return false, errIndex, nil
	}
	if !st.Succeeded() {
		return false, 0, f.iface.callErr("IsValidFanTuningStates", st)
	}
	return true, -1, nil
}

// SetStates commits a fan curve to the hardware.
func (f *ManualFanTuning) SetStates(states *FanTuningStateList) error {
	if states == nil || !states.iface.Valid() {
		return ErrNilInterface
	}
	if !f.iface.Valid() {
		return ErrReleased
	}
	st := f.iface.call("SetFanTuningStates", states.iface.Ptr())
	if !st.Succeeded() {
		return f.iface.callErr("SetFanTuningStates", st)
	}
	return nil
}

// SupportsZeroRPM reports whether the fan can stop completely under low
// load.
func (f *ManualFanTuning) SupportsZeroRPM() (bool, error) {
	return f.iface.getBool("IsSupportedZeroRPM")
}

// ZeroRPMState reads the zero-RPM toggle.
func (f *ManualFanTuning) ZeroRPMState() (bool, error) {
	return f.iface.getBool("GetZeroRPMState")
}

// SetZeroRPMState writes the zero-RPM toggle.
func (f *ManualFanTuning) SetZeroRPMState(enabled bool) error {
	return f.iface.setBool("SetZeroRPMState", enabled)
}

// FanTuningStateList is the one list kind the native library documents as
// editable.
type FanTuningStateList struct {
	List
}

func newFanTuningStateList(iface *Interface) *FanTuningStateList {
	l := &FanTuningStateList{List: *newList(iface)}
	l.elemShape = bindings.ShapeManualFanTuningState
	l.atMethod = "At_ManualFanTuningStateList"
	l.addMethod = "Add_Back_ManualFanTuningStateList"
	return l
}

// AtState returns the element at index as a freshly owned state handle.
func (l *FanTuningStateList) AtState(index uint32) (*FanTuningState, error) {
	iface, err := l.At(index)
	if err != nil {
		return nil, err
	}
	return &FanTuningState{iface: iface}, nil
}

// FanTuningState wraps one editable fan curve point.
type FanTuningState struct {
	iface *Interface
}

func (s *FanTuningState) Release() { s.iface.Release() }

func (s *FanTuningState) FanSpeed() (int32, error)    { return s.iface.getInt("GetFanSpeed") }
func (s *FanTuningState) SetFanSpeed(rpm int32) error { return s.iface.setInt("SetFanSpeed", rpm) }
func (s *FanTuningState) Temperature() (int32, error) { return s.iface.getInt("GetTemperature") }
func (s *FanTuningState) SetTemperature(c int32) error {
	return s.iface.setInt("SetTemperature", c)
}

// FanCurvePoint is one immutable point of a fan curve record.
type FanCurvePoint struct {
	FanSpeedRPM  int32
	TemperatureC int32
}

// ReadFanCurve assembles the current fan curve record, releasing every
// state handle it derives, including the list itself.
func (f *ManualFanTuning) ReadFanCurve() ([]FanCurvePoint, error) {
	states, err := f.States()
	if err != nil {
		return nil, err
	}
	defer states.Release()

	var points []FanCurvePoint
	err = states.Each(func(_ uint32, el *Interface) error {
		state := &FanTuningState{iface: el}
		defer state.Release()

		speed, err := state.FanSpeed()
		if err != nil {
			return err
		}
		temp, err := state.Temperature()
		if err != nil {
			return err
		}
		points = append(points, FanCurvePoint{FanSpeedRPM: speed, TemperatureC: temp})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return points, nil
}

// ApplyFanCurve builds a fresh state list from points, validates it, and
// commits it. Every handle derived along the way is released on every
// path. The curve must have exactly as many points as the native list
// provides slots for; the native validator rejects anything else and the
// offending index is reported in the error.
func (f *ManualFanTuning) ApplyFanCurve(points []FanCurvePoint) error {
	states, err := f.EmptyStates()
	if err != nil {
		return err
	}
	defer states.Release()

	size, err := states.Size()
	if err != nil {
		return err
	}
	if int(size) != len(points) {
		return fmt.Errorf("adlx: fan curve needs exactly %d points, got %d", size, len(points))
	}

	begin, err := states.Begin()
	if err != nil {
		return err
	}
	err = states.Each(func(i uint32, el *Interface) error {
		state := &FanTuningState{iface: el}
		defer state.Release()

		p := points[i-begin]
		if err := state.SetFanSpeed(p.FanSpeedRPM); err != nil {
			return err
		}
		return state.SetTemperature(p.TemperatureC)
	})
	if err != nil {
		return err
	}

	ok, badIndex, err := f.ValidateStates(states)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("adlx: fan curve rejected at state %d: %w",
			badIndex, &CallError{Op: "IsValidFanTuningStates", Code: ResultInvalidArgs})
	}
	return f.SetStates(states)
}

package adlx

import (
	"fmt"

	"github.com/epinter/adlxwrapper/internal/bindings"
)

// List wraps a native IADLXList object. Valid indices are [Begin(), End());
// the native side supplies both bounds and Begin is not guaranteed to be
// zero. Every At call yields a freshly owned element handle, even when the
// same index is read twice, and the consumer must release each one.
//
// The mutators are part of the generic vtable but the native library only
// documents them for the list kinds it calls out as editable (the fan
// tuning state list). Calling them on snapshot lists is native-defined
// behavior that this wrapper does not paper over.
type List struct {
	iface *Interface

	// elemShape is the shape applied to elements produced by At. The
	// generic list yields base IADLXInterface handles that callers widen
	// through QueryInterface; typed lists override this.
	elemShape *bindings.Shape
	atMethod  string
	addMethod string
}

func newList(iface *Interface) *List {
	return &List{
		iface:     iface,
		elemShape: bindings.ShapeInterface,
		atMethod:  "At",
		addMethod: "Add_Back",
	}
}

// Release disposes the list handle itself. Element handles produced by At
// are independent and stay valid.
func (l *List) Release() { l.iface.Release() }

// Size returns the number of elements.
func (l *List) Size() (uint32, error) { return l.iface.getUint("Size") }

// Empty reports whether the list holds no elements.
func (l *List) Empty() (bool, error) { return l.iface.getBool("Empty") }

// Begin returns the first valid index.
func (l *List) Begin() (uint32, error) { return l.iface.getUint("Begin") }

// End returns one past the last valid index.
func (l *List) End() (uint32, error) { return l.iface.getUint("End") }

// At returns the element at index as a freshly owned handle. The caller
// must release it; the list retains its own reference independently.
func (l *List) At(index uint32) (*Interface, error) {
	return l.iface.getInterface(l.atMethod, l.elemShape, uintptr(index))
}

// AddBack appends an element. The list takes its own reference; the caller
// still owns and must release el.
func (l *List) AddBack(el *Interface) error {
	if !l.iface.Valid() {
		return ErrReleased
	}
	if !el.Valid() {
		return ErrNilInterface
	}
	st := l.iface.call(l.addMethod, el.Ptr())
	if !st.Succeeded() {
		return l.iface.callErr(l.addMethod, st)
	}
	return nil
}

// Clear removes all elements.
func (l *List) Clear() error {
	if !l.iface.Valid() {
		return ErrReleased
	}
	st := l.iface.call("Clear")
	if !st.Succeeded() {
		return l.iface.callErr("Clear", st)
	}
	return nil
}

// RemoveBack removes the last element.
func (l *List) RemoveBack() error {
	if !l.iface.Valid() {
		return ErrReleased
	}
	st := l.iface.call("Remove_Back")
	if !st.Succeeded() {
		return l.iface.callErr("Remove_Back", st)
	}
	return nil
}

// Each visits every element in [Begin, End) in order, handing ownership of
// each freshly derived handle to fn. fn must release the handle (directly
// or by transferring it onward); returning an error stops the walk after
// the current element.
func (l *List) Each(fn func(index uint32, el *Interface) error) error {
	begin, err := l.Begin()
	if err != nil {
		return err
	}
	end, err := l.End()
	if err != nil {
		return err
	}
	for i := begin; i < end; i++ {
		el, err := l.At(i)
		if err != nil {
			return fmt.Errorf("at index %d: %w", i, err)
		}
		if err := fn(i, el); err != nil {
			return err
		}
	}
	return nil
}

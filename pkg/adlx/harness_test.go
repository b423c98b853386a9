package adlx

import (
	"testing"

	"github.com/epinter/adlxwrapper/pkg/adlx/mockadlx"
)

// testSystem builds a fake backend with three GPUs keyed 5, 7 and 9 plus
// performance monitoring and tuning services, wired into a live context.
type testSystem struct {
	back   *mockadlx.Backend
	adlx   *ADLX
	gpus   []*mockadlx.Object
	perf   *mockadlx.PerfServices
	tuning *mockadlx.TuningServices
}

func newTestSystem(t *testing.T, firstIndex uint32) *testSystem {
	t.Helper()
	back := mockadlx.New()

	specs := []mockadlx.GPUSpec{
		{Name: "Radeon RX 7600", UniqueID: 5, Type: 2, VendorID: "1002"},
		{Name: "Radeon RX 7900 XTX", UniqueID: 7, Type: 2, VendorID: "1002"},
		{Name: "Radeon 780M", UniqueID: 9, Type: 1, VendorID: "1002"},
	}
	gpus := make([]*mockadlx.Object, len(specs))
	for i, s := range specs {
		gpus[i] = back.NewGPU(s)
	}
	list := back.NewGPUList(firstIndex, gpus...)
	perf := back.NewPerfServices()
	tuning := back.NewTuningServices()
	sys := back.NewSystem(mockadlx.SystemSpec{
		GPUs:       list,
		Perf:       perf,
		Tuning:     tuning,
		TotalRAMMB: 32768,
	})

	return &testSystem{
		back:   back,
		adlx:   newContext(back, sys.Ptr(), Config{}),
		gpus:   gpus,
		perf:   perf,
		tuning: tuning,
	}
}

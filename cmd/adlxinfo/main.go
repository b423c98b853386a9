package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/epinter/adlxwrapper/pkg/adlx"
)

func main() {
	var (
		libPath  = flag.String("lib", "", "Path to the ADLX module (default: system location)")
		watch    = flag.Bool("watch", false, "Live metrics view")
		interval = flag.Duration("interval", time.Second, "Refresh interval for -watch")
		fan      = flag.Bool("fan", false, "Print the fan curve of each GPU that supports manual fan tuning")
	)
	flag.Parse()

	log.Printf("adlxwrapper version: %s", adlx.WrapperVersion())
	log.Printf("requires ADLX: %s or newer", adlx.RequiredNativeVersion())

	a, err := adlx.Init(adlx.Config{LibraryPath: *libPath})
	if err != nil {
		if code, ok := adlx.ResultOf(err); ok {
			fmt.Fprintf(os.Stderr, "ADLX unavailable: %v (%s)\n", err, code)
			os.Exit(1)
		}
		log.Fatalf("unexpected failure initializing ADLX: %v", err)
	}
	defer func() {
		if terr := a.Terminate(); terr != nil && !errors.Is(terr, adlx.ErrTerminated) {
			log.Printf("terminate error: %v", terr)
		}
	}()

	if *watch {
		if err := runWatch(a, *interval); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(a, *fan); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(a *adlx.ADLX, withFan bool) error {
	fmt.Printf("Native ADLX: %s\n", a.NativeVersion())
	if ram, err := a.TotalSystemRAM(); err == nil {
		fmt.Printf("System RAM: %d MB\n", ram)
	}

	gpus, err := a.GPUs()
	if err != nil {
		return fmt.Errorf("list gpus: %w", err)
	}
	defer gpus.Release()

	perf, err := a.PerformanceMonitoring()
	if err != nil {
		return fmt.Errorf("performance services: %w", err)
	}
	defer perf.Release()

	var tuning *adlx.GPUTuning
	if withFan {
		if tuning, err = a.GPUTuning(); err != nil {
			return fmt.Errorf("tuning services: %w", err)
		}
		defer tuning.Release()
	}

	return gpus.EachGPU(func(index uint32, gpu *adlx.GPU) error {
		defer gpu.Release()

		info, err := gpu.ExtendedInfo()
		if err != nil {
			return fmt.Errorf("gpu %d info: %w", index, err)
		}
		printGPU(index, info)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		snap, err := perf.WaitCollectGPUMetrics(ctx, gpu)
		cancel()
		switch {
		case err == nil:
			printMetrics(snap)
		case errors.Is(err, adlx.ErrNotSupported):
			fmt.Println("  metrics: not supported")
		default:
			return fmt.Errorf("gpu %d metrics: %w", index, err)
		}

		if tuning != nil {
			if err := printFanCurve(tuning, gpu); err != nil {
				return fmt.Errorf("gpu %d fan curve: %w", index, err)
			}
		}
		return nil
	})
}

func printGPU(index uint32, info adlx.ExtendedGPUInfo) {
	fmt.Printf("GPU %d: %s\n", index, info.Name)
	fmt.Printf("  vendor %s device %s rev %s  uid %d  %s\n",
		info.VendorID, info.DeviceID, info.RevisionID, info.UniqueID, info.Type)
	fmt.Printf("  vram %d MB %s  driver %s\n", info.TotalVRAMMB, info.VRAMType, info.DriverPath)
	fmt.Printf("  vbios %s %s (%s)\n", info.BIOS.PartNumber, info.BIOS.Version, info.BIOS.Date)
	if info.ProductName.Supported {
		fmt.Printf("  board %s\n", info.ProductName.Value)
	}
	if info.PCIBus.Supported {
		fmt.Printf("  bus %s x%d\n", info.PCIBus.Value, info.PCIBusLaneWidth.Value)
	}
}

func printMetrics(snap adlx.GPUMetricsSnapshot) {
	fmt.Printf("  metrics @%d\n", snap.Timestamp)
	printSample("usage", snap.Usage, "%.1f %%")
	printSample("clock", snap.ClockSpeedMHz, "%d MHz")
	printSample("vram clock", snap.VRAMClockSpeedMHz, "%d MHz")
	printSample("temp", snap.TemperatureC, "%.1f C")
	printSample("hotspot", snap.HotspotTemperatureC, "%.1f C")
	printSample("power", snap.PowerW, "%.1f W")
	printSample("board power", snap.TotalBoardPowerW, "%.1f W")
	printSample("fan", snap.FanSpeedRPM, "%d RPM")
	printSample("vram used", snap.VRAMUsedMB, "%d MB")
	printSample("voltage", snap.VoltageMV, "%d mV")
}

func printSample[T any](name string, s adlx.Sample[T], format string) {
	if !s.Supported {
		return
	}
	fmt.Printf("    %-12s "+format+"\n", name, s.Value)
}

func printFanCurve(tuning *adlx.GPUTuning, gpu *adlx.GPU) error {
	supported, err := tuning.IsSupportedManualFanTuning(gpu)
	if err != nil {
		return err
	}
	if !supported {
		fmt.Println("  fan tuning: not supported")
		return nil
	}

	fan, err := tuning.ManualFanTuning(gpu)
	if err != nil {
		return err
	}
	defer fan.Release()

	points, err := fan.ReadFanCurve()
	if err != nil {
		return err
	}
	fmt.Println("  fan curve:")
	for _, p := range points {
		fmt.Printf("    %3d C -> %4d RPM\n", p.TemperatureC, p.FanSpeedRPM)
	}
	return nil
}

package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/epinter/adlxwrapper/pkg/adlx"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#D7263D")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")).
			Width(14)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

type watchModel struct {
	adlx     *adlx.ADLX
	perf     *adlx.PerformanceMonitoring
	gpus     []*adlx.GPU
	names    []string
	interval time.Duration

	selected int
	snap     adlx.GPUMetricsSnapshot
	haveSnap bool
	err      error
}

type tickMsg time.Time

type snapshotMsg struct {
	snap adlx.GPUMetricsSnapshot
	err  error
}

func runWatch(a *adlx.ADLX, interval time.Duration) error {
	list, err := a.GPUs()
	if err != nil {
		return fmt.Errorf("list gpus: %w", err)
	}
	m := &watchModel{adlx: a, interval: interval}
	err = list.EachGPU(func(_ uint32, gpu *adlx.GPU) error {
		name, nerr := gpu.Name()
		if nerr != nil {
			gpu.Release()
			return nerr
		}
		m.gpus = append(m.gpus, gpu)
		m.names = append(m.names, name)
		return nil
	})
	list.Release()
	if err != nil {
		m.releaseAll()
		return err
	}
	if len(m.gpus) == 0 {
		return fmt.Errorf("no GPUs reported")
	}

	m.perf, err = a.PerformanceMonitoring()
	if err != nil {
		m.releaseAll()
		return fmt.Errorf("performance services: %w", err)
	}
	defer m.releaseAll()

	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m *watchModel) releaseAll() {
	for _, g := range m.gpus {
		g.Release()
	}
	if m.perf != nil {
		m.perf.Release()
	}
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.collect(), m.tick())
}

func (m *watchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// collect snapshots the selected GPU at creation time; the returned
// command runs on another goroutine while Update keeps mutating m.
func (m *watchModel) collect() tea.Cmd {
	gpu := m.gpus[m.selected]
	return func() tea.Msg {
		snap, err := m.perf.CollectGPUMetrics(gpu)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.selected = (m.selected + len(m.gpus) - 1) % len(m.gpus)
			m.haveSnap = false
			return m, m.collect()
		case "right", "l", "tab":
			m.selected = (m.selected + 1) % len(m.gpus)
			m.haveSnap = false
			return m, m.collect()
		}
	case tickMsg:
		return m, tea.Batch(m.collect(), m.tick())
	case snapshotMsg:
		m.err = msg.err
		if msg.err == nil {
			m.snap = msg.snap
			m.haveSnap = true
		}
	}
	return m, nil
}

func (m *watchModel) View() string {
	s := titleStyle.Render(fmt.Sprintf("adlxinfo  %s  [%d/%d]",
		m.names[m.selected], m.selected+1, len(m.gpus))) + "\n\n"

	switch {
	case m.err != nil:
		s += errorStyle.Render(fmt.Sprintf("collect failed: %v", m.err)) + "\n"
	case !m.haveSnap:
		s += dimStyle.Render("sampling...") + "\n"
	default:
		s += renderRow("usage", m.snap.Usage, "%.1f %%")
		s += renderRow("clock", m.snap.ClockSpeedMHz, "%d MHz")
		s += renderRow("vram clock", m.snap.VRAMClockSpeedMHz, "%d MHz")
		s += renderRow("temperature", m.snap.TemperatureC, "%.1f C")
		s += renderRow("hotspot", m.snap.HotspotTemperatureC, "%.1f C")
		s += renderRow("power", m.snap.PowerW, "%.1f W")
		s += renderRow("board power", m.snap.TotalBoardPowerW, "%.1f W")
		s += renderRow("fan", m.snap.FanSpeedRPM, "%d RPM")
		s += renderRow("vram used", m.snap.VRAMUsedMB, "%d MB")
		s += renderRow("voltage", m.snap.VoltageMV, "%d mV")
	}

	s += "\n" + dimStyle.Render("←/→ switch GPU · q quit")
	return s
}

func renderRow[T any](name string, sample adlx.Sample[T], format string) string {
	if !sample.Supported {
		return labelStyle.Render(name) + dimStyle.Render("n/a") + "\n"
	}
	return labelStyle.Render(name) + valueStyle.Render(fmt.Sprintf(format, sample.Value)) + "\n"
}

// internal/hw/sysfs/system.go
package sysfs

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/tamzrod/board-probe/internal/probe"
)

// System reports runtime allocator bookkeeping and sysfs clock/thermal values.
type System struct {
	freqPath    string // cpufreq scaling_cur_freq, kHz
	cpuinfoPath string // fallback "cpu MHz" source
	tempPath    string // thermal zone, raw millidegrees
	memStats    func(*runtime.MemStats)
}

func NewSystem(freqPath, tempPath string) *System {
	return &System{
		freqPath:    freqPath,
		cpuinfoPath: "/proc/cpuinfo",
		tempPath:    tempPath,
		memStats:    runtime.ReadMemStats,
	}
}

// Memory returns heap bytes not in use and heap bytes allocated.
func (s *System) Memory() (uint64, uint64, error) {
	var m runtime.MemStats
	s.memStats(&m)

	if m.HeapSys < m.HeapAlloc {
		return 0, 0, fmt.Errorf("sysfs system: heap accounting inconsistent (sys=%d alloc=%d)", m.HeapSys, m.HeapAlloc)
	}
	return m.HeapSys - m.HeapAlloc, m.HeapAlloc, nil
}

// CPUFreq returns the current clock of cpu0 in Hz.
// cpufreq is preferred; /proc/cpuinfo covers kernels without a cpufreq driver.
func (s *System) CPUFreq() (uint64, error) {
	khz, err := readUint(s.freqPath)
	if err == nil {
		return khz * 1000, nil
	}

	mhz, cerr := cpuinfoMHz(s.cpuinfoPath)
	if cerr != nil {
		return 0, fmt.Errorf("sysfs system: cpu frequency: %w", errors.Join(err, cerr))
	}
	return uint64(mhz * 1e6), nil
}

// Temperature returns the thermal zone's raw reading.
// A missing zone is ErrUnsupported, not a failure.
func (s *System) Temperature() (float64, error) {
	if s.tempPath == "" {
		return 0, probe.ErrUnsupported
	}
	raw, err := os.ReadFile(s.tempPath)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, probe.ErrUnsupported
	}
	if err != nil {
		return 0, fmt.Errorf("sysfs system: temperature: %w", err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil {
		return 0, fmt.Errorf("sysfs system: temperature: %w", err)
	}
	return v, nil
}

func readUint(path string) (uint64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(strings.TrimSpace(string(raw)), 10, 64)
}

// cpuinfoMHz returns the first "cpu MHz" value in a /proc/cpuinfo-format file.
func cpuinfoMHz(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), ":")
		if !ok || strings.TrimSpace(key) != "cpu MHz" {
			continue
		}
		return strconv.ParseFloat(strings.TrimSpace(value), 64)
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return 0, errors.New("no cpu MHz entry")
}

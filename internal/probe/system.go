// internal/probe/system.go
package probe

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/board-probe/internal/clock"
	"github.com/tamzrod/board-probe/internal/contain"
)

// Memory is the allocator's own bookkeeping, in bytes.
type Memory struct {
	Free      uint64 `json:"free"`
	Allocated uint64 `json:"allocated"`
}

// SystemMetrics is the flat MONITOR_DATA record.
// Temp is omitted entirely when the platform has no reading.
type SystemMetrics struct {
	Memory    Memory   `json:"memory"`
	Freq      uint64   `json:"freq"`
	Timestamp int64    `json:"timestamp"`
	Temp      *float64 `json:"temp,omitempty"`
}

// CollectSystem gathers runtime metrics once.
// Memory and frequency are mandatory; temperature is optional and contained.
func CollectSystem(src SystemSource, clk clock.Clock, log logrus.FieldLogger) (SystemMetrics, contain.Tally, error) {
	var tally contain.Tally

	free, allocated, err := src.Memory()
	if err != nil {
		return SystemMetrics{}, tally, fmt.Errorf("system: memory: %w", err)
	}

	freq, err := src.CPUFreq()
	if err != nil {
		return SystemMetrics{}, tally, fmt.Errorf("system: freq: %w", err)
	}

	m := SystemMetrics{
		Memory:    Memory{Free: free, Allocated: allocated},
		Freq:      freq,
		Timestamp: clk.Now().Unix(),
	}

	u := contain.Attempt(func() (float64, error) {
		v, err := src.Temperature()
		if err != nil {
			return 0, err
		}
		// JSON has no NaN or Inf; such a reading is unreadable, not fatal.
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("system: temperature: non-finite reading %v", v)
		}
		return v, nil
	})
	tally.Add(u.Present)
	if u.Present {
		temp := u.Value
		m.Temp = &temp
	} else {
		log.WithError(u.Err).Debug("system: temperature omitted")
	}

	return m, tally, nil
}

// internal/hw/sim/sim.go
package sim

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/tamzrod/board-probe/internal/config"
	"github.com/tamzrod/board-probe/internal/probe"
)

// ErrUnavailable is returned by a factory whose subsystem is marked
// unavailable in the board file.
var ErrUnavailable = errors.New("sim: subsystem unavailable")

// Board is a board described entirely by configuration.
// It lets every probe path run on hosts without the hardware.
type Board struct {
	cfg config.SimConfig
}

func New(cfg config.SimConfig) *Board {
	return &Board{cfg: cfg}
}

func (b *Board) unavailable(kind probe.Kind) error {
	if b.cfg.Unavailable[string(kind)] {
		return fmt.Errorf("%w: %s", ErrUnavailable, kind)
	}
	return nil
}

// ---- GPIO ----

func (b *Board) GPIO() (probe.PinReader, error) {
	if err := b.unavailable(probe.KindGPIO); err != nil {
		return nil, err
	}
	return pins(b.cfg.Levels), nil
}

type pins map[int]int

func (p pins) ReadInput(pin int) (int, error) {
	v, ok := p[pin]
	if !ok {
		return 0, fmt.Errorf("sim gpio: pin %d not wired", pin)
	}
	return v, nil
}

// ---- I2C ----

func (b *Board) I2C() (probe.BusOpener, error) {
	if err := b.unavailable(probe.KindI2C); err != nil {
		return nil, err
	}
	return buses(b.cfg.Buses), nil
}

type buses map[int][]int

func (m buses) Open(spec probe.BusSpec) (probe.Bus, error) {
	addrs, ok := m[spec.ID]
	if !ok {
		return nil, fmt.Errorf("sim i2c: bus %d (scl=%d sda=%d) failed to initialize", spec.ID, spec.SCL, spec.SDA)
	}
	return bus(addrs), nil
}

type bus []int

func (b bus) Scan() ([]int, error) {
	out := make([]int, len(b))
	copy(out, b)
	return out, nil
}

func (bus) Close() error { return nil }

// ---- WIFI ----

func (b *Board) WiFi() (probe.Radio, error) {
	if err := b.unavailable(probe.KindWiFi); err != nil {
		return nil, err
	}

	aps := make([]probe.AccessPoint, 0, len(b.cfg.Networks))
	for i, n := range b.cfg.Networks {
		mac, err := net.ParseMAC(n.BSSID)
		if err != nil {
			return nil, fmt.Errorf("sim wifi: network %d: %w", i, err)
		}
		aps = append(aps, probe.AccessPoint{
			SSID:     []byte(n.SSID),
			BSSID:    mac,
			Channel:  n.Channel,
			RSSI:     n.RSSI,
			Security: n.Security,
		})
	}
	return radio(aps), nil
}

type radio []probe.AccessPoint

func (radio) Activate(context.Context) error { return nil }

func (r radio) Scan(ctx context.Context) ([]probe.AccessPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]probe.AccessPoint, len(r))
	copy(out, r)
	return out, nil
}

// ---- SYSTEM ----

func (b *Board) System() (probe.SystemSource, error) {
	if err := b.unavailable(probe.KindSystem); err != nil {
		return nil, err
	}
	return system{cfg: b.cfg}, nil
}

type system struct {
	cfg config.SimConfig
}

func (s system) Memory() (uint64, uint64, error) {
	return s.cfg.Memory.Free, s.cfg.Memory.Allocated, nil
}

func (s system) CPUFreq() (uint64, error) {
	if s.cfg.Freq == 0 {
		return 0, errors.New("sim system: no clock configured")
	}
	return s.cfg.Freq, nil
}

func (s system) Temperature() (float64, error) {
	if s.cfg.Temp == nil {
		return 0, probe.ErrUnsupported
	}
	return *s.cfg.Temp, nil
}

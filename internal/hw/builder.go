// internal/hw/builder.go
package hw

import (
	"fmt"
	"time"

	"github.com/tamzrod/board-probe/internal/config"
	"github.com/tamzrod/board-probe/internal/hw/modbus"
	"github.com/tamzrod/board-probe/internal/hw/sim"
	"github.com/tamzrod/board-probe/internal/hw/sysfs"
	"github.com/tamzrod/board-probe/internal/probe"
)

// Roots of the kernel interfaces the sysfs drivers use.
// Overridable for tests and for chroots.
type Roots struct {
	Dev string // i2c-dev nodes
	Net string // network class
}

// DefaultRoots are the standard Linux locations.
var DefaultRoots = Roots{Dev: "/dev", Net: "/sys/class/net"}

// Build wires one driver factory per probe from validated config.
// Factories are lazy: nothing is opened until the probe runs.
// ONE attempt per call. No retries.
func Build(c *config.Config, roots Roots) probe.Drivers {
	board := sim.New(c.Sim)

	var d probe.Drivers

	switch c.GPIO.Driver {
	case config.DriverSim:
		d.GPIO = board.GPIO
	case config.DriverModbus:
		m := c.Modbus
		d.GPIO = func() (probe.PinReader, error) {
			r, err := modbus.New(modbus.Config{
				Mode:        m.Mode,
				Endpoint:    m.Endpoint,
				UnitID:      m.UnitID,
				Timeout:     time.Duration(m.TimeoutMs) * time.Millisecond,
				AddressBase: m.AddressBase,
				Area:        m.Area,
				BaudRate:    m.BaudRate,
				DataBits:    m.DataBits,
				Parity:      m.Parity,
				StopBits:    m.StopBits,
			})
			if err != nil {
				return nil, err
			}
			return r, nil
		}
	default:
		root := c.GPIO.Root
		d.GPIO = func() (probe.PinReader, error) {
			g, err := sysfs.NewGPIO(root)
			if err != nil {
				return nil, err
			}
			return g, nil
		}
	}

	switch c.I2C.Driver {
	case config.DriverSim:
		d.I2C = board.I2C
	default:
		dev := roots.Dev
		d.I2C = func() (probe.BusOpener, error) {
			return sysfs.NewI2C(dev), nil
		}
	}

	switch c.WiFi.Driver {
	case config.DriverSim:
		d.WiFi = board.WiFi
	default:
		iface, netRoot := c.WiFi.Interface, roots.Net
		d.WiFi = func() (probe.Radio, error) {
			r, err := sysfs.NewRadio(netRoot, iface, sysfs.ExecRunner)
			if err != nil {
				return nil, err
			}
			return r, nil
		}
	}

	switch c.System.Driver {
	case config.DriverSim:
		d.System = board.System
	default:
		freq, temp := c.System.FreqPath, c.System.TempPath
		d.System = func() (probe.SystemSource, error) {
			return sysfs.NewSystem(freq, temp), nil
		}
	}

	return d
}

// BusSpecs converts configured buses into probe candidates, keeping order.
func BusSpecs(c *config.Config) []probe.BusSpec {
	out := make([]probe.BusSpec, 0, len(c.I2C.Buses))
	for _, b := range c.I2C.Buses {
		out = append(out, probe.BusSpec{ID: b.ID, SCL: b.SCL, SDA: b.SDA, Device: b.Device})
	}
	return out
}

// Describe names the driver behind each probe, for logs and --list.
func Describe(c *config.Config, kind probe.Kind) string {
	switch kind {
	case probe.KindGPIO:
		switch c.GPIO.Driver {
		case config.DriverModbus:
			return fmt.Sprintf("modbus %s %s unit=%d", c.Modbus.Mode, c.Modbus.Endpoint, c.Modbus.UnitID)
		case config.DriverSim:
			return "sim"
		}
		return "sysfs " + c.GPIO.Root
	case probe.KindI2C:
		if c.I2C.Driver == config.DriverSim {
			return "sim"
		}
		return "i2c-dev"
	case probe.KindWiFi:
		if c.WiFi.Driver == config.DriverSim {
			return "sim"
		}
		return "iw " + c.WiFi.Interface
	case probe.KindSystem:
		if c.System.Driver == config.DriverSim {
			return "sim"
		}
		return "runtime+sysfs"
	}
	return ""
}

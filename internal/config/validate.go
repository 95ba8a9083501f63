// internal/config/validate.go
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// maxI2CAddress is the top of the 7-bit address space.
const maxI2CAddress = 127

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil configuration")
	}

	// ------------------------------------------------------------
	// DRIVER SELECTION
	// ------------------------------------------------------------

	drivers := []struct {
		section string
		name    string
		allowed []string
	}{
		{"gpio", cfg.GPIO.Driver, []string{DriverSysfs, DriverModbus, DriverSim}},
		{"i2c", cfg.I2C.Driver, []string{DriverSysfs, DriverSim}},
		{"wifi", cfg.WiFi.Driver, []string{DriverSysfs, DriverSim}},
		{"system", cfg.System.Driver, []string{DriverSysfs, DriverSim}},
	}

	for _, d := range drivers {
		if !oneOf(d.name, d.allowed) {
			return fmt.Errorf(
				"%s: unsupported driver %q (allowed: %s)",
				d.section,
				d.name,
				strings.Join(d.allowed, ", "),
			)
		}
	}

	// ------------------------------------------------------------
	// CANDIDATE SETS
	// ------------------------------------------------------------

	seenPin := make(map[int]struct{}, len(cfg.GPIO.Pins))
	for _, pin := range cfg.GPIO.Pins {
		if pin < 0 {
			return fmt.Errorf("gpio: pin %d must be >= 0", pin)
		}
		if _, dup := seenPin[pin]; dup {
			return fmt.Errorf("gpio: pin %d listed twice", pin)
		}
		seenPin[pin] = struct{}{}
	}

	seenBus := make(map[int]struct{}, len(cfg.I2C.Buses))
	for _, b := range cfg.I2C.Buses {
		if b.ID < 0 {
			return fmt.Errorf("i2c: bus id %d must be >= 0", b.ID)
		}
		if b.SCL == b.SDA {
			return fmt.Errorf("i2c: bus %d uses pin %d for both scl and sda", b.ID, b.SCL)
		}
		if _, dup := seenBus[b.ID]; dup {
			return fmt.Errorf("i2c: bus id %d listed twice", b.ID)
		}
		seenBus[b.ID] = struct{}{}
	}

	// ------------------------------------------------------------
	// MODBUS REMOTE I/O (only when selected)
	// ------------------------------------------------------------

	if strings.EqualFold(cfg.GPIO.Driver, DriverModbus) {
		m := cfg.Modbus
		if m.Endpoint == "" {
			return fmt.Errorf("modbus: endpoint required when gpio.driver is modbus")
		}
		if !oneOf(m.Mode, []string{"tcp", "rtu"}) {
			return fmt.Errorf("modbus: unsupported mode %q", m.Mode)
		}
		if !oneOf(m.Area, []string{"discrete", "coil"}) {
			return fmt.Errorf("modbus: unsupported area %q", m.Area)
		}
		if m.TimeoutMs < 0 {
			return fmt.Errorf("modbus: timeout_ms must be >= 0")
		}
		for _, pin := range cfg.GPIO.Pins {
			if int(m.AddressBase)+pin > 0xFFFF {
				return fmt.Errorf("modbus: pin %d overflows address space from base %d", pin, m.AddressBase)
			}
		}
	}

	// ------------------------------------------------------------
	// SIMULATED BOARD
	// ------------------------------------------------------------

	for pin, level := range cfg.Sim.Levels {
		if level != 0 && level != 1 {
			return fmt.Errorf("sim: pin %d level %d must be 0 or 1", pin, level)
		}
	}
	for id, addrs := range cfg.Sim.Buses {
		for _, a := range addrs {
			if a < 0 || a > maxI2CAddress {
				return fmt.Errorf("sim: bus %d address %d outside 0-%d", id, a, maxI2CAddress)
			}
		}
	}

	// ------------------------------------------------------------
	// AMBIENT
	// ------------------------------------------------------------

	if cfg.Log.Level != "" {
		if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
			return fmt.Errorf("log: %w", err)
		}
	}
	if cfg.Log.Format != "" && !oneOf(cfg.Log.Format, []string{"text", "json"}) {
		return fmt.Errorf("log: unsupported format %q", cfg.Log.Format)
	}
	if cfg.Sink.Redis.DB < 0 {
		return fmt.Errorf("sink.redis: db must be >= 0")
	}

	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimSpace(v), a) {
			return true
		}
	}
	return false
}

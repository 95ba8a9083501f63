// internal/probe/types.go
package probe

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by drivers for optional readings the platform
// does not expose (e.g. no thermal sensor).
var ErrUnsupported = errors.New("probe: unsupported on this platform")

// ---- DRIVER CONTRACTS ----

// PinReader abstracts digital input access.
type PinReader interface {
	// ReadInput configures pin as a digital input and returns its level.
	ReadInput(pin int) (int, error)
}

// BusSpec is one I2C bus candidate: bus id plus its clock/data pins.
type BusSpec struct {
	ID     int
	SCL    int
	SDA    int
	Device string // optional driver-specific node
}

// Bus is an initialized I2C bus.
type Bus interface {
	// Scan queries addresses 0-127 and returns those that acknowledged.
	Scan() ([]int, error)
	Close() error
}

// BusOpener initializes I2C buses.
type BusOpener interface {
	Open(spec BusSpec) (Bus, error)
}

// AccessPoint is one raw scan entry as reported by a radio driver.
type AccessPoint struct {
	SSID     []byte
	BSSID    []byte
	Channel  int
	RSSI     int
	Security int // driver ordinal, see SecurityLabel
}

// Radio is the station-mode Wi-Fi interface.
type Radio interface {
	Activate(ctx context.Context) error
	// Scan blocks for the driver's own scan duration.
	Scan(ctx context.Context) ([]AccessPoint, error)
}

// SystemSource exposes runtime metrics.
type SystemSource interface {
	Memory() (free, allocated uint64, err error)
	CPUFreq() (uint64, error)
	// Temperature returns the raw driver reading or ErrUnsupported.
	Temperature() (float64, error)
}

// ---- PAYLOADS ----

// ErrorRecord replaces the normal payload when a probe cannot run.
// Timestamp is attached by the system probe only.
type ErrorRecord struct {
	Error     string `json:"error"`
	Timestamp *int64 `json:"timestamp,omitempty"`
}

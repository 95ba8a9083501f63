// internal/probe/probe.go
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/board-probe/internal/clock"
	"github.com/tamzrod/board-probe/internal/contain"
	"github.com/tamzrod/board-probe/internal/marker"
)

// Kind names one probe.
type Kind string

const (
	KindGPIO   Kind = "gpio"
	KindI2C    Kind = "i2c"
	KindWiFi   Kind = "wifi"
	KindSystem Kind = "system"
)

// Kinds lists every probe in a stable order.
var Kinds = []Kind{KindGPIO, KindI2C, KindWiFi, KindSystem}

// ErrUnknownKind is returned for probe names outside Kinds.
var ErrUnknownKind = errors.New("probe: unknown probe")

// ParseKind accepts a probe name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Tag is the marker tag carrying this probe's payload.
func (k Kind) Tag() marker.Tag {
	switch k {
	case KindGPIO:
		return marker.TagGPIO
	case KindI2C:
		return marker.TagI2C
	case KindWiFi:
		return marker.TagWiFi
	case KindSystem:
		return marker.TagMonitor
	default:
		return ""
	}
}

// Drivers opens the hardware behind each probe.
// Each factory is called at most once per invocation. No retries.
// A factory error means the subsystem is unavailable.
type Drivers struct {
	GPIO   func() (PinReader, error)
	I2C    func() (BusOpener, error)
	WiFi   func() (Radio, error)
	System func() (SystemSource, error)
}

// Runner runs probes against one board.
type Runner struct {
	Drivers Drivers
	Pins    []int
	Buses   []BusSpec
	Clock   clock.Clock
	Log     logrus.FieldLogger
}

// Outcome is the result of one probe invocation.
// Payload is always set for a known Kind: the normal shape or an ErrorRecord.
type Outcome struct {
	Kind     Kind
	Payload  any
	Err      error // probe-level failure, already reflected in Payload
	Units    contain.Tally
	Duration time.Duration
}

// Run executes exactly one probe.
// No failure escapes: returned errors and panics become an ErrorRecord payload.
func (r *Runner) Run(ctx context.Context, kind Kind) (out Outcome) {
	clk := r.Clock
	if clk == nil {
		clk = clock.Real()
	}
	log := r.logger().WithField("probe", string(kind))

	start := clk.Now()
	out.Kind = kind

	defer func() {
		if rec := recover(); rec != nil {
			out.Err = fmt.Errorf("probe %s: panic: %v", kind, rec)
			out.Payload = NewErrorRecord(kind, out.Err, clk)
		}
		out.Duration = clk.Now().Sub(start)
		if out.Err != nil {
			log.WithError(out.Err).Warn("probe failed")
			return
		}
		log.WithFields(logrus.Fields{
			"attempted": out.Units.Attempted,
			"reported":  out.Units.Present,
		}).Debug("probe complete")
	}()

	var err error
	switch kind {
	case KindGPIO:
		out.Payload, out.Units, err = r.runGPIO(log)
	case KindI2C:
		out.Payload, out.Units, err = r.runI2C(log)
	case KindWiFi:
		out.Payload, out.Units, err = r.runWiFi(ctx)
	case KindSystem:
		out.Payload, out.Units, err = r.runSystem(clk, log)
	default:
		out.Err = fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
		return out
	}

	if err != nil {
		out.Err = err
		out.Payload = NewErrorRecord(kind, err, clk)
	}
	return out
}

func (r *Runner) runGPIO(log logrus.FieldLogger) (any, contain.Tally, error) {
	if r.Drivers.GPIO == nil {
		return nil, contain.Tally{}, errors.New("gpio: no driver configured")
	}
	reader, err := r.Drivers.GPIO()
	if err != nil {
		return nil, contain.Tally{}, fmt.Errorf("gpio: %w", err)
	}
	defer closeDriver(reader)

	states, tally := ReadGPIO(reader, r.Pins, log)
	return states, tally, nil
}

func (r *Runner) runI2C(log logrus.FieldLogger) (any, contain.Tally, error) {
	if r.Drivers.I2C == nil {
		return nil, contain.Tally{}, errors.New("i2c: no driver configured")
	}
	opener, err := r.Drivers.I2C()
	if err != nil {
		return nil, contain.Tally{}, fmt.Errorf("i2c: %w", err)
	}
	defer closeDriver(opener)

	devices, tally := ScanI2C(opener, r.Buses, log)
	return devices, tally, nil
}

func (r *Runner) runWiFi(ctx context.Context) (any, contain.Tally, error) {
	if r.Drivers.WiFi == nil {
		return nil, contain.Tally{}, errors.New("wifi: no driver configured")
	}
	radio, err := r.Drivers.WiFi()
	if err != nil {
		return nil, contain.Tally{}, fmt.Errorf("wifi: %w", err)
	}
	defer closeDriver(radio)

	nets, err := ScanWiFi(ctx, radio)
	if err != nil {
		return nil, contain.Tally{}, err
	}
	return nets, contain.Tally{Attempted: len(nets), Present: len(nets)}, nil
}

func (r *Runner) runSystem(clk clock.Clock, log logrus.FieldLogger) (any, contain.Tally, error) {
	if r.Drivers.System == nil {
		return nil, contain.Tally{}, errors.New("system: no driver configured")
	}
	src, err := r.Drivers.System()
	if err != nil {
		return nil, contain.Tally{}, fmt.Errorf("system: %w", err)
	}
	defer closeDriver(src)

	m, tally, err := CollectSystem(src, clk, log)
	if err != nil {
		return nil, tally, err
	}
	return m, tally, nil
}

// NewErrorRecord builds the substitute payload for kind.
// The system probe keeps a best-effort timestamp so failures can be correlated.
func NewErrorRecord(kind Kind, err error, clk clock.Clock) ErrorRecord {
	rec := ErrorRecord{Error: err.Error()}
	if kind == KindSystem {
		ts := clk.Now().Unix()
		rec.Timestamp = &ts
	}
	return rec
}

func closeDriver(d any) {
	if c, ok := d.(io.Closer); ok {
		_ = c.Close()
	}
}

func (r *Runner) logger() logrus.FieldLogger {
	if r.Log != nil {
		return r.Log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

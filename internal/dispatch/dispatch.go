// internal/dispatch/dispatch.go
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/board-probe/internal/clock"
	"github.com/tamzrod/board-probe/internal/marker"
	"github.com/tamzrod/board-probe/internal/monitor"
	"github.com/tamzrod/board-probe/internal/probe"
	"github.com/tamzrod/board-probe/internal/sink"
)

// Dispatcher runs exactly one probe per invocation and delivers its
// marker line. The console sink is the contract; tees and metrics are
// best effort and never change what the console received.
type Dispatcher struct {
	Runner  *probe.Runner
	Console sink.Sink
	Tees    sink.Multi

	Metrics     *monitor.Recorder // optional
	MetricsPath string            // textfile target, empty disables the write

	Clock clock.Clock
	Log   logrus.FieldLogger
}

// Report describes one invocation.
type Report struct {
	Outcome probe.Outcome
	Line    []byte
	SideErr error // tee and metrics failures, joined
}

// Invoke runs kind, encodes the result and emits it.
// The returned error is non-nil only when no marker line reached the console.
func (d *Dispatcher) Invoke(ctx context.Context, kind probe.Kind) (Report, error) {
	var rep Report

	tag := kind.Tag()
	if !tag.Valid() {
		return rep, fmt.Errorf("%w: %q", probe.ErrUnknownKind, string(kind))
	}

	rep.Outcome = d.Runner.Run(ctx, kind)

	line, err := encode(kind, rep.Outcome.Payload, d.clock())
	if err != nil {
		return rep, err
	}
	rep.Line = line

	if err := d.Console.Emit(ctx, line); err != nil {
		return rep, fmt.Errorf("dispatch: %w", err)
	}

	var side []error
	if len(d.Tees) > 0 {
		if err := d.Tees.Emit(ctx, line); err != nil {
			side = append(side, err)
		}
	}
	if d.Metrics != nil {
		d.Metrics.Observe(rep.Outcome, d.clock().Now())
		if d.MetricsPath != "" {
			if err := d.Metrics.WriteTextfile(d.MetricsPath); err != nil {
				side = append(side, err)
			}
		}
	}
	rep.SideErr = errors.Join(side...)

	log := d.logger().WithFields(logrus.Fields{
		"probe": string(kind),
		"bytes": len(line),
	})
	if rep.SideErr != nil {
		log.WithError(rep.SideErr).Warn("marker emitted, side channel failed")
	} else {
		log.Debug("marker emitted")
	}

	return rep, nil
}

// encode produces the marker line. A payload the encoder rejects is
// replaced by an error record so the host still gets a line for the tag.
func encode(kind probe.Kind, payload any, clk clock.Clock) ([]byte, error) {
	tag := kind.Tag()
	line, err := marker.Encode(tag, payload)
	if err == nil {
		err = selfCheck(tag, line)
	}
	if err == nil {
		return line, nil
	}

	line, ferr := marker.Encode(tag, probe.NewErrorRecord(kind, err, clk))
	if ferr != nil {
		return nil, fmt.Errorf("dispatch: %w", errors.Join(err, ferr))
	}
	return line, nil
}

// selfCheck parses the line back as the host would.
func selfCheck(tag marker.Tag, line []byte) error {
	rec, err := marker.Parse(string(line))
	if err != nil {
		return err
	}
	if rec.Tag != tag {
		return fmt.Errorf("marker: line demultiplexes as %s, want %s", rec.Tag, tag)
	}
	return nil
}

func (d *Dispatcher) clock() clock.Clock {
	if d.Clock != nil {
		return d.Clock
	}
	return clock.Real()
}

func (d *Dispatcher) logger() logrus.FieldLogger {
	if d.Log != nil {
		return d.Log
	}
	return logrus.StandardLogger()
}

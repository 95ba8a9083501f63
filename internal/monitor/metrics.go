// internal/monitor/metrics.go
package monitor

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tamzrod/board-probe/internal/probe"
)

const namespace = "board_probe"

// Recorder holds the metrics of one invocation.
// The registry is private so the textfile only carries probe metrics.
type Recorder struct {
	reg *prometheus.Registry

	attempted *prometheus.GaugeVec
	reported  *prometheus.GaugeVec
	failed    *prometheus.GaugeVec
	duration  *prometheus.GaugeVec
	lastRun   *prometheus.GaugeVec
}

func New(board string) *Recorder {
	labels := prometheus.Labels{"board": board}
	gauge := func(name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}, []string{"probe"})
	}

	r := &Recorder{
		reg:       prometheus.NewRegistry(),
		attempted: gauge("units_attempted", "Units (pins, buses, networks, readings) the probe tried."),
		reported:  gauge("units_reported", "Units present in the emitted payload."),
		failed:    gauge("failed", "1 when the probe emitted an error record."),
		duration:  gauge("duration_seconds", "Wall time of the probe."),
		lastRun:   gauge("last_run_timestamp_seconds", "Unix time the probe finished."),
	}
	r.reg.MustRegister(r.attempted, r.reported, r.failed, r.duration, r.lastRun)
	return r
}

// Observe records one probe outcome.
func (r *Recorder) Observe(out probe.Outcome, at time.Time) {
	name := string(out.Kind)

	r.attempted.WithLabelValues(name).Set(float64(out.Units.Attempted))
	r.reported.WithLabelValues(name).Set(float64(out.Units.Present))
	r.duration.WithLabelValues(name).Set(out.Duration.Seconds())
	r.lastRun.WithLabelValues(name).Set(float64(at.Unix()))

	failed := 0.0
	if out.Err != nil {
		failed = 1
	}
	r.failed.WithLabelValues(name).Set(failed)
}

// WriteTextfile writes the registry in node-exporter textfile format.
// The write is atomic (temp file + rename).
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("monitor: write %s: %w", path, err)
	}
	return nil
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

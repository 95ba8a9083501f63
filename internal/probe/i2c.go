// internal/probe/i2c.go
package probe

import (
	"github.com/sirupsen/logrus"

	"github.com/tamzrod/board-probe/internal/contain"
)

// MaxAddress is the top of the 7-bit I2C address space.
const MaxAddress = 127

// ScanI2C opens and scans every candidate bus once.
// Containment is per bus: an open or scan failure skips that whole bus.
// Addresses are deduplicated across buses and kept in first-discovery order.
func ScanI2C(o BusOpener, buses []BusSpec, log logrus.FieldLogger) ([]int, contain.Tally) {
	var tally contain.Tally
	var seen [MaxAddress + 1]bool
	found := make([]int, 0)

	for _, spec := range buses {
		spec := spec
		u := contain.Attempt(func() ([]int, error) {
			bus, err := o.Open(spec)
			if err != nil {
				return nil, err
			}
			defer bus.Close()
			return bus.Scan()
		})
		tally.Add(u.Present)

		entry := log.WithFields(logrus.Fields{"bus": spec.ID, "scl": spec.SCL, "sda": spec.SDA})
		if !u.Present {
			entry.WithError(u.Err).Debug("i2c: bus skipped")
			continue
		}

		for _, addr := range u.Value {
			if addr < 0 || addr > MaxAddress {
				entry.WithField("addr", addr).Debug("i2c: driver reported address outside 7-bit range")
				continue
			}
			if seen[addr] {
				continue
			}
			seen[addr] = true
			found = append(found, addr)
		}
	}

	return found, tally
}

// internal/probe/fakes_test.go
package probe

import (
	"context"
	"errors"
	"fmt"
)

// ---- fake pin reader ----

type fakePins struct {
	levels map[int]int
	panics map[int]bool
	reads  []int
}

func (f *fakePins) ReadInput(pin int) (int, error) {
	f.reads = append(f.reads, pin)
	if f.panics[pin] {
		panic(fmt.Sprintf("pin %d register fault", pin))
	}
	v, ok := f.levels[pin]
	if !ok {
		return 0, fmt.Errorf("pin %d not readable", pin)
	}
	return v, nil
}

// ---- fake i2c ----

type fakeBus struct {
	addrs   []int
	scanErr error
	closed  *int
}

func (b *fakeBus) Scan() ([]int, error) { return b.addrs, b.scanErr }

func (b *fakeBus) Close() error {
	*b.closed++
	return nil
}

type fakeOpener struct {
	buses    map[int][]int // ids not listed fail to open
	scanFail map[int]bool
	closed   int
}

func (o *fakeOpener) Open(spec BusSpec) (Bus, error) {
	addrs, ok := o.buses[spec.ID]
	if !ok {
		return nil, fmt.Errorf("bus %d: no such controller", spec.ID)
	}
	b := &fakeBus{addrs: addrs, closed: &o.closed}
	if o.scanFail[spec.ID] {
		b.scanErr = errors.New("bus stuck low")
	}
	return b, nil
}

// ---- fake radio ----

type fakeRadio struct {
	activateErr error
	scanErr     error
	aps         []AccessPoint
	closed      bool
}

func (r *fakeRadio) Activate(context.Context) error { return r.activateErr }

func (r *fakeRadio) Scan(context.Context) ([]AccessPoint, error) {
	if r.scanErr != nil {
		return nil, r.scanErr
	}
	return r.aps, nil
}

func (r *fakeRadio) Close() error {
	r.closed = true
	return nil
}

// ---- fake system source ----

type fakeSystem struct {
	free, allocated uint64
	memErr          error
	freq            uint64
	freqErr         error
	temp            float64
	tempErr         error
	tempPanics      bool
}

func (s *fakeSystem) Memory() (uint64, uint64, error) {
	return s.free, s.allocated, s.memErr
}

func (s *fakeSystem) CPUFreq() (uint64, error) { return s.freq, s.freqErr }

func (s *fakeSystem) Temperature() (float64, error) {
	if s.tempPanics {
		panic("sensor register unmapped")
	}
	return s.temp, s.tempErr
}

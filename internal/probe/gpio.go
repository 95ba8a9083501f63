// internal/probe/gpio.go
package probe

import (
	"bytes"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/board-probe/internal/contain"
)

// PinState is one successfully read pin.
type PinState struct {
	Pin   int
	Level int // 0 or 1
}

// GPIOStates holds read pins in candidate order.
// It marshals as {"pin_<n>": level, ...}, preserving that order.
type GPIOStates []PinState

// Label is the payload key for pin.
func Label(pin int) string {
	return "pin_" + strconv.Itoa(pin)
}

func (s GPIOStates) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, p := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(Label(p.Pin))
		b.WriteString(`":`)
		b.WriteString(strconv.Itoa(p.Level))
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// Map returns the states keyed by label.
func (s GPIOStates) Map() map[string]int {
	m := make(map[string]int, len(s))
	for _, p := range s {
		m[Label(p.Pin)] = p.Level
	}
	return m
}

// ReadGPIO reads every candidate pin once.
// Unreadable pins are omitted; an all-failed read is an empty result, not an error.
// Repeated candidates are read at their first position only.
func ReadGPIO(r PinReader, pins []int, log logrus.FieldLogger) (GPIOStates, contain.Tally) {
	var tally contain.Tally
	states := make(GPIOStates, 0, len(pins))
	seen := make(map[int]struct{}, len(pins))

	for _, pin := range pins {
		pin := pin
		if _, dup := seen[pin]; dup {
			continue
		}
		seen[pin] = struct{}{}

		u := contain.Attempt(func() (int, error) {
			return r.ReadInput(pin)
		})
		tally.Add(u.Present)

		if !u.Present {
			log.WithField("pin", pin).WithError(u.Err).Debug("gpio: pin omitted")
			continue
		}

		level := 0
		if u.Value != 0 {
			level = 1
		}
		states = append(states, PinState{Pin: pin, Level: level})
	}

	return states, tally
}

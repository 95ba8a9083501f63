// internal/contain/contain.go
package contain

import "fmt"

// Unit is the outcome of one hardware-unit access.
// Present=false means "absent": the unit is omitted from the aggregate.
// Err keeps the cause for diagnostics only; it is never reported upstream.
type Unit[T any] struct {
	Value   T
	Present bool
	Err     error
}

// Attempt performs exactly one unit access.
// Errors and panics both degrade to an absent Unit; nothing propagates.
// No retries.
func Attempt[T any](fn func() (T, error)) (u Unit[T]) {
	defer func() {
		if r := recover(); r != nil {
			u = Unit[T]{Err: fmt.Errorf("contain: unit access panicked: %v", r)}
		}
	}()

	v, err := fn()
	if err != nil {
		return Unit[T]{Err: err}
	}
	return Unit[T]{Value: v, Present: true}
}

// Tally counts unit outcomes for one probe invocation.
type Tally struct {
	Attempted int
	Present   int
}

// Add records one unit outcome.
func (t *Tally) Add(present bool) {
	t.Attempted++
	if present {
		t.Present++
	}
}

// Absent is the number of omitted units.
func (t Tally) Absent() int {
	return t.Attempted - t.Present
}

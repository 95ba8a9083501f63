// internal/sink/sink.go
package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Sink receives complete marker lines (without the trailing newline).
type Sink interface {
	Emit(ctx context.Context, line []byte) error
}

// ---- CONSOLE ----

// Console writes marker lines to the designated output channel.
// Each line goes out in a single Write so concurrent writers to the same
// descriptor cannot interleave inside it.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Emit(_ context.Context, line []byte) error {
	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	buf = append(buf, '\n')

	c.mu.Lock()
	defer c.mu.Unlock()

	n, err := c.w.Write(buf)
	if err != nil {
		return fmt.Errorf("console: %w", err)
	}
	if n != len(buf) {
		return fmt.Errorf("console: %w", io.ErrShortWrite)
	}
	return nil
}

// ---- FAN-OUT ----

// Multi emits to every sink in order. One failing sink never stops the
// others; all failures are joined.
type Multi []Sink

func (m Multi) Emit(ctx context.Context, line []byte) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, line); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

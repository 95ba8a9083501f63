// internal/hw/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// Areas a remote I/O module exposes its inputs in.
const (
	AreaDiscrete = "discrete" // FC 2
	AreaCoil     = "coil"     // FC 1
)

// bitReader is the subset of modbus.Client used to sample pins.
type bitReader interface {
	ReadCoils(address, quantity uint16) ([]byte, error)
	ReadDiscreteInputs(address, quantity uint16) ([]byte, error)
}

type closer interface {
	Close() error
}

// handler is satisfied by both the TCP and RTU client handlers.
type handler interface {
	modbus.ClientHandler
	Connect() error
	Close() error
}

// Config is minimal transport config.
type Config struct {
	Mode     string // tcp | rtu
	Endpoint string
	UnitID   uint8
	Timeout  time.Duration

	AddressBase uint16
	Area        string

	// RTU only
	BaudRate int
	DataBits int
	Parity   string
	StopBits int
}

// PinReader samples the inputs of a Modbus remote I/O module as GPIO pins.
// Pin n is the single bit at AddressBase+n. One request per read, no retries.
type PinReader struct {
	mu      sync.Mutex
	handler closer
	client  bitReader
	base    uint16
	area    string
}

// New connects to the module. A failed connect means the GPIO subsystem
// is unavailable for this invocation.
func New(cfg Config) (*PinReader, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus gpio: endpoint required")
	}

	var h handler
	switch cfg.Mode {
	case "", "tcp":
		t := modbus.NewTCPClientHandler(cfg.Endpoint)
		t.Timeout = cfg.Timeout
		t.SlaveId = cfg.UnitID
		h = t
	case "rtu":
		r := modbus.NewRTUClientHandler(cfg.Endpoint)
		r.BaudRate = cfg.BaudRate
		r.DataBits = cfg.DataBits
		r.Parity = cfg.Parity
		r.StopBits = cfg.StopBits
		r.SlaveId = cfg.UnitID
		r.Timeout = cfg.Timeout
		h = r
	default:
		return nil, fmt.Errorf("modbus gpio: unsupported mode %q", cfg.Mode)
	}

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("modbus gpio: connect %s: %w", cfg.Endpoint, err)
	}

	return newPinReader(h, modbus.NewClient(h), cfg.AddressBase, cfg.Area), nil
}

func newPinReader(h closer, c bitReader, base uint16, area string) *PinReader {
	if area == "" {
		area = AreaDiscrete
	}
	return &PinReader{handler: h, client: c, base: base, area: area}
}

// Close releases the transport.
func (p *PinReader) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handler == nil {
		return nil
	}
	return p.handler.Close()
}

// ---- probe.PinReader ----

func (p *PinReader) ReadInput(pin int) (int, error) {
	if pin < 0 || int(p.base)+pin > 0xFFFF {
		return 0, fmt.Errorf("modbus gpio: pin %d outside address space", pin)
	}
	addr := p.base + uint16(pin)

	p.mu.Lock()
	defer p.mu.Unlock()

	var (
		data []byte
		err  error
	)
	switch p.area {
	case AreaCoil:
		data, err = p.client.ReadCoils(addr, 1)
	default:
		data, err = p.client.ReadDiscreteInputs(addr, 1)
	}
	if err != nil {
		return 0, fmt.Errorf("modbus gpio: pin %d @%d: %w", pin, addr, err)
	}
	if len(data) < 1 {
		return 0, fmt.Errorf("modbus gpio: pin %d @%d: empty response", pin, addr)
	}

	if unpackBits(data, 1)[0] {
		return 1, nil
	}
	return 0, nil
}

// ---- helpers (pure geometry) ----

func unpackBits(data []byte, count int) []bool {
	out := make([]bool, count)
	for i := 0; i < count; i++ {
		byteIdx := i / 8
		if byteIdx >= len(data) {
			continue
		}
		out[i] = data[byteIdx]&(1<<uint(i%8)) != 0
	}
	return out
}

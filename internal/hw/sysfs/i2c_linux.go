// internal/hw/sysfs/i2c_linux.go

//go:build linux

package sysfs

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/tamzrod/board-probe/internal/probe"
)

// i2cSlave is the i2c-dev ioctl selecting the target address (linux/i2c-dev.h).
const i2cSlave = 0x0703

// I2C opens /dev/i2c-<id> adapters.
// Pin pairs are fixed by the adapter on Linux and are informational here.
type I2C struct {
	devDir string
}

// NewI2C builds an opener rooted at devDir (normally /dev).
func NewI2C(devDir string) *I2C {
	return &I2C{devDir: devDir}
}

// Open implements probe.BusOpener.
func (o *I2C) Open(spec probe.BusSpec) (probe.Bus, error) {
	path := spec.Device
	if path == "" {
		path = filepath.Join(o.devDir, "i2c-"+strconv.Itoa(spec.ID))
	}

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("i2c-dev: open %s: %w", path, err)
	}
	return &i2cBus{fd: fd, path: path}, nil
}

type i2cBus struct {
	fd   int
	path string
}

// Scan selects each 7-bit address and attempts a one-byte read.
// A completed read is an acknowledgment; any failure means nothing answered.
func (b *i2cBus) Scan() ([]int, error) {
	var found []int
	buf := make([]byte, 1)

	for addr := 0; addr <= probe.MaxAddress; addr++ {
		if err := unix.IoctlSetInt(b.fd, i2cSlave, addr); err != nil {
			// EBUSY: a kernel driver owns the address, so a device is there.
			if errors.Is(err, unix.EBUSY) {
				found = append(found, addr)
			}
			continue
		}
		n, err := unix.Read(b.fd, buf)
		if err == nil && n == 1 {
			found = append(found, addr)
		}
	}

	return found, nil
}

func (b *i2cBus) Close() error {
	return unix.Close(b.fd)
}

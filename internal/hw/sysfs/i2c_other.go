// internal/hw/sysfs/i2c_other.go

//go:build !linux

package sysfs

import (
	"errors"

	"github.com/tamzrod/board-probe/internal/probe"
)

type I2C struct{}

func NewI2C(string) *I2C { return &I2C{} }

// Open always fails: i2c-dev is Linux only.
func (o *I2C) Open(probe.BusSpec) (probe.Bus, error) {
	return nil, errors.New("i2c-dev: not supported on this platform")
}

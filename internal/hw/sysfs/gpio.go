// internal/hw/sysfs/gpio.go
package sysfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// GPIO reads digital inputs through the legacy sysfs gpio class.
//
//	<root>/export            write pin number to create <root>/gpio<n>
//	<root>/gpio<n>/direction "in"
//	<root>/gpio<n>/value     "0" | "1"
//	<root>/unexport          write pin number to remove <root>/gpio<n>
type GPIO struct {
	root  string
	write func(path, value string) error
}

// NewGPIO fails when the gpio class is absent (subsystem unavailable).
func NewGPIO(root string) (*GPIO, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("sysfs gpio: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("sysfs gpio: %s is not a directory", root)
	}
	return &GPIO{root: root, write: writeFile}, nil
}

// ReadInput implements probe.PinReader.
// A pin exported by this call is unexported again before it returns.
func (g *GPIO) ReadInput(pin int) (int, error) {
	id := strconv.Itoa(pin)
	dir := filepath.Join(g.root, "gpio"+id)

	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		if err := g.write(filepath.Join(g.root, "export"), id); err != nil {
			return 0, fmt.Errorf("sysfs gpio: export pin %d: %w", pin, err)
		}
		if _, err := os.Stat(dir); err != nil {
			return 0, fmt.Errorf("sysfs gpio: pin %d not exported: %w", pin, err)
		}
		defer func() {
			_ = g.write(filepath.Join(g.root, "unexport"), id)
		}()
	}

	if err := g.write(filepath.Join(dir, "direction"), "in"); err != nil {
		return 0, fmt.Errorf("sysfs gpio: pin %d direction: %w", pin, err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "value"))
	if err != nil {
		return 0, fmt.Errorf("sysfs gpio: pin %d value: %w", pin, err)
	}

	switch strings.TrimSpace(string(raw)) {
	case "0":
		return 0, nil
	case "1":
		return 1, nil
	default:
		return 0, fmt.Errorf("sysfs gpio: pin %d: unexpected value %q", pin, strings.TrimSpace(string(raw)))
	}
}

// writeFile writes to an existing sysfs attribute; it never creates files.
func writeFile(path, value string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(value); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

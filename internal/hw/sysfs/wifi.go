// internal/hw/sysfs/wifi.go
package sysfs

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tamzrod/board-probe/internal/probe"
)

// CommandRunner executes one external command and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec, folding stderr into the error.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Radio drives a station interface with ip(8) and iw(8).
type Radio struct {
	iface string
	run   CommandRunner
}

// NewRadio fails when iface is not a wireless interface under netRoot
// (normally /sys/class/net).
func NewRadio(netRoot, iface string, run CommandRunner) (*Radio, error) {
	if _, err := os.Stat(filepath.Join(netRoot, iface)); err != nil {
		return nil, fmt.Errorf("interface %s missing", iface)
	}
	if _, err := os.Stat(filepath.Join(netRoot, iface, "wireless")); err != nil {
		return nil, fmt.Errorf("interface %s is not wireless", iface)
	}
	if run == nil {
		run = ExecRunner
	}
	return &Radio{iface: iface, run: run}, nil
}

// Activate brings the interface up. Already-up interfaces are a no-op for ip(8).
func (r *Radio) Activate(ctx context.Context) error {
	_, err := r.run(ctx, "ip", "link", "set", "dev", r.iface, "up")
	return err
}

// Scan triggers one scan and blocks until iw returns the results.
func (r *Radio) Scan(ctx context.Context) ([]probe.AccessPoint, error) {
	out, err := r.run(ctx, "iw", "dev", r.iface, "scan")
	if err != nil {
		return nil, err
	}
	return ParseIWScan(string(out))
}

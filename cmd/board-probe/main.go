// cmd/board-probe/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/tamzrod/board-probe/internal/clock"
	"github.com/tamzrod/board-probe/internal/config"
	"github.com/tamzrod/board-probe/internal/dispatch"
	"github.com/tamzrod/board-probe/internal/hw"
	"github.com/tamzrod/board-probe/internal/monitor"
	"github.com/tamzrod/board-probe/internal/probe"
	"github.com/tamzrod/board-probe/internal/sink"
)

// Exit codes. A probe that emitted an error record still exits 0:
// the record is the report.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("board-probe", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		cfgPath   = fs.String("config", "", "board YAML file (default: built-in ESP32 devkit layout)")
		logLevel  = fs.String("log-level", "", "override log.level")
		logFormat = fs.String("log-format", "", "override log.format (text|json)")
		textfile  = fs.String("metrics-textfile", "", "override metrics.textfile")
		list      = fs.Bool("list", false, "list probes, their marker tags and drivers, then exit")
	)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: board-probe [flags] <gpio|i2c|wifi|system>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			fmt.Fprintf(stderr, "config load failed: %v\n", err)
			return exitFailure
		}
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *textfile != "" {
		cfg.Metrics.Textfile = *textfile
	}

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(stderr, "config validation failed: %v\n", err)
		return exitFailure
	}
	config.Normalize(cfg)

	log := setupLogger(cfg.Log, stderr)

	if *list {
		for _, k := range probe.Kinds {
			fmt.Fprintf(stdout, "%-7s %-14s %s\n", k, k.Tag(), hw.Describe(cfg, k))
		}
		return exitOK
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return exitUsage
	}
	kind, err := probe.ParseKind(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	// --------------------
	// Wire one invocation
	// --------------------

	clk := clock.Real()
	entry := log.WithField("board", cfg.Board.Name)

	d := &dispatch.Dispatcher{
		Runner: &probe.Runner{
			Drivers: hw.Build(cfg, hw.DefaultRoots),
			Pins:    cfg.GPIO.Pins,
			Buses:   hw.BusSpecs(cfg),
			Clock:   clk,
			Log:     entry,
		},
		Console:     sink.NewConsole(stdout),
		Metrics:     monitor.New(cfg.Board.Name),
		MetricsPath: cfg.Metrics.Textfile,
		Clock:       clk,
		Log:         entry,
	}

	if cfg.Sink.Redis.Addr != "" {
		r := sink.NewRedis(cfg.Sink.Redis)
		defer r.Close()
		d.Tees = append(d.Tees, r)
	}

	entry.WithFields(logrus.Fields{
		"probe":  string(kind),
		"driver": hw.Describe(cfg, kind),
	}).Debug("running probe")

	if _, err := d.Invoke(context.Background(), kind); err != nil {
		entry.WithError(err).Error("no marker line emitted")
		return exitFailure
	}
	return exitOK
}

// setupLogger builds the process logger. Logs never share the marker stream.
func setupLogger(cfg config.LogConfig, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return log
}

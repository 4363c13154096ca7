// Package main is the entry point for glkterm, a terminal host for wire
// protocol interpreters. It spawns the interpreter as a child process,
// feeds it events on stdin, and renders its updates with tcell.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"

	"github.com/dshills/glkio/internal/config"
	"github.com/dshills/glkio/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  string
		logLevel    string
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "glkterm - terminal host for windowed interpreters\n\n")
		fmt.Fprintf(os.Stderr, "Usage: glkterm [options] interpreter [args...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  glkterm glkrun adventure.lua\n")
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("glkterm %s (%s)\n", version, commit)
		return 0
	}
	if flag.NArg() < 1 {
		flag.Usage()
		return 2
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	// The terminal owns stderr once tcell starts, so glkterm logs to a
	// file or not at all.
	var log *logging.Logger
	if cfg.Log.Path != "" {
		log, err = logging.NewFile(cfg.Log.Path, logging.ParseLevel(cfg.Log.Level))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	} else {
		log = logging.Discard
	}

	child := exec.Command(flag.Arg(0), flag.Args()[1:]...)
	child.Stderr = os.Stderr

	s, err := newSession(child, cfg, configPath, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := s.runLoop(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

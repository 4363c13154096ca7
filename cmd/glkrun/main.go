// Package main is the entry point for glkrun, a Lua-scripted interpreter
// that drives the Window API. It speaks the wire protocol on stdin and
// stdout, so any protocol host (glkterm, a browser shim, a test harness)
// can run it.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dshills/glkio/internal/config"
	"github.com/dshills/glkio/internal/engine"
	"github.com/dshills/glkio/internal/logging"
	"github.com/dshills/glkio/internal/script"
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
		fmt.Fprintf(os.Stderr, "glkrun - Lua-scripted windowed interpreter\n\n")
		fmt.Fprintf(os.Stderr, "Usage: glkrun [options] script.lua\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nThe wire protocol runs on stdin/stdout; logs go to stderr or a file.\n")
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("glkrun %s (%s)\n", version, commit)
		return 0
	}
	if flag.NArg() != 1 {
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

	log, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	eng := engine.New(os.Stdin, os.Stdout, engine.WithLogger(log))
	runner := script.NewRunner(eng)
	defer runner.Close()

	scriptPath := flag.Arg(0)
	log.Info("running %s", scriptPath)
	if err := runner.RunFile(scriptPath); err != nil {
		log.Error("script failed: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// newLogger builds the process logger from config. Stdout belongs to
// the wire protocol, so the fallback target is stderr.
func newLogger(cfg config.LogConfig) (*logging.Logger, error) {
	level := logging.ParseLevel(cfg.Level)
	if cfg.Path != "" {
		return logging.NewFile(cfg.Path, level)
	}
	return logging.New(os.Stderr, level), nil
}

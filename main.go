package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"go-industrial/config"
	"go-industrial/debug"
	"go-industrial/logger"
)

// set with -ldflags "-X main.version=1.2.3 -X main.commit=abcd123"
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	switch cmd {
	case "version", "-v", "--version":
		fmt.Printf("go-industrial %s (%s)\n", version, commit)
		return
	case "help", "-h", "--help":
		usage()
		return
	}

	run, ok := commands[cmd]
	if !ok {
		log.Printf("unknown command: %s", cmd)
		usage()
		os.Exit(2)
	}

	cfg, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer debug.Disable()

	if err := run(cfg, args); err != nil {
		logger.Error("Command failed", err, logger.Fields{"command": cmd})
		logger.Flush()
		os.Exit(1)
	}
	logger.Flush()
}

var commands = map[string]func(*config.Config, []string) error{
	"export":  runExport,
	"inspect": runInspect,
	"play":    runPlay,
	"shell":   runShell,
	"serve":   runServe,
	"presets": runPresets,
	"ports":   runPorts,
	"history": runHistory,
	"config":  runConfig,
}

// setup loads .env, the config file and environment overrides, then starts
// error reporting and the debug log
func setup() (*config.Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.Server.SentryDSN, cfg.Server.Environment, version); err != nil {
		log.Printf("Sentry disabled: %v", err)
	}
	if cfg.UI.Debug {
		if err := debug.Enable(""); err != nil {
			log.Printf("debug log disabled: %v", err)
		}
	}
	return cfg, nil
}

func usage() {
	fmt.Println("go-industrial - procedural industrial arranger")
	fmt.Println("")
	fmt.Println("Usage:")
	fmt.Println("  go-industrial <command> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  export    Render an arrangement to a MIDI file")
	fmt.Println("  inspect   Summarize a MIDI file")
	fmt.Println("  play      Play live with a terminal monitor")
	fmt.Println("  shell     Edit the timeline interactively")
	fmt.Println("  serve     Run the HTTP render API")
	fmt.Println("  presets   List arrangement presets")
	fmt.Println("  ports     List MIDI output ports")
	fmt.Println("  history   Show recent exports")
	fmt.Println("  config    Show the effective config (-write saves it)")
	fmt.Println("  version   Print version")
	fmt.Println("")
	fmt.Println("Examples:")
	fmt.Println("  go-industrial export -preset industrial -tempo 120 -seed 42 -out song.mid")
	fmt.Println("  go-industrial play -preset standard -loop -port IAC")
	fmt.Println("  go-industrial serve -addr :8080")
}

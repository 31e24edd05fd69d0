// Package main provides testwright - playwright test scaffolding with
// recorded logins, credential redaction and agent-driven test generation.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/jessevdk/go-flags"
)

// opts holds global options and the command registry.
type opts struct {
	Dir     string `long:"dir" default:"." description:"project directory"`
	NoColor bool   `long:"no-color" env:"NO_COLOR" description:"disable color output"`
	Version bool   `short:"v" long:"version" description:"print version and exit"`

	InitCmd     initCommand     `command:"init" description:"scaffold a playwright test project"`
	LoginCmd    loginCommand    `command:"login" description:"record an authenticated login flow for a role"`
	GenerateCmd generateCommand `command:"generate" description:"generate tests with the coding agent"`
	EjectCmd    ejectCommand    `command:"eject" description:"remove tool-owned files, or one role's artifacts with --role"`
}

var revision = "unknown"

func main() {
	fmt.Printf("testwright %s\n", revision)

	var o opts
	parser := flags.NewParser(&o, flags.Default)
	parser.SubcommandsOptional = true // lets --version run without a command

	// setup context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// keep ^C from echoing while interactive subprocesses run
	restoreTerm := suppressCtrlCEcho()
	defer restoreTerm()

	// commands read shared state through these references, set before Parse
	// so they are in place when go-flags invokes Execute
	o.InitCmd.ctx, o.InitCmd.root = ctx, &o
	o.LoginCmd.ctx, o.LoginCmd.root = ctx, &o
	o.GenerateCmd.ctx, o.GenerateCmd.root = ctx, &o
	o.EjectCmd.ctx, o.EjectCmd.root = ctx, &o

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		if !errors.As(err, &flagsErr) { // command errors, not flag parsing errors
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}

	if o.Version {
		os.Exit(0)
	}

	if parser.Active == nil {
		parser.WriteHelp(os.Stderr)
		os.Exit(2)
	}
}

// applyColorMode sets the global color flag from --no-color.
func applyColorMode(noColor bool) {
	if noColor {
		color.NoColor = true
	}
}

// info returns the color used for informational messages.
func info() *color.Color { return color.New(color.FgCyan) }

// success returns the color used for completion messages.
func success() *color.Color { return color.New(color.FgGreen) }

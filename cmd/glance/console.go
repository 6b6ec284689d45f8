package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/glance/internal/console"
)

func runConsole(args []string) int {
	fs := flag.NewFlagSet("console", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: glance console")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive terminal client for the glance daemon. Useful over SSH")
		fmt.Fprintln(os.Stderr, "or on sessions where the overlay hotkey is unavailable.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  Enter      Run the typed command")
		fmt.Fprintln(os.Stderr, "  y/n        Answer a confirmation request")
		fmt.Fprintln(os.Stderr, "  Ctrl+L     Clear the conversation context")
		fmt.Fprintln(os.Stderr, "  Esc, ^C    Quit")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "console takes no arguments")
		fs.Usage()
		return 2
	}

	if err := console.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

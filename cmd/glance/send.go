package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/1broseidon/glance/internal/ipc"
)

func runSend(args []string) int {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: glance send [--json] [--yes] <command...>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run a natural-language command through the backend. The result is")
		fmt.Fprintln(os.Stderr, "printed here and shown on the overlay.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	jsonOut := fs.Bool("json", false, "Output the result as JSON")
	autoYes := fs.Bool("yes", false, "Approve a confirmation request without prompting")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "send requires a command")
		fs.Usage()
		return 2
	}
	command := strings.Join(fs.Args(), " ")

	client := ipc.NewClient()
	// The daemon forwards to the backend synchronously; wait longer than the
	// default socket timeout.
	client.SetTimeout(90 * time.Second)

	result, err := client.Send(command)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if result.RequiresConfirmation {
		confirmed, ok := resolveConfirmation(result, *autoYes, *jsonOut)
		if !ok {
			return printResult(result, *jsonOut)
		}
		result, err = client.Confirm(result.CacheKey, confirmed)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	return printResult(result, *jsonOut)
}

// resolveConfirmation decides how to answer a held-back command. The second
// return is false when no answer should be sent, leaving the command parked
// on the backend.
func resolveConfirmation(result *ipc.ResultData, autoYes, jsonOut bool) (confirmed, ok bool) {
	if autoYes {
		return true, true
	}
	// Without a terminal there is nobody to ask; JSON consumers get the
	// confirmation request to handle themselves.
	if jsonOut || !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, false
	}

	var answer bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("This command needs confirmation").
				Description(result.Result).
				Affirmative("Run it").
				Negative("Cancel").
				Value(&answer),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false, false
	}
	return answer, true
}

func printResult(result *ipc.ResultData, jsonOut bool) int {
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if !result.Success {
			return 1
		}
		return 0
	}

	fmt.Println(result.Result)
	if !result.Success {
		if result.Remedy != "" {
			fmt.Fprintln(os.Stderr, result.Remedy)
		}
		return 1
	}
	return 0
}

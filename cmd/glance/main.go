package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/glance/internal/config"
	"github.com/1broseidon/glance/internal/ipc"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "toggle":
		os.Exit(runSimple("toggle", os.Args[2:], func(c *ipc.Client) error { return c.Toggle() }))
	case "show":
		os.Exit(runSimple("show", os.Args[2:], func(c *ipc.Client) error { return c.Show() }))
	case "hide":
		os.Exit(runSimple("hide", os.Args[2:], func(c *ipc.Client) error { return c.Hide() }))
	case "reload":
		os.Exit(runSimple("reload", os.Args[2:], func(c *ipc.Client) error { return c.Reload() }))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "send":
		os.Exit(runSend(os.Args[2:]))
	case "capture":
		os.Exit(runCapture(os.Args[2:]))
	case "context":
		os.Exit(runContext(os.Args[2:]))
	case "health":
		os.Exit(runHealth(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "console":
		os.Exit(runConsole(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: glance <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the glance daemon (foreground)")
	fmt.Fprintln(w, "  toggle              Toggle the overlay")
	fmt.Fprintln(w, "  show                Show the overlay")
	fmt.Fprintln(w, "  hide                Hide the overlay")
	fmt.Fprintln(w, "  status              Show daemon and overlay status")
	fmt.Fprintln(w, "  reload              Reload daemon configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  send                Run a command through the backend")
	fmt.Fprintln(w, "  capture             Capture a screenshot of the active monitor")
	fmt.Fprintln(w, "  context             Show conversation context ('context clear' to reset)")
	fmt.Fprintln(w, "  health              Show backend health")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  console             Open the interactive console")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'glance <command> --help' for command-specific options.")
}

// runSimple handles argumentless client commands that only report errors.
func runSimple(name string, args []string, fn func(*ipc.Client) error) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: glance %s\n", name)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2
	}

	if err := fn(ipc.NewClient()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: glance status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	jsonOut := fs.Bool("json", false, "Output status as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("overlay_state:  %s\n", status.Overlay.State)
	fmt.Printf("visible:        %v\n", status.Overlay.Visible)
	fmt.Printf("timer_pending:  %v\n", status.Overlay.TimerPending)
	fmt.Printf("backend:        %s (%s)\n", status.BackendURL, status.BackendHealth)
	fmt.Printf("turn_count:     %d\n", status.TurnCount)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runCapture(args []string) int {
	fs := flag.NewFlagSet("capture", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: glance capture")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Capture a screenshot of the active monitor and print the saved path.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	data, err := client.Capture()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(data.Path)
	return 0
}

func runContext(args []string) int {
	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stdout, "Usage: glance context [clear]")
		fmt.Fprintln(os.Stdout, "")
		fmt.Fprintln(os.Stdout, "Show the conversation context, or clear it with 'context clear'.")
		return 0
	}

	client := ipc.NewClient()

	if len(args) > 0 && args[0] == "clear" {
		if err := client.ClearContext(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("context cleared")
		return 0
	}
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "Unknown context subcommand: %s\n", args[0])
		return 2
	}

	data, err := client.GetContext()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(data.Turns) == 0 {
		fmt.Println("(no conversation context)")
		return 0
	}
	for _, t := range data.Turns {
		marker := "ok"
		if !t.Success {
			marker = "failed"
		}
		fmt.Printf("[%s] %s\n", marker, t.Command)
		fmt.Printf("    %s\n", t.Result)
	}
	return 0
}

func runHealth(args []string) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: glance health [--verbose] [--logs N]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show backend health as seen by the daemon.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	verbose := fs.Bool("verbose", false, "Include backend capabilities and recent log lines")
	logLimit := fs.Int("logs", 20, "Number of backend log lines with --verbose")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "health takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	data, err := client.GetHealth(*verbose, *logLimit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	fmt.Printf("backend: %s (%s)\n", data.BackendURL, data.Status)
	if len(data.Capabilities) > 0 {
		fmt.Println("capabilities:")
		for _, name := range data.Capabilities {
			fmt.Printf("  - %s\n", name)
		}
	}
	if len(data.Logs) > 0 {
		fmt.Println("recent logs:")
		for _, line := range data.Logs {
			fmt.Printf("  %s\n", line)
		}
	}
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  glance config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  glance config print [--path PATH] [--defaults]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/glance/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var err error
		if *path == "" {
			_, err = config.Load()
		} else {
			_, err = config.LoadFromPath(*path)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/glance/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var cfg *config.Config
		if *printDefaults {
			cfg = config.DefaultConfig()
		} else {
			var err error
			if *path == "" {
				cfg, err = config.Load()
			} else {
				cfg, err = config.LoadFromPath(*path)
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/1broseidon/workbench/internal/config"
	"github.com/1broseidon/workbench/internal/ipc"
	"github.com/1broseidon/workbench/internal/registry"
	"github.com/1broseidon/workbench/internal/state"
)

// newFlagSet returns a flag set whose usage prints usage and summary.
func newFlagSet(name, usage, summary string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: workbench "+usage)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, summary)
		if fs.HasFlags() {
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Options:")
			fs.PrintDefaults()
		}
	}
	return fs
}

// parse returns the exit code to use when parsing should stop the command.
func parse(fs *pflag.FlagSet, args []string, nargs int) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0, false
		}
		return 2, false
	}
	if fs.NArg() != nargs {
		if nargs == 0 {
			fmt.Fprintf(os.Stderr, "%s takes no arguments\n", fs.Name())
		} else {
			fmt.Fprintf(os.Stderr, "%s takes %d arguments\n", fs.Name(), nargs)
		}
		fs.Usage()
		return 2, false
	}
	return 0, true
}

func intArgs(fs *pflag.FlagSet, from int) ([]int, bool) {
	out := make([]int, 0, fs.NArg()-from)
	for _, a := range fs.Args()[from:] {
		n, err := strconv.Atoi(a)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid number %q\n", a)
			fs.Usage()
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := newFlagSet("status", "status", "Show desktop status via the control socket.")
	if code, ok := parse(fs, args, 0); !ok {
		return code
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("desktop_running: %v\n", status.DesktopRunning)
	fmt.Printf("open_count:      %d\n", status.OpenCount)
	fmt.Printf("top_z_index:     %d\n", status.TopZIndex)
	if status.ViewportWidth > 0 {
		fmt.Printf("viewport:        %dx%d\n", status.ViewportWidth, status.ViewportHeight)
	}
	fmt.Printf("fullscreen:      %v\n", status.Fullscreen)
	fmt.Printf("uptime_seconds:  %d\n", status.UptimeSeconds)
	return 0
}

func runWindows(args []string) int {
	fs := newFlagSet("windows", "windows [--json]", "List the state of every open window.")
	asJSON := fs.Bool("json", false, "Print JSON")
	if code, ok := parse(fs, args, 0); !ok {
		return code
	}

	data, err := ipc.NewClient().ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(data)
	}
	if len(data.Windows) == 0 {
		fmt.Println("no open windows")
		return 0
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tZ\tSTATE\tPOSITION\tSIZE")
	for _, w := range data.Windows {
		st := "normal"
		switch {
		case w.IsMinimized:
			st = "minimized"
		case w.IsMaximized:
			st = "maximized"
		}
		pos := "unplaced"
		if w.Placed {
			pos = fmt.Sprintf("%d,%d", w.X, w.Y)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%dx%d\n", w.ID, w.Title, w.ZIndex, st, pos, w.Width, w.Height)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// runPrograms lists the compiled-in catalog; it does not need a running
// desktop.
func runPrograms(args []string) int {
	fs := newFlagSet("programs", "programs", "List the programs the desktop can open.")
	if code, ok := parse(fs, args, 0); !ok {
		return code
	}
	for _, p := range registry.Programs() {
		fmt.Printf("%-12s %s %s\n", p.ID, p.Icon, p.Title)
	}
	return 0
}

func runWindowCommand(name string, args []string) int {
	summaries := map[string]string{
		"open":     "Open a program, or raise its window when already open.",
		"close":    "Close a program's window.",
		"focus":    "Restore a window if minimized and raise it.",
		"minimize": "Toggle a window's minimized state.",
		"maximize": "Toggle a window's maximized state.",
	}
	fs := newFlagSet(name, name+" <id>", summaries[name])
	if code, ok := parse(fs, args, 1); !ok {
		return code
	}
	id := fs.Arg(0)

	client := ipc.NewClient()
	var err error
	switch name {
	case "open":
		err = client.Open(id)
	case "close":
		err = client.Close(id)
	case "focus":
		err = client.Focus(id)
	case "minimize":
		err = client.Minimize(id)
	case "maximize":
		err = client.Maximize(id)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runMove(args []string) int {
	fs := newFlagSet("move", "move <id> <x> <y>", "Move a window's top-left corner, in desktop pixels.")
	if code, ok := parse(fs, args, 3); !ok {
		return code
	}
	n, ok := intArgs(fs, 1)
	if !ok {
		return 2
	}
	pos, err := ipc.NewClient().Move(fs.Arg(0), n[0], n[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("%s at %d,%d\n", fs.Arg(0), pos.X, pos.Y)
	return 0
}

func runResize(args []string) int {
	fs := newFlagSet("resize", "resize [--from EDGES] <id> <width> <height>", "Resize a window, in desktop pixels.")
	from := fs.String("from", "", "Edges that move, e.g. w or nw (default: keep the top-left corner)")
	if code, ok := parse(fs, args, 3); !ok {
		return code
	}
	n, ok := intArgs(fs, 1)
	if !ok {
		return 2
	}
	size, err := ipc.NewClient().ResizeFrom(fs.Arg(0), *from, n[0], n[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("%s is %dx%d\n", fs.Arg(0), size.Width, size.Height)
	return 0
}

func runViewport(args []string) int {
	fs := newFlagSet("viewport", "viewport <width> <height>", "Report a new desktop size and re-clamp every window.")
	if code, ok := parse(fs, args, 2); !ok {
		return code
	}
	n, ok := intArgs(fs, 0)
	if !ok {
		return 2
	}
	if err := ipc.NewClient().Viewport(n[0], n[1]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runReset(args []string) int {
	fs := newFlagSet("reset", "reset", "Close every window and clear the saved desktop state. Without a running\ndesktop the state file is deleted.")
	if code, ok := parse(fs, args, 0); !ok {
		return code
	}

	client := ipc.NewClient()
	if client.Ping() == nil {
		if err := client.Reset(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	path, err := cfg.StatePath()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := state.NewFileStore(path).Remove(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("desktop not running; removed %s\n", path)
	return 0
}

package main

import (
	"fmt"
	"io"
	"os"

	_ "github.com/1broseidon/workbench/internal/programs/doodle"
	_ "github.com/1broseidon/workbench/internal/programs/explorer"
	_ "github.com/1broseidon/workbench/internal/programs/filebrowser"
	_ "github.com/1broseidon/workbench/internal/programs/logs"
	_ "github.com/1broseidon/workbench/internal/programs/settings"
	_ "github.com/1broseidon/workbench/internal/programs/terminal"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "desktop":
		os.Exit(runDesktop(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "windows":
		os.Exit(runWindows(os.Args[2:]))
	case "programs":
		os.Exit(runPrograms(os.Args[2:]))
	case "open", "close", "focus", "minimize", "maximize":
		os.Exit(runWindowCommand(os.Args[1], os.Args[2:]))
	case "move":
		os.Exit(runMove(os.Args[2:]))
	case "resize":
		os.Exit(runResize(os.Args[2:]))
	case "viewport":
		os.Exit(runViewport(os.Args[2:]))
	case "reset":
		os.Exit(runReset(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
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
	fmt.Fprintln(w, "Usage: workbench <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  desktop             Start the desktop (foreground, needs a terminal)")
	fmt.Fprintln(w, "  status              Show desktop status")
	fmt.Fprintln(w, "  windows             List window states")
	fmt.Fprintln(w, "  programs            List installed programs")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  open <id>           Open a program, or raise it when open")
	fmt.Fprintln(w, "  close <id>          Close a program")
	fmt.Fprintln(w, "  focus <id>          Restore if minimized and raise")
	fmt.Fprintln(w, "  minimize <id>       Toggle minimized")
	fmt.Fprintln(w, "  maximize <id>       Toggle maximized")
	fmt.Fprintln(w, "  move <id> <x> <y>   Move a window (pixels)")
	fmt.Fprintln(w, "  resize <id> <w> <h> Resize a window (pixels)")
	fmt.Fprintln(w, "  viewport <w> <h>    Report a new desktop size (pixels)")
	fmt.Fprintln(w, "  reset               Close every window and clear saved state")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print effective configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'workbench <command> --help' for command-specific options.")
}

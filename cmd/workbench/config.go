package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/1broseidon/workbench/internal/config"
)

func printConfigUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  workbench config validate [--path PATH]")
	fmt.Fprintln(os.Stderr, "  workbench config print [--path PATH] [--defaults]")
}

func loadConfigResult(path string) (*config.LoadResult, error) {
	if path == "" {
		var err error
		path, err = config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printConfigUsage()
		return 2
	}

	switch args[0] {
	case "validate":
		fs := pflag.NewFlagSet("validate", pflag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/workbench/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			if err == pflag.ErrHelp {
				return 0
			}
			return 2
		}

		res, err := loadConfigResult(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		for _, f := range res.Files {
			fmt.Printf("loaded: %s\n", f)
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := pflag.NewFlagSet("print", pflag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/workbench/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			if err == pflag.ErrHelp {
				return 0
			}
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfigResult(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			for _, f := range res.Files {
				fmt.Printf("# source: %s\n", f)
			}
			cfg = res.Config
		}
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n\n", args[0])
		printConfigUsage()
		return 2
	}
}

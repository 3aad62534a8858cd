package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/superbook/internal/cli"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	name := "publish"
	args := os.Args[1:]
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		name, args = args[0], args[1:]
	}

	var cmd command
	switch name {
	case "publish":
		cmd = cli.NewPublishCommand(Version)
	case "rewrite":
		cmd = cli.NewRewriteCommand()
	case "catalog":
		cmd = cli.NewCatalogCommand()
	case "version":
		fmt.Printf("superbook %s (%s)\n", Version, Commit)
		return
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  publish   Publish the catalog into the document store (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  rewrite   Print a chapter with its image URLs made absolute\n")
	fmt.Fprintf(os.Stderr, "  catalog   Validate and list the catalog\n")
	fmt.Fprintf(os.Stderr, "  version   Print the version\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}

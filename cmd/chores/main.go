// Package main is the entry point for the chores CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/runoshun/chores/internal/app"
	"github.com/runoshun/chores/internal/cli"
	"github.com/runoshun/chores/internal/infra/config"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create dependency injection container
	container, err := app.New(config.DefaultDataDir())
	if err != nil {
		// A broken config must not block help and the config template
		if canRunWithoutContainer(os.Args[1:]) {
			return cli.NewRootCommand(nil, version).ExecuteContext(ctx)
		}
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() { _ = container.Close() }()

	// Create and execute root command
	rootCmd := cli.NewRootCommand(container, version)
	return rootCmd.ExecuteContext(ctx)
}

// canRunWithoutContainer reports whether args name a command that needs
// neither configuration nor a store.
func canRunWithoutContainer(args []string) bool {
	if len(args) == 0 {
		return true
	}
	switch args[0] {
	case "help":
		return true
	case "config":
		return len(args) > 1 && (args[1] == "template" || args[1] == "env")
	}
	for _, arg := range args {
		if arg == "--version" || arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

// Package main is the entry point for the knot unit loader.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.trai.ch/knot/cmd/knot/commands"
	"go.trai.ch/knot/internal/app"
	_ "go.trai.ch/knot/internal/wiring"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, app.NewApp)
	cancel()
	os.Exit(code)
}

func run(
	ctx context.Context,
	args []string,
	stdout, stderr io.Writer,
	newApp func(context.Context) (*app.Components, error),
) int {
	// 1. Initialize application components
	components, err := newApp(ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		_, _ = io.WriteString(stderr, "Error: "+err.Error()+"\n")
		return 1
	}
	defer func() {
		_ = components.App.Close()
	}()

	// 2. Interface - CLI
	cli := commands.New(components.App, components.Logger)
	cli.SetArgs(args)
	cli.SetOutput(stdout)

	// 3. Execution
	if err := cli.Execute(ctx); err != nil {
		components.Logger.Error(err)
		return 1
	}
	return 0
}

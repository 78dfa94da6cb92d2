// Package main is the entry point for the emc CLI.
//
// emc launches throwaway Minecraft servers on Hetzner Cloud, keeps track of
// them in a local registry and points dynamic DNS names at them.
//
// For detailed usage information, run:
//
//	emc --help
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/emc/cmd/emc/commands"
	"github.com/imamik/emc/cmd/emc/handlers"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.Root().ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	var remote *handlers.RemoteExitError
	if !errors.As(err, &remote) {
		fmt.Fprintln(os.Stderr, "emc:", err)
	}
	os.Exit(handlers.ExitCode(err))
}

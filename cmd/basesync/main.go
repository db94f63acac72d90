// Package main provides the entry point for the basesync CLI tool.
package main

import (
	"context"
	"os"

	"github.com/agentstation/basesync/cmd/basesync/app"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	application, err := app.New(version, commit, date, builtBy)
	if err != nil {
		app.ExitOnError(err)
	}

	// Cancelled on SIGINT/SIGTERM; the in-flight git command is killed.
	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	if err := application.Execute(ctx, os.Args[1:]); err != nil {
		application.Logger().Debug().Err(err).Msg("Command failed")
		cancel()
		app.ExitOnError(err)
	}
}

// Command docrelay turns form submissions into Google Docs and emails
// them as DOCX attachments.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/docrelay/internal/adapters/driving/cli"
	"github.com/custodia-labs/docrelay/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := wire(ctx, os.Stdin, os.Stderr)
	if err != nil {
		cli.PrintError(os.Stderr, err)
		return 1
	}
	defer app.Close()

	cli.SetVersion(version)
	cli.Configure(app.Services)

	if err := cli.Execute(ctx); err != nil {
		cli.PrintError(os.Stderr, err)
		return 1
	}
	logger.Debug("done")
	return 0
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/panaghia/restaurant/internal/cli"
	"github.com/panaghia/restaurant/internal/logging"
)

func main() {
	cfg := cli.LoadConfig()
	logger := logging.NewText(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, closeState, err := cli.Open(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err = cli.NewRootCmd(app).ExecuteContext(ctx)
	if cerr := closeState(); cerr != nil {
		logger.Warn("state_close_error", "error", cerr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.Describe(err))
		os.Exit(1)
	}
}

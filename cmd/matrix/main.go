package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"cloudpico-matrix/internal/app"
	"cloudpico-matrix/internal/config"
	"cloudpico-matrix/internal/logging"
)

var version = "dev"
var appName = "cloudpico-matrix"

const usage = `usage: %s <command>
  clear          blank the display and exit
  sweep-index    light every pixel in turn by flat index
  sweep-xy       light every pixel in turn row by row
  environ        show temperature and pressure from ENVIRON_SOURCE
  forecast-icon  show the official OpenWeatherMap icon for the coming hours
  forecast-anim  play the matching weather animation for the coming hours
`

func main() {
	if len(os.Args) < 2 || !slices.Contains(app.Commands, os.Args[1]) {
		if len(os.Args) >= 2 {
			fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		}
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(1)
	}
	command := os.Args[1]

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)

	slog.Info("starting",
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
		"log_level", cfg.LogLevel.String(),
		"command", command,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, command); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}

	slog.Info("shutting down")
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"cloudpico-matrix/internal/config"
	"cloudpico-matrix/internal/httpapi"
	"cloudpico-matrix/internal/matrix"
	"cloudpico-matrix/internal/matrix/unicornhd"
	"cloudpico-matrix/internal/pattern"
	"cloudpico-matrix/internal/poll"
)

const (
	CmdClear        = "clear"
	CmdSweepIndex   = "sweep-index"
	CmdSweepXY      = "sweep-xy"
	CmdEnviron      = "environ"
	CmdForecastIcon = "forecast-icon"
	CmdForecastAnim = "forecast-anim"
)

var Commands = []string{CmdClear, CmdSweepIndex, CmdSweepXY, CmdEnviron, CmdForecastIcon, CmdForecastAnim}

var ErrUnknownCommand = errors.New("unknown command")

// App runs one command against one display for the process lifetime.
type App struct {
	cfg      config.Config
	display  *matrix.Recorder
	readings *readingStore

	sleep poll.SleepFunc
	now   func() time.Time
}

func New(cfg config.Config, d matrix.Display) *App {
	return &App{
		cfg:      cfg,
		display:  matrix.NewRecorder(d),
		readings: &readingStore{},
		sleep:    poll.Sleep,
		now:      time.Now,
	}
}

// Run opens the configured display and runs command until ctx is done or the
// command fails.
func Run(ctx context.Context, cfg config.Config, command string) error {
	if !slices.Contains(Commands, command) {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
	slog.Info("config loaded",
		"command", command,
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"displayDriver", cfg.DisplayDriver,
		"brightness", cfg.DisplayBrightness,
		"rotation", cfg.DisplayRotation,
		"environSource", cfg.EnvironSource,
		"statusAddr", cfg.StatusAddr,
	)

	d, err := OpenDisplay(cfg)
	if err != nil {
		return err
	}
	return New(cfg, d).Run(ctx, command)
}

func OpenDisplay(cfg config.Config) (matrix.Display, error) {
	switch cfg.DisplayDriver {
	case "memory":
		m := matrix.NewMemory(matrix.Width, matrix.Height)
		m.KeepFrames = 64
		return m, nil
	default:
		dev, err := unicornhd.Open(cfg.SPIPort)
		if err != nil {
			return nil, fmt.Errorf("open unicorn hat hd: %w", err)
		}
		return dev, nil
	}
}

// Run executes command. The display is always switched off before Run
// returns.
func (a *App) Run(ctx context.Context, command string) error {
	defer func() {
		if err := a.display.Off(); err != nil {
			slog.Error("display off", "error", err)
		}
	}()

	a.display.SetBrightness(a.cfg.DisplayBrightness)
	if err := a.display.SetRotation(a.cfg.DisplayRotation); err != nil {
		return fmt.Errorf("set rotation: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	if a.cfg.StatusAddr != "" {
		srv := httpapi.NewServer(a.cfg.StatusAddr, httpapi.NewMux(a.readings, a.display))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := httpapi.Serve(ctx, srv); err != nil {
				slog.Error("status server stopped", "error", err)
			}
		}()
	}

	switch command {
	case CmdClear:
		return pattern.Clear(a.display)
	case CmdSweepIndex, CmdSweepXY:
		order := pattern.ByIndex
		if command == CmdSweepXY {
			order = pattern.ByXY
		}
		s := pattern.NewSweep(order)
		s.Sleep = a.sleep
		return s.Run(ctx, a.display)
	case CmdEnviron:
		return a.runEnviron(ctx)
	case CmdForecastIcon:
		return a.runForecastIcon(ctx)
	case CmdForecastAnim:
		return a.runForecastAnim(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
}

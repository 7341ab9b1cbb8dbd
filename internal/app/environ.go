package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"cloudpico-matrix/internal/environ"
	"cloudpico-matrix/internal/poll"
	"cloudpico-matrix/internal/render"
)

// readingStore holds the reading currently on the display for the status
// server.
type readingStore struct {
	mu sync.RWMutex
	r  environ.Reading
	ok bool
}

func (s *readingStore) set(r environ.Reading) {
	s.mu.Lock()
	s.r, s.ok = r, true
	s.mu.Unlock()
}

func (s *readingStore) Latest() (environ.Reading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r, s.ok
}

func (a *App) openSource(ctx context.Context) (environ.Source, error) {
	logger := slog.Default().With("source", a.cfg.EnvironSource)

	switch a.cfg.EnvironSource {
	case "mqtt":
		s := environ.NewMQTTSource(a.cfg, logger)
		go func() {
			if err := s.Connect(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("mqtt connect failed; readings stay unavailable", "error", err)
			}
		}()
		return s, nil
	case "bme280":
		s, err := environ.OpenBME280(a.cfg.BME280Address)
		if err != nil {
			return nil, fmt.Errorf("open bme280: %w", err)
		}
		return s, nil
	case "ble":
		s := environ.NewBLESource(a.cfg.BLEAdapter, a.cfg.ReadingMaxAge, logger)
		if err := s.Start(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return environ.NewHTTPSource(a.cfg.EnvironHost, a.cfg.HTTPTimeout), nil
	}
}

func (a *App) runEnviron(ctx context.Context) error {
	src, err := a.openSource(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := src.Close(); err != nil {
			slog.Warn("close environ source", "error", err)
		}
	}()

	r := render.NewRenderer(a.display)
	r.Now = a.now

	loop := poll.Loop[environ.Reading]{
		Name: "environ",
		Fetch: func(ctx context.Context) poll.Result[environ.Reading] {
			res := src.Fetch(ctx)
			if res.Status == poll.StatusOK {
				slog.Debug("environ reading", "temperature", res.Value.Temperature, "pressure", res.Value.Pressure)
				a.readings.set(res.Value)
			}
			return res
		},
		Render: func(_ context.Context, v environ.Reading) error {
			return r.Environ(v.Temperature, v.Pressure)
		},
		RenderError: func(context.Context) error {
			return r.Error()
		},
		Tick:         a.cfg.EnvironTick,
		RefreshTicks: a.cfg.EnvironRefreshTicks,
		RetryBackoff: a.cfg.EnvironBackoff,
		Sleep:        a.sleep,
	}
	return loop.Run(ctx)
}

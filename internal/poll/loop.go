// Package poll runs the fetch/render cycle shared by the display commands.
//
// A Loop fetches a value, renders it on every tick and only fetches again
// after RefreshTicks renders, so a slowly changing value can be polled
// rarely while the display keeps redrawing (for example a blink indicator).
// Fetch outcomes are explicit Result values: Retry renders the error frame
// and backs off, Skip backs off without rendering, Fatal ends the loop.
package poll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

type Loop[T any] struct {
	// Name identifies the loop in logs and errors.
	Name string

	Fetch  func(ctx context.Context) Result[T]
	Render func(ctx context.Context, v T) error
	// RenderError is optional and runs before a retry back-off.
	RenderError func(ctx context.Context) error

	Tick         time.Duration
	RefreshTicks int
	RetryBackoff time.Duration
	// SkipBackoff defaults to RetryBackoff.
	SkipBackoff time.Duration

	Sleep  SleepFunc
	Logger *slog.Logger
}

// Run blocks until ctx is done or a fatal failure occurs. It returns
// ctx.Err() on cancellation.
func (l *Loop[T]) Run(ctx context.Context) error {
	sleep := l.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("loop", l.Name)
	refresh := l.RefreshTicks
	if refresh <= 0 {
		refresh = 1
	}
	skipBackoff := l.SkipBackoff
	if skipBackoff <= 0 {
		skipBackoff = l.RetryBackoff
	}

	var (
		value T
		count int
	)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if count == 0 {
			logger.Debug("fetch")
			res := l.Fetch(ctx)
			if err := ctx.Err(); err != nil {
				return err
			}

			switch res.Status {
			case StatusOK:
				value = res.Value
			case StatusRetry:
				logger.Error("fetch failed, retrying", "error", res.Err, "backoff", l.RetryBackoff)
				if l.RenderError != nil {
					if err := l.RenderError(ctx); err != nil {
						return l.renderFailed(ctx, "render error frame", err)
					}
				}
				if err := sleep(ctx, l.RetryBackoff); err != nil {
					return err
				}
				continue
			case StatusSkip:
				logger.Warn("unusable response, skipping render", "error", res.Err, "backoff", skipBackoff)
				if err := sleep(ctx, skipBackoff); err != nil {
					return err
				}
				continue
			default:
				err := res.Err
				if err == nil {
					err = errors.New("fatal fetch result without error")
				}
				logger.Error("fetch failed", "error", err)
				return fmt.Errorf("%s: fetch: %w", l.Name, err)
			}
		}

		if err := l.Render(ctx, value); err != nil {
			return l.renderFailed(ctx, "render", err)
		}

		count++
		if count >= refresh {
			count = 0
		}

		if err := sleep(ctx, l.Tick); err != nil {
			return err
		}
	}
}

func (l *Loop[T]) renderFailed(ctx context.Context, what string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%s: %s: %w", l.Name, what, err)
}

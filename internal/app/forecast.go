package app

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"cloudpico-matrix/internal/anim"
	"cloudpico-matrix/internal/icon"
	"cloudpico-matrix/internal/openweather"
	"cloudpico-matrix/internal/poll"
	"cloudpico-matrix/internal/render"
)

type officialIcon struct {
	code string
	img  image.Image
}

type animation struct {
	cond  icon.Condition
	sheet *anim.Sheet
}

// nearestCode returns the icon code forecast ForecastLead from now.
func (a *App) nearestCode(ctx context.Context, c *openweather.Client) (string, error) {
	entries, err := c.Forecast(ctx)
	if err != nil {
		return "", err
	}
	target := a.now().Add(a.cfg.ForecastLead)
	e, err := openweather.Nearest(entries, target)
	if err != nil {
		return "", err
	}
	slog.Debug("forecast entry", "dt", e.Time(), "target", target)
	return e.Icon()
}

func (a *App) runForecastIcon(ctx context.Context) error {
	if err := a.cfg.RequireForecast(); err != nil {
		return err
	}
	client := openweather.NewClient(a.cfg)
	r := render.NewRenderer(a.display)

	loop := poll.Loop[officialIcon]{
		Name: "forecast-icon",
		Fetch: func(ctx context.Context) poll.Result[officialIcon] {
			code, err := a.nearestCode(ctx, client)
			if err != nil {
				return poll.FromError[officialIcon](err)
			}
			img, err := client.IconImage(ctx, code)
			if err != nil {
				return poll.FromError[officialIcon](err)
			}
			return poll.OK(officialIcon{code: code, img: img})
		},
		Render: func(_ context.Context, v officialIcon) error {
			slog.Info("showing forecast icon", "code", v.code)
			return r.Icon(v.img)
		},
		RenderError: func(context.Context) error {
			return r.Error()
		},
		Tick:         a.cfg.ForecastHold,
		RefreshTicks: 1,
		RetryBackoff: a.cfg.ForecastBackoff,
		Sleep:        a.sleep,
	}
	return loop.Run(ctx)
}

func (a *App) runForecastAnim(ctx context.Context) error {
	if err := a.cfg.RequireForecast(); err != nil {
		return err
	}
	client := openweather.NewClient(a.cfg)
	r := render.NewRenderer(a.display)
	w, h := a.display.Shape()
	player := anim.Player{Hold: a.cfg.AnimationFrame, Repeat: a.cfg.AnimationRepeat, Sleep: a.sleep}

	loop := poll.Loop[animation]{
		Name: "forecast-anim",
		Fetch: func(ctx context.Context) poll.Result[animation] {
			code, err := a.nearestCode(ctx, client)
			if err != nil {
				return poll.FromError[animation](err)
			}
			cond, err := icon.Parse(code)
			if err != nil {
				return poll.Skip[animation](err)
			}
			sheet, err := a.loadSheet(cond, w, h)
			if err != nil {
				return poll.Fatal[animation](err)
			}
			return poll.OK(animation{cond: cond, sheet: sheet})
		},
		Render: func(ctx context.Context, v animation) error {
			slog.Info("playing forecast animation", "condition", v.cond, "repeat", player.Repeat)
			return player.Play(ctx, a.display, v.sheet)
		},
		RenderError: func(ctx context.Context) error {
			sheet, err := a.loadSheet(icon.Error, w, h)
			if err != nil {
				slog.Warn("error animation unavailable", "error", err)
				return r.Error()
			}
			once := player
			once.Repeat = 1
			return once.Play(ctx, a.display, sheet)
		},
		RefreshTicks: 1,
		RetryBackoff: a.cfg.ForecastBackoff,
		Sleep:        a.sleep,
	}
	return loop.Run(ctx)
}

func (a *App) loadSheet(c icon.Condition, w, h int) (*anim.Sheet, error) {
	img, err := icon.Load(a.cfg.IconsDir, c)
	if err != nil {
		return nil, err
	}
	sheet, err := anim.NewSheet(img, w, h)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Asset(), err)
	}
	return sheet, nil
}

// Package pattern draws the display test patterns.
package pattern

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"time"

	"cloudpico-matrix/internal/matrix"
	"cloudpico-matrix/internal/poll"
)

type Order int

const (
	// ByIndex walks a flat pixel index i with x = i % w and y = i / w.
	ByIndex Order = iota
	// ByXY walks rows top to bottom, each left to right.
	ByXY
)

func (o Order) String() string {
	switch o {
	case ByIndex:
		return "index"
	case ByXY:
		return "xy"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

// Points lists the pixels of a w x h display in the order a sweep lights them.
func (o Order) Points(w, h int) []image.Point {
	pts := make([]image.Point, 0, w*h)
	switch o {
	case ByXY:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				pts = append(pts, image.Pt(x, y))
			}
		}
	default:
		for i := 0; i < w*h; i++ {
			pts = append(pts, image.Pt(i%w, i/w))
		}
	}
	return pts
}

type Sweep struct {
	Order Order
	Color color.RGBA
	Step  time.Duration // after each pixel
	Pause time.Duration // after each full pass
	Sleep poll.SleepFunc
}

func NewSweep(o Order) Sweep {
	return Sweep{
		Order: o,
		Color: color.RGBA{R: 255, A: 255},
		Step:  500 * time.Millisecond / 16,
		Pause: 500 * time.Millisecond,
		Sleep: poll.Sleep,
	}
}

// Run repeats passes until ctx is done.
func (s Sweep) Run(ctx context.Context, d matrix.Display) error {
	for {
		slog.Info("showing all dots", "order", s.Order)
		if err := s.Pass(ctx, d); err != nil {
			return err
		}
	}
}

// Pass clears the display, lights every pixel one at a time and then pauses.
func (s Sweep) Pass(ctx context.Context, d matrix.Display) error {
	sleep := s.Sleep
	if sleep == nil {
		sleep = poll.Sleep
	}

	d.Clear()
	w, h := d.Shape()
	for _, p := range s.Order.Points(w, h) {
		d.SetPixel(p.X, p.Y, s.Color)
		if err := d.Show(); err != nil {
			return fmt.Errorf("show: %w", err)
		}
		if err := sleep(ctx, s.Step); err != nil {
			return err
		}
	}
	return sleep(ctx, s.Pause)
}

// Clear blanks the display once.
func Clear(d matrix.Display) error {
	d.Clear()
	if err := d.Show(); err != nil {
		return fmt.Errorf("show: %w", err)
	}
	return nil
}

// Package anim plays sprite-sheet animations on a matrix.Display.
//
// A sheet is a grid of display-sized tiles. Tiles are shown in raster order
// (top row first, left to right) and mirrored horizontally on the device;
// tiles that are entirely black are treated as padding and skipped without
// holding.
package anim

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"cloudpico-matrix/internal/matrix"
	"cloudpico-matrix/internal/poll"
)

var ErrSheetSize = errors.New("sprite sheet size is not a multiple of the display size")

type Sheet struct {
	img  image.Image
	w, h int
}

// NewSheet checks that img splits into whole w x h tiles.
func NewSheet(img image.Image, w, h int) (*Sheet, error) {
	b := img.Bounds()
	if w <= 0 || h <= 0 || b.Dx() == 0 || b.Dy() == 0 || b.Dx()%w != 0 || b.Dy()%h != 0 {
		return nil, fmt.Errorf("%w: %dx%d for %dx%d tiles", ErrSheetSize, b.Dx(), b.Dy(), w, h)
	}
	return &Sheet{img: img, w: w, h: h}, nil
}

// Tiles returns the top-left corner of every tile in raster order.
func (s *Sheet) Tiles() []image.Point {
	b := s.img.Bounds()
	var out []image.Point
	for y := b.Min.Y; y < b.Max.Y; y += s.h {
		for x := b.Min.X; x < b.Max.X; x += s.w {
			out = append(out, image.Pt(x, y))
		}
	}
	return out
}

type Player struct {
	Hold   time.Duration
	Repeat int
	Sleep  poll.SleepFunc
}

// Play runs the sheet Repeat times (at least once). It returns ctx.Err() if
// the context ends during a hold.
func (p Player) Play(ctx context.Context, d matrix.Display, s *Sheet) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = poll.Sleep
	}
	repeat := max(p.Repeat, 1)
	tiles := s.Tiles()

	for i := 0; i < repeat; i++ {
		for _, origin := range tiles {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !s.draw(d, origin) {
				continue
			}
			if err := d.Show(); err != nil {
				return fmt.Errorf("show tile %v: %w", origin, err)
			}
			if err := sleep(ctx, p.Hold); err != nil {
				return err
			}
		}
	}
	return nil
}

// draw copies one tile into the display buffer, mirrored like every other
// screen, and reports whether any pixel was lit.
func (s *Sheet) draw(d matrix.Display, origin image.Point) bool {
	lit := false
	for y := 0; y < s.h; y++ {
		for x := 0; x < s.w; x++ {
			r, g, b, _ := s.img.At(origin.X+x, origin.Y+y).RGBA()
			c := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xff}
			if c.R != 0 || c.G != 0 || c.B != 0 {
				lit = true
			}
			d.SetPixel(s.w-1-x, y, c)
		}
	}
	return lit
}

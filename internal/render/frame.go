// Package render draws frames offscreen and copies them to a matrix.Display.
package render

import (
	"fmt"
	"image"
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// Red is the text colour used by the environment and error frames.
var Red = color.RGBA{R: 200, A: 0xff}

// canvas adapts an *image.RGBA to the drivers.Displayer interface tinyfont
// draws on.
type canvas struct {
	img *image.RGBA
}

func (c canvas) Size() (int16, int16) {
	b := c.img.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

func (c canvas) SetPixel(x, y int16, col color.RGBA) {
	p := image.Pt(int(x), int(y))
	if p.In(c.img.Rect) {
		c.img.SetRGBA(p.X, p.Y, col)
	}
}

func (c canvas) Display() error { return nil }

var _ drivers.Displayer = canvas{}

// NewFrame returns an opaque black w x h image.
func NewFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

// text baselines of the three 5px rows
const (
	row1 = 5
	row2 = 11
	row3 = 16
)

func drawText(img *image.RGBA, x, baseline int, s string, col color.RGBA) {
	tinyfont.WriteLine(canvas{img}, &tinyfont.TomThumb, int16(x), int16(baseline), s, col)
}

// EnvironFrame lays out temperature (degrees C) and pressure (hPa).
func EnvironFrame(w, h, temperature, pressure int, col color.RGBA) *image.RGBA {
	img := NewFrame(w, h)
	drawText(img, 0, row1, fmt.Sprintf("%dC", temperature), col)
	drawText(img, 0, row2, fmt.Sprintf("%04d", pressure), col)
	drawText(img, 4, row3, "hPa", col)
	return img
}

// ErrorFrame spells ERROR over two rows.
func ErrorFrame(w, h int, col color.RGBA) *image.RGBA {
	img := NewFrame(w, h)
	drawText(img, 0, row1, "ERR", col)
	drawText(img, 0, row2, "OR", col)
	return img
}

// Mirror flips img horizontally: column x moves to width-1-x. Applying it
// twice yields the original pixels.
func Mirror(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Set(b.Dx()-1-x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out
}

// Package matrix defines the LED matrix display adapter and the in-memory
// pixel buffer shared by every implementation.
package matrix

import (
	"image"
	"image/color"
)

// Width and Height are the dimensions of the Unicorn HAT HD panel.
const (
	Width  = 16
	Height = 16
)

// Display is a fixed-size RGB pixel grid that is mutated pixel by pixel and
// flushed to the device with Show.
type Display interface {
	Clear()
	SetPixel(x, y int, c color.RGBA)
	Show() error
	SetBrightness(b float64)
	SetRotation(deg int) error
	Shape() (w, h int)
	Off() error
}

// Buffer is the pixel buffer mirroring device contents before flush.
type Buffer struct {
	w, h int
	pix  []color.RGBA
}

func NewBuffer(w, h int) *Buffer {
	return &Buffer{w: w, h: h, pix: make([]color.RGBA, w*h)}
}

func (b *Buffer) Shape() (int, int) { return b.w, b.h }

func (b *Buffer) Clear() {
	for i := range b.pix {
		b.pix[i] = color.RGBA{}
	}
}

// SetPixel ignores coordinates outside the grid.
func (b *Buffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= b.w || y >= b.h {
		return
	}
	c.A = 0xff
	b.pix[y*b.w+x] = c
}

func (b *Buffer) At(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= b.w || y >= b.h {
		return color.RGBA{}
	}
	return b.pix[y*b.w+x]
}

// Image returns a copy of the buffer as an RGBA image.
func (b *Buffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.w, b.h))
	for y := 0; y < b.h; y++ {
		for x := 0; x < b.w; x++ {
			c := b.pix[y*b.w+x]
			c.A = 0xff
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// Lit reports whether any pixel is not black.
func (b *Buffer) Lit() bool {
	for _, c := range b.pix {
		if c.R != 0 || c.G != 0 || c.B != 0 {
			return true
		}
	}
	return false
}

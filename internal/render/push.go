package render

import (
	"image"
	"image/color"
	"image/draw"
	"time"

	xdraw "golang.org/x/image/draw"

	"cloudpico-matrix/internal/matrix"
)

// Push clears d, copies img into it mirrored horizontally and shows it.
// With blink set, the bottom-right 2x2 device block is lit in blinkColor.
func Push(d matrix.Display, img image.Image, blink bool, blinkColor color.RGBA) error {
	w, h := d.Shape()
	frame := NewFrame(w, h)
	draw.Draw(frame, frame.Rect, img, img.Bounds().Min, draw.Src)
	mirrored := Mirror(frame)

	d.Clear()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d.SetPixel(x, y, toRGB(mirrored.At(x, y)))
		}
	}

	if blink {
		for _, p := range blinkBlock(w, h) {
			d.SetPixel(p.X, p.Y, blinkColor)
		}
	}

	return d.Show()
}

func blinkBlock(w, h int) []image.Point {
	return []image.Point{
		{X: w - 1, Y: h - 1},
		{X: w - 1, Y: h - 2},
		{X: w - 2, Y: h - 1},
		{X: w - 2, Y: h - 2},
	}
}

// BlinkOn reports whether the liveness block is lit at t (odd seconds).
func BlinkOn(t time.Time) bool {
	return t.Second()%2 == 1
}

// Fit scales img down to fit w x h keeping its aspect ratio, composited
// over black at the top-left corner. Images already small enough are not
// enlarged.
func Fit(img image.Image, w, h int) *image.RGBA {
	dst := NewFrame(w, h)
	sb := img.Bounds()
	if sb.Empty() {
		return dst
	}

	dw, dh := sb.Dx(), sb.Dy()
	if dw > w || dh > h {
		if dw*h > dh*w {
			dh = max(1, (dh*w+dw/2)/dw)
			dw = w
		} else {
			dw = max(1, (dw*h+dh/2)/dh)
			dh = h
		}
	}
	xdraw.CatmullRom.Scale(dst, image.Rect(0, 0, dw, dh), img, sb, draw.Over, nil)
	return dst
}

// toRGB drops alpha the way an LED sees it: premultiplied colour over black.
func toRGB(c color.Color) color.RGBA {
	r, g, b, _ := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xff}
}

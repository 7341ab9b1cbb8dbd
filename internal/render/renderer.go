package render

import (
	"image"
	"image/color"
	"time"

	"cloudpico-matrix/internal/matrix"
)

// Renderer draws the environment, error and icon screens on one display.
type Renderer struct {
	Display matrix.Display
	Color   color.RGBA
	// Now drives the blink indicator; defaults to time.Now.
	Now func() time.Time
}

func NewRenderer(d matrix.Display) *Renderer {
	return &Renderer{Display: d, Color: Red, Now: time.Now}
}

// Environ shows temperature and pressure plus the liveness blink.
func (r *Renderer) Environ(temperature, pressure int) error {
	w, h := r.Display.Shape()
	frame := EnvironFrame(w, h, temperature, pressure, r.Color)
	return Push(r.Display, frame, BlinkOn(r.now()), r.Color)
}

// Error shows the static ERROR glyph.
func (r *Renderer) Error() error {
	w, h := r.Display.Shape()
	return Push(r.Display, ErrorFrame(w, h, r.Color), false, r.Color)
}

// Icon scales img to the display and shows it mirrored.
func (r *Renderer) Icon(img image.Image) error {
	w, h := r.Display.Shape()
	return Push(r.Display, Fit(img, w, h), false, r.Color)
}

func (r *Renderer) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

package httpapi

import (
	"image"
	"net/http"
	"time"

	"cloudpico-matrix/internal/environ"
)

// Readings exposes the reading most recently rendered.
type Readings interface {
	Latest() (environ.Reading, bool)
}

// Frames exposes the frame most recently shown on the display.
type Frames interface {
	Snapshot() (*image.RGBA, time.Time, int)
}

type Frame struct {
	Width   int        `json:"width"`
	Height  int        `json:"height"`
	Pixels  [][3]uint8 `json:"pixels"`
	ShownAt time.Time  `json:"shownAt"`
	Shows   int        `json:"shows"`
}

// NewFrame flattens img row by row.
func NewFrame(img *image.RGBA) Frame {
	b := img.Bounds()
	f := Frame{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pixels: make([][3]uint8, 0, b.Dx()*b.Dy()),
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			f.Pixels = append(f.Pixels, [3]uint8{c.R, c.G, c.B})
		}
	}
	return f
}

type statusAPI struct {
	readings Readings
	frames   Frames
}

func (a *statusAPI) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *statusAPI) handleReading(w http.ResponseWriter, _ *http.Request) {
	if a.readings == nil {
		writeError(w, http.StatusNotFound, "this command does not show readings")
		return
	}
	r, ok := a.readings.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "no reading rendered yet")
		return
	}
	writeJSON(w, http.StatusOK, r)
}

func (a *statusAPI) handleFrame(w http.ResponseWriter, _ *http.Request) {
	img, at, shows := a.frames.Snapshot()
	if img == nil {
		writeError(w, http.StatusNotFound, "nothing shown yet")
		return
	}
	f := NewFrame(img)
	f.ShownAt = at
	f.Shows = shows
	writeJSON(w, http.StatusOK, f)
}

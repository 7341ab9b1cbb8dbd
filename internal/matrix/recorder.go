package matrix

import (
	"image"
	"image/color"
	"sync"
	"time"
)

// Recorder wraps a Display and keeps a copy of the last flushed frame so it
// can be read from another goroutine (the status server).
type Recorder struct {
	Display

	shadow *Buffer

	mu    sync.RWMutex
	last  *image.RGBA
	shown time.Time
	shows int
}

func NewRecorder(d Display) *Recorder {
	w, h := d.Shape()
	return &Recorder{Display: d, shadow: NewBuffer(w, h)}
}

func (r *Recorder) Clear() {
	r.shadow.Clear()
	r.Display.Clear()
}

func (r *Recorder) SetPixel(x, y int, c color.RGBA) {
	r.shadow.SetPixel(x, y, c)
	r.Display.SetPixel(x, y, c)
}

func (r *Recorder) Show() error {
	if err := r.Display.Show(); err != nil {
		return err
	}
	frame := r.shadow.Image()
	r.mu.Lock()
	r.last = frame
	r.shown = time.Now()
	r.shows++
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Off() error {
	r.shadow.Clear()
	return r.Display.Off()
}

// Snapshot returns the last shown frame (nil before the first Show), when it
// was shown and how many frames have been shown in total.
func (r *Recorder) Snapshot() (*image.RGBA, time.Time, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last, r.shown, r.shows
}

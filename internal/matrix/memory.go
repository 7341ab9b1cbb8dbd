package matrix

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
)

// Memory is a Display with no hardware behind it. Every Show appends a copy
// of the buffer to Frames, which makes it usable for dry runs and tests.
type Memory struct {
	buf        *Buffer
	Brightness float64
	Rotation   int
	Frames     []*image.RGBA
	IsOff      bool

	// KeepFrames bounds Frames; zero keeps everything.
	KeepFrames int
}

func NewMemory(w, h int) *Memory {
	return &Memory{buf: NewBuffer(w, h), Brightness: 0.5}
}

func (m *Memory) Clear()                          { m.buf.Clear() }
func (m *Memory) SetPixel(x, y int, c color.RGBA) { m.buf.SetPixel(x, y, c) }
func (m *Memory) Shape() (int, int)               { return m.buf.Shape() }
func (m *Memory) SetBrightness(b float64)         { m.Brightness = b }

func (m *Memory) SetRotation(deg int) error {
	switch deg {
	case 0, 90, 180, 270:
		m.Rotation = deg
		return nil
	default:
		return fmt.Errorf("unsupported rotation %d", deg)
	}
}

func (m *Memory) Show() error {
	m.IsOff = false
	m.Frames = append(m.Frames, m.buf.Image())
	if m.KeepFrames > 0 && len(m.Frames) > m.KeepFrames {
		m.Frames = m.Frames[len(m.Frames)-m.KeepFrames:]
	}
	slog.Debug("memory display: show", "frames", len(m.Frames), "lit", m.buf.Lit())
	return nil
}

func (m *Memory) Off() error {
	m.buf.Clear()
	m.IsOff = true
	return nil
}

// Last returns the most recently shown frame, or nil.
func (m *Memory) Last() *image.RGBA {
	if len(m.Frames) == 0 {
		return nil
	}
	return m.Frames[len(m.Frames)-1]
}
